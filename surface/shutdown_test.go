package surface

import (
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShutdownHook_RegisterAndShutdown(t *testing.T) {
	hook := NewShutdownHook()

	called := false
	hook.Register("test-hook", func() error {
		called = true
		return nil
	})

	require.NoError(t, hook.Shutdown())
	assert.True(t, called, "hook was not called")
}

func TestShutdownHook_ReverseOrder(t *testing.T) {
	hook := NewShutdownHook()

	var order []string
	for _, name := range []string{"first", "second", "third"} {
		name := name
		hook.Register(name, func() error {
			order = append(order, name)
			return nil
		})
	}

	require.NoError(t, hook.Shutdown())
	assert.Equal(t, []string{"third", "second", "first"}, order)
}

func TestShutdownHook_ErrorHandling(t *testing.T) {
	hook := NewShutdownHook()

	ran := 0
	failure := errors.New("cleanup failed")
	hook.Register("success", func() error { ran++; return nil })
	hook.Register("failure", func() error { ran++; return failure })
	hook.Register("success2", func() error { ran++; return nil })

	err := hook.Shutdown()

	require.Error(t, err)
	assert.ErrorIs(t, err, failure)
	assert.Contains(t, err.Error(), "failure")
	assert.Equal(t, 3, ran, "every hook runs despite the failure")

	require.NoError(t, hook.Shutdown())
	assert.Equal(t, 3, ran, "hooks are cleared after the first shutdown")
}

func TestShutdownHook_EmptyShutdown(t *testing.T) {
	assert.NoError(t, NewShutdownHook().Shutdown())
}

func TestShutdownHook_SecondShutdownIsNoop(t *testing.T) {
	hook := NewShutdownHook()

	calls := 0
	hook.Register("once", func() error { calls++; return nil })

	require.NoError(t, hook.Shutdown())
	require.NoError(t, hook.Shutdown())
	assert.Equal(t, 1, calls)
}

func TestShutdownHook_RegisterRegistry(t *testing.T) {
	reg, err := NewRegistry(4)
	require.NoError(t, err)

	s := New("board", Options{})
	reg.Add(s)

	hook := NewShutdownHook()
	hook.RegisterRegistry(reg)
	require.NoError(t, hook.Shutdown())

	assert.Equal(t, 0, reg.Len())
	assert.False(t, s.Bound())
}

func TestShutdownHook_ConcurrentRegister(t *testing.T) {
	hook := NewShutdownHook()

	var calls atomic.Int32
	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func(n int) {
			hook.Register(fmt.Sprintf("hook-%d", n), func() error {
				calls.Add(1)
				return nil
			})
			done <- true
		}(i)
	}

	for i := 0; i < 10; i++ {
		<-done
	}

	require.NoError(t, hook.Shutdown())
	assert.Equal(t, int32(10), calls.Load())
}
