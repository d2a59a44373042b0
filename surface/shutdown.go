package surface

import (
	"errors"
	"fmt"
	"sync"

	"github.com/mobile-next/touchsweep/utils"
)

// ShutdownHook collects cleanup functions that run when the process is
// asked to stop (SIGINT/SIGTERM or a server.shutdown request).
type ShutdownHook struct {
	mu    sync.Mutex
	hooks []namedHook
}

type namedHook struct {
	name string
	fn   func() error
}

// NewShutdownHook creates an empty hook list.
func NewShutdownHook() *ShutdownHook {
	return &ShutdownHook{}
}

// Register adds a cleanup function. Hooks run in reverse registration order,
// so something registered after its dependencies is torn down before them.
func (s *ShutdownHook) Register(name string, cleanupFn func() error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, namedHook{name: name, fn: cleanupFn})
	utils.Verbose("Registered shutdown hook: %s", name)
}

// RegisterRegistry makes shutdown unbind every surface in r.
func (s *ShutdownHook) RegisterRegistry(r *Registry) {
	s.Register("surfaces", func() error {
		r.CleanupAll()
		return nil
	})
}

// Shutdown runs every hook once, even when some fail, and returns the joined
// errors. Hooks are cleared afterwards; calling Shutdown again is a no-op.
func (s *ShutdownHook) Shutdown() error {
	s.mu.Lock()
	hooks := s.hooks
	s.hooks = nil
	s.mu.Unlock()

	if len(hooks) == 0 {
		return nil
	}

	utils.Verbose("Executing %d shutdown hook(s)", len(hooks))
	var errs []error

	for i := len(hooks) - 1; i >= 0; i-- {
		hook := hooks[i]
		utils.Verbose("Running shutdown hook: %s", hook.name)
		if err := hook.fn(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", hook.name, err))
			utils.Warn("Shutdown hook %s failed: %v", hook.name, err)
		}
	}

	return errors.Join(errs...)
}
