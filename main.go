package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mobile-next/touchsweep/cli"
	"github.com/mobile-next/touchsweep/commands"
	"github.com/mobile-next/touchsweep/server"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// run command in goroutine
	done := make(chan error, 1)
	go func() {
		done <- cli.Execute(ctx)
	}()

	// wait for command completion or signal
	select {
	case <-sigChan:
		// a running server stops through its own shutdown hooks
		cancel()
		select {
		case <-done:
		case <-time.After(server.ShutdownTimeout):
		}

		if registry := commands.GetRegistry(); registry != nil {
			registry.CleanupAll()
		}
		os.Exit(0)
	case err := <-done:
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
}
