package commands

import (
	"context"
	"fmt"

	"github.com/mobile-next/touchsweep/gesture"
	"github.com/mobile-next/touchsweep/trace"
	"golang.org/x/sync/errgroup"
)

// maxParallelReplays bounds how many trace files are replayed at once.
const maxParallelReplays = 4

// ReplayRequest represents the parameters for a replay command
type ReplayRequest struct {
	Paths     []string `json:"paths"`
	Threshold float64  `json:"threshold,omitempty"`
	// Verbose keeps every produced event in the result, not only gesture names.
	Verbose bool `json:"verbose,omitempty"`
}

// ReplayCommand replays trace files, each through its own surface. Files are
// processed concurrently; results keep the order of Paths.
func ReplayCommand(ctx context.Context, req ReplayRequest) *CommandResponse {
	if len(req.Paths) == 0 {
		return NewErrorResponse(fmt.Errorf("at least one trace file is required"))
	}

	threshold := req.Threshold
	if threshold < 0 {
		return NewErrorResponse(fmt.Errorf("threshold must be non-negative, got %v", threshold))
	}
	if threshold == 0 {
		threshold = gesture.DefaultThreshold
	}

	results := make([]*trace.Result, len(req.Paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelReplays)

	for i, path := range req.Paths {
		i, path := i, path
		g.Go(func() error {
			t, err := trace.Load(path)
			if err != nil {
				return err
			}

			res, err := trace.Replay(ctx, t, threshold)
			if err != nil {
				return fmt.Errorf("failed to replay %s: %w", path, err)
			}

			if !req.Verbose {
				res.Events = nil
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return NewErrorResponse(err)
	}

	return NewSuccessResponse(map[string]interface{}{
		"traces": results,
	})
}
