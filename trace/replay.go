package trace

import (
	"context"

	"github.com/mobile-next/touchsweep/gesture"
	"github.com/mobile-next/touchsweep/input"
	"github.com/mobile-next/touchsweep/surface"
	"github.com/mobile-next/touchsweep/utils"
)

// Result is what a replay produced.
type Result struct {
	Name      string          `json:"name"`
	Threshold float64         `json:"threshold"`
	Gestures  []string        `json:"gestures"`
	Moves     int             `json:"moves"`
	Skipped   int             `json:"skipped"`
	Events    []surface.Event `json:"events,omitempty"`
}

// Replay feeds every event of t, in order, to a fresh surface. Events that
// cannot be decoded or are rejected by the tracker are counted as skipped.
// defaultThreshold applies when the trace does not set one.
func Replay(ctx context.Context, t *Trace, defaultThreshold float64) (*Result, error) {
	threshold := t.Threshold
	if threshold <= 0 {
		threshold = defaultThreshold
	}

	opts := surface.Options{Threshold: threshold}
	if len(t.Data) > 0 {
		opts.Data = t.Data
	}

	s := surface.New(t.Name, opts)
	defer s.Unbind()

	result := &Result{
		Name:      t.Name,
		Threshold: s.Info().Threshold,
		Gestures:  []string{},
	}

	for i, raw := range t.Events {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		ev, err := input.Decode(raw)
		if err != nil {
			utils.Verbose("trace %s: skipping event %d: %v", t.Name, i, err)
			result.Skipped++
			continue
		}

		produced, err := s.Dispatch(ev)
		if err != nil {
			utils.Verbose("trace %s: event %d rejected: %v", t.Name, i, err)
			result.Skipped++
			continue
		}

		for _, e := range produced {
			if e.Name == gesture.EventMove {
				result.Moves++
			} else {
				result.Gestures = append(result.Gestures, e.Name)
			}
		}
		result.Events = append(result.Events, produced...)
	}

	return result, nil
}
