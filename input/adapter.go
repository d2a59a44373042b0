package input

import (
	"fmt"

	"github.com/mobile-next/touchsweep/gesture"
)

// Sink receives normalized samples. *gesture.Tracker implements it.
type Sink interface {
	Start(p gesture.Point) error
	Move(p gesture.Point) error
	End(p gesture.Point) error
}

var _ Sink = (*gesture.Tracker)(nil)

// Adapter forwards native events to a Sink at the matching lifecycle point.
type Adapter struct {
	sink Sink
}

// NewAdapter creates an adapter that feeds sink.
func NewAdapter(sink Sink) *Adapter {
	return &Adapter{sink: sink}
}

// Resolve returns the phase and position a sink would receive for ev. It
// fails for unknown types, missing touches and non-finite coordinates, which
// are exactly the events Handle rejects.
func Resolve(ev Event) (Phase, gesture.Point, error) {
	phase, ok := PhaseOf(ev.Kind())
	if !ok {
		return 0, gesture.Point{}, fmt.Errorf("%w: %q", ErrUnknownType, ev.Kind())
	}

	p, err := ev.Position()
	if err != nil {
		return 0, gesture.Point{}, fmt.Errorf("failed to read position of %s: %w", ev.Kind(), err)
	}

	if !p.Finite() {
		return 0, gesture.Point{}, fmt.Errorf("%s at (%v,%v): %w", ev.Kind(), p.X, p.Y, gesture.ErrNonFinite)
	}

	return phase, p, nil
}

// Handle normalizes ev and forwards it. Events Resolve rejects never reach
// the sink.
func (a *Adapter) Handle(ev Event) error {
	phase, p, err := Resolve(ev)
	if err != nil {
		return err
	}

	switch phase {
	case PhaseStart:
		err = a.sink.Start(p)
	case PhaseMove:
		err = a.sink.Move(p)
	case PhaseEnd:
		err = a.sink.End(p)
	}

	if err != nil {
		return fmt.Errorf("%s at (%v,%v): %w", ev.Kind(), p.X, p.Y, err)
	}

	return nil
}
