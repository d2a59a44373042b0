// Package surface hosts gesture trackers and re-publishes what they detect
// as named events to subscribed listeners.
package surface

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mobile-next/touchsweep/gesture"
	"github.com/mobile-next/touchsweep/input"
	"github.com/mobile-next/touchsweep/utils"
)

var (
	// ErrNotBound is returned when input reaches a surface whose listeners are detached.
	ErrNotBound = errors.New("surface is not bound")
	// ErrNotFound is returned for an unknown surface id.
	ErrNotFound = errors.New("surface not found")
)

// AllEvents subscribes a listener to every event a surface emits.
const AllEvents = "*"

// Event is a synthetic event dispatched on a surface.
type Event struct {
	Name    string          `json:"name"`
	Surface string          `json:"surfaceId"`
	Coords  *gesture.Coords `json:"coords,omitempty"`
	Detail  any             `json:"detail,omitempty"`
	Time    time.Time       `json:"time"`
}

// Listener is called synchronously for each event it subscribed to.
type Listener func(Event)

type listenerEntry struct {
	id   string
	name string
	fn   Listener
}

// Options configure a surface's tracker.
type Options struct {
	// Threshold in pixels; zero or negative means gesture.DefaultThreshold.
	Threshold float64
	// Data is forwarded as Detail on every gesture event.
	Data any
}

// Info is a point-in-time description of a surface.
type Info struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Threshold float64 `json:"threshold"`
	Bound     bool    `json:"bound"`
	State     string  `json:"state"`
	Listeners int     `json:"listeners"`
}

// Surface is an interactive area with one gesture tracker attached.
//
// Native events are delivered one at a time. The tracker update and the
// listener calls for an event finish before the next event is taken, so a
// listener must not dispatch into the surface it is listening on.
type Surface struct {
	id   string
	name string

	mu      sync.Mutex
	tracker *gesture.Tracker
	adapter *input.Adapter
	bound   bool
	pending []Event

	lmu       sync.RWMutex
	listeners []listenerEntry
}

// New creates a surface and binds it.
func New(name string, opts Options) *Surface {
	s := &Surface{
		id:   uuid.NewString(),
		name: name,
	}

	trackerOpts := []gesture.Option{gesture.WithPayload(opts.Data)}
	if opts.Threshold > 0 {
		trackerOpts = append(trackerOpts, gesture.WithThreshold(opts.Threshold))
	}

	notifier := gesture.NotifierFuncs{
		OnProgress: s.progress,
		OnGesture:  s.gesture,
	}
	s.tracker = gesture.NewTracker(notifier, trackerOpts...)
	s.adapter = input.NewAdapter(s.tracker)
	s.Bind()

	return s
}

func (s *Surface) ID() string {
	return s.id
}

func (s *Surface) Name() string {
	return s.name
}

// Bind attaches the surface to its input. Binding twice is a no-op.
func (s *Surface) Bind() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bound = true
}

// Unbind detaches the surface from its input. Later native events are
// rejected with ErrNotBound. Listeners stay registered.
func (s *Surface) Unbind() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.bound {
		utils.Verbose("Unbinding surface %s (%s)", s.id, s.name)
	}
	s.bound = false
}

func (s *Surface) Bound() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bound
}

// Dispatch delivers one native event and returns the events it produced,
// after every matching listener has seen them.
func (s *Surface) Dispatch(ev input.Event) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.bound {
		return nil, ErrNotBound
	}

	return s.dispatchLocked(ev)
}

// DispatchAll delivers a batch of native events as one unit. Every event is
// resolved before the first one reaches the tracker, so a batch with a bad
// event changes nothing and notifies no listener.
func (s *Surface) DispatchAll(evs []input.Event) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.bound {
		return nil, ErrNotBound
	}

	for i, ev := range evs {
		if _, _, err := input.Resolve(ev); err != nil {
			return nil, fmt.Errorf("event %d: %w", i, err)
		}
	}

	produced := []Event{}
	for i, ev := range evs {
		out, err := s.dispatchLocked(ev)
		if err != nil {
			return produced, fmt.Errorf("event %d: %w", i, err)
		}
		produced = append(produced, out...)
	}

	return produced, nil
}

func (s *Surface) dispatchLocked(ev input.Event) ([]Event, error) {
	s.pending = nil
	err := s.adapter.Handle(ev)
	out := s.pending
	s.pending = nil

	if err != nil {
		return nil, err
	}

	for _, e := range out {
		s.publish(e)
	}

	return out, nil
}

func (s *Surface) progress(c gesture.Coords) {
	s.pending = append(s.pending, Event{
		Name:    gesture.EventMove,
		Surface: s.id,
		Coords:  &c,
		Time:    time.Now(),
	})
}

func (s *Surface) gesture(k gesture.Kind, payload any) {
	s.pending = append(s.pending, Event{
		Name:    k.String(),
		Surface: s.id,
		Detail:  payload,
		Time:    time.Now(),
	})
}

func (s *Surface) publish(e Event) {
	s.lmu.RLock()
	targets := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		if l.name == e.Name || l.name == AllEvents {
			targets = append(targets, l.fn)
		}
	}
	s.lmu.RUnlock()

	for _, fn := range targets {
		fn(e)
	}
}

// AddListener subscribes fn to events called name, or to every event with
// AllEvents. It returns an id for RemoveListener.
func (s *Surface) AddListener(name string, fn Listener) string {
	id := uuid.NewString()

	s.lmu.Lock()
	defer s.lmu.Unlock()
	s.listeners = append(s.listeners, listenerEntry{id: id, name: name, fn: fn})
	return id
}

// RemoveListener unsubscribes a listener. It reports whether id was known.
func (s *Surface) RemoveListener(id string) bool {
	s.lmu.Lock()
	defer s.lmu.Unlock()

	for i, l := range s.listeners {
		if l.id == id {
			s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
			return true
		}
	}
	return false
}

// Info returns a snapshot of the surface.
func (s *Surface) Info() Info {
	s.mu.Lock()
	info := Info{
		ID:        s.id,
		Name:      s.name,
		Threshold: s.tracker.Threshold(),
		Bound:     s.bound,
		State:     s.tracker.State().String(),
	}
	s.mu.Unlock()

	s.lmu.RLock()
	info.Listeners = len(s.listeners)
	s.lmu.RUnlock()

	return info
}
