package gesture

import "math"

// State is the lifecycle state of a tracker.
type State int

const (
	// StateIdle means no contact is in progress.
	StateIdle State = iota
	// StateActive means a start sample was seen and no end sample yet.
	StateActive
)

func (s State) String() string {
	if s == StateActive {
		return "active"
	}
	return "idle"
}

// Notifier receives what a tracker emits. Calls are synchronous and happen
// before the sample method returns.
type Notifier interface {
	// Progress is called for every move sample while a contact is active.
	Progress(c Coords)
	// Gesture is called at most once per end sample, never with KindNone.
	Gesture(k Kind, payload any)
}

// NotifierFuncs adapts plain functions to Notifier. Nil fields are skipped.
type NotifierFuncs struct {
	OnProgress func(c Coords)
	OnGesture  func(k Kind, payload any)
}

func (f NotifierFuncs) Progress(c Coords) {
	if f.OnProgress != nil {
		f.OnProgress(c)
	}
}

func (f NotifierFuncs) Gesture(k Kind, payload any) {
	if f.OnGesture != nil {
		f.OnGesture(k, payload)
	}
}

// Option configures a Tracker at construction.
type Option func(*Tracker)

// WithThreshold sets the swipe threshold. Negative or non-finite values are
// ignored and the default is kept.
func WithThreshold(threshold float64) Option {
	return func(t *Tracker) {
		if threshold >= 0 && !math.IsInf(threshold, 0) {
			t.threshold = threshold
		}
	}
}

// WithPayload sets the value forwarded with every gesture notification.
func WithPayload(payload any) Option {
	return func(t *Tracker) {
		t.payload = payload
	}
}

// Tracker follows one contact at a time and classifies it when it ends.
//
// A Tracker is not safe for concurrent use. Samples must be delivered from a
// single goroutine, or serialized by the caller, in arrival order.
type Tracker struct {
	notifier  Notifier
	threshold float64
	payload   any

	state  State
	coords Coords
}

// NewTracker creates an idle tracker. n may be nil.
func NewTracker(n Notifier, opts ...Option) *Tracker {
	t := &Tracker{
		notifier:  n,
		threshold: DefaultThreshold,
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Start begins a contact at p. A start while a contact is already active
// replaces the previous start position.
func (t *Tracker) Start(p Point) error {
	if !p.Finite() {
		return ErrNonFinite
	}

	t.state = StateActive
	t.coords.Start = p
	return nil
}

// Move records p as the current position and emits a progress notification.
// It does nothing while idle.
func (t *Tracker) Move(p Point) error {
	if !p.Finite() {
		return ErrNonFinite
	}

	if t.state != StateActive {
		return nil
	}

	t.coords.Move = p
	if t.notifier != nil {
		t.notifier.Progress(t.coords)
	}
	return nil
}

// End finishes the contact at p, classifies it and resets the coordinates.
//
// End is honored even when no contact is active: classification then runs
// against whatever start position is stored, which is the zero point after a
// previous end.
func (t *Tracker) End(p Point) error {
	if !p.Finite() {
		return ErrNonFinite
	}

	t.state = StateIdle
	t.coords.End = p

	kind := Classify(t.coords.Start, t.coords.End, t.threshold)
	if kind != KindNone && t.notifier != nil {
		t.notifier.Gesture(kind, t.payload)
	}

	t.coords = Coords{}
	return nil
}

// State returns the current lifecycle state.
func (t *Tracker) State() State {
	return t.state
}

// Coords returns a copy of the current coordinate record.
func (t *Tracker) Coords() Coords {
	return t.coords
}

func (t *Tracker) Threshold() float64 {
	return t.threshold
}

func (t *Tracker) Payload() any {
	return t.payload
}
