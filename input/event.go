// Package input turns native pointer events into normalized contact samples.
//
// Mouse-like and touch-like devices report positions differently. Each
// modality has its own Event implementation, and all of them yield the same
// gesture.Point so the tracker never sees a device-specific shape.
package input

import (
	"errors"

	"github.com/mobile-next/touchsweep/gesture"
)

var (
	// ErrUnknownType is returned for an event type nobody listens to.
	ErrUnknownType = errors.New("unknown event type")
	// ErrNoTouches is returned for a touch event without changed touches.
	ErrNoTouches = errors.New("touch event has no changed touches")
)

// Phase is the lifecycle point a native event maps to.
type Phase int

const (
	PhaseStart Phase = iota
	PhaseMove
	PhaseEnd
)

func (p Phase) String() string {
	switch p {
	case PhaseStart:
		return "start"
	case PhaseMove:
		return "move"
	case PhaseEnd:
		return "end"
	default:
		return "unknown"
	}
}

// Native event types a surface listens to.
const (
	TypeTouchStart = "touchstart"
	TypeTouchMove  = "touchmove"
	TypeTouchEnd   = "touchend"
	TypeMouseDown  = "mousedown"
	TypeMouseMove  = "mousemove"
	TypeMouseUp    = "mouseup"
)

// NativeTypes lists every native event type a bound surface handles.
var NativeTypes = []string{
	TypeTouchStart, TypeTouchMove, TypeTouchEnd,
	TypeMouseDown, TypeMouseMove, TypeMouseUp,
}

var phases = map[string]Phase{
	TypeTouchStart: PhaseStart,
	TypeTouchMove:  PhaseMove,
	TypeTouchEnd:   PhaseEnd,
	TypeMouseDown:  PhaseStart,
	TypeMouseMove:  PhaseMove,
	TypeMouseUp:    PhaseEnd,
}

// PhaseOf returns the phase for a native event type.
func PhaseOf(eventType string) (Phase, bool) {
	p, ok := phases[eventType]
	return p, ok
}

// Event is a native input event from some modality.
type Event interface {
	// Kind returns the native event type, e.g. "mousedown".
	Kind() string
	Phase() Phase
	// Position returns the normalized coordinates of the event.
	Position() (gesture.Point, error)
}

// MouseEvent is a mouse-like event. Its position is the page position.
type MouseEvent struct {
	Type  string
	PageX float64
	PageY float64
}

func (e MouseEvent) Kind() string {
	return e.Type
}

func (e MouseEvent) Phase() Phase {
	return phases[e.Type]
}

func (e MouseEvent) Position() (gesture.Point, error) {
	return gesture.Point{X: e.PageX, Y: e.PageY}, nil
}

// Touch is one contact point in a touch event.
type Touch struct {
	Identifier int     `json:"identifier" yaml:"identifier" plist:"identifier"`
	ScreenX    float64 `json:"screenX" yaml:"screenX" plist:"screenX"`
	ScreenY    float64 `json:"screenY" yaml:"screenY" plist:"screenY"`
}

// TouchEvent is a touch-like event. Its position is the screen position of
// the first changed touch; other touches are ignored.
type TouchEvent struct {
	Type           string
	ChangedTouches []Touch
}

func (e TouchEvent) Kind() string {
	return e.Type
}

func (e TouchEvent) Phase() Phase {
	return phases[e.Type]
}

func (e TouchEvent) Position() (gesture.Point, error) {
	if len(e.ChangedTouches) == 0 {
		return gesture.Point{}, ErrNoTouches
	}

	t := e.ChangedTouches[0]
	return gesture.Point{X: t.ScreenX, Y: t.ScreenY}, nil
}
