// Package gesture classifies a single pointer contact into a tap or a swipe.
package gesture

import (
	"fmt"
	"strings"
)

// Kind is the outcome of a completed contact. Its string form is the name of
// the event dispatched on the surface.
type Kind string

const (
	KindNone  Kind = ""
	KindTap   Kind = "tap"
	KindUp    Kind = "swipeup"
	KindDown  Kind = "swipedown"
	KindLeft  Kind = "swipeleft"
	KindRight Kind = "swiperight"
)

// EventMove is the name of the progress notification emitted on every move
// sample while a contact is active.
const EventMove = "swipemove"

// Kinds lists every gesture a contact can produce.
var Kinds = []Kind{KindTap, KindUp, KindDown, KindLeft, KindRight}

func (k Kind) String() string {
	return string(k)
}

// Direction returns the short name of the gesture: tap, up, down, left, right or none.
func (k Kind) Direction() string {
	switch k {
	case KindTap:
		return "tap"
	case KindUp:
		return "up"
	case KindDown:
		return "down"
	case KindLeft:
		return "left"
	case KindRight:
		return "right"
	default:
		return "none"
	}
}

// ParseKind accepts either the event name ("swipeup") or the short
// direction ("up"). Matching is case-insensitive.
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, k := range Kinds {
		if name == string(k) || name == k.Direction() {
			return k, nil
		}
	}

	if name == "none" || name == "" {
		return KindNone, nil
	}

	return KindNone, fmt.Errorf("unknown gesture: %q", s)
}
