package input

import (
	"fmt"
	"strings"
)

// Raw is the serialized form of a native event, shared by the JSON-RPC API
// and trace files. Mouse events fill PageX/PageY, touch events fill
// ChangedTouches.
type Raw struct {
	Type           string  `json:"type" yaml:"type" plist:"type"`
	PageX          float64 `json:"pageX,omitempty" yaml:"pageX,omitempty" plist:"pageX,omitempty"`
	PageY          float64 `json:"pageY,omitempty" yaml:"pageY,omitempty" plist:"pageY,omitempty"`
	ChangedTouches []Touch `json:"changedTouches,omitempty" yaml:"changedTouches,omitempty" plist:"changedTouches,omitempty"`
}

// Decode builds the modality-specific event for raw.
func Decode(raw Raw) (Event, error) {
	eventType := strings.ToLower(strings.TrimSpace(raw.Type))
	if _, ok := PhaseOf(eventType); !ok {
		return nil, fmt.Errorf("%w: %q, expected one of %s", ErrUnknownType, raw.Type, strings.Join(NativeTypes, ", "))
	}

	if strings.HasPrefix(eventType, "touch") {
		return TouchEvent{Type: eventType, ChangedTouches: raw.ChangedTouches}, nil
	}

	return MouseEvent{Type: eventType, PageX: raw.PageX, PageY: raw.PageY}, nil
}
