package commands

import (
	"fmt"
	"math"

	"github.com/mobile-next/touchsweep/input"
	"github.com/mobile-next/touchsweep/surface"
	"github.com/mobile-next/touchsweep/utils"
)

// SurfaceCreateRequest represents the parameters for creating a surface
type SurfaceCreateRequest struct {
	Name      string      `json:"name"`
	Threshold float64     `json:"threshold,omitempty"`
	Data      interface{} `json:"data,omitempty"`
}

// SurfaceRequest identifies an existing surface
type SurfaceRequest struct {
	SurfaceID string `json:"surfaceId"`
}

// InputRequest represents native events delivered to a surface. Event is a
// single event; Events is a batch processed in order after it.
type InputRequest struct {
	SurfaceID string      `json:"surfaceId"`
	Event     *input.Raw  `json:"event,omitempty"`
	Events    []input.Raw `json:"events,omitempty"`
}

// SurfaceCreateCommand creates and binds a surface
func SurfaceCreateCommand(req SurfaceCreateRequest) *CommandResponse {
	if req.Threshold < 0 || math.IsNaN(req.Threshold) || math.IsInf(req.Threshold, 0) {
		return NewErrorResponse(fmt.Errorf("threshold must be a positive number, got %v", req.Threshold))
	}

	registry, err := requireRegistry()
	if err != nil {
		return NewErrorResponse(err)
	}

	s := surface.New(req.Name, surface.Options{
		Threshold: req.Threshold,
		Data:      req.Data,
	})

	if registry.Add(s) {
		utils.Verbose("Surface registry full, evicted least recently used surface")
	}

	utils.Info("Created surface %s (%s)", s.ID(), s.Name())
	return NewSuccessResponse(s.Info())
}

// SurfaceDestroyCommand unbinds a surface and forgets it
func SurfaceDestroyCommand(req SurfaceRequest) *CommandResponse {
	registry, err := requireRegistry()
	if err != nil {
		return NewErrorResponse(err)
	}

	if req.SurfaceID == "" {
		return NewErrorResponse(fmt.Errorf("surface ID is required"))
	}

	if err := registry.Remove(req.SurfaceID); err != nil {
		return NewErrorResponse(err)
	}

	return NewSuccessResponse(map[string]interface{}{
		"message": fmt.Sprintf("Destroyed surface %s", req.SurfaceID),
	})
}

// SurfaceListCommand lists all live surfaces
func SurfaceListCommand() *CommandResponse {
	registry, err := requireRegistry()
	if err != nil {
		return NewErrorResponse(err)
	}

	return NewSuccessResponse(map[string]interface{}{
		"surfaces": registry.List(),
	})
}

// SurfaceInfoCommand describes one surface
func SurfaceInfoCommand(req SurfaceRequest) *CommandResponse {
	s, err := FindSurface(req.SurfaceID)
	if err != nil {
		return NewErrorResponse(err)
	}

	return NewSuccessResponse(s.Info())
}

// InputCommand dispatches native events on a surface and returns the
// synthetic events they produced. A batch with any rejected event is refused
// as a whole before the surface sees it.
func InputCommand(req InputRequest) *CommandResponse {
	s, err := FindSurface(req.SurfaceID)
	if err != nil {
		return NewErrorResponse(err)
	}

	raws := make([]input.Raw, 0, len(req.Events)+1)
	if req.Event != nil {
		raws = append(raws, *req.Event)
	}
	raws = append(raws, req.Events...)

	if len(raws) == 0 {
		return NewErrorResponse(fmt.Errorf("'event' or 'events' is required"))
	}

	events := make([]input.Event, 0, len(raws))
	for i, raw := range raws {
		ev, err := input.Decode(raw)
		if err != nil {
			return NewErrorResponse(fmt.Errorf("event %d: %w", i, err))
		}
		events = append(events, ev)
	}

	produced, err := s.DispatchAll(events)
	if err != nil {
		return NewErrorResponse(err)
	}

	return NewSuccessResponse(map[string]interface{}{
		"events": produced,
	})
}
