package commands

import (
	"fmt"
	"math"

	"github.com/mobile-next/touchsweep/gesture"
)

// ClassifyRequest represents the parameters for a classify command
type ClassifyRequest struct {
	X1        float64 `json:"x1"`
	Y1        float64 `json:"y1"`
	X2        float64 `json:"x2"`
	Y2        float64 `json:"y2"`
	Threshold float64 `json:"threshold,omitempty"`
}

// ClassifyResponse is the data of a successful classify command
type ClassifyResponse struct {
	Gesture   string  `json:"gesture"`
	Direction string  `json:"direction"`
	Threshold float64 `json:"threshold"`
	gesture.Displacement
}

// ClassifyCommand classifies a single start/end pair without creating a surface.
// A zero threshold means the default.
func ClassifyCommand(req ClassifyRequest) *CommandResponse {
	start := gesture.Pt(req.X1, req.Y1)
	end := gesture.Pt(req.X2, req.Y2)

	if !start.Finite() || !end.Finite() {
		return NewErrorResponse(fmt.Errorf("%w: got (%v,%v) -> (%v,%v)", gesture.ErrNonFinite, req.X1, req.Y1, req.X2, req.Y2))
	}

	threshold := req.Threshold
	if threshold < 0 || math.IsNaN(threshold) || math.IsInf(threshold, 0) {
		return NewErrorResponse(fmt.Errorf("threshold must be a non-negative number, got %v", req.Threshold))
	}
	if threshold == 0 {
		threshold = gesture.DefaultThreshold
	}

	kind := gesture.Classify(start, end, threshold)

	return NewSuccessResponse(ClassifyResponse{
		Gesture:      kind.String(),
		Direction:    kind.Direction(),
		Threshold:    threshold,
		Displacement: gesture.Measure(start, end),
	})
}
