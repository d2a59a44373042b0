package gesture

import "math"

// DefaultThreshold is the minimum travel, in pixels, along the dominant axis
// for a contact to count as a swipe.
const DefaultThreshold = 40

// Axis is the dominant axis of a contact.
type Axis string

const (
	AxisX Axis = "x"
	AxisY Axis = "y"
)

// Displacement describes how far a contact travelled between start and end.
type Displacement struct {
	DistX float64 `json:"distX"`
	DistY float64 `json:"distY"`
	Axis  Axis    `json:"axis"`
}

// Measure computes the absolute travel on each axis. Ties go to the Y axis.
func Measure(start, end Point) Displacement {
	d := Displacement{
		DistX: math.Abs(end.X - start.X),
		DistY: math.Abs(end.Y - start.Y),
		Axis:  AxisY,
	}

	if d.DistX > d.DistY {
		d.Axis = AxisX
	}

	return d
}

// Classify turns a start/end pair into a gesture.
//
// The dominant axis decides the swipe direction, and the travel along it must
// exceed threshold. A contact that did not move at all is a tap. Anything in
// between (some movement, but not enough) is KindNone. NaN coordinates fail
// every comparison and also end up as KindNone.
func Classify(start, end Point, threshold float64) Kind {
	d := Measure(start, end)

	switch d.Axis {
	case AxisX:
		if end.X < start.X && d.DistX > threshold {
			return KindLeft
		}
		if end.X > start.X && d.DistX > threshold {
			return KindRight
		}
	default:
		if end.Y < start.Y && d.DistY > threshold {
			return KindUp
		}
		if end.Y > start.Y && d.DistY > threshold {
			return KindDown
		}
	}

	if end.X == start.X && end.Y == start.Y {
		return KindTap
	}

	return KindNone
}
