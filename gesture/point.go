package gesture

import (
	"encoding/json"
	"errors"
	"math"
)

// ErrNonFinite is returned when a sample carries a NaN or infinite coordinate.
var ErrNonFinite = errors.New("coordinates must be finite")

// Point is a normalized contact position. Units are whatever the input
// adapter produces; the tracker does no conversion.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point {
	return Point{X: x, Y: y}
}

// Finite reports whether both coordinates are finite numbers.
func (p Point) Finite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) &&
		!math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// Coords is the coordinate record of one contact.
type Coords struct {
	Start Point
	Move  Point
	End   Point
}

// coordsJSON keeps the flat field names consumers of swipemove expect.
type coordsJSON struct {
	StartX float64 `json:"startX"`
	StartY float64 `json:"startY"`
	MoveX  float64 `json:"moveX"`
	MoveY  float64 `json:"moveY"`
	EndX   float64 `json:"endX"`
	EndY   float64 `json:"endY"`
}

func (c Coords) flat() coordsJSON {
	return coordsJSON{
		StartX: c.Start.X, StartY: c.Start.Y,
		MoveX: c.Move.X, MoveY: c.Move.Y,
		EndX: c.End.X, EndY: c.End.Y,
	}
}

func (f coordsJSON) coords() Coords {
	return Coords{
		Start: Point{X: f.StartX, Y: f.StartY},
		Move:  Point{X: f.MoveX, Y: f.MoveY},
		End:   Point{X: f.EndX, Y: f.EndY},
	}
}

func (c Coords) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.flat())
}

func (c *Coords) UnmarshalJSON(data []byte) error {
	var f coordsJSON
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*c = f.coords()
	return nil
}
