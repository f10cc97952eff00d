package primitives

import (
	"image/color"

	"github.com/golang/geo/r3"

	"github.com/flightning/quadviz/spatialmath"
)

// Segment is a straight line between two world points, used for arms.
type Segment struct {
	vertices []r3.Vector
	style    Style
}

// NewSegment returns an undrawn segment.
func NewSegment(c color.Color, width float64) *Segment {
	style := DefaultStyle()
	style.Color = c
	style.LineWidth = width
	return &Segment{style: style}
}

// DrawFromTo draws the segment from a to b.
func (s *Segment) DrawFromTo(a, b r3.Vector) {
	s.vertices = []r3.Vector{a, b}
}

// Kind implements Primitive.
func (s *Segment) Kind() Kind { return KindLine }

// Style implements Primitive.
func (s *Segment) Style() Style { return s.style }

// Vertices implements Primitive.
func (s *Segment) Vertices() []r3.Vector { return s.vertices }

// Arrow is a body axis indicator. It stores its body frame direction and scale and is drawn as a line
// from the body origin to origin + R·axis.
type Arrow struct {
	axis     r3.Vector
	vertices []r3.Vector
	style    Style
}

// NewArrow returns an undrawn arrow for the given body frame vector.
func NewArrow(axis r3.Vector, c color.Color, width float64) *Arrow {
	style := DefaultStyle()
	style.Color = c
	style.LineWidth = width
	return &Arrow{axis: axis, style: style}
}

// DrawFromTo draws the arrow from x to x+u; u already carries direction and length.
func (a *Arrow) DrawFromTo(x, u r3.Vector) {
	a.vertices = []r3.Vector{x, x.Add(u)}
}

// DrawAt draws the arrow's body frame axis for a body at x with orientation o.
func (a *Arrow) DrawAt(x r3.Vector, o spatialmath.Orientation) {
	a.DrawFromTo(x, spatialmath.RotateVector(o, a.axis))
}

// Axis returns the body frame vector.
func (a *Arrow) Axis() r3.Vector {
	return a.axis
}

// Kind implements Primitive.
func (a *Arrow) Kind() Kind { return KindLine }

// Style implements Primitive.
func (a *Arrow) Style() Style { return a.style }

// Vertices implements Primitive.
func (a *Arrow) Vertices() []r3.Vector { return a.vertices }
