package primitives

import (
	"image/color"
	"math"

	"github.com/golang/geo/r3"

	"github.com/flightning/quadviz/spatialmath"
)

const minResolution = 3

// circleTemplate samples a circle of radius r in the local XY plane. The first and last samples
// coincide so the outline closes on itself.
func circleTemplate(r float64, resolution int) []r3.Vector {
	if resolution < minResolution {
		resolution = minResolution
	}
	pts := make([]r3.Vector, resolution)
	step := 2 * math.Pi / float64(resolution-1)
	for i := range pts {
		theta := step * float64(i)
		pts[i] = r3.Vector{X: r * math.Cos(theta), Y: r * math.Sin(theta)}
	}
	return pts
}

// Disc is a flat filled circle, used for rotor plates. It is oriented with the body.
type Disc struct {
	radius   float64
	template []r3.Vector
	vertices []r3.Vector
	style    Style
}

// NewDisc samples the disc perimeter once; resolution is clamped to at least 3.
func NewDisc(radius float64, resolution int, c color.Color) *Disc {
	style := DefaultStyle()
	style.Color = c
	style.LineWidth = 0
	return &Disc{
		radius:   radius,
		template: circleTemplate(radius, resolution),
		style:    style,
	}
}

// DrawAt places the disc center at x with orientation o.
func (d *Disc) DrawAt(x r3.Vector, o spatialmath.Orientation) {
	d.vertices = spatialmath.TransformPoints(spatialmath.NewPose(x, o), d.template)
}

// SetAlpha sets the fill transparency.
func (d *Disc) SetAlpha(a float64) {
	d.style.Alpha = math.Max(0, math.Min(1, a))
}

// Radius returns the disc radius.
func (d *Disc) Radius() float64 {
	return d.radius
}

// Template returns a copy of the body frame perimeter samples.
func (d *Disc) Template() []r3.Vector {
	return append([]r3.Vector(nil), d.template...)
}

// Kind implements Primitive.
func (d *Disc) Kind() Kind { return KindPolygon }

// Style implements Primitive.
func (d *Disc) Style() Style { return d.style }

// Vertices implements Primitive.
func (d *Disc) Vertices() []r3.Vector { return d.vertices }

// Dot is a small disc that always lies in the world XY plane. It marks a point, so it is
// translated but never rotated.
type Dot struct {
	template []r3.Vector
	vertices []r3.Vector
	style    Style
}

// NewDot samples the marker outline once.
func NewDot(radius float64, resolution int, c color.Color) *Dot {
	style := DefaultStyle()
	style.Color = c
	style.LineWidth = 0
	return &Dot{template: circleTemplate(radius, resolution), style: style}
}

// DrawAt centers the dot on x.
func (d *Dot) DrawAt(x r3.Vector) {
	d.vertices = spatialmath.TransformPoints(spatialmath.NewPoseFromPoint(x), d.template)
}

// Kind implements Primitive.
func (d *Dot) Kind() Kind { return KindPolygon }

// Style implements Primitive.
func (d *Dot) Style() Style { return d.style }

// Vertices implements Primitive.
func (d *Dot) Vertices() []r3.Vector { return d.vertices }
