// Package primitives contains the drawable parts a body is assembled from. Each primitive keeps
// its geometry once in the body frame and derives fresh world frame vertices every time it is drawn.
package primitives

import (
	"image/color"

	"github.com/golang/geo/r3"
)

// Kind tells a renderer how to rasterize a primitive's vertices.
type Kind int

const (
	// KindPolygon is a closed, filled outline.
	KindPolygon Kind = iota
	// KindLine is an open polyline.
	KindLine
)

func (k Kind) String() string {
	switch k {
	case KindPolygon:
		return "polygon"
	case KindLine:
		return "line"
	default:
		return "unknown"
	}
}

// Style holds the paint used for a primitive.
type Style struct {
	Color     color.Color
	Alpha     float64
	LineWidth float64
}

// DefaultStyle is opaque black with a 1.5 wide stroke.
func DefaultStyle() Style {
	return Style{Color: color.Black, Alpha: 1, LineWidth: 1.5}
}

// Primitive is a drawable part in world coordinates.
type Primitive interface {
	Kind() Kind
	Style() Style
	// Vertices returns the world frame vertices from the last draw call, or nil if never drawn.
	Vertices() []r3.Vector
}
