// Package scene rasterizes world geometry into images: an orbit camera, the world box with its
// ground grid, a goal marker, trails and the primitives of every drawn body.
package scene

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"sort"
	"time"

	"github.com/fogleman/gg"
	"github.com/golang/geo/r3"
	"golang.org/x/image/font"

	"github.com/flightning/quadviz/primitives"
)

// referenceHeight is the image height at which line widths and font sizes are used as given.
const referenceHeight = 480.0

// Style is the paint of everything that is not a body part.
type Style struct {
	Background color.Color
	Grid       color.Color
	Box        color.Color
	Goal       color.Color
	GridLines  int
	TrailWidth float64
	TrailAlpha float64
	Label      bool
}

// DefaultStyle is a light gray panel with a white grid.
func DefaultStyle() Style {
	return Style{
		Background: color.RGBA{R: 0xea, G: 0xea, B: 0xf2, A: 0xff},
		Grid:       color.White,
		Box:        color.RGBA{R: 0xa0, G: 0xa0, B: 0xa8, A: 0xff},
		Goal:       color.RGBA{R: 0xdd, G: 0x84, B: 0x52, A: 0xff},
		GridLines:  10,
		TrailWidth: 1,
		TrailAlpha: 0.6,
		Label:      true,
	}
}

// Trail is the path a body has flown so far.
type Trail struct {
	Points []r3.Vector
	Color  color.Color
}

// Frame is everything drawn in one image.
type Frame struct {
	Index  int
	Total  int
	Time   time.Duration
	Parts  []primitives.Primitive
	Trails []Trail
}

// Renderer draws frames for a fixed camera and world box.
type Renderer struct {
	camera *Camera
	lo, hi r3.Vector
	goal   *r3.Vector
	style  Style
	scale  float64
	face   font.Face
}

// NewRenderer returns a renderer for the box [lo, hi]. goal may be nil.
func NewRenderer(camera *Camera, lo, hi r3.Vector, goal *r3.Vector, style Style) *Renderer {
	_, height := camera.Size()
	scale := float64(height) / referenceHeight
	return &Renderer{
		camera: camera,
		lo:     lo,
		hi:     hi,
		goal:   goal,
		style:  style,
		scale:  scale,
		face:   NewFace(12 * scale),
	}
}

// Render draws one frame. Static elements come first, then trails, then the body parts ordered far
// to near by their mean depth, then the label.
func (r *Renderer) Render(f Frame) image.Image {
	width, height := r.camera.Size()
	dc := gg.NewContext(width, height)
	setColor(dc, r.style.Background, 1)
	dc.Clear()

	r.drawGrid(dc)
	r.drawBox(dc)
	for _, trail := range f.Trails {
		r.drawPolyline(dc, trail.Points, trail.Color, r.style.TrailAlpha, r.style.TrailWidth)
	}
	if r.goal != nil {
		r.drawGoal(dc, *r.goal)
	}
	for _, part := range sortByDepth(r.camera, f.Parts) {
		r.drawPrimitive(dc, part)
	}
	if r.style.Label {
		label := fmt.Sprintf("frame %d/%d  t=%.2fs", f.Index+1, f.Total, f.Time.Seconds())
		DrawString(dc, r.face, label, image.Point{X: int(8 * r.scale), Y: int(20 * r.scale)}, color.Black)
	}
	return dc.Image()
}

type depthPart struct {
	part  primitives.Primitive
	depth float64
}

func sortByDepth(camera *Camera, parts []primitives.Primitive) []primitives.Primitive {
	sorted := make([]depthPart, 0, len(parts))
	for _, part := range parts {
		verts := part.Vertices()
		if len(verts) == 0 {
			continue
		}
		sum := 0.0
		for _, v := range verts {
			_, _, depth, _ := camera.Project(v)
			sum += depth
		}
		sorted = append(sorted, depthPart{part, sum / float64(len(verts))})
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].depth > sorted[j].depth
	})
	out := make([]primitives.Primitive, len(sorted))
	for i, dp := range sorted {
		out[i] = dp.part
	}
	return out
}

func (r *Renderer) drawPrimitive(dc *gg.Context, part primitives.Primitive) {
	style := part.Style()
	switch part.Kind() {
	case primitives.KindPolygon:
		if !r.tracePath(dc, part.Vertices()) {
			return
		}
		dc.ClosePath()
		setColor(dc, style.Color, style.Alpha)
		if style.LineWidth > 0 {
			dc.FillPreserve()
			dc.SetLineWidth(style.LineWidth * r.scale)
			dc.Stroke()
			return
		}
		dc.Fill()
	case primitives.KindLine:
		r.drawPolyline(dc, part.Vertices(), style.Color, style.Alpha, style.LineWidth)
	}
}

func (r *Renderer) drawPolyline(dc *gg.Context, pts []r3.Vector, c color.Color, alpha, width float64) {
	if len(pts) < 2 || !r.tracePath(dc, pts) {
		dc.ClearPath()
		return
	}
	setColor(dc, c, alpha)
	dc.SetLineWidth(width * r.scale)
	dc.Stroke()
}

// tracePath projects pts onto the current path. It leaves the path empty and returns false if any
// point is behind the camera.
func (r *Renderer) tracePath(dc *gg.Context, pts []r3.Vector) bool {
	dc.ClearPath()
	for i, p := range pts {
		x, y, _, ok := r.camera.Project(p)
		if !ok {
			dc.ClearPath()
			return false
		}
		if i == 0 {
			dc.MoveTo(x, y)
		} else {
			dc.LineTo(x, y)
		}
	}
	return len(pts) > 0
}

func (r *Renderer) drawGrid(dc *gg.Context) {
	n := r.style.GridLines
	if n <= 0 {
		return
	}
	z := r.lo.Z
	for i := 0; i <= n; i++ {
		f := float64(i) / float64(n)
		x := r.lo.X + f*(r.hi.X-r.lo.X)
		y := r.lo.Y + f*(r.hi.Y-r.lo.Y)
		r.drawPolyline(dc, []r3.Vector{{X: x, Y: r.lo.Y, Z: z}, {X: x, Y: r.hi.Y, Z: z}}, r.style.Grid, 1, 0.8)
		r.drawPolyline(dc, []r3.Vector{{X: r.lo.X, Y: y, Z: z}, {X: r.hi.X, Y: y, Z: z}}, r.style.Grid, 1, 0.8)
	}
}

func (r *Renderer) drawBox(dc *gg.Context) {
	for _, edge := range boxEdges(r.lo, r.hi) {
		r.drawPolyline(dc, edge[:], r.style.Box, 1, 0.8)
	}
}

// boxEdges returns the 12 edges of the axis aligned box [lo, hi].
func boxEdges(lo, hi r3.Vector) [][2]r3.Vector {
	corner := func(i int) r3.Vector {
		c := lo
		if i&1 != 0 {
			c.X = hi.X
		}
		if i&2 != 0 {
			c.Y = hi.Y
		}
		if i&4 != 0 {
			c.Z = hi.Z
		}
		return c
	}
	var edges [][2]r3.Vector
	for i := 0; i < 8; i++ {
		for _, bit := range []int{1, 2, 4} {
			if i&bit == 0 {
				edges = append(edges, [2]r3.Vector{corner(i), corner(i | bit)})
			}
		}
	}
	return edges
}

func (r *Renderer) drawGoal(dc *gg.Context, goal r3.Vector) {
	x, y, _, ok := r.camera.Project(goal)
	if !ok {
		return
	}
	setColor(dc, r.style.Goal, 1)
	dc.DrawCircle(x, y, 6*r.scale)
	dc.Fill()
	setColor(dc, color.Black, 1)
	dc.SetLineWidth(r.scale)
	dc.DrawCircle(x, y, 6*r.scale)
	dc.Stroke()
}

func setColor(dc *gg.Context, c color.Color, alpha float64) {
	red, green, blue := straight(c)
	dc.SetColor(color.NRGBA{R: to8(red), G: to8(green), B: to8(blue), A: to8(alpha)})
}

func to8(v float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, v)) * 255))
}
