package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

const (
	maxElevation = 89.9
	nearPlane    = 0.01
	fitMargin    = 1.1
)

// View positions an orbit camera around the middle of the world box. Angles are in degrees; an
// azimuth of 0 looks from +x toward the origin and positive elevation looks down.
type View struct {
	Azimuth   float64 `json:"azimuth"`
	Elevation float64 `json:"elevation"`
	FovY      float64 `json:"fov_y"`
	// Zoom scales the fitted camera distance; values above 1 move the camera closer.
	Zoom float64 `json:"zoom"`
}

// DefaultView looks down on the box from 30 degrees above, 60 degrees clockwise of +x.
func DefaultView() View {
	return View{Azimuth: -60, Elevation: 30, FovY: 30, Zoom: 1}
}

// Camera projects world points to pixels with a perspective projection.
type Camera struct {
	width, height int
	eye           r3.Vector
	viewProj      mgl64.Mat4
}

// NewCamera fits the camera so the whole box [lo, hi] is in view.
func NewCamera(width, height int, view View, lo, hi r3.Vector) (*Camera, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.Errorf("invalid image size (%d, %d)", width, height)
	}
	if view.FovY <= 0 || view.FovY >= 180 {
		return nil, errors.Errorf("invalid vertical field of view %v", view.FovY)
	}
	if view.Zoom <= 0 {
		view.Zoom = 1
	}

	target := lo.Add(hi).Mul(0.5)
	radius := hi.Sub(lo).Norm() / 2
	if radius == 0 {
		radius = 1
	}
	fov := mgl64.DegToRad(view.FovY)
	aspect := float64(width) / float64(height)
	halfAngle := fov / 2
	if aspect < 1 {
		halfAngle = math.Atan(math.Tan(halfAngle) * aspect)
	}
	distance := fitMargin * radius / math.Sin(halfAngle) / view.Zoom

	elevation := mgl64.DegToRad(mgl64.Clamp(view.Elevation, -maxElevation, maxElevation))
	azimuth := mgl64.DegToRad(view.Azimuth)
	eye := target.Add(r3.Vector{
		X: math.Cos(elevation) * math.Cos(azimuth),
		Y: math.Cos(elevation) * math.Sin(azimuth),
		Z: math.Sin(elevation),
	}.Mul(distance))

	viewMat := mgl64.LookAtV(toMgl(eye), toMgl(target), mgl64.Vec3{0, 0, 1})
	proj := mgl64.Perspective(fov, aspect, nearPlane*distance, distance+4*radius)
	return &Camera{
		width:    width,
		height:   height,
		eye:      eye,
		viewProj: proj.Mul4(viewMat),
	}, nil
}

func toMgl(v r3.Vector) mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}

// Project returns the pixel position of p, with y growing downward, and its distance along the
// view axis. ok is false for points at or behind the camera.
func (c *Camera) Project(p r3.Vector) (x, y, depth float64, ok bool) {
	clip := c.viewProj.Mul4x1(mgl64.Vec4{p.X, p.Y, p.Z, 1})
	w := clip.W()
	if w <= 1e-9 {
		return 0, 0, 0, false
	}
	ndcX, ndcY := clip.X()/w, clip.Y()/w
	x = (ndcX + 1) / 2 * float64(c.width)
	y = (1 - ndcY) / 2 * float64(c.height)
	return x, y, w, true
}

// Eye is the camera position in world coordinates.
func (c *Camera) Eye() r3.Vector {
	return c.eye
}

// Size returns the image size in pixels.
func (c *Camera) Size() (int, int) {
	return c.width, c.height
}
