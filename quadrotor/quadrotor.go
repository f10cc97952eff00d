package quadrotor

import (
	"github.com/golang/geo/r3"

	"github.com/flightning/quadviz/primitives"
	"github.com/flightning/quadviz/spatialmath"
)

const numRotors = 4

// Quadrotor owns the primitives of one drawn vehicle. It is not safe for concurrent use and
// its primitives are never shared with another Quadrotor.
type Quadrotor struct {
	model Model

	body   *primitives.Dot
	rotors [numRotors]*primitives.Disc
	axes   [3]*primitives.Arrow
	arms   [numRotors]*primitives.Segment

	pose    spatialmath.Pose
	updates int
}

// New builds the primitives for a model. Nothing is drawn until DrawAt is called.
func New(model Model) *Quadrotor {
	q := &Quadrotor{
		model: model,
		body:  primitives.NewDot(model.BodyRadius, model.BodyResolution, model.BodyColor),
	}
	for i := range q.rotors {
		q.rotors[i] = primitives.NewDisc(model.RotorRadius, model.RotorResolution, model.BodyColor)
		q.rotors[i].SetAlpha(model.RotorAlpha)
		q.arms[i] = primitives.NewSegment(model.BodyColor, model.ArmWidth)
	}
	for i := range q.axes {
		q.axes[i] = primitives.NewArrow(model.AxisVector(i), model.AxisColors[i], model.AxisWidth)
	}
	return q
}

// DrawAt recomputes the world geometry of every part for the body placed at p.
func (q *Quadrotor) DrawAt(p spatialmath.Pose) {
	x := p.Point()
	rm := p.Orientation().RotationMatrix()

	q.body.DrawAt(x)
	for i := range q.rotors {
		motor := rm.Mul(q.model.RotorOffset(Rotor(i))).Add(x)
		q.rotors[i].DrawAt(motor, rm)
		q.arms[i].DrawFromTo(x, motor)
	}
	for _, axis := range q.axes {
		axis.DrawAt(x, rm)
	}

	q.pose = p
	q.updates++
}

// Parts returns every primitive in drawing order: body, rotors, axes, arms.
// It returns nil until the quadrotor has been drawn once.
func (q *Quadrotor) Parts() []primitives.Primitive {
	if q.pose == nil {
		return nil
	}
	parts := make([]primitives.Primitive, 0, 1+2*numRotors+len(q.axes))
	parts = append(parts, q.body)
	for _, r := range q.rotors {
		parts = append(parts, r)
	}
	for _, a := range q.axes {
		parts = append(parts, a)
	}
	for _, a := range q.arms {
		parts = append(parts, a)
	}
	return parts
}

// Rotor returns the plate primitive of a motor.
func (q *Quadrotor) Rotor(r Rotor) *primitives.Disc {
	return q.rotors[r]
}

// Center returns the current world position, or the origin if never drawn.
func (q *Quadrotor) Center() r3.Vector {
	if q.pose == nil {
		return r3.Vector{}
	}
	return q.pose.Point()
}

// Pose returns the last drawn pose, or nil.
func (q *Quadrotor) Pose() spatialmath.Pose {
	return q.pose
}

// Updates counts DrawAt calls.
func (q *Quadrotor) Updates() int {
	return q.updates
}

// Model returns the drawn model.
func (q *Quadrotor) Model() Model {
	return q.model
}
