package trajectory

import (
	"math"
	"math/rand"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/flightning/quadviz/spatialmath"
)

const gravity = 9.81

// Path is a kinematic flight, evaluated at time t in seconds.
type Path interface {
	PoseAt(t float64) spatialmath.Pose
}

// Helix circles Center at Radius while climbing, nose along the direction of travel and banked
// into the turn as a coordinated turn would be.
type Helix struct {
	Center      r3.Vector
	Radius      float64
	AngularRate float64
	ClimbRate   float64
	Phase       float64
}

// PoseAt implements Path.
func (h Helix) PoseAt(t float64) spatialmath.Pose {
	angle := h.Phase + h.AngularRate*t
	pt := h.Center.Add(r3.Vector{
		X: h.Radius * math.Cos(angle),
		Y: h.Radius * math.Sin(angle),
		Z: h.ClimbRate * t,
	})
	yaw := angle + math.Copysign(math.Pi/2, h.AngularRate)
	bank := math.Atan(h.Radius * h.AngularRate * h.AngularRate / gravity)
	if h.AngularRate < 0 {
		bank = -bank
	}
	return spatialmath.NewPose(pt, &spatialmath.EulerAngles{Roll: bank, Yaw: yaw})
}

// Flip hovers at Center and rolls through a full turn every Period seconds.
type Flip struct {
	Center r3.Vector
	Period float64
}

// PoseAt implements Path.
func (f Flip) PoseAt(t float64) spatialmath.Pose {
	roll := 0.0
	if f.Period > 0 {
		roll = 2 * math.Pi * math.Mod(t, f.Period) / f.Period
	}
	return spatialmath.NewPose(f.Center, &spatialmath.R4AA{Theta: roll, RX: 1})
}

// Sample records steps poses of p, dt seconds apart. If doneStep is in range the episode ends there:
// the terminated flag (or the truncated flag when truncated is set) is raised from doneStep on.
func Sample(p Path, steps int, dt float64, doneStep int, truncated bool) *Trajectory {
	t := &Trajectory{}
	for i := 0; i < steps; i++ {
		now := float64(i) * dt
		done := doneStep >= 0 && i >= doneStep
		t.Append(now, p.PoseAt(now), done && !truncated, done && truncated)
	}
	return t
}

// SyntheticBatch generates n helical flights. The first runs until it is truncated on its last step,
// the others end early at random steps so the batch has uneven termination indices.
func SyntheticBatch(n, steps int, dt float64, seed int64) (*Batch, error) {
	if n <= 0 || steps <= 0 {
		return nil, errors.Errorf("need at least one trajectory and one step, got %d and %d", n, steps)
	}
	if dt <= 0 {
		return nil, errors.Errorf("time step must be positive, got %v", dt)
	}
	//nolint:gosec
	rnd := rand.New(rand.NewSource(seed))
	trajs := make([]*Trajectory, n)
	for i := range trajs {
		rate := 0.5 + rnd.Float64()
		if rnd.Intn(2) == 0 {
			rate = -rate
		}
		h := Helix{
			Center:      r3.Vector{X: rnd.Float64()*2 - 1, Y: rnd.Float64()*2 - 1, Z: 1 + rnd.Float64()},
			Radius:      1 + 2*rnd.Float64(),
			AngularRate: rate,
			ClimbRate:   0.05 + 0.25*rnd.Float64(),
			Phase:       rnd.Float64() * 2 * math.Pi,
		}
		doneStep, truncated := steps-1, true
		if i > 0 {
			doneStep = steps/2 + rnd.Intn(steps-steps/2)
			truncated = rnd.Intn(3) == 0
		}
		trajs[i] = Sample(h, steps, dt, doneStep, truncated)
	}
	return NewBatch(trajs...)
}

// Hover holds Center and bobs up and down by Amplitude every Period seconds, slowly yawing.
type Hover struct {
	Center    r3.Vector
	Amplitude float64
	Period    float64
	YawRate   float64
}

// PoseAt implements Path.
func (h Hover) PoseAt(t float64) spatialmath.Pose {
	pt := h.Center
	if h.Period > 0 {
		pt.Z += h.Amplitude * math.Sin(2*math.Pi*t/h.Period)
	}
	return spatialmath.NewPose(pt, &spatialmath.EulerAngles{Yaw: h.YawRate * t})
}
