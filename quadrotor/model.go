// Package quadrotor draws a stylized quadrotor: a center marker, four rotor plates, four arms and
// the three body axes.
package quadrotor

import (
	"image/color"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// Rotor identifies one of the four motors.
type Rotor int

// The motors in drawing order.
const (
	FrontRight Rotor = iota
	BackLeft
	BackRight
	FrontLeft
)

var rotorNames = [...]string{"front_right", "back_left", "back_right", "front_left"}

func (r Rotor) String() string {
	if r < 0 || int(r) >= len(rotorNames) {
		return "unknown"
	}
	return rotorNames[r]
}

// Model holds the body frame constants and paint of the drawn quadrotor.
type Model struct {
	// AxisLength is the length of each drawn body axis.
	AxisLength float64
	// ArmOffset is the x and y distance from the center to each motor.
	ArmOffset       float64
	BodyRadius      float64
	RotorRadius     float64
	BodyResolution  int
	RotorResolution int
	RotorAlpha      float64
	ArmWidth        float64
	AxisWidth       float64

	BodyColor color.Color
	// AxisColors paint the x, y and z body axes.
	AxisColors [3]color.Color
}

// DefaultModel is sized for trajectories in meters: 1m body axes and motors 0.4m off both body axes.
func DefaultModel() Model {
	return Model{
		AxisLength:      1.0,
		ArmOffset:       0.4,
		BodyRadius:      0.2,
		RotorRadius:     0.2,
		BodyResolution:  40,
		RotorResolution: 50,
		RotorAlpha:      1.0,
		ArmWidth:        1.5,
		AxisWidth:       2.0,
		BodyColor:       color.Black,
		AxisColors: [3]color.Color{
			color.RGBA{R: 0xff, A: 0xff},
			color.RGBA{G: 0x80, A: 0xff},
			color.RGBA{B: 0xff, A: 0xff},
		},
	}
}

// Scaled returns a copy with every length multiplied by s. Widths and resolutions are kept.
func (m Model) Scaled(s float64) Model {
	m.AxisLength *= s
	m.ArmOffset *= s
	m.BodyRadius *= s
	m.RotorRadius *= s
	return m
}

// Validate checks that the model can be drawn.
func (m Model) Validate() error {
	switch {
	case m.AxisLength <= 0:
		return errors.Errorf("axis length must be positive, got %v", m.AxisLength)
	case m.ArmOffset <= 0:
		return errors.Errorf("arm offset must be positive, got %v", m.ArmOffset)
	case m.BodyRadius <= 0 || m.RotorRadius <= 0:
		return errors.Errorf("body and rotor radius must be positive, got %v and %v", m.BodyRadius, m.RotorRadius)
	case m.RotorAlpha < 0 || m.RotorAlpha > 1:
		return errors.Errorf("rotor alpha must be in [0, 1], got %v", m.RotorAlpha)
	}
	return nil
}

// RotorOffset returns the body frame position of a motor.
func (m Model) RotorOffset(r Rotor) r3.Vector {
	a := m.ArmOffset
	switch r {
	case FrontRight:
		return r3.Vector{X: a, Y: -a}
	case BackLeft:
		return r3.Vector{X: -a, Y: a}
	case BackRight:
		return r3.Vector{X: -a, Y: -a}
	case FrontLeft:
		return r3.Vector{X: a, Y: a}
	default:
		return r3.Vector{}
	}
}

// AxisVector returns the body frame vector drawn for axis i (0 for x, 1 for y, 2 for z).
func (m Model) AxisVector(i int) r3.Vector {
	switch i {
	case 0:
		return r3.Vector{X: m.AxisLength}
	case 1:
		return r3.Vector{Y: m.AxisLength}
	default:
		return r3.Vector{Z: m.AxisLength}
	}
}
