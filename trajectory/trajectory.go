// Package trajectory holds recorded quadrotor flights: per step positions, rotation matrices,
// timestamps and the terminated/truncated flags that end an episode.
package trajectory

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/flightning/quadviz/spatialmath"
)

// Trajectory is one recorded flight. All slices are indexed by step. Times and the flag slices may
// be shorter than Positions (or nil); missing flags read as false.
type Trajectory struct {
	Times      []float64
	Positions  []r3.Vector
	Rotations  []*spatialmath.RotationMatrix
	Terminated []bool
	Truncated  []bool
}

// Steps is the number of recorded steps, valid or not.
func (t *Trajectory) Steps() int {
	return len(t.Positions)
}

// Done reports whether step i ended the episode, by task termination or truncation.
func (t *Trajectory) Done(i int) bool {
	return flagAt(t.Terminated, i) || flagAt(t.Truncated, i)
}

func flagAt(flags []bool, i int) bool {
	return i >= 0 && i < len(flags) && flags[i]
}

// DoneStep returns the first step at which the trajectory is done, or -1 if it never is.
func (t *Trajectory) DoneStep() int {
	for i := 0; i < t.Steps(); i++ {
		if t.Done(i) {
			return i
		}
	}
	return -1
}

// TerminationIndex is the number of playable steps: everything up to and including the first done
// step. Steps at or after this index are never drawn. A trajectory that is never done plays in full.
func (t *Trajectory) TerminationIndex() int {
	if done := t.DoneStep(); done >= 0 {
		return done + 1
	}
	return t.Steps()
}

// Pose returns the placement of the body at step i.
func (t *Trajectory) Pose(i int) spatialmath.Pose {
	return spatialmath.NewPose(t.Positions[i], t.Rotations[i])
}

// Validate checks that every step has a position and a rotation.
func (t *Trajectory) Validate() error {
	if len(t.Positions) == 0 {
		return errors.New("trajectory has no steps")
	}
	if len(t.Rotations) != len(t.Positions) {
		return errors.Errorf("trajectory has %d positions but %d rotations", len(t.Positions), len(t.Rotations))
	}
	for i, rm := range t.Rotations {
		if rm == nil {
			return errors.Errorf("rotation at step %d is missing", i)
		}
	}
	if len(t.Times) > len(t.Positions) {
		return errors.Errorf("trajectory has %d timestamps for %d steps", len(t.Times), len(t.Positions))
	}
	return nil
}

// Append records one step.
func (t *Trajectory) Append(time float64, p spatialmath.Pose, terminated, truncated bool) {
	t.Times = append(t.Times, time)
	t.Positions = append(t.Positions, p.Point())
	t.Rotations = append(t.Rotations, p.Orientation().RotationMatrix())
	t.Terminated = append(t.Terminated, terminated)
	t.Truncated = append(t.Truncated, truncated)
}
