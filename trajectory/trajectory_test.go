package trajectory

import (
	"bytes"
	"math"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang/geo/r3"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"go.viam.com/test"

	"github.com/flightning/quadviz/spatialmath"
)

func line(steps int, terminated, truncated []bool) *Trajectory {
	t := &Trajectory{Terminated: terminated, Truncated: truncated}
	for i := 0; i < steps; i++ {
		t.Times = append(t.Times, 0.02*float64(i))
		t.Positions = append(t.Positions, r3.Vector{X: float64(i)})
		t.Rotations = append(t.Rotations, spatialmath.NewIdentityRotation())
	}
	return t
}

func TestTerminationIndex(t *testing.T) {
	t.Run("never done plays in full", func(t *testing.T) {
		traj := line(5, nil, nil)
		test.That(t, traj.DoneStep(), test.ShouldEqual, -1)
		test.That(t, traj.TerminationIndex(), test.ShouldEqual, 5)
	})

	t.Run("terminated", func(t *testing.T) {
		traj := line(6, []bool{false, false, true, true, true, true}, nil)
		test.That(t, traj.Done(1), test.ShouldBeFalse)
		test.That(t, traj.Done(2), test.ShouldBeTrue)
		test.That(t, traj.DoneStep(), test.ShouldEqual, 2)
		test.That(t, traj.TerminationIndex(), test.ShouldEqual, 3)
	})

	t.Run("truncated wins when it comes first", func(t *testing.T) {
		traj := line(6, []bool{false, false, false, false, true, true}, []bool{false, true})
		test.That(t, traj.DoneStep(), test.ShouldEqual, 1)
		test.That(t, traj.TerminationIndex(), test.ShouldEqual, 2)
	})

	t.Run("done on the first step", func(t *testing.T) {
		traj := line(3, []bool{true}, nil)
		test.That(t, traj.TerminationIndex(), test.ShouldEqual, 1)
	})
}

func TestValidate(t *testing.T) {
	test.That(t, (&Trajectory{}).Validate(), test.ShouldNotBeNil)

	traj := line(3, nil, nil)
	test.That(t, traj.Validate(), test.ShouldBeNil)

	traj.Rotations = traj.Rotations[:2]
	test.That(t, traj.Validate().Error(), test.ShouldContainSubstring, "3 positions but 2 rotations")

	traj = line(3, nil, nil)
	traj.Rotations[1] = nil
	test.That(t, traj.Validate().Error(), test.ShouldContainSubstring, "step 1")
}

func TestBatch(t *testing.T) {
	_, err := NewBatch()
	test.That(t, err, test.ShouldEqual, ErrEmptyBatch)

	_, err = NewBatch(line(2, nil, nil), nil)
	test.That(t, err, test.ShouldNotBeNil)

	long := line(10, nil, nil)
	short := line(10, []bool{false, false, false, true}, nil)
	b, err := NewBatch(short, long)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, b.Len(), test.ShouldEqual, 2)
	test.That(t, b.FrameCount(), test.ShouldEqual, 10)
	test.That(t, b.Interval(), test.ShouldEqual, 20*time.Millisecond)

	lo, hi := b.Bounds()
	test.That(t, lo, test.ShouldResemble, r3.Vector{})
	test.That(t, hi, test.ShouldResemble, r3.Vector{X: 9})

	want := []Summary{
		{Index: 0, Steps: 10, TerminationIndex: 4, Terminated: true},
		{Index: 1, Steps: 10, TerminationIndex: 10},
	}
	test.That(t, cmp.Diff(want, b.Summaries()), test.ShouldBeEmpty)

	t.Run("frame count is the largest termination index", func(t *testing.T) {
		b, err := NewBatch(line(8, []bool{false, true}, nil), line(8, nil, []bool{false, false, false, false, true}))
		test.That(t, err, test.ShouldBeNil)
		test.That(t, b.FrameCount(), test.ShouldEqual, 5)
	})

	t.Run("interval fallback", func(t *testing.T) {
		traj := line(3, nil, nil)
		traj.Times = []float64{1, 1, 1}
		b, err := NewBatch(traj)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, b.Interval(), test.ShouldEqual, DefaultInterval)

		traj.Times = nil
		test.That(t, b.Interval(), test.ShouldEqual, DefaultInterval)

		// steps shorter than a nanosecond cannot be a tick period
		traj.Times = []float64{0, 1e-10, 2e-10}
		test.That(t, b.Interval(), test.ShouldEqual, DefaultInterval)
	})
}

const sampleJSON = `{
  "time": [[0, 0.1, 0.2], [0, 0.1, 0.2]],
  "position": [[[0, 0, 1, 9, 9], [0, 0, 2, 9, 9], [0, 0, 3, 9, 9]], [[1, 1, 1], [2, 2, 2], [3, 3, 3]]],
  "rotation": [
    [[[1, 0, 0], [0, 1, 0], [0, 0, 1]], [[1, 0, 0], [0, 1, 0], [0, 0, 1]], [[0, -1, 0], [1, 0, 0], [0, 0, 1]]],
    [[[1, 0, 0], [0, 1, 0], [0, 0, 1]], [[1, 0, 0], [0, 1, 0], [0, 0, 1]], [[1, 0, 0], [0, 1, 0], [0, 0, 1]]]
  ],
  "terminated": [[false, false, false], [false, true, true]],
  "truncated": [[false, false, true], [false, false, false]]
}`

func TestDecode(t *testing.T) {
	b, err := Decode(strings.NewReader(sampleJSON))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, b.Len(), test.ShouldEqual, 2)
	test.That(t, b.FrameCount(), test.ShouldEqual, 3)
	test.That(t, b.Interval(), test.ShouldEqual, 100*time.Millisecond)
	test.That(t, b.Trajectory(1).TerminationIndex(), test.ShouldEqual, 2)

	first := b.Trajectory(0)
	test.That(t, first.Positions[2], test.ShouldResemble, r3.Vector{Z: 3})
	pose := first.Pose(2)
	test.That(t, spatialmath.OrientationAlmostEqual(pose.Orientation(), &spatialmath.R4AA{Theta: math.Pi / 2, RZ: 1}), test.ShouldBeTrue)

	t.Run("round trip", func(t *testing.T) {
		var buf bytes.Buffer
		test.That(t, Encode(&buf, b), test.ShouldBeNil)
		again, err := Decode(&buf)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, again.Summaries(), test.ShouldResemble, b.Summaries())
		test.That(t, again.Trajectory(0).Rotations[2], test.ShouldResemble, first.Rotations[2])
		approx := cmpopts.EquateApprox(0, 1e-12)
		test.That(t, cmp.Diff(first.Positions, again.Trajectory(0).Positions, approx), test.ShouldBeEmpty)
		test.That(t, cmp.Diff(first.Times, again.Trajectory(0).Times, approx), test.ShouldBeEmpty)
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "traj.json")
		test.That(t, WriteJSON(path, b), test.ShouldBeNil)
		again, err := ReadJSON(path)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, again.FrameCount(), test.ShouldEqual, 3)

		_, err = ReadJSON(filepath.Join(t.TempDir(), "missing.json"))
		test.That(t, err, test.ShouldNotBeNil)
	})

	for name, body := range map[string]string{
		"not json":        `{`,
		"empty":           `{"position": []}`,
		"series mismatch": `{"position": [[[0,0,0]]], "rotation": []}`,
		"short position":  `{"position": [[[0,0]]], "rotation": [[[[1,0,0],[0,1,0],[0,0,1]]]]}`,
		"short rotation":  `{"position": [[[0,0,0]]], "rotation": [[[[1,0,0],[0,1,0]]]]}`,
		"ragged row":      `{"position": [[[0,0,0]]], "rotation": [[[[1,0,0],[0,1],[0,0,1]]]]}`,
		"missing steps":   `{"position": [[[0,0,0],[1,1,1]]], "rotation": [[[[1,0,0],[0,1,0],[0,0,1]]]]}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(body))
			test.That(t, err, test.ShouldNotBeNil)
		})
	}
}

func TestSynthetic(t *testing.T) {
	_, err := SyntheticBatch(0, 10, 0.1, 1)
	test.That(t, err, test.ShouldNotBeNil)
	_, err = SyntheticBatch(2, 10, 0, 1)
	test.That(t, err, test.ShouldNotBeNil)

	b, err := SyntheticBatch(5, 100, 0.02, 42)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, b.Len(), test.ShouldEqual, 5)
	test.That(t, b.FrameCount(), test.ShouldEqual, 100)
	test.That(t, b.Interval(), test.ShouldEqual, 20*time.Millisecond)
	test.That(t, b.Summaries()[0].Truncated, test.ShouldBeTrue)
	for _, s := range b.Summaries()[1:] {
		test.That(t, s.TerminationIndex, test.ShouldBeBetweenOrEqual, 51, 100)
	}
	for _, traj := range b.Trajectories() {
		for _, rm := range traj.Rotations {
			test.That(t, rm.IsOrthonormal(1e-9), test.ShouldBeTrue)
		}
	}

	again, err := SyntheticBatch(5, 100, 0.02, 42)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, again.Summaries(), test.ShouldResemble, b.Summaries())
}

func TestPaths(t *testing.T) {
	h := Helix{Radius: 2, AngularRate: 1, ClimbRate: 0.5}
	p := h.PoseAt(math.Pi / 2)
	test.That(t, spatialmath.R3VectorAlmostEqual(p.Point(), r3.Vector{Y: 2, Z: math.Pi / 4}, 1e-9), test.ShouldBeTrue)
	// the nose points along the direction of travel
	nose := spatialmath.RotateVector(p.Orientation(), r3.Vector{X: 1})
	test.That(t, nose.X, test.ShouldBeLessThan, -0.99)

	f := Flip{Center: r3.Vector{Z: 1}, Period: 4}
	test.That(t, spatialmath.OrientationAlmostEqual(f.PoseAt(2).Orientation(), &spatialmath.R4AA{Theta: math.Pi, RX: 1}), test.ShouldBeTrue)
	test.That(t, f.PoseAt(3).Point(), test.ShouldResemble, r3.Vector{Z: 1})

	traj := Sample(f, 4, 1, 2, false)
	test.That(t, traj.Terminated, test.ShouldResemble, []bool{false, false, true, true})
	test.That(t, traj.Truncated, test.ShouldResemble, []bool{false, false, false, false})
	test.That(t, traj.TerminationIndex(), test.ShouldEqual, 3)
}

func TestStats(t *testing.T) {
	straight := line(6, []bool{false, false, false, true, false, false}, nil)
	for i := range straight.Positions {
		straight.Positions[i].Z = float64(i) / 2
	}
	still := line(3, nil, nil)
	for i := range still.Positions {
		still.Positions[i] = r3.Vector{Z: 1}
	}
	b, err := NewBatch(straight, still)
	test.That(t, err, test.ShouldBeNil)

	s := b.Stats(0)
	test.That(t, s.TerminationIndex, test.ShouldEqual, 4)
	test.That(t, s.Reason(), test.ShouldEqual, "terminated")
	test.That(t, s.Duration, test.ShouldAlmostEqual, 0.06)
	test.That(t, s.PathLength, test.ShouldAlmostEqual, 3*math.Sqrt(1.25))
	test.That(t, s.MeanSpeed, test.ShouldAlmostEqual, math.Sqrt(1.25)/0.02, 1e-6)
	test.That(t, s.MaxSpeed, test.ShouldAlmostEqual, s.MeanSpeed, 1e-6)
	test.That(t, s.MinZ, test.ShouldEqual, 0.)
	test.That(t, s.MaxZ, test.ShouldEqual, 1.5)

	s = b.Stats(1)
	test.That(t, s.Reason(), test.ShouldEqual, "running")
	test.That(t, s.PathLength, test.ShouldEqual, 0.)
	test.That(t, s.MaxSpeed, test.ShouldEqual, 0.)

	table := b.String()
	test.That(t, table, test.ShouldContainSubstring, "MEAN SPEED")
	test.That(t, table, test.ShouldContainSubstring, "terminated")
	test.That(t, table, test.ShouldContainSubstring, "running")
	test.That(t, Summary{Truncated: true, Terminated: true}.Reason(), test.ShouldEqual, "terminated")
}
