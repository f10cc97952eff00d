package animation

import (
	"context"
	"image"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"github.com/flightning/quadviz/config"
	"github.com/flightning/quadviz/logging"
	"github.com/flightning/quadviz/spatialmath"
	"github.com/flightning/quadviz/trajectory"
)

func flight(steps, doneStep int, truncated bool, offset float64) *trajectory.Trajectory {
	h := trajectory.Helix{Center: r3.Vector{X: offset, Z: 2}, Radius: 1, AngularRate: 1, ClimbRate: 0.1}
	return trajectory.Sample(h, steps, 0.1, doneStep, truncated)
}

func smallConfig() *config.Config {
	cfg := config.Default()
	cfg.Camera.Width = 64
	cfg.Camera.Height = 48
	return cfg
}

func newAnimator(t *testing.T, trajs ...*trajectory.Trajectory) *Animator {
	t.Helper()
	batch, err := trajectory.NewBatch(trajs...)
	test.That(t, err, test.ShouldBeNil)
	anim, err := New(batch, smallConfig(), logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	return anim
}

func TestNew(t *testing.T) {
	_, err := New(nil, nil, nil)
	test.That(t, err, test.ShouldEqual, trajectory.ErrEmptyBatch)

	batch, err := trajectory.NewBatch(flight(5, -1, false, 0))
	test.That(t, err, test.ShouldBeNil)

	cfg := smallConfig()
	cfg.Style.Body = "bogus"
	_, err = New(batch, cfg, nil)
	test.That(t, err, test.ShouldNotBeNil)

	cfg = smallConfig()
	cfg.Output.FPS = 20
	anim, err := New(batch, cfg, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, anim.Interval(), test.ShouldEqual, 50*time.Millisecond)

	anim, err = New(batch, nil, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, anim.Interval(), test.ShouldEqual, 100*time.Millisecond)
	test.That(t, anim.Quadrotor(0).Parts(), test.ShouldBeNil)

	t.Run("unset config fields are defaulted", func(t *testing.T) {
		anim, err := New(batch, &config.Config{}, nil)
		test.That(t, err, test.ShouldBeNil)
		img := anim.Frame(0)
		test.That(t, img.Bounds().Dx(), test.ShouldEqual, config.DefaultWidth)
		test.That(t, img.Bounds().Dy(), test.ShouldEqual, config.DefaultHeight)
	})

	t.Run("huge fps keeps a positive interval", func(t *testing.T) {
		cfg := smallConfig()
		cfg.Output.FPS = 2e9
		anim, err := New(batch, cfg, nil)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, anim.Interval(), test.ShouldEqual, time.Nanosecond)

		var sink Collect
		test.That(t, NewPlayer(anim, clock.New(), false).Play(context.Background(), &sink), test.ShouldBeNil)
		test.That(t, sink.Frames(), test.ShouldHaveLength, anim.FrameCount())
	})
}

func TestFrameCount(t *testing.T) {
	for _, tc := range []struct {
		name   string
		trajs  []*trajectory.Trajectory
		frames int
	}{
		{"never done", []*trajectory.Trajectory{flight(7, -1, false, 0)}, 7},
		{"terminated", []*trajectory.Trajectory{flight(7, 2, false, 0)}, 3},
		{"truncated", []*trajectory.Trajectory{flight(7, 4, true, 0)}, 5},
		{"longest wins", []*trajectory.Trajectory{
			flight(10, 3, false, 0),
			flight(10, 8, true, 3),
			flight(10, 1, false, -3),
		}, 9},
		{"last is not longest", []*trajectory.Trajectory{
			flight(10, 6, false, 0),
			flight(10, 2, false, 3),
		}, 7},
	} {
		t.Run(tc.name, func(t *testing.T) {
			anim := newAnimator(t, tc.trajs...)
			test.That(t, anim.FrameCount(), test.ShouldEqual, tc.frames)

			var sink Collect
			test.That(t, anim.Run(context.Background(), &sink), test.ShouldBeNil)
			test.That(t, sink.Frames(), test.ShouldHaveLength, tc.frames)
			test.That(t, sink.Indices()[tc.frames-1], test.ShouldEqual, tc.frames-1)
			test.That(t, sink.Closed(), test.ShouldBeFalse)
		})
	}
}

func TestNoUpdatesPastTermination(t *testing.T) {
	short := flight(10, 3, false, 0)
	long := flight(10, -1, false, 3)
	anim := newAnimator(t, short, long)

	var sink Collect
	test.That(t, anim.Run(context.Background(), &sink), test.ShouldBeNil)
	test.That(t, anim.Quadrotor(0).Updates(), test.ShouldEqual, 4)
	test.That(t, anim.Quadrotor(1).Updates(), test.ShouldEqual, 10)
	test.That(t, spatialmath.PoseAlmostEqual(anim.Quadrotor(0).Pose(), short.Pose(3), 1e-9), test.ShouldBeTrue)
	test.That(t, spatialmath.PoseAlmostEqual(anim.Quadrotor(1).Pose(), long.Pose(9), 1e-9), test.ShouldBeTrue)

	t.Run("jumping ahead shows the last playable step", func(t *testing.T) {
		fresh := newAnimator(t, flight(10, 3, false, 0), flight(10, -1, false, 3))
		fresh.Update(8)
		test.That(t, fresh.Quadrotor(0).Updates(), test.ShouldEqual, 1)
		test.That(t, spatialmath.PoseAlmostEqual(fresh.Quadrotor(0).Pose(), short.Pose(3), 1e-9), test.ShouldBeTrue)
		fresh.Update(9)
		test.That(t, fresh.Quadrotor(0).Updates(), test.ShouldEqual, 1)
		fresh.Update(0)
		test.That(t, fresh.Quadrotor(0).Updates(), test.ShouldEqual, 2)
	})

	t.Run("steps past termination never reach the image", func(t *testing.T) {
		tampered := flight(10, 3, false, 0)
		for j := 4; j < tampered.Steps(); j++ {
			tampered.Positions[j] = r3.Vector{X: 1, Y: 1, Z: 1}
			tampered.Rotations[j] = (&spatialmath.R4AA{Theta: 2, RY: 1}).RotationMatrix()
		}
		a := newAnimator(t, flight(10, 3, false, 0), flight(10, -1, false, 3))
		b := newAnimator(t, tampered, flight(10, -1, false, 3))
		for _, i := range []int{3, 5, 9} {
			imgA := a.Frame(i).(*image.RGBA)
			imgB := b.Frame(i).(*image.RGBA)
			test.That(t, imgA.Pix, test.ShouldResemble, imgB.Pix)
		}
	})
}

func TestRunCancel(t *testing.T) {
	anim := newAnimator(t, flight(5, -1, false, 0))
	ctx, cancel := context.WithCancel(context.Background())
	var written int
	err := anim.Run(ctx, SinkFunc(func(ctx context.Context, index int, img image.Image) error {
		written++
		if index == 1 {
			cancel()
		}
		return nil
	}))
	test.That(t, err, test.ShouldEqual, context.Canceled)
	test.That(t, written, test.ShouldEqual, 2)
}

func TestFitBox(t *testing.T) {
	batch, err := trajectory.NewBatch(flight(20, -1, false, 0))
	test.That(t, err, test.ShouldBeNil)
	model := config.Default().Quadrotor.Model(nil)
	goal := r3.Vector{X: 10, Y: -10, Z: 0}

	lo, hi := FitBox(batch, &goal, model)
	for _, p := range append(batch.Trajectory(0).Positions, goal) {
		test.That(t, p.X, test.ShouldBeBetween, lo.X, hi.X)
		test.That(t, p.Y, test.ShouldBeBetween, lo.Y, hi.Y)
		test.That(t, p.Z, test.ShouldBeBetweenOrEqual, lo.Z, hi.Z)
	}

	still, err := trajectory.NewBatch(trajectory.Sample(trajectory.Hover{Center: r3.Vector{Z: 1}}, 3, 0.1, -1, false))
	test.That(t, err, test.ShouldBeNil)
	lo, hi = FitBox(still, nil, model.Scaled(0.01))
	test.That(t, hi.X-lo.X, test.ShouldBeGreaterThanOrEqualTo, minExtent)
	test.That(t, hi.Z-lo.Z, test.ShouldBeGreaterThanOrEqualTo, minExtent)
}

func TestPlayer(t *testing.T) {
	anim := newAnimator(t, flight(4, -1, false, 0))
	mock := clock.NewMock()
	frames := make(chan int, 8)
	sink := SinkFunc(func(ctx context.Context, index int, img image.Image) error {
		frames <- index
		return nil
	})

	t.Run("paced", func(t *testing.T) {
		done := make(chan error, 1)
		go func() {
			done <- NewPlayer(anim, mock, false).Play(context.Background(), sink)
		}()
		test.That(t, <-frames, test.ShouldEqual, 0)
		for i := 1; i < anim.FrameCount(); i++ {
			select {
			case idx := <-frames:
				t.Fatalf("frame %d written before its tick", idx)
			default:
			}
			mock.Add(anim.Interval())
			test.That(t, <-frames, test.ShouldEqual, i)
		}
		test.That(t, <-done, test.ShouldBeNil)
	})

	t.Run("loop until canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() {
			done <- NewPlayer(anim, mock, true).Play(ctx, sink)
		}()
		var seen []int
		seen = append(seen, <-frames)
		for len(seen) < 6 {
			mock.Add(anim.Interval())
			seen = append(seen, <-frames)
		}
		cancel()
		test.That(t, <-done, test.ShouldEqual, context.Canceled)
		test.That(t, seen, test.ShouldResemble, []int{0, 1, 2, 3, 0, 1})
	})
}
