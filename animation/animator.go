// Package animation steps a batch of quadrotors through their trajectories and renders one image
// per frame.
package animation

import (
	"context"
	"image"
	"image/color"
	"math"
	"time"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/flightning/quadviz/config"
	"github.com/flightning/quadviz/logging"
	"github.com/flightning/quadviz/primitives"
	"github.com/flightning/quadviz/quadrotor"
	"github.com/flightning/quadviz/scene"
	"github.com/flightning/quadviz/trajectory"
)

// minInterval is the shortest frame interval; tickers need a positive period.
const minInterval = time.Nanosecond

// minExtent keeps a fitted world box from collapsing along an axis the batch never moves in.
const minExtent = 1.0

// Animator owns one quadrotor per trajectory and renders the batch frame by frame.
type Animator struct {
	batch    *trajectory.Batch
	quads    []*quadrotor.Quadrotor
	steps    []int
	colors   []color.Color
	trails   bool
	interval time.Duration
	renderer *scene.Renderer
	logger   logging.Logger
}

// New builds an animator for batch. A nil cfg uses config.Default and a nil logger discards output.
func New(batch *trajectory.Batch, cfg *config.Config, logger logging.Logger) (*Animator, error) {
	if batch == nil || batch.Len() == 0 {
		return nil, trajectory.ErrEmptyBatch
	}
	if cfg == nil {
		cfg = config.Default()
	} else {
		cfg = cfg.WithDefaults()
	}
	if logger == nil {
		logger = logging.NewBlankLogger("animation")
	}

	style, err := cfg.Style.SceneStyle()
	if err != nil {
		return nil, err
	}
	var body color.Color
	if cfg.Style.Body != "" {
		if body, err = scene.ParseColor(cfg.Style.Body); err != nil {
			return nil, err
		}
	}
	model := cfg.Quadrotor.Model(body)
	if err := model.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid quadrotor model")
	}

	goal := cfg.World.GoalPoint()
	lo, hi, ok := cfg.World.Box()
	if !ok {
		lo, hi = FitBox(batch, goal, model)
		logger.Debugw("fitted world box", "min", lo, "max", hi)
	}
	camera, err := scene.NewCamera(cfg.Camera.Width, cfg.Camera.Height, cfg.Camera.View(), lo, hi)
	if err != nil {
		return nil, err
	}

	interval := batch.Interval()
	if cfg.Output.FPS > 0 {
		interval = time.Duration(float64(time.Second) / cfg.Output.FPS)
	}
	if interval < minInterval {
		interval = minInterval
	}

	a := &Animator{
		batch:    batch,
		quads:    make([]*quadrotor.Quadrotor, batch.Len()),
		steps:    make([]int, batch.Len()),
		colors:   scene.Palette(batch.Len()),
		trails:   cfg.Style.TrailsEnabled(),
		interval: interval,
		renderer: scene.NewRenderer(camera, lo, hi, goal, style),
		logger:   logger,
	}
	for i := range a.quads {
		a.quads[i] = quadrotor.New(model)
		a.steps[i] = -1
	}
	return a, nil
}

// FitBox returns a box around every playable position of the batch and the goal, padded by the
// body size so drawn quadrotors stay inside.
func FitBox(batch *trajectory.Batch, goal *r3.Vector, model quadrotor.Model) (r3.Vector, r3.Vector) {
	lo, hi := batch.Bounds()
	if goal != nil {
		lo = r3.Vector{X: math.Min(lo.X, goal.X), Y: math.Min(lo.Y, goal.Y), Z: math.Min(lo.Z, goal.Z)}
		hi = r3.Vector{X: math.Max(hi.X, goal.X), Y: math.Max(hi.Y, goal.Y), Z: math.Max(hi.Z, goal.Z)}
	}
	pad := math.Max(model.AxisLength, model.ArmOffset*math.Sqrt2+model.RotorRadius)
	padding := r3.Vector{X: pad, Y: pad, Z: pad}
	lo, hi = lo.Sub(padding), hi.Add(padding)

	grow := func(lo, hi float64) (float64, float64) {
		if d := hi - lo; d < minExtent {
			mid := (lo + hi) / 2
			return mid - minExtent/2, mid + minExtent/2
		}
		return lo, hi
	}
	lo.X, hi.X = grow(lo.X, hi.X)
	lo.Y, hi.Y = grow(lo.Y, hi.Y)
	lo.Z, hi.Z = grow(lo.Z, hi.Z)
	return lo, hi
}

// FrameCount is the number of frames in the animation, the largest termination index of the batch.
func (a *Animator) FrameCount() int {
	return a.batch.FrameCount()
}

// Interval is the time between frames.
func (a *Animator) Interval() time.Duration {
	return a.interval
}

// Quadrotor returns the body drawn for trajectory i.
func (a *Animator) Quadrotor(i int) *quadrotor.Quadrotor {
	return a.quads[i]
}

// step is the trajectory step shown for trajectory k at frame i. A trajectory past its termination
// index holds its last playable step.
func (a *Animator) step(k, i int) int {
	last := a.batch.Trajectory(k).TerminationIndex() - 1
	if i > last {
		return last
	}
	return i
}

// Update places every quadrotor for frame i. A body is only redrawn when its shown step changes, so
// a trajectory past its termination index is not touched again.
func (a *Animator) Update(i int) {
	if i < 0 {
		i = 0
	}
	for k, traj := range a.batch.Trajectories() {
		s := a.step(k, i)
		if s == a.steps[k] {
			continue
		}
		a.quads[k].DrawAt(traj.Pose(s))
		a.steps[k] = s
	}
}

// Frame updates the bodies for frame i and renders them.
func (a *Animator) Frame(i int) image.Image {
	a.Update(i)

	var parts []primitives.Primitive
	var trails []scene.Trail
	for k, traj := range a.batch.Trajectories() {
		parts = append(parts, a.quads[k].Parts()...)
		if a.trails {
			trails = append(trails, scene.Trail{
				Points: traj.Positions[:a.steps[k]+1],
				Color:  a.colors[k],
			})
		}
	}
	return a.renderer.Render(scene.Frame{
		Index:  i,
		Total:  a.FrameCount(),
		Time:   time.Duration(i) * a.interval,
		Parts:  parts,
		Trails: trails,
	})
}

// Run renders every frame in order into sink. It does not close sink.
func (a *Animator) Run(ctx context.Context, sink Sink) error {
	total := a.FrameCount()
	a.logger.Debugw("rendering", "frames", total, "trajectories", a.batch.Len(), "interval", a.interval)
	start := time.Now()
	for i := 0; i < total; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := sink.WriteFrame(ctx, i, a.Frame(i)); err != nil {
			return errors.Wrapf(err, "writing frame %d", i)
		}
	}
	a.logger.Debugw("rendered", "frames", total, "took", time.Since(start))
	return nil
}
