package trajectory

import (
	"math"
	"time"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// DefaultInterval is used when the first trajectory has fewer than two timestamps or
// non increasing ones.
const DefaultInterval = 50 * time.Millisecond

// ErrEmptyBatch is returned when a batch would hold no trajectories.
var ErrEmptyBatch = errors.New("trajectory batch is empty")

// Batch is a fixed set of independent trajectories played back together.
type Batch struct {
	trajectories []*Trajectory
}

// NewBatch validates and groups trajectories.
func NewBatch(trajs ...*Trajectory) (*Batch, error) {
	if len(trajs) == 0 {
		return nil, ErrEmptyBatch
	}
	for i, t := range trajs {
		if t == nil {
			return nil, errors.Errorf("trajectory %d is nil", i)
		}
		if err := t.Validate(); err != nil {
			return nil, errors.Wrapf(err, "trajectory %d", i)
		}
	}
	return &Batch{trajectories: trajs}, nil
}

// Len is the number of trajectories.
func (b *Batch) Len() int {
	return len(b.trajectories)
}

// Trajectory returns trajectory i.
func (b *Batch) Trajectory(i int) *Trajectory {
	return b.trajectories[i]
}

// Trajectories returns every trajectory in batch order.
func (b *Batch) Trajectories() []*Trajectory {
	return b.trajectories
}

// FrameCount is the animation length: the largest termination index in the batch.
func (b *Batch) FrameCount() int {
	frames := 0
	for _, t := range b.trajectories {
		if idx := t.TerminationIndex(); idx > frames {
			frames = idx
		}
	}
	return frames
}

// Interval is the playback time between frames, taken from the first two timestamps of the first
// trajectory.
func (b *Batch) Interval() time.Duration {
	times := b.trajectories[0].Times
	if len(times) < 2 {
		return DefaultInterval
	}
	dt := times[1] - times[0]
	if dt <= 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return DefaultInterval
	}
	interval := time.Duration(dt * float64(time.Second))
	if interval <= 0 {
		return DefaultInterval
	}
	return interval
}

// Bounds returns the axis aligned box around every playable position in the batch.
func (b *Batch) Bounds() (r3.Vector, r3.Vector) {
	lo := r3.Vector{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)}
	hi := r3.Vector{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)}
	for _, t := range b.trajectories {
		for _, p := range t.Positions[:t.TerminationIndex()] {
			lo = r3.Vector{X: math.Min(lo.X, p.X), Y: math.Min(lo.Y, p.Y), Z: math.Min(lo.Z, p.Z)}
			hi = r3.Vector{X: math.Max(hi.X, p.X), Y: math.Max(hi.Y, p.Y), Z: math.Max(hi.Z, p.Z)}
		}
	}
	return lo, hi
}

// Summary describes one trajectory of a batch.
type Summary struct {
	Index            int
	Steps            int
	TerminationIndex int
	Terminated       bool
	Truncated        bool
}

// Summaries describes every trajectory of the batch.
func (b *Batch) Summaries() []Summary {
	out := make([]Summary, len(b.trajectories))
	for i, t := range b.trajectories {
		s := Summary{Index: i, Steps: t.Steps(), TerminationIndex: t.TerminationIndex()}
		if done := t.DoneStep(); done >= 0 {
			s.Terminated = flagAt(t.Terminated, done)
			s.Truncated = flagAt(t.Truncated, done)
		}
		out[i] = s
	}
	return out
}
