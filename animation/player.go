package animation

import (
	"context"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
)

// Player feeds frames to a sink in real time, one per animation interval.
type Player struct {
	anim  *Animator
	clock clock.Clock
	loop  bool
}

// NewPlayer returns a player for anim. Frames are paced by clk. With loop set, playback restarts
// from the first frame until ctx is done.
func NewPlayer(anim *Animator, clk clock.Clock, loop bool) *Player {
	if clk == nil {
		clk = clock.New()
	}
	return &Player{anim: anim, clock: clk, loop: loop}
}

// Play writes the first frame right away and every following frame on the next tick.
func (p *Player) Play(ctx context.Context, sink Sink) error {
	total := p.anim.FrameCount()
	ticker := p.clock.Ticker(p.anim.Interval())
	defer ticker.Stop()

	for pass := 0; ; pass++ {
		for i := 0; i < total; i++ {
			if pass > 0 || i > 0 {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-ticker.C:
				}
			}
			if err := sink.WriteFrame(ctx, i, p.anim.Frame(i)); err != nil {
				return errors.Wrapf(err, "writing frame %d", i)
			}
		}
		if !p.loop {
			return nil
		}
		p.anim.logger.Debugw("looping", "pass", pass+1)
	}
}
