package export

import (
	"context"
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"math"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/flightning/quadviz/logging"
)

// GIF collects frames and encodes them as one animated GIF on Close.
type GIF struct {
	path   string
	opts   Options
	anim   gif.GIF
	delay  int
	logger logging.Logger
}

// NewGIF returns a sink that writes to path when closed.
func NewGIF(path string, opts Options, logger logging.Logger) (*GIF, error) {
	loop := 0
	if opts.PlayOnce {
		loop = -1
	}
	return &GIF{
		path:   path,
		opts:   opts,
		anim:   gif.GIF{LoopCount: loop},
		delay:  int(math.Max(1, math.Round(100/opts.fps()))),
		logger: logger,
	}, nil
}

// WriteFrame quantizes img to the Plan 9 palette and appends it.
func (g *GIF) WriteFrame(ctx context.Context, index int, img image.Image) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	img = g.opts.prepare(img)
	bounds := img.Bounds()
	paletted := image.NewPaletted(image.Rect(0, 0, bounds.Dx(), bounds.Dy()), palette.Plan9)
	draw.Draw(paletted, paletted.Rect, img, bounds.Min, draw.Src)
	g.anim.Image = append(g.anim.Image, paletted)
	g.anim.Delay = append(g.anim.Delay, g.delay)
	return nil
}

// Close encodes every frame written so far.
func (g *GIF) Close() (err error) {
	if len(g.anim.Image) == 0 {
		return errors.Errorf("no frames to write to %q", g.path)
	}
	f, err := os.Create(g.path)
	if err != nil {
		return errors.Wrap(err, "cannot create gif")
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()
	if err := gif.EncodeAll(f, &g.anim); err != nil {
		return errors.Wrapf(err, "cannot encode %q", g.path)
	}
	g.logger.Infow("wrote gif", "path", g.path, "frames", len(g.anim.Image), "size", fileSize(g.path))
	return nil
}
