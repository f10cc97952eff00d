package export

import (
	"context"
	"image"
	"image/draw"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/lmittmann/ppm"
	"github.com/pkg/errors"
	"github.com/xfmoulet/qoi"
	"go.uber.org/atomic"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/flightning/quadviz/logging"
)

const defaultQuality = 95

type encodeFunc func(w io.Writer, img image.Image, opts Options) error

// imageEncoders maps a lower case file extension to its encoder.
var imageEncoders = map[string]encodeFunc{
	".png":  imagingEncoder(imaging.PNG),
	".jpg":  imagingEncoder(imaging.JPEG),
	".jpeg": imagingEncoder(imaging.JPEG),
	".bmp":  imagingEncoder(imaging.BMP),
	".tif":  imagingEncoder(imaging.TIFF),
	".tiff": imagingEncoder(imaging.TIFF),
	".qoi": func(w io.Writer, img image.Image, _ Options) error {
		return qoi.Encode(w, img)
	},
	".ppm": func(w io.Writer, img image.Image, _ Options) error {
		return ppm.Encode(w, toRGBA(img))
	},
}

// toRGBA returns img as an *image.RGBA, converting other color models.
func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	return rgba
}

func imagingEncoder(format imaging.Format) encodeFunc {
	return func(w io.Writer, img image.Image, opts Options) error {
		return imaging.Encode(w, img, format, imaging.JPEGQuality(opts.Quality))
	}
}

func encoderFor(name string) (encodeFunc, bool) {
	enc, ok := imageEncoders[strings.ToLower(filepath.Ext(name))]
	return enc, ok
}

// ImageSequence saves every frame to its own file named by a printf pattern such as
// "out/frame_%05d.png". The format follows the pattern's extension. Files are encoded in the
// background by up to one worker per CPU; Close waits for them.
type ImageSequence struct {
	pattern string
	opts    Options
	encode  encodeFunc
	workers *errgroup.Group
	ctx     context.Context
	written atomic.Int64
	logger  logging.Logger
}

// NewImageSequence checks that the pattern names a supported image format and creates its directory.
func NewImageSequence(pattern string, opts Options, logger logging.Logger) (*ImageSequence, error) {
	enc, ok := encoderFor(pattern)
	if !ok {
		return nil, errors.Wrapf(ErrUnknownFormat, "%q", filepath.Ext(pattern))
	}
	if dir := filepath.Dir(pattern); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, errors.Wrap(err, "cannot create output directory")
		}
	}
	if opts.Quality == 0 {
		opts.Quality = defaultQuality
	}
	workers, ctx := errgroup.WithContext(context.Background())
	workers.SetLimit(runtime.NumCPU())
	return &ImageSequence{
		pattern: pattern,
		opts:    opts,
		encode:  enc,
		workers: workers,
		ctx:     ctx,
		logger:  logger,
	}, nil
}

// WriteFrame queues img to be saved as the file for index. It returns the first save error once
// any earlier frame has failed.
func (s *ImageSequence) WriteFrame(ctx context.Context, index int, img image.Image) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.ctx.Err() != nil {
		return s.workers.Wait()
	}
	name := frameName(s.pattern, index)
	s.workers.Go(func() error {
		if err := s.save(name, s.opts.prepare(img)); err != nil {
			return errors.Wrapf(err, "cannot save %q", name)
		}
		s.written.Inc()
		return nil
	})
	return nil
}

func (s *ImageSequence) save(name string, img image.Image) (err error) {
	//nolint:gosec
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
		if err != nil {
			// never leave a partial frame behind
			err = multierr.Combine(err, os.Remove(name))
		}
	}()
	return s.encode(f, img, s.opts)
}

// Close waits for queued frames and reports how many files were written.
func (s *ImageSequence) Close() error {
	err := s.workers.Wait()
	s.logger.Infow("wrote image sequence", "pattern", s.pattern, "frames", s.written.Load())
	return err
}
