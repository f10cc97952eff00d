// Package export writes rendered frames to files: animated GIFs, numbered image sequences and
// videos encoded by ffmpeg.
package export

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/docker/go-units"
	"github.com/pkg/errors"

	"github.com/flightning/quadviz/animation"
	"github.com/flightning/quadviz/logging"
)

var (
	// ErrNoFFmpeg is returned when a video is requested but no ffmpeg binary is on the PATH.
	ErrNoFFmpeg = errors.New("ffmpeg not found")
	// ErrUnknownFormat is returned for output paths whose extension has no writer.
	ErrUnknownFormat = errors.New("unknown output format")
)

// DefaultFPS is used when no frame rate is given.
const DefaultFPS = 20.0

// sequenceName is the file name pattern used when the output is a directory.
const sequenceName = "frame_%05d.png"

// Options tune every sink. Zero values keep the frame size, use DefaultFPS and loop GIFs forever.
type Options struct {
	FPS float64
	// Width and Height resize frames before writing. If one is zero the aspect ratio is kept.
	Width, Height int
	// Quality is the JPEG quality for image sequences; zero means 95.
	Quality int
	// PlayOnce stops an animated GIF after one pass.
	PlayOnce bool
	// OutputKWArgs are passed through to ffmpeg's output, e.g. {"crf": 23}.
	OutputKWArgs map[string]interface{}
}

func (o Options) fps() float64 {
	if o.FPS <= 0 {
		return DefaultFPS
	}
	return o.FPS
}

// FPSFromInterval converts a frame interval into a frame rate.
func FPSFromInterval(interval time.Duration) float64 {
	if interval <= 0 {
		return DefaultFPS
	}
	return float64(time.Second) / float64(interval)
}

// prepare resizes img if the options ask for it.
func (o Options) prepare(img image.Image) image.Image {
	if o.Width <= 0 && o.Height <= 0 {
		return img
	}
	return imaging.Resize(img, o.Width, o.Height, imaging.Lanczos)
}

// NewSink picks a writer from the output path:
//   - ".gif" writes one animated GIF.
//   - ".mp4", ".mkv", ".mov", ".webm" and ".avi" encode a video with ffmpeg.
//   - a path containing a printf verb such as "out/%04d.png" writes one image per frame.
//   - an image extension (".png", ".jpg", ".qoi", ".ppm", ...) without a verb writes
//     "name_00000.png" and so on.
//   - a path without an extension is a directory of "frame_00000.png" files.
func NewSink(path string, opts Options, logger logging.Logger) (animation.Sink, error) {
	if logger == nil {
		logger = logging.NewBlankLogger("export")
	}
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case strings.Contains(path, "%"):
		return NewImageSequence(path, opts, logger)
	case ext == ".gif":
		return NewGIF(path, opts, logger)
	case videoCodecs[ext] != "":
		return NewVideo(path, opts, logger)
	case imageEncoders[ext] != nil:
		orig := filepath.Ext(path)
		return NewImageSequence(strings.TrimSuffix(path, orig)+"_%05d"+orig, opts, logger)
	case ext == "":
		return NewImageSequence(filepath.Join(path, sequenceName), opts, logger)
	}
	return nil, errors.Wrapf(ErrUnknownFormat, "%q", ext)
}

func frameName(pattern string, index int) string {
	return fmt.Sprintf(pattern, index)
}

// fileSize is the human readable size of the file at path, or "unknown".
func fileSize(path string) string {
	info, err := os.Stat(path)
	if err != nil {
		return "unknown"
	}
	return units.HumanSize(float64(info.Size()))
}
