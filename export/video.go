package export

import (
	"bytes"
	"context"
	"image"
	"io"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	ffmpeg "github.com/u2takey/ffmpeg-go"
	"go.uber.org/multierr"
	viamutils "go.viam.com/utils"

	"github.com/flightning/quadviz/logging"
)

var videoCodecs = map[string]string{
	".mp4":  "libx264",
	".mkv":  "libx264",
	".mov":  "libx264",
	".webm": "libvpx-vp9",
	".avi":  "mpeg4",
}

// Video streams frames as PNGs into an ffmpeg process that encodes path.
type Video struct {
	path    string
	opts    Options
	pipe    *io.PipeWriter
	cancel  func()
	done    chan struct{}
	err     error
	stderr  bytes.Buffer
	written int
	logger  logging.Logger
}

// NewVideo starts ffmpeg. The codec is chosen by the extension of path.
func NewVideo(path string, opts Options, logger logging.Logger) (*Video, error) {
	// make sure ffmpeg is in the path before doing anything else
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return nil, errors.Wrap(ErrNoFFmpeg, err.Error())
	}
	codec, ok := videoCodecs[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownFormat, "%q", filepath.Ext(path))
	}

	inArgs := ffmpeg.KwArgs{"format": "image2pipe", "vcodec": "png", "framerate": opts.fps()}
	outArgs := ffmpeg.KwArgs{
		"vcodec":  codec,
		"pix_fmt": "yuv420p",
		// yuv420p needs even dimensions
		"vf": "pad=ceil(iw/2)*2:ceil(ih/2)*2",
	}
	for key, value := range opts.OutputKWArgs {
		outArgs[key] = value
	}

	cancelableCtx, cancel := context.WithCancel(context.Background())
	in, out := io.Pipe()
	v := &Video{
		path:   path,
		opts:   opts,
		pipe:   out,
		cancel: cancel,
		done:   make(chan struct{}),
		logger: logger,
	}
	logger.Debugw("starting ffmpeg", "path", path, "codec", codec, "fps", opts.fps())
	viamutils.ManagedGo(func() {
		stream := ffmpeg.Input("pipe:", inArgs).Output(path, outArgs).OverWriteOutput()
		stream.Context = cancelableCtx
		err := stream.WithInput(in).WithErrorOutput(&v.stderr).Run()
		if err != nil {
			v.err = errors.Wrapf(err, "ffmpeg failed: %s", lastLine(v.stderr.String()))
		}
		// unblock writers if ffmpeg exits before reading everything
		in.CloseWithError(io.ErrClosedPipe)
	}, func() {
		close(v.done)
	})
	return v, nil
}

// WriteFrame encodes img as PNG into ffmpeg's input.
func (v *Video) WriteFrame(ctx context.Context, index int, img image.Image) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case <-v.done:
		return multierr.Combine(errors.New("ffmpeg exited early"), v.err)
	default:
	}
	if err := imaging.Encode(v.pipe, v.opts.prepare(img), imaging.PNG); err != nil {
		return errors.Wrapf(err, "cannot send frame %d to ffmpeg", index)
	}
	v.written++
	return nil
}

// Close ends the input stream and waits for ffmpeg to finish the file.
func (v *Video) Close() error {
	err := v.pipe.Close()
	<-v.done
	v.cancel()
	err = multierr.Combine(err, v.err)
	if err == nil {
		v.logger.Infow("wrote video", "path", v.path, "frames", v.written, "size", fileSize(v.path))
	}
	return err
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return lines[len(lines)-1]
}
