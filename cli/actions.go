package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/benbjohnson/clock"
	fcolor "github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
	"go.viam.com/utils"
	"gonum.org/v1/plot/vg"

	"github.com/flightning/quadviz/animation"
	"github.com/flightning/quadviz/config"
	"github.com/flightning/quadviz/export"
	"github.com/flightning/quadviz/logging"
	"github.com/flightning/quadviz/report"
	"github.com/flightning/quadviz/trajectory"
)

const (
	loggerKey  = "logger"
	logFileKey = "logFile"
)

func setupLogger(c *cli.Context) error {
	level := logging.INFO
	if c.Bool(generalFlagDebug) {
		level = logging.DEBUG
	}
	c.App.Metadata = map[string]interface{}{}
	if path := c.String(generalFlagLogFile); path != "" {
		logger, file, err := logging.NewFileLogger("quadviz", level, path)
		if err != nil {
			return err
		}
		c.App.Metadata[loggerKey] = logger
		c.App.Metadata[logFileKey] = file
		return nil
	}
	logger := logging.NewLogger("quadviz")
	logger.SetLevel(level)
	c.App.Metadata[loggerKey] = logger
	return nil
}

func syncLogger(c *cli.Context) error {
	// syncing stderr fails on some terminals
	utils.UncheckedErrorFunc(loggerFrom(c).Sync)
	if file, ok := c.App.Metadata[logFileKey].(io.Closer); ok {
		return file.Close()
	}
	return nil
}

func loggerFrom(c *cli.Context) logging.Logger {
	if logger, ok := c.App.Metadata[loggerKey].(logging.Logger); ok {
		return logger
	}
	return logging.NewBlankLogger("quadviz")
}

// loadConfig reads the --config file if given and applies command line overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg := config.Default()
	if path := c.String(generalFlagConfig); path != "" {
		var err error
		if cfg, err = config.Read(path); err != nil {
			return nil, err
		}
	}
	if c.IsSet(renderFlagFPS) {
		cfg.Output.FPS = c.Float64(renderFlagFPS)
	}
	if c.IsSet(renderFlagWidth) {
		cfg.Camera.Width = c.Int(renderFlagWidth)
	}
	if c.IsSet(renderFlagHeight) {
		cfg.Camera.Height = c.Int(renderFlagHeight)
	}
	if c.IsSet(renderFlagAzimuth) {
		az := c.Float64(renderFlagAzimuth)
		cfg.Camera.Azimuth = &az
	}
	if c.IsSet(renderFlagElevation) {
		el := c.Float64(renderFlagElevation)
		cfg.Camera.Elevation = &el
	}
	if c.IsSet(renderFlagOutput) {
		cfg.Output.Path = c.String(renderFlagOutput)
	}
	if c.IsSet(renderFlagOnce) {
		cfg.Output.PlayOnce = c.Bool(renderFlagOnce)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Output.Path == "" {
		return nil, errors.New("no output path: pass --output or set output.path in the config")
	}
	return cfg, nil
}

// RenderAction is the corresponding Action for 'render'.
func RenderAction(c *cli.Context) error {
	render := func(ctx context.Context) error {
		cfg, err := loadConfig(c)
		if err != nil {
			return err
		}
		batch, err := trajectory.ReadJSON(c.String(renderFlagInput))
		if err != nil {
			return err
		}
		return renderBatch(ctx, c, batch, cfg)
	}
	if !c.Bool(renderFlagWatch) {
		return render(c.Context)
	}
	paths := []string{c.String(renderFlagInput)}
	if path := c.String(generalFlagConfig); path != "" {
		paths = append(paths, path)
	}
	return watchFiles(c.Context, paths, watchDelay, loggerFrom(c), render)
}

// DemoAction is the corresponding Action for 'demo'.
func DemoAction(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	batch, err := trajectory.SyntheticBatch(
		c.Int(demoFlagCount), c.Int(demoFlagSteps), c.Float64(demoFlagDT), c.Int64(demoFlagSeed))
	if err != nil {
		return err
	}
	if path := c.String(demoFlagSave); path != "" {
		if err := trajectory.WriteJSON(path, batch); err != nil {
			return err
		}
		loggerFrom(c).Infow("saved trajectories", "path", path)
	}
	return renderBatch(c.Context, c, batch, cfg)
}

func renderBatch(ctx context.Context, c *cli.Context, batch *trajectory.Batch, cfg *config.Config) (err error) {
	logger := loggerFrom(c).Sublogger("render")
	run := uuid.NewString()
	logger.Infow("loaded batch", "run", run, "trajectories", batch.Len(), "frames", batch.FrameCount())

	anim, err := animation.New(batch, cfg, logger.Sublogger("animation"))
	if err != nil {
		return err
	}
	opts := export.Options{
		FPS:      export.FPSFromInterval(anim.Interval()),
		Width:    c.Int(renderFlagExportWidth),
		Quality:  cfg.Output.Quality,
		PlayOnce: cfg.Output.PlayOnce,
	}
	var sink animation.Sink
	sink, err = export.NewSink(cfg.Output.Path, opts, logger.Sublogger("export"))
	if err != nil {
		return err
	}
	if isTerminal(c.App.ErrWriter) {
		progress, perr := newProgressSink(sink, anim.FrameCount(), c.App.ErrWriter, defaultSpinnerFactory)
		if perr != nil {
			logger.Debugw("progress disabled", "error", perr)
		} else {
			sink = progress
		}
	}
	defer func() {
		err = multierr.Combine(err, sink.Close())
		logger.Debugw("render finished", "run", run, "error", err)
	}()

	if c.Bool(renderFlagRealTime) {
		return animation.NewPlayer(anim, clock.New(), false).Play(ctx, sink)
	}
	return anim.Run(ctx, sink)
}

// InfoAction is the corresponding Action for 'info'.
func InfoAction(c *cli.Context) error {
	batch, err := trajectory.ReadJSON(c.String(renderFlagInput))
	if err != nil {
		return err
	}
	out := c.App.Writer
	lo, hi := batch.Bounds()
	fmt.Fprintf(out, "trajectories: %d\n", batch.Len())
	fmt.Fprintf(out, "frames:       %d\n", batch.FrameCount())
	fmt.Fprintf(out, "interval:     %s\n", batch.Interval())
	fmt.Fprintf(out, "bounds:       %v to %v\n", lo, hi)
	fmt.Fprintln(out, batch.String())

	for _, s := range batch.Summaries() {
		bad := 0
		for _, rm := range batch.Trajectory(s.Index).Rotations[:s.TerminationIndex] {
			if !rm.IsOrthonormal(1e-6) {
				bad++
			}
		}
		if bad > 0 {
			warningf(c.App.ErrWriter, "trajectory %d has %d non-orthonormal rotations", s.Index, bad)
		}
	}

	if err := printLengths(out, batch); err != nil {
		return err
	}

	if path := c.String(infoFlagPlot); path != "" {
		p, err := report.Altitude(batch)
		if err != nil {
			return err
		}
		if err := report.Save(p, path, 6*vg.Inch, 4*vg.Inch); err != nil {
			return err
		}
		loggerFrom(c).Infow("saved altitude plot", "path", path)
	}
	return nil
}

// printLengths draws a histogram of episode lengths when they differ.
func printLengths(w io.Writer, batch *trajectory.Batch) error {
	lengths := make([]float64, 0, batch.Len())
	distinct := map[int]struct{}{}
	for _, s := range batch.Summaries() {
		lengths = append(lengths, float64(s.TerminationIndex))
		distinct[s.TerminationIndex] = struct{}{}
	}
	if len(distinct) < 2 {
		return nil
	}
	fmt.Fprintln(w, "episode lengths:")
	return histogram.Fprint(w, histogram.Hist(min(len(distinct), 10), lengths), histogram.Linear(min(40, terminalWidth(80)/2)))
}

func warningf(w io.Writer, format string, a ...interface{}) {
	fcolor.New(fcolor.FgYellow, fcolor.Bold).Fprint(w, "Warning: ")
	fmt.Fprintf(w, format+"\n", a...)
}

// SchemaAction is the corresponding Action for 'schema'.
func SchemaAction(c *cli.Context) error {
	out, err := config.Schema()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.App.Writer, string(out))
	return err
}
