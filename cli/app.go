// Package cli contains the quadviz command line application.
package cli

import (
	"io"

	"github.com/urfave/cli/v2"
)

const (
	// Flags.
	generalFlagConfig  = "config"
	generalFlagDebug   = "debug"
	generalFlagLogFile = "log-file"

	renderFlagInput       = "input"
	renderFlagOutput      = "output"
	renderFlagFPS         = "fps"
	renderFlagWidth       = "width"
	renderFlagHeight      = "height"
	renderFlagAzimuth     = "azimuth"
	renderFlagElevation   = "elevation"
	renderFlagExportWidth = "export-width"
	renderFlagOnce        = "once"
	renderFlagRealTime    = "real-time"
	renderFlagWatch       = "watch"

	demoFlagCount = "count"
	demoFlagSteps = "steps"
	demoFlagDT    = "dt"
	demoFlagSeed  = "seed"
	demoFlagSave  = "save"

	infoFlagPlot = "plot"
)

func inputFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     renderFlagInput,
		Aliases:  []string{"i"},
		Usage:    "trajectory batch `FILE` (json)",
		Required: true,
	}
}

// renderFlags are shared by every command that renders.
func renderFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    renderFlagOutput,
			Aliases: []string{"o"},
			Usage:   "write frames to `PATH` (.gif, .mp4, .webm, .avi, .mkv, a directory or a pattern like out/%04d.png)",
		},
		&cli.Float64Flag{
			Name:  renderFlagFPS,
			Usage: "frames per second; defaults to the trajectory time step",
		},
		&cli.IntFlag{
			Name:  renderFlagWidth,
			Usage: "rendered image width in pixels",
		},
		&cli.IntFlag{
			Name:  renderFlagHeight,
			Usage: "rendered image height in pixels",
		},
		&cli.Float64Flag{
			Name:  renderFlagAzimuth,
			Usage: "camera azimuth in degrees",
		},
		&cli.Float64Flag{
			Name:  renderFlagElevation,
			Usage: "camera elevation in degrees",
		},
		&cli.IntFlag{
			Name:  renderFlagExportWidth,
			Usage: "resize frames to this width before writing, keeping the aspect ratio",
		},
		&cli.BoolFlag{
			Name:  renderFlagOnce,
			Usage: "play animated gifs once instead of looping",
		},
		&cli.BoolFlag{
			Name:  renderFlagRealTime,
			Usage: "pace frames at the animation rate instead of writing them as fast as possible",
		},
	}
}

// NewApp returns a new app with the CLI API, Writer set to out, and ErrWriter
// set to errOut.
func NewApp(out, errOut io.Writer) *cli.App {
	return &cli.App{
		Name:            "quadviz",
		Usage:           "render quadrotor flight trajectories",
		HideHelpCommand: true,
		Writer:          out,
		ErrWriter:       errOut,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    generalFlagConfig,
				Aliases: []string{"c"},
				Usage:   "load animation configuration from `FILE`",
			},
			&cli.BoolFlag{
				Name:    generalFlagDebug,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
			&cli.StringFlag{
				Name:  generalFlagLogFile,
				Usage: "also write JSON logs to `FILE`, rotating it as it grows",
			},
		},
		Before: setupLogger,
		After:  syncLogger,
		Commands: []*cli.Command{
			{
				Name:      "render",
				Usage:     "animate a trajectory batch file",
				UsageText: "quadviz render --input traj.json --output out.gif",
				Flags: append([]cli.Flag{
					inputFlag(),
					&cli.BoolFlag{
						Name:  renderFlagWatch,
						Usage: "render again whenever the input or config file changes, until interrupted",
					},
				}, renderFlags()...),
				Action: RenderAction,
			},
			{
				Name:  "demo",
				Usage: "generate synthetic flights and animate them",
				Flags: append([]cli.Flag{
					&cli.IntFlag{
						Name:  demoFlagCount,
						Usage: "number of quadrotors",
						Value: 3,
					},
					&cli.IntFlag{
						Name:  demoFlagSteps,
						Usage: "steps per flight",
						Value: 200,
					},
					&cli.Float64Flag{
						Name:  demoFlagDT,
						Usage: "seconds between steps",
						Value: 0.05,
					},
					&cli.Int64Flag{
						Name:  demoFlagSeed,
						Usage: "random seed",
						Value: 1,
					},
					&cli.StringFlag{
						Name:  demoFlagSave,
						Usage: "also save the generated trajectories to `FILE`",
					},
				}, renderFlags()...),
				Action: DemoAction,
			},
			{
				Name:  "info",
				Usage: "summarize a trajectory batch file",
				Flags: []cli.Flag{
					inputFlag(),
					&cli.StringFlag{
						Name:  infoFlagPlot,
						Usage: "save an altitude chart to `FILE` (.png, .svg, .pdf)",
					},
				},
				Action: InfoAction,
			},
			{
				Name:   "schema",
				Usage:  "print the JSON schema of the config file",
				Action: SchemaAction,
			},
		},
	}
}
