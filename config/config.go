// Package config defines the animation configuration file and how it is read and validated.
package config

import (
	"fmt"
	"image/color"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.viam.com/utils"

	"github.com/flightning/quadviz/quadrotor"
	"github.com/flightning/quadviz/scene"
)

// Default image size.
const (
	DefaultWidth  = 640
	DefaultHeight = 480
)

// A Config describes how a trajectory batch is animated and where the frames go.
type Config struct {
	World     World     `json:"world"`
	Camera    Camera    `json:"camera"`
	Style     Style     `json:"style"`
	Quadrotor Quadrotor `json:"quadrotor"`
	Output    Output    `json:"output"`
}

// World fixes the drawn axis limits and the goal marker. Without limits the box is fitted to the
// flown positions.
type World struct {
	Min  []float64 `json:"min,omitempty"`
	Max  []float64 `json:"max,omitempty"`
	Goal []float64 `json:"goal,omitempty"`
}

// Camera is the image size and the orbit view.
type Camera struct {
	Width     int      `json:"width"`
	Height    int      `json:"height"`
	Azimuth   *float64 `json:"azimuth,omitempty"`
	Elevation *float64 `json:"elevation,omitempty"`
	FovY      float64  `json:"fov_y,omitempty"`
	Zoom      float64  `json:"zoom,omitempty"`
}

// Style holds colors as hex strings or single letter codes.
type Style struct {
	Background string   `json:"background,omitempty"`
	Grid       string   `json:"grid,omitempty"`
	Box        string   `json:"box,omitempty"`
	Goal       string   `json:"goal,omitempty"`
	Body       string   `json:"body,omitempty"`
	GridLines  *int     `json:"grid_lines,omitempty"`
	Trails     *bool    `json:"trails,omitempty"`
	TrailWidth float64  `json:"trail_width,omitempty"`
	TrailAlpha *float64 `json:"trail_alpha,omitempty"`
	Label      *bool    `json:"label,omitempty"`
}

// Quadrotor scales the drawn body.
type Quadrotor struct {
	Scale      float64  `json:"scale,omitempty"`
	RotorAlpha *float64 `json:"rotor_alpha,omitempty"`
}

// Output controls export. A zero FPS means the rate follows the trajectory time step.
type Output struct {
	Path     string  `json:"path,omitempty"`
	FPS      float64 `json:"fps,omitempty"`
	PlayOnce bool    `json:"play_once,omitempty"`
	Quality  int     `json:"quality,omitempty"`
}

// Default returns a config with every default applied.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// WithDefaults returns a copy of c with every unset field defaulted.
func (c *Config) WithDefaults() *Config {
	out := *c
	out.applyDefaults()
	return &out
}

func (c *Config) applyDefaults() {
	if c.Camera.Width == 0 {
		c.Camera.Width = DefaultWidth
	}
	if c.Camera.Height == 0 {
		c.Camera.Height = DefaultHeight
	}
	view := scene.DefaultView()
	if c.Camera.Azimuth == nil {
		c.Camera.Azimuth = &view.Azimuth
	}
	if c.Camera.Elevation == nil {
		c.Camera.Elevation = &view.Elevation
	}
	if c.Camera.FovY == 0 {
		c.Camera.FovY = view.FovY
	}
	if c.Camera.Zoom == 0 {
		c.Camera.Zoom = view.Zoom
	}
	if c.Quadrotor.Scale == 0 {
		c.Quadrotor.Scale = 1
	}
}

// Validate ensures all parts of the config are valid.
func (c *Config) Validate() error {
	return multierr.Combine(
		c.World.Validate("world"),
		c.Camera.Validate("camera"),
		c.Style.Validate("style"),
		c.Quadrotor.Validate("quadrotor"),
		c.Output.Validate("output"),
	)
}

func validateVector(path, field string, v []float64) error {
	if v != nil && len(v) != 3 {
		return utils.NewConfigValidationError(path, errors.Errorf("%q must have 3 values, got %d", field, len(v)))
	}
	return nil
}

// Validate ensures the limits form a box and the goal is a point.
func (w *World) Validate(path string) error {
	err := multierr.Combine(
		validateVector(path, "min", w.Min),
		validateVector(path, "max", w.Max),
		validateVector(path, "goal", w.Goal),
	)
	if err != nil {
		return err
	}
	switch {
	case w.Min == nil && w.Max != nil:
		return utils.NewConfigValidationFieldRequiredError(path, "min")
	case w.Max == nil && w.Min != nil:
		return utils.NewConfigValidationFieldRequiredError(path, "max")
	case w.Min == nil:
		return nil
	}
	for i := range w.Min {
		if w.Min[i] >= w.Max[i] {
			return utils.NewConfigValidationError(path, errors.Errorf("min[%d] (%v) must be below max[%d] (%v)",
				i, w.Min[i], i, w.Max[i]))
		}
	}
	return nil
}

// Box returns the configured limits, if any.
func (w *World) Box() (lo, hi r3.Vector, ok bool) {
	if w.Min == nil || w.Max == nil {
		return r3.Vector{}, r3.Vector{}, false
	}
	return toVector(w.Min), toVector(w.Max), true
}

// GoalPoint returns the goal marker position or nil.
func (w *World) GoalPoint() *r3.Vector {
	if w.Goal == nil {
		return nil
	}
	g := toVector(w.Goal)
	return &g
}

func toVector(v []float64) r3.Vector {
	return r3.Vector{X: v[0], Y: v[1], Z: v[2]}
}

// Validate checks the image size and the lens.
func (cam *Camera) Validate(path string) error {
	var err error
	if cam.Width < 0 || cam.Height < 0 {
		err = multierr.Append(err, utils.NewConfigValidationError(path,
			errors.Errorf("image size must be positive, got %dx%d", cam.Width, cam.Height)))
	}
	if cam.FovY < 0 || cam.FovY >= 180 {
		err = multierr.Append(err, utils.NewConfigValidationError(path,
			errors.Errorf("fov_y must be in (0, 180), got %v", cam.FovY)))
	}
	if cam.Zoom < 0 {
		err = multierr.Append(err, utils.NewConfigValidationError(path, errors.New("zoom cannot be negative")))
	}
	return err
}

// View returns the orbit view. Defaults must already be applied.
func (cam *Camera) View() scene.View {
	view := scene.DefaultView()
	if cam.Azimuth != nil {
		view.Azimuth = *cam.Azimuth
	}
	if cam.Elevation != nil {
		view.Elevation = *cam.Elevation
	}
	if cam.FovY != 0 {
		view.FovY = cam.FovY
	}
	if cam.Zoom != 0 {
		view.Zoom = cam.Zoom
	}
	return view
}

// Validate checks that every color parses.
func (s *Style) Validate(path string) error {
	var err error
	for _, field := range []struct {
		name, value string
	}{
		{"background", s.Background},
		{"grid", s.Grid},
		{"box", s.Box},
		{"goal", s.Goal},
		{"body", s.Body},
	} {
		if field.value == "" {
			continue
		}
		if _, parseErr := scene.ParseColor(field.value); parseErr != nil {
			err = multierr.Append(err, utils.NewConfigValidationError(fmt.Sprintf("%s.%s", path, field.name), parseErr))
		}
	}
	if s.GridLines != nil && *s.GridLines < 0 {
		err = multierr.Append(err, utils.NewConfigValidationError(path, errors.New("grid_lines cannot be negative")))
	}
	if s.TrailAlpha != nil && (*s.TrailAlpha < 0 || *s.TrailAlpha > 1) {
		err = multierr.Append(err, utils.NewConfigValidationError(path, errors.New("trail_alpha must be in [0, 1]")))
	}
	return err
}

// TrailsEnabled reports whether flown paths are drawn. They are by default.
func (s *Style) TrailsEnabled() bool {
	return s.Trails == nil || *s.Trails
}

// SceneStyle converts the configured colors into a renderer style.
func (s *Style) SceneStyle() (scene.Style, error) {
	style := scene.DefaultStyle()
	for _, field := range []struct {
		value string
		dst   *color.Color
	}{
		{s.Background, &style.Background},
		{s.Grid, &style.Grid},
		{s.Box, &style.Box},
		{s.Goal, &style.Goal},
	} {
		if field.value == "" {
			continue
		}
		c, err := scene.ParseColor(field.value)
		if err != nil {
			return scene.Style{}, err
		}
		*field.dst = c
	}
	if s.GridLines != nil {
		style.GridLines = *s.GridLines
	}
	if s.TrailWidth > 0 {
		style.TrailWidth = s.TrailWidth
	}
	if s.TrailAlpha != nil {
		style.TrailAlpha = *s.TrailAlpha
	}
	if s.Label != nil {
		style.Label = *s.Label
	}
	return style, nil
}

// Validate checks the body scale and rotor transparency.
func (q *Quadrotor) Validate(path string) error {
	if q.Scale < 0 {
		return utils.NewConfigValidationError(path, errors.Errorf("scale must be positive, got %v", q.Scale))
	}
	if q.RotorAlpha != nil && (*q.RotorAlpha < 0 || *q.RotorAlpha > 1) {
		return utils.NewConfigValidationError(path, errors.Errorf("rotor_alpha must be in [0, 1], got %v", *q.RotorAlpha))
	}
	return nil
}

// Model returns the body model to draw. body is the parsed style color, nil keeps the default.
func (q *Quadrotor) Model(body color.Color) quadrotor.Model {
	m := quadrotor.DefaultModel().Scaled(q.Scale)
	if q.RotorAlpha != nil {
		m.RotorAlpha = *q.RotorAlpha
	}
	if body != nil {
		m.BodyColor = body
	}
	return m
}

// Validate checks the export settings.
func (o *Output) Validate(path string) error {
	if o.FPS < 0 {
		return utils.NewConfigValidationError(path, errors.Errorf("fps cannot be negative, got %v", o.FPS))
	}
	if o.Quality < 0 || o.Quality > 100 {
		return utils.NewConfigValidationError(path, errors.Errorf("quality must be in [0, 100], got %d", o.Quality))
	}
	return nil
}
