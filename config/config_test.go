package config

import (
	"encoding/json"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"github.com/flightning/quadviz/scene"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	test.That(t, cfg.Validate(), test.ShouldBeNil)
	test.That(t, cfg.Camera.Width, test.ShouldEqual, DefaultWidth)
	test.That(t, cfg.Camera.View(), test.ShouldResemble, scene.DefaultView())
	test.That(t, cfg.Style.TrailsEnabled(), test.ShouldBeTrue)
	_, _, ok := cfg.World.Box()
	test.That(t, ok, test.ShouldBeFalse)
	test.That(t, cfg.World.GoalPoint(), test.ShouldBeNil)

	style, err := cfg.Style.SceneStyle()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, style, test.ShouldResemble, scene.DefaultStyle())
	test.That(t, cfg.Quadrotor.Model(nil), test.ShouldResemble, cfg.Quadrotor.Model(color.Black))
}

func TestFromReader(t *testing.T) {
	cfg, err := FromReader("inline", strings.NewReader(`{
		"world": {"min": [-5, -5, 0], "max": [5, 5, 10], "goal": [4, 4, 8]},
		"camera": {"width": 320, "height": 240, "elevation": 0},
		"style": {"background": "w", "grid_lines": 4, "trails": false, "label": false},
		"quadrotor": {"scale": 0.5, "rotor_alpha": 0.4},
		"output": {"fps": 30, "play_once": true}
	}`))
	test.That(t, err, test.ShouldBeNil)

	lo, hi, ok := cfg.World.Box()
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, lo, test.ShouldResemble, r3.Vector{X: -5, Y: -5})
	test.That(t, hi, test.ShouldResemble, r3.Vector{X: 5, Y: 5, Z: 10})
	test.That(t, *cfg.World.GoalPoint(), test.ShouldResemble, r3.Vector{X: 4, Y: 4, Z: 8})

	view := cfg.Camera.View()
	test.That(t, view.Elevation, test.ShouldEqual, 0.)
	test.That(t, view.Azimuth, test.ShouldEqual, scene.DefaultView().Azimuth)

	style, err := cfg.Style.SceneStyle()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, style.GridLines, test.ShouldEqual, 4)
	test.That(t, style.Label, test.ShouldBeFalse)
	r, g, b, _ := style.Background.RGBA()
	test.That(t, []uint32{r, g, b}, test.ShouldResemble, []uint32{0xffff, 0xffff, 0xffff})
	test.That(t, cfg.Style.TrailsEnabled(), test.ShouldBeFalse)

	m := cfg.Quadrotor.Model(nil)
	test.That(t, m.ArmOffset, test.ShouldAlmostEqual, 0.2)
	test.That(t, m.RotorAlpha, test.ShouldEqual, 0.4)
	test.That(t, cfg.Output.FPS, test.ShouldEqual, 30.)
	test.That(t, cfg.Output.PlayOnce, test.ShouldBeTrue)

	t.Run("unknown fields are rejected", func(t *testing.T) {
		_, err := FromReader("inline", strings.NewReader(`{"cameras": {}}`))
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "inline")
	})
}

func TestValidate(t *testing.T) {
	for _, tc := range []struct {
		name   string
		json   string
		expect []string
	}{
		{"short vector", `{"world": {"goal": [1, 2]}}`, []string{"world", "goal"}},
		{"missing max", `{"world": {"min": [0, 0, 0]}}`, []string{"world", "max"}},
		{"inverted box", `{"world": {"min": [0, 0, 5], "max": [1, 1, 1]}}`, []string{"min[2]"}},
		{"bad color", `{"style": {"grid": "not a color"}}`, []string{"style.grid"}},
		{"bad fov", `{"camera": {"fov_y": 200}}`, []string{"camera", "fov_y"}},
		{"bad alpha", `{"quadrotor": {"rotor_alpha": 3}}`, []string{"quadrotor", "rotor_alpha"}},
		{"bad fps", `{"output": {"fps": -1}}`, []string{"output", "fps"}},
		{"two sections", `{"camera": {"zoom": -1}, "output": {"quality": 101}}`, []string{"zoom", "quality"}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := FromReader("bad.json", strings.NewReader(tc.json))
			test.That(t, err, test.ShouldNotBeNil)
			for _, s := range tc.expect {
				test.That(t, err.Error(), test.ShouldContainSubstring, s)
			}
		})
	}
}

func TestRead(t *testing.T) {
	t.Setenv("QUADVIZ_TEST_WIDTH", "200")
	path := filepath.Join(t.TempDir(), "anim.json")
	err := os.WriteFile(path, []byte(`{"camera": {"width": ${QUADVIZ_TEST_WIDTH}, "height": 100}}`), 0o600)
	test.That(t, err, test.ShouldBeNil)

	cfg, err := Read(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.Camera.Width, test.ShouldEqual, 200)
	test.That(t, cfg.Camera.Height, test.ShouldEqual, 100)

	_, err = Read(filepath.Join(t.TempDir(), "missing.json"))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestSchema(t *testing.T) {
	out, err := Schema()
	test.That(t, err, test.ShouldBeNil)
	var schema map[string]interface{}
	test.That(t, json.Unmarshal(out, &schema), test.ShouldBeNil)
	test.That(t, schema, test.ShouldContainKey, "$defs")
	for _, field := range []string{`"play_once"`, `"trail_alpha"`, `"fov_y"`, `"rotor_alpha"`} {
		test.That(t, string(out), test.ShouldContainSubstring, field)
	}
}

func TestCameraView(t *testing.T) {
	var cam Camera
	test.That(t, cam.View(), test.ShouldResemble, scene.DefaultView())

	az, el := 10.0, -5.0
	cam = Camera{Azimuth: &az, Elevation: &el, Zoom: 2}
	view := cam.View()
	test.That(t, view.Azimuth, test.ShouldEqual, 10.)
	test.That(t, view.Elevation, test.ShouldEqual, -5.)
	test.That(t, view.Zoom, test.ShouldEqual, 2.)
	test.That(t, view.FovY, test.ShouldEqual, scene.DefaultView().FovY)

	cfg := &Config{}
	defaulted := cfg.WithDefaults()
	test.That(t, cfg.Camera.Azimuth, test.ShouldBeNil)
	test.That(t, defaulted.Camera.Width, test.ShouldEqual, DefaultWidth)
	test.That(t, *defaulted.Camera.Azimuth, test.ShouldEqual, scene.DefaultView().Azimuth)
}
