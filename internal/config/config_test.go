package config

import (
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Garsondee/Flight-Scope/internal/compose"
	"github.com/Garsondee/Flight-Scope/internal/input"
	"github.com/Garsondee/Flight-Scope/internal/render"
	"github.com/Garsondee/Flight-Scope/internal/sim"
	"github.com/Garsondee/Flight-Scope/internal/view"
)

func TestLoad_DefaultValues(t *testing.T) {
	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "pursuit", cfg.Scene)
	assert.Equal(t, 0.01, cfg.Quantum)
	assert.Equal(t, 0.25, cfg.MaxFrame)
	assert.Equal(t, 60.0, cfg.RefreshHz)
	assert.Equal(t, 150*time.Millisecond, cfg.HoldWindow)
	assert.Equal(t, 1000, cfg.Window.Width)
	assert.Equal(t, 400, cfg.Window.Height)
	assert.Equal(t, []string{"drone", "pursuit"}, cfg.SceneNames())

	p := cfg.Scenes["pursuit"]
	assert.Equal(t, "pursuit", p.Model)
	assert.Equal(t, 0.25, p.PixelsPerMeter)
	assert.Equal(t, 100.0, p.GridStep)
	assert.Equal(t, 1.5, p.Camera.Zoom)
	assert.Equal(t, []int{1, 0}, p.Order)
	require.Len(t, p.Insets, 2)
	assert.Equal(t, "target", p.Insets[0].Name)
	assert.Equal(t, 2.5, p.Insets[1].Zoom)

	d := cfg.Scenes["drone"]
	assert.Equal(t, 60.0, d.PixelsPerMeter)
	assert.Equal(t, MappingThrustSteer, d.Mapping)
	assert.Equal(t, 1.5, d.Axis1Step)
	assert.Equal(t, 0.75, d.Camera.FocusY)
}

func TestLoad_WithValidConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "flightscope.json")
	body := `{
		"scene": "drone",
		"quantum": 0.005,
		"scenes": { "drone": { "camera": { "policy": "track", "zoom": 2 } } }
	}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))

	cfg, err := Load(New(), path)
	require.NoError(t, err)
	assert.Equal(t, "drone", cfg.Scene)
	assert.Equal(t, 0.005, cfg.Quantum)

	d, err := cfg.Current()
	require.NoError(t, err)
	assert.Equal(t, "track", d.Camera.Policy)
	assert.Equal(t, 2.0, d.Camera.Zoom)
	assert.Equal(t, 60.0, d.PixelsPerMeter, "unset keys keep their defaults")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(New(), "/nonexistent/flightscope.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestLoad_EnvironmentOverride(t *testing.T) {
	t.Setenv("FLIGHTSCOPE_QUANTUM", "0.02")
	t.Setenv("FLIGHTSCOPE_SCENES_PURSUIT_INSETSIZE", "120")

	cfg, err := Load(New(), "")
	require.NoError(t, err)
	assert.Equal(t, 0.02, cfg.Quantum)
	assert.Equal(t, 120.0, cfg.Scenes["pursuit"].InsetSize)
}

func TestLoad_FlagsOverrideEverything(t *testing.T) {
	t.Setenv("FLIGHTSCOPE_SCENE", "pursuit")
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	Flags(fs)
	require.NoError(t, fs.Parse([]string{"--scene", "drone", "--max-frame", "0.1"}))

	v := New()
	require.NoError(t, BindFlags(v, fs))
	cfg, err := Load(v, "")
	require.NoError(t, err)
	assert.Equal(t, "drone", cfg.Scene)
	assert.Equal(t, 0.1, cfg.MaxFrame)
	assert.Equal(t, 0.01, cfg.Quantum, "unset flags must not clobber defaults")
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("FLIGHTSCOPE_REFRESHHZ=30\n"), 0644))
	t.Setenv("FLIGHTSCOPE_REFRESHHZ", "")
	os.Unsetenv("FLIGHTSCOPE_REFRESHHZ")

	require.NoError(t, LoadEnv(filepath.Join(dir, "missing.env"), path))
	cfg, err := Load(New(), "")
	require.NoError(t, err)
	assert.Equal(t, 30.0, cfg.RefreshHz)
}

func TestValidate_RejectsBadValues(t *testing.T) {
	cases := map[string]func(v *viper.Viper){
		"zero quantum":    func(v *viper.Viper) { v.Set("quantum", 0) },
		"negative frame":  func(v *viper.Viper) { v.Set("maxFrame", -1) },
		"unknown scene":   func(v *viper.Viper) { v.Set("scene", "blimp") },
		"zero ppm":        func(v *viper.Viper) { v.Set("scenes.drone.pixelsPerMeter", 0) },
		"bad mapping":     func(v *viper.Viper) { v.Set("scenes.drone.mapping", "joystick") },
		"unknown model":   func(v *viper.Viper) { v.Set("scenes.drone.model", "glider") },
		"bad policy":      func(v *viper.Viper) { v.Set("scenes.pursuit.camera.policy", "orbit") },
		"zero main zoom":  func(v *viper.Viper) { v.Set("scenes.pursuit.camera.zoom", 0) },
		"negative insets": func(v *viper.Viper) { v.Set("scenes.pursuit.insetSize", -5) },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			v := New()
			mutate(v)
			_, err := Load(v, "")
			require.Error(t, err)
		})
	}
}

func TestValidate_ZeroZoomIsInvalidZoom(t *testing.T) {
	v := New()
	v.Set("scenes.pursuit.camera.zoom", 0)
	_, err := Load(v, "")
	assert.True(t, errors.Is(err, view.ErrInvalidZoom), "got %v", err)
}

func TestSceneConfig_Builders(t *testing.T) {
	cfg, err := Load(New(), "")
	require.NoError(t, err)
	p := cfg.Scenes["pursuit"]

	m, err := p.Mapper()
	require.NoError(t, err)
	assert.Equal(t, input.LateralLongitudinal(1, 1), m)

	l, err := p.Layout()
	require.NoError(t, err)
	assert.Equal(t, compose.PolicyFixed, l.Main.Policy)
	require.Len(t, l.Insets, 2)
	assert.Equal(t, compose.TopRight, l.Insets[1].Anchor)
	assert.Equal(t, sim.PursuitInterceptor, l.Insets[1].Entity)

	sc, err := p.Scene("pursuit")
	require.NoError(t, err)
	require.Len(t, sc.Glyphs, 2)
	assert.Equal(t, render.GlyphDart, sc.Glyphs[1].Kind)
	assert.Equal(t, render.TargetColor, sc.Glyphs[1].Fill)

	d, err := cfg.Scenes["drone"].Scene("drone")
	require.NoError(t, err)
	assert.Equal(t, render.GlyphQuad, d.Glyphs[0].Kind)
	assert.Equal(t, 0.127, d.Glyphs[0].Arm)
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#ffcc00")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 0xff, G: 0xcc, B: 0x00, A: 0xff}, c)

	c, err = ParseColor("#00000080")
	require.NoError(t, err)
	assert.Equal(t, uint8(0x80), c.A)

	_, err = ParseColor("red")
	assert.ErrorIs(t, err, ErrInvalid)
}
