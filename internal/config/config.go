// Package config loads viewer settings from defaults, an optional JSON file,
// a .env file, FLIGHTSCOPE_* environment variables and command-line flags,
// in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "FLIGHTSCOPE"

// Config is the full viewer configuration.
type Config struct {
	LogLevel   string                 `mapstructure:"logLevel"`
	LogFile    string                 `mapstructure:"logFile"`
	Scene      string                 `mapstructure:"scene"`
	Quantum    float64                `mapstructure:"quantum"`
	MaxFrame   float64                `mapstructure:"maxFrame"`
	RefreshHz  float64                `mapstructure:"refreshHz"`
	HoldWindow time.Duration          `mapstructure:"holdWindow"`
	Window     WindowConfig           `mapstructure:"window"`
	Scenes     map[string]SceneConfig `mapstructure:"scenes"`
}

// WindowConfig sizes the desktop window in logical pixels.
type WindowConfig struct {
	Width  int    `mapstructure:"width"`
	Height int    `mapstructure:"height"`
	Title  string `mapstructure:"title"`
}

// SceneConfig describes one viewable simulation.
type SceneConfig struct {
	Model          string         `mapstructure:"model"`
	PixelsPerMeter float64        `mapstructure:"pixelsPerMeter"`
	GridStep       float64        `mapstructure:"gridStep"`
	Ground         bool           `mapstructure:"ground"`
	GroundY        float64        `mapstructure:"groundY"`
	Mapping        string         `mapstructure:"mapping"`
	Axis1Step      float64        `mapstructure:"axis1Step"`
	Axis2Step      float64        `mapstructure:"axis2Step"`
	Glyphs         []GlyphConfig  `mapstructure:"glyphs"`
	Order          []int          `mapstructure:"order"`
	Camera         CameraConfig   `mapstructure:"camera"`
	Insets         []InsetConfig  `mapstructure:"insets"`
	InsetSize      float64        `mapstructure:"insetSize"`
	InsetPadding   float64        `mapstructure:"insetPadding"`
	Markers        []MarkerConfig `mapstructure:"markers"`
}

// GlyphConfig picks a shape and colour ("#rrggbb") for one entity.
type GlyphConfig struct {
	Kind  string  `mapstructure:"kind"`
	Color string  `mapstructure:"color"`
	Arm   float64 `mapstructure:"arm"`
}

// CameraConfig is the main camera.
type CameraConfig struct {
	Policy  string  `mapstructure:"policy"`
	CenterX float64 `mapstructure:"centerX"`
	CenterY float64 `mapstructure:"centerY"`
	Entity  int     `mapstructure:"entity"`
	Weight  float64 `mapstructure:"weight"`
	OffsetX float64 `mapstructure:"offsetX"`
	OffsetY float64 `mapstructure:"offsetY"`
	Zoom    float64 `mapstructure:"zoom"`
	FocusX  float64 `mapstructure:"focusX"`
	FocusY  float64 `mapstructure:"focusY"`
}

// InsetConfig is one corner inset.
type InsetConfig struct {
	Name   string  `mapstructure:"name"`
	Anchor string  `mapstructure:"anchor"`
	Entity int     `mapstructure:"entity"`
	Zoom   float64 `mapstructure:"zoom"`
}

// MarkerConfig is a fixed world crosshair.
type MarkerConfig struct {
	Name   string  `mapstructure:"name"`
	X      float64 `mapstructure:"x"`
	Y      float64 `mapstructure:"y"`
	SizePx float64 `mapstructure:"sizePx"`
	Color  string  `mapstructure:"color"`
}

// New returns a viper instance carrying the defaults and environment
// binding.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// SetDefaults installs the built-in configuration.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logLevel", "info")
	v.SetDefault("logFile", "")
	v.SetDefault("scene", "pursuit")
	v.SetDefault("quantum", 0.01)
	v.SetDefault("maxFrame", 0.25)
	v.SetDefault("refreshHz", 60)
	v.SetDefault("holdWindow", "150ms")

	v.SetDefault("window.width", 1000)
	v.SetDefault("window.height", 400)
	v.SetDefault("window.title", "Flight Scope")

	v.SetDefault("scenes.drone.model", "drone")
	v.SetDefault("scenes.drone.pixelsPerMeter", 60)
	v.SetDefault("scenes.drone.ground", true)
	v.SetDefault("scenes.drone.groundY", 0)
	v.SetDefault("scenes.drone.mapping", MappingThrustSteer)
	v.SetDefault("scenes.drone.axis1Step", 1.5)
	v.SetDefault("scenes.drone.axis2Step", 1.0)
	v.SetDefault("scenes.drone.glyphs", []map[string]any{
		{"kind": "quad", "color": "#66d9ef", "arm": 0.127},
	})
	v.SetDefault("scenes.drone.camera.policy", "fixed")
	v.SetDefault("scenes.drone.camera.zoom", 1)
	v.SetDefault("scenes.drone.camera.focusX", 0.5)
	v.SetDefault("scenes.drone.camera.focusY", 0.75)

	v.SetDefault("scenes.pursuit.model", "pursuit")
	v.SetDefault("scenes.pursuit.pixelsPerMeter", 0.25)
	v.SetDefault("scenes.pursuit.gridStep", 100)
	v.SetDefault("scenes.pursuit.ground", true)
	v.SetDefault("scenes.pursuit.groundY", 0)
	v.SetDefault("scenes.pursuit.mapping", MappingLateralLongitudinal)
	v.SetDefault("scenes.pursuit.axis1Step", 1.0)
	v.SetDefault("scenes.pursuit.axis2Step", 1.0)
	v.SetDefault("scenes.pursuit.glyphs", []map[string]any{
		{"kind": "dart", "color": "#ffffff"},
		{"kind": "dart", "color": "#ffcc00"},
	})
	v.SetDefault("scenes.pursuit.order", []int{1, 0})
	v.SetDefault("scenes.pursuit.camera.policy", "fixed")
	v.SetDefault("scenes.pursuit.camera.zoom", 1.5)
	v.SetDefault("scenes.pursuit.insets", []map[string]any{
		{"name": "target", "anchor": "top-left", "entity": 1, "zoom": 2.5},
		{"name": "interceptor", "anchor": "top-right", "entity": 0, "zoom": 2.5},
	})
	v.SetDefault("scenes.pursuit.insetSize", 90)
	v.SetDefault("scenes.pursuit.insetPadding", 8)
}

// Flags registers the command-line overrides on fs.
func Flags(fs *pflag.FlagSet) {
	fs.String("config", "", "path to a JSON config file")
	fs.String("scene", "", "scene to open")
	fs.Float64("quantum", 0, "simulation step in seconds")
	fs.Float64("max-frame", 0, "max real seconds credited per frame")
	fs.Float64("refresh-hz", 0, "display callbacks per second (terminal and headless)")
	fs.String("log-level", "", "TRACE, DEBUG, INFO, WARN or ERROR")
	fs.String("log-file", "", "also write logs to this file")
	fs.Int("width", 0, "window width")
	fs.Int("height", 0, "window height")
}

var flagKeys = map[string]string{
	"scene":      "scene",
	"quantum":    "quantum",
	"max-frame":  "maxFrame",
	"refresh-hz": "refreshHz",
	"log-level":  "logLevel",
	"log-file":   "logFile",
	"width":      "window.width",
	"height":     "window.height",
}

// BindFlags binds the flags registered by Flags into v. Only flags the user
// actually set take precedence over lower layers.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for flag, key := range flagKeys {
		f := fs.Lookup(flag)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("binding flag %q: %w", flag, err)
		}
	}
	return nil
}

// LoadEnv loads KEY=VALUE files into the process environment without
// overriding variables that are already set. Missing files are skipped.
func LoadEnv(files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return nil
}

// Load reads path (if not empty) into v, then decodes and validates the
// result.
func Load(v *viper.Viper, path string) (Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("json")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Current returns the settings of the selected scene.
func (c Config) Current() (SceneConfig, error) {
	s, ok := c.Scenes[strings.ToLower(c.Scene)]
	if !ok {
		return SceneConfig{}, fmt.Errorf("%w: %q", ErrUnknownScene, c.Scene)
	}
	return s, nil
}

// SceneNames lists configured scenes in sorted order.
func (c Config) SceneNames() []string {
	out := make([]string, 0, len(c.Scenes))
	for k := range c.Scenes {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
