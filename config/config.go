// Package config provides configuration loading and access for the camera rig.
package config

import (
	_ "embed"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all camera rig and viewer configuration.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	Camera    CameraConfig    `yaml:"camera"`
	Keys      KeysConfig      `yaml:"keys"`
	Debug     DebugConfig     `yaml:"debug"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Demo      DemoConfig      `yaml:"demo"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings for the viewer.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// CameraConfig holds the orbit camera defaults.
type CameraConfig struct {
	DefaultCameraOffset [3]float64 `yaml:"default_camera_offset"`
	DefaultTargetOffset [3]float64 `yaml:"default_target_offset"`
	DefaultDamping      float64    `yaml:"default_damping"` // 0 = no damping
	DampingMode         string     `yaml:"damping_mode"`    // linear | exponential
	PitchMinDeg         float64    `yaml:"pitch_min_deg"`
	PitchMaxDeg         float64    `yaml:"pitch_max_deg"`
	CamSpeed            float64    `yaml:"cam_speed"`
	MouseSpeed          float64    `yaml:"mouse_speed"`
	SettleEpsilon       float64    `yaml:"settle_epsilon"`
}

// KeysConfig holds key names for orbit, roll and viewer controls.
type KeysConfig struct {
	Up                   string `yaml:"up"`
	Down                 string `yaml:"down"`
	Left                 string `yaml:"left"`
	Right                string `yaml:"right"`
	RollClockwise        string `yaml:"roll_clockwise"`
	RollCounterclockwise string `yaml:"roll_counterclockwise"`
	CycleCamera          string `yaml:"cycle_camera"`
	ToggleOverlay        string `yaml:"toggle_overlay"`
}

// DebugConfig holds diagnostic toggles.
type DebugConfig struct {
	ShowRelationLines bool `yaml:"show_relation_lines"`
}

// TelemetryConfig holds perf and trace output parameters.
type TelemetryConfig struct {
	PerfWindow int `yaml:"perf_window"` // ticks averaged per perf sample
	TraceEvery int `yaml:"trace_every"` // write a camera trace row every N ticks
}

// DemoConfig holds viewer scene parameters.
type DemoConfig struct {
	Scene       string  `yaml:"scene"` // follow | split
	TargetSpeed float64 `yaml:"target_speed"`
	Wander      bool    `yaml:"wander"`
	NoiseSeed   int64   `yaml:"noise_seed"`
}

// DerivedConfig holds values computed from the loaded config.
type DerivedConfig struct {
	PitchMin float64 // radians
	PitchMax float64 // radians
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Set replaces the global configuration, e.g. after a hot reload.
func Set(cfg *Config) {
	global = cfg
}

// Defaults returns the embedded default configuration.
func Defaults() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults invalid: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// validate rejects values the rig cannot run with.
func (c *Config) validate() error {
	if c.Camera.PitchMinDeg > c.Camera.PitchMaxDeg {
		return fmt.Errorf("camera: pitch_min_deg %v above pitch_max_deg %v",
			c.Camera.PitchMinDeg, c.Camera.PitchMaxDeg)
	}
	if c.Camera.PitchMinDeg < -90 || c.Camera.PitchMaxDeg > 90 {
		return fmt.Errorf("camera: pitch bounds [%v, %v] outside [-90, 90]",
			c.Camera.PitchMinDeg, c.Camera.PitchMaxDeg)
	}
	if c.Camera.DefaultDamping < 0 {
		return fmt.Errorf("camera: default_damping must not be negative, got %v", c.Camera.DefaultDamping)
	}
	switch c.Camera.DampingMode {
	case "", "linear", "exponential":
	default:
		return fmt.Errorf("camera: unknown damping_mode %q", c.Camera.DampingMode)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.PitchMin = c.Camera.PitchMinDeg * math.Pi / 180
	c.Derived.PitchMax = c.Camera.PitchMaxDeg * math.Pi / 180

	if c.Telemetry.PerfWindow < 1 {
		c.Telemetry.PerfWindow = 60
	}
	if c.Telemetry.TraceEvery < 1 {
		c.Telemetry.TraceEvery = 1
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
