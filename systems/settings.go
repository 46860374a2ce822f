// Package systems contains the ECS systems that drive orbit cameras.
package systems

import (
	"fmt"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/orbitcam/camera"
	"github.com/pthm-cable/orbitcam/components"
	"github.com/pthm-cable/orbitcam/config"
)

// Key names a keyboard key, e.g. "ArrowUp" or "KeyE".
type Key string

// KeyBindings maps orbit and roll controls to keys.
type KeyBindings struct {
	Up                   Key
	Down                 Key
	Left                 Key
	Right                Key
	RollClockwise        Key
	RollCounterclockwise Key
}

// Settings is the shared, explicitly passed rig configuration.
// It is read by every stage and written only from the tick goroutine.
type Settings struct {
	DefaultCameraOffset r3.Vec
	DefaultTargetOffset r3.Vec
	// DefaultDamping is given to new cameras; nil means instant tracking.
	DefaultDamping *components.DampingFactor
	DampingMode    camera.DampingMode

	PitchMin, PitchMax float64 // radians
	CamSpeed           float64
	MouseSpeed         float64

	// SettleEpsilon is the distance at which a damped target point stops
	// being advanced after its target came to rest.
	SettleEpsilon float64

	Keys KeyBindings

	ShowRelationLines bool

	active    ecs.Entity
	hasActive bool
}

// NewSettings builds settings from a loaded config.
func NewSettings(cfg *config.Config) (*Settings, error) {
	s := &Settings{}
	if err := s.Apply(cfg); err != nil {
		return nil, err
	}
	return s, nil
}

// DefaultSettings returns settings built from the embedded defaults.
func DefaultSettings() *Settings {
	s, err := NewSettings(config.Defaults())
	if err != nil {
		panic(fmt.Sprintf("systems: default settings: %v", err))
	}
	return s
}

// Apply copies cfg into s. The active camera is kept.
func (s *Settings) Apply(cfg *config.Config) error {
	mode, err := camera.ParseDampingMode(cfg.Camera.DampingMode)
	if err != nil {
		return fmt.Errorf("applying config: %w", err)
	}

	c := cfg.Camera
	s.DefaultCameraOffset = vec3(c.DefaultCameraOffset)
	s.DefaultTargetOffset = vec3(c.DefaultTargetOffset)
	s.DefaultDamping = nil
	if c.DefaultDamping > 0 {
		s.DefaultDamping = &components.DampingFactor{Factor: c.DefaultDamping}
	}
	s.DampingMode = mode
	s.PitchMin = cfg.Derived.PitchMin
	s.PitchMax = cfg.Derived.PitchMax
	s.CamSpeed = c.CamSpeed
	s.MouseSpeed = c.MouseSpeed
	s.SettleEpsilon = c.SettleEpsilon

	k := cfg.Keys
	s.Keys = KeyBindings{
		Up:                   Key(k.Up),
		Down:                 Key(k.Down),
		Left:                 Key(k.Left),
		Right:                Key(k.Right),
		RollClockwise:        Key(k.RollClockwise),
		RollCounterclockwise: Key(k.RollCounterclockwise),
	}
	s.ShowRelationLines = cfg.Debug.ShowRelationLines
	return nil
}

// SetActive makes camera the one receiving mapped input. The entity is
// not validated here; commands for a missing camera are dropped later.
func (s *Settings) SetActive(camera ecs.Entity) {
	s.active = camera
	s.hasActive = true
}

// ClearActive leaves no camera receiving input.
func (s *Settings) ClearActive() {
	s.active = ecs.Entity{}
	s.hasActive = false
}

// Active returns the active camera, if any.
func (s *Settings) Active() (ecs.Entity, bool) {
	return s.active, s.hasActive
}

func vec3(v [3]float64) r3.Vec {
	return r3.Vec{X: v[0], Y: v[1], Z: v[2]}
}
