package systems

import (
	"log/slog"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/orbitcam/camera"
	"github.com/pthm-cable/orbitcam/components"
)

// CommandSystem applies queued orbit, roll, zoom and set-active commands.
// A command is dropped and logged, without touching any state, when its
// camera or that camera's target cannot be resolved.
type CommandSystem struct {
	world    *ecs.World
	settings *Settings
	log      *slog.Logger

	transformMap    *ecs.Map[components.Transform]
	orbitMap        *ecs.Map[components.OrbitCamera]
	cameraOffsetMap *ecs.Map[components.CameraOffset]
	cameraFilter    *ecs.Filter2[components.Transform, components.OrbitCamera]
}

// NewCommandSystem creates a new command system.
func NewCommandSystem(w *ecs.World, settings *Settings, log *slog.Logger) *CommandSystem {
	return &CommandSystem{
		world:           w,
		settings:        settings,
		log:             log,
		transformMap:    ecs.NewMap[components.Transform](w),
		orbitMap:        ecs.NewMap[components.OrbitCamera](w),
		cameraOffsetMap: ecs.NewMap[components.CameraOffset](w),
		cameraFilter:    ecs.NewFilter2[components.Transform, components.OrbitCamera](w),
	}
}

// Apply runs cmds in order. Cameras whose translation depends on the
// result are added to refresh. It returns the number of applied commands.
func (s *CommandSystem) Apply(cmds []Command, refresh *refreshSet) int {
	applied := 0
	for _, cmd := range cmds {
		var ok bool
		switch c := cmd.(type) {
		case SetActiveCommand:
			s.settings.SetActive(c.Camera)
			ok = true
		case OrbitCommand:
			if ok = s.Orbit(c); ok {
				refresh.add(c.Camera)
			}
		case RollCommand:
			ok = s.Roll(c)
		case ZoomCommand:
			if ok = s.Zoom(c); ok {
				refresh.add(c.Camera)
			}
		}
		if ok {
			applied++
		}
	}
	return applied
}

// Orbit rotates the camera's orientation by the command delta, with
// pitch clamped to the configured bounds.
func (s *CommandSystem) Orbit(cmd OrbitCommand) bool {
	tr, ok := s.resolve(cmd.Camera, "orbit")
	if !ok {
		return false
	}
	tr.Rotation, _ = camera.Orbit(tr.Rotation, cmd.Delta,
		s.settings.CamSpeed, s.settings.PitchMin, s.settings.PitchMax)
	return true
}

// Roll spins the camera about its view axis. Position is unaffected.
func (s *CommandSystem) Roll(cmd RollCommand) bool {
	tr, ok := s.resolve(cmd.Camera, "roll")
	if !ok {
		return false
	}
	s.log.Debug("roll", "camera", cmd.Camera.ID(), "value", cmd.Value)
	tr.Rotation = camera.Roll(tr.Rotation, cmd.Value)
	return true
}

// Zoom adds the command value to the camera offset's Z component.
func (s *CommandSystem) Zoom(cmd ZoomCommand) bool {
	if _, ok := s.resolve(cmd.Camera, "zoom"); !ok {
		return false
	}
	if !s.cameraOffsetMap.Has(cmd.Camera) {
		s.log.Warn("zoom dropped, camera has no offset", "camera", cmd.Camera.ID())
		return false
	}
	s.cameraOffsetMap.Get(cmd.Camera).Z += cmd.Value
	return true
}

// ClampPitch pulls every camera back inside the pitch bounds, e.g. after
// a reload narrowed them, and returns how many were changed.
func (s *CommandSystem) ClampPitch() int {
	lo, hi := s.settings.PitchMin, s.settings.PitchMax
	n := 0
	query := s.cameraFilter.Query()
	for query.Next() {
		tr, _ := query.Get()
		if p := camera.ToEuler(tr.Rotation).Pitch; p >= lo && p <= hi {
			continue
		}
		tr.Rotation, _ = camera.Orbit(tr.Rotation, r2.Vec{}, 0, lo, hi)
		n++
	}
	return n
}

func (s *CommandSystem) resolve(cam ecs.Entity, op string) (*components.Transform, bool) {
	if !s.world.Alive(cam) || !s.orbitMap.Has(cam) || !s.transformMap.Has(cam) {
		s.log.Warn("command dropped, camera unresolved", "op", op, "camera", cam.ID())
		return nil, false
	}
	target := s.orbitMap.Get(cam).Target
	if !s.world.Alive(target) || !s.transformMap.Has(target) {
		s.log.Error("command dropped, target unresolved", "op", op, "camera", cam.ID(), "target", target.ID())
		return nil, false
	}
	return s.transformMap.Get(cam), true
}
