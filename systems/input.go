package systems

import (
	"log/slog"

	"gonum.org/v1/gonum/spatial/r2"
)

// InputSource is the device state for one tick, supplied by the host.
type InputSource interface {
	// PointerDelta is the pointer motion accumulated since the last tick.
	PointerDelta() r2.Vec
	// ScrollDelta is the vertical wheel motion accumulated since the last tick.
	ScrollDelta() float64
	KeyDown(Key) bool
}

// InputMapper turns device state into commands for the active camera.
type InputMapper struct {
	settings *Settings
	log      *slog.Logger
}

// NewInputMapper creates a new input mapper.
func NewInputMapper(settings *Settings, log *slog.Logger) *InputMapper {
	return &InputMapper{settings: settings, log: log}
}

// Map pushes the commands for this tick onto queue and returns how many
// were pushed. Nothing is pushed without an active camera or input.
func (m *InputMapper) Map(dt float64, in InputSource, queue *CommandQueue) int {
	if in == nil {
		return 0
	}
	cam, ok := m.settings.Active()
	if !ok {
		return 0
	}
	s := m.settings
	n := 0

	if p := in.PointerDelta(); p != (r2.Vec{}) {
		queue.Push(OrbitCommand{Camera: cam, Delta: r2.Scale(s.MouseSpeed, p)})
		n++
	}

	step := s.CamSpeed * dt
	var yaw, pitch float64
	if in.KeyDown(s.Keys.Up) {
		pitch -= step
	}
	if in.KeyDown(s.Keys.Down) {
		pitch += step
	}
	pitch = clamp(pitch, s.PitchMin, s.PitchMax)
	if in.KeyDown(s.Keys.Left) {
		yaw -= step
	}
	if in.KeyDown(s.Keys.Right) {
		yaw += step
	}
	if yaw != 0 || pitch != 0 {
		queue.Push(OrbitCommand{Camera: cam, Delta: r2.Vec{X: yaw, Y: pitch}})
		n++
	}

	var roll float64
	switch {
	case in.KeyDown(s.Keys.RollClockwise):
		m.log.Debug("roll clockwise", "camera", cam.ID())
		roll = step
	case in.KeyDown(s.Keys.RollCounterclockwise):
		m.log.Debug("roll counterclockwise", "camera", cam.ID())
		roll = -step
	}
	if roll != 0 {
		queue.Push(RollCommand{Camera: cam, Value: roll})
		n++
	}

	if z := in.ScrollDelta(); z != 0 {
		queue.Push(ZoomCommand{Camera: cam, Value: z})
		n++
	}
	return n
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
