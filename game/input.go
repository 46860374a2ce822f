package game

import (
	"log/slog"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/orbitcam/config"
	"github.com/pthm-cable/orbitcam/systems"
)

// keyCodes maps key names used in config files to raylib key codes.
var keyCodes = func() map[systems.Key]int32 {
	m := map[systems.Key]int32{
		"ArrowUp":      rl.KeyUp,
		"ArrowDown":    rl.KeyDown,
		"ArrowLeft":    rl.KeyLeft,
		"ArrowRight":   rl.KeyRight,
		"Space":        rl.KeySpace,
		"Enter":        rl.KeyEnter,
		"Tab":          rl.KeyTab,
		"Escape":       rl.KeyEscape,
		"ShiftLeft":    rl.KeyLeftShift,
		"ShiftRight":   rl.KeyRightShift,
		"ControlLeft":  rl.KeyLeftControl,
		"ControlRight": rl.KeyRightControl,
		"PageUp":       rl.KeyPageUp,
		"PageDown":     rl.KeyPageDown,
		"Home":         rl.KeyHome,
		"End":          rl.KeyEnd,
	}
	for c := 'A'; c <= 'Z'; c++ {
		m[systems.Key("Key"+string(c))] = int32(rl.KeyA + (c - 'A'))
	}
	for d := '0'; d <= '9'; d++ {
		m[systems.Key("Digit"+string(d))] = int32(rl.KeyZero + (d - '0'))
	}
	return m
}()

// rlInput adapts raylib's device state to systems.InputSource.
// Pointer motion only orbits while the right mouse button is held.
type rlInput struct{}

func newRLInput(settings *systems.Settings, log *slog.Logger) *rlInput {
	k := settings.Keys
	for _, name := range []systems.Key{k.Up, k.Down, k.Left, k.Right, k.RollClockwise, k.RollCounterclockwise} {
		if _, ok := keyCodes[name]; !ok {
			log.Warn("unknown key name, binding ignored", "key", name)
		}
	}
	return &rlInput{}
}

func (rlInput) PointerDelta() r2.Vec {
	if !rl.IsMouseButtonDown(rl.MouseButtonRight) {
		return r2.Vec{}
	}
	d := rl.GetMouseDelta()
	return r2.Vec{X: float64(d.X), Y: float64(d.Y)}
}

func (rlInput) ScrollDelta() float64 {
	return float64(rl.GetMouseWheelMove())
}

func (rlInput) KeyDown(k systems.Key) bool {
	code, ok := keyCodes[k]
	return ok && rl.IsKeyDown(code)
}

// viewerKeys are the viewer's own bindings, outside the rig.
type viewerKeys struct {
	cycleCamera   int32
	toggleOverlay int32
}

func newViewerKeys(k config.KeysConfig, log *slog.Logger) viewerKeys {
	lookup := func(name string, fallback int32) int32 {
		if code, ok := keyCodes[systems.Key(name)]; ok {
			return code
		}
		log.Warn("unknown key name, using default", "key", name)
		return fallback
	}
	return viewerKeys{
		cycleCamera:   lookup(k.CycleCamera, rl.KeyC),
		toggleOverlay: lookup(k.ToggleOverlay, rl.KeyG),
	}
}

// handleInput processes viewer keys. Rig controls are read by the
// pipeline through rlInput.
func (g *Game) handleInput() {
	g.handleResize()

	if rl.IsKeyPressed(rl.KeyF11) {
		rl.ToggleFullscreen()
	}
	if rl.IsKeyPressed(rl.KeyP) {
		g.paused = !g.paused
	}
	if rl.IsKeyPressed(g.keys.cycleCamera) {
		g.cycleCamera()
	}
	if rl.IsKeyPressed(g.keys.toggleOverlay) {
		g.settings.ShowRelationLines = !g.settings.ShowRelationLines
	}
}

// handleResize checks for window resize and rebuilds the viewports.
func (g *Game) handleResize() {
	if !rl.IsWindowResized() {
		return
	}
	w := float32(rl.GetScreenWidth())
	h := float32(rl.GetScreenHeight())
	if w == g.screenWidth && h == g.screenHeight {
		return
	}
	g.screenWidth = w
	g.screenHeight = h
	g.createViews()
}
