package game

import (
	"fmt"
	"math"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/orbitcam/camera"
)

const (
	hudX     = 10
	hudWidth = 220
)

// drawHUD draws the status text and the control panel.
func (g *Game) drawHUD() {
	rl.DrawFPS(int32(g.screenWidth)-90, 10)

	y := int32(10)
	line := func(format string, args ...any) {
		rl.DrawText(fmt.Sprintf(format, args...), hudX, y, 16, rl.RayWhite)
		y += 20
	}

	line("tick %d", g.Tick())
	if cam, ok := g.settings.Active(); ok && g.world.Alive(cam) && g.transforms.Has(cam) {
		e := camera.ToEuler(g.transforms.Get(cam).Rotation)
		line("camera %d  yaw %.1f  pitch %.1f  roll %.1f", cam.ID(), deg(e.Yaw), deg(e.Pitch), deg(e.Roll))
	} else {
		line("no active camera")
	}
	if g.paused {
		line("PAUSED")
	}

	y += 10
	fy := float32(y)
	btn := func(label string) bool {
		pressed := gui.Button(rl.Rectangle{X: hudX, Y: fy, Width: hudWidth, Height: 24}, label)
		fy += 30
		return pressed
	}

	if btn(fmt.Sprintf("Relation lines: %s", onOff(g.settings.ShowRelationLines))) {
		g.settings.ShowRelationLines = !g.settings.ShowRelationLines
	}
	if btn(fmt.Sprintf("Damping: %s", g.settings.DampingMode)) {
		g.toggleDampingMode()
	}
	if len(g.cameras) > 1 && btn("Next camera") {
		g.cycleCamera()
	}

	rl.DrawText("Camera speed", hudX, int32(fy), 14, rl.LightGray)
	fy += 16
	speed := gui.SliderBar(
		rl.Rectangle{X: hudX, Y: fy, Width: hudWidth - 50, Height: 18},
		"", fmt.Sprintf("%.2f", g.settings.CamSpeed),
		float32(g.settings.CamSpeed), 0.1, 5,
	)
	if speed != float32(g.settings.CamSpeed) {
		g.settings.CamSpeed = float64(speed)
	}

	rl.DrawText("RMB drag / arrows orbit, Q/E roll, wheel zoom, WASD move target",
		hudX, int32(g.screenHeight)-24, 14, rl.LightGray)
}

func (g *Game) toggleDampingMode() {
	if g.settings.DampingMode == camera.DampingExponential {
		g.settings.DampingMode = camera.DampingLinear
	} else {
		g.settings.DampingMode = camera.DampingExponential
	}
	g.log.Info("damping mode", "mode", g.settings.DampingMode)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func deg(rad float64) float64 {
	return rad * 180 / math.Pi
}
