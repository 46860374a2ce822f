package game

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/orbitcam/camera"
	"github.com/pthm-cable/orbitcam/components"
	"github.com/pthm-cable/orbitcam/systems"
)

// Demo scenes.
const (
	SceneFollow = "follow" // one damped camera
	SceneSplit  = "split"  // two cameras on one target, side by side
)

// Target movement keys.
const (
	keyForward systems.Key = "KeyW"
	keyBack    systems.Key = "KeyS"
	keyLeft    systems.Key = "KeyA"
	keyRight   systems.Key = "KeyD"
)

var targetStart = r3.Vec{Y: 3}

// setupScene spawns the target and the scene's cameras, and makes the
// first camera active through the command queue.
func (g *Game) setupScene() error {
	rig := g.pipeline.Rig()
	g.target = rig.SpawnTarget(components.At(targetStart))

	type spec struct {
		from r3.Vec
		opts []systems.CameraOption
	}
	var specs []spec
	switch g.cfg.Demo.Scene {
	case SceneFollow, "":
		specs = []spec{{from: r3.Vec{X: -10, Y: 10, Z: 10}, opts: []systems.CameraOption{systems.WithDamping(5)}}}
	case SceneSplit:
		specs = []spec{
			{from: r3.Vec{X: -10, Y: 10, Z: 10}},
			{from: r3.Vec{X: 10, Y: 10, Z: 10}},
		}
	default:
		return fmt.Errorf("unknown demo scene %q", g.cfg.Demo.Scene)
	}

	for _, s := range specs {
		t := components.Transform{Rotation: camera.LookFrom(s.from)}
		cam, err := rig.SpawnCamera(g.target, t, s.opts...)
		if err != nil {
			return fmt.Errorf("setting up scene: %w", err)
		}
		g.cameras = append(g.cameras, cam)
	}

	g.activeIndex = 0
	g.pipeline.Commands().Push(systems.SetActiveCommand{Camera: g.cameras[0]})
	return nil
}

// cycleCamera hands input to the next camera in scene order.
func (g *Game) cycleCamera() {
	if len(g.cameras) == 0 {
		return
	}
	g.activeIndex = (g.activeIndex + 1) % len(g.cameras)
	cam := g.cameras[g.activeIndex]
	g.pipeline.Commands().Push(systems.SetActiveCommand{Camera: cam})
	g.log.Info("active camera", "camera", cam.ID(), "index", g.activeIndex)
}

// moveTarget drives the target with WASD and, when enabled, a noise wander.
func (g *Game) moveTarget(dt float64, in systems.InputSource) {
	g.elapsed += dt
	tr := g.transforms.Get(g.target)

	step := g.cfg.Demo.TargetSpeed * dt
	if in != nil {
		if in.KeyDown(keyForward) {
			tr.Position.X += step
		}
		if in.KeyDown(keyBack) {
			tr.Position.X -= step
		}
		if in.KeyDown(keyLeft) {
			tr.Position.Z -= step
		}
		if in.KeyDown(keyRight) {
			tr.Position.Z += step
		}
	}

	if g.cfg.Demo.Wander {
		tr.Position = r3.Add(tr.Position, g.wander(step))
	}
}

// wander returns a smooth pseudo-random step of length up to `step`,
// sampled from simplex noise along the elapsed time.
func (g *Game) wander(step float64) r3.Vec {
	t := g.elapsed * 0.25
	heading := g.noise.Eval2(t, 0) * math.Pi
	climb := g.noise.Eval2(0, t) * 0.25
	return r3.Vec{
		X: step * math.Cos(heading),
		Y: step * climb,
		Z: step * math.Sin(heading),
	}
}
