package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/orbitcam/camera"
	"github.com/pthm-cable/orbitcam/components"
)

var (
	colorBackground = rl.NewColor(24, 26, 33, 255)
	colorFloor      = rl.NewColor(34, 197, 94, 255)  // green-500
	colorTarget     = rl.NewColor(59, 130, 246, 255) // blue-500
	colorRelation   = rl.NewColor(250, 204, 21, 255)
	colorActive     = rl.NewColor(250, 204, 21, 255)
)

// view renders one camera into its own texture, placed at a horizontal
// slot of the window.
type view struct {
	camera ecs.Entity
	target rl.RenderTexture2D
	x      float32
}

func (v *view) unload() {
	rl.UnloadRenderTexture(v.target)
}

// createViews splits the window into one column per camera.
func (g *Game) createViews() {
	for _, v := range g.views {
		v.unload()
	}
	g.views = g.views[:0]

	n := len(g.cameras)
	if n == 0 {
		return
	}
	width := int32(g.screenWidth) / int32(n)
	for i, cam := range g.cameras {
		g.views = append(g.views, &view{
			camera: cam,
			target: rl.LoadRenderTexture(width, int32(g.screenHeight)),
			x:      float32(int32(i) * width),
		})
	}
}

// Draw renders every view, then the HUD.
func (g *Game) Draw() {
	for _, v := range g.views {
		rl.BeginTextureMode(v.target)
		rl.ClearBackground(colorBackground)
		rl.BeginMode3D(g.camera3D(v.camera))
		g.drawWorld(v.camera)
		// The overlay draws in world space, inside the 3D pass.
		g.pipeline.DrawOverlay(lineDrawer{color: colorRelation})
		rl.EndMode3D()
		rl.EndTextureMode()
	}

	rl.BeginDrawing()
	rl.ClearBackground(colorBackground)
	active, hasActive := g.settings.Active()
	for _, v := range g.views {
		w := float32(v.target.Texture.Width)
		h := float32(v.target.Texture.Height)
		// Render textures are stored upside down.
		rl.DrawTextureRec(v.target.Texture, rl.Rectangle{Width: w, Height: -h}, rl.Vector2{X: v.x}, rl.White)
		if len(g.views) > 1 && hasActive && v.camera == active {
			rl.DrawRectangleLinesEx(rl.Rectangle{X: v.x, Width: w, Height: h}, 3, colorActive)
		}
	}
	g.drawHUD()
	rl.EndDrawing()
}

// camera3D builds the raylib camera for an orbit camera entity. It looks
// at the camera's smoothed target point with its rolled up axis.
func (g *Game) camera3D(cam ecs.Entity) rl.Camera3D {
	tr := g.transforms.Get(cam)
	look := g.pivot(cam)
	up := tr.Rotation.Rotate(camera.AxisY)
	return rl.Camera3D{
		Position:   toRL(tr.Position),
		Target:     toRL(look),
		Up:         toRL(up),
		Fovy:       60,
		Projection: rl.CameraPerspective,
	}
}

// pivot returns the camera's target point, or the target position before
// the first tick has filled it in.
func (g *Game) pivot(cam ecs.Entity) r3.Vec {
	points := ecs.NewMap[components.TargetPoint](g.world)
	if points.Has(cam) {
		return points.Get(cam).Vec
	}
	return g.transforms.Get(g.target).Position
}

func (g *Game) drawWorld(viewer ecs.Entity) {
	rl.DrawPlane(rl.Vector3{}, rl.Vector2{X: 20, Y: 20}, colorFloor)
	rl.DrawGrid(20, 1)

	pos := toRL(g.transforms.Get(g.target).Position)
	rl.DrawCube(pos, 2, 2, 2, colorTarget)
	rl.DrawCubeWires(pos, 2, 2, 2, rl.DarkBlue)

	// Other cameras as small markers.
	for _, cam := range g.cameras {
		if cam == viewer {
			continue
		}
		rl.DrawSphere(toRL(g.transforms.Get(cam).Position), 0.3, rl.LightGray)
	}
}

// lineDrawer draws overlay lines with raylib in the current 3D pass.
type lineDrawer struct {
	color rl.Color
}

func (d lineDrawer) DrawLine(from, to r3.Vec) {
	rl.DrawLine3D(toRL(from), toRL(to), d.color)
}

func toRL(v r3.Vec) rl.Vector3 {
	return rl.Vector3{X: float32(v.X), Y: float32(v.Y), Z: float32(v.Z)}
}
