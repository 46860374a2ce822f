package systems

import (
	"bytes"
	"io"
	"log/slog"
	"testing"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/orbitcam/components"
)

const eps = 1e-9

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// bufferLogger captures log output as text.
func bufferLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, nil)), &buf
}

// fakeInput is a scripted InputSource.
type fakeInput struct {
	pointer r2.Vec
	scroll  float64
	held    map[Key]bool
}

func (f *fakeInput) PointerDelta() r2.Vec { return f.pointer }
func (f *fakeInput) ScrollDelta() float64 { return f.scroll }
func (f *fakeInput) KeyDown(k Key) bool   { return f.held[k] }

type line struct{ from, to r3.Vec }

// fakeDrawer records every line drawn.
type fakeDrawer struct {
	lines []line
}

func (d *fakeDrawer) DrawLine(from, to r3.Vec) {
	d.lines = append(d.lines, line{from, to})
}

// testRig bundles a world, a pipeline and component accessors.
type testRig struct {
	world      *ecs.World
	pipeline   *Pipeline
	rig        *Rig
	settings   *Settings
	transforms *ecs.Map[components.Transform]
	offsets    *ecs.Map[components.CameraOffset]
	tOffsets   *ecs.Map[components.TargetOffset]
	points     *ecs.Map[components.TargetPoint]
	damping    *ecs.Map[components.DampingFactor]
}

func newTestRig(t *testing.T, opts ...PipelineOption) *testRig {
	t.Helper()
	w := ecs.NewWorld()
	settings := DefaultSettings()
	p := NewPipeline(w, settings, append([]PipelineOption{WithLogger(discardLogger())}, opts...)...)
	t.Cleanup(p.Close)
	return &testRig{
		world:      w,
		pipeline:   p,
		rig:        p.Rig(),
		settings:   settings,
		transforms: ecs.NewMap[components.Transform](w),
		offsets:    ecs.NewMap[components.CameraOffset](w),
		tOffsets:   ecs.NewMap[components.TargetOffset](w),
		points:     ecs.NewMap[components.TargetPoint](w),
		damping:    ecs.NewMap[components.DampingFactor](w),
	}
}

func (r *testRig) target(t *testing.T, pos r3.Vec) ecs.Entity {
	t.Helper()
	return r.rig.SpawnTarget(components.At(pos))
}

func (r *testRig) camera(t *testing.T, target ecs.Entity, opts ...CameraOption) ecs.Entity {
	t.Helper()
	cam, err := r.rig.SpawnCamera(target, components.At(r3.Vec{}), opts...)
	if err != nil {
		t.Fatalf("SpawnCamera: %v", err)
	}
	return cam
}

func (r *testRig) move(e ecs.Entity, pos r3.Vec) {
	r.transforms.Get(e).Position = pos
}

func (r *testRig) position(e ecs.Entity) r3.Vec {
	return r.transforms.Get(e).Position
}

func vecNear(a, b r3.Vec, tol float64) bool {
	return r3.Norm(r3.Sub(a, b)) <= tol
}
