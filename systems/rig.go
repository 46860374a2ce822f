package systems

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/orbitcam/camera"
	"github.com/pthm-cable/orbitcam/components"
)

// Relationship errors.
var (
	ErrTargetNotFound  = errors.New("target not found")
	ErrCameraNotFound  = errors.New("camera not found")
	ErrAlreadyAttached = errors.New("camera already follows a target")
	ErrNotACamera      = errors.New("entity is not an orbit camera")
)

// Rig owns the camera/target relationship. OrbitCamera on the camera and
// Followers on the target are only ever edited here, so both sides stay
// consistent. The rig indexes cameras; entity lifetime stays with the host.
type Rig struct {
	world *ecs.World
	log   *slog.Logger

	transformMap    *ecs.Map[components.Transform]
	orbitMap        *ecs.Map[components.OrbitCamera]
	followersMap    *ecs.Map[components.Followers]
	cameraOffsetMap *ecs.Map[components.CameraOffset]
	targetOffsetMap *ecs.Map[components.TargetOffset]
	targetPointMap  *ecs.Map[components.TargetPoint]
	dampingMap      *ecs.Map[components.DampingFactor]
	initMap         *ecs.Map[components.Initialized]
}

// NewRig creates a rig over w. A nil logger uses slog.Default().
func NewRig(w *ecs.World, log *slog.Logger) *Rig {
	if log == nil {
		log = slog.Default()
	}
	return &Rig{
		world:           w,
		log:             log,
		transformMap:    ecs.NewMap[components.Transform](w),
		orbitMap:        ecs.NewMap[components.OrbitCamera](w),
		followersMap:    ecs.NewMap[components.Followers](w),
		cameraOffsetMap: ecs.NewMap[components.CameraOffset](w),
		targetOffsetMap: ecs.NewMap[components.TargetOffset](w),
		targetPointMap:  ecs.NewMap[components.TargetPoint](w),
		dampingMap:      ecs.NewMap[components.DampingFactor](w),
		initMap:         ecs.NewMap[components.Initialized](w),
	}
}

// World returns the world the rig operates on.
func (r *Rig) World() *ecs.World {
	return r.world
}

// SpawnTarget creates an entity that cameras can follow.
func (r *Rig) SpawnTarget(t components.Transform) ecs.Entity {
	return r.transformMap.NewEntity(&t)
}

// CameraOption sets an auxiliary component on a camera at spawn time.
// Components not set here are back-filled from Settings on the next tick.
type CameraOption func(*cameraSpec)

type cameraSpec struct {
	cameraOffset *r3.Vec
	targetOffset *r3.Vec
	damping      *float64
}

// WithCameraOffset sets the camera offset, in the camera's frame.
func WithCameraOffset(v r3.Vec) CameraOption {
	return func(s *cameraSpec) { s.cameraOffset = &v }
}

// WithTargetOffset sets the pivot shift from the target position.
func WithTargetOffset(v r3.Vec) CameraOption {
	return func(s *cameraSpec) { s.targetOffset = &v }
}

// WithDamping enables smoothed tracking with the given factor.
func WithDamping(factor float64) CameraOption {
	return func(s *cameraSpec) { s.damping = &factor }
}

// SpawnCamera creates a camera aimed at target. A zero rotation in t is
// taken as identity.
func (r *Rig) SpawnCamera(target ecs.Entity, t components.Transform, opts ...CameraOption) (ecs.Entity, error) {
	if !r.resolvable(target) {
		return ecs.Entity{}, fmt.Errorf("spawning camera: %w", ErrTargetNotFound)
	}

	var spec cameraSpec
	for _, opt := range opts {
		opt(&spec)
	}

	// A zero rotation cannot rotate an offset.
	t.Rotation = camera.Normalize(t.Rotation)
	cam := r.transformMap.NewEntity(&t)
	if spec.cameraOffset != nil {
		r.cameraOffsetMap.Add(cam, &components.CameraOffset{Vec: *spec.cameraOffset})
	}
	if spec.targetOffset != nil {
		r.targetOffsetMap.Add(cam, &components.TargetOffset{Vec: *spec.targetOffset})
	}
	if spec.damping != nil {
		r.dampingMap.Add(cam, &components.DampingFactor{Factor: *spec.damping})
	}

	if err := r.Attach(cam, target); err != nil {
		r.world.RemoveEntity(cam)
		return ecs.Entity{}, fmt.Errorf("spawning camera: %w", err)
	}
	return cam, nil
}

// Attach links camera to target. A camera follows exactly one target and
// cannot be re-targeted; detach or recreate it instead.
func (r *Rig) Attach(camera, target ecs.Entity) error {
	if !r.world.Alive(camera) {
		return ErrCameraNotFound
	}
	if !r.resolvable(target) {
		return ErrTargetNotFound
	}
	if r.orbitMap.Has(camera) {
		return ErrAlreadyAttached
	}

	r.orbitMap.Add(camera, &components.OrbitCamera{Target: target})
	if r.followersMap.Has(target) {
		f := r.followersMap.Get(target)
		f.Cameras = append(f.Cameras, camera)
		// Re-track even a still target so the newcomer gets its pivot.
		f.Tracked = false
	} else {
		r.followersMap.Add(target, &components.Followers{Cameras: []ecs.Entity{camera}})
	}

	r.log.Debug("camera attached", "camera", camera.ID(), "target", target.ID())
	return nil
}

// Detach unlinks camera from its target. The camera keeps its offsets and
// damping; its target point is dropped so the next Attach re-seeds it.
func (r *Rig) Detach(camera ecs.Entity) error {
	if !r.world.Alive(camera) {
		return ErrCameraNotFound
	}
	if !r.orbitMap.Has(camera) {
		return ErrNotACamera
	}

	target := r.orbitMap.Get(camera).Target
	r.orbitMap.Remove(camera)
	r.dropFollower(target, camera)
	r.forgetPivot(camera)

	r.log.Debug("camera detached", "camera", camera.ID(), "target", target.ID())
	return nil
}

// Despawn removes an entity and repairs the relationship around it.
// A removed camera leaves its target's followers; the followers of a
// removed target are orphaned, lose their pivot and are not reconnected.
func (r *Rig) Despawn(e ecs.Entity) {
	if !r.world.Alive(e) {
		return
	}

	if r.orbitMap.Has(e) {
		target := r.orbitMap.Get(e).Target
		r.orbitMap.Remove(e)
		r.dropFollower(target, e)
	}

	if r.followersMap.Has(e) {
		orphans := slices.Clone(r.followersMap.Get(e).Cameras)
		r.followersMap.Remove(e)
		for _, cam := range orphans {
			if r.world.Alive(cam) && r.orbitMap.Has(cam) {
				r.orbitMap.Remove(cam)
				r.forgetPivot(cam)
			}
		}
		if len(orphans) > 0 {
			r.log.Info("target removed, cameras orphaned", "target", e.ID(), "cameras", len(orphans))
		}
	}

	r.world.RemoveEntity(e)
}

// Followers returns the cameras following target, in attach order.
// The slice is a copy.
func (r *Rig) Followers(target ecs.Entity) []ecs.Entity {
	if !r.world.Alive(target) || !r.followersMap.Has(target) {
		return nil
	}
	return slices.Clone(r.followersMap.Get(target).Cameras)
}

// Target returns the entity camera follows.
func (r *Rig) Target(camera ecs.Entity) (ecs.Entity, bool) {
	if !r.world.Alive(camera) || !r.orbitMap.Has(camera) {
		return ecs.Entity{}, false
	}
	return r.orbitMap.Get(camera).Target, true
}

// dropFollower removes camera from target's list, and the list itself
// once it is empty.
func (r *Rig) dropFollower(target, camera ecs.Entity) {
	if !r.world.Alive(target) || !r.followersMap.Has(target) {
		return
	}
	f := r.followersMap.Get(target)
	f.Cameras = slices.DeleteFunc(f.Cameras, func(e ecs.Entity) bool { return e == camera })
	if len(f.Cameras) == 0 {
		r.followersMap.Remove(target)
	}
}

// forgetPivot returns camera to the uninitialized state, so backfill
// seeds a fresh target point from whatever it follows next.
func (r *Rig) forgetPivot(camera ecs.Entity) {
	if r.targetPointMap.Has(camera) {
		r.targetPointMap.Remove(camera)
	}
	if r.initMap.Has(camera) {
		r.initMap.Remove(camera)
	}
}

// resolvable reports whether e can serve as a target.
func (r *Rig) resolvable(e ecs.Entity) bool {
	return r.world.Alive(e) && r.transformMap.Has(e)
}
