package systems

import (
	"log/slog"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/orbitcam/components"
)

// BackfillSystem gives new cameras the components they were spawned
// without, using the Settings defaults. Existing components are never
// overwritten.
type BackfillSystem struct {
	world    *ecs.World
	settings *Settings
	log      *slog.Logger

	filter          *ecs.Filter1[components.OrbitCamera]
	initMap         *ecs.Map[components.Initialized]
	transformMap    *ecs.Map[components.Transform]
	cameraOffsetMap *ecs.Map[components.CameraOffset]
	targetOffsetMap *ecs.Map[components.TargetOffset]
	targetPointMap  *ecs.Map[components.TargetPoint]
	dampingMap      *ecs.Map[components.DampingFactor]

	pending []pendingCamera
	// unresolved remembers cameras already reported, to log once.
	unresolved map[ecs.Entity]struct{}
}

type pendingCamera struct {
	camera ecs.Entity
	target ecs.Entity
}

// NewBackfillSystem creates a new backfill system.
func NewBackfillSystem(w *ecs.World, settings *Settings, log *slog.Logger) *BackfillSystem {
	return &BackfillSystem{
		world:           w,
		settings:        settings,
		log:             log,
		filter:          ecs.NewFilter1[components.OrbitCamera](w),
		initMap:         ecs.NewMap[components.Initialized](w),
		transformMap:    ecs.NewMap[components.Transform](w),
		cameraOffsetMap: ecs.NewMap[components.CameraOffset](w),
		targetOffsetMap: ecs.NewMap[components.TargetOffset](w),
		targetPointMap:  ecs.NewMap[components.TargetPoint](w),
		dampingMap:      ecs.NewMap[components.DampingFactor](w),
		unresolved:      make(map[ecs.Entity]struct{}),
	}
}

// Update back-fills every camera not yet initialized and returns how
// many were completed. Completed cameras are added to refresh so they are
// placed in the same tick, even when their target is not moving.
func (s *BackfillSystem) Update(refresh *refreshSet) int {
	// Collect first: adding components is a structural change and is not
	// allowed while the query is open.
	s.pending = s.pending[:0]
	query := s.filter.Query()
	for query.Next() {
		e := query.Entity()
		if s.initMap.Has(e) {
			continue
		}
		orbit := query.Get()
		s.pending = append(s.pending, pendingCamera{camera: e, target: orbit.Target})
	}

	done := 0
	for _, p := range s.pending {
		if s.fill(p) {
			refresh.add(p.camera)
			done++
		}
	}
	return done
}

// fill adds missing components to one camera. It reports whether the
// camera is now complete; a camera whose target cannot be resolved stays
// pending and is retried next tick.
func (s *BackfillSystem) fill(p pendingCamera) bool {
	cam := p.camera
	if !s.cameraOffsetMap.Has(cam) {
		s.cameraOffsetMap.Add(cam, &components.CameraOffset{Vec: s.settings.DefaultCameraOffset})
	}
	if !s.targetOffsetMap.Has(cam) {
		s.targetOffsetMap.Add(cam, &components.TargetOffset{Vec: s.settings.DefaultTargetOffset})
	}
	if !s.dampingMap.Has(cam) && s.settings.DefaultDamping != nil {
		d := *s.settings.DefaultDamping
		s.dampingMap.Add(cam, &d)
	}

	if !s.targetPointMap.Has(cam) {
		pos, ok := s.targetPosition(p.target)
		if !ok {
			if _, seen := s.unresolved[cam]; !seen {
				s.unresolved[cam] = struct{}{}
				s.log.Error("camera target unresolved, target point not initialized",
					"camera", cam.ID(), "target", p.target.ID())
			}
			return false
		}
		// Use the camera's own offset when it was spawned with one.
		point := r3.Add(pos, s.targetOffsetMap.Get(cam).Vec)
		s.targetPointMap.Add(cam, &components.TargetPoint{Vec: point})
	}

	delete(s.unresolved, cam)
	s.initMap.Add(cam, &components.Initialized{})
	return true
}

func (s *BackfillSystem) targetPosition(target ecs.Entity) (r3.Vec, bool) {
	if !s.world.Alive(target) || !s.transformMap.Has(target) {
		return r3.Vec{}, false
	}
	return s.transformMap.Get(target).Position, true
}
