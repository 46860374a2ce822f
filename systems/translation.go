package systems

import (
	"log/slog"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/orbitcam/components"
)

// TranslationSystem places cameras at targetPoint - orientation*offset.
// Each camera's result depends only on its own state, so a batch is
// snapshotted, computed in parallel and written back single-threaded.
type TranslationSystem struct {
	world *ecs.World
	log   *slog.Logger

	filter          *ecs.Filter1[components.OrbitCamera]
	transformMap    *ecs.Map[components.Transform]
	cameraOffsetMap *ecs.Map[components.CameraOffset]
	targetPointMap  *ecs.Map[components.TargetPoint]

	parallel *parallelState
	all      []ecs.Entity
}

// NewTranslationSystem creates a new translation system.
func NewTranslationSystem(w *ecs.World, log *slog.Logger) *TranslationSystem {
	return &TranslationSystem{
		world:           w,
		log:             log,
		filter:          ecs.NewFilter1[components.OrbitCamera](w),
		transformMap:    ecs.NewMap[components.Transform](w),
		cameraOffsetMap: ecs.NewMap[components.CameraOffset](w),
		targetPointMap:  ecs.NewMap[components.TargetPoint](w),
		parallel:        newParallelState(),
	}
}

// Refresh recomputes the world position of each camera and returns how
// many were updated. Cameras missing required state are logged and skipped.
func (s *TranslationSystem) Refresh(cameras []ecs.Entity) int {
	// Phase A: snapshot (single-threaded)
	p := s.parallel
	p.snapshots = p.snapshots[:0]
	for _, cam := range cameras {
		if !s.world.Alive(cam) || !s.transformMap.Has(cam) {
			s.log.Error("translation skipped, camera unresolved", "camera", cam.ID())
			continue
		}
		if !s.cameraOffsetMap.Has(cam) || !s.targetPointMap.Has(cam) {
			s.log.Warn("translation skipped, camera not initialized", "camera", cam.ID())
			continue
		}
		p.snapshots = append(p.snapshots, cameraSnapshot{
			Entity:      cam,
			Rotation:    s.transformMap.Get(cam).Rotation,
			TargetPoint: s.targetPointMap.Get(cam).Vec,
			Offset:      s.cameraOffsetMap.Get(cam).Vec,
		})
	}
	if len(p.snapshots) == 0 {
		return 0
	}

	// Phase B: compute
	p.compute()

	// Phase C: apply (single-threaded)
	for i, snap := range p.snapshots {
		s.transformMap.Get(snap.Entity).Position = p.results[i]
	}
	return len(p.snapshots)
}

// RefreshAll recomputes every initialized camera, e.g. after settings
// or offsets were changed outside the command path.
func (s *TranslationSystem) RefreshAll() int {
	s.all = s.all[:0]
	query := s.filter.Query()
	for query.Next() {
		e := query.Entity()
		if s.targetPointMap.Has(e) && s.cameraOffsetMap.Has(e) {
			s.all = append(s.all, e)
		}
	}
	return s.Refresh(s.all)
}

// Close stops the worker pool.
func (s *TranslationSystem) Close() {
	s.parallel.stopWorkers()
}
