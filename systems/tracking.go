package systems

import (
	"log/slog"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/orbitcam/camera"
	"github.com/pthm-cable/orbitcam/components"
)

// TrackingSystem recomputes the target point of every camera following
// a target that moved. Damped cameras keep converging on later ticks
// until they settle, even if the target stopped.
type TrackingSystem struct {
	world    *ecs.World
	settings *Settings
	log      *slog.Logger

	filter          *ecs.Filter2[components.Transform, components.Followers]
	followersMap    *ecs.Map[components.Followers]
	targetOffsetMap *ecs.Map[components.TargetOffset]
	targetPointMap  *ecs.Map[components.TargetPoint]
	dampingMap      *ecs.Map[components.DampingFactor]

	// Targets with a damped follower that has not reached its pivot yet.
	unsettled map[ecs.Entity]struct{}
	next      map[ecs.Entity]struct{}
	// Targets left without live followers, removed after the query.
	emptied []ecs.Entity
}

// NewTrackingSystem creates a new tracking system.
func NewTrackingSystem(w *ecs.World, settings *Settings, log *slog.Logger) *TrackingSystem {
	return &TrackingSystem{
		world:           w,
		settings:        settings,
		log:             log,
		filter:          ecs.NewFilter2[components.Transform, components.Followers](w),
		followersMap:    ecs.NewMap[components.Followers](w),
		targetOffsetMap: ecs.NewMap[components.TargetOffset](w),
		targetPointMap:  ecs.NewMap[components.TargetPoint](w),
		dampingMap:      ecs.NewMap[components.DampingFactor](w),
		unsettled:       make(map[ecs.Entity]struct{}),
		next:            make(map[ecs.Entity]struct{}),
	}
}

// Update advances target points by dt seconds and queues every touched
// camera for a translation refresh. Followers removed by the host without
// Rig.Despawn are pruned here.
func (s *TrackingSystem) Update(dt float64, refresh *refreshSet) {
	clear(s.next)
	s.emptied = s.emptied[:0]

	query := s.filter.Query()
	for query.Next() {
		target := query.Entity()
		tr, followers := query.Get()

		moved := !followers.Tracked || tr.Position != followers.LastPosition
		if _, pending := s.unsettled[target]; !moved && !pending {
			continue
		}
		followers.LastPosition = tr.Position
		followers.Tracked = true

		live := followers.Cameras[:0]
		for _, cam := range followers.Cameras {
			if !s.world.Alive(cam) {
				s.log.Warn("follower no longer exists, dropped", "camera", cam.ID(), "target", target.ID())
				continue
			}
			live = append(live, cam)
			if s.track(cam, tr.Position, dt) {
				s.next[target] = struct{}{}
			}
			refresh.add(cam)
		}
		followers.Cameras = live
		if len(live) == 0 {
			s.emptied = append(s.emptied, target)
		}
	}

	for _, target := range s.emptied {
		s.followersMap.Remove(target)
	}
	s.unsettled, s.next = s.next, s.unsettled
}

// track updates one camera's target point. It reports whether the point
// is still converging.
func (s *TrackingSystem) track(cam ecs.Entity, position r3.Vec, dt float64) bool {
	if !s.targetOffsetMap.Has(cam) || !s.targetPointMap.Has(cam) {
		// Not back-filled yet.
		return false
	}

	point := s.targetPointMap.Get(cam)
	absolute := r3.Add(position, s.targetOffsetMap.Get(cam).Vec)

	if !s.dampingMap.Has(cam) {
		point.Vec = absolute
		return false
	}

	factor := s.dampingMap.Get(cam).Factor
	point.Vec = camera.Smooth(s.settings.DampingMode, point.Vec, absolute, dt, factor)
	return r3.Norm(r3.Sub(absolute, point.Vec)) > s.settings.SettleEpsilon
}
