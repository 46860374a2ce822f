package systems

import (
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/orbitcam/components"
)

// LineDrawer draws a debug line in world space.
type LineDrawer interface {
	DrawLine(from, to r3.Vec)
}

// OverlaySystem draws one line per (target, follower) pair, from the
// follower's pivot to its position. It never mutates state.
type OverlaySystem struct {
	world    *ecs.World
	settings *Settings

	filter          *ecs.Filter2[components.Transform, components.Followers]
	transformMap    *ecs.Map[components.Transform]
	targetOffsetMap *ecs.Map[components.TargetOffset]
}

// NewOverlaySystem creates a new overlay system.
func NewOverlaySystem(w *ecs.World, settings *Settings) *OverlaySystem {
	return &OverlaySystem{
		world:           w,
		settings:        settings,
		filter:          ecs.NewFilter2[components.Transform, components.Followers](w),
		transformMap:    ecs.NewMap[components.Transform](w),
		targetOffsetMap: ecs.NewMap[components.TargetOffset](w),
	}
}

// Draw emits the relation lines and returns how many were drawn.
func (s *OverlaySystem) Draw(d LineDrawer) int {
	if d == nil || !s.settings.ShowRelationLines {
		return 0
	}

	n := 0
	query := s.filter.Query()
	for query.Next() {
		tr, followers := query.Get()
		for _, cam := range followers.Cameras {
			if !s.world.Alive(cam) || !s.transformMap.Has(cam) || !s.targetOffsetMap.Has(cam) {
				continue
			}
			from := r3.Add(tr.Position, s.targetOffsetMap.Get(cam).Vec)
			d.DrawLine(from, s.transformMap.Get(cam).Position)
			n++
		}
	}
	return n
}
