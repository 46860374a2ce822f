package systems

import (
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r2"
)

// Command is a request applied to one camera during the commands stage.
type Command interface {
	command()
}

// OrbitCommand rotates a camera around its target. Delta.X is yaw,
// Delta.Y is pitch, both scaled by Settings.CamSpeed.
type OrbitCommand struct {
	Camera ecs.Entity
	Delta  r2.Vec
}

// RollCommand spins a camera about its view axis by Value radians.
type RollCommand struct {
	Camera ecs.Entity
	Value  float64
}

// ZoomCommand moves a camera along its local Z axis. Positive values
// zoom out with the default negative-Z offset.
type ZoomCommand struct {
	Camera ecs.Entity
	Value  float64
}

// SetActiveCommand assigns the camera that receives mapped input.
type SetActiveCommand struct {
	Camera ecs.Entity
}

func (OrbitCommand) command()     {}
func (RollCommand) command()      {}
func (ZoomCommand) command()      {}
func (SetActiveCommand) command() {}

// CommandQueue is a FIFO of commands drained once per tick.
type CommandQueue struct {
	items []Command
}

// Push adds a command.
func (q *CommandQueue) Push(cmd Command) {
	if q == nil || cmd == nil {
		return
	}
	q.items = append(q.items, cmd)
}

// Len returns the number of queued commands.
func (q *CommandQueue) Len() int {
	if q == nil {
		return 0
	}
	return len(q.items)
}

// Drain returns all commands and clears the queue.
func (q *CommandQueue) Drain() []Command {
	if q == nil || len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}

// refreshSet collects cameras whose translation must be recomputed,
// in first-request order and without duplicates.
type refreshSet struct {
	order []ecs.Entity
	seen  map[ecs.Entity]struct{}
}

func newRefreshSet() *refreshSet {
	return &refreshSet{seen: make(map[ecs.Entity]struct{})}
}

func (s *refreshSet) add(e ecs.Entity) {
	if _, ok := s.seen[e]; ok {
		return
	}
	s.seen[e] = struct{}{}
	s.order = append(s.order, e)
}

func (s *refreshSet) entities() []ecs.Entity {
	return s.order
}

func (s *refreshSet) reset() {
	s.order = s.order[:0]
	clear(s.seen)
}
