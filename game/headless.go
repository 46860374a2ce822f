package game

import (
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/orbitcam/config"
	"github.com/pthm-cable/orbitcam/systems"
)

// scriptedInput replays a fixed control pattern for headless runs: a slow
// pointer orbit, target moving forward, and a periodic zoom and roll burst.
type scriptedInput struct {
	keys    config.KeysConfig
	pointer r2.Vec
	scroll  float64
	held    map[systems.Key]bool
}

func newScriptedInput(keys config.KeysConfig) *scriptedInput {
	return &scriptedInput{keys: keys, held: make(map[systems.Key]bool)}
}

// advance sets the device state for the given tick.
func (s *scriptedInput) advance(tick int64) {
	clear(s.held)
	s.pointer = r2.Vec{X: 2}
	s.scroll = 0

	phase := tick % 600
	switch {
	case phase < 240:
		s.held[keyForward] = true
	case phase < 300:
		s.held[systems.Key(s.keys.Up)] = true
	case phase < 360:
		s.held[systems.Key(s.keys.RollClockwise)] = true
	case phase < 480:
		s.held[keyBack] = true
	}
	if phase%120 == 0 {
		// Alternate in and out so the distance stays bounded.
		s.scroll = 1
		if (phase/120)%2 == 1 {
			s.scroll = -1
		}
	}
}

func (s *scriptedInput) PointerDelta() r2.Vec       { return s.pointer }
func (s *scriptedInput) ScrollDelta() float64       { return s.scroll }
func (s *scriptedInput) KeyDown(k systems.Key) bool { return s.held[k] }
