package main

import (
	"io"
	"log/slog"
	"math"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/orbitcam/camera"
	"github.com/pthm-cable/orbitcam/components"
	"github.com/pthm-cable/orbitcam/config"
	"github.com/pthm-cable/orbitcam/systems"
)

// stepResponse is how a damped camera follows a target that jumps once.
type stepResponse struct {
	Settle    float64 // seconds until the error stays within tolerance
	Overshoot float64 // largest overshoot past the goal, as a fraction of the jump
	Settled   bool
}

// simulator runs the real pipeline on a one-camera world.
type simulator struct {
	base      *config.Config
	jump      float64
	tolerance float64 // fraction of the jump
	maxTime   float64 // seconds
	log       *slog.Logger
}

func newSimulator(base *config.Config, jump, tolerance, maxTime float64) *simulator {
	return &simulator{
		base:      base,
		jump:      jump,
		tolerance: tolerance,
		maxTime:   maxTime,
		log:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// run measures the step response of one camera with the given damping.
func (s *simulator) run(mode camera.DampingMode, factor, dt float64) (stepResponse, error) {
	settings, err := systems.NewSettings(s.base)
	if err != nil {
		return stepResponse{}, err
	}
	settings.DampingMode = mode
	settings.SettleEpsilon = 0

	w := ecs.NewWorld()
	p := systems.NewPipeline(w, settings, systems.WithLogger(s.log))
	defer p.Close()

	rig := p.Rig()
	target := rig.SpawnTarget(components.At(r3.Vec{}))
	cam, err := rig.SpawnCamera(target, components.At(r3.Vec{}), systems.WithDamping(factor))
	if err != nil {
		return stepResponse{}, err
	}
	p.Step(dt, nil)

	ecs.NewMap[components.Transform](w).Get(target).Position = r3.Vec{X: s.jump}
	points := ecs.NewMap[components.TargetPoint](w)

	var resp stepResponse
	prevErr, prevTime := 1.0, 0.0
	lastCross := -1.0
	ticks := int(math.Ceil(s.maxTime / dt))
	for i := 1; i <= ticks; i++ {
		p.Step(dt, nil)
		x := points.Get(cam).X
		e := math.Abs(s.jump-x) / s.jump
		t := float64(i) * dt
		if over := (x - s.jump) / s.jump; over > resp.Overshoot {
			resp.Overshoot = over
		}

		switch {
		case e > s.tolerance:
			lastCross = -1
		case lastCross < 0:
			// Interpolate the crossing between the two samples.
			lastCross = prevTime + (prevErr-s.tolerance)/(prevErr-e)*(t-prevTime)
		}
		prevErr, prevTime = e, t

		if math.IsNaN(e) || math.IsInf(e, 0) {
			break
		}
	}

	if lastCross >= 0 {
		resp.Settle = lastCross
		resp.Settled = true
	} else {
		// Grows with the remaining error so the optimizer sees a slope.
		resp.Settle = s.maxTime * (1 + math.Min(prevErr, 10))
	}
	return resp, nil
}
