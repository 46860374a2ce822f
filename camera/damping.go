package camera

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// DampingMode selects how a damped target point approaches its goal.
type DampingMode string

const (
	// DampingLinear moves by lerp(p, goal, dt*factor). It is not frame-rate
	// independent and overshoots once dt*factor exceeds 1.
	DampingLinear DampingMode = "linear"

	// DampingExponential moves by lerp(p, goal, 1-exp(-factor*dt)) and
	// never passes the goal.
	DampingExponential DampingMode = "exponential"
)

// ParseDampingMode validates a mode name. The empty string means linear.
func ParseDampingMode(s string) (DampingMode, error) {
	switch DampingMode(s) {
	case "", DampingLinear:
		return DampingLinear, nil
	case DampingExponential:
		return DampingExponential, nil
	}
	return "", fmt.Errorf("unknown damping mode %q", s)
}

// Smooth advances current toward goal over dt seconds.
func Smooth(mode DampingMode, current, goal r3.Vec, dt, factor float64) r3.Vec {
	return Lerp(current, goal, SmoothingFactor(mode, dt, factor))
}

// SmoothingFactor returns the interpolation parameter used by Smooth.
func SmoothingFactor(mode DampingMode, dt, factor float64) float64 {
	if mode == DampingExponential {
		return 1 - math.Exp(-factor*dt)
	}
	return dt * factor
}
