// Package components defines ECS components for orbit cameras and their targets.
package components

import (
	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"
)

// OrbitCamera marks a camera that orbits Target.
// The target is fixed for the camera's lifetime; only the rig edits it.
type OrbitCamera struct {
	Target ecs.Entity
}

// Followers is the back-reference held by a target: the cameras
// following it, in attach order. Only the rig edits it.
type Followers struct {
	Cameras []ecs.Entity

	// Changed-detection state for the tracker.
	LastPosition r3.Vec
	Tracked      bool
}

// CameraOffset is the camera position relative to its target point,
// expressed in the camera's own rotated frame.
type CameraOffset struct {
	r3.Vec
}

// TargetOffset shifts the orbit pivot away from the target's position,
// e.g. from a character's feet up to its chest.
type TargetOffset struct {
	r3.Vec
}

// TargetPoint is the smoothed pivot the camera orbits around.
type TargetPoint struct {
	r3.Vec
}

// DampingFactor enables smoothed tracking. Lower values lag more.
// Cameras without it track their target instantly.
type DampingFactor struct {
	Factor float64
}

// Initialized marks a camera whose missing components have been
// back-filled from the rig defaults.
type Initialized struct{}
