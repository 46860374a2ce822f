// Package camera provides the orbit math behind the camera rig.
// Orientations are unit quaternions, Euler angles use the intrinsic
// Y-X-Z sequence (yaw outermost, then pitch, then roll).
package camera

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/spatial/r3"
)

// Local axes of a camera frame.
var (
	AxisX = r3.Vec{X: 1}
	AxisY = r3.Vec{Y: 1}
	AxisZ = r3.Vec{Z: 1} // forward / view axis
)

// Identity returns the rotation that leaves every vector unchanged.
func Identity() r3.Rotation {
	return r3.Rotation{Real: 1}
}

// Euler holds intrinsic Y-X-Z angles in radians.
type Euler struct {
	Yaw   float64
	Pitch float64
	Roll  float64
}

// FromEuler composes yaw, pitch and roll into a rotation.
// The result equals rotY(yaw) * rotX(pitch) * rotZ(roll).
func FromEuler(e Euler) r3.Rotation {
	yaw := r3.NewRotation(e.Yaw, AxisY)
	pitch := r3.NewRotation(e.Pitch, AxisX)
	roll := r3.NewRotation(e.Roll, AxisZ)
	return Mul(Mul(yaw, pitch), roll)
}

// ToEuler decomposes a rotation into intrinsic Y-X-Z angles.
// Pitch is returned in [-pi/2, pi/2], yaw and roll in (-pi, pi].
func ToEuler(q r3.Rotation) Euler {
	q = Normalize(q)
	w, x, y, z := q.Real, q.Imag, q.Jmag, q.Kmag

	// Rotation matrix terms needed for R = Ry * Rx * Rz.
	m02 := 2 * (x*z + w*y)
	m12 := 2 * (y*z - w*x)
	m22 := 1 - 2*(x*x+y*y)
	m10 := 2 * (x*y + w*z)
	m11 := 1 - 2*(x*x+z*z)

	return Euler{
		Yaw:   math.Atan2(m02, m22),
		Pitch: math.Asin(clamp(-m12, -1, 1)),
		Roll:  math.Atan2(m10, m11),
	}
}

// Mul returns the composition a*b: b is applied first, then a.
func Mul(a, b r3.Rotation) r3.Rotation {
	return r3.Rotation(quat.Mul(quat.Number(a), quat.Number(b)))
}

// Normalize rescales q to unit length. A zero quaternion becomes the identity.
func Normalize(q r3.Rotation) r3.Rotation {
	n := quat.Abs(quat.Number(q))
	if n == 0 {
		return Identity()
	}
	return r3.Rotation(quat.Scale(1/n, quat.Number(q)))
}

// Orbit applies a yaw/pitch delta scaled by speed, clamping pitch to
// [pitchMin, pitchMax] and keeping roll. It returns the new orientation
// and the angles it was composed from.
func Orbit(q r3.Rotation, delta r2.Vec, speed, pitchMin, pitchMax float64) (r3.Rotation, Euler) {
	e := ToEuler(q)
	e.Yaw -= speed * delta.X
	e.Pitch = clamp(e.Pitch-speed*delta.Y, pitchMin, pitchMax)
	return FromEuler(e), e
}

// Roll spins q about its own forward axis by value radians.
func Roll(q r3.Rotation, value float64) r3.Rotation {
	return Normalize(Mul(q, r3.NewRotation(value, AxisZ)))
}

// Translation returns the world position of a camera that sits behind
// targetPoint along its rotated offset.
func Translation(orientation r3.Rotation, targetPoint, offset r3.Vec) r3.Vec {
	return r3.Sub(targetPoint, orientation.Rotate(offset))
}

// LookFrom returns the roll-free orientation whose view axis points along
// dir. A camera with a negative-Z offset then sits on the dir side of its
// pivot. A zero dir gives the identity.
func LookFrom(dir r3.Vec) r3.Rotation {
	n := r3.Norm(dir)
	if n == 0 {
		return Identity()
	}
	d := r3.Scale(1/n, dir)
	return FromEuler(Euler{
		Yaw:   math.Atan2(d.X, d.Z),
		Pitch: math.Asin(clamp(-d.Y, -1, 1)),
	})
}

// Lerp interpolates per axis between a and b. t is not clamped.
func Lerp(a, b r3.Vec, t float64) r3.Vec {
	return r3.Add(a, r3.Scale(t, r3.Sub(b, a)))
}

// clamp restricts a value to a range.
func clamp(x, min, max float64) float64 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
