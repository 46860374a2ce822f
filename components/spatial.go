package components

import "gonum.org/v1/gonum/spatial/r3"

// Transform is an entity's world transform. The host owns it for targets;
// the rig writes Rotation and Position of orbit cameras.
type Transform struct {
	Position r3.Vec
	Rotation r3.Rotation
}

// At returns an unrotated transform at pos.
func At(pos r3.Vec) Transform {
	return Transform{Position: pos, Rotation: r3.Rotation{Real: 1}}
}
