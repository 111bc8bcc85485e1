package gekko

import (
	"github.com/go-gl/mathgl/mgl32"
)

// TransformComponent places an entity in world space. Rotation holds Euler angles
// in radians, applied in X, Y, Z order.
type TransformComponent struct {
	Position mgl32.Vec3
	Rotation mgl32.Vec3
	Scale    mgl32.Vec3
}

func NewTransform(x, y, z float32) TransformComponent {
	return TransformComponent{
		Position: mgl32.Vec3{x, y, z},
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

// Matrix returns T * Rx * Ry * Rz * S. A zero scale is treated as identity.
func (t TransformComponent) Matrix() mgl32.Mat4 {
	scale := t.Scale
	if scale == (mgl32.Vec3{}) {
		scale = mgl32.Vec3{1, 1, 1}
	}
	rot := mgl32.HomogRotate3DX(t.Rotation.X()).
		Mul4(mgl32.HomogRotate3DY(t.Rotation.Y())).
		Mul4(mgl32.HomogRotate3DZ(t.Rotation.Z()))
	return mgl32.Translate3D(t.Position.X(), t.Position.Y(), t.Position.Z()).
		Mul4(rot).
		Mul4(mgl32.Scale3D(scale.X(), scale.Y(), scale.Z()))
}

type NameComponent struct {
	Name string
}
