package gekko

import (
	"github.com/go-gl/mathgl/mgl32"
)

// CameraComponent is a perspective camera. Fov is the vertical field of view in degrees.
type CameraComponent struct {
	Position mgl32.Vec3
	LookAt   mgl32.Vec3
	Up       mgl32.Vec3
	Fov      float32
	Aspect   float32
	Near     float32
	Far      float32

	projection mgl32.Mat4
}

func NewPerspectiveCamera(fov, aspect, near, far float32) CameraComponent {
	c := CameraComponent{
		Up:     mgl32.Vec3{0, 1, 0},
		Fov:    fov,
		Aspect: aspect,
		Near:   near,
		Far:    far,
	}
	c.UpdateProjectionMatrix()
	return c
}

// UpdateProjectionMatrix must be called after changing Fov, Aspect, Near or Far.
func (c *CameraComponent) UpdateProjectionMatrix() {
	aspect := c.Aspect
	if aspect <= 0 {
		aspect = 1
	}
	c.projection = mgl32.Perspective(mgl32.DegToRad(c.Fov), aspect, c.Near, c.Far)
}

func (c *CameraComponent) ProjectionMatrix() mgl32.Mat4 {
	if c.projection == (mgl32.Mat4{}) {
		c.UpdateProjectionMatrix()
	}
	return c.projection
}

func (c *CameraComponent) ViewMatrix() mgl32.Mat4 {
	up := c.Up
	if up == (mgl32.Vec3{}) {
		up = mgl32.Vec3{0, 1, 0}
	}
	return mgl32.LookAtV(c.Position, c.LookAt, up)
}
