package core

import (
	"github.com/go-gl/mathgl/mgl32"
)

// FrameUniform matches the `Frame` struct in the WGSL shaders (128 bytes).
type FrameUniform struct {
	ViewProj   [16]float32
	CameraPos  [4]float32
	LightDir   [4]float32 // xyz towards the light, w intensity
	LightColor [4]float32
	Ambient    [4]float32 // rgb, intensity
}

// ObjectUniform matches the `Object` struct in the WGSL shaders (192 bytes).
type ObjectUniform struct {
	Model   [16]float32
	Normal  [16]float32
	Color   [4]float32 // rgb, opacity
	Params0 [4]float32 // metalness, roughness, ao intensity, bump scale
	Params1 [4]float32 // env intensity, normal scale x, normal scale y, pad
	Flags   [4]uint32  // texture mask, material kind, transparent, pad
}

type DirectionalLight struct {
	Position  mgl32.Vec3
	Target    mgl32.Vec3
	Color     mgl32.Vec3
	Intensity float32
}

type AmbientLight struct {
	Color     mgl32.Vec3
	Intensity float32
}

// ClipSpaceCorrection remaps OpenGL clip depth [-1,1] to the WebGPU range [0,1].
var ClipSpaceCorrection = mgl32.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

func NewFrameUniform(proj, view mgl32.Mat4, eye mgl32.Vec3, sun DirectionalLight, ambient AmbientLight) FrameUniform {
	u := FrameUniform{
		ViewProj:  [16]float32(ClipSpaceCorrection.Mul4(proj).Mul4(view)),
		CameraPos: [4]float32{eye.X(), eye.Y(), eye.Z(), 1},
	}

	dir := sun.Position.Sub(sun.Target)
	if dir.Len() > 0 {
		dir = dir.Normalize()
	}
	u.LightDir = [4]float32{dir.X(), dir.Y(), dir.Z(), sun.Intensity}
	u.LightColor = [4]float32{sun.Color.X(), sun.Color.Y(), sun.Color.Z(), 1}
	u.Ambient = [4]float32{ambient.Color.X(), ambient.Color.Y(), ambient.Color.Z(), ambient.Intensity}
	return u
}

// SetModel stores the model matrix and its inverse transpose.
func (o *ObjectUniform) SetModel(model mgl32.Mat4) {
	o.Model = [16]float32(model)
	n := model.Mat3().Inv().Transpose()
	o.Normal = [16]float32(n.Mat4())
}

func TextureMask(textures [StandardSlots]*TextureData, env *TextureData) uint32 {
	var mask uint32
	for i, t := range textures {
		if t != nil {
			mask |= 1 << i
		}
	}
	if env != nil {
		mask |= 1 << StandardSlots
	}
	return mask
}
