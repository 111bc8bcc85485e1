package core

import (
	"image"

	"github.com/go-gl/mathgl/mgl32"
)

type MaterialKind uint32

const (
	MaterialStandard MaterialKind = iota
	MaterialMatcap
)

// Texture slots of the standard material, in binding order.
const (
	SlotMap = iota
	SlotAlphaMap
	SlotAoMap
	SlotBumpMap
	SlotMetalnessMap
	SlotNormalMap
	SlotRoughnessMap
	StandardSlots
)

// TextureData is a decoded RGBA8 texture ready for upload. Cube textures carry six
// faces back to back in +X, -X, +Y, -Y, +Z, -Z order.
type TextureData struct {
	ID      string
	Version uint32
	Width   int
	Height  int
	Pixels  []byte
	SRGB    bool
	Cube    bool
}

func (t *TextureData) Layers() int {
	if t.Cube {
		return 6
	}
	return 1
}

// GeometryData holds interleaved vertices (VertexStride floats each) and triangle indices.
type GeometryData struct {
	ID       string
	Version  uint32
	Vertices []float32
	Indices  []uint32
}

// position(3) normal(3) uv(2) uv2(2)
const VertexStride = 10

type DrawItem struct {
	Entity      uint64
	Kind        MaterialKind
	Geometry    *GeometryData
	Uniform     ObjectUniform
	Textures    [StandardSlots]*TextureData
	EnvMap      *TextureData
	Matcap      *TextureData
	Transparent bool
	Position    mgl32.Vec3
	Depth       float32
}

// Overlay is a CPU-rasterized image composited over the scene at pixel offset (X, Y).
type Overlay struct {
	Image   *image.RGBA
	X, Y    int
	Version uint64
	Visible bool
}

// Frame is everything a renderer needs to draw one image.
type Frame struct {
	Number     uint64
	Width      int
	Height     int
	PixelRatio float32
	ClearColor [4]float64
	Uniform    FrameUniform
	CameraPos  mgl32.Vec3
	Items      []DrawItem
	Overlay    *Overlay
}
