package core

import (
	"testing"
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniformSizesMatchShaders(t *testing.T) {
	assert.Equal(t, uintptr(128), unsafe.Sizeof(FrameUniform{}))
	assert.Equal(t, uintptr(192), unsafe.Sizeof(ObjectUniform{}))
}

func TestNewFrameUniform_LightDirection(t *testing.T) {
	sun := DirectionalLight{
		Position:  mgl32.Vec3{0, 4, 4},
		Target:    mgl32.Vec3{0, 0, 0},
		Color:     mgl32.Vec3{1, 1, 1},
		Intensity: 0.5,
	}
	u := NewFrameUniform(mgl32.Ident4(), mgl32.Ident4(), mgl32.Vec3{1, 1, 2}, sun, AmbientLight{Intensity: 0.2})

	assert.InDelta(t, 0, u.LightDir[0], 1e-6)
	assert.InDelta(t, 0.70710677, u.LightDir[1], 1e-6)
	assert.InDelta(t, 0.70710677, u.LightDir[2], 1e-6)
	assert.InDelta(t, 0.5, u.LightDir[3], 1e-6)
	assert.InDelta(t, 0.2, u.Ambient[3], 1e-6)
	assert.Equal(t, [4]float32{1, 1, 2, 1}, u.CameraPos)
}

func TestClipSpaceCorrection_MapsDepthRange(t *testing.T) {
	near := ClipSpaceCorrection.Mul4x1(mgl32.Vec4{0, 0, -1, 1})
	far := ClipSpaceCorrection.Mul4x1(mgl32.Vec4{0, 0, 1, 1})

	assert.InDelta(t, 0, near.Z()/near.W(), 1e-6)
	assert.InDelta(t, 1, far.Z()/far.W(), 1e-6)
}

func TestSetModel_NormalMatrixOfUniformScale(t *testing.T) {
	var o ObjectUniform
	o.SetModel(mgl32.Translate3D(1, 2, 3).Mul4(mgl32.Scale3D(2, 2, 2)))

	assert.Equal(t, float32(1), o.Model[12])
	assert.InDelta(t, 0.5, o.Normal[0], 1e-6)
	assert.InDelta(t, 0, o.Normal[12], 1e-6)
}

func TestTextureMask(t *testing.T) {
	var slots [StandardSlots]*TextureData
	slots[SlotMap] = &TextureData{}
	slots[SlotRoughnessMap] = &TextureData{}

	assert.Equal(t, uint32(1|1<<SlotRoughnessMap), TextureMask(slots, nil))
	assert.Equal(t, uint32(1|1<<SlotRoughnessMap|1<<StandardSlots), TextureMask(slots, &TextureData{Cube: true}))
}

func TestSortForDraw(t *testing.T) {
	items := []DrawItem{
		{Entity: 1, Transparent: true, Position: mgl32.Vec3{0, 0, -1}},
		{Entity: 2, Position: mgl32.Vec3{0, 0, -5}},
		{Entity: 3, Transparent: true, Position: mgl32.Vec3{0, 0, -9}},
		{Entity: 4, Position: mgl32.Vec3{0, 0, -2}},
	}

	SortForDraw(items, [3]float32{0, 0, 0})

	var order []uint64
	for _, it := range items {
		order = append(order, it.Entity)
	}
	require.Equal(t, []uint64{4, 2, 3, 1}, order)
	assert.Equal(t, 2, SplitTransparent(items))
}
