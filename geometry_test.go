package gekko

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/gekko3d/gekko-pbr/render/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSphereGeometry_Counts(t *testing.T) {
	g := SphereGeometry(0.5, 16, 16)

	assert.Equal(t, 17*17, g.VertexCount())
	assert.Len(t, g.Indices, 1440)
	for _, idx := range g.Indices {
		require.Less(t, int(idx), g.VertexCount())
	}
}

func TestSphereGeometry_VerticesOnSurface(t *testing.T) {
	g := SphereGeometry(0.5, 16, 16)

	for i := 0; i < g.VertexCount(); i++ {
		x, y, z := g.Positions[i*3], g.Positions[i*3+1], g.Positions[i*3+2]
		assert.InDelta(t, 0.5, math32.Sqrt(x*x+y*y+z*z), 1e-5)
	}
	// north pole row is at +Y with the half-segment u shift
	assert.InDelta(t, 0.5, g.Positions[1], 1e-6)
	assert.InDelta(t, 0.5/16, g.Attributes["uv"][0], 1e-6)
	assert.InDelta(t, 1, g.Attributes["uv"][1], 1e-6)
}

func TestPlaneGeometry_Layout(t *testing.T) {
	g := PlaneGeometry(1, 1, 4, 1)

	require.Equal(t, 10, g.VertexCount())
	assert.Len(t, g.Indices, 24)

	// first vertex is top left
	assert.Equal(t, []float32{-0.5, 0.5, 0}, g.Positions[0:3])
	assert.Equal(t, []float32{0, 1}, g.Attributes["uv"][0:2])
	// last vertex is bottom right
	assert.Equal(t, []float32{0.5, -0.5, 0}, g.Positions[27:30])
	assert.Equal(t, []float32{1, 0}, g.Attributes["uv"][18:20])
	for i := 0; i < g.VertexCount(); i++ {
		assert.Equal(t, []float32{0, 0, 1}, g.Normals[i*3:i*3+3])
	}
}

func TestTorusGeometry_Counts(t *testing.T) {
	g := TorusGeometry(0.3, 0.2, 16, 32)

	assert.Equal(t, 561, g.VertexCount())
	assert.Len(t, g.Indices, 3072)
	// outermost point of the first ring
	assert.InDelta(t, 0.5, g.Positions[0], 1e-6)
	assert.InDelta(t, 1, g.Normals[0], 1e-6)
}

func TestGeometry_DuplicateUV(t *testing.T) {
	g := PlaneGeometry(1, 1, 4, 1)
	g.DuplicateUV()

	uv2, ok := g.Attribute("uv2")
	require.True(t, ok)
	assert.Equal(t, g.Attributes["uv"], uv2)

	// independent copy
	uv2[0] = 42
	assert.NotEqual(t, float32(42), g.Attributes["uv"][0])
}

func TestGeometry_SetAttributeRejectsWrongLength(t *testing.T) {
	g := PlaneGeometry(1, 1, 1, 1)
	assert.Error(t, g.SetAttribute("uv2", []float32{0, 1}))
}

func TestGeometry_Interleave(t *testing.T) {
	g := PlaneGeometry(1, 1, 1, 1)
	v := g.Interleave()

	require.Len(t, v, 4*core.VertexStride)
	assert.Equal(t, []float32{-0.5, 0.5, 0, 0, 0, 1, 0, 1, 0, 1}, v[:core.VertexStride])
}
