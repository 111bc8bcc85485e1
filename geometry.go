package gekko

import (
	"fmt"
	"slices"

	"github.com/chewxy/math32"
	"github.com/gekko3d/gekko-pbr/render/core"
)

// Geometry is an indexed triangle mesh. Positions and normals have three components per
// vertex; every named attribute in Attributes has two ("uv", "uv2").
type Geometry struct {
	Positions  []float32
	Normals    []float32
	Attributes map[string][]float32
	Indices    []uint32
}

func newGeometry(vertexCount int) *Geometry {
	return &Geometry{
		Positions:  make([]float32, 0, vertexCount*3),
		Normals:    make([]float32, 0, vertexCount*3),
		Attributes: map[string][]float32{"uv": make([]float32, 0, vertexCount*2)},
	}
}

func (g *Geometry) VertexCount() int {
	return len(g.Positions) / 3
}

func (g *Geometry) Attribute(name string) ([]float32, bool) {
	data, ok := g.Attributes[name]
	return data, ok
}

// SetAttribute stores a copy of data under name. It must hold two floats per vertex.
func (g *Geometry) SetAttribute(name string, data []float32) error {
	if len(data) != g.VertexCount()*2 {
		return fmt.Errorf("attribute %q has %d floats, want %d", name, len(data), g.VertexCount()*2)
	}
	g.Attributes[name] = slices.Clone(data)
	return nil
}

// DuplicateUV copies "uv" into "uv2", which the ambient occlusion map samples.
func (g *Geometry) DuplicateUV() {
	if err := g.SetAttribute("uv2", g.Attributes["uv"]); err != nil {
		panic(err)
	}
}

func (g *Geometry) pushVertex(px, py, pz, nx, ny, nz, u, v float32) {
	g.Positions = append(g.Positions, px, py, pz)
	g.Normals = append(g.Normals, nx, ny, nz)
	g.Attributes["uv"] = append(g.Attributes["uv"], u, v)
}

// Interleave packs the mesh into core.VertexStride floats per vertex.
// Meshes without "uv2" reuse "uv".
func (g *Geometry) Interleave() []float32 {
	uv := g.Attributes["uv"]
	uv2, ok := g.Attributes["uv2"]
	if !ok {
		uv2 = uv
	}
	n := g.VertexCount()
	out := make([]float32, 0, n*core.VertexStride)
	for i := 0; i < n; i++ {
		out = append(out, g.Positions[i*3:i*3+3]...)
		out = append(out, g.Normals[i*3:i*3+3]...)
		out = append(out, uv[i*2:i*2+2]...)
		out = append(out, uv2[i*2:i*2+2]...)
	}
	return out
}

func normalize3(x, y, z float32) (float32, float32, float32) {
	l := math32.Sqrt(x*x + y*y + z*z)
	if l == 0 {
		return 0, 0, 0
	}
	return x / l, y / l, z / l
}

// SphereGeometry builds a UV sphere with (width+1)*(height+1) vertices. The pole rows
// shift their u coordinate by half a segment so each pole triangle samples its own texel column.
func SphereGeometry(radius float32, widthSegments, heightSegments int) *Geometry {
	widthSegments = max(widthSegments, 3)
	heightSegments = max(heightSegments, 2)

	g := newGeometry((widthSegments + 1) * (heightSegments + 1))
	grid := make([][]uint32, heightSegments+1)

	var index uint32
	for iy := 0; iy <= heightSegments; iy++ {
		row := make([]uint32, widthSegments+1)
		v := float32(iy) / float32(heightSegments)

		var uOffset float32
		switch iy {
		case 0:
			uOffset = 0.5 / float32(widthSegments)
		case heightSegments:
			uOffset = -0.5 / float32(widthSegments)
		}

		for ix := 0; ix <= widthSegments; ix++ {
			u := float32(ix) / float32(widthSegments)
			phi := u * 2 * math32.Pi
			theta := v * math32.Pi

			x := -radius * math32.Cos(phi) * math32.Sin(theta)
			y := radius * math32.Cos(theta)
			z := radius * math32.Sin(phi) * math32.Sin(theta)
			nx, ny, nz := normalize3(x, y, z)

			g.pushVertex(x, y, z, nx, ny, nz, u+uOffset, 1-v)
			row[ix] = index
			index++
		}
		grid[iy] = row
	}

	for iy := 0; iy < heightSegments; iy++ {
		for ix := 0; ix < widthSegments; ix++ {
			a := grid[iy][ix+1]
			b := grid[iy][ix]
			c := grid[iy+1][ix]
			d := grid[iy+1][ix+1]

			if iy != 0 {
				g.Indices = append(g.Indices, a, b, d)
			}
			if iy != heightSegments-1 {
				g.Indices = append(g.Indices, b, c, d)
			}
		}
	}
	return g
}

// PlaneGeometry builds a width x height quad in the XY plane facing +Z.
func PlaneGeometry(width, height float32, widthSegments, heightSegments int) *Geometry {
	gridX := max(widthSegments, 1)
	gridY := max(heightSegments, 1)
	gridX1, gridY1 := gridX+1, gridY+1
	segW, segH := width/float32(gridX), height/float32(gridY)

	g := newGeometry(gridX1 * gridY1)
	for iy := 0; iy < gridY1; iy++ {
		y := float32(iy)*segH - height/2
		for ix := 0; ix < gridX1; ix++ {
			x := float32(ix)*segW - width/2
			g.pushVertex(x, -y, 0, 0, 0, 1, float32(ix)/float32(gridX), 1-float32(iy)/float32(gridY))
		}
	}

	for iy := 0; iy < gridY; iy++ {
		for ix := 0; ix < gridX; ix++ {
			a := uint32(ix + gridX1*iy)
			b := uint32(ix + gridX1*(iy+1))
			c := uint32(ix + 1 + gridX1*(iy+1))
			d := uint32(ix + 1 + gridX1*iy)
			g.Indices = append(g.Indices, a, b, d, b, c, d)
		}
	}
	return g
}

// TorusGeometry builds a ring of major radius `radius` around Z with tube radius `tube`.
func TorusGeometry(radius, tube float32, radialSegments, tubularSegments int) *Geometry {
	radialSegments = max(radialSegments, 2)
	tubularSegments = max(tubularSegments, 3)

	g := newGeometry((radialSegments + 1) * (tubularSegments + 1))
	for j := 0; j <= radialSegments; j++ {
		for i := 0; i <= tubularSegments; i++ {
			u := float32(i) / float32(tubularSegments) * 2 * math32.Pi
			v := float32(j) / float32(radialSegments) * 2 * math32.Pi

			x := (radius + tube*math32.Cos(v)) * math32.Cos(u)
			y := (radius + tube*math32.Cos(v)) * math32.Sin(u)
			z := tube * math32.Sin(v)
			nx, ny, nz := normalize3(x-radius*math32.Cos(u), y-radius*math32.Sin(u), z)

			g.pushVertex(x, y, z, nx, ny, nz,
				float32(i)/float32(tubularSegments), float32(j)/float32(radialSegments))
		}
	}

	stride := uint32(tubularSegments + 1)
	for j := uint32(1); j <= uint32(radialSegments); j++ {
		for i := uint32(1); i <= uint32(tubularSegments); i++ {
			a := stride*j + i - 1
			b := stride*(j-1) + i - 1
			c := stride*(j-1) + i
			d := stride*j + i
			g.Indices = append(g.Indices, a, b, d, b, c, d)
		}
	}
	return g
}
