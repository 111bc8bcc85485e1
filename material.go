package gekko

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

var (
	ErrUnknownTexture           = errors.New("unknown texture")
	ErrAlphaWithoutTransparency = errors.New("alpha map bound on an opaque material")
	ErrWrongTextureKind         = errors.New("texture kind does not match slot")
)

// StandardMaps are the optional texture bindings of a StandardMaterial.
type StandardMaps struct {
	Map          TextureHandle
	AlphaMap     TextureHandle
	AoMap        TextureHandle
	BumpMap      TextureHandle
	MetalnessMap TextureHandle
	NormalMap    TextureHandle
	RoughnessMap TextureHandle
	EnvMap       TextureHandle
}

// StandardMaterial is a metalness/roughness PBR material.
// Transparency is never inferred from AlphaMap; set Transparent explicitly.
type StandardMaterial struct {
	Color           mgl32.Vec3
	Metalness       float32
	Roughness       float32
	Opacity         float32
	Transparent     bool
	AoMapIntensity  float32
	BumpScale       float32
	EnvMapIntensity float32
	NormalScale     mgl32.Vec2
	Maps            StandardMaps
}

func NewStandardMaterial() *StandardMaterial {
	return &StandardMaterial{
		Color:           mgl32.Vec3{1, 1, 1},
		Metalness:       0,
		Roughness:       1,
		Opacity:         1,
		AoMapIntensity:  1,
		BumpScale:       1,
		EnvMapIntensity: 1,
		NormalScale:     mgl32.Vec2{1, 1},
	}
}

func (m *StandardMaterial) slots() []struct {
	name   string
	handle TextureHandle
	cube   bool
} {
	return []struct {
		name   string
		handle TextureHandle
		cube   bool
	}{
		{"map", m.Maps.Map, false},
		{"alphaMap", m.Maps.AlphaMap, false},
		{"aoMap", m.Maps.AoMap, false},
		{"bumpMap", m.Maps.BumpMap, false},
		{"metalnessMap", m.Maps.MetalnessMap, false},
		{"normalMap", m.Maps.NormalMap, false},
		{"roughnessMap", m.Maps.RoughnessMap, false},
		{"envMap", m.Maps.EnvMap, true},
	}
}

// Validate checks that every binding came from the given server and that the
// transparency flag agrees with the alpha map.
func (m *StandardMaterial) Validate(server *AssetServer) error {
	for _, slot := range m.slots() {
		if err := validateBinding(server, slot.name, slot.handle, slot.cube); err != nil {
			return err
		}
	}
	if !m.Maps.AlphaMap.IsZero() && !m.Transparent {
		return ErrAlphaWithoutTransparency
	}
	return nil
}

// MatcapMaterial shades by looking up a sphere-captured lighting image with the view-space normal.
type MatcapMaterial struct {
	Color  mgl32.Vec3
	Matcap TextureHandle
}

func NewMatcapMaterial(matcap TextureHandle) *MatcapMaterial {
	return &MatcapMaterial{Color: mgl32.Vec3{1, 1, 1}, Matcap: matcap}
}

func (m *MatcapMaterial) Validate(server *AssetServer) error {
	return validateBinding(server, "matcap", m.Matcap, false)
}

func validateBinding(server *AssetServer, slot string, h TextureHandle, cube bool) error {
	if h.IsZero() {
		return nil
	}
	tex, ok := server.textures[h.Id]
	if !ok {
		return fmt.Errorf("%s: %w %s", slot, ErrUnknownTexture, h.Id)
	}
	if tex.cube != cube {
		return fmt.Errorf("%s: %w", slot, ErrWrongTextureKind)
	}
	return nil
}

// MaterialComponent binds a registered material to a mesh entity.
type MaterialComponent struct {
	Material AssetId
}

// MeshComponent binds a registered geometry to an entity.
type MeshComponent struct {
	Geometry AssetId
}
