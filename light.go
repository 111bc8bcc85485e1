package gekko

import (
	"github.com/go-gl/mathgl/mgl32"
)

type LightType uint32

const (
	LightTypeDirectional LightType = 1
	LightTypeAmbient     LightType = 3
)

// LightComponent is the ECS component for lights. A directional light shines from
// its TransformComponent position towards Target's position (the origin when unset).
type LightComponent struct {
	Type      LightType
	Color     mgl32.Vec3
	Intensity float32
	Target    EntityId
	HasTarget bool
}

// ColorHex converts 0xRRGGBB into [0,1] RGB components.
func ColorHex(hex uint32) mgl32.Vec3 {
	return mgl32.Vec3{
		float32((hex>>16)&0xff) / 255,
		float32((hex>>8)&0xff) / 255,
		float32(hex&0xff) / 255,
	}
}

func DirectionalLight(color uint32, intensity float32) LightComponent {
	return LightComponent{Type: LightTypeDirectional, Color: ColorHex(color), Intensity: intensity}
}

func AmbientLight(color uint32, intensity float32) LightComponent {
	return LightComponent{Type: LightTypeAmbient, Color: ColorHex(color), Intensity: intensity}
}

// WithTarget aims a directional light at another entity.
func (l LightComponent) WithTarget(eid EntityId) LightComponent {
	l.Target = eid
	l.HasTarget = true
	return l
}
