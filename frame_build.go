package gekko

import (
	"github.com/gekko3d/gekko-pbr/render/core"
)

// buildFrameSystem turns the current world into a core.Frame: one camera, one
// directional light, summed ambient light and a draw item per mesh entity.
func buildFrameSystem(cmd *Commands, rs *RenderState, server *AssetServer) {
	var camera *CameraComponent
	MakeQuery1[CameraComponent](cmd).Map(func(_ EntityId, c *CameraComponent) bool {
		camera = c
		return false
	})
	if camera == nil {
		rs.ready = false
		return
	}

	var sun core.DirectionalLight
	var ambient core.AmbientLight
	haveSun := false
	MakeQuery1[LightComponent](cmd).Map(func(eid EntityId, l *LightComponent) bool {
		switch l.Type {
		case LightTypeAmbient:
			ambient.Color = ambient.Color.Add(l.Color.Mul(l.Intensity))
			ambient.Intensity = 1
		case LightTypeDirectional:
			if haveSun {
				return true
			}
			haveSun = true
			sun.Color = l.Color
			sun.Intensity = l.Intensity
			if tr, ok := GetComponent[TransformComponent](cmd, eid); ok {
				sun.Position = tr.Position
			}
			if l.HasTarget {
				if target, ok := GetComponent[TransformComponent](cmd, l.Target); ok {
					sun.Target = target.Position
				}
			}
		}
		return true
	})

	frame := &rs.Frame
	frame.Number = cmd.app.frames
	frame.Width, frame.Height = rs.Renderer.Size()
	frame.PixelRatio = rs.Renderer.PixelRatio()
	frame.ClearColor = rs.ClearColor
	frame.CameraPos = camera.Position
	frame.Uniform = core.NewFrameUniform(camera.ProjectionMatrix(), camera.ViewMatrix(), camera.Position, sun, ambient)
	frame.Items = frame.Items[:0]
	frame.Overlay = nil

	MakeQuery3[MeshComponent, MaterialComponent, TransformComponent](cmd).Map(
		func(eid EntityId, mesh *MeshComponent, mat *MaterialComponent, tr *TransformComponent) bool {
			geometry := server.geometryData(mesh.Geometry)
			if geometry == nil {
				return true
			}
			item := core.DrawItem{
				Entity:   uint64(eid),
				Geometry: geometry,
				Position: tr.Position,
			}
			item.Uniform.SetModel(tr.Matrix())

			if std, ok := server.StandardMaterial(mat.Material); ok {
				fillStandardItem(&item, std, server)
			} else if matcap, ok := server.MatcapMaterial(mat.Material); ok {
				fillMatcapItem(&item, matcap, server)
			} else {
				return true
			}
			frame.Items = append(frame.Items, item)
			return true
		})

	core.SortForDraw(frame.Items, frame.CameraPos)

	if panel, ok := Resource[Panel](cmd.app); ok {
		frame.Overlay = panel.Overlay(frame.Width)
	}
	rs.ready = true
}

func fillStandardItem(item *core.DrawItem, m *StandardMaterial, server *AssetServer) {
	item.Kind = core.MaterialStandard
	item.Transparent = m.Transparent

	item.Textures[core.SlotMap] = server.ResolveTexture(m.Maps.Map)
	item.Textures[core.SlotAlphaMap] = server.ResolveTexture(m.Maps.AlphaMap)
	item.Textures[core.SlotAoMap] = server.ResolveTexture(m.Maps.AoMap)
	item.Textures[core.SlotBumpMap] = server.ResolveTexture(m.Maps.BumpMap)
	item.Textures[core.SlotMetalnessMap] = server.ResolveTexture(m.Maps.MetalnessMap)
	item.Textures[core.SlotNormalMap] = server.ResolveTexture(m.Maps.NormalMap)
	item.Textures[core.SlotRoughnessMap] = server.ResolveTexture(m.Maps.RoughnessMap)
	item.EnvMap = server.ResolveTexture(m.Maps.EnvMap)

	opacity := m.Opacity
	if !m.Transparent {
		opacity = 1
	}
	u := &item.Uniform
	u.Color = [4]float32{m.Color.X(), m.Color.Y(), m.Color.Z(), opacity}
	u.Params0 = [4]float32{m.Metalness, m.Roughness, m.AoMapIntensity, m.BumpScale}
	u.Params1 = [4]float32{m.EnvMapIntensity, m.NormalScale.X(), m.NormalScale.Y(), 0}
	u.Flags = [4]uint32{core.TextureMask(item.Textures, item.EnvMap), uint32(core.MaterialStandard), boolToUint(m.Transparent), 0}
}

func fillMatcapItem(item *core.DrawItem, m *MatcapMaterial, server *AssetServer) {
	item.Kind = core.MaterialMatcap
	item.Matcap = server.ResolveTexture(m.Matcap)

	var mask uint32
	if item.Matcap != nil {
		mask = 1
	}
	item.Uniform.Color = [4]float32{m.Color.X(), m.Color.Y(), m.Color.Z(), 1}
	item.Uniform.Flags = [4]uint32{mask, uint32(core.MaterialMatcap), 0, 0}
}

func boolToUint(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
