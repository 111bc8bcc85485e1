package gpu

import (
	"fmt"

	"github.com/gekko3d/gekko-pbr/render/core"

	"github.com/cogentcore/webgpu/wgpu"
)

// FrameUniformSize and ObjectUniformSize mirror the WGSL structs.
const (
	FrameUniformSize  = 128
	ObjectUniformSize = 192
)

// Manager owns every GPU resource derived from frame data: vertex and index buffers,
// textures, per-object uniform buffers and the bind groups tying them together.
// Resources are cached by asset id and re-uploaded when the version changes.
type Manager struct {
	Device  *wgpu.Device
	Queue   *wgpu.Queue
	Sampler *wgpu.Sampler

	FrameBuf *wgpu.Buffer

	geometries  map[string]*GeometryBuffers
	textures    map[string]*Texture
	objects     map[uint64]*objectBinding
	frameGroups map[*wgpu.RenderPipeline]*wgpu.BindGroup

	dummy2D   *Texture
	dummyCube *Texture

	seen map[uint64]bool
}

type GeometryBuffers struct {
	version    uint32
	Vertex     *wgpu.Buffer
	Index      *wgpu.Buffer
	IndexCount uint32
}

func (g *GeometryBuffers) release() {
	g.Vertex.Release()
	g.Index.Release()
}

type Texture struct {
	version uint32
	srgb    bool
	texture *wgpu.Texture
	View    *wgpu.TextureView
}

func (t *Texture) release() {
	t.View.Release()
	t.texture.Release()
}

// objectBinding is the uniform buffer and bind group of one entity. The key records
// what the group was built from so it is only rebuilt when a texture changes.
type objectBinding struct {
	buffer *wgpu.Buffer
	group  *wgpu.BindGroup
	key    bindingKey
}

type bindingKey struct {
	pipeline *wgpu.RenderPipeline
	views    [core.StandardSlots + 1]*wgpu.TextureView
}

func NewManager(device *wgpu.Device) (*Manager, error) {
	m := &Manager{
		Device:      device,
		Queue:       device.GetQueue(),
		geometries:  make(map[string]*GeometryBuffers),
		textures:    make(map[string]*Texture),
		objects:     make(map[uint64]*objectBinding),
		frameGroups: make(map[*wgpu.RenderPipeline]*wgpu.BindGroup),
		seen:        make(map[uint64]bool),
	}

	var err error
	m.Sampler, err = device.CreateSampler(&wgpu.SamplerDescriptor{
		AddressModeU:  wgpu.AddressModeRepeat,
		AddressModeV:  wgpu.AddressModeRepeat,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeLinear,
		LodMinClamp:   0,
		LodMaxClamp:   32,
		Compare:       wgpu.CompareFunctionUndefined,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("sampler: %w", err)
	}

	m.FrameBuf, err = device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Frame Uniform",
		Size:  FrameUniformSize,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("frame uniform: %w", err)
	}

	white := []byte{255, 255, 255, 255}
	m.dummy2D, err = m.createTexture(&core.TextureData{ID: "dummy-2d", Width: 1, Height: 1, Pixels: white})
	if err != nil {
		return nil, err
	}
	cube := make([]byte, 0, 6*4)
	for i := 0; i < 6; i++ {
		cube = append(cube, white...)
	}
	m.dummyCube, err = m.createTexture(&core.TextureData{ID: "dummy-cube", Width: 1, Height: 1, Pixels: cube, Cube: true})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Manager) WriteFrame(u core.FrameUniform) error {
	return m.Queue.WriteBuffer(m.FrameBuf, 0, wgpu.ToBytes([]core.FrameUniform{u}))
}

// FrameBindGroup returns group 0 (frame uniform + sampler) for a pipeline. Auto
// layouts are unique per pipeline, so each pipeline gets its own group.
func (m *Manager) FrameBindGroup(pipeline *wgpu.RenderPipeline) (*wgpu.BindGroup, error) {
	if bg, ok := m.frameGroups[pipeline]; ok {
		return bg, nil
	}
	bg, err := m.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Frame BG",
		Layout: pipeline.GetBindGroupLayout(0),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: m.FrameBuf, Size: FrameUniformSize},
			{Binding: 1, Sampler: m.Sampler},
		},
	})
	if err != nil {
		return nil, err
	}
	m.frameGroups[pipeline] = bg
	return bg, nil
}

// Geometry uploads g on first use and again whenever its version moves.
func (m *Manager) Geometry(g *core.GeometryData) (*GeometryBuffers, error) {
	if cached, ok := m.geometries[g.ID]; ok && cached.version == g.Version {
		return cached, nil
	}
	if len(g.Vertices) == 0 || len(g.Indices) == 0 {
		return nil, fmt.Errorf("geometry %s is empty", g.ID)
	}

	vertex, err := m.Device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "Vertex Buffer " + g.ID,
		Contents: wgpu.ToBytes(g.Vertices),
		Usage:    wgpu.BufferUsageVertex,
	})
	if err != nil {
		return nil, err
	}
	index, err := m.Device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "Index Buffer " + g.ID,
		Contents: wgpu.ToBytes(g.Indices),
		Usage:    wgpu.BufferUsageIndex,
	})
	if err != nil {
		vertex.Release()
		return nil, err
	}

	if old, ok := m.geometries[g.ID]; ok {
		old.release()
	}
	buffers := &GeometryBuffers{
		version:    g.Version,
		Vertex:     vertex,
		Index:      index,
		IndexCount: uint32(len(g.Indices)),
	}
	m.geometries[g.ID] = buffers
	return buffers, nil
}

// TextureView returns the view of t, uploading it if needed. A nil t resolves to a
// white 1x1 placeholder of the right dimension so bind groups stay complete.
func (m *Manager) TextureView(t *core.TextureData, cube bool) (*wgpu.TextureView, error) {
	if t == nil || t.Cube != cube {
		if cube {
			return m.dummyCube.View, nil
		}
		return m.dummy2D.View, nil
	}
	if cached, ok := m.textures[t.ID]; ok && cached.version == t.Version {
		return cached.View, nil
	}
	tex, err := m.createTexture(t)
	if err != nil {
		return nil, err
	}
	if old, ok := m.textures[t.ID]; ok {
		old.release()
	}
	m.textures[t.ID] = tex
	return tex.View, nil
}

func textureFormat(srgb bool) wgpu.TextureFormat {
	if srgb {
		return wgpu.TextureFormatRGBA8UnormSrgb
	}
	return wgpu.TextureFormatRGBA8Unorm
}

func (m *Manager) createTexture(t *core.TextureData) (*Texture, error) {
	layers := uint32(t.Layers())
	if len(t.Pixels) != t.Width*t.Height*4*int(layers) {
		return nil, fmt.Errorf("texture %s: %d bytes for %dx%dx%d", t.ID, len(t.Pixels), t.Width, t.Height, layers)
	}
	format := textureFormat(t.SRGB)
	extent := wgpu.Extent3D{
		Width:              uint32(t.Width),
		Height:             uint32(t.Height),
		DepthOrArrayLayers: layers,
	}
	texture, err := m.Device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "Texture " + t.ID,
		Size:          extent,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        format,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, err
	}

	err = m.Queue.WriteTexture(
		texture.AsImageCopy(),
		t.Pixels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(t.Width) * 4,
			RowsPerImage: uint32(t.Height),
		},
		&extent,
	)
	if err != nil {
		texture.Release()
		return nil, err
	}

	var view *wgpu.TextureView
	if t.Cube {
		view, err = texture.CreateView(&wgpu.TextureViewDescriptor{
			Label:           "Cube View " + t.ID,
			Format:          format,
			Dimension:       wgpu.TextureViewDimensionCube,
			BaseMipLevel:    0,
			MipLevelCount:   1,
			BaseArrayLayer:  0,
			ArrayLayerCount: 6,
		})
	} else {
		view, err = texture.CreateView(nil)
	}
	if err != nil {
		texture.Release()
		return nil, err
	}
	return &Texture{version: t.Version, srgb: t.SRGB, texture: texture, View: view}, nil
}

// ObjectBindGroup writes the item's uniform and returns its group 1 for pipeline.
func (m *Manager) ObjectBindGroup(item *core.DrawItem, pipeline *wgpu.RenderPipeline) (*wgpu.BindGroup, error) {
	m.seen[item.Entity] = true

	binding, ok := m.objects[item.Entity]
	if !ok {
		buf, err := m.Device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: fmt.Sprintf("Object Uniform %d", item.Entity),
			Size:  ObjectUniformSize,
			Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return nil, err
		}
		binding = &objectBinding{buffer: buf}
		m.objects[item.Entity] = binding
	}
	if err := m.Queue.WriteBuffer(binding.buffer, 0, wgpu.ToBytes([]core.ObjectUniform{item.Uniform})); err != nil {
		return nil, err
	}

	key := bindingKey{pipeline: pipeline}
	var entries []wgpu.BindGroupEntry
	entries = append(entries, wgpu.BindGroupEntry{Binding: 0, Buffer: binding.buffer, Size: ObjectUniformSize})

	switch item.Kind {
	case core.MaterialMatcap:
		view, err := m.TextureView(item.Matcap, false)
		if err != nil {
			return nil, err
		}
		key.views[0] = view
		entries = append(entries, wgpu.BindGroupEntry{Binding: 1, TextureView: view})
	default:
		for slot, tex := range item.Textures {
			view, err := m.TextureView(tex, false)
			if err != nil {
				return nil, err
			}
			key.views[slot] = view
			entries = append(entries, wgpu.BindGroupEntry{Binding: uint32(slot + 1), TextureView: view})
		}
		env, err := m.TextureView(item.EnvMap, true)
		if err != nil {
			return nil, err
		}
		key.views[core.StandardSlots] = env
		entries = append(entries, wgpu.BindGroupEntry{Binding: core.StandardSlots + 1, TextureView: env})
	}

	if binding.group != nil && binding.key == key {
		return binding.group, nil
	}
	group, err := m.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   fmt.Sprintf("Object BG %d", item.Entity),
		Layout:  pipeline.GetBindGroupLayout(1),
		Entries: entries,
	})
	if err != nil {
		return nil, err
	}
	if binding.group != nil {
		binding.group.Release()
	}
	binding.group = group
	binding.key = key
	return group, nil
}

// Sweep releases the bindings of entities that were not drawn since the last sweep.
func (m *Manager) Sweep() {
	for eid, binding := range m.objects {
		if m.seen[eid] {
			continue
		}
		if binding.group != nil {
			binding.group.Release()
		}
		binding.buffer.Release()
		delete(m.objects, eid)
	}
	clear(m.seen)
}

func (m *Manager) Release() {
	for _, binding := range m.objects {
		if binding.group != nil {
			binding.group.Release()
		}
		binding.buffer.Release()
	}
	for _, g := range m.geometries {
		g.release()
	}
	for _, t := range m.textures {
		t.release()
	}
	for _, bg := range m.frameGroups {
		bg.Release()
	}
	m.dummy2D.release()
	m.dummyCube.release()
	m.FrameBuf.Release()
	m.Sampler.Release()
	m.objects = nil
	m.geometries = nil
	m.textures = nil
	m.frameGroups = nil
}
