package app

import (
	"errors"
	"fmt"
	"image"

	"github.com/gekko3d/gekko-pbr/render/core"
	"github.com/gekko3d/gekko-pbr/render/gpu"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

const depthFormat = wgpu.TextureFormatDepth24Plus

var ErrNotInitialized = errors.New("renderer not initialized")

// Renderer draws core.Frame values into a GLFW window surface with WebGPU.
// Size is in window units; the surface is Size * PixelRatio pixels.
type Renderer struct {
	Window   *glfw.Window
	Instance *wgpu.Instance
	Adapter  *wgpu.Adapter
	Device   *wgpu.Device
	Queue    *wgpu.Queue
	Surface  *wgpu.Surface
	Config   *wgpu.SurfaceConfiguration

	OpaquePipeline      *wgpu.RenderPipeline
	TransparentPipeline *wgpu.RenderPipeline
	MatcapPipeline      *wgpu.RenderPipeline
	OverlayPipeline     *wgpu.RenderPipeline

	DepthTexture *wgpu.Texture
	DepthView    *wgpu.TextureView

	Resources *gpu.Manager

	VSync bool

	overlayTexture *wgpu.Texture
	overlayView    *wgpu.TextureView
	overlayVersion uint64
	overlaySize    image.Point
	overlayRect    *wgpu.Buffer
	overlayGroup   *wgpu.BindGroup

	width, height int
	ratio         float32
	dirty         bool
}

func NewRenderer(window *glfw.Window) *Renderer {
	return &Renderer{Window: window, ratio: 1, VSync: true}
}

func (r *Renderer) Init() error {
	r.Instance = wgpu.CreateInstance(nil)
	r.Surface = r.Instance.CreateSurface(wgpuglfw.GetSurfaceDescriptor(r.Window))

	adapter, err := r.Instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: r.Surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return fmt.Errorf("request adapter: %w", err)
	}
	r.Adapter = adapter

	r.Device, err = adapter.RequestDevice(nil)
	if err != nil {
		return fmt.Errorf("request device: %w", err)
	}
	r.Queue = r.Device.GetQueue()

	caps := r.Surface.GetCapabilities(adapter)
	if len(caps.Formats) == 0 {
		return errors.New("surface reports no formats")
	}
	presentMode := wgpu.PresentModeFifo
	if !r.VSync {
		presentMode = wgpu.PresentModeImmediate
	}
	if r.width == 0 || r.height == 0 {
		r.width, r.height = r.Window.GetSize()
	}
	w, h := r.DrawingBufferSize()
	r.Config = &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      preferredFormat(caps.Formats),
		Width:       uint32(w),
		Height:      uint32(h),
		PresentMode: presentMode,
		AlphaMode:   caps.AlphaModes[0],
	}
	r.Surface.Configure(r.Adapter, r.Device, r.Config)

	r.Resources, err = gpu.NewManager(r.Device)
	if err != nil {
		return err
	}
	if err := r.createPipelines(); err != nil {
		return err
	}
	if err := r.createDepth(w, h); err != nil {
		return err
	}
	r.overlayRect, err = r.Device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Overlay Rect",
		Size:  16,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return err
	}
	return nil
}

// preferredFormat picks an sRGB surface so shaders can write linear color.
func preferredFormat(formats []wgpu.TextureFormat) wgpu.TextureFormat {
	for _, f := range formats {
		if f == wgpu.TextureFormatBGRA8UnormSrgb || f == wgpu.TextureFormatRGBA8UnormSrgb {
			return f
		}
	}
	return formats[0]
}

func (r *Renderer) SetSize(width, height int) {
	if width == r.width && height == r.height {
		return
	}
	r.width, r.height = width, height
	r.dirty = true
}

func (r *Renderer) SetPixelRatio(ratio float32) {
	if ratio <= 0 || ratio == r.ratio {
		return
	}
	r.ratio = ratio
	r.dirty = true
}

func (r *Renderer) Size() (int, int) {
	return r.width, r.height
}

func (r *Renderer) PixelRatio() float32 {
	return r.ratio
}

func (r *Renderer) DrawingBufferSize() (int, int) {
	return int(float32(r.width) * r.ratio), int(float32(r.height) * r.ratio)
}

// reconfigure applies a pending size or ratio change to the surface and depth buffer.
func (r *Renderer) reconfigure() error {
	r.dirty = false
	w, h := r.DrawingBufferSize()
	if w <= 0 || h <= 0 {
		return nil
	}
	r.Config.Width = uint32(w)
	r.Config.Height = uint32(h)
	r.Surface.Configure(r.Adapter, r.Device, r.Config)
	return r.createDepth(w, h)
}

func (r *Renderer) createDepth(w, h int) error {
	if r.DepthView != nil {
		r.DepthView.Release()
		r.DepthTexture.Release()
	}
	var err error
	r.DepthTexture, err = r.Device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "Depth Texture",
		Size:          wgpu.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        depthFormat,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return fmt.Errorf("depth texture: %w", err)
	}
	r.DepthView, err = r.DepthTexture.CreateView(nil)
	return err
}

// Render draws opaque items, then transparent items back to front, then the overlay.
func (r *Renderer) Render(frame *core.Frame) error {
	if r.Device == nil {
		return ErrNotInitialized
	}
	if r.dirty {
		if err := r.reconfigure(); err != nil {
			return err
		}
	}
	if r.Config.Width == 0 || r.Config.Height == 0 {
		return nil
	}

	if err := r.Resources.WriteFrame(frame.Uniform); err != nil {
		return err
	}
	if err := r.prepareOverlay(frame); err != nil {
		return err
	}

	nextTexture, err := r.Surface.GetCurrentTexture()
	if err != nil {
		return fmt.Errorf("get current texture: %w", err)
	}
	defer nextTexture.Release()

	view, err := nextTexture.CreateView(nil)
	if err != nil {
		return fmt.Errorf("create view: %w", err)
	}
	defer view.Release()

	encoder, err := r.Device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	defer encoder.Release()

	c := frame.ClearColor
	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: wgpu.Color{R: c[0], G: c[1], B: c[2], A: c[3]},
		}},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            r.DepthView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1.0,
		},
	})

	split := core.SplitTransparent(frame.Items)
	drawErr := r.drawItems(pass, frame.Items[:split], false)
	if drawErr == nil {
		drawErr = r.drawItems(pass, frame.Items[split:], true)
	}
	if drawErr == nil && frame.Overlay != nil && frame.Overlay.Visible && r.overlayGroup != nil {
		pass.SetPipeline(r.OverlayPipeline)
		pass.SetBindGroup(0, r.overlayGroup, nil)
		pass.Draw(6, 1, 0, 0)
	}

	if err := pass.End(); err != nil {
		return fmt.Errorf("render pass end: %w", err)
	}
	pass.Release()
	if drawErr != nil {
		return drawErr
	}

	cmd, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("encoder finish: %w", err)
	}
	defer cmd.Release()
	r.Queue.Submit(cmd)
	r.Surface.Present()

	r.Resources.Sweep()
	return nil
}

func (r *Renderer) pipelineFor(item *core.DrawItem, transparent bool) *wgpu.RenderPipeline {
	if item.Kind == core.MaterialMatcap {
		return r.MatcapPipeline
	}
	if transparent {
		return r.TransparentPipeline
	}
	return r.OpaquePipeline
}

func (r *Renderer) drawItems(pass *wgpu.RenderPassEncoder, items []core.DrawItem, transparent bool) error {
	var bound *wgpu.RenderPipeline
	for i := range items {
		item := &items[i]
		pipeline := r.pipelineFor(item, transparent)

		geometry, err := r.Resources.Geometry(item.Geometry)
		if err != nil {
			return err
		}
		objectGroup, err := r.Resources.ObjectBindGroup(item, pipeline)
		if err != nil {
			return err
		}
		if pipeline != bound {
			frameGroup, err := r.Resources.FrameBindGroup(pipeline)
			if err != nil {
				return err
			}
			pass.SetPipeline(pipeline)
			pass.SetBindGroup(0, frameGroup, nil)
			bound = pipeline
		}
		pass.SetBindGroup(1, objectGroup, nil)
		pass.SetVertexBuffer(0, geometry.Vertex, 0, wgpu.WholeSize)
		pass.SetIndexBuffer(geometry.Index, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
		pass.DrawIndexed(geometry.IndexCount, 1, 0, 0, 0)
	}
	return nil
}

// prepareOverlay uploads the panel image when its version changes and positions the quad.
func (r *Renderer) prepareOverlay(frame *core.Frame) error {
	ov := frame.Overlay
	if ov == nil || ov.Image == nil || r.width == 0 || r.height == 0 {
		return nil
	}
	size := ov.Image.Bounds().Size()
	if r.overlayView == nil || ov.Version != r.overlayVersion || size != r.overlaySize {
		if err := r.uploadOverlay(ov.Image); err != nil {
			return err
		}
		r.overlayVersion = ov.Version
	}

	fw, fh := float32(r.width), float32(r.height)
	x0 := float32(ov.X)/fw*2 - 1
	x1 := float32(ov.X+size.X)/fw*2 - 1
	y0 := 1 - float32(ov.Y)/fh*2
	y1 := 1 - float32(ov.Y+size.Y)/fh*2
	return r.Queue.WriteBuffer(r.overlayRect, 0, wgpu.ToBytes([]float32{x0, y0, x1, y1}))
}

func (r *Renderer) uploadOverlay(img *image.RGBA) error {
	size := img.Bounds().Size()
	if size != r.overlaySize || r.overlayTexture == nil {
		if r.overlayTexture != nil {
			r.overlayGroup.Release()
			r.overlayView.Release()
			r.overlayTexture.Release()
		}
		var err error
		r.overlayTexture, err = r.Device.CreateTexture(&wgpu.TextureDescriptor{
			Label:         "Overlay",
			Size:          wgpu.Extent3D{Width: uint32(size.X), Height: uint32(size.Y), DepthOrArrayLayers: 1},
			MipLevelCount: 1,
			SampleCount:   1,
			Dimension:     wgpu.TextureDimension2D,
			Format:        wgpu.TextureFormatRGBA8UnormSrgb,
			Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		})
		if err != nil {
			return err
		}
		r.overlayView, err = r.overlayTexture.CreateView(nil)
		if err != nil {
			return err
		}
		r.overlayGroup, err = r.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
			Label:  "Overlay BG",
			Layout: r.OverlayPipeline.GetBindGroupLayout(0),
			Entries: []wgpu.BindGroupEntry{
				{Binding: 0, TextureView: r.overlayView},
				{Binding: 1, Sampler: r.Resources.Sampler},
				{Binding: 2, Buffer: r.overlayRect, Size: 16},
			},
		})
		if err != nil {
			return err
		}
		r.overlaySize = size
	}
	return r.Queue.WriteTexture(
		r.overlayTexture.AsImageCopy(),
		img.Pix,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(img.Stride),
			RowsPerImage: uint32(size.Y),
		},
		&wgpu.Extent3D{Width: uint32(size.X), Height: uint32(size.Y), DepthOrArrayLayers: 1},
	)
}

func (r *Renderer) Release() {
	if r.Device == nil {
		return
	}
	if r.overlayTexture != nil {
		r.overlayGroup.Release()
		r.overlayView.Release()
		r.overlayTexture.Release()
	}
	if r.overlayRect != nil {
		r.overlayRect.Release()
	}
	if r.Resources != nil {
		r.Resources.Release()
	}
	if r.DepthView != nil {
		r.DepthView.Release()
		r.DepthTexture.Release()
	}
	for _, p := range []*wgpu.RenderPipeline{r.OpaquePipeline, r.TransparentPipeline, r.MatcapPipeline, r.OverlayPipeline} {
		if p != nil {
			p.Release()
		}
	}
	r.Surface.Release()
	r.Queue.Release()
	r.Device.Release()
	r.Adapter.Release()
	r.Instance.Release()
	r.Device = nil
}
