package gekko

import (
	"slices"

	"github.com/gekko3d/gekko-pbr/render/core"
)

// HeadlessRenderer keeps the last submitted frame in memory instead of drawing it.
// Used for tests and for running the scene without a GPU.
type HeadlessRenderer struct {
	width, height int
	ratio         float32

	Rendered  int
	LastFrame core.Frame
}

func NewHeadlessRenderer() *HeadlessRenderer {
	return &HeadlessRenderer{ratio: 1}
}

func (r *HeadlessRenderer) SetSize(width, height int) {
	r.width, r.height = width, height
}

func (r *HeadlessRenderer) SetPixelRatio(ratio float32) {
	r.ratio = ratio
}

func (r *HeadlessRenderer) Size() (int, int) {
	return r.width, r.height
}

func (r *HeadlessRenderer) PixelRatio() float32 {
	return r.ratio
}

// DrawingBufferSize is the pixel size a GPU surface would have.
func (r *HeadlessRenderer) DrawingBufferSize() (int, int) {
	return int(float32(r.width) * r.ratio), int(float32(r.height) * r.ratio)
}

func (r *HeadlessRenderer) Render(frame *core.Frame) error {
	r.Rendered++
	r.LastFrame = *frame
	r.LastFrame.Items = slices.Clone(frame.Items)
	return nil
}

func (r *HeadlessRenderer) Release() {}

type HeadlessRendererModule struct {
	Renderer   *HeadlessRenderer
	ClearColor [4]float64
}

func (mod HeadlessRendererModule) Install(app *App, cmd *Commands) {
	r := mod.Renderer
	if r == nil {
		r = NewHeadlessRenderer()
	}
	app.UseRenderer("headless", r, mod.ClearColor)
}
