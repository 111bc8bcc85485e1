package gekko

import (
	"fmt"

	"github.com/gekko3d/gekko-pbr/render/core"
)

// Renderer draws frames into a drawing surface whose size tracks the viewport.
// Size is in window units; the backing surface is Size * PixelRatio pixels.
type Renderer interface {
	SetSize(width, height int)
	SetPixelRatio(ratio float32)
	Size() (int, int)
	PixelRatio() float32
	Render(frame *core.Frame) error
	Release()
}

// RendererTag marks that a renderer has been installed into the App.
// Only one renderer should be installed at a time.
type RendererTag struct {
	Name string
}

// RenderState is the resource the frame builder fills and the renderer consumes.
type RenderState struct {
	Renderer   Renderer
	Frame      core.Frame
	ClearColor [4]float64
	ready      bool
	failures   int
}

// ensureSingleRenderer enforces a single renderer invariant.
// If a different renderer is already installed, it panics with a clear message.
func ensureSingleRenderer(app *App, name string) {
	if app == nil {
		panic("ensureSingleRenderer: app is nil")
	}
	if tag, ok := Resource[RendererTag](app); ok {
		app.Logger().Errorf("Multiple renderers installed: %s and %s", tag.Name, name)
		panic(fmt.Sprintf("Multiple renderers installed: %s and %s", tag.Name, name))
	}
	app.addResources(&RendererTag{Name: name})
}

// UseRenderer installs r as the one renderer of the app, sized to the current Viewport,
// and schedules frame building (PreRender) and submission (Render).
func (app *App) UseRenderer(name string, r Renderer, clearColor [4]float64) *App {
	ensureSingleRenderer(app, name)

	if vp, ok := Resource[Viewport](app); ok {
		r.SetSize(vp.Width, vp.Height)
		r.SetPixelRatio(ClampPixelRatio(vp.DevicePixelRatio))
	}
	app.addResources(&RenderState{Renderer: r, ClearColor: clearColor})
	app.OnShutdown(r.Release)

	app.UseSystem(
		System(buildFrameSystem).
			InStage(PreRender),
	)
	app.UseSystem(
		System(renderSystem).
			InStage(Render),
	)
	app.Logger().Infof("Renderer selected: %s", name)
	return app
}

func renderSystem(cmd *Commands, rs *RenderState) {
	if !rs.ready {
		return
	}
	if err := rs.Renderer.Render(&rs.Frame); err != nil {
		rs.failures++
		// first failure and then every 300th, a lost surface repeats every frame
		if rs.failures%300 == 1 {
			cmd.app.Logger().Errorf("Render frame %d: %v", rs.Frame.Number, err)
		}
	}
}
