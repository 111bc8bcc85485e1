package gekko

import (
	app_rt "github.com/gekko3d/gekko-pbr/render/app"
)

// PbrRendererModule draws the scene into the platform window with WebGPU.
// It needs a WindowState, so install PlatformWindowModule first.
type PbrRendererModule struct {
	VSync      bool
	ClearColor [4]float64
}

func (mod PbrRendererModule) Install(app *App, cmd *Commands) {
	ws, ok := Resource[WindowState](app)
	if !ok {
		panic("PbrRendererModule requires PlatformWindowModule")
	}

	RtApp := app_rt.NewRenderer(ws.Handle())
	RtApp.VSync = mod.VSync
	width, height := ws.WindowWidth, ws.WindowHeight
	if vp, ok := Resource[Viewport](app); ok {
		width, height = vp.Width, vp.Height
		RtApp.SetPixelRatio(ClampPixelRatio(vp.DevicePixelRatio))
	}
	RtApp.SetSize(width, height)
	if err := RtApp.Init(); err != nil {
		panic(err)
	}

	app.UseRenderer("webgpu", RtApp, mod.ClearColor)
}
