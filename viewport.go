package gekko

// Viewport is the drawable area in window units plus the display's pixel density.
type Viewport struct {
	Width            int
	Height           int
	DevicePixelRatio float32
}

func (vp Viewport) Aspect() float32 {
	if vp.Height == 0 {
		return 1
	}
	return float32(vp.Width) / float32(vp.Height)
}

const maxPixelRatio = 2

// ClampPixelRatio caps dense displays at 2x; unknown ratios count as 1.
func ClampPixelRatio(dpr float32) float32 {
	if dpr <= 0 {
		return 1
	}
	return min(dpr, maxPixelRatio)
}

type ViewportModule struct {
	Width            int
	Height           int
	DevicePixelRatio float32
}

func (mod ViewportModule) Install(app *App, cmd *Commands) {
	vp := &Viewport{Width: mod.Width, Height: mod.Height, DevicePixelRatio: mod.DevicePixelRatio}
	if ws, ok := Resource[WindowState](app); ok {
		vp.Width, vp.Height = ws.WindowWidth, ws.WindowHeight
		vp.DevicePixelRatio = ws.ContentScale
	}
	if vp.DevicePixelRatio <= 0 {
		vp.DevicePixelRatio = 1
	}
	app.addResources(vp)
}

// HandleResize applies a new window size synchronously: every camera gets the new
// aspect ratio and the renderer is resized before the next frame is built.
// Non-positive sizes (minimized windows) are ignored.
func (app *App) HandleResize(width, height int, dpr float32) {
	if width <= 0 || height <= 0 {
		app.Logger().Debugf("Ignoring resize to %dx%d", width, height)
		return
	}

	vp, ok := Resource[Viewport](app)
	if !ok {
		vp = &Viewport{}
		app.addResources(vp)
	}
	vp.Width, vp.Height, vp.DevicePixelRatio = width, height, dpr

	aspect := vp.Aspect()
	MakeQuery1[CameraComponent](app.Commands()).Map(func(_ EntityId, c *CameraComponent) bool {
		c.Aspect = aspect
		c.UpdateProjectionMatrix()
		return true
	})

	if rs, ok := Resource[RenderState](app); ok {
		rs.Renderer.SetSize(width, height)
		rs.Renderer.SetPixelRatio(ClampPixelRatio(dpr))
	}
	app.Logger().Debugf("Resized to %dx%d @%.2fx", width, height, dpr)
}
