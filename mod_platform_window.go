package gekko

import (
	"fmt"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
)

type WindowState struct {
	windowGlfw   *glfw.Window
	WindowWidth  int
	WindowHeight int
	ContentScale float32
	windowTitle  string
}

// Handle exposes the GLFW window for renderers that need to create a surface.
func (s *WindowState) Handle() *glfw.Window {
	return s.windowGlfw
}

func createWindowState(windowWidth int, windowHeight int, windowTitle string) (*WindowState, error) {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("init glfw: %w", err)
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.True)

	win, err := glfw.CreateWindow(windowWidth, windowHeight, windowTitle, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("create window: %w", err)
	}

	scale, _ := win.GetContentScale()
	return &WindowState{
		windowGlfw:   win,
		WindowWidth:  windowWidth,
		WindowHeight: windowHeight,
		ContentScale: scale,
		windowTitle:  windowTitle,
	}, nil
}

// PlatformWindowModule ensures a single shared GLFW window (WindowState) is created
// and made available as a resource for any renderer or input module.
// Install is idempotent: if a WindowState resource already exists, it is reused.
type PlatformWindowModule struct {
	Width  int
	Height int
	Title  string
}

// NewPlatformWindow creates a module that provides a shared WindowState resource.
// If Width/Height are zero, sensible defaults are used.
func NewPlatformWindow(width, height int, title string) *PlatformWindowModule {
	if width <= 0 {
		width = 800
	}
	if height <= 0 {
		height = 600
	}
	if title == "" {
		title = "Gekko"
	}
	return &PlatformWindowModule{
		Width:  width,
		Height: height,
		Title:  title,
	}
}

func (m PlatformWindowModule) Install(app *App, cmd *Commands) {
	if _, ok := Resource[WindowState](app); ok {
		return
	}

	ws, err := createWindowState(m.Width, m.Height, m.Title)
	if err != nil {
		panic(err)
	}
	app.addResources(ws)

	// Resize events are applied synchronously, before the next frame is built.
	ws.windowGlfw.SetSizeCallback(func(w *glfw.Window, width, height int) {
		ws.WindowWidth, ws.WindowHeight = width, height
		app.HandleResize(width, height, ws.ContentScale)
	})
	ws.windowGlfw.SetContentScaleCallback(func(w *glfw.Window, x, y float32) {
		ws.ContentScale = x
		app.HandleResize(ws.WindowWidth, ws.WindowHeight, x)
	})

	app.UseSystem(
		System(windowEventsSystem).
			InStage(Prelude),
	)
	app.OnShutdown(func() {
		ws.windowGlfw.Destroy()
		glfw.Terminate()
	})
}

func windowEventsSystem(cmd *Commands, s *WindowState) {
	glfw.PollEvents()
	if s.windowGlfw.ShouldClose() {
		cmd.Stop()
	}
}
