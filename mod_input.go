package gekko

import (
	"github.com/go-gl/glfw/v3.3/glfw"
)

const (
	KeyH int = iota
	KeyR
	KeyEscape
	KeyRight
	KeyLeft
	KeyDown
	KeyUp
	KeyShift
	KeyControl
	MouseButtonLeft
	MouseButtonRight
	MouseButtonMiddle
	inputSlots
)

type InputModule struct{}

// Input is the per-frame snapshot of keyboard, mouse and scroll state.
// Coordinates are in window units with the origin at the top left.
type Input struct {
	Pressed      [inputSlots]bool
	JustPressed  [inputSlots]bool
	JustReleased [inputSlots]bool

	MouseX, MouseY           float64
	MouseDeltaX, MouseDeltaY float64
	ScrollY                  float64

	WindowWidth, WindowHeight int

	scrollAccum float64
	hasCursor   bool
}

// Press records a button or key transition. Used by the window poller and by tests.
func (input *Input) Press(key int, down bool) {
	input.JustPressed[key] = down && !input.Pressed[key]
	input.JustReleased[key] = !down && input.Pressed[key]
	input.Pressed[key] = down
}

// MoveCursor sets the cursor position and derives the delta from the previous one.
func (input *Input) MoveCursor(x, y float64) {
	if input.hasCursor {
		input.MouseDeltaX = x - input.MouseX
		input.MouseDeltaY = y - input.MouseY
	} else {
		input.MouseDeltaX, input.MouseDeltaY = 0, 0
	}
	input.MouseX, input.MouseY = x, y
	input.hasCursor = true
}

// AddScroll queues wheel movement for the next frame.
func (input *Input) AddScroll(dy float64) {
	input.scrollAccum += dy
}

func (input *Input) beginFrame() {
	input.ScrollY = input.scrollAccum
	input.scrollAccum = 0
}

func (mod InputModule) Install(app *App, cmd *Commands) {
	input := &Input{}
	cmd.AddResources(input)

	if ws, ok := Resource[WindowState](app); ok {
		ws.windowGlfw.SetScrollCallback(func(w *glfw.Window, xoff, yoff float64) {
			input.AddScroll(yoff)
		})
	}

	app.UseSystem(
		System(inputSystem).
			InStage(Prelude),
	)
}

func inputSystem(cmd *Commands, input *Input) {
	input.beginFrame()

	s, ok := Resource[WindowState](cmd.app)
	if !ok {
		return
	}

	for key, glfwKey := range keyToGlfw {
		input.Press(key, s.windowGlfw.GetKey(glfwKey) == glfw.Press)
	}
	for btn, glfwBtn := range mouseToGlfw {
		input.Press(btn, s.windowGlfw.GetMouseButton(glfwBtn) == glfw.Press)
	}

	input.MoveCursor(s.windowGlfw.GetCursorPos())
	input.WindowWidth, input.WindowHeight = s.windowGlfw.GetSize()
}

var keyToGlfw = map[int]glfw.Key{
	KeyH:       glfw.KeyH,
	KeyR:       glfw.KeyR,
	KeyEscape:  glfw.KeyEscape,
	KeyRight:   glfw.KeyRight,
	KeyLeft:    glfw.KeyLeft,
	KeyDown:    glfw.KeyDown,
	KeyUp:      glfw.KeyUp,
	KeyShift:   glfw.KeyLeftShift,
	KeyControl: glfw.KeyLeftControl,
}

var mouseToGlfw = map[int]glfw.MouseButton{
	MouseButtonLeft:   glfw.MouseButtonLeft,
	MouseButtonRight:  glfw.MouseButtonRight,
	MouseButtonMiddle: glfw.MouseButtonMiddle,
}
