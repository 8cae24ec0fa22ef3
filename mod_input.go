package glowmask

import (
	"github.com/go-gl/glfw/v3.3/glfw"
)

const (
	KeyEscape int = iota
	KeySpace
	KeyR
	KeyF3
	MouseButtonLeft
	MouseButtonRight
	MouseButtonMiddle
	inputCount
)

type InputModule struct{}

// Input is the per frame snapshot of keyboard, mouse and window state. Mouse
// coordinates are window coordinates with a top-left origin.
type Input struct {
	Pressed      [inputCount]bool
	JustPressed  [inputCount]bool
	JustReleased [inputCount]bool

	MouseX, MouseY           float64
	MouseDeltaX, MouseDeltaY float64
	CursorInside             bool

	WindowWidth, WindowHeight           int
	FramebufferWidth, FramebufferHeight int
	CloseRequested                      bool

	seenCursor bool
}

func (mod InputModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(&Input{})
	app.UseSystem(
		System(inputSystem).
			InStage(PreUpdate).
			RunAlways(),
	)
}

// setButton applies one polled button or key state and derives the edge
// flags.
func (input *Input) setButton(button int, down bool) {
	input.JustPressed[button] = down && !input.Pressed[button]
	input.JustReleased[button] = !down && input.Pressed[button]
	input.Pressed[button] = down
}

// moveCursor records a cursor sample. The first sample yields no delta.
func (input *Input) moveCursor(x, y float64) {
	if input.seenCursor {
		input.MouseDeltaX = x - input.MouseX
		input.MouseDeltaY = y - input.MouseY
	}
	input.MouseX, input.MouseY = x, y
	input.seenCursor = true
}

// Dragging reports a held button that was already down last frame, so the
// first delta of a press is never treated as a drag.
func (input *Input) Dragging(button int) bool {
	return input.Pressed[button] && !input.JustPressed[button]
}

func inputSystem(s *WindowState, input *Input) {
	glfw.PollEvents()

	for key, glfwKey := range keyToGlfw {
		input.setButton(key, s.windowGlfw.GetKey(glfwKey) == glfw.Press)
	}
	for btn, glfwBtn := range buttonToGlfw {
		input.setButton(btn, s.windowGlfw.GetMouseButton(glfwBtn) == glfw.Press)
	}

	input.moveCursor(s.windowGlfw.GetCursorPos())
	input.CursorInside = s.windowGlfw.GetAttrib(glfw.Hovered) == glfw.True

	input.WindowWidth, input.WindowHeight = s.windowGlfw.GetSize()
	input.FramebufferWidth, input.FramebufferHeight = s.windowGlfw.GetFramebufferSize()
	s.WindowWidth, s.WindowHeight = input.WindowWidth, input.WindowHeight
	input.CloseRequested = s.windowGlfw.ShouldClose()
}

var keyToGlfw = map[int]glfw.Key{
	KeyEscape: glfw.KeyEscape,
	KeySpace:  glfw.KeySpace,
	KeyR:      glfw.KeyR,
	KeyF3:     glfw.KeyF3,
}

var buttonToGlfw = map[int]glfw.MouseButton{
	MouseButtonLeft:   glfw.MouseButtonLeft,
	MouseButtonRight:  glfw.MouseButtonRight,
	MouseButtonMiddle: glfw.MouseButtonMiddle,
}
