package window

import (
	"fmt"
	"runtime"

	"github.com/SakulFlee/Orbital-sub000/engine/event"
	"github.com/SakulFlee/Orbital-sub000/engine/input"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
)

// glfwWindow holds the GLFW-specific window state.
type glfwWindow struct {
	parent  *engineWindow
	window  *glfw.Window
	cursors map[event.CursorIcon]*glfw.Cursor
	closed  bool
}

var cursorShapes = map[event.CursorIcon]glfw.StandardCursor{
	event.CursorDefault:          glfw.ArrowCursor,
	event.CursorCrosshair:        glfw.CrosshairCursor,
	event.CursorHand:             glfw.HandCursor,
	event.CursorText:             glfw.IBeamCursor,
	event.CursorResizeHorizontal: glfw.HResizeCursor,
	event.CursorResizeVertical:   glfw.VResizeCursor,
}

// newPlatformWindow creates the GLFW window with input callbacks and stores it as the internal window.
// Every callback translates into an Event on the parent queue.
//
// GLFW reference: https://www.glfw.org/docs/latest/window_guide.html
// go-gl/glfw: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw
func newPlatformWindow(w *engineWindow) error {
	runtime.LockOSThread()

	if err := glfw.Init(); err != nil {
		return fmt.Errorf("failed to initialize GLFW: %v", err)
	}

	// WebGPU provides its own graphics API, so disable OpenGL context creation.
	// Reference: https://www.glfw.org/docs/latest/window_guide.html#window_hints_ctx
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)

	var monitor *glfw.Monitor
	if w.fullscreen {
		monitor = glfw.GetPrimaryMonitor()
		if mode := monitor.GetVideoMode(); mode != nil {
			w.width, w.height = mode.Width, mode.Height
		}
	}

	win, err := glfw.CreateWindow(w.width, w.height, w.title, monitor, nil)
	if err != nil {
		glfw.Terminate()
		return fmt.Errorf("failed to create GLFW window: %v", err)
	}
	if w.minWidth > 0 || w.minHeight > 0 {
		win.SetSizeLimits(w.minWidth, w.minHeight, glfw.DontCare, glfw.DontCare)
	}

	gw := &glfwWindow{
		parent:  w,
		window:  win,
		cursors: make(map[event.CursorIcon]*glfw.Cursor),
	}
	w.internalWindow = gw

	// Repeats are not state changes, the button is already held.
	// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Window.SetKeyCallback
	win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if key == glfw.KeyUnknown || action == glfw.Repeat {
			return
		}
		w.push(ButtonInput{Button: input.Button(key), Pressed: action == glfw.Press})
	})

	// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Window.SetMouseButtonCallback
	win.SetMouseButtonCallback(func(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
		w.push(ButtonInput{Button: input.MouseButton(int(button)), Pressed: action == glfw.Press})
	})

	// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Window.SetScrollCallback
	win.SetScrollCallback(func(_ *glfw.Window, _, yoff float64) {
		w.push(Scrolled{Delta: float32(yoff)})
	})

	// With the cursor disabled GLFW reports virtual, unbounded positions, so deltas stay valid while grabbed.
	// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Window.SetCursorPosCallback
	win.SetCursorPosCallback(func(_ *glfw.Window, xpos, ypos float64) {
		w.push(CursorMoved{Position: mgl32.Vec2{float32(xpos), float32(ypos)}})
	})

	// Use framebuffer size callback for pixel-accurate resize events.
	// On high-DPI displays (e.g., macOS Retina), framebuffer size differs from window size.
	// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Window.SetFramebufferSizeCallback
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.width = width
		w.height = height
		w.push(Resized{Width: width, Height: height})
	})

	// A minimized window has a zero-sized framebuffer and cannot present.
	win.SetIconifyCallback(func(_ *glfw.Window, iconified bool) {
		if iconified {
			w.push(Suspended{})
			return
		}
		w.push(Resumed{})
	})

	win.SetFocusCallback(func(_ *glfw.Window, focused bool) {
		w.push(FocusChanged{Focused: focused})
	})

	win.SetCloseCallback(func(_ *glfw.Window) {
		w.push(CloseRequested{})
	})

	// Update stored dimensions to reflect actual framebuffer size (may differ from requested on high-DPI).
	fbWidth, fbHeight := win.GetFramebufferSize()
	w.width = fbWidth
	w.height = fbHeight

	return nil
}

// platformGetSurfaceDescriptor creates a platform-appropriate wgpu.SurfaceDescriptor from the GLFW window.
// Uses the wgpuglfw bridge package which has per-platform implementations (Windows, X11, Wayland, macOS).
//
// Reference: https://pkg.go.dev/github.com/cogentcore/webgpu/wgpuglfw#GetSurfaceDescriptor
func platformGetSurfaceDescriptor(w *engineWindow) *wgpu.SurfaceDescriptor {
	gw, ok := w.internalWindow.(*glfwWindow)
	if !ok || gw.closed {
		return nil
	}
	return wgpuglfw.GetSurfaceDescriptor(gw.window)
}

// platformPollGamepads reads every connected joystick that has a gamepad mapping.
// Multiple gamepads share the same button and axis ids; a press on any of them counts.
//
// Reference: https://www.glfw.org/docs/latest/input_guide.html#gamepad
func platformPollGamepads(w *engineWindow, in *input.InputState) {
	var buttons [15]bool
	var axes [6]float32
	for joy := glfw.Joystick1; joy <= glfw.JoystickLast; joy++ {
		if !joy.Present() || !joy.IsGamepad() {
			continue
		}
		state := joy.GetGamepadState()
		if state == nil {
			continue
		}
		for i, action := range state.Buttons {
			buttons[i] = buttons[i] || action == glfw.Press
		}
		for i, v := range state.Axes {
			v = applyDeadzone(v, w.gamepadDeadzone)
			if v != 0 {
				axes[i] = v
			}
		}
	}
	for i, pressed := range buttons {
		in.SetButton(input.GamepadButton(i), pressed)
	}
	for i, v := range axes {
		in.SetAxis(input.Axis(i), v)
	}
}

func platformSetCursorVisible(w *engineWindow, visible bool) {
	gw, ok := w.internalWindow.(*glfwWindow)
	if !ok || gw.closed {
		return
	}
	mode := glfw.CursorHidden
	if visible {
		mode = glfw.CursorNormal
	}
	gw.window.SetInputMode(glfw.CursorMode, mode)
}

// platformSetCursorGrabbed disables the cursor, which hides it and locks it to the window.
// Reference: https://www.glfw.org/docs/latest/input_guide.html#raw_mouse_motion
func platformSetCursorGrabbed(w *engineWindow, grabbed bool) {
	gw, ok := w.internalWindow.(*glfwWindow)
	if !ok || gw.closed {
		return
	}
	if grabbed {
		gw.window.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)
	} else {
		gw.window.SetInputMode(glfw.CursorMode, glfw.CursorNormal)
	}
	if glfw.RawMouseMotionSupported() {
		gw.window.SetInputMode(glfw.RawMouseMotion, boolToGLFW(grabbed))
	}
}

func platformSetCursorPosition(w *engineWindow, position mgl32.Vec2) {
	gw, ok := w.internalWindow.(*glfwWindow)
	if !ok || gw.closed {
		return
	}
	gw.window.SetCursorPos(float64(position.X()), float64(position.Y()))
}

func platformSetCursorIcon(w *engineWindow, icon event.CursorIcon) {
	gw, ok := w.internalWindow.(*glfwWindow)
	if !ok || gw.closed {
		return
	}
	shape, ok := cursorShapes[icon]
	if !ok {
		shape = glfw.ArrowCursor
	}
	cursor, ok := gw.cursors[icon]
	if !ok {
		cursor = glfw.CreateStandardCursor(shape)
		gw.cursors[icon] = cursor
	}
	gw.window.SetCursor(cursor)
}

// platformCloseWindow destroys the GLFW window and terminates the GLFW library.
// Returns an error if the internal window has not been initialized.
//
// Parameters:
//   - w: the engineWindow to close
//
// Returns:
//   - error: error if the window is not initialized
func platformCloseWindow(w *engineWindow) error {
	gw, ok := w.internalWindow.(*glfwWindow)
	if !ok || gw.closed {
		return fmt.Errorf("window is not initialized")
	}
	gw.closed = true
	for _, c := range gw.cursors {
		c.Destroy()
	}
	gw.window.SetShouldClose(true)
	gw.window.Destroy()
	glfw.Terminate()
	return nil
}

// platformProcessMessages polls GLFW for pending events without blocking.
// The callbacks registered in newPlatformWindow run inside this call.
//
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#PollEvents
func platformProcessMessages(w *engineWindow) {
	gw, ok := w.internalWindow.(*glfwWindow)
	if !ok || gw.closed {
		return
	}
	glfw.PollEvents()
}

func boolToGLFW(v bool) int {
	if v {
		return glfw.True
	}
	return glfw.False
}
