package input

// Button identifies anything that can be pressed: keyboard keys, mouse buttons and
// gamepad buttons share one id space.
//
// Keyboard ids match GLFW key codes which use ASCII values for printable keys.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
type Button int

const (
	KeyW         Button = 87  // W key (ASCII)
	KeyA         Button = 65  // A key (ASCII)
	KeyS         Button = 83  // S key (ASCII)
	KeyD         Button = 68  // D key (ASCII)
	KeyQ         Button = 81  // Q key (ASCII)
	KeyE         Button = 69  // E key (ASCII)
	KeyB         Button = 66  // B key (ASCII)
	KeyC         Button = 67  // C key (ASCII)
	KeyF         Button = 70  // F key (ASCII)
	KeyG         Button = 71  // G key (ASCII)
	KeyL         Button = 76  // L key (ASCII)
	KeyM         Button = 77  // M key (ASCII)
	KeyT         Button = 84  // T key (ASCII)
	KeyV         Button = 86  // V key (ASCII)
	KeyX         Button = 88  // X key (ASCII)
	KeySpace     Button = 32  // Spacebar (ASCII)
	KeyBackspace Button = 259 // Backspace key (GLFW)
	KeyEsc       Button = 256 // Escape key (GLFW)

	Key0 Button = 48
	Key1 Button = 49
	Key2 Button = 50
	Key3 Button = 51
	Key4 Button = 52
	Key5 Button = 53
	Key6 Button = 54
	Key7 Button = 55
	Key8 Button = 56
	Key9 Button = 57

	KeyF1 Button = 290
	KeyF2 Button = 291
	KeyF3 Button = 292

	KeyLeftShift    Button = 340
	KeyLeftControl  Button = 341
	KeyRightShift   Button = 344
	KeyRightControl Button = 345
)

// Mouse buttons start at 1000 so they never collide with key codes.
const (
	MouseButtonLeft   Button = 1000
	MouseButtonRight  Button = 1001
	MouseButtonMiddle Button = 1002
)

// Gamepad buttons start at 2000 and follow the GLFW gamepad button order.
const (
	GamepadButtonA Button = 2000 + iota
	GamepadButtonB
	GamepadButtonX
	GamepadButtonY
	GamepadButtonLeftBumper
	GamepadButtonRightBumper
	GamepadButtonBack
	GamepadButtonStart
	GamepadButtonGuide
	GamepadButtonLeftThumb
	GamepadButtonRightThumb
	GamepadButtonDpadUp
	GamepadButtonDpadRight
	GamepadButtonDpadDown
	GamepadButtonDpadLeft
)

// MouseButton maps a zero-based mouse button index to its Button id.
func MouseButton(index int) Button {
	return MouseButtonLeft + Button(index)
}

// GamepadButton maps a zero-based gamepad button index to its Button id.
func GamepadButton(index int) Button {
	return GamepadButtonA + Button(index)
}

// Axis identifies an analog input in [-1, 1] (triggers in [0, 1]).
type Axis int

// Gamepad axes follow the GLFW gamepad axis order.
const (
	GamepadAxisLeftX Axis = iota
	GamepadAxisLeftY
	GamepadAxisRightX
	GamepadAxisRightY
	GamepadAxisLeftTrigger
	GamepadAxisRightTrigger
)
