package event

import "github.com/go-gl/mathgl/mgl32"

// AppEvent is a request from the application (or the world) to the runtime.
// Events are processed in order once per frame after OnUpdate.
type AppEvent interface {
	isAppEvent()
}

// CursorIcon selects the system cursor shape.
type CursorIcon int

const (
	CursorDefault CursorIcon = iota
	CursorCrosshair
	CursorHand
	CursorText
	CursorResizeHorizontal
	CursorResizeVertical
)

type ChangeCursorAppearance struct {
	Icon CursorIcon
}

type ChangeCursorPosition struct {
	Position mgl32.Vec2
}

type ChangeCursorVisible struct {
	Visible bool
}

// ChangeCursorGrabbed confines the cursor to the window and switches to raw motion.
type ChangeCursorGrabbed struct {
	Grabbed bool
}

// RequestAppClosure asks the runtime to exit after the current frame.
type RequestAppClosure struct{}

// ForceAppClosure terminates the process immediately with ExitCode.
type ForceAppClosure struct {
	ExitCode int
}

type RequestRedraw struct{}

// SendMessage delivers a message addressed to the application.
type SendMessage struct {
	Message Message
}

func (ChangeCursorAppearance) isAppEvent() {}
func (ChangeCursorPosition) isAppEvent()   {}
func (ChangeCursorVisible) isAppEvent()    {}
func (ChangeCursorGrabbed) isAppEvent()    {}
func (RequestAppClosure) isAppEvent()      {}
func (ForceAppClosure) isAppEvent()        {}
func (RequestRedraw) isAppEvent()          {}
func (SendMessage) isAppEvent()            {}
