package engine

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/SakulFlee/Orbital-sub000/common"
	"github.com/SakulFlee/Orbital-sub000/engine/event"
	"github.com/SakulFlee/Orbital-sub000/engine/input"
	"github.com/SakulFlee/Orbital-sub000/engine/logger"
	"github.com/SakulFlee/Orbital-sub000/engine/profiler"
	"github.com/SakulFlee/Orbital-sub000/engine/window"
	"github.com/charmbracelet/log"
	"github.com/cogentcore/webgpu/wgpu"
)

// MaxAcquireFailures is the number of consecutive failed surface acquisitions after
// which the runtime requests its own closure.
const MaxAcquireFailures = 3

// idleSleep throttles the loop while no frame is produced, e.g. while Paused.
const idleSleep = 5 * time.Millisecond

// State is the lifecycle state of the runtime.
type State int

const (
	// StateStarting has no GPU context and waits for a resume signal.
	StateStarting State = iota
	// StateReady owns a GPU context and renders on redraw requests.
	StateReady
	// StatePaused keeps the GPU context but produces no frames.
	StatePaused
)

func (s State) String() string {
	switch s {
	case StateStarting:
		return "Starting"
	case StateReady:
		return "Ready"
	case StatePaused:
		return "Paused"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// App is implemented by the application driven by the runtime.
// All callbacks run on the goroutine that called Run.
type App interface {
	// OnStartup is called once, on the first transition to Ready, before OnResume.
	OnStartup(ctx *Context) error

	// OnResume is called on every transition to Ready. ctx differs from the previous
	// one after a device loss.
	OnResume(ctx *Context) error

	// OnSuspend is called when leaving Ready.
	OnSuspend()

	// OnResize is called after the surface has been reconfigured for a new size.
	OnResize(width, height int)

	// OnUpdate advances the application by dt seconds.
	//
	// Parameters:
	//   - in: the input snapshot of this frame
	//   - dt: seconds since the previous frame, clamped to [0, 1]
	//   - cycle: non-nil once per second
	//
	// Returns:
	//   - []event.AppEvent: requests processed in order before rendering
	OnUpdate(in *input.InputState, dt float64, cycle *profiler.Cycle) []event.AppEvent

	// OnMessage receives the messages of SendMessage events.
	OnMessage(msg event.Message)

	// OnRender records and submits the frame into view.
	OnRender(view *wgpu.TextureView, device *wgpu.Device, queue *wgpu.Queue) error

	// OnShutdown is called once when Run returns, after OnSuspend.
	OnShutdown()
}

// Engine drives an App through the Starting, Ready and Paused states.
type Engine interface {
	// Run processes events until the window closes or closure is requested.
	//
	// Returns:
	//   - error: if the GPU context could not be created or the app failed to start
	Run() error

	// State returns the current lifecycle state.
	State() State

	// Quit requests closure after the current frame. Safe to call from any goroutine.
	Quit()
}

type engine struct {
	mu    *sync.Mutex
	state State

	app        App
	source     window.EventSource
	newSurface SurfaceFactory
	surface    Surface

	input    *input.InputState
	timer    *profiler.Timer
	profiler *profiler.Profiler

	vsync                bool
	gamepadPolling       bool
	forceFallbackAdapter bool
	profilingEnabled     bool

	started         bool
	pendingResume   bool
	acquireFailures int
	quit            atomic.Bool
	exit            func(code int)

	width  int
	height int

	log *log.Logger
}

var _ Engine = &engine{}

// NewEngine creates a runtime for app.
//
// Parameters:
//   - app: the application to drive
//   - options: functional options; WithEventSource is required before Run
//
// Returns:
//   - Engine: the runtime in StateStarting
func NewEngine(app App, options ...EngineBuilderOption) Engine {
	e := &engine{
		mu:         &sync.Mutex{},
		state:      StateStarting,
		app:        app,
		newSurface: NewWGPUSurface,
		input:      input.NewInputState(),
		timer:      profiler.NewTimer(),
		vsync:      true,
		exit:       os.Exit,
		log:        logger.With("component", "engine"),
	}

	for _, opt := range options {
		opt(e)
	}
	e.profiler = profiler.NewProfiler(e.profilingEnabled)

	return e
}

func (e *engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *engine) setState(s State) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != s {
		e.log.Debug("state change", "from", e.state, "to", s)
	}
	e.state = s
}

func (e *engine) Quit() {
	e.quit.Store(true)
}

func (e *engine) Run() error {
	if e.source == nil {
		return fmt.Errorf("engine has no event source")
	}
	defer e.shutdown()

	for !e.quit.Load() {
		if e.pendingResume && e.State() == StateStarting {
			e.pendingResume = false
			if err := e.handle(window.Resumed{}); err != nil {
				return err
			}
		}

		rendered := false
		for _, ev := range e.source.PollEvents() {
			if _, ok := ev.(window.RedrawRequested); ok {
				if rendered {
					continue
				}
				rendered = e.State() == StateReady
			}
			if err := e.handle(ev); err != nil {
				return err
			}
		}
		if !rendered {
			time.Sleep(idleSleep)
		}
	}
	return nil
}

// handle applies one event source signal to the state machine.
func (e *engine) handle(ev window.Event) error {
	switch ev := ev.(type) {
	case window.Resumed:
		return e.resume()
	case window.Suspended:
		e.suspend()
	case window.Resized:
		e.resize(ev.Width, ev.Height)
	case window.RedrawRequested:
		if e.State() == StateReady {
			e.frame()
		}
	case window.CloseRequested:
		e.log.Info("window close requested")
		e.quit.Store(true)
	default:
		window.Apply(e.input, ev)
	}
	return nil
}

func (e *engine) resume() error {
	if e.State() == StateReady {
		return nil
	}

	if e.surface == nil {
		surface, err := e.newSurface(e.source, e.forceFallbackAdapter)
		if err != nil {
			return fmt.Errorf("failed to create GPU context: %w", err)
		}
		e.surface = surface
		if e.width == 0 || e.height == 0 {
			e.width, e.height = e.source.Size()
		}
		e.input.SetSurfaceSize(e.width, e.height)
		e.surface.Configure(e.width, e.height, e.vsync)
	}

	ctx := e.surface.Context()
	if !e.started {
		if err := e.app.OnStartup(ctx); err != nil {
			return fmt.Errorf("app startup failed: %w", err)
		}
		e.started = true
	}
	if err := e.app.OnResume(ctx); err != nil {
		return fmt.Errorf("app resume failed: %w", err)
	}

	e.acquireFailures = 0
	e.timer.Reset()
	e.setState(StateReady)
	return nil
}

func (e *engine) suspend() {
	if e.State() != StateReady {
		return
	}
	e.app.OnSuspend()
	e.input.ReleaseAll()
	e.setState(StatePaused)
}

func (e *engine) resize(width, height int) {
	e.input.SetSurfaceSize(width, height)
	if width <= 0 || height <= 0 {
		return
	}
	e.width, e.height = width, height
	if e.surface == nil {
		return
	}
	e.surface.Configure(width, height, e.vsync)
	if e.started {
		e.app.OnResize(width, height)
	}
}

// frame runs one update and render cycle.
func (e *engine) frame() {
	dt, cycle := e.timer.Tick()
	e.profiler.LogCycle(cycle)

	if e.gamepadPolling {
		e.source.PollGamepads(e.input)
	}

	if exited := e.processEvents(e.app.OnUpdate(e.input, dt, cycle)); exited {
		return
	}
	defer e.input.ResetDeltas()

	frame, err := e.surface.Acquire()
	if err != nil {
		if errors.Is(err, common.ErrDeviceLost) {
			e.loseDevice(err)
			return
		}
		e.acquireFailures++
		e.log.Warn("skipping frame, surface acquire failed", "attempt", e.acquireFailures, "err", err)
		if e.acquireFailures >= MaxAcquireFailures {
			e.log.Error("surface acquire keeps failing, requesting closure", "attempts", e.acquireFailures)
			e.quit.Store(true)
		}
		return
	}
	e.acquireFailures = 0

	ctx := e.surface.Context()
	renderErr := e.app.OnRender(frame.View, ctx.Device, ctx.Queue)
	e.surface.Present(frame)
	if renderErr != nil {
		if errors.Is(renderErr, common.ErrDeviceLost) {
			e.loseDevice(renderErr)
			return
		}
		e.log.Error("render failed", "err", renderErr)
	}
}

// processEvents applies app requests in order.
//
// Returns:
//   - bool: true if a forced exit ran
func (e *engine) processEvents(events []event.AppEvent) bool {
	for _, ev := range events {
		switch ev := ev.(type) {
		case event.ChangeCursorAppearance:
			e.source.SetCursorIcon(ev.Icon)
		case event.ChangeCursorPosition:
			e.source.SetCursorPosition(ev.Position)
		case event.ChangeCursorVisible:
			e.source.SetCursorVisible(ev.Visible)
		case event.ChangeCursorGrabbed:
			e.source.SetCursorGrabbed(ev.Grabbed)
		case event.RequestRedraw:
			e.source.RequestRedraw()
		case event.RequestAppClosure:
			e.log.Info("app closure requested")
			e.quit.Store(true)
		case event.ForceAppClosure:
			e.log.Warn("forcing app closure", "code", ev.ExitCode)
			e.quit.Store(true)
			e.shutdown()
			e.exit(ev.ExitCode)
			return true
		case event.SendMessage:
			e.app.OnMessage(ev.Message)
		default:
			e.log.Warn("ignoring unknown app event", "type", fmt.Sprintf("%T", ev))
		}
	}
	return false
}

// loseDevice drops the GPU context and returns to Starting; the next loop
// iteration resumes with a fresh context.
func (e *engine) loseDevice(err error) {
	e.log.Error("GPU device lost, rebuilding context", "err", err)
	if e.State() == StateReady {
		e.app.OnSuspend()
	}
	if e.surface != nil {
		e.surface.Release()
		e.surface = nil
	}
	e.setState(StateStarting)
	e.pendingResume = true
}

// shutdown releases the app, surface and event source. Safe to call twice.
func (e *engine) shutdown() {
	if e.source == nil {
		return
	}
	if e.State() == StateReady {
		e.app.OnSuspend()
	}
	if e.started {
		e.app.OnShutdown()
		e.started = false
	}
	if e.surface != nil {
		e.surface.Release()
		e.surface = nil
	}
	if err := e.source.Close(); err != nil {
		e.log.Warn("failed to close event source", "err", err)
	}
	e.source = nil
	e.setState(StateStarting)
}
