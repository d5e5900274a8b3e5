package world

import (
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/SakulFlee/Orbital-sub000/engine/camera"
	"github.com/SakulFlee/Orbital-sub000/engine/environment"
	"github.com/SakulFlee/Orbital-sub000/engine/event"
	"github.com/SakulFlee/Orbital-sub000/engine/input"
	"github.com/SakulFlee/Orbital-sub000/engine/light"
	"github.com/SakulFlee/Orbital-sub000/engine/logger"
	"github.com/SakulFlee/Orbital-sub000/engine/model"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// DefaultQuitGrace is the delay between the soft and the forced quit of an empty world.
const DefaultQuitGrace = 5 * time.Second

// World owns the model, camera and light stores, the world environment, the
// registered elements and the running importers. All mutation goes through queued
// WorldChanges that are applied in FIFO order by Update; every applied change is
// recorded in a change list the renderer takes once per frame.
//
// Accessors are safe to call from other goroutines while Update runs. Returned
// model descriptors are never mutated after being returned; the world replaces
// them instead.
type World interface {
	// Queue appends changes to the FIFO queue. They are applied on the next Update.
	//
	// Parameters:
	//   - changes: the changes in the order they should be applied
	Queue(changes ...WorldChange)

	// Update runs one world step: elements update, importers are polled, the queue is
	// drained and the empty-world check runs.
	//
	// Parameters:
	//   - deltaTime: seconds since the previous frame
	//   - in: the input snapshot of this frame
	//
	// Returns:
	//   - []event.AppEvent: requests for the runtime, in the order they were produced
	Update(deltaTime float64, in *input.InputState) []event.AppEvent

	// TakeChangeList returns the changes applied since the last call and starts a new list.
	TakeChangeList() ChangeList

	// Model returns the descriptor stored under label.
	//
	// Parameters:
	//   - label: the label of a stored model; instance labels resolve to their base model
	//
	// Returns:
	//   - *model.Descriptor: the current descriptor, or nil
	//   - bool: false if no model is reachable under label
	Model(label string) (*model.Descriptor, bool)

	// Models returns every stored model, ordered by label.
	Models() []*model.Descriptor

	// Camera returns the camera stored under label.
	Camera(label string) (camera.Descriptor, bool)

	// ActiveCamera returns the active camera. The second result is false when no
	// camera exists; callers fall back to camera.DefaultDescriptor().
	ActiveCamera() (camera.Descriptor, bool)

	// Lights returns every light in spawn order.
	Lights() []light.Descriptor

	// Environment returns the current world environment, false if none was set.
	Environment() (environment.Descriptor, bool)

	// AddElement queues a SpawnElement change for el.
	AddElement(el Element)

	// ElementCount returns the number of registered elements.
	ElementCount() int

	// AddImporter queues an EnqueueImporter change for imp.
	AddImporter(imp Importer)

	// Close drops queued changes and running importers. Update does nothing afterwards.
	Close()
}

type modelEntry struct {
	mu   *sync.RWMutex
	desc *model.Descriptor
}

func (e *modelEntry) get() *model.Descriptor {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.desc
}

// mutate runs fn on a copy of the descriptor and swaps the copy in when fn reports a change.
func (e *modelEntry) mutate(fn func(d *model.Descriptor) bool) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	next := e.desc.Clone()
	if !fn(next) {
		return false
	}
	e.desc = next
	return true
}

type cameraEntry struct {
	mu   *sync.RWMutex
	desc camera.Descriptor
}

func (e *cameraEntry) get() camera.Descriptor {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.desc
}

type lightEntry struct {
	mu   *sync.RWMutex
	desc light.Descriptor
}

func (e *lightEntry) get() light.Descriptor {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.desc
}

// instanceRef is a model spawned into another model's transform table by automatic instancing.
type instanceRef struct {
	base string
	ids  []uuid.UUID
}

// world is the implementation of the World interface.
type world struct {
	// mu guards the store maps and orders below, not the entries themselves.
	mu *sync.RWMutex

	models      map[string]*modelEntry
	hashIndex   map[uint64]string
	instances   map[string]*instanceRef
	cameras     map[string]*cameraEntry
	cameraOrder []string
	active      string
	lights      map[string]*lightEntry
	lightOrder  []string
	environment *environment.Descriptor

	queueMu *sync.Mutex
	queue   []WorldChange

	changesMu *sync.Mutex
	changes   ChangeList

	// Only touched from Update.
	elements   *elementStore
	importers  []Importer
	fileLoader FileLoader
	closed     bool

	clock       func() time.Time
	quitGrace   time.Duration
	emptySince  time.Time
	softQuitted bool
	forceQuit   bool

	log *log.Logger
}

var _ World = &world{}

// NewWorld creates an empty world.
//
// Parameters:
//   - options: functional options to further configure the world
//
// Returns:
//   - World: the world, ready for Update
func NewWorld(options ...WorldBuilderOption) World {
	w := &world{
		mu:        &sync.RWMutex{},
		models:    make(map[string]*modelEntry),
		hashIndex: make(map[uint64]string),
		instances: make(map[string]*instanceRef),
		cameras:   make(map[string]*cameraEntry),
		lights:    make(map[string]*lightEntry),
		queueMu:   &sync.Mutex{},
		changesMu: &sync.Mutex{},
		elements:  newElementStore(),
		clock:     time.Now,
		quitGrace: DefaultQuitGrace,
		log:       logger.With("component", "world"),
	}

	for _, option := range options {
		option(w)
	}
	return w
}

func (w *world) Queue(changes ...WorldChange) {
	w.queueMu.Lock()
	defer w.queueMu.Unlock()
	w.queue = append(w.queue, changes...)
}

func (w *world) AddElement(el Element) {
	w.Queue(SpawnElement{Element: el})
}

func (w *world) AddImporter(imp Importer) {
	w.Queue(EnqueueImporter{Importer: imp})
}

func (w *world) ElementCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.elements.count()
}

func (w *world) Close() {
	w.queueMu.Lock()
	w.closed = true
	clear(w.queue)
	w.queue = nil
	w.queueMu.Unlock()
	clear(w.importers)
	w.importers = nil
}

func (w *world) isClosed() bool {
	w.queueMu.Lock()
	defer w.queueMu.Unlock()
	return w.closed
}

func (w *world) Update(deltaTime float64, in *input.InputState) []event.AppEvent {
	if w.isClosed() {
		return nil
	}
	w.updateElements(deltaTime, in)
	w.pollImporters()

	var events []event.AppEvent
	for {
		next, ok := w.pop()
		if !ok {
			break
		}
		if ev := w.apply(next); ev != nil {
			events = append(events, ev)
		}
	}

	if ev := w.checkEmpty(); ev != nil {
		events = append(events, ev)
	}
	return events
}

func (w *world) pop() (WorldChange, bool) {
	w.queueMu.Lock()
	defer w.queueMu.Unlock()
	if len(w.queue) == 0 {
		return nil, false
	}
	next := w.queue[0]
	w.queue[0] = nil
	w.queue = w.queue[1:]
	return next, true
}

// updateElements delivers pending messages and runs every element's OnUpdate on the
// calling goroutine, in registration order. Results are queued in the same order.
func (w *world) updateElements(deltaTime float64, in *input.InputState) {
	now := w.clock()
	w.mu.Lock()
	for _, msg := range w.elements.expire(now, MessageMaxAge) {
		w.log.Warnf("Message from %q to %q was not delivered within %s, dropping it", msg.From, msg.To, MessageMaxAge)
	}
	order := slices.Clone(w.elements.order)
	w.mu.Unlock()

	for _, id := range order {
		w.mu.Lock()
		el, ok := w.elements.elements[id]
		messages := w.elements.take(id)
		w.mu.Unlock()
		if !ok {
			continue
		}

		var out []WorldChange
		for _, msg := range messages {
			out = append(out, el.OnMessage(msg)...)
		}
		w.Queue(append(out, el.OnUpdate(deltaTime, in)...)...)
	}
}

// pollImporters queues the results of finished importers and keeps the rest.
func (w *world) pollImporters() {
	running := w.importers[:0]
	for _, imp := range w.importers {
		if !imp.IsDoneProcessing() {
			running = append(running, imp)
			continue
		}
		changes, err := imp.FinishProcessing()
		if err != nil {
			w.log.Errorf("Importer failed: %v", err)
			continue
		}
		w.Queue(changes...)
	}
	clear(w.importers[len(running):])
	w.importers = running
}

// checkEmpty requests closure once the world runs empty and forces it after the grace period.
func (w *world) checkEmpty() event.AppEvent {
	w.mu.RLock()
	empty := len(w.models) == 0 && len(w.cameras) == 0 && len(w.lights) == 0 &&
		w.elements.count() == 0 && len(w.importers) == 0
	w.mu.RUnlock()

	if !empty {
		w.softQuitted = false
		w.forceQuit = false
		return nil
	}

	now := w.clock()
	if !w.softQuitted {
		w.softQuitted = true
		w.emptySince = now
		w.log.Warnf("World is empty, requesting app closure")
		return event.RequestAppClosure{}
	}
	if !w.forceQuit && now.Sub(w.emptySince) >= w.quitGrace {
		w.forceQuit = true
		w.log.Warnf("World is still empty after %s, forcing app closure", w.quitGrace)
		return event.ForceAppClosure{ExitCode: 0}
	}
	return nil
}

func (w *world) record(changes ...Change) {
	w.changesMu.Lock()
	defer w.changesMu.Unlock()
	w.changes.Push(changes...)
}

func (w *world) TakeChangeList() ChangeList {
	w.changesMu.Lock()
	defer w.changesMu.Unlock()
	return w.changes.Take()
}

func (w *world) Model(label string) (*model.Descriptor, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if ref, ok := w.instances[label]; ok {
		label = ref.base
	}
	e, ok := w.models[label]
	if !ok {
		return nil, false
	}
	return e.get(), true
}

func (w *world) Models() []*model.Descriptor {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]*model.Descriptor, 0, len(w.models))
	for _, label := range slices.Sorted(maps.Keys(w.models)) {
		out = append(out, w.models[label].get())
	}
	return out
}

func (w *world) Camera(label string) (camera.Descriptor, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	e, ok := w.cameras[label]
	if !ok {
		return camera.Descriptor{}, false
	}
	return e.get(), true
}

func (w *world) ActiveCamera() (camera.Descriptor, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	e, ok := w.cameras[w.active]
	if !ok {
		return camera.Descriptor{}, false
	}
	return e.get(), true
}

func (w *world) Lights() []light.Descriptor {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]light.Descriptor, 0, len(w.lightOrder))
	for _, label := range w.lightOrder {
		out = append(out, w.lights[label].get())
	}
	return out
}

func (w *world) Environment() (environment.Descriptor, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.environment == nil {
		return environment.Descriptor{}, false
	}
	return *w.environment, true
}
