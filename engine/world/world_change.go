package world

import (
	"github.com/SakulFlee/Orbital-sub000/common"
	"github.com/SakulFlee/Orbital-sub000/engine/camera"
	"github.com/SakulFlee/Orbital-sub000/engine/environment"
	"github.com/SakulFlee/Orbital-sub000/engine/event"
	"github.com/SakulFlee/Orbital-sub000/engine/light"
	"github.com/SakulFlee/Orbital-sub000/engine/model"
)

// WorldChange is a request to mutate the world. Changes are queued and applied in
// FIFO order during Update, so the order in which they are queued matters.
type WorldChange interface {
	isWorldChange()
}

// SpawnElement registers an element. Its registration labels and initial changes
// are taken from OnRegistration.
type SpawnElement struct {
	Element Element
}

// DespawnElement removes the element reachable under Label, with all of its labels.
type DespawnElement struct {
	Label string
}

// ElementAddLabels makes the element reachable under Label also reachable under Labels.
type ElementAddLabels struct {
	Label  string
	Labels []string
}

// ElementRemoveLabels detaches Labels from the element reachable under Label.
type ElementRemoveLabels struct {
	Label  string
	Labels []string
}

// SpawnModel stores a model. A model whose instance hash matches an existing one is
// folded into it as additional instances.
type SpawnModel struct {
	Descriptor *model.Descriptor
}

// DespawnModel removes a model, or only the instances spawned under Label if it
// names a folded instance.
type DespawnModel struct {
	Label string
}

// SetTransformModel replaces every transform of a model.
type SetTransformModel struct {
	Label      string
	Transforms []model.Transform
}

// SetTransformSpecificModelInstance replaces the transform at Index.
type SetTransformSpecificModelInstance struct {
	Label     string
	Index     int
	Transform model.Transform
}

// ApplyTransformModel applies Mode to every transform of a model.
type ApplyTransformModel struct {
	Label string
	Mode  common.Mode[model.Transform]
}

// ApplyTransformSpecificModelInstance applies Mode to the transform at Index.
type ApplyTransformSpecificModelInstance struct {
	Label string
	Index int
	Mode  common.Mode[model.Transform]
}

type AddTransformsToModel struct {
	Label      string
	Transforms []model.Transform
}

// RemoveTransformsFromModel removes the transforms at Indices, keeping the order of the rest.
type RemoveTransformsFromModel struct {
	Label   string
	Indices []int
}

// SendMessage routes a message to the element registered under Message.To, or to the
// application when addressed to event.TargetApp.
type SendMessage struct {
	Message event.Message
}

// SpawnCamera stores a camera. The first camera of an empty store becomes active.
type SpawnCamera struct {
	Descriptor camera.Descriptor
}

type SpawnCameraAndMakeActive struct {
	Descriptor camera.Descriptor
}

type DespawnCamera struct {
	Label string
}

type ChangeActiveCamera struct {
	Label string
}

// UpdateCamera applies a camera transform to the camera named by Transform.Label.
type UpdateCamera struct {
	Transform camera.Transform
}

// AppChange is returned from Update unchanged for the runtime to process.
type AppChange struct {
	Event event.AppEvent
}

type SpawnLight struct {
	Descriptor light.Descriptor
}

type DespawnLight struct {
	Label string
}

// ChangeWorldEnvironment replaces the current environment.
type ChangeWorldEnvironment struct {
	Descriptor environment.Descriptor
}

// CleanWorld despawns every element, drops the initial changes of elements that have
// not been applied yet and clears the model, camera and light stores. The world
// environment and pending importers are kept. Changes queued after CleanWorld apply
// to the emptied world, which makes it usable as a scene switch.
type CleanWorld struct{}

// elementChanges holds the initial changes of a spawned element until they are applied.
type elementChanges struct {
	changes []WorldChange
}

// LoadFile imports a scene file through the configured file loader. Labels optionally
// restricts the import to the named entries.
type LoadFile struct {
	Path   string
	Labels []string
}

// EnqueueImporter starts an importer and polls it on every Update until it is done.
type EnqueueImporter struct {
	Importer Importer
}

func (SpawnElement) isWorldChange()                        {}
func (DespawnElement) isWorldChange()                      {}
func (ElementAddLabels) isWorldChange()                    {}
func (ElementRemoveLabels) isWorldChange()                 {}
func (SpawnModel) isWorldChange()                          {}
func (DespawnModel) isWorldChange()                        {}
func (SetTransformModel) isWorldChange()                   {}
func (SetTransformSpecificModelInstance) isWorldChange()   {}
func (ApplyTransformModel) isWorldChange()                 {}
func (ApplyTransformSpecificModelInstance) isWorldChange() {}
func (AddTransformsToModel) isWorldChange()                {}
func (RemoveTransformsFromModel) isWorldChange()           {}
func (SendMessage) isWorldChange()                         {}
func (SpawnCamera) isWorldChange()                         {}
func (SpawnCameraAndMakeActive) isWorldChange()            {}
func (DespawnCamera) isWorldChange()                       {}
func (ChangeActiveCamera) isWorldChange()                  {}
func (UpdateCamera) isWorldChange()                        {}
func (AppChange) isWorldChange()                           {}
func (SpawnLight) isWorldChange()                          {}
func (DespawnLight) isWorldChange()                        {}
func (ChangeWorldEnvironment) isWorldChange()              {}
func (CleanWorld) isWorldChange()                          {}
func (elementChanges) isWorldChange()                      {}
func (LoadFile) isWorldChange()                            {}
func (EnqueueImporter) isWorldChange()                     {}
