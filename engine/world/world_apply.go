package world

import (
	"slices"
	"sync"

	"github.com/SakulFlee/Orbital-sub000/engine/camera"
	"github.com/SakulFlee/Orbital-sub000/engine/event"
	"github.com/SakulFlee/Orbital-sub000/engine/light"
	"github.com/SakulFlee/Orbital-sub000/engine/model"
	"github.com/google/uuid"
)

// apply executes one change. Only AppChange and messages to the app produce an event.
func (w *world) apply(change WorldChange) event.AppEvent {
	switch c := change.(type) {
	case SpawnElement:
		w.spawnElement(c.Element)
	case elementChanges:
		w.queueMu.Lock()
		w.queue = append(slices.Clone(c.changes), w.queue...)
		w.queueMu.Unlock()
	case DespawnElement:
		w.withElements(c.Label, func(s *elementStore) bool { return s.remove(c.Label) })
	case ElementAddLabels:
		w.withElements(c.Label, func(s *elementStore) bool { return s.addLabels(c.Label, c.Labels) })
	case ElementRemoveLabels:
		w.withElements(c.Label, func(s *elementStore) bool { return s.removeLabels(c.Label, c.Labels) })
	case SendMessage:
		if c.Message.To == event.TargetApp {
			return event.SendMessage{Message: c.Message}
		}
		w.mu.Lock()
		w.elements.queue(c.Message, w.clock())
		w.mu.Unlock()

	case SpawnModel:
		w.spawnModel(c.Descriptor)
	case DespawnModel:
		w.despawnModel(c.Label)
	case SetTransformModel:
		w.transformModel(c.Label, func(d *model.Descriptor, ids []uuid.UUID) ([]uuid.UUID, bool) {
			if ids == nil {
				d.SetTransforms(c.Transforms...)
				return nil, true
			}
			for _, id := range ids {
				d.RemoveTransformByID(id)
			}
			return d.AddTransforms(c.Transforms...), true
		})
	case SetTransformSpecificModelInstance:
		w.transformModel(c.Label, func(d *model.Descriptor, ids []uuid.UUID) ([]uuid.UUID, bool) {
			return ids, d.SetTransformAt(resolveIndex(d, ids, c.Index), c.Transform)
		})
	case ApplyTransformModel:
		w.transformModel(c.Label, func(d *model.Descriptor, ids []uuid.UUID) ([]uuid.UUID, bool) {
			if ids == nil {
				d.ApplyTransform(c.Mode)
				return nil, d.InstanceCount() > 0
			}
			for _, id := range ids {
				d.ApplyTransformByID(id, c.Mode)
			}
			return ids, len(ids) > 0
		})
	case ApplyTransformSpecificModelInstance:
		w.transformModel(c.Label, func(d *model.Descriptor, ids []uuid.UUID) ([]uuid.UUID, bool) {
			return ids, d.ApplyTransformAt(resolveIndex(d, ids, c.Index), c.Mode)
		})
	case AddTransformsToModel:
		w.transformModel(c.Label, func(d *model.Descriptor, ids []uuid.UUID) ([]uuid.UUID, bool) {
			added := d.AddTransforms(c.Transforms...)
			if ids == nil {
				return nil, len(added) > 0
			}
			return append(slices.Clone(ids), added...), len(added) > 0
		})
	case RemoveTransformsFromModel:
		w.transformModel(c.Label, func(d *model.Descriptor, ids []uuid.UUID) ([]uuid.UUID, bool) {
			if ids == nil {
				return nil, d.RemoveTransformsAt(c.Indices...) > 0
			}
			drop := make([]uuid.UUID, 0, len(c.Indices))
			for _, i := range c.Indices {
				if i >= 0 && i < len(ids) {
					drop = append(drop, ids[i])
				}
			}
			for _, id := range drop {
				d.RemoveTransformByID(id)
			}
			kept := slices.DeleteFunc(slices.Clone(ids), func(id uuid.UUID) bool { return slices.Contains(drop, id) })
			return kept, len(drop) > 0
		})

	case SpawnCamera:
		w.spawnCamera(c.Descriptor, false)
	case SpawnCameraAndMakeActive:
		w.spawnCamera(c.Descriptor, true)
	case DespawnCamera:
		w.despawnCamera(c.Label)
	case ChangeActiveCamera:
		w.changeActiveCamera(c.Label)
	case UpdateCamera:
		w.updateCamera(c.Transform)

	case SpawnLight:
		w.spawnLight(c.Descriptor)
	case DespawnLight:
		w.despawnLight(c.Label)

	case ChangeWorldEnvironment:
		w.mu.Lock()
		action := ActionChanged
		if w.environment == nil {
			action = ActionAdded
		}
		desc := c.Descriptor
		w.environment = &desc
		w.mu.Unlock()
		w.record(Change{Kind: KindWorldEnvironment, Action: action})

	case CleanWorld:
		w.clean()
	case LoadFile:
		if w.fileLoader == nil {
			w.log.Warnf("No file loader configured, cannot load %q", c.Path)
			return nil
		}
		w.startImporter(w.fileLoader(c.Path, c.Labels))
	case EnqueueImporter:
		w.startImporter(c.Importer)

	case AppChange:
		return c.Event
	default:
		w.log.Warnf("Unknown world change %T, skipping", change)
	}
	return nil
}

func (w *world) spawnElement(el Element) {
	if el == nil {
		w.log.Warnf("Cannot spawn a nil element")
		return
	}
	id := uuid.New()
	reg := el.OnRegistration(id)

	w.mu.Lock()
	w.elements.store(id, el, reg.Labels)
	w.mu.Unlock()

	if len(reg.Changes) > 0 {
		w.Queue(elementChanges{changes: reg.Changes})
	}
}

func (w *world) withElements(label string, fn func(s *elementStore) bool) {
	w.mu.Lock()
	ok := fn(w.elements)
	w.mu.Unlock()
	if !ok {
		w.log.Warnf("Element %q not found", label)
	}
}

func (w *world) startImporter(imp Importer) {
	if imp == nil {
		return
	}
	imp.BeginProcessing()
	w.importers = append(w.importers, imp)
}

// spawnModel stores desc or, when a model with the same instance hash exists under
// another label, appends desc's transforms to it and tracks them under desc.Label.
func (w *world) spawnModel(desc *model.Descriptor) {
	if desc == nil || desc.Mesh == nil {
		w.log.Warnf("Cannot spawn a model without a mesh")
		return
	}
	if err := desc.Mesh.Validate(); err != nil {
		w.log.Warnf("Cannot spawn model %q: %v", desc.Label, err)
		return
	}
	if len(desc.Materials) > 1 {
		w.log.Warnf("Model %q has %d materials, only the first one is drawn", desc.Label, len(desc.Materials))
		desc = desc.Clone()
		desc.Materials = desc.Materials[:1]
	}
	hash := desc.InstanceHash()

	w.mu.Lock()
	if base, ok := w.hashIndex[hash]; ok && base != desc.Label {
		label := desc.Label
		if w.labelTaken(label) {
			label = "instance_" + uuid.NewString()
		}
		var ids []uuid.UUID
		w.models[base].mutate(func(d *model.Descriptor) bool {
			for _, t := range desc.Transforms {
				ids = append(ids, d.AddTransforms(t.Transform)...)
			}
			return true
		})
		w.instances[label] = &instanceRef{base: base, ids: ids}
		w.mu.Unlock()
		w.record(Change{Kind: KindModel, Action: ActionChanged, Label: base})
		return
	}

	if _, ok := w.instances[desc.Label]; ok {
		w.mu.Unlock()
		w.log.Warnf("Label %q is already used by a model instance, skipping spawn", desc.Label)
		return
	}

	stored := desc.Clone()
	if e, ok := w.models[desc.Label]; ok {
		old := e.get()
		if prev := old.InstanceHash(); w.hashIndex[prev] == desc.Label {
			delete(w.hashIndex, prev)
		}
		e.mu.Lock()
		e.desc = stored
		e.mu.Unlock()
		w.dropInstancesOf(desc.Label)
		w.hashIndex[hash] = desc.Label
		w.mu.Unlock()
		w.record(Change{Kind: KindModel, Action: ActionChanged, Label: desc.Label})
		return
	}

	w.models[desc.Label] = &modelEntry{mu: &sync.RWMutex{}, desc: stored}
	w.hashIndex[hash] = desc.Label
	w.mu.Unlock()
	w.record(Change{Kind: KindModel, Action: ActionAdded, Label: desc.Label})
}

func (w *world) labelTaken(label string) bool {
	_, isModel := w.models[label]
	_, isInstance := w.instances[label]
	return isModel || isInstance
}

func (w *world) dropInstancesOf(base string) {
	for label, ref := range w.instances {
		if ref.base == base {
			delete(w.instances, label)
		}
	}
}

func (w *world) despawnModel(label string) {
	w.mu.Lock()
	if ref, ok := w.instances[label]; ok {
		delete(w.instances, label)
		w.models[ref.base].mutate(func(d *model.Descriptor) bool {
			for _, id := range ref.ids {
				d.RemoveTransformByID(id)
			}
			return true
		})
		w.mu.Unlock()
		w.record(Change{Kind: KindModel, Action: ActionChanged, Label: ref.base})
		return
	}

	e, ok := w.models[label]
	if !ok {
		w.mu.Unlock()
		w.log.Warnf("Model %q not found, cannot despawn", label)
		return
	}
	if hash := e.get().InstanceHash(); w.hashIndex[hash] == label {
		delete(w.hashIndex, hash)
	}
	delete(w.models, label)
	w.dropInstancesOf(label)
	w.mu.Unlock()
	w.record(Change{Kind: KindModel, Action: ActionRemoved, Label: label})
}

// transformModel resolves label to its base model and runs fn on a copy of it. For
// instance labels, ids lists the instance's transforms and fn returns the updated list;
// for base labels ids is nil.
func (w *world) transformModel(label string, fn func(d *model.Descriptor, ids []uuid.UUID) ([]uuid.UUID, bool)) {
	w.mu.Lock()
	base := label
	ref, isInstance := w.instances[label]
	if isInstance {
		base = ref.base
	}
	e, ok := w.models[base]
	if !ok {
		w.mu.Unlock()
		w.log.Warnf("Model %q not found, skipping transform change", label)
		return
	}

	var ids []uuid.UUID
	if isInstance {
		ids = ref.ids
		if ids == nil {
			ids = []uuid.UUID{}
		}
	}
	changed := e.mutate(func(d *model.Descriptor) bool {
		next, ok := fn(d, ids)
		if isInstance {
			ref.ids = next
		}
		return ok
	})
	if changed {
		w.pruneInstances(base, e.get())
	}
	w.mu.Unlock()

	if changed {
		w.record(Change{Kind: KindModel, Action: ActionChanged, Label: base})
	}
}

// pruneInstances forgets transform ids that are no longer in base's table.
func (w *world) pruneInstances(base string, d *model.Descriptor) {
	for label, ref := range w.instances {
		if ref.base != base {
			continue
		}
		ref.ids = slices.DeleteFunc(ref.ids, func(id uuid.UUID) bool { return d.IndexOf(id) < 0 })
		if len(ref.ids) == 0 {
			delete(w.instances, label)
		}
	}
}

// resolveIndex maps an index into an instance's own transforms to the table index.
func resolveIndex(d *model.Descriptor, ids []uuid.UUID, index int) int {
	if ids == nil {
		return index
	}
	if index < 0 || index >= len(ids) {
		return -1
	}
	return d.IndexOf(ids[index])
}

func (w *world) spawnCamera(desc camera.Descriptor, makeActive bool) {
	w.mu.Lock()
	changes := make([]Change, 0, 2)
	if e, ok := w.cameras[desc.Label]; ok {
		e.mu.Lock()
		e.desc = desc
		e.mu.Unlock()
		changes = append(changes, Change{Kind: KindCamera, Action: ActionChanged, Label: desc.Label})
	} else {
		w.cameras[desc.Label] = &cameraEntry{mu: &sync.RWMutex{}, desc: desc}
		w.cameraOrder = append(w.cameraOrder, desc.Label)
		changes = append(changes, Change{Kind: KindCamera, Action: ActionAdded, Label: desc.Label})
	}
	switch {
	case w.active == "":
		w.active = desc.Label
	case makeActive && w.active != desc.Label:
		w.active = desc.Label
		changes = append(changes, Change{Kind: KindCamera, Action: ActionChanged, Label: desc.Label})
	}
	w.mu.Unlock()
	w.record(changes...)
}

func (w *world) despawnCamera(label string) {
	w.mu.Lock()
	if _, ok := w.cameras[label]; !ok {
		w.mu.Unlock()
		w.log.Warnf("Camera %q not found, cannot despawn", label)
		return
	}
	delete(w.cameras, label)
	w.cameraOrder = slices.DeleteFunc(w.cameraOrder, func(l string) bool { return l == label })
	changes := []Change{{Kind: KindCamera, Action: ActionRemoved, Label: label}}
	if w.active == label {
		w.active = ""
		if len(w.cameraOrder) > 0 {
			w.active = w.cameraOrder[0]
			changes = append(changes, Change{Kind: KindCamera, Action: ActionChanged, Label: w.active})
		}
	}
	w.mu.Unlock()
	w.record(changes...)
}

func (w *world) changeActiveCamera(label string) {
	w.mu.Lock()
	if _, ok := w.cameras[label]; !ok {
		w.mu.Unlock()
		w.log.Warnf("Camera %q not found, cannot make it active", label)
		return
	}
	w.active = label
	w.mu.Unlock()
	w.record(Change{Kind: KindCamera, Action: ActionChanged, Label: label})
}

// updateCamera applies t to the camera it names, or to the active camera when
// t.Label is empty. Transforms below the change threshold are dropped.
func (w *world) updateCamera(t camera.Transform) {
	if !t.IsIntroducingChange() {
		return
	}
	w.mu.RLock()
	label := t.Label
	if label == "" {
		label = w.active
	}
	e, ok := w.cameras[label]
	w.mu.RUnlock()
	if !ok {
		w.log.Warnf("Camera %q not found, skipping camera update", label)
		return
	}

	e.mu.Lock()
	e.desc.ApplyTransform(t)
	e.mu.Unlock()
	w.record(Change{Kind: KindCamera, Action: ActionChanged, Label: label})
}

func (w *world) spawnLight(desc light.Descriptor) {
	w.mu.Lock()
	action := ActionAdded
	if e, ok := w.lights[desc.Label]; ok {
		e.mu.Lock()
		e.desc = desc
		e.mu.Unlock()
		action = ActionChanged
	} else {
		w.lights[desc.Label] = &lightEntry{mu: &sync.RWMutex{}, desc: desc}
		w.lightOrder = append(w.lightOrder, desc.Label)
	}
	w.mu.Unlock()
	w.record(Change{Kind: KindLight, Action: action, Label: desc.Label})
}

func (w *world) despawnLight(label string) {
	w.mu.Lock()
	if _, ok := w.lights[label]; !ok {
		w.mu.Unlock()
		w.log.Warnf("Light %q not found, cannot despawn", label)
		return
	}
	delete(w.lights, label)
	w.lightOrder = slices.DeleteFunc(w.lightOrder, func(l string) bool { return l == label })
	w.mu.Unlock()
	w.record(Change{Kind: KindLight, Action: ActionRemoved, Label: label})
}

// clean removes every element with its pending initial changes and empties the model,
// camera and light stores. The environment and running importers are kept.
func (w *world) clean() {
	w.queueMu.Lock()
	w.queue = slices.DeleteFunc(w.queue, func(c WorldChange) bool {
		_, pending := c.(elementChanges)
		return pending
	})
	w.queueMu.Unlock()

	w.mu.Lock()
	w.elements.clear()
	clear(w.models)
	clear(w.hashIndex)
	clear(w.instances)
	clear(w.cameras)
	w.cameraOrder = nil
	w.active = ""
	clear(w.lights)
	w.lightOrder = nil
	w.mu.Unlock()
	w.log.Info("World cleaned")
	w.record(Change{Kind: KindAll, Action: ActionClear})
}
