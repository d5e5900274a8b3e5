package renderer

import (
	"github.com/SakulFlee/Orbital-sub000/engine/event"
	"github.com/SakulFlee/Orbital-sub000/engine/model"
	"github.com/SakulFlee/Orbital-sub000/engine/world"
)

const (
	// MessageKeyWireframes toggles the wireframe debug pass.
	MessageKeyWireframes = "debug_wireframes_enabled"
	// MessageKeyBoundingBoxes toggles the bounding box debug pass.
	MessageKeyBoundingBoxes = "debug_bounding_box_wireframe_enabled"
)

// DebugFlags selects the optional debug passes drawn after the model pass.
type DebugFlags struct {
	Wireframes    bool
	BoundingBoxes bool
}

// Apply reads the debug keys of msg. Keys that are missing or not booleans are ignored.
//
// Returns:
//   - bool: true if any flag was present in msg
func (f *DebugFlags) Apply(msg event.Message) bool {
	found := false
	if v, ok := msg.Bool(MessageKeyWireframes); ok {
		f.Wireframes = v
		found = true
	}
	if v, ok := msg.Bool(MessageKeyBoundingBoxes); ok {
		f.BoundingBoxes = v
		found = true
	}
	return found
}

// modelAction is what the renderer does with a model label this frame.
type modelAction int

const (
	modelRefresh modelAction = iota
	modelDrop
)

// framePlan is a change list folded into the work the renderer has to do.
type framePlan struct {
	clear       bool
	models      map[string]modelAction
	modelOrder  []string
	lights      bool
	camera      bool
	environment bool
}

// planChanges folds a change list. Later entries for the same model win, and a clear
// discards everything recorded before it.
func planChanges(list world.ChangeList) framePlan {
	p := framePlan{models: make(map[string]modelAction)}
	for _, c := range list {
		switch c.Kind {
		case world.KindAll:
			p = framePlan{
				clear:       true,
				models:      make(map[string]modelAction),
				lights:      true,
				camera:      true,
				environment: true,
			}
		case world.KindModel:
			action := modelRefresh
			if c.Action == world.ActionRemoved {
				action = modelDrop
			}
			if _, seen := p.models[c.Label]; !seen {
				p.modelOrder = append(p.modelOrder, c.Label)
			}
			p.models[c.Label] = action
		case world.KindLight:
			p.lights = true
		case world.KindCamera:
			p.camera = true
		case world.KindWorldEnvironment:
			p.environment = true
		}
	}
	return p
}

// fullPlan rebuilds every realization from the world's current descriptors.
func fullPlan(w world.World) framePlan {
	p := framePlan{
		clear:       true,
		models:      make(map[string]modelAction),
		lights:      true,
		camera:      true,
		environment: true,
	}
	for _, d := range w.Models() {
		p.models[d.Label] = modelRefresh
		p.modelOrder = append(p.modelOrder, d.Label)
	}
	return p
}

// buildDraws creates one indirect record per model with the full instance count.
// The cull pass lowers instance_count to zero for models outside the frustum.
func buildDraws(models []model.Model) []DrawIndexedIndirect {
	draws := make([]DrawIndexedIndirect, len(models))
	for i, m := range models {
		draws[i] = DrawIndexedIndirect{
			IndexCount:    m.Mesh().IndexCount(),
			InstanceCount: m.InstanceCount(),
		}
	}
	return draws
}
