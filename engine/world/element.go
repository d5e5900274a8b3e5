package world

import (
	"github.com/SakulFlee/Orbital-sub000/engine/event"
	"github.com/SakulFlee/Orbital-sub000/engine/input"
	"github.com/google/uuid"
)

// Element is game logic living in the world. Elements never touch the stores
// directly; they return world changes that are applied in order after all elements
// have updated.
type Element interface {
	// OnRegistration is called once when the element is spawned.
	//
	// Parameters:
	//   - id: the id the world assigned to the element
	//
	// Returns:
	//   - ElementRegistration: the labels to reach the element under and its initial changes
	OnRegistration(id uuid.UUID) ElementRegistration

	// OnMessage is called for each message addressed to one of the element's labels,
	// before OnUpdate of the same frame.
	OnMessage(msg event.Message) []WorldChange

	// OnUpdate is called once per frame.
	//
	// Parameters:
	//   - deltaTime: seconds since the previous frame
	//   - in: the input snapshot of this frame, read-only
	//
	// Returns:
	//   - []WorldChange: changes to queue, in order
	OnUpdate(deltaTime float64, in *input.InputState) []WorldChange
}

// ElementRegistration is returned by Element.OnRegistration. Every label reaches the
// same element; an element without labels is reachable under its id.
type ElementRegistration struct {
	Labels  []string
	Changes []WorldChange
}

// NewRegistration starts a registration with a main label.
func NewRegistration(label string) ElementRegistration {
	return ElementRegistration{Labels: []string{label}}
}

// WithLabels returns the registration with additional labels.
func (r ElementRegistration) WithLabels(labels ...string) ElementRegistration {
	r.Labels = append(append([]string(nil), r.Labels...), labels...)
	return r
}

// WithChanges returns the registration with additional initial world changes.
func (r ElementRegistration) WithChanges(changes ...WorldChange) ElementRegistration {
	r.Changes = append(append([]WorldChange(nil), r.Changes...), changes...)
	return r
}
