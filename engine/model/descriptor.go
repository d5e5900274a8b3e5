package model

import (
	"slices"

	"github.com/SakulFlee/Orbital-sub000/common"
	"github.com/SakulFlee/Orbital-sub000/engine/renderer/material"
	"github.com/google/uuid"
)

// Descriptor describes a model: shared geometry, the materials drawn with it and a
// transform table holding one entry per instance.
type Descriptor struct {
	Label      string
	Mesh       *MeshDescriptor
	Materials  []material.Descriptor
	Transforms []InstanceTransform
}

// Clone copies the descriptor's transform table and material list. The mesh is shared.
func (d *Descriptor) Clone() *Descriptor {
	c := *d
	c.Materials = slices.Clone(d.Materials)
	c.Transforms = slices.Clone(d.Transforms)
	return &c
}

// InstanceCount returns the number of transforms.
func (d *Descriptor) InstanceCount() int {
	return len(d.Transforms)
}

// SetTransforms replaces the whole table; every previous instance is dropped.
//
// Returns:
//   - []uuid.UUID: the IDs assigned to the new entries, in order
func (d *Descriptor) SetTransforms(transforms ...Transform) []uuid.UUID {
	d.Transforms = d.Transforms[:0]
	return d.AddTransforms(transforms...)
}

// SetTransformAt replaces the transform at index, keeping its ID. Out of range indices are ignored.
//
// Returns:
//   - bool: true when an entry was replaced
func (d *Descriptor) SetTransformAt(index int, t Transform) bool {
	if index < 0 || index >= len(d.Transforms) {
		return false
	}
	d.Transforms[index].Transform = t
	return true
}

// ApplyTransform applies mode to every entry.
func (d *Descriptor) ApplyTransform(mode common.Mode[Transform]) {
	for i := range d.Transforms {
		d.Transforms[i].Transform = d.Transforms[i].Transform.Apply(mode)
	}
}

// ApplyTransformAt applies mode to the entry at index. Out of range indices are ignored.
//
// Returns:
//   - bool: true when an entry was changed
func (d *Descriptor) ApplyTransformAt(index int, mode common.Mode[Transform]) bool {
	if index < 0 || index >= len(d.Transforms) {
		return false
	}
	d.Transforms[index].Transform = d.Transforms[index].Transform.Apply(mode)
	return true
}

// ApplyTransformByID applies mode to the entry with the given ID.
//
// Returns:
//   - bool: true when the ID was found
func (d *Descriptor) ApplyTransformByID(id uuid.UUID, mode common.Mode[Transform]) bool {
	return d.ApplyTransformAt(d.IndexOf(id), mode)
}

// AddTransforms appends instances.
//
// Returns:
//   - []uuid.UUID: the IDs assigned to the new entries, in order
func (d *Descriptor) AddTransforms(transforms ...Transform) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(transforms))
	for _, t := range transforms {
		inst := NewInstance(t)
		d.Transforms = append(d.Transforms, inst)
		ids = append(ids, inst.ID)
	}
	return ids
}

// RemoveTransformsAt removes the entries at the given indices, preserving the order of the
// remaining ones. Duplicate and out of range indices are ignored.
//
// Returns:
//   - int: the number of entries removed
func (d *Descriptor) RemoveTransformsAt(indices ...int) int {
	drop := make(map[int]struct{}, len(indices))
	for _, i := range indices {
		if i >= 0 && i < len(d.Transforms) {
			drop[i] = struct{}{}
		}
	}
	if len(drop) == 0 {
		return 0
	}

	kept := d.Transforms[:0]
	for i, t := range d.Transforms {
		if _, ok := drop[i]; !ok {
			kept = append(kept, t)
		}
	}
	clear(d.Transforms[len(kept):])
	d.Transforms = kept
	return len(drop)
}

// RemoveTransformByID removes the entry with the given ID.
//
// Returns:
//   - bool: true when the ID was found
func (d *Descriptor) RemoveTransformByID(id uuid.UUID) bool {
	return d.RemoveTransformsAt(d.IndexOf(id)) == 1
}

// IndexOf returns the table index of the entry with the given ID, or -1.
func (d *Descriptor) IndexOf(id uuid.UUID) int {
	return slices.IndexFunc(d.Transforms, func(t InstanceTransform) bool {
		return t.ID == id
	})
}

// InstanceHash identifies models that can be drawn as instances of each other: equal
// geometry and equal materials. Label and transforms do not take part.
func (d *Descriptor) InstanceHash() uint64 {
	h := common.NewHasher()
	if d.Mesh != nil {
		h.WriteUint64(d.Mesh.Hash())
	}
	h.WriteUint32(uint32(len(d.Materials)))
	for _, m := range d.Materials {
		h.WriteUint64(m.Hash())
	}
	return h.Sum64()
}
