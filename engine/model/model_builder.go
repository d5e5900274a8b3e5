package model

import (
	"github.com/SakulFlee/Orbital-sub000/engine/renderer/material"
)

// DescriptorOption is a functional option for configuring a Descriptor via NewDescriptor.
type DescriptorOption func(*Descriptor)

// WithMaterials is an option builder that sets the material drawn with the mesh.
// A model is drawn with one material; the world keeps only the first on spawn.
//
// Parameters:
//   - materials: the material descriptors
//
// Returns:
//   - DescriptorOption: a function that applies the materials option to a descriptor
func WithMaterials(materials ...material.Descriptor) DescriptorOption {
	return func(d *Descriptor) {
		d.Materials = append(d.Materials, materials...)
	}
}

// WithTransforms is an option builder that adds one instance per transform.
//
// Parameters:
//   - transforms: the instance transforms
//
// Returns:
//   - DescriptorOption: a function that appends the transforms to a descriptor
func WithTransforms(transforms ...Transform) DescriptorOption {
	return func(d *Descriptor) {
		d.AddTransforms(transforms...)
	}
}

// NewDescriptor creates a model descriptor. Without WithTransforms the model gets a single
// identity instance; without WithMaterials it is drawn with the default PBR material.
//
// Parameters:
//   - label: the unique model label
//   - mesh: the geometry, shared by reference
//   - options: variadic list of DescriptorOption functions
//
// Returns:
//   - *Descriptor: the configured descriptor
func NewDescriptor(label string, mesh *MeshDescriptor, options ...DescriptorOption) *Descriptor {
	d := &Descriptor{
		Label: label,
		Mesh:  mesh,
	}
	for _, opt := range options {
		opt(d)
	}
	if len(d.Transforms) == 0 {
		d.AddTransforms(IdentityTransform())
	}
	if len(d.Materials) == 0 {
		d.Materials = []material.Descriptor{material.NewDescriptor(label)}
	}
	return d
}
