package light

import (
	"github.com/go-gl/mathgl/mgl32"
)

// LightType identifies the kind of light source.
type LightType int

const (
	// LightTypePoint represents a light that emits in all directions from a position.
	// Attenuates with distance up to its range.
	LightTypePoint LightType = iota

	// LightTypeDirectional represents a light with no position, only direction.
	// Used for large distant sources like the sun. No distance attenuation.
	LightTypeDirectional

	// LightTypeSpot represents a light that emits in a cone from a position along a direction.
	// Attenuates with both distance and angle from the cone axis, controlled by the inner
	// and outer cone angles.
	LightTypeSpot
)

func (t LightType) String() string {
	switch t {
	case LightTypeDirectional:
		return "directional"
	case LightTypeSpot:
		return "spot"
	default:
		return "point"
	}
}

// Descriptor describes one light in the world. Descriptors are values keyed by Label;
// changing a light means replacing its descriptor.
//
// Position is ignored by directional lights and Direction by point lights.
// InnerCone and OuterCone are stored as cosines of the half-angles.
type Descriptor struct {
	Label     string
	Type      LightType
	Position  mgl32.Vec3
	Direction mgl32.Vec3
	Color     mgl32.Vec3
	Intensity float32
	// Range is the distance at which point and spot lights fade out, 0 for plain inverse square falloff.
	Range     float32
	InnerCone float32
	OuterCone float32
	Enabled   bool
}
