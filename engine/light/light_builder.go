package light

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// LightBuilderOption is a function that configures a Descriptor during construction.
type LightBuilderOption func(*Descriptor)

// NewDescriptor creates a light descriptor. Defaults: white, intensity 1, pointing
// straight down, range 0, cone half-angles 25° and 35°, enabled.
//
// Parameters:
//   - label: the unique light label
//   - lightType: the kind of light to create
//   - opts: variadic list of LightBuilderOption functions to configure the light
//
// Returns:
//   - Descriptor: the configured descriptor
func NewDescriptor(label string, lightType LightType, opts ...LightBuilderOption) Descriptor {
	d := Descriptor{
		Label:     label,
		Type:      lightType,
		Direction: mgl32.Vec3{0, -1, 0},
		Color:     mgl32.Vec3{1, 1, 1},
		Intensity: 1.0,
		InnerCone: cosDeg(25),
		OuterCone: cosDeg(35),
		Enabled:   true,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

// Point is shorthand for a point light at position.
func Point(label string, position mgl32.Vec3, opts ...LightBuilderOption) Descriptor {
	return NewDescriptor(label, LightTypePoint, append([]LightBuilderOption{WithPosition(position)}, opts...)...)
}

// Directional is shorthand for a directional light shining along direction.
func Directional(label string, direction mgl32.Vec3, opts ...LightBuilderOption) Descriptor {
	return NewDescriptor(label, LightTypeDirectional, append([]LightBuilderOption{WithDirection(direction)}, opts...)...)
}

// Spot is shorthand for a spot light at position shining along direction.
func Spot(label string, position, direction mgl32.Vec3, opts ...LightBuilderOption) Descriptor {
	return NewDescriptor(label, LightTypeSpot, append([]LightBuilderOption{WithPosition(position), WithDirection(direction)}, opts...)...)
}

// WithPosition is an option builder that sets the world-space position of the light.
//
// Parameters:
//   - position: the position in world space
//
// Returns:
//   - LightBuilderOption: a function that applies the position option to a descriptor
func WithPosition(position mgl32.Vec3) LightBuilderOption {
	return func(d *Descriptor) {
		d.Position = position
	}
}

// WithDirection is an option builder that sets the direction of the light.
// The direction is normalized before storing; a zero vector keeps the default.
//
// Parameters:
//   - direction: the direction the light travels
//
// Returns:
//   - LightBuilderOption: a function that applies the direction option to a descriptor
func WithDirection(direction mgl32.Vec3) LightBuilderOption {
	return func(d *Descriptor) {
		if direction.Len() > 0 {
			d.Direction = direction.Normalize()
		}
	}
}

// WithColor is an option builder that sets the linear RGB color of the light.
//
// Parameters:
//   - color: the color as (r, g, b)
//
// Returns:
//   - LightBuilderOption: a function that applies the color option to a descriptor
func WithColor(color mgl32.Vec3) LightBuilderOption {
	return func(d *Descriptor) {
		d.Color = color
	}
}

// WithIntensity is an option builder that sets the scalar intensity multiplier.
func WithIntensity(intensity float32) LightBuilderOption {
	return func(d *Descriptor) {
		d.Intensity = intensity
	}
}

// WithRange is an option builder that sets the fade-out distance of point and spot lights.
func WithRange(lightRange float32) LightBuilderOption {
	return func(d *Descriptor) {
		d.Range = max(lightRange, 0)
	}
}

// WithSpotCone is an option builder that sets the inner and outer cone half-angles
// for spot lights. Angles are given in degrees and stored as cosines, the format the
// shader compares against. The outer angle is raised to the inner one if smaller.
//
// Parameters:
//   - innerDeg: inner cone half-angle in degrees
//   - outerDeg: outer cone half-angle in degrees
//
// Returns:
//   - LightBuilderOption: a function that applies the spot cone option to a descriptor
func WithSpotCone(innerDeg, outerDeg float32) LightBuilderOption {
	return func(d *Descriptor) {
		outerDeg = max(outerDeg, innerDeg)
		d.InnerCone = cosDeg(innerDeg)
		d.OuterCone = cosDeg(outerDeg)
	}
}

// WithEnabled is an option builder that sets whether the light is uploaded for rendering.
func WithEnabled(enabled bool) LightBuilderOption {
	return func(d *Descriptor) {
		d.Enabled = enabled
	}
}

// cosDeg converts an angle in degrees to the cosine of that angle.
func cosDeg(deg float32) float32 {
	return math32.Cos(mgl32.DegToRad(deg))
}
