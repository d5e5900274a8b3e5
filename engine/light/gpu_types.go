package light

import (
	"encoding/binary"

	"github.com/SakulFlee/Orbital-sub000/common"
)

// GPU struct sizes, matching the WGSL structs in the light shader fragment.
const (
	CountsSize      = 16
	PointSize       = 32
	DirectionalSize = 32
	SpotSize        = 64
)

// GPULights is the marshaled content of the four light bindings.
type GPULights struct {
	Counts      [3]uint32 // point, directional, spot
	Point       []byte
	Directional []byte
	Spot        []byte
}

// MarshalCounts serializes the LightCounts uniform (16 bytes).
func (g *GPULights) MarshalCounts() []byte {
	buf := make([]byte, CountsSize)
	for i, c := range g.Counts {
		binary.LittleEndian.PutUint32(buf[i*4:], c)
	}
	return buf
}

// MarshalLights splits the enabled lights by type and serializes each group.
// Disabled lights are skipped. Input order is preserved within each group.
//
// Parameters:
//   - lights: every light of the world
//
// Returns:
//   - *GPULights: the counts and the three tightly packed arrays
func MarshalLights(lights []Descriptor) *GPULights {
	g := &GPULights{}
	for _, l := range lights {
		if !l.Enabled {
			continue
		}
		switch l.Type {
		case LightTypeDirectional:
			g.Directional = append(g.Directional, marshalDirectional(l)...)
			g.Counts[1]++
		case LightTypeSpot:
			g.Spot = append(g.Spot, marshalSpot(l)...)
			g.Counts[2]++
		default:
			g.Point = append(g.Point, marshalPoint(l)...)
			g.Counts[0]++
		}
	}
	return g
}

// marshalPoint writes {position, intensity, color, range}.
func marshalPoint(l Descriptor) []byte {
	buf := make([]byte, PointSize)
	common.PutVec3(buf[0:], l.Position)
	common.PutFloat32(buf[12:], l.Intensity)
	common.PutVec3(buf[16:], l.Color)
	common.PutFloat32(buf[28:], l.Range)
	return buf
}

// marshalDirectional writes {direction, intensity, color, pad}.
func marshalDirectional(l Descriptor) []byte {
	buf := make([]byte, DirectionalSize)
	common.PutVec3(buf[0:], l.Direction)
	common.PutFloat32(buf[12:], l.Intensity)
	common.PutVec3(buf[16:], l.Color)
	return buf
}

// marshalSpot writes {position, intensity, direction, range, color, inner_cos, outer_cos, pad x3}.
func marshalSpot(l Descriptor) []byte {
	buf := make([]byte, SpotSize)
	common.PutVec3(buf[0:], l.Position)
	common.PutFloat32(buf[12:], l.Intensity)
	common.PutVec3(buf[16:], l.Direction)
	common.PutFloat32(buf[28:], l.Range)
	common.PutVec3(buf[32:], l.Color)
	common.PutFloat32(buf[44:], l.InnerCone)
	common.PutFloat32(buf[48:], l.OuterCone)
	return buf
}
