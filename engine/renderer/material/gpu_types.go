package material

import (
	"github.com/SakulFlee/Orbital-sub000/common"
	"github.com/go-gl/mathgl/mgl32"
)

// FactorsSize is the byte size of the MaterialFactors uniform.
const FactorsSize = 48

// Factors are the scalar PBR inputs multiplied with the sampled textures.
// Matches the WGSL MaterialFactors struct: albedo vec4, emissive rgb + strength vec4,
// then metallic, roughness, normal_scale and occlusion_strength.
type Factors struct {
	Albedo            mgl32.Vec4
	Emissive          mgl32.Vec3
	EmissiveStrength  float32
	Metallic          float32
	Roughness         float32
	NormalScale       float32
	OcclusionStrength float32
}

// DefaultFactors leaves every texture unscaled and disables emission.
func DefaultFactors() Factors {
	return Factors{
		Albedo:            mgl32.Vec4{1, 1, 1, 1},
		Emissive:          mgl32.Vec3{1, 1, 1},
		EmissiveStrength:  0,
		Metallic:          1,
		Roughness:         1,
		NormalScale:       1,
		OcclusionStrength: 1,
	}
}

// Marshal serializes the factors into a 48 byte buffer ready for GPU upload.
func (f Factors) Marshal() []byte {
	buf := make([]byte, FactorsSize)
	common.PutVec4(buf[0:], f.Albedo)
	common.PutVec4(buf[16:], f.Emissive.Vec4(f.EmissiveStrength))
	common.PutFloat32(buf[32:], f.Metallic)
	common.PutFloat32(buf[36:], f.Roughness)
	common.PutFloat32(buf[40:], f.NormalScale)
	common.PutFloat32(buf[44:], f.OcclusionStrength)
	return buf
}

func (f Factors) hash(h *common.Hasher) {
	h.WriteFloat32s(f.Albedo[:]...).
		WriteFloat32s(f.Emissive[:]...).
		WriteFloat32s(f.EmissiveStrength, f.Metallic, f.Roughness, f.NormalScale, f.OcclusionStrength)
}
