package environment

import (
	"fmt"
	"math/bits"
	"os"

	"github.com/SakulFlee/Orbital-sub000/common"
)

// SamplingType selects how the specular mips integrate the GGX lobe.
type SamplingType uint32

const (
	// SamplingImportance uses GGX importance sampling with a fixed sample count.
	SamplingImportance SamplingType = iota
	// SamplingTrue walks the full hemisphere at a fixed angular step.
	SamplingTrue
)

const (
	// DefaultCubeFaceSize is the face size used when a descriptor leaves it at zero.
	DefaultCubeFaceSize = 1024
	// DefaultSpecularMipLevels is used when SpecularMipLevels is zero.
	DefaultSpecularMipLevels = 10
)

// Descriptor describes the world environment: an equirectangular RGBA32F radiance map
// that is turned into diffuse and specular IBL cube maps. Exactly one of Path or Data is used.
type Descriptor struct {
	CubeFaceSize uint32
	Path         string
	Data         []byte
	Width        uint32
	Height       uint32
	SamplingType SamplingType
	// SpecularMipLevels defaults to 10 and is clamped to floor(log2(CubeFaceSize))+1.
	SpecularMipLevels uint32
}

// FromFile returns a descriptor for a Radiance HDR file with default settings.
func FromFile(path string) Descriptor {
	return Descriptor{Path: path}
}

// FaceSize returns the cube face size, applying the default.
func (d Descriptor) FaceSize() uint32 {
	return common.Coalesce(d.CubeFaceSize, DefaultCubeFaceSize)
}

// MipLevels returns the clamped specular mip count.
func (d Descriptor) MipLevels() uint32 {
	return ClampMipLevels(d.FaceSize(), common.Coalesce(d.SpecularMipLevels, DefaultSpecularMipLevels))
}

// Label names the environment in logs.
func (d Descriptor) Label() string {
	if d.Path != "" {
		return d.Path
	}
	return fmt.Sprintf("data %dx%d", d.Width, d.Height)
}

// Hash is a stable 64-bit hash over the source content and settings. File sources are
// read so that moving a file does not invalidate its cache entry.
//
// Returns:
//   - uint64: the descriptor hash
//   - error: ErrIo when the source file cannot be read
func (d Descriptor) Hash() (uint64, error) {
	h := common.NewHasher().
		WriteUint32(d.FaceSize()).
		WriteUint32(uint32(d.SamplingType)).
		WriteUint32(d.MipLevels())

	if d.Path != "" {
		content, err := os.ReadFile(d.Path)
		if err != nil {
			return 0, fmt.Errorf("%w: hashing environment %s: %v", common.ErrIo, d.Path, err)
		}
		h.WriteBytes(content)
	} else {
		h.WriteUint32(d.Width).WriteUint32(d.Height).WriteBytes(d.Data)
	}
	return h.Sum64(), nil
}

// ClampMipLevels limits requested to the mip chain length of a face of the given size.
func ClampMipLevels(faceSize, requested uint32) uint32 {
	if faceSize == 0 {
		return 1
	}
	maxLevels := uint32(bits.Len32(faceSize))
	return common.Clamp(requested, 1, maxLevels)
}

// WorkgroupCount is the per-axis dispatch size for a face of the given size with 16x16 workgroups.
func WorkgroupCount(faceSize uint32) uint32 {
	return (faceSize + 15) / 16
}
