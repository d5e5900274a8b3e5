package environment

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/SakulFlee/Orbital-sub000/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClampMipLevels(t *testing.T) {
	assert.Equal(t, uint32(10), ClampMipLevels(1024, 10))
	assert.Equal(t, uint32(11), ClampMipLevels(1024, 20))
	assert.Equal(t, uint32(3), ClampMipLevels(4, 10))
	assert.Equal(t, uint32(1), ClampMipLevels(4, 0))
	assert.Equal(t, uint32(1), ClampMipLevels(0, 5))
}

func TestDefaults(t *testing.T) {
	d := FromFile("sky.hdr")
	assert.Equal(t, uint32(DefaultCubeFaceSize), d.FaceSize())
	assert.Equal(t, uint32(DefaultSpecularMipLevels), d.MipLevels())

	d.CubeFaceSize = 16
	assert.Equal(t, uint32(5), d.MipLevels())
}

func TestWorkgroupCount(t *testing.T) {
	assert.Equal(t, uint32(1), WorkgroupCount(1))
	assert.Equal(t, uint32(1), WorkgroupCount(16))
	assert.Equal(t, uint32(2), WorkgroupCount(17))
	assert.Equal(t, uint32(64), WorkgroupCount(1024))
}

func TestHashFollowsContentNotPath(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.hdr")
	b := filepath.Join(dir, "b.hdr")
	require.NoError(t, os.WriteFile(a, []byte("radiance"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("radiance"), 0o644))

	ha, err := FromFile(a).Hash()
	require.NoError(t, err)
	hb, err := FromFile(b).Hash()
	require.NoError(t, err)
	assert.Equal(t, ha, hb)

	require.NoError(t, os.WriteFile(b, []byte("different"), 0o644))
	hb, err = FromFile(b).Hash()
	require.NoError(t, err)
	assert.NotEqual(t, ha, hb)

	_, err = FromFile(filepath.Join(dir, "missing.hdr")).Hash()
	assert.ErrorIs(t, err, common.ErrIo)
}

func TestHashSettings(t *testing.T) {
	base := Descriptor{Data: []byte{1, 2, 3, 4}, Width: 1, Height: 1, CubeFaceSize: 64}
	h1, _ := base.Hash()

	other := base
	other.SamplingType = SamplingTrue
	h2, _ := other.Hash()
	assert.NotEqual(t, h1, h2)

	other = base
	other.CubeFaceSize = 128
	h3, _ := other.Hash()
	assert.NotEqual(t, h1, h3)

	same := base
	h4, _ := same.Hash()
	assert.Equal(t, h1, h4)
}
