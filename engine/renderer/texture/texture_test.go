package texture

import (
	"testing"

	"github.com/SakulFlee/Orbital-sub000/engine/renderer/gputest"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_CustomIsBorrowed(t *testing.T) {
	c := Custom{
		Name:    "borrowed",
		Texture: &wgpu.Texture{},
		View:    &wgpu.TextureView{},
		Sampler: &wgpu.Sampler{},
		Size:    Size{Width: 4, Height: 4, DepthOrArrayLayers: 6},
		Format:  wgpu.TextureFormatRGBA16Float,
	}

	tex, err := New(nil, nil, c)
	require.NoError(t, err)
	assert.Same(t, c.Texture, tex.Texture())
	assert.True(t, tex.IsCube())

	assert.NotPanics(t, tex.Release)
	assert.Nil(t, tex.Texture())
	assert.Nil(t, tex.View())
	assert.Nil(t, tex.Sampler())
}

func TestNew_CustomKeepsOwnerHandles_GPU(t *testing.T) {
	device, queue := gputest.Device(t)

	owner, err := New(device, queue, UniformColor([4]uint8{0, 255, 0, 255}, UsageAlbedo))
	require.NoError(t, err)
	defer owner.Release()

	wrapped, err := New(device, queue, Custom{
		Name:    "wrapped",
		Texture: owner.Texture(),
		View:    owner.View(),
		Sampler: owner.Sampler(),
		Size:    owner.Size(),
		Format:  owner.Format(),
	})
	require.NoError(t, err)
	wrapped.Release()

	data, err := owner.ReadAsBinary(device, queue)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 255, 0, 255}, data[:4])
}
