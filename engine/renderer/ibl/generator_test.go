package ibl

import (
	"encoding/binary"
	"math"
	"os"
	"testing"

	"github.com/SakulFlee/Orbital-sub000/engine/environment"
	"github.com/SakulFlee/Orbital-sub000/engine/renderer/gputest"
	"github.com/SakulFlee/Orbital-sub000/engine/renderer/shader"
	"github.com/SakulFlee/Orbital-sub000/engine/renderer/texture"
	"github.com/SakulFlee/Orbital-sub000/engine/renderer/wgsl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMipParams(t *testing.T) {
	buf := MipParams(3, 9, environment.SamplingTrue)
	require.Len(t, buf, 16)
	assert.Equal(t, uint32(3), binary.LittleEndian.Uint32(buf[0:4]))
	assert.Equal(t, uint32(9), binary.LittleEndian.Uint32(buf[4:8]))
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(buf[8:12]))
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(buf[12:16]))
}

func flatEnvironment(w, h uint32, r, g, b float32) environment.Descriptor {
	data := make([]byte, w*h*16)
	for i := 0; i < len(data); i += 16 {
		for c, v := range [4]float32{r, g, b, 1} {
			binary.LittleEndian.PutUint32(data[i+c*4:], math.Float32bits(v))
		}
	}
	return environment.Descriptor{CubeFaceSize: 16, Data: data, Width: w, Height: h}
}

func TestGenerator_CacheLifecycle(t *testing.T) {
	device, queue := gputest.Device(t)

	pp := shader.NewPreProcessor()
	require.NoError(t, wgsl.Register(pp))
	dir := t.TempDir()
	gen := NewGenerator(device, queue, pp, WithCacheDir(dir))
	defer gen.Release()

	desc := flatEnvironment(8, 4, 0.5, 0.25, 1)
	hash, err := desc.Hash()
	require.NoError(t, err)
	path := CachePath(dir, hash)

	first, err := gen.Generate(desc)
	require.NoError(t, err)
	defer first.Release()
	assert.False(t, first.FromCache)
	assert.Equal(t, uint32(5), first.Specular.Size().MipLevels)

	diffuse, specular, err := ReadCacheFile(path)
	require.NoError(t, err)
	diffuseLen, _ := texture.MippedByteLength(first.Diffuse.Size(), OutputFormat)
	specularLen, _ := texture.MippedByteLength(first.Specular.Size(), OutputFormat)
	assert.Len(t, diffuse, int(diffuseLen))
	assert.Len(t, specular, int(specularLen))

	second, err := gen.Generate(desc)
	require.NoError(t, err)
	defer second.Release()
	assert.True(t, second.FromCache)

	// a truncated file is replaced by a fresh generation
	require.NoError(t, os.WriteFile(path, []byte{1, 2, 3}, 0o644))
	third, err := gen.Generate(desc)
	require.NoError(t, err)
	defer third.Release()
	assert.False(t, third.FromCache)

	_, _, err = ReadCacheFile(path)
	assert.NoError(t, err)
}
