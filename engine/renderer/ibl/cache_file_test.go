package ibl

import (
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/SakulFlee/Orbital-sub000/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCachePath(t *testing.T) {
	assert.Equal(t, filepath.Join("cache", "IBLs", "00000000000000ff.bin"), CachePath("cache", 0xff))
	assert.Equal(t, filepath.Join("c", "IBLs", "0123456789abcdef.bin"), CachePath("c", 0x0123456789abcdef))
}

func TestCacheFile_RoundTrip(t *testing.T) {
	path := CachePath(t.TempDir(), 42)
	diffuse := []byte{1, 2, 3, 4}
	specular := []byte{5, 6, 7, 8, 9, 10}

	require.NoError(t, WriteCacheFile(path, diffuse, specular))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, raw, 16+4+6)
	assert.Equal(t, uint64(4), binary.LittleEndian.Uint64(raw[0:8]))
	assert.Equal(t, uint64(6), binary.LittleEndian.Uint64(raw[8:16]))

	d, s, err := ReadCacheFile(path)
	require.NoError(t, err)
	assert.Equal(t, diffuse, d)
	assert.Equal(t, specular, s)

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestCacheFile_Empty(t *testing.T) {
	path := CachePath(t.TempDir(), 1)
	require.NoError(t, WriteCacheFile(path, nil, nil))

	d, s, err := ReadCacheFile(path)
	require.NoError(t, err)
	assert.Empty(t, d)
	assert.Empty(t, s)
}

func TestReadCacheFile_Missing(t *testing.T) {
	_, _, err := ReadCacheFile(filepath.Join(t.TempDir(), "nope.bin"))
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrIo)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestReadCacheFile_Corrupt(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		data []byte
	}{
		{"short header", []byte{1, 2, 3}},
		{"truncated body", header(4, 4, 6)},
		{"trailing bytes", header(1, 1, 5)},
		{"diffuse length overflows", header(1<<40, 0, 2)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".bin")
			require.NoError(t, os.WriteFile(path, tt.data, 0o644))

			_, _, err := ReadCacheFile(path)
			assert.ErrorIs(t, err, common.ErrCacheFileCorrupt)
		})
	}
}

// header builds a cache file declaring the given lengths followed by body zero bytes.
func header(diffuseLen, specularLen uint64, body int) []byte {
	data := make([]byte, 16+body)
	binary.LittleEndian.PutUint64(data[0:8], diffuseLen)
	binary.LittleEndian.PutUint64(data[8:16], specularLen)
	return data
}
