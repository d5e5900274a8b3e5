package ibl

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"

	"github.com/SakulFlee/Orbital-sub000/common"
)

// cacheHeaderSize is two little-endian u64 lengths.
const cacheHeaderSize = 16

// CachePath is the file an environment with the given hash is cached in.
func CachePath(dir string, hash uint64) string {
	return filepath.Join(dir, "IBLs", fmt.Sprintf("%016x.bin", hash))
}

// WriteCacheFile stores the diffuse and specular readbacks as
// {u64 diffuse_len, u64 specular_len, diffuse, specular}, creating parent folders.
//
// Parameters:
//   - path: the destination file
//   - diffuse: the diffuse cube bytes in readback layout
//   - specular: the specular cube bytes, all mips, in readback layout
//
// Returns:
//   - error: wraps common.ErrIo
func WriteCacheFile(path string, diffuse, specular []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("%w: creating %s: %v", common.ErrIo, filepath.Dir(path), err)
	}

	data := make([]byte, cacheHeaderSize, cacheHeaderSize+len(diffuse)+len(specular))
	binary.LittleEndian.PutUint64(data[0:8], uint64(len(diffuse)))
	binary.LittleEndian.PutUint64(data[8:16], uint64(len(specular)))
	data = append(data, diffuse...)
	data = append(data, specular...)

	// write to a sibling and rename so readers never observe a partial file
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("%w: writing %s: %v", common.ErrIo, tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: renaming %s: %v", common.ErrIo, tmp, err)
	}
	return nil
}

// ReadCacheFile loads a file written by WriteCacheFile.
//
// Parameters:
//   - path: the cache file
//
// Returns:
//   - []byte: the diffuse bytes
//   - []byte: the specular bytes
//   - error: wraps common.ErrIo when the file cannot be read (os.ErrNotExist is
//     preserved), or common.ErrCacheFileCorrupt when the lengths do not add up
func ReadCacheFile(path string) ([]byte, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: reading %s: %w", common.ErrIo, path, err)
	}
	if len(data) < cacheHeaderSize {
		return nil, nil, fmt.Errorf("%w: %s has %d bytes, shorter than its header", common.ErrCacheFileCorrupt, path, len(data))
	}

	diffuseLen := binary.LittleEndian.Uint64(data[0:8])
	specularLen := binary.LittleEndian.Uint64(data[8:16])
	body := uint64(len(data) - cacheHeaderSize)
	if diffuseLen > body || specularLen != body-diffuseLen {
		return nil, nil, fmt.Errorf("%w: %s declares %d+%d bytes but holds %d",
			common.ErrCacheFileCorrupt, path, diffuseLen, specularLen, body)
	}

	diffuse := data[cacheHeaderSize : cacheHeaderSize+diffuseLen]
	specular := data[cacheHeaderSize+diffuseLen:]
	return diffuse, specular, nil
}
