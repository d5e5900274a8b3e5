package common

import "errors"

// Error kinds shared across the engine. Wrap them with fmt.Errorf("...: %w", ErrX)
// and test with errors.Is.
var (
	ErrIo                       = errors.New("io error")
	ErrImageDecode              = errors.New("image decode failed")
	ErrTextureDataSizeMismatch  = errors.New("texture data size mismatch")
	ErrUnsupportedTextureFormat = errors.New("unsupported texture format")
	ErrShaderUnknownDirective   = errors.New("shader preprocessor: unknown import")
	ErrShaderCycle              = errors.New("shader preprocessor: import cycle")
	ErrShaderIo                 = errors.New("shader preprocessor: io error")
	ErrShaderNonUTF8            = errors.New("shader preprocessor: source is not valid UTF-8")
	ErrDeviceLost               = errors.New("gpu device lost")
	ErrSurfaceAcquire           = errors.New("failed to acquire surface texture")
	ErrGltfParse                = errors.New("gltf parse error")
	ErrLoaderNotDone            = errors.New("loader has not finished processing")
	ErrLoaderChannelClosed      = errors.New("loader result channel closed")
	ErrCacheFileCorrupt         = errors.New("cache file corrupt")
	ErrInvalidMesh              = errors.New("invalid mesh")
)
