// Package wgsl embeds the engine's built-in WGSL shader library.
package wgsl

import (
	"embed"
	"fmt"
	"io/fs"

	"github.com/SakulFlee/Orbital-sub000/engine/renderer/shader"
)

//go:embed library
var library embed.FS

// Import names of the entry-point shaders in the built-in library.
const (
	PBR            = "pbr/pbr"
	SkyBox         = "sky_box"
	Cull           = "cull"
	Wireframe      = "debug/wireframe"
	BoundingBox    = "debug/bounding_box"
	IBLDiffuse     = "ibl/diffuse"
	IBLSpecular    = "ibl/specular"
	IBLSpecularMip = "ibl/mip_maps"
)

// Library exposes the embedded shader files rooted at the library folder.
func Library() fs.FS {
	sub, err := fs.Sub(library, "library")
	if err != nil {
		panic(err)
	}
	return sub
}

// Register adds every built-in fragment to pp. Files registered later under the
// same name, for example from a user shader folder, replace the built-in ones.
//
// Parameters:
//   - pp: the preprocessor to register into
//
// Returns:
//   - error: if the embedded library could not be walked
func Register(pp shader.PreProcessor) error {
	return pp.RegisterFS(Library(), ".")
}

// Source returns the raw text of a built-in shader.
//
// Parameters:
//   - name: the import name, e.g. PBR or "math"
//
// Returns:
//   - string: the WGSL text including its #import lines
//   - error: if no such file is embedded
func Source(name string) (string, error) {
	data, err := fs.ReadFile(Library(), name+".wgsl")
	if err != nil {
		return "", fmt.Errorf("built-in shader %q: %w", name, err)
	}
	return string(data), nil
}

// Descriptor builds a shader descriptor for a built-in entry-point shader. The source
// is imported by name so a replacement registered on the preprocessor takes effect.
func Descriptor(name string) shader.Descriptor {
	return shader.Descriptor{
		Label:  name,
		Source: "#import <" + name + ">",
	}
}
