package shader

import (
	"fmt"
	"os"

	"github.com/SakulFlee/Orbital-sub000/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// Descriptor specifies a WGSL shader module. Exactly one of Source or Path is used,
// Source taking precedence. The text may contain #import directives.
type Descriptor struct {
	Label  string
	Source string
	Path   string
}

// Hash is a content hash of the descriptor, used as the shader cache key.
func (d Descriptor) Hash() uint64 {
	return common.NewHasher().
		WriteString(d.Label).
		WriteString(d.Source).
		WriteString(d.Path).
		Sum64()
}

// Compiled is a preprocessed and reflected shader that has not been uploaded yet.
type Compiled struct {
	Label      string
	Source     string
	Reflection Reflection
}

// Compile resolves the descriptor's source, expands its imports and reflects it.
//
// Parameters:
//   - pp: the preprocessor holding the shader library
//   - desc: the shader to compile
//
// Returns:
//   - *Compiled: the expanded source and its reflection
//   - error: if the source could not be read or preprocessed
func Compile(pp PreProcessor, desc Descriptor) (*Compiled, error) {
	source := desc.Source
	if source == "" {
		if desc.Path == "" {
			return nil, fmt.Errorf("shader %q has neither source nor path", desc.Label)
		}
		data, err := os.ReadFile(desc.Path)
		if err != nil {
			return nil, fmt.Errorf("%w: reading shader %q: %v", common.ErrShaderIo, desc.Path, err)
		}
		source = string(data)
	}

	expanded, err := pp.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("failed to preprocess shader %q: %w", desc.Label, err)
	}

	return &Compiled{
		Label:      desc.Label,
		Source:     expanded,
		Reflection: Reflect(expanded),
	}, nil
}

// shader is the implementation of the Shader interface.
type shader struct {
	compiled *Compiled
	module   *wgpu.ShaderModule
}

// Shader is a WGSL module realized on the device together with its reflection.
type Shader interface {
	// Label returns the descriptor label.
	Label() string

	// Source returns the preprocessed WGSL source.
	Source() string

	// Module returns the GPU shader module.
	Module() *wgpu.ShaderModule

	// Reflection returns the entry points and resource bindings found in the source.
	Reflection() Reflection

	// BindGroupLayoutDescriptors returns the reflected layout for every group index.
	//
	// Returns:
	//   - []wgpu.BindGroupLayoutDescriptor: indexed by group number
	BindGroupLayoutDescriptors() []wgpu.BindGroupLayoutDescriptor

	// Release frees the GPU module.
	Release()
}

var _ Shader = &shader{}

// New compiles desc and creates the shader module on device.
//
// Parameters:
//   - device: the GPU device
//   - pp: the preprocessor holding the shader library
//   - desc: the shader to realize
//
// Returns:
//   - Shader: the realized shader
//   - error: preprocessing or module creation failure
func New(device *wgpu.Device, pp PreProcessor, desc Descriptor) (Shader, error) {
	compiled, err := Compile(pp, desc)
	if err != nil {
		return nil, err
	}

	module, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: desc.Label,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: compiled.Source,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create shader module %q: %w", desc.Label, err)
	}

	return &shader{compiled: compiled, module: module}, nil
}

func (s *shader) Label() string {
	return s.compiled.Label
}

func (s *shader) Source() string {
	return s.compiled.Source
}

func (s *shader) Module() *wgpu.ShaderModule {
	return s.module
}

func (s *shader) Reflection() Reflection {
	return s.compiled.Reflection
}

func (s *shader) BindGroupLayoutDescriptors() []wgpu.BindGroupLayoutDescriptor {
	return s.compiled.Reflection.BindGroupLayoutDescriptors(s.compiled.Label)
}

func (s *shader) Release() {
	if s.module != nil {
		s.module.Release()
		s.module = nil
	}
}
