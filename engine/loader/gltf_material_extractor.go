package loader

import (
	"fmt"

	"github.com/SakulFlee/Orbital-sub000/common"
	"github.com/SakulFlee/Orbital-sub000/engine/renderer/material"
	"github.com/SakulFlee/Orbital-sub000/engine/renderer/texture"
	"github.com/cogentcore/webgpu/wgpu"
)

const defaultMaterialLabel = "default glTF material"

// textureKey identifies one decoded texture of an import.
type textureKey struct {
	texture int
	usage   texture.Usage
}

// materialExtractor converts glTF materials into PBR material descriptors.
// Images are decoded once per texture and usage; materials are cached by index.
type materialExtractor struct {
	file      *gltfFile
	textures  map[textureKey]texture.FromData
	materials map[int]material.Descriptor
}

func newMaterialExtractor(f *gltfFile) *materialExtractor {
	return &materialExtractor{
		file:      f,
		textures:  make(map[textureKey]texture.FromData),
		materials: make(map[int]material.Descriptor),
	}
}

// Material returns the descriptor of the material at index, decoding its
// textures on first use. A nil index yields the default material.
//
// Parameters:
//   - index: the primitive's material index, may be nil
//
// Returns:
//   - material.Descriptor: the converted material
//   - error: wraps common.ErrGltfParse, common.ErrImageDecode or common.ErrIo
func (e *materialExtractor) Material(index *int) (material.Descriptor, error) {
	if index == nil {
		return material.NewDescriptor(defaultMaterialLabel), nil
	}
	if m, ok := e.materials[*index]; ok {
		return m, nil
	}
	if *index < 0 || *index >= len(e.file.doc.Materials) {
		return material.Descriptor{}, fmt.Errorf("%w: material %d out of range", common.ErrGltfParse, *index)
	}

	src := &e.file.doc.Materials[*index]
	label := src.Name
	if label == "" {
		label = fmt.Sprintf("glTF material %d", *index)
	}

	factors := material.DefaultFactors()
	var opts []material.DescriptorOption

	if pbr := src.PbrMetallicRoughness; pbr != nil {
		if pbr.BaseColorFactor != nil {
			factors.Albedo = *pbr.BaseColorFactor
		}
		if pbr.MetallicFactor != nil {
			factors.Metallic = common.Clamp(*pbr.MetallicFactor, 0, 1)
		}
		if pbr.RoughnessFactor != nil {
			factors.Roughness = common.Clamp(*pbr.RoughnessFactor, 0, 1)
		}
		if pbr.BaseColorTexture != nil {
			tex, err := e.texture(pbr.BaseColorTexture.Index, texture.UsageAlbedo)
			if err != nil {
				return material.Descriptor{}, fmt.Errorf("material %q base colour: %w", label, err)
			}
			opts = append(opts, material.WithTexture(material.SlotAlbedo, tex))
		}
		if pbr.MetallicRoughnessTexture != nil {
			metallic, roughness, err := e.metallicRoughness(pbr.MetallicRoughnessTexture.Index)
			if err != nil {
				return material.Descriptor{}, fmt.Errorf("material %q metallic-roughness: %w", label, err)
			}
			opts = append(opts,
				material.WithTexture(material.SlotMetallic, metallic),
				material.WithTexture(material.SlotRoughness, roughness),
			)
		}
	}

	if info := src.NormalTexture; info != nil {
		if info.Scale != nil {
			factors.NormalScale = *info.Scale
		}
		tex, err := e.texture(info.Index, texture.UsageNormal)
		if err != nil {
			return material.Descriptor{}, fmt.Errorf("material %q normal: %w", label, err)
		}
		opts = append(opts, material.WithTexture(material.SlotNormal, tex))
	}

	if info := src.OcclusionTexture; info != nil {
		if info.Strength != nil {
			factors.OcclusionStrength = common.Clamp(*info.Strength, 0, 1)
		}
		tex, err := e.texture(info.Index, texture.UsageOcclusion)
		if err != nil {
			return material.Descriptor{}, fmt.Errorf("material %q occlusion: %w", label, err)
		}
		opts = append(opts, material.WithTexture(material.SlotOcclusion, tex))
	}

	// glTF defaults the emissive factor to black.
	if src.EmissiveFactor != nil {
		factors.Emissive = *src.EmissiveFactor
		factors.EmissiveStrength = 1
		if ext := src.Extensions; ext != nil && ext.EmissiveStrength != nil {
			factors.EmissiveStrength = ext.EmissiveStrength.EmissiveStrength
		}
	}
	if info := src.EmissiveTexture; info != nil {
		tex, err := e.texture(info.Index, texture.UsageEmissive)
		if err != nil {
			return material.Descriptor{}, fmt.Errorf("material %q emissive: %w", label, err)
		}
		opts = append(opts, material.WithTexture(material.SlotEmissive, tex))
	}

	opts = append([]material.DescriptorOption{material.WithFactors(factors)}, opts...)
	m := material.NewDescriptor(label, opts...)
	e.materials[*index] = m
	return m, nil
}

// texture decodes the image of a glTF texture into RGBA8 texels.
func (e *materialExtractor) texture(index int, usage texture.Usage) (texture.FromData, error) {
	key := textureKey{texture: index, usage: usage}
	if tex, ok := e.textures[key]; ok {
		return tex, nil
	}

	doc := e.file.doc
	if index < 0 || index >= len(doc.Textures) {
		return texture.FromData{}, fmt.Errorf("%w: texture %d out of range", common.ErrGltfParse, index)
	}
	src := &doc.Textures[index]
	if src.Source == nil {
		return texture.FromData{}, fmt.Errorf("%w: texture %d has no image", common.ErrGltfParse, index)
	}

	data, err := e.file.imageBytes(*src.Source)
	if err != nil {
		return texture.FromData{}, err
	}

	name := doc.Images[*src.Source].Name
	if name == "" {
		name = src.Name
	}
	if name == "" {
		name = fmt.Sprintf("glTF image %d", *src.Source)
	}

	var sampler *texture.SamplerOptions
	if src.Sampler != nil {
		if *src.Sampler < 0 || *src.Sampler >= len(doc.Samplers) {
			return texture.FromData{}, fmt.Errorf("%w: sampler %d out of range", common.ErrGltfParse, *src.Sampler)
		}
		sampler = samplerOptions(&doc.Samplers[*src.Sampler])
	}

	tex, err := texture.Resolve(texture.FromEncoded{Name: name, Data: data, Usage: usage, Sampler: sampler})
	if err != nil {
		return texture.FromData{}, err
	}
	e.textures[key] = tex
	return tex, nil
}

// metallicRoughness splits a packed metallic-roughness image into single channel
// textures: metalness from the blue channel and roughness from the green channel.
func (e *materialExtractor) metallicRoughness(index int) (texture.FromData, texture.FromData, error) {
	packed, err := e.texture(index, texture.UsageGeneric)
	if err != nil {
		return texture.FromData{}, texture.FromData{}, err
	}

	texels := len(packed.Pixels) / 4
	metallic := make([]byte, texels)
	roughness := make([]byte, texels)
	for i := range texels {
		roughness[i] = packed.Pixels[i*4+1]
		metallic[i] = packed.Pixels[i*4+2]
	}

	channel := func(suffix string, pixels []byte, usage texture.Usage) texture.FromData {
		return texture.FromData{
			Name:    packed.Name + " " + suffix,
			Pixels:  pixels,
			Size:    packed.Size,
			Format:  wgpu.TextureFormatR8Unorm,
			Usage:   usage,
			Sampler: packed.Sampler,
		}
	}
	return channel("metallic", metallic, texture.UsageMetallic),
		channel("roughness", roughness, texture.UsageRoughness),
		nil
}

// samplerOptions maps a glTF sampler. Unset fields keep the linear, repeating defaults.
func samplerOptions(s *gltfSampler) *texture.SamplerOptions {
	opts := &texture.SamplerOptions{}

	if s.MagFilter != nil && *s.MagFilter == gltfFilterNearest {
		opts.MagFilter = common.Ptr(wgpu.FilterModeNearest)
	}
	if s.MinFilter != nil {
		switch *s.MinFilter {
		case gltfFilterNearest, gltfFilterNearestMipmapNearest, gltfFilterNearestMipmapLinear:
			opts.MinFilter = common.Ptr(wgpu.FilterModeNearest)
		case gltfFilterLinear, gltfFilterLinearMipmapNearest, gltfFilterLinearMipmapLinear:
			opts.MinFilter = common.Ptr(wgpu.FilterModeLinear)
		}
		switch *s.MinFilter {
		case gltfFilterNearest, gltfFilterLinear, gltfFilterNearestMipmapNearest, gltfFilterLinearMipmapNearest:
			opts.MipmapFilter = common.Ptr(wgpu.MipmapFilterModeNearest)
		}
	}
	if s.WrapS != nil {
		opts.AddressModeU = addressMode(*s.WrapS)
	}
	if s.WrapT != nil {
		opts.AddressModeV = addressMode(*s.WrapT)
	}
	return opts
}

func addressMode(wrap int) wgpu.AddressMode {
	switch wrap {
	case gltfWrapClampToEdge:
		return wgpu.AddressModeClampToEdge
	case gltfWrapMirroredRepeat:
		return wgpu.AddressModeMirrorRepeat
	default:
		return wgpu.AddressModeRepeat
	}
}
