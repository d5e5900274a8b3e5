package loader

import (
	"fmt"

	"github.com/SakulFlee/Orbital-sub000/common"
	"github.com/SakulFlee/Orbital-sub000/engine/model"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// degenerateEpsilon is the length below which accumulated normals and tangents
// are replaced by a fallback axis.
const degenerateEpsilon = 1e-6

// extractMesh converts one triangle primitive into a mesh descriptor. Missing
// normals are generated from the geometry and missing tangents from the UVs.
// Non-indexed primitives are drawn with sequential indices.
//
// Parameters:
//   - f: the parsed asset
//   - prim: the primitive to convert
//
// Returns:
//   - *model.MeshDescriptor: the validated mesh
//   - error: wraps common.ErrGltfParse or common.ErrInvalidMesh
func extractMesh(f *gltfFile, prim *gltfPrimitive) (*model.MeshDescriptor, error) {
	if prim.Mode != nil && *prim.Mode != gltfPrimitiveModeTriangles {
		return nil, fmt.Errorf("%w: primitive mode %d is not a triangle list", common.ErrGltfParse, *prim.Mode)
	}

	positionIndex, ok := prim.Attributes["POSITION"]
	if !ok {
		return nil, fmt.Errorf("%w: primitive has no POSITION attribute", common.ErrGltfParse)
	}
	positions, err := f.readFloats(positionIndex, gltfAccessorTypeVec3)
	if err != nil {
		return nil, fmt.Errorf("reading positions: %w", err)
	}

	vertices := make([]model.Vertex, len(positions)/3)
	for i := range vertices {
		vertices[i].Position = mgl32.Vec3{positions[i*3], positions[i*3+1], positions[i*3+2]}
	}

	var indices []uint32
	if prim.Indices != nil {
		if indices, err = f.readIndices(*prim.Indices); err != nil {
			return nil, fmt.Errorf("reading indices: %w", err)
		}
	} else {
		indices = make([]uint32, len(vertices))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}

	if uvIndex, ok := prim.Attributes["TEXCOORD_0"]; ok {
		uvs, err := f.readFloats(uvIndex, gltfAccessorTypeVec2)
		if err != nil {
			return nil, fmt.Errorf("reading uvs: %w", err)
		}
		for i := range vertices {
			if i*2+1 < len(uvs) {
				vertices[i].UV = mgl32.Vec2{uvs[i*2], uvs[i*2+1]}
			}
		}
	}

	if normalIndex, ok := prim.Attributes["NORMAL"]; ok {
		normals, err := f.readFloats(normalIndex, gltfAccessorTypeVec3)
		if err != nil {
			return nil, fmt.Errorf("reading normals: %w", err)
		}
		for i := range vertices {
			if i*3+2 < len(normals) {
				vertices[i].Normal = mgl32.Vec3{normals[i*3], normals[i*3+1], normals[i*3+2]}
			}
		}
	} else {
		generateNormals(vertices, indices)
	}

	if tangentIndex, ok := prim.Attributes["TANGENT"]; ok {
		tangents, err := f.readFloats(tangentIndex, gltfAccessorTypeVec4)
		if err != nil {
			return nil, fmt.Errorf("reading tangents: %w", err)
		}
		for i := range vertices {
			if i*4+3 >= len(tangents) {
				break
			}
			t := mgl32.Vec3{tangents[i*4], tangents[i*4+1], tangents[i*4+2]}
			vertices[i].Tangent = t
			vertices[i].Bitangent = vertices[i].Normal.Cross(t).Mul(tangents[i*4+3])
		}
	} else {
		generateTangents(vertices, indices)
	}

	mesh := &model.MeshDescriptor{Vertices: vertices, Indices: indices}
	if err := mesh.Validate(); err != nil {
		return nil, err
	}
	return mesh, nil
}

// generateNormals accumulates area-weighted face normals onto every vertex of
// each triangle and normalizes the sums.
func generateNormals(vertices []model.Vertex, indices []uint32) {
	accum := make([]mgl32.Vec3, len(vertices))
	forEachTriangle(len(vertices), indices, func(a, b, c uint32) {
		p0 := vertices[a].Position
		face := vertices[b].Position.Sub(p0).Cross(vertices[c].Position.Sub(p0))
		accum[a] = accum[a].Add(face)
		accum[b] = accum[b].Add(face)
		accum[c] = accum[c].Add(face)
	})

	for i, n := range accum {
		if n.Len() < degenerateEpsilon {
			vertices[i].Normal = mgl32.Vec3{0, 1, 0}
			continue
		}
		vertices[i].Normal = n.Normalize()
	}
}

// generateTangents derives tangents from the UV gradients of each triangle,
// orthonormalizes them against the vertex normal with Gram-Schmidt and sets the
// bitangent to cross(N, T) signed by the UV handedness.
func generateTangents(vertices []model.Vertex, indices []uint32) {
	tangents := make([]mgl32.Vec3, len(vertices))
	bitangents := make([]mgl32.Vec3, len(vertices))

	forEachTriangle(len(vertices), indices, func(a, b, c uint32) {
		v0, v1, v2 := vertices[a], vertices[b], vertices[c]
		e1, e2 := v1.Position.Sub(v0.Position), v2.Position.Sub(v0.Position)
		d1, d2 := v1.UV.Sub(v0.UV), v2.UV.Sub(v0.UV)

		det := d1[0]*d2[1] - d1[1]*d2[0]
		if math32.Abs(det) < degenerateEpsilon {
			return
		}
		r := 1 / det
		t := e1.Mul(d2[1]).Sub(e2.Mul(d1[1])).Mul(r)
		bt := e2.Mul(d1[0]).Sub(e1.Mul(d2[0])).Mul(r)

		for _, i := range [3]uint32{a, b, c} {
			tangents[i] = tangents[i].Add(t)
			bitangents[i] = bitangents[i].Add(bt)
		}
	})

	for i := range vertices {
		n := vertices[i].Normal
		t := tangents[i].Sub(n.Mul(n.Dot(tangents[i])))
		if t.Len() < degenerateEpsilon {
			t = fallbackTangent(n)
		} else {
			t = t.Normalize()
		}

		handedness := float32(1)
		if n.Cross(t).Dot(bitangents[i]) < 0 {
			handedness = -1
		}
		vertices[i].Tangent = t
		vertices[i].Bitangent = n.Cross(t).Mul(handedness)
	}
}

// fallbackTangent returns an axis perpendicular to n.
func fallbackTangent(n mgl32.Vec3) mgl32.Vec3 {
	axis := mgl32.Vec3{1, 0, 0}
	if math32.Abs(n.X()) > 0.9 {
		axis = mgl32.Vec3{0, 1, 0}
	}
	t := axis.Sub(n.Mul(n.Dot(axis)))
	if t.Len() < degenerateEpsilon {
		return mgl32.Vec3{1, 0, 0}
	}
	return t.Normalize()
}

// forEachTriangle calls fn for every complete, in-range triangle of indices.
func forEachTriangle(vertexCount int, indices []uint32, fn func(a, b, c uint32)) {
	n := uint32(vertexCount)
	for i := 0; i+2 < len(indices); i += 3 {
		a, b, c := indices[i], indices[i+1], indices[i+2]
		if a >= n || b >= n || c >= n {
			continue
		}
		fn(a, b, c)
	}
}
