package model

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Cube returns a cube centred on the origin with the given edge length. Each face has its
// own four vertices so normals, tangents and UVs are flat per face.
func Cube(size float32) *MeshDescriptor {
	h := size / 2
	faces := []struct {
		normal, tangent mgl32.Vec3
	}{
		{mgl32.Vec3{1, 0, 0}, mgl32.Vec3{0, 0, -1}},
		{mgl32.Vec3{-1, 0, 0}, mgl32.Vec3{0, 0, 1}},
		{mgl32.Vec3{0, 1, 0}, mgl32.Vec3{1, 0, 0}},
		{mgl32.Vec3{0, -1, 0}, mgl32.Vec3{1, 0, 0}},
		{mgl32.Vec3{0, 0, 1}, mgl32.Vec3{1, 0, 0}},
		{mgl32.Vec3{0, 0, -1}, mgl32.Vec3{-1, 0, 0}},
	}
	corners := [4]mgl32.Vec2{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}

	mesh := &MeshDescriptor{
		Vertices: make([]Vertex, 0, 24),
		Indices:  make([]uint32, 0, 36),
	}
	for _, f := range faces {
		bitangent := f.normal.Cross(f.tangent)
		base := uint32(len(mesh.Vertices))
		for _, c := range corners {
			p := f.normal.Add(f.tangent.Mul(c[0])).Add(bitangent.Mul(c[1])).Mul(h)
			mesh.Vertices = append(mesh.Vertices, Vertex{
				Position:  p,
				Normal:    f.normal,
				Tangent:   f.tangent,
				Bitangent: bitangent,
				UV:        mgl32.Vec2{(c[0] + 1) / 2, (1 - c[1]) / 2},
			})
		}
		mesh.Indices = append(mesh.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	return mesh
}
