package model

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/SakulFlee/Orbital-sub000/common"
	"github.com/SakulFlee/Orbital-sub000/engine/renderer/material"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readFloat(buf []byte, offset int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[offset:]))
}

func triangle() *MeshDescriptor {
	return &MeshDescriptor{
		Vertices: []Vertex{
			{Position: mgl32.Vec3{-1, 0, 2}},
			{Position: mgl32.Vec3{3, -2, 0}},
			{Position: mgl32.Vec3{0, 5, -1}},
		},
		Indices: []uint32{0, 1, 2},
	}
}

func TestVertex_Marshal(t *testing.T) {
	v := Vertex{
		Position:  mgl32.Vec3{1, 2, 3},
		Normal:    mgl32.Vec3{0, 1, 0},
		Tangent:   mgl32.Vec3{1, 0, 0},
		Bitangent: mgl32.Vec3{0, 0, 1},
		UV:        mgl32.Vec2{0.25, 0.75},
	}
	buf := v.Marshal()

	require.Len(t, buf, VertexSize)
	assert.Equal(t, float32(3), readFloat(buf, 8))
	assert.Equal(t, float32(1), readFloat(buf, 16))
	assert.Equal(t, float32(1), readFloat(buf, 24))
	assert.Equal(t, float32(1), readFloat(buf, 44))
	assert.Equal(t, float32(0.25), readFloat(buf, 48))
	assert.Equal(t, float32(0.75), readFloat(buf, 52))
}

func TestVertexLayouts(t *testing.T) {
	layouts := VertexLayouts()
	require.Len(t, layouts, 2)
	assert.EqualValues(t, VertexSize, layouts[0].ArrayStride)
	assert.Len(t, layouts[0].Attributes, 5)
	assert.EqualValues(t, InstanceSize, layouts[1].ArrayStride)
	assert.EqualValues(t, 8, layouts[1].Attributes[3].ShaderLocation)
}

func TestMeshDescriptor_Validate(t *testing.T) {
	assert.NoError(t, triangle().Validate())
	assert.NoError(t, Cube(1).Validate())

	tests := []struct {
		name string
		mesh *MeshDescriptor
	}{
		{"no vertices", &MeshDescriptor{Indices: []uint32{0, 1, 2}}},
		{"no indices", &MeshDescriptor{Vertices: triangle().Vertices}},
		{"partial triangle", &MeshDescriptor{Vertices: triangle().Vertices, Indices: []uint32{0, 1}}},
		{"index out of range", &MeshDescriptor{Vertices: triangle().Vertices, Indices: []uint32{0, 1, 3}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.mesh.Validate()
			assert.True(t, errors.Is(err, common.ErrInvalidMesh), "got %v", err)
		})
	}
}

func TestMeshDescriptor_BoundingBox(t *testing.T) {
	box := triangle().BoundingBox()
	assert.Equal(t, mgl32.Vec3{-1, -2, -1}, box.Min)
	assert.Equal(t, mgl32.Vec3{3, 5, 2}, box.Max)

	buf := box.Marshal()
	require.Len(t, buf, BoundingBoxSize)
	assert.Equal(t, float32(-2), readFloat(buf, 4))
	assert.Equal(t, float32(1), readFloat(buf, 12))
	assert.Equal(t, float32(5), readFloat(buf, 20))

	cube := Cube(2).BoundingBox()
	assert.Equal(t, mgl32.Vec3{-1, -1, -1}, cube.Min)
	assert.Equal(t, mgl32.Vec3{1, 1, 1}, cube.Max)

	assert.Equal(t, BoundingBox{}, (&MeshDescriptor{}).BoundingBox())
}

func TestMeshDescriptor_Hash(t *testing.T) {
	assert.Equal(t, triangle().Hash(), triangle().Hash())

	moved := triangle()
	moved.Vertices[0].Position[0] = 10
	assert.NotEqual(t, triangle().Hash(), moved.Hash())
}

func TestMeshDescriptor_HashIsCached(t *testing.T) {
	m := Cube(1)
	first := m.Hash()
	require.NotZero(t, first)

	m.Vertices[0].Position[0] = 42
	assert.Equal(t, first, m.Hash(), "meshes are immutable once hashed")
	assert.NotEqual(t, first, Cube(2).Hash())
}

func TestMeshDescriptor_WireframeIndices(t *testing.T) {
	quad := &MeshDescriptor{
		Vertices: make([]Vertex, 4),
		Indices:  []uint32{0, 1, 2, 0, 2, 3},
	}
	lines := quad.WireframeIndices()
	// Four outer edges plus the shared diagonal once.
	assert.Len(t, lines, 10)

	// Faces do not share vertices, so each contributes its own five edges.
	assert.Len(t, Cube(1).WireframeIndices(), 2*6*5)
}

func TestCube(t *testing.T) {
	cube := Cube(1)
	assert.Len(t, cube.Vertices, 24)
	assert.Len(t, cube.Indices, 36)
	for _, v := range cube.Vertices {
		assert.InDelta(t, 0.5, v.Position.Dot(v.Normal), 1e-6)
		assert.InDelta(t, 0, v.Tangent.Dot(v.Normal), 1e-6)
	}

	// Triangles wind counter-clockwise seen from outside.
	for i := 0; i < len(cube.Indices); i += 3 {
		a := cube.Vertices[cube.Indices[i]]
		b := cube.Vertices[cube.Indices[i+1]]
		c := cube.Vertices[cube.Indices[i+2]]
		faceNormal := b.Position.Sub(a.Position).Cross(c.Position.Sub(a.Position))
		assert.Greater(t, faceNormal.Dot(a.Normal), float32(0))
	}
}

func TestTransform_Matrix(t *testing.T) {
	tr := Transform{
		Position: mgl32.Vec3{1, 2, 3},
		Rotation: mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 1, 0}),
		Scale:    mgl32.Vec3{2, 2, 2},
	}
	p := tr.Matrix().Mul4x1(mgl32.Vec4{1, 0, 0, 1})
	assert.InDelta(t, 1, p[0], 1e-5)
	assert.InDelta(t, 2, p[1], 1e-5)
	assert.InDelta(t, 1, p[2], 1e-5)

	// A zero rotation quaternion is treated as identity.
	zero := Transform{Scale: mgl32.Vec3{1, 1, 1}}
	assert.True(t, zero.Matrix().ApproxEqual(mgl32.Ident4()))
}

func TestTransform_Apply(t *testing.T) {
	base := At(mgl32.Vec3{1, 1, 1})

	moved := base.Apply(*common.Offset(Transform{Position: mgl32.Vec3{1, 0, -1}}))
	assert.Equal(t, mgl32.Vec3{2, 1, 0}, moved.Position)
	assert.Equal(t, base.Scale, moved.Scale)
	assert.True(t, moved.Rotation.ApproxEqual(base.Rotation))

	turn := mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 1, 0})
	turned := base.Apply(*common.OffsetViewAligned(Transform{Rotation: turn}))
	assert.True(t, turned.Rotation.ApproxEqualThreshold(turn, 1e-5))

	replaced := base.Apply(*common.Overwrite(At(mgl32.Vec3{9, 9, 9})))
	assert.Equal(t, mgl32.Vec3{9, 9, 9}, replaced.Position)
}

func TestMarshalInstances(t *testing.T) {
	buf := MarshalInstances([]InstanceTransform{
		NewInstance(At(mgl32.Vec3{4, 5, 6})),
		NewInstance(IdentityTransform()),
	})
	require.Len(t, buf, 2*InstanceSize)
	// Column-major: translation lives in the fourth column.
	assert.Equal(t, float32(4), readFloat(buf, 48))
	assert.Equal(t, float32(6), readFloat(buf, 56))
	assert.Equal(t, float32(1), readFloat(buf, InstanceSize))
}

func positions(d *Descriptor) []float32 {
	out := make([]float32, len(d.Transforms))
	for i, t := range d.Transforms {
		out[i] = t.Transform.Position[0]
	}
	return out
}

func TestDescriptor_TransformTable(t *testing.T) {
	d := NewDescriptor("m", triangle())
	require.Equal(t, 1, d.InstanceCount())
	require.Len(t, d.Materials, 1)

	ids := d.SetTransforms(At(mgl32.Vec3{0, 0, 0}), At(mgl32.Vec3{1, 0, 0}), At(mgl32.Vec3{2, 0, 0}))
	assert.Len(t, ids, 3)
	assert.Equal(t, []float32{0, 1, 2}, positions(d))

	assert.True(t, d.SetTransformAt(1, At(mgl32.Vec3{10, 0, 0})))
	assert.False(t, d.SetTransformAt(3, At(mgl32.Vec3{})))
	assert.Equal(t, ids[1], d.Transforms[1].ID)
	assert.Equal(t, []float32{0, 10, 2}, positions(d))

	d.ApplyTransform(*common.Offset(Transform{Position: mgl32.Vec3{1, 0, 0}}))
	assert.Equal(t, []float32{1, 11, 3}, positions(d))

	assert.True(t, d.ApplyTransformAt(0, *common.Overwrite(At(mgl32.Vec3{-5, 0, 0}))))
	assert.False(t, d.ApplyTransformAt(-1, *common.Overwrite(At(mgl32.Vec3{}))))
	assert.Equal(t, []float32{-5, 11, 3}, positions(d))

	more := d.AddTransforms(At(mgl32.Vec3{20, 0, 0}), At(mgl32.Vec3{30, 0, 0}))
	assert.Equal(t, []float32{-5, 11, 3, 20, 30}, positions(d))

	assert.Equal(t, 2, d.RemoveTransformsAt(3, 1, 1, 99))
	assert.Equal(t, []float32{-5, 3, 30}, positions(d))
	assert.Equal(t, 2, d.IndexOf(more[1]))

	assert.True(t, d.RemoveTransformByID(ids[0]))
	assert.False(t, d.RemoveTransformByID(ids[0]))
	assert.False(t, d.RemoveTransformByID(uuid.New()))
	assert.Equal(t, []float32{3, 30}, positions(d))

	assert.True(t, d.ApplyTransformByID(more[1], *common.Offset(Transform{Position: mgl32.Vec3{1, 0, 0}})))
	assert.Equal(t, []float32{3, 31}, positions(d))
}

func TestDescriptor_Clone(t *testing.T) {
	d := NewDescriptor("m", triangle(), WithTransforms(At(mgl32.Vec3{1, 0, 0})))
	c := d.Clone()
	c.SetTransformAt(0, At(mgl32.Vec3{7, 0, 0}))
	c.AddTransforms(IdentityTransform())

	assert.Equal(t, []float32{1}, positions(d))
	assert.Equal(t, []float32{7, 0}, positions(c))
	assert.Same(t, d.Mesh, c.Mesh)
}

func TestDescriptor_InstanceHash(t *testing.T) {
	red := material.NewDescriptor("red", material.WithAlbedo([4]float32{1, 0, 0, 1}))
	blue := material.NewDescriptor("blue", material.WithAlbedo([4]float32{0, 0, 1, 1}))

	a := NewDescriptor("a", triangle(), WithMaterials(red), WithTransforms(At(mgl32.Vec3{1, 0, 0})))
	b := NewDescriptor("b", triangle(), WithMaterials(red), WithTransforms(At(mgl32.Vec3{5, 0, 0})))
	assert.Equal(t, a.InstanceHash(), b.InstanceHash(), "label and transforms are ignored")

	c := NewDescriptor("c", triangle(), WithMaterials(blue))
	assert.NotEqual(t, a.InstanceHash(), c.InstanceHash())

	d := NewDescriptor("d", Cube(1), WithMaterials(red))
	assert.NotEqual(t, a.InstanceHash(), d.InstanceHash())
}
