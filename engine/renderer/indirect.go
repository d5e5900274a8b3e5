package renderer

import (
	"encoding/binary"
)

// DrawIndexedIndirectSize is the byte size of one DrawIndexedIndirect record.
const DrawIndexedIndirectSize = 20

// CullParamsSize is the byte size of the cull shader's params uniform.
const CullParamsSize = 16

// DrawIndexedIndirect mirrors the GPU's indexed indirect draw arguments.
type DrawIndexedIndirect struct {
	IndexCount    uint32
	InstanceCount uint32
	FirstIndex    uint32
	BaseVertex    int32
	FirstInstance uint32
}

// Marshal encodes the record as 20 little-endian bytes.
func (d DrawIndexedIndirect) Marshal() []byte {
	buf := make([]byte, DrawIndexedIndirectSize)
	d.put(buf)
	return buf
}

func (d DrawIndexedIndirect) put(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:4], d.IndexCount)
	binary.LittleEndian.PutUint32(buf[4:8], d.InstanceCount)
	binary.LittleEndian.PutUint32(buf[8:12], d.FirstIndex)
	binary.LittleEndian.PutUint32(buf[12:16], uint32(d.BaseVertex))
	binary.LittleEndian.PutUint32(buf[16:20], d.FirstInstance)
}

// MarshalDraws packs records back to back, record i starting at i*DrawIndexedIndirectSize.
func MarshalDraws(draws []DrawIndexedIndirect) []byte {
	buf := make([]byte, len(draws)*DrawIndexedIndirectSize)
	for i, d := range draws {
		d.put(buf[i*DrawIndexedIndirectSize:])
	}
	return buf
}

// IndirectOffset returns the byte offset of the record at index.
func IndirectOffset(index int) uint64 {
	return uint64(index) * DrawIndexedIndirectSize
}

// CullParams is the per-model uniform of the cull shader.
type CullParams struct {
	DrawIndex     uint32
	InstanceCount uint32
}

// Marshal encodes {draw_index, instance_count, pad, pad}.
func (p CullParams) Marshal() []byte {
	buf := make([]byte, CullParamsSize)
	binary.LittleEndian.PutUint32(buf[0:4], p.DrawIndex)
	binary.LittleEndian.PutUint32(buf[4:8], p.InstanceCount)
	return buf
}
