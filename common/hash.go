package common

import (
	"encoding/binary"
	"hash"
	"hash/fnv"
	"math"
)

// Hasher accumulates a stable 64-bit content hash (FNV-1a). The result is stable
// across processes and platforms, so it can key on-disk caches.
type Hasher struct {
	h   hash.Hash64
	buf [8]byte
}

// NewHasher creates an empty Hasher.
func NewHasher() *Hasher {
	return &Hasher{h: fnv.New64a()}
}

func (h *Hasher) WriteBytes(b []byte) *Hasher {
	h.WriteUint64(uint64(len(b)))
	h.h.Write(b)
	return h
}

func (h *Hasher) WriteString(s string) *Hasher {
	return h.WriteBytes([]byte(s))
}

func (h *Hasher) WriteUint32(v uint32) *Hasher {
	binary.LittleEndian.PutUint32(h.buf[:4], v)
	h.h.Write(h.buf[:4])
	return h
}

func (h *Hasher) WriteUint64(v uint64) *Hasher {
	binary.LittleEndian.PutUint64(h.buf[:], v)
	h.h.Write(h.buf[:])
	return h
}

func (h *Hasher) WriteBool(v bool) *Hasher {
	if v {
		return h.WriteUint32(1)
	}
	return h.WriteUint32(0)
}

func (h *Hasher) WriteFloat32(v float32) *Hasher {
	return h.WriteUint32(math.Float32bits(v))
}

func (h *Hasher) WriteFloat32s(vs ...float32) *Hasher {
	for _, v := range vs {
		h.WriteFloat32(v)
	}
	return h
}

// Sum64 returns the hash of everything written so far.
func (h *Hasher) Sum64() uint64 {
	return h.h.Sum64()
}
