// package descriptor contains plain-data descriptions of GPU resources.
// Descriptors hold no GPU handles and are safe to copy, compare, and send
// across goroutines. Each descriptor exposes a stable content hash which the
// resource caches use as identity: two descriptors with identical field
// values always produce identical hashes, regardless of when or where they
// were constructed.
package descriptor

import (
	"encoding/binary"
	"hash"
	"hash/fnv"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// kind bytes prevent descriptors of different kinds with coincidentally
// identical field encodings from colliding on the same hash.
const (
	kindTexture byte = iota + 1
	kindMaterial
	kindMesh
	kindModel
	kindCamera
	kindPointLight
	kindWorldEnvironment
)

// hasher accumulates descriptor fields into an FNV-1a content hash using a
// canonical little-endian encoding. Variable-length fields are length
// prefixed so that adjacent fields cannot alias each other.
type hasher struct {
	h hash.Hash64
}

func newHasher(kind byte) *hasher {
	h := &hasher{h: fnv.New64a()}
	h.h.Write([]byte{kind})
	return h
}

func (h *hasher) sum() uint64 {
	return h.h.Sum64()
}

func (h *hasher) writeUint32(v uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	h.h.Write(buf[:])
}

func (h *hasher) writeUint64(v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	h.h.Write(buf[:])
}

func (h *hasher) writeFloat32(v float32) {
	h.writeUint32(math.Float32bits(v))
}

func (h *hasher) writeVec3(v mgl32.Vec3) {
	h.writeFloat32(v.X())
	h.writeFloat32(v.Y())
	h.writeFloat32(v.Z())
}

func (h *hasher) writeString(s string) {
	h.writeUint64(uint64(len(s)))
	h.h.Write([]byte(s))
}

func (h *hasher) writeBytes(b []byte) {
	h.writeUint64(uint64(len(b)))
	h.h.Write(b)
}

func (h *hasher) writeBool(v bool) {
	if v {
		h.h.Write([]byte{1})
	} else {
		h.h.Write([]byte{0})
	}
}
