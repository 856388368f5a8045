/*
Package hash implements the keyed hash primitives consumed by every sketch
engine in this module. Each hasher is a deterministic, pure function of
(seed, bytes); two hashers constructed with distinct seeds are treated as
independent for the purposes of the error analyses in package sketch.
*/
package hash

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
	"github.com/dgryski/go-metro"
)

// Hasher64 produces a 64-bit digest of a byte buffer, keyed by a seed fixed
// at construction. Implementations must be safe for concurrent read-only use.
type Hasher64 interface {
	Seed() uint64
	Sum64(b []byte) uint64
}

// Hasher32 produces a 32-bit digest of a byte buffer, keyed by a seed fixed
// at construction.
type Hasher32 interface {
	Seed() uint32
	Sum32(b []byte) uint32
}

// metroHasher64 is the 64-bit hash family used across HyperLogLog, Bloom and
// Cuckoo. It wraps github.com/dgryski/go-metro, the same hash primitive
// kwertop/gostatix uses for its bloom/cuckoo/hyperloglog hashing.
type metroHasher64 struct {
	seed uint64
}

// NewHasher64 returns a 64-bit hasher keyed by seed. Two hashers built with
// different seeds are independent for bloom/cuckoo double-hashing purposes.
func NewHasher64(seed uint64) Hasher64 {
	return &metroHasher64{seed: seed}
}

func (h *metroHasher64) Seed() uint64 { return h.seed }

func (h *metroHasher64) Sum64(b []byte) uint64 {
	return metro.Hash64(b, h.seed)
}

// xxHasher32 derives a seeded 32-bit digest from xxhash/v2 by folding the
// seed into the digest as an 8-byte little-endian prefix and truncating the
// resulting 64-bit sum. xxhash/v2 only exposes a 64-bit sum in this module
// graph; this keeps xxHash as the fingerprinting family without pulling in
// a second hashing library purely for that purpose.
type xxHasher32 struct {
	seed uint32
}

// NewHasher32 returns a 32-bit hasher keyed by seed, used for Cuckoo filter
// fingerprinting.
func NewHasher32(seed uint32) Hasher32 {
	return &xxHasher32{seed: seed}
}

func (h *xxHasher32) Seed() uint32 { return h.seed }

func (h *xxHasher32) Sum32(b []byte) uint32 {
	var prefix [8]byte
	binary.LittleEndian.PutUint64(prefix[:], uint64(h.seed))
	d := xxhash.New()
	d.Write(prefix[:])
	d.Write(b)
	return uint32(d.Sum64())
}
