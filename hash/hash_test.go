package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasher64Deterministic(t *testing.T) {
	h := NewHasher64(42)
	a := h.Sum64([]byte("alpha"))
	b := h.Sum64([]byte("alpha"))
	assert.Equal(t, a, b)
}

func TestHasher64DistinctSeedsDiverge(t *testing.T) {
	h1 := NewHasher64(1)
	h2 := NewHasher64(2)
	assert.NotEqual(t, h1.Sum64([]byte("same input")), h2.Sum64([]byte("same input")))
}

func TestHasher64Avalanche(t *testing.T) {
	h := NewHasher64(7)
	a := h.Sum64([]byte("item-0000"))
	b := h.Sum64([]byte("item-0001"))
	assert.NotEqual(t, a, b)
}

func TestHasher32Deterministic(t *testing.T) {
	h := NewHasher32(9)
	assert.Equal(t, h.Sum32([]byte("beta")), h.Sum32([]byte("beta")))
}

func TestHasher32DistinctSeedsDiverge(t *testing.T) {
	h1 := NewHasher32(1)
	h2 := NewHasher32(2)
	assert.NotEqual(t, h1.Sum32([]byte("same input")), h2.Sum32([]byte("same input")))
}

func TestHasher32And64AreIndependentSeedSpaces(t *testing.T) {
	h32 := NewHasher32(100)
	h64 := NewHasher64(100)
	assert.Equal(t, uint32(100), h32.Seed())
	assert.Equal(t, uint64(100), h64.Seed())
}
