package sketch

import (
	"math"

	"github.com/dustin/go-humanize"

	"github.com/kwertop/sketches/bitset"
	"github.com/kwertop/sketches/hash"
	"github.com/kwertop/sketches/serialize"
)

// defaultBloomSeed1/2 are two large, visibly-distinct odd constants, rather
// than 0 and 1, used as default hash seeds.
const (
	defaultBloomSeed1 uint64 = 1<<20 - 3
	defaultBloomSeed2 uint64 = 1<<64 - 59
)

// BloomFilter answers approximate membership queries with zero false
// negatives, using k probe bits per item chosen by enhanced double hashing.
type BloomFilter struct {
	numBits   uint64
	numHashes uint64
	bits      *bitset.Dense

	hasher1 hash.Hasher64
	hasher2 hash.Hasher64

	serializer serialize.Func
}

// NewBloomFilter sizes a filter for expectedItems insertions at
// falsePositiveRate, using the default serializer and seeds.
func NewBloomFilter(expectedItems uint64, falsePositiveRate float64) (*BloomFilter, error) {
	return NewBloomFilterWithSerializer(expectedItems, falsePositiveRate, defaultBloomSeed1, defaultBloomSeed2, serialize.Default)
}

// NewBloomFilterWithSeeds is NewBloomFilter with explicit hash seeds, so two
// filters built independently can be checked for merge compatibility.
func NewBloomFilterWithSeeds(expectedItems uint64, falsePositiveRate float64, seed1, seed2 uint64) (*BloomFilter, error) {
	return NewBloomFilterWithSerializer(expectedItems, falsePositiveRate, seed1, seed2, serialize.Default)
}

// NewBloomFilterWithSerializer gives full control over seeds and serializer.
func NewBloomFilterWithSerializer(expectedItems uint64, falsePositiveRate float64, seed1, seed2 uint64, serializer serialize.Func) (*BloomFilter, error) {
	if falsePositiveRate <= 0 || falsePositiveRate >= 1 {
		return nil, errorfSketch("bloom filter: target false positive rate must be in (0, 1), got %v", falsePositiveRate)
	}
	numBits := calculateBitArraySize(expectedItems, falsePositiveRate)
	numHashes := calculateNumHashes(falsePositiveRate)
	return &BloomFilter{
		numBits:    numBits,
		numHashes:  numHashes,
		bits:       bitset.New(uint(numBits)),
		hasher1:    hash.NewHasher64(seed1),
		hasher2:    hash.NewHasher64(seed2),
		serializer: serializer,
	}, nil
}

// calculateBitArraySize returns m = ceil(-n*ln(p) / ln(2)^2), at least 1.
func calculateBitArraySize(n uint64, p float64) uint64 {
	m := math.Ceil(-float64(n) * math.Log(p) / (math.Ln2 * math.Ln2))
	if m < 1 {
		return 1
	}
	return uint64(m)
}

// calculateNumHashes returns k = ceil(-log2(p)), at least 1.
func calculateNumHashes(p float64) uint64 {
	k := math.Ceil(-math.Log2(p))
	if k < 1 {
		return 1
	}
	return uint64(k)
}

// probePosition returns the i-th probe position via enhanced double hashing:
// (h1 + i*h2 + i^2) mod m. The i^2 term defeats certain correlated-hash
// pathologies that plain h1 + i*h2 is vulnerable to.
func (bf *BloomFilter) probePosition(h1, h2, i uint64) uint64 {
	return (h1 + i*h2 + i*i) % bf.numBits
}

// Add sets all k probe bits for item.
func (bf *BloomFilter) Add(item any) error {
	data, err := bf.serializer(item)
	if err != nil {
		return err
	}
	h1, h2 := bf.hasher1.Sum64(data), bf.hasher2.Sum64(data)
	for i := uint64(0); i < bf.numHashes; i++ {
		bf.bits.Set(uint(bf.probePosition(h1, h2, i)))
	}
	return nil
}

// Contains returns true iff every one of item's k probe bits is set. Because
// bits are only ever set, never individually cleared, a true return can be a
// false positive but a false return is certain.
func (bf *BloomFilter) Contains(item any) (bool, error) {
	data, err := bf.serializer(item)
	if err != nil {
		return false, err
	}
	h1, h2 := bf.hasher1.Sum64(data), bf.hasher2.Sum64(data)
	for i := uint64(0); i < bf.numHashes; i++ {
		if !bf.bits.Test(uint(bf.probePosition(h1, h2, i))) {
			return false, nil
		}
	}
	return true, nil
}

// MergeWith bitwise-ORs other's bit array into bf. Both filters must share
// the same bit-array size and hash seeds; a mismatch panics, as parameter
// mismatches on merge are programmer errors.
func (bf *BloomFilter) MergeWith(other Filter) error {
	o, ok := other.(*BloomFilter)
	if !ok {
		parameterMismatch("cannot merge BloomFilter with %T", other)
	}
	if bf.numBits != o.numBits {
		parameterMismatch("bloom filter sizes don't match, %d and %d", bf.numBits, o.numBits)
	}
	if bf.hasher1.Seed() != o.hasher1.Seed() || bf.hasher2.Seed() != o.hasher2.Seed() {
		parameterMismatch("bloom filter hash seeds don't match")
	}
	if err := bf.bits.Or(o.bits); err != nil {
		parameterMismatch("%v", err)
	}
	return nil
}

// Clear unsets every bit, returning bf to the state NewBloomFilter would
// have produced for the same parameters.
func (bf *BloomFilter) Clear() {
	bf.bits.ClearAll()
}

// NumBits returns m, the size of the underlying bit array.
func (bf *BloomFilter) NumBits() uint64 {
	return bf.numBits
}

// NumHashes returns k, the number of probe positions per item.
func (bf *BloomFilter) NumHashes() uint64 {
	return bf.numHashes
}

// EstimatedFalsePositiveRate approximates the current false-positive
// probability from the observed fraction of set bits, (bitsSet/m)^k.
func (bf *BloomFilter) EstimatedFalsePositiveRate() float64 {
	fractionSet := float64(bf.bits.Count()) / float64(bf.numBits)
	return math.Pow(fractionSet, float64(bf.numHashes))
}

// Stats returns a human-readable summary of bf's memory footprint.
func (bf *BloomFilter) Stats() string {
	return humanize.Bytes((bf.numBits + 7) / 8)
}
