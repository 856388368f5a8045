package sketch

import (
	"math"
	"math/rand"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/kwertop/sketches/bitset"
	"github.com/kwertop/sketches/hash"
	"github.com/kwertop/sketches/serialize"
)

const (
	// DefaultBucketSize is β, the default number of fingerprint slots per bucket.
	DefaultBucketSize = 4
	// DefaultMaxKicks bounds the eviction chain length before Add gives up.
	DefaultMaxKicks = 1024
	// maxFingerprintBits is the widest fingerprint this filter supports.
	maxFingerprintBits = 32

	defaultCuckooFingerprintSeed uint32 = 1<<11 - 9
	defaultCuckooBucketSeed      uint64 = 1<<20 - 3
)

// CuckooFilter answers approximate membership queries with support for
// deletion: each item is reduced to a short fingerprint stored in one of two
// candidate buckets, with eviction ("kicking") used to resolve collisions.
type CuckooFilter struct {
	fingerprintBits uint
	bucketSize      uint64
	numBuckets      uint64
	bucketMask      uint64
	maxKicks        uint64

	bits              *bitset.Dense
	occupancy         []uint8
	fpMask            uint32
	fingerprintHasher hash.Hasher32
	bucketHasher      hash.Hasher64
	serializer        serialize.Func
	rng               *rand.Rand
}

// CuckooOption customizes a CuckooFilter at construction time.
type CuckooOption func(*cuckooConfig)

type cuckooConfig struct {
	bucketSize      uint64
	maxKicks        uint64
	fingerprintBits uint
	fingerprintSeed uint32
	bucketSeed      uint64
	serializer      serialize.Func
	rng             *rand.Rand
}

// WithBucketSize overrides β, the number of fingerprint slots per bucket.
func WithBucketSize(bucketSize uint64) CuckooOption {
	return func(c *cuckooConfig) { c.bucketSize = bucketSize }
}

// WithMaxKicks overrides the eviction chain bound.
func WithMaxKicks(maxKicks uint64) CuckooOption {
	return func(c *cuckooConfig) { c.maxKicks = maxKicks }
}

// WithFingerprintBits pins f instead of deriving it from expected item count
// and target false positive rate.
func WithFingerprintBits(bits uint) CuckooOption {
	return func(c *cuckooConfig) { c.fingerprintBits = bits }
}

// WithCuckooSeeds overrides the fingerprinting and bucket hash seeds.
func WithCuckooSeeds(fingerprintSeed uint32, bucketSeed uint64) CuckooOption {
	return func(c *cuckooConfig) { c.fingerprintSeed, c.bucketSeed = fingerprintSeed, bucketSeed }
}

// WithCuckooSerializer overrides the item serializer.
func WithCuckooSerializer(serializer serialize.Func) CuckooOption {
	return func(c *cuckooConfig) { c.serializer = serializer }
}

// WithRandSource pins the PRNG used for eviction-victim and initial-bucket
// choices, for reproducible tests. Production callers may omit this and get
// a per-process random seed.
func WithRandSource(rng *rand.Rand) CuckooOption {
	return func(c *cuckooConfig) { c.rng = rng }
}

// NewCuckooFilter sizes a filter for expectedItems insertions from a
// targetTotalBits storage budget at falsePositiveRate, deriving the
// fingerprint width and bucket count per spec. Bucket count is rounded up to
// a power of two so the i1/i2 XOR-addressing symmetry is exact; the table can
// therefore use up to twice targetTotalBits.
func NewCuckooFilter(expectedItems, targetTotalBits uint64, falsePositiveRate float64, opts ...CuckooOption) (*CuckooFilter, error) {
	cfg := &cuckooConfig{
		bucketSize:      DefaultBucketSize,
		maxKicks:        DefaultMaxKicks,
		fingerprintSeed: defaultCuckooFingerprintSeed,
		bucketSeed:      defaultCuckooBucketSeed,
		serializer:      serialize.Default,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.fingerprintBits == 0 {
		cfg.fingerprintBits = fingerprintBitsFor(expectedItems, falsePositiveRate, cfg.bucketSize)
	}
	if cfg.fingerprintBits < 1 || cfg.fingerprintBits > maxFingerprintBits {
		return nil, errorfSketch("cuckoo filter: fingerprint bits must be in [1, %d], got %d", maxFingerprintBits, cfg.fingerprintBits)
	}
	if cfg.bucketSize == 0 || cfg.bucketSize > 255 {
		return nil, errorfSketch("cuckoo filter: bucket size must be in [1, 255], got %d", cfg.bucketSize)
	}

	rawBuckets := targetTotalBits / (cfg.bucketSize * uint64(cfg.fingerprintBits))
	numBuckets := nearestPowerOfTwo(rawBuckets, 1)

	if cfg.rng == nil {
		cfg.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	cf := &CuckooFilter{
		fingerprintBits:   cfg.fingerprintBits,
		bucketSize:        cfg.bucketSize,
		numBuckets:        numBuckets,
		bucketMask:        numBuckets - 1,
		maxKicks:          cfg.maxKicks,
		bits:              bitset.New(uint(numBuckets * cfg.bucketSize * uint64(cfg.fingerprintBits))),
		occupancy:         make([]uint8, numBuckets),
		fpMask:            uint32(1<<cfg.fingerprintBits - 1),
		fingerprintHasher: hash.NewHasher32(cfg.fingerprintSeed),
		bucketHasher:      hash.NewHasher64(cfg.bucketSeed),
		serializer:        cfg.serializer,
		rng:               cfg.rng,
	}
	return cf, nil
}

// fingerprintBitsFor derives f = ceil(max(ln(n/β), log2(β/p))), clamped to
// [1, 32].
func fingerprintBitsFor(expectedItems uint64, falsePositiveRate float64, bucketSize uint64) uint {
	lowerBoundByLoad := math.Log(float64(expectedItems) / float64(bucketSize))
	lowerBoundByFPRate := math.Log2(float64(bucketSize) / falsePositiveRate)
	f := math.Ceil(math.Max(lowerBoundByLoad, lowerBoundByFPRate))
	if f < 1 {
		f = 1
	}
	if f > maxFingerprintBits {
		f = maxFingerprintBits
	}
	return uint(f)
}

// fingerprint reduces data to an f-bit fingerprint. A raw value of zero is
// folded to 1 so the all-zero fingerprint never appears in storage; this is
// applied uniformly as an alternative to reserving fingerprint zero to mean
// "empty slot".
func (cf *CuckooFilter) fingerprint(data []byte) uint32 {
	fp := cf.fingerprintHasher.Sum32(data) & cf.fpMask
	if fp == 0 {
		fp = 1
	}
	return fp
}

func (cf *CuckooFilter) bucketHashOfFingerprint(fp uint32) uint64 {
	var b [4]byte
	b[0], b[1], b[2], b[3] = byte(fp), byte(fp>>8), byte(fp>>16), byte(fp>>24)
	return cf.bucketHasher.Sum64(b[:])
}

func (cf *CuckooFilter) candidateBuckets(data []byte, fp uint32) (uint64, uint64) {
	i1 := cf.bucketHasher.Sum64(data) & cf.bucketMask
	i2 := (i1 ^ cf.bucketHashOfFingerprint(fp)) & cf.bucketMask
	return i1, i2
}

func (cf *CuckooFilter) slotOffset(bucket uint64, slot uint8) uint {
	return uint((bucket*cf.bucketSize + uint64(slot)) * uint64(cf.fingerprintBits))
}

func (cf *CuckooFilter) getSlot(bucket uint64, slot uint8) uint32 {
	v, _ := cf.bits.GetRange(cf.slotOffset(bucket, slot), cf.fingerprintBits)
	return v
}

func (cf *CuckooFilter) setSlot(bucket uint64, slot uint8, fp uint32) {
	_ = cf.bits.SetRange(cf.slotOffset(bucket, slot), cf.fingerprintBits, fp)
}

func (cf *CuckooFilter) bucketIndexOf(bucket uint64, fp uint32) int {
	for slot := uint8(0); slot < cf.occupancy[bucket]; slot++ {
		if cf.getSlot(bucket, slot) == fp {
			return int(slot)
		}
	}
	return -1
}

// Add inserts item, fingerprinting it and placing it in one of its two
// candidate buckets, evicting an existing fingerprint into its alternate
// bucket (a "kick") up to MaxKicks times if both candidates are full. Both
// candidate buckets are checked for a free slot before any kicking starts,
// rather than always preferring the first candidate.
func (cf *CuckooFilter) Add(item any) error {
	data, err := cf.serializer(item)
	if err != nil {
		return err
	}
	fp := cf.fingerprint(data)
	i1, i2 := cf.candidateBuckets(data, fp)

	if cf.occupancy[i1] < uint8(cf.bucketSize) {
		cf.appendToBucket(i1, fp)
		return nil
	}
	if cf.occupancy[i2] < uint8(cf.bucketSize) {
		cf.appendToBucket(i2, fp)
		return nil
	}

	current := i1
	if cf.rng.Float32() < 0.5 {
		current = i2
	}
	for kicks := uint64(0); kicks < cf.maxKicks; kicks++ {
		victimSlot := uint8(cf.rng.Intn(int(cf.bucketSize)))
		victim := cf.getSlot(current, victimSlot)
		cf.setSlot(current, victimSlot, fp)
		fp = victim
		current = (current ^ cf.bucketHashOfFingerprint(fp)) & cf.bucketMask
		if cf.occupancy[current] < uint8(cf.bucketSize) {
			cf.appendToBucket(current, fp)
			return nil
		}
	}
	return &InsertionFailureError{Fingerprint: fp, Kicks: cf.maxKicks}
}

func (cf *CuckooFilter) appendToBucket(bucket uint64, fp uint32) {
	cf.setSlot(bucket, cf.occupancy[bucket], fp)
	cf.occupancy[bucket]++
}

// Contains returns true iff item's fingerprint is present in either of its
// two candidate buckets.
func (cf *CuckooFilter) Contains(item any) (bool, error) {
	data, err := cf.serializer(item)
	if err != nil {
		return false, err
	}
	fp := cf.fingerprint(data)
	i1, i2 := cf.candidateBuckets(data, fp)
	return cf.bucketIndexOf(i1, fp) >= 0 || cf.bucketIndexOf(i2, fp) >= 0, nil
}

// Delete removes one occurrence of item's fingerprint from whichever of its
// two candidate buckets holds it first, compacting that bucket by moving its
// last occupied slot into the freed one. It is a no-op, not an error, if the
// fingerprint is absent - which also means deleting an item never added can
// remove a different, colliding item's fingerprint. Callers must only
// delete items they previously added.
func (cf *CuckooFilter) Delete(item any) (bool, error) {
	data, err := cf.serializer(item)
	if err != nil {
		return false, err
	}
	fp := cf.fingerprint(data)
	i1, i2 := cf.candidateBuckets(data, fp)
	for _, bucket := range [2]uint64{i1, i2} {
		if idx := cf.bucketIndexOf(bucket, fp); idx >= 0 {
			last := cf.occupancy[bucket] - 1
			cf.setSlot(bucket, uint8(idx), cf.getSlot(bucket, last))
			cf.occupancy[bucket]--
			return true, nil
		}
	}
	return false, nil
}

// MergeWith always fails: a Cuckoo filter stores only fingerprints, not the
// original items, so two independently built filters cannot be composed.
// Use BloomFilter when mergeability is required.
func (cf *CuckooFilter) MergeWith(other Filter) error {
	return ErrNotSupported
}

// Clear zeroes the fingerprint table and every bucket's occupancy count.
func (cf *CuckooFilter) Clear() {
	cf.bits.ClearAll()
	for i := range cf.occupancy {
		cf.occupancy[i] = 0
	}
}

// NumBuckets returns B.
func (cf *CuckooFilter) NumBuckets() uint64 {
	return cf.numBuckets
}

// FingerprintBits returns f.
func (cf *CuckooFilter) FingerprintBits() uint {
	return cf.fingerprintBits
}

// BucketSize returns β.
func (cf *CuckooFilter) BucketSize() uint64 {
	return cf.bucketSize
}

// Len returns the number of fingerprints currently stored.
func (cf *CuckooFilter) Len() uint64 {
	var total uint64
	for _, occ := range cf.occupancy {
		total += uint64(occ)
	}
	return total
}

// Stats returns a human-readable summary of cf's memory footprint.
func (cf *CuckooFilter) Stats() string {
	return humanize.Bytes((cf.bits.Len() + 7) / 8)
}
