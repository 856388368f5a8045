package sketch

import (
	"math"
	"math/bits"

	"github.com/dustin/go-humanize"

	"github.com/kwertop/sketches/bitset"
	"github.com/kwertop/sketches/hash"
	"github.com/kwertop/sketches/serialize"
)

// defaultHyperLogLogSeed is a large odd constant rather than zero, so a
// caller who forgets to pick a seed doesn't silently end up hashing with an
// all-zero key.
const defaultHyperLogLogSeed uint64 = 1<<64 - 59

const minBuckets = 16

// HyperLogLog estimates the cardinality of a stream using b=2^p small
// registers, each holding the longest observed tail-run length of hashes
// routed to that bucket, corrected with Linear Counting at small scale.
type HyperLogLog struct {
	numBuckets     uint64
	prefixBits     uint
	prefixMask     uint64
	smallRangeCap  float64
	alpha          float64
	seed           uint64
	registers      []uint8
	activations    *bitset.Dense
	activatedCount uint64

	hasher     hash.Hasher64
	serializer serialize.Func
}

// NewHyperLogLog returns a HyperLogLog sized for at least requestedBuckets
// registers (rounded up to the nearest power of two, floored at 16), using
// the default serializer and a fixed default seed.
func NewHyperLogLog(requestedBuckets uint64) (*HyperLogLog, error) {
	return NewHyperLogLogWithSerializer(requestedBuckets, defaultHyperLogLogSeed, serialize.Default)
}

// NewHyperLogLogWithSeed is NewHyperLogLog with an explicit hash seed, so
// independently-seeded sketches can be told apart for merge compatibility.
func NewHyperLogLogWithSeed(requestedBuckets, seed uint64) (*HyperLogLog, error) {
	return NewHyperLogLogWithSerializer(requestedBuckets, seed, serialize.Default)
}

// NewHyperLogLogWithSerializer gives full control over bucket count, seed and
// serializer.
func NewHyperLogLogWithSerializer(requestedBuckets, seed uint64, serializer serialize.Func) (*HyperLogLog, error) {
	numBuckets := nearestPowerOfTwo(requestedBuckets, minBuckets)
	p := uint(bits.Len64(numBuckets - 1))

	h := &HyperLogLog{
		numBuckets:    numBuckets,
		prefixBits:    p,
		prefixMask:    numBuckets - 1,
		smallRangeCap: 2.5 * float64(numBuckets),
		alpha:         alphaFor(numBuckets),
		seed:          seed,
		registers:     make([]uint8, numBuckets),
		activations:   bitset.New(uint(numBuckets)),
		hasher:        hash.NewHasher64(seed),
		serializer:    serializer,
	}
	return h, nil
}

// nearestPowerOfTwo returns the smallest power of two that is >= requested,
// clamped to be at least floor. A naive rounding like math.Ceil(n/2)*2
// returns a true power of two only by luck (1024 -> 1024, but 100 -> 100);
// this always rounds up to an exact power of two, which the bucket-mask
// derivation in Add requires.
func nearestPowerOfTwo(requested, floor uint64) uint64 {
	if requested < floor {
		requested = floor
	}
	return uint64(1) << uint(bits.Len64(requested-1))
}

// alphaFor returns the bias-correction constant for b buckets, per the
// piecewise table from the HyperLogLog paper (and kwertop/gostatix's
// getAlpha).
func alphaFor(b uint64) float64 {
	switch {
	case b <= 16:
		return 0.673
	case b <= 32:
		return 0.697
	case b <= 64:
		return 0.709
	default:
		return 0.7213 / (1.0 + 1.079/float64(b))
	}
}

// Add routes item into its bucket and updates that bucket's tail-run
// register if item's hash produced a longer run than previously observed.
func (h *HyperLogLog) Add(item any) error {
	data, err := h.serializer(item)
	if err != nil {
		return err
	}
	digest := h.hasher.Sum64(data)

	bucket := digest & h.prefixMask
	if !h.activations.Test(uint(bucket)) {
		h.activations.Set(uint(bucket))
		h.activatedCount++
	}

	remainder := digest >> h.prefixBits
	run := tailRun(remainder, h.prefixBits)
	if run > uint64(h.registers[bucket]) {
		h.registers[bucket] = uint8(run)
	}
	return nil
}

// tailRun returns the position of the lowest set bit of remainder, 1-indexed,
// clamped to (64-prefixBits) when remainder is zero. math/bits.TrailingZeros64
// already returns 64 on a zero input; remainder only ever carries
// (64-prefixBits) significant bits (the high prefixBits bits were shifted
// away), so the only place the clamp changes behavior is the all-zero case.
func tailRun(remainder uint64, prefixBits uint) uint64 {
	if remainder == 0 {
		return 64 - uint64(prefixBits)
	}
	return uint64(bits.TrailingZeros64(remainder)) + 1
}

// UniqueCount returns the estimated number of distinct items added so far,
// using the raw HyperLogLog estimator above the small-range threshold and
// Linear Counting below it.
func (h *HyperLogLog) UniqueCount() float64 {
	sumInverse := 0.0
	for _, r := range h.registers {
		sumInverse += math.Pow(2, -float64(r))
	}
	b := float64(h.numBuckets)
	estimate := h.alpha * b * b / sumInverse
	if estimate > h.smallRangeCap {
		return estimate
	}

	emptyBuckets := h.numBuckets - h.activatedCount
	if emptyBuckets == 0 {
		return estimate
	}
	return -b * math.Log(float64(emptyBuckets)/b)
}

// MergeWith folds other into h: every register becomes the max of the two,
// and activation bitsets are OR'd together. Both sketches must share the
// same bucket count and hash seed; a mismatch is a programmer error and
// panics rather than returning an error.
func (h *HyperLogLog) MergeWith(other Counter) error {
	o, ok := other.(*HyperLogLog)
	if !ok {
		parameterMismatch("cannot merge HyperLogLog with %T", other)
	}

	if h.numBuckets != o.numBuckets {
		parameterMismatch("hyperloglog bucket counts don't match, %d and %d", h.numBuckets, o.numBuckets)
	}
	if h.seed != o.seed {
		parameterMismatch("hyperloglog seeds don't match, %d and %d", h.seed, o.seed)
	}

	for i := range h.registers {
		if o.registers[i] > h.registers[i] {
			h.registers[i] = o.registers[i]
		}
	}
	if err := h.activations.Or(o.activations); err != nil {
		parameterMismatch("%v", err)
	}
	h.activatedCount = h.activations.Count()
	return nil
}

// Clear resets every register and activation bit to zero, returning h to the
// state NewHyperLogLog would have produced for the same parameters.
func (h *HyperLogLog) Clear() {
	for i := range h.registers {
		h.registers[i] = 0
	}
	h.activations.ClearAll()
	h.activatedCount = 0
}

// NumBuckets returns b, the number of registers.
func (h *HyperLogLog) NumBuckets() uint64 {
	return h.numBuckets
}

// Accuracy returns the relative standard error this sketch is expected to
// achieve, 1.04/sqrt(b).
func (h *HyperLogLog) Accuracy() float64 {
	return 1.04 / math.Sqrt(float64(h.numBuckets))
}

// Stats returns a human-readable summary of the sketch's approximate memory
// footprint, for debugging and capacity planning.
func (h *HyperLogLog) Stats() string {
	registerBytes := uint64(len(h.registers))
	activationBytes := (uint64(h.activations.Len()) + 7) / 8
	return humanize.Bytes(registerBytes + activationBytes)
}
