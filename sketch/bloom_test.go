package sketch

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBloomFilterRejectsOutOfRangeErrorRate(t *testing.T) {
	_, err := NewBloomFilter(100, 0)
	assert.Error(t, err)
	_, err = NewBloomFilter(100, 1)
	assert.Error(t, err)
}

func TestBloomFilterNoFalseNegatives(t *testing.T) {
	bf, err := NewBloomFilter(1000, 0.01)
	require.NoError(t, err)

	added := []string{"John", "Jane", "Alice", "Bob"}
	for _, s := range added {
		require.NoError(t, bf.Add(s))
	}
	for _, s := range added {
		ok, err := bf.Contains(s)
		require.NoError(t, err)
		assert.True(t, ok, "%s should be a member", s)
	}
}

func TestBloomFilterSingleItemScenario(t *testing.T) {
	bf, err := NewBloomFilter(100000000, 0.01)
	require.NoError(t, err)
	require.NoError(t, bf.Add("test_item"))

	ok, err := bf.Contains("test_item")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = bf.Contains("other_item")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBloomFilterMergeUnionsMembership(t *testing.T) {
	left, _ := NewBloomFilter(1000, 0.01)
	right, _ := NewBloomFilter(1000, 0.01)

	require.NoError(t, left.Add("L"))
	require.NoError(t, left.Add("C"))
	require.NoError(t, right.Add("R"))
	require.NoError(t, right.Add("C"))

	require.NoError(t, left.MergeWith(right))

	for _, s := range []string{"L", "R", "C"} {
		ok, _ := left.Contains(s)
		assert.True(t, ok, "%s should be a member after merge", s)
	}
}

func TestBloomFilterMergeIsCommutative(t *testing.T) {
	a, _ := NewBloomFilter(1000, 0.01)
	b, _ := NewBloomFilter(1000, 0.01)
	items := []string{"x", "y", "z"}
	for _, it := range items {
		require.NoError(t, a.Add(it))
	}

	ab, _ := NewBloomFilter(1000, 0.01)
	ba, _ := NewBloomFilter(1000, 0.01)
	require.NoError(t, ab.MergeWith(a))
	require.NoError(t, ab.MergeWith(b))
	require.NoError(t, ba.MergeWith(b))
	require.NoError(t, ba.MergeWith(a))

	assert.True(t, ab.bits.Equal(ba.bits))
}

func TestBloomFilterMergeWithEmptyIsNoOp(t *testing.T) {
	a, _ := NewBloomFilter(1000, 0.01)
	require.NoError(t, a.Add("present"))
	beforeCount := a.bits.Count()

	empty, _ := NewBloomFilter(1000, 0.01)
	require.NoError(t, a.MergeWith(empty))

	assert.Equal(t, beforeCount, a.bits.Count())
	ok, err := a.Contains("present")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestBloomFilterMergeRejectsSizeMismatch(t *testing.T) {
	a, _ := NewBloomFilter(1000, 0.01)
	b, _ := NewBloomFilter(5000, 0.01)
	assert.Panics(t, func() {
		_ = a.MergeWith(b)
	})
}

func TestBloomFilterClearReturnsToFreshState(t *testing.T) {
	bf, _ := NewBloomFilter(1000, 0.01)
	require.NoError(t, bf.Add("anything"))
	bf.Clear()
	fresh, _ := NewBloomFilter(1000, 0.01)
	assert.True(t, fresh.bits.Equal(bf.bits))
}

func TestBloomFilterFalsePositiveRateAtDesignLoad(t *testing.T) {
	const n = 100000
	const p = 0.01
	bf, err := NewBloomFilter(n, p)
	require.NoError(t, err)
	for i := 0; i < n; i++ {
		require.NoError(t, bf.Add(distinctItem(i)))
	}

	probes := 10000
	falsePositives := 0
	for i := 0; i < probes; i++ {
		ok, err := bf.Contains(fmt.Sprintf("unseen-%d", i))
		require.NoError(t, err)
		if ok {
			falsePositives++
		}
	}
	observed := float64(falsePositives) / float64(probes)
	assert.Less(t, observed, 1.25*p)
}

// TestBloomFilterBeatsNaiveSingleHash demonstrates that the k-hash
// BloomFilter has a materially lower measured false-positive rate, at the
// same bit budget, than a single-hash-per-item filter.
func TestBloomFilterBeatsNaiveSingleHash(t *testing.T) {
	const n = 20000
	const p = 0.03
	bf, err := NewBloomFilter(n, p)
	require.NoError(t, err)

	naiveBits := make([]bool, bf.NumBits())
	for i := 0; i < n; i++ {
		item := distinctItem(i)
		require.NoError(t, bf.Add(item))

		data, _ := bf.serializer(item)
		h1 := bf.hasher1.Sum64(data)
		naiveBits[h1%bf.numBits] = true
	}

	probes := 2000
	bloomFP, naiveFP := 0, 0
	for i := 0; i < probes; i++ {
		item := fmt.Sprintf("unseen-%d", i)
		ok, _ := bf.Contains(item)
		if ok {
			bloomFP++
		}
		data, _ := bf.serializer(item)
		h1 := bf.hasher1.Sum64(data)
		if naiveBits[h1%bf.numBits] {
			naiveFP++
		}
	}
	assert.Less(t, bloomFP, naiveFP)
}
