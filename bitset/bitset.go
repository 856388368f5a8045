/*
Package bitset implements the single dense bit-array primitive shared by
every sketch engine: HyperLogLog's activation bitset, Bloom's probe array,
and Cuckoo's packed fingerprint table. It is built once, atop
github.com/bits-and-blooms/bitset (the same backing store kwertop/gostatix
uses for its in-memory bitset), and reused everywhere a sketch needs get/set,
bulk clear, bitwise-OR, or a packed little-endian bit-range.
*/
package bitset

import (
	bbbitset "github.com/bits-and-blooms/bitset"
	"github.com/pkg/errors"
)

// maxRangeWidth bounds the width of a single GetRange/SetRange call: Cuckoo
// fingerprints are capped at 32 bits by spec.
const maxRangeWidth = 32

// Dense is a fixed-length array of bits supporting single-bit get/set, bulk
// clear, bitwise-OR with another array of equal length, and read/write of a
// contiguous little-endian bit-range up to 32 bits wide.
type Dense struct {
	bits *bbbitset.BitSet
	size uint
}

// New returns a Dense bit array of length size, all bits clear.
func New(size uint) *Dense {
	return &Dense{bits: bbbitset.New(size), size: size}
}

// Len returns the number of bits in the array.
func (d *Dense) Len() uint {
	return d.size
}

// Test reports whether the bit at index is set.
func (d *Dense) Test(index uint) bool {
	return d.bits.Test(index)
}

// Set sets the bit at index.
func (d *Dense) Set(index uint) {
	d.bits.Set(index)
}

// Clear unsets the bit at index.
func (d *Dense) Clear(index uint) {
	d.bits.Clear(index)
}

// ClearAll zeroes every bit in the array, returning it to its constructed state.
func (d *Dense) ClearAll() {
	d.bits.ClearAll()
}

// Count returns the number of set bits (the popcount) of the array.
func (d *Dense) Count() uint {
	return d.bits.Count()
}

// Or bitwise-ORs other into d in place. Both arrays must have the same length.
func (d *Dense) Or(other *Dense) error {
	if d.size != other.size {
		return errors.Errorf("bitset: cannot OR arrays of different length, %d and %d", d.size, other.size)
	}
	d.bits.InPlaceUnion(other.bits)
	return nil
}

// Equal reports whether d and other have the same length and the same bits set.
func (d *Dense) Equal(other *Dense) bool {
	if d.size != other.size {
		return false
	}
	return d.bits.Equal(other.bits)
}

// GetRange reads width bits starting at bitOffset and interprets them as a
// little-endian unsigned integer: bit 0 of the result is the bit stored at
// bitOffset, bit (width-1) is the bit stored at bitOffset+width-1.
func (d *Dense) GetRange(bitOffset uint, width uint) (uint32, error) {
	if width == 0 || width > maxRangeWidth {
		return 0, errors.Errorf("bitset: range width must be in [1, %d], got %d", maxRangeWidth, width)
	}
	var value uint32
	for i := uint(0); i < width; i++ {
		if d.bits.Test(bitOffset + i) {
			value |= 1 << i
		}
	}
	return value, nil
}

// SetRange writes the low width bits of value, little-endian, starting at
// bitOffset: bit 0 of value is stored at bitOffset, bit (width-1) at
// bitOffset+width-1. Bits of value above width are ignored.
func (d *Dense) SetRange(bitOffset uint, width uint, value uint32) error {
	if width == 0 || width > maxRangeWidth {
		return errors.Errorf("bitset: range width must be in [1, %d], got %d", maxRangeWidth, width)
	}
	for i := uint(0); i < width; i++ {
		if value&(1<<i) != 0 {
			d.bits.Set(bitOffset + i)
		} else {
			d.bits.Clear(bitOffset + i)
		}
	}
	return nil
}
