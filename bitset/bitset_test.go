package bitset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetTestClear(t *testing.T) {
	d := New(100)
	assert.False(t, d.Test(7))
	d.Set(7)
	assert.True(t, d.Test(7))
	d.Clear(7)
	assert.False(t, d.Test(7))
}

func TestClearAll(t *testing.T) {
	d := New(64)
	d.Set(1)
	d.Set(2)
	d.ClearAll()
	assert.Equal(t, uint(0), d.Count())
}

func TestCount(t *testing.T) {
	d := New(64)
	d.Set(1)
	d.Set(2)
	d.Set(3)
	assert.Equal(t, uint(3), d.Count())
}

func TestOr(t *testing.T) {
	a := New(32)
	b := New(32)
	a.Set(1)
	b.Set(2)
	require.NoError(t, a.Or(b))
	assert.True(t, a.Test(1))
	assert.True(t, a.Test(2))
}

func TestOrLengthMismatch(t *testing.T) {
	a := New(32)
	b := New(16)
	assert.Error(t, a.Or(b))
}

func TestEqual(t *testing.T) {
	a := New(32)
	b := New(32)
	assert.True(t, a.Equal(b))
	a.Set(5)
	assert.False(t, a.Equal(b))
	b.Set(5)
	assert.True(t, a.Equal(b))
}

func TestSetRangeGetRangeRoundTrip(t *testing.T) {
	d := New(256)
	require.NoError(t, d.SetRange(40, 12, 0xABC))
	got, err := d.GetRange(40, 12)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xABC), got)
}

func TestSetRangeDoesNotDisturbNeighbors(t *testing.T) {
	d := New(256)
	d.Set(39)
	d.Set(52)
	require.NoError(t, d.SetRange(40, 12, 0))
	assert.True(t, d.Test(39))
	assert.True(t, d.Test(52))
}

func TestRangeWidthBounds(t *testing.T) {
	d := New(256)
	_, err := d.GetRange(0, 0)
	assert.Error(t, err)
	_, err = d.GetRange(0, 33)
	assert.Error(t, err)
	assert.Error(t, d.SetRange(0, 33, 0))
}

func TestGetRangeMaxWidth(t *testing.T) {
	d := New(256)
	require.NoError(t, d.SetRange(0, 32, 0xFFFFFFFF))
	got, err := d.GetRange(0, 32)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xFFFFFFFF), got)
}
