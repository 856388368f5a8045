package serialize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsDeterministic(t *testing.T) {
	a, err := Default(42)
	require.NoError(t, err)
	b, err := Default(42)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestDefaultBytesPassthrough(t *testing.T) {
	b, err := Default([]byte("raw"))
	require.NoError(t, err)
	assert.Equal(t, []byte("raw"), b)
}

func TestDefaultStringPassthrough(t *testing.T) {
	b, err := Default("hello")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), b)
}

func TestDefaultDistinguishesDistinctValues(t *testing.T) {
	a, _ := Default(struct{ X int }{1})
	b, _ := Default(struct{ X int }{2})
	assert.NotEqual(t, a, b)
}

func TestDefaultRejectsNil(t *testing.T) {
	_, err := Default(nil)
	assert.Error(t, err)
}

func TestBytesSerializer(t *testing.T) {
	b, err := Bytes([]byte("x"))
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), b)

	_, err = Bytes("not bytes")
	assert.Error(t, err)
}

func TestStringSerializer(t *testing.T) {
	b, err := String("x")
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), b)

	_, err = String(123)
	assert.Error(t, err)
}
