/*
Package serialize provides the pluggable serializer plug-point every sketch
engine consumes to turn an arbitrary input item into the byte buffer that
gets hashed. Determinism is the only contract a caller-supplied serializer
must uphold.
*/
package serialize

import (
	"fmt"

	"github.com/pkg/errors"
)

// Func turns an item into the byte buffer a sketch hashes. It must be a pure,
// deterministic function of item: two calls with equal items must produce
// equal output. The error return lets a caller-supplied serializer reject
// inputs it cannot encode; the default implementation returns one only for a
// nil item.
type Func func(item any) ([]byte, error)

// Default is the stable textual serializer used when a sketch is constructed
// without an explicit serializer. It is stable across runs for the builtin
// kinds it special-cases ([]byte and string avoid the allocation and
// indirection of fmt.Sprintf) and falls back to a deterministic %#v-style
// dump of the Go value for everything else.
func Default(item any) ([]byte, error) {
	switch v := item.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	case fmt.Stringer:
		return []byte(v.String()), nil
	case nil:
		return nil, errors.New("serialize: cannot serialize a nil item")
	default:
		return []byte(fmt.Sprintf("%#v", v)), nil
	}
}

// Bytes is a convenience serializer for callers who already work in []byte
// and want to skip the type switch in Default.
func Bytes(item any) ([]byte, error) {
	b, ok := item.([]byte)
	if !ok {
		return nil, errors.Errorf("serialize: Bytes serializer requires []byte, got %T", item)
	}
	return b, nil
}

// String is a convenience serializer for callers who already work in string.
func String(item any) ([]byte, error) {
	s, ok := item.(string)
	if !ok {
		return nil, errors.Errorf("serialize: String serializer requires string, got %T", item)
	}
	return []byte(s), nil
}
