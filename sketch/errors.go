package sketch

import "github.com/pkg/errors"

// ErrNotSupported is returned by CuckooFilter.MergeWith: cuckoo filters
// cannot be merged without either item itself, only their fingerprints, so
// two independently built filters cannot be composed. Callers who need
// mergeable membership sketches should use BloomFilter instead.
var ErrNotSupported = errors.New("sketch: operation not supported")

// InsertionFailureError is returned by CuckooFilter.Add when the eviction
// chain exceeds MaxKicks without finding a free slot. Items already present
// may have been relocated to their alternate bucket during the attempt, and
// the attempt is not rolled back: after at least one kick the new item's
// fingerprint is stored, and the fingerprint evicted by the last kick (the
// one reported in Fingerprint) is no longer in the filter. The caller may
// enlarge the filter or accept the loss.
type InsertionFailureError struct {
	// Fingerprint is the fingerprint that could not be placed.
	Fingerprint uint32
	// Kicks is the number of evictions attempted before giving up.
	Kicks uint64
}

func (e *InsertionFailureError) Error() string {
	return errors.Errorf(
		"sketch: cuckoo filter full, could not insert fingerprint %#x after %d kicks",
		e.Fingerprint, e.Kicks,
	).Error()
}

// errorfSketch builds a constructor-validation error with a "sketch: ..."
// prefix, via pkg/errors so callers get an unwrappable, stack-carrying
// error instead of a bare fmt.Errorf.
func errorfSketch(format string, args ...any) error {
	return errors.Errorf("sketch: "+format, args...)
}

// parameterMismatch panics with a message identifying which construction
// parameter caused two sketches to be judged incompatible for MergeWith. Per
// spec, parameter mismatches on merge are programmer errors, not recoverable
// conditions, so this reports via panic rather than a returned error.
func parameterMismatch(format string, args ...any) {
	panic(errors.Errorf("sketch: "+format, args...).Error())
}
