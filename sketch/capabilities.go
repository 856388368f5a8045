/*
Package sketch implements the three probabilistic sketch engines this
module exists for: HyperLogLog (cardinality estimation), BloomFilter
(insert-only membership) and CuckooFilter (membership with deletion). All
three consume a serialize.Func and one or two hash.Hasher64/hash.Hasher32
values, and share the bitset.Dense primitive for storage.
*/
package sketch

// Counter is the capability set every cardinality sketch exposes: add an
// item, estimate the number of distinct items seen, merge with a compatible
// sketch built independently, and reset to the empty state.
type Counter interface {
	Add(item any) error
	UniqueCount() float64
	MergeWith(other Counter) error
	Clear()
}

// Filter is the capability set every membership sketch exposes.
type Filter interface {
	Add(item any) error
	Contains(item any) (bool, error)
	MergeWith(other Filter) error
	Clear()
}

// ShrinkableFilter narrows Filter with the ability to remove a previously
// added item. Deleting an item that was never added is a caller error: it
// may silently remove a different item that collided on the same
// fingerprint and buckets.
type ShrinkableFilter interface {
	Filter
	Delete(item any) (bool, error)
}
