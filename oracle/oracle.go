/*
Package oracle provides trivial, exact reference implementations of the
Counter and Filter capabilities - set-backed, unbounded, never approximate -
plus the synthetic measurement harnesses used to validate a sketch's actual
error against its theoretical bound. These exist only as test oracles; they
are not suitable for production use at any real stream size.
*/
package oracle

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/kwertop/sketches/sketch"
)

// KeepAllCounter is an exact Counter backed by a Go set. Its memory is
// proportional to the number of distinct items ever added.
type KeepAllCounter struct {
	items map[string]struct{}
}

// NewKeepAllCounter returns an empty KeepAllCounter.
func NewKeepAllCounter() *KeepAllCounter {
	return &KeepAllCounter{items: make(map[string]struct{})}
}

// Add records item, keyed by its default textual representation.
func (c *KeepAllCounter) Add(item any) error {
	c.items[fmt.Sprintf("%v", item)] = struct{}{}
	return nil
}

// UniqueCount returns the exact number of distinct items added.
func (c *KeepAllCounter) UniqueCount() float64 {
	return float64(len(c.items))
}

// MergeWith unions other's items into c.
func (c *KeepAllCounter) MergeWith(other sketch.Counter) error {
	o, ok := other.(*KeepAllCounter)
	if !ok {
		return fmt.Errorf("oracle: cannot merge KeepAllCounter with %T", other)
	}
	for k := range o.items {
		c.items[k] = struct{}{}
	}
	return nil
}

// Clear empties c.
func (c *KeepAllCounter) Clear() {
	c.items = make(map[string]struct{})
}

var _ sketch.Counter = (*KeepAllCounter)(nil)

// KeepAllFilter is an exact ShrinkableFilter backed by a Go set.
type KeepAllFilter struct {
	items map[string]struct{}
}

// NewKeepAllFilter returns an empty KeepAllFilter.
func NewKeepAllFilter() *KeepAllFilter {
	return &KeepAllFilter{items: make(map[string]struct{})}
}

// Add records item.
func (f *KeepAllFilter) Add(item any) error {
	f.items[fmt.Sprintf("%v", item)] = struct{}{}
	return nil
}

// Contains reports whether item was previously added and not deleted.
func (f *KeepAllFilter) Contains(item any) (bool, error) {
	_, ok := f.items[fmt.Sprintf("%v", item)]
	return ok, nil
}

// Delete removes item. It is a no-op if item was never added.
func (f *KeepAllFilter) Delete(item any) (bool, error) {
	key := fmt.Sprintf("%v", item)
	if _, ok := f.items[key]; !ok {
		return false, nil
	}
	delete(f.items, key)
	return true, nil
}

// MergeWith unions other's items into f.
func (f *KeepAllFilter) MergeWith(other sketch.Filter) error {
	o, ok := other.(*KeepAllFilter)
	if !ok {
		return fmt.Errorf("oracle: cannot merge KeepAllFilter with %T", other)
	}
	for k := range o.items {
		f.items[k] = struct{}{}
	}
	return nil
}

// Clear empties f.
func (f *KeepAllFilter) Clear() {
	f.items = make(map[string]struct{})
}

var _ sketch.ShrinkableFilter = (*KeepAllFilter)(nil)

// SampleRealError feeds counter a synthetic stream of uniqueItemCount
// distinct random items plus duplicates drawn from the same population (for
// a total of totalItemsToTest items, defaulting to 2*uniqueItemCount), then
// compares the counter's reported UniqueCount against the known-true count.
// It returns the observed estimate, its relative error, and the wall-clock
// time spent feeding the stream.
func SampleRealError(counter sketch.Counter, uniqueItemCount int, totalItemsToTest int) (observed float64, relativeError float64, elapsed time.Duration, err error) {
	if totalItemsToTest <= 0 {
		totalItemsToTest = 2 * uniqueItemCount
	}
	items := make([]string, uniqueItemCount)
	for i := range items {
		items[i] = randomItem()
	}
	stream := make([]string, 0, totalItemsToTest)
	stream = append(stream, items...)
	for len(stream) < totalItemsToTest {
		stream = append(stream, items[rand.Intn(len(items))])
	}

	start := time.Now()
	for _, item := range stream {
		if addErr := counter.Add(item); addErr != nil {
			return 0, 0, 0, addErr
		}
	}
	observed = counter.UniqueCount()
	elapsed = time.Since(start)
	relativeError = math.Abs((observed - float64(uniqueItemCount)) / float64(uniqueItemCount))
	return observed, relativeError, elapsed, nil
}

// SampleRealFalsePositiveRate adds expectedItemCount distinct random items to
// filter, then probes ceil(10/targetFalsePositiveProb) distinct items known
// never to have been added, returning the fraction that were (incorrectly)
// reported present and the number of probes performed.
func SampleRealFalsePositiveRate(filter sketch.Filter, expectedItemCount int, targetFalsePositiveProb float64) (observedFraction float64, tested int, err error) {
	tested = int(math.Ceil(10 / targetFalsePositiveProb))

	for i := 0; i < expectedItemCount; i++ {
		if addErr := filter.Add(randomItem()); addErr != nil {
			return 0, 0, addErr
		}
	}

	falsePositives := 0
	for i := 0; i < tested; i++ {
		ok, containsErr := filter.Contains(unseenItem(i))
		if containsErr != nil {
			return 0, 0, containsErr
		}
		if ok {
			falsePositives++
		}
	}
	return float64(falsePositives) / float64(tested), tested, nil
}

func randomItem() string {
	return fmt.Sprintf("%x-%x", rand.Int63(), rand.Int63())
}

// unseenItem is distinguishable from anything randomItem could have produced
// by its "unseen-" prefix, so probes are guaranteed to be true negatives
// against the population the filter was built from.
func unseenItem(i int) string {
	return fmt.Sprintf("unseen-%d-%x", i, rand.Int63())
}
