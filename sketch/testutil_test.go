package sketch

import (
	"fmt"
	"math/rand"
)

// distinctItem returns a unique, unpredictable string for test index i,
// standing in for a uuid4-per-item stream.
func distinctItem(i int) string {
	return fmt.Sprintf("%d:%x", i, rand.Int63())
}
