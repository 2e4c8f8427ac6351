package primes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSieveCountMatchesTrialDivision(t *testing.T) {
	for _, limit := range []int{-1, 0, 1, 2, 3, 4, 10, 20, 97, 1000, 65_536} {
		assert.Equal(t, CountPrimes(limit), SieveCount(limit), "limit=%d", limit)
	}
	assert.Equal(t, 78498, SieveCount(Limit))
}

// Primes above 46340 square past math.MaxInt32.
func TestSieveCountPastInt32Square(t *testing.T) {
	for _, limit := range []int{46_340, 46_341, 46_349, 50_000} {
		assert.NotPanics(t, func() { SieveCount(limit) }, "limit=%d", limit)
		assert.Equal(t, CountPrimes(limit), SieveCount(limit), "limit=%d", limit)
	}
	assert.Equal(t, 5133, SieveCount(50_000))
}
