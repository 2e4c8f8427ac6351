package primes

// SieveCount counts the primes in [2, limit] with a sieve of Eratosthenes.
// It is only used to cross-check the trial division counters.
func SieveCount(limit int) int {
	if limit < 2 {
		return 0
	}

	composite := make([]bool, limit+1)
	count := 0

	for i := 2; i <= limit; i++ {
		if composite[i] {
			continue
		}
		count++
		if i > limit/i {
			continue
		}
		for j := i * i; j <= limit; j += i {
			composite[j] = true
		}
	}

	return count
}
