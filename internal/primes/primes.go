// Package primes counts primes by trial division.
package primes

import "math"

// Limit is the upper bound scanned by the benchmark.
const Limit = 1_000_000

// IsPrime reports whether n is prime using trial division by odd numbers.
func IsPrime(n int) bool {
	if n < 2 {
		return false
	}
	if n == 2 {
		return true
	}
	if n%2 == 0 {
		return false
	}

	limit := isqrt(n)
	for i := 3; i <= limit; i += 2 {
		if n%i == 0 {
			return false
		}
	}
	return true
}

// CountPrimes returns the number of primes in [2, limit].
func CountPrimes(limit int) int {
	count := 0
	for n := 2; n <= limit; n++ {
		if IsPrime(n) {
			count++
		}
	}
	return count
}

// isqrt returns floor(sqrt(n)) for n >= 0. math.Sqrt can land one off
// near perfect squares once n no longer fits in a float64 mantissa.
func isqrt(n int) int {
	r := int(math.Sqrt(float64(n)))
	for r > 0 && r > n/r {
		r--
	}
	for (r+1) <= n/(r+1) {
		r++
	}
	return r
}
