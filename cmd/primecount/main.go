// Command primecount counts the primes up to one million by trial division
// and prints RESULT:<count>.
package main

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/automaxprocs/maxprocs"

	"github.com/jannismilz/primes/internal/primes"
)

func main() {
	maxprocs.Set(maxprocs.Logger(func(string, ...any) {}))

	run(os.Stdout, primes.Limit)
}

func run(w io.Writer, limit int) {
	fmt.Fprintf(w, "RESULT:%d\n", primes.CountPrimes(limit))
}
