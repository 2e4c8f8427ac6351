// Package machine describes the host the benchmark runs on.
package machine

import (
	"runtime"

	"github.com/klauspost/cpuid/v2"
)

// Info is the subset of cpuid data reported alongside a run.
type Info struct {
	BrandName     string
	Hz            int64
	PhysicalCores int
	LogicalCores  int
}

// Workers returns the number of physical cores, or GOMAXPROCS when cpuid
// cannot tell.
func Workers() int {
	if n := cpuid.CPU.PhysicalCores; n > 0 {
		return n
	}
	return runtime.GOMAXPROCS(0)
}

// Describe reports the host CPU as seen by cpuid.
func Describe() Info {
	return Info{
		BrandName:     cpuid.CPU.BrandName,
		Hz:            cpuid.CPU.Hz,
		PhysicalCores: cpuid.CPU.PhysicalCores,
		LogicalCores:  cpuid.CPU.LogicalCores,
	}
}
