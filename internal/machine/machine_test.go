package machine

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWorkers(t *testing.T) {
	info := Describe()
	if info.PhysicalCores > 0 {
		assert.Equal(t, info.PhysicalCores, Workers())
	} else {
		assert.Equal(t, runtime.GOMAXPROCS(0), Workers())
	}
}
