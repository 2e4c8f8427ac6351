package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return lines[len(lines)-1]
}

func TestRunParallel(t *testing.T) {
	var buf bytes.Buffer
	err := run(context.Background(), &buf, config{limit: 20, workers: 2, chunkSize: 5, warmup: 10, verify: true})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Primes found: 8\n")
	assert.Contains(t, out, "Processed 4 chunks of size 5 on 2 workers\n")
	assert.Contains(t, out, "Sieve cross-check: ok\n")
	assert.Equal(t, "RESULT:8", lastLine(out))
}

func TestRunSequential(t *testing.T) {
	var buf bytes.Buffer
	err := run(context.Background(), &buf, config{limit: 10, sequential: true})
	require.NoError(t, err)
	assert.Equal(t, "RESULT:4", lastLine(buf.String()))
}

func TestRunHashIndependentOfWorkers(t *testing.T) {
	hash := func(workers int) string {
		var buf bytes.Buffer
		require.NoError(t, run(context.Background(), &buf, config{limit: 3000, workers: workers, chunkSize: 100}))
		for _, line := range strings.Split(buf.String(), "\n") {
			if strings.HasPrefix(line, "Verification hash: ") {
				return line
			}
		}
		t.Fatal("no hash line")
		return ""
	}
	assert.Equal(t, hash(1), hash(6))
}

func TestRunRecordsHistory(t *testing.T) {
	dbFile := filepath.Join(t.TempDir(), "runs.db")
	cfg := config{limit: 100, workers: 2, chunkSize: 25, dbFile: dbFile, history: 5}

	var buf bytes.Buffer
	require.NoError(t, run(context.Background(), &buf, cfg))
	assert.Contains(t, buf.String(), "Recorded runs: 1\n")

	buf.Reset()
	require.NoError(t, run(context.Background(), &buf, cfg))
	out := buf.String()
	assert.Contains(t, out, "Recorded runs: 2\n")
	assert.Contains(t, out, "#2 ")
	assert.Contains(t, out, "limit=100 workers=2 chunks=4 count=25")
	assert.NotContains(t, out, "WARNING")
	assert.Equal(t, "RESULT:25", lastLine(out))
}
