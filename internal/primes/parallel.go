package primes

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"sort"
	"sync"
	"time"

	"github.com/jannismilz/primes/internal/machine"
)

// DefaultChunkSize is the number of candidates handed to a worker at once.
const DefaultChunkSize = 50_000

// ChunkResult is the outcome of counting one chunk [Start, End].
type ChunkResult struct {
	Index         int           `cbor:"1,keyasint"`
	Start         int           `cbor:"2,keyasint"`
	End           int           `cbor:"3,keyasint"`
	Count         int           `cbor:"4,keyasint"`
	ProcessedTime time.Duration `cbor:"5,keyasint"`
}

// Tally is the reduced result of a parallel count.
type Tally struct {
	Limit     int
	Workers   int
	ChunkSize int
	Count     int
	Chunks    []ChunkResult
	Elapsed   time.Duration
	Hash      string
}

// Chunks returns the start of every chunk of size chunkSize covering [start, end].
func Chunks(start, end, chunkSize int) []int {
	if end < start || chunkSize <= 0 {
		return nil
	}
	chunks := make([]int, 0, (end-start)/chunkSize+1)
	for i := start; ; i += chunkSize {
		chunks = append(chunks, i)
		if end-i < chunkSize {
			break
		}
	}
	return chunks
}

// CountParallel counts the primes in [2, limit] by spreading chunks of the
// range over a pool of workers. The count always matches CountPrimes.
func CountParallel(limit, workers, chunkSize int) Tally {
	if workers <= 0 {
		workers = machine.Workers()
	}
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	chunkSize = min(chunkSize, max(limit-1, 1))

	startTime := time.Now()
	chunks := Chunks(2, limit, chunkSize)

	var wg sync.WaitGroup
	resultChan := make(chan ChunkResult, len(chunks))
	chunkChan := make(chan int, len(chunks))

	for i := range chunks {
		chunkChan <- i
	}
	close(chunkChan)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for index := range chunkChan {
				start := chunks[index]
				end := start + min(chunkSize-1, limit-start)
				resultChan <- countChunk(index, start, end)
			}
		}()
	}

	wg.Wait()
	close(resultChan)

	results := make([]ChunkResult, 0, len(chunks))
	for result := range resultChan {
		results = append(results, result)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Index < results[j].Index })

	tally := Tally{
		Limit:     limit,
		Workers:   workers,
		ChunkSize: chunkSize,
		Chunks:    results,
	}
	for _, r := range results {
		tally.Count += r.Count
	}
	tally.Elapsed = time.Since(startTime)
	tally.Hash = HashChunks(results)

	return tally
}

func countChunk(index, start, end int) ChunkResult {
	startTime := time.Now()
	count := 0
	for n := start; n <= end; n++ {
		if IsPrime(n) {
			count++
		}
	}
	return ChunkResult{
		Index:         index,
		Start:         start,
		End:           end,
		Count:         count,
		ProcessedTime: time.Since(startTime),
	}
}

// HashChunks hashes the (start, count) pair of every chunk in order.
func HashChunks(chunks []ChunkResult) string {
	h := sha256.New()
	buf := make([]byte, 16)
	for _, c := range chunks {
		binary.BigEndian.PutUint64(buf[:8], uint64(c.Start))
		binary.BigEndian.PutUint64(buf[8:], uint64(c.Count))
		h.Write(buf)
	}
	return hex.EncodeToString(h.Sum(nil))
}
