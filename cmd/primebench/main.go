package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"runtime/pprof"
	"time"

	"go.uber.org/automaxprocs/maxprocs"

	"github.com/jannismilz/primes/internal/machine"
	"github.com/jannismilz/primes/internal/primes"
	"github.com/jannismilz/primes/internal/store"
)

type config struct {
	limit      int
	workers    int
	chunkSize  int
	warmup     int
	verify     bool
	sequential bool
	cpuProfile string
	dbFile     string
	history    int
}

func main() {
	maxprocs.Set(maxprocs.Logger(log.Printf))

	var cfg config
	flag.IntVar(&cfg.limit, "limit", primes.Limit, "count primes in [2, limit]")
	flag.IntVar(&cfg.workers, "workers", 0, "worker goroutines (0 = physical cores)")
	flag.IntVar(&cfg.chunkSize, "chunk", primes.DefaultChunkSize, "candidates per chunk")
	flag.IntVar(&cfg.warmup, "warmup", 1000, "limit of the warm-up pass (0 disables it)")
	flag.BoolVar(&cfg.verify, "verify", false, "cross-check the count with a sieve")
	flag.BoolVar(&cfg.sequential, "sequential", false, "count on a single goroutine")
	flag.StringVar(&cfg.cpuProfile, "cpuprofile", "", "write a CPU profile to file")
	flag.StringVar(&cfg.dbFile, "db", "", "record the run in this SQLite database")
	flag.IntVar(&cfg.history, "history", 0, "print the last n recorded runs (needs -db)")
	flag.Parse()

	if cfg.cpuProfile != "" {
		f, err := os.Create(cfg.cpuProfile)
		if err != nil {
			log.Fatalf("failed to create profile: %v", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatalf("failed to start profile: %v", err)
		}
		defer pprof.StopCPUProfile()
	}

	if err := run(context.Background(), os.Stdout, cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		pprof.StopCPUProfile()
		os.Exit(1)
	}
}

func run(ctx context.Context, w io.Writer, cfg config) error {
	fmt.Fprintln(w, "Counting primes by trial division")
	fmt.Fprintf(w, "Range: 2 to %d\n", cfg.limit)

	if cfg.warmup > 0 {
		primes.CountPrimes(cfg.warmup)
	}

	var tally primes.Tally
	if cfg.sequential {
		startTime := time.Now()
		count := primes.CountPrimes(cfg.limit)
		tally = primes.Tally{
			Limit:     cfg.limit,
			Workers:   1,
			ChunkSize: max(cfg.limit-1, 0),
			Count:     count,
			Elapsed:   time.Since(startTime),
		}
		if cfg.limit >= 2 {
			tally.Chunks = []primes.ChunkResult{{Start: 2, End: cfg.limit, Count: count, ProcessedTime: tally.Elapsed}}
		}
		tally.Hash = primes.HashChunks(tally.Chunks)
	} else {
		tally = primes.CountParallel(cfg.limit, cfg.workers, cfg.chunkSize)
		fmt.Fprintf(w, "Processed %d chunks of size %d on %d workers\n", len(tally.Chunks), tally.ChunkSize, tally.Workers)
	}

	info := machine.Describe()

	fmt.Fprintf(w, "\nResults:\n")
	fmt.Fprintf(w, "Primes found: %d\n", tally.Count)
	fmt.Fprintf(w, "Total elapsed time: %.4fs\n", tally.Elapsed.Seconds())
	fmt.Fprintf(w, "Verification hash: %s\n", tally.Hash)
	fmt.Fprintf(w, "CPU Name: %s\n", info.BrandName)
	fmt.Fprintf(w, "CPU Frequency: %d\n", info.Hz)
	fmt.Fprintln(w, "CPU Cores:", info.PhysicalCores)

	if cfg.verify {
		if want := primes.SieveCount(cfg.limit); want != tally.Count {
			return fmt.Errorf("count mismatch: trial division found %d, sieve found %d", tally.Count, want)
		}
		fmt.Fprintln(w, "Sieve cross-check: ok")
	}

	if cfg.dbFile != "" {
		if err := record(ctx, w, cfg, tally, info); err != nil {
			return err
		}
	}

	fmt.Fprintf(w, "RESULT:%d\n", tally.Count)
	return nil
}

func record(ctx context.Context, w io.Writer, cfg config, tally primes.Tally, info machine.Info) error {
	db, err := store.Open(cfg.dbFile)
	if err != nil {
		return err
	}
	defer db.Close()

	id, err := db.Record(ctx, store.Run{
		Limit:     tally.Limit,
		Workers:   tally.Workers,
		ChunkSize: tally.ChunkSize,
		Count:     tally.Count,
		Hash:      tally.Hash,
		Elapsed:   tally.Elapsed,
		CPU:       info.BrandName,
		Chunks:    tally.Chunks,
	})
	if err != nil {
		return err
	}
	log.Printf("Recorded run %d in %s", id, cfg.dbFile)

	stats, err := db.Stats(ctx)
	if err != nil && !errors.Is(err, store.ErrNoRuns) {
		return err
	}
	fmt.Fprintf(w, "Recorded runs: %d\n", stats.Runs)
	fmt.Fprintf(w, "Best elapsed time: %.4fs\n", stats.BestElapsed.Seconds())
	fmt.Fprintf(w, "Average elapsed time: %.4fs\n", stats.AvgElapsed.Seconds())
	if stats.Mismatches > 0 {
		fmt.Fprintf(w, "WARNING: %d limits have runs with differing counts\n", stats.Mismatches)
	}

	if cfg.history > 0 {
		runs, err := db.Latest(ctx, cfg.history)
		if err != nil {
			return err
		}
		for _, r := range runs {
			fmt.Fprintf(w, "#%d %s limit=%d workers=%d chunks=%d count=%d elapsed=%.4fs\n",
				r.ID, r.CreatedAt.Format(time.RFC3339), r.Limit, r.Workers, len(r.Chunks), r.Count, r.Elapsed.Seconds())
		}
	}

	return nil
}
