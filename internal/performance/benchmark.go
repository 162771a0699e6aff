// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package performance

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"slices"
	"sync"
	"time"

	"phone-scan/internal/observability"
	"phone-scan/internal/phone"

	"golang.org/x/sync/errgroup"
)

// BenchmarkRunner measures extraction throughput over a set of in-memory
// test documents
type BenchmarkRunner struct {
	observer *observability.StandardObserver
	config   *BenchmarkConfig
	scanner  *phone.Scanner

	// Test data
	testFiles []BenchmarkTestFile

	mu sync.Mutex
}

// BenchmarkConfig configures benchmark execution
type BenchmarkConfig struct {
	Workers      int           // Concurrent extractors; defaults to GOMAXPROCS
	Duration     time.Duration // How long to keep extracting
	WarmupRuns   int           // Passes over the test files before timing starts
	TestDataSize int           // Size of each synthetic document in bytes
}

// BenchmarkTestFile is one document extracted during the benchmark
type BenchmarkTestFile struct {
	Name            string
	Content         []byte
	ExpectedMatches int
}

// BenchmarkResults summarises a benchmark run
type BenchmarkResults struct {
	Workers  int           `json:"workers"`
	Calls    int64         `json:"calls"`
	Bytes    int64         `json:"bytes"`
	Matches  int64         `json:"matches"`
	Elapsed  time.Duration `json:"elapsed_ns"`
	Mismatch int64         `json:"mismatches"` // Calls whose match count differed from ExpectedMatches

	CallsPerSecond float64 `json:"calls_per_second"`
	MiBPerSecond   float64 `json:"mib_per_second"`

	AverageCallTime time.Duration `json:"average_call_ns"`
	MinCallTime     time.Duration `json:"min_call_ns"`
	MaxCallTime     time.Duration `json:"max_call_ns"`
	P95CallTime     time.Duration `json:"p95_call_ns"`
}

// workerStats is accumulated by a single worker without locking
type workerStats struct {
	calls, bytes, matches, mismatch int64
	samples                         []time.Duration
}

// DefaultBenchmarkConfig returns a three second run on every CPU
func DefaultBenchmarkConfig() *BenchmarkConfig {
	return &BenchmarkConfig{
		Workers:      runtime.GOMAXPROCS(0),
		Duration:     3 * time.Second,
		WarmupRuns:   1,
		TestDataSize: 64 << 10,
	}
}

// NewBenchmarkRunner creates a new benchmark runner
func NewBenchmarkRunner(observer *observability.StandardObserver, config *BenchmarkConfig) *BenchmarkRunner {
	if config == nil {
		config = DefaultBenchmarkConfig()
	}
	if config.Workers <= 0 {
		config.Workers = runtime.GOMAXPROCS(0)
	}

	return &BenchmarkRunner{
		observer: observer,
		config:   config,
		scanner:  phone.NewScanner(),
	}
}

// LoadTestFiles replaces the benchmark documents
func (br *BenchmarkRunner) LoadTestFiles(files []BenchmarkTestFile) error {
	br.mu.Lock()
	defer br.mu.Unlock()

	if len(files) == 0 {
		return fmt.Errorf("no test files provided")
	}
	for _, f := range files {
		if len(f.Content) > phone.MaxInputSize {
			return fmt.Errorf("test file %s is larger than %d bytes", f.Name, phone.MaxInputSize)
		}
	}

	br.testFiles = files
	br.logDetail(fmt.Sprintf("Loaded %d test files", len(files)))
	return nil
}

// GenerateSyntheticTestData loads documents mixing every category with
// filler text and digit runs that must not match
func (br *BenchmarkRunner) GenerateSyntheticTestData() error {
	size := br.config.TestDataSize
	if size <= 0 {
		size = 64 << 10
	}

	files := []BenchmarkTestFile{
		{Name: "synthetic_contacts.txt", Content: generateSyntheticDocument(contactBlock, size)},
		{Name: "synthetic_prose.txt", Content: generateSyntheticDocument(proseBlock, size)},
		{Name: "synthetic_identifiers.txt", Content: generateSyntheticDocument(identifierBlock, size)},
	}
	for i := range files {
		files[i].ExpectedMatches = len(br.scanner.Extract(files[i].Content))
	}
	return br.LoadTestFiles(files)
}

const (
	contactBlock = "Contact Information:\n" +
		"Phone: (234) 567-8900\n" +
		"Toll free: 1-800-555-1234\n" +
		"London office: +44 20 7946 0958\n" +
		"Mobile: 9876543210, 98765 43210\n" +
		"Desk: 2345678901 ext 12345678901\n\n"
	proseBlock = "Lorem ipsum dolor sit amet, consectetur adipiscing elit. " +
		"Sed do eiusmod tempor incididunt ut labore et dolore magna aliqua. " +
		"Reach the front desk on 234.567.8900 during business hours.\n"
	identifierBlock = "order 123456 shipped 2024-01-15 invoice 98-76-54 " +
		"ref 12 34 56 serial 123456789012345678 version 1.2.3.4\n"
)

// generateSyntheticDocument repeats block until the document is size bytes,
// cutting at the last complete block
func generateSyntheticDocument(block string, size int) []byte {
	repeats := max(size/len(block), 1)
	return bytes.Repeat([]byte(block), repeats)
}

// RunBenchmark extracts the test files on every worker until the configured
// duration elapses or ctx is cancelled. Cancellation ends the run early but
// still returns the results gathered so far.
func (br *BenchmarkRunner) RunBenchmark(ctx context.Context) (*BenchmarkResults, error) {
	br.mu.Lock()
	defer br.mu.Unlock()

	if len(br.testFiles) == 0 {
		return nil, fmt.Errorf("no test files loaded")
	}

	var finishTiming func(bool, map[string]interface{})
	if br.observer != nil {
		finishTiming = br.observer.StartTiming("benchmark_runner", "run_benchmark", "")
	}

	for i := 0; i < br.config.WarmupRuns; i++ {
		for _, f := range br.testFiles {
			br.scanner.Extract(f.Content)
		}
	}
	br.logDetail(fmt.Sprintf("Starting benchmark with %d workers for %s", br.config.Workers, br.config.Duration))

	runCtx, cancel := context.WithTimeout(ctx, br.config.Duration)
	defer cancel()

	stats := make([]workerStats, br.config.Workers)
	start := time.Now()

	g, gctx := errgroup.WithContext(runCtx)
	for w := 0; w < br.config.Workers; w++ {
		w := w
		g.Go(func() error {
			br.runWorker(gctx, w, &stats[w])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if finishTiming != nil {
			finishTiming(false, nil)
		}
		return nil, err
	}
	elapsed := time.Since(start)

	results := summarise(stats, elapsed)
	results.Workers = br.config.Workers

	if finishTiming != nil {
		finishTiming(true, map[string]interface{}{
			"calls":            results.Calls,
			"matches":          results.Matches,
			"calls_per_second": results.CallsPerSecond,
			"mib_per_second":   results.MiBPerSecond,
		})
	}

	if err := ctx.Err(); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return results, err
	}
	return results, nil
}

// runWorker starts at a different file per worker so documents are not
// extracted in lockstep
func (br *BenchmarkRunner) runWorker(ctx context.Context, worker int, stats *workerStats) {
	for i := worker; ctx.Err() == nil; i++ {
		f := br.testFiles[i%len(br.testFiles)]

		callStart := time.Now()
		found := br.scanner.Extract(f.Content)
		stats.samples = append(stats.samples, time.Since(callStart))

		stats.calls++
		stats.bytes += int64(len(f.Content))
		stats.matches += int64(len(found))
		if len(found) != f.ExpectedMatches {
			stats.mismatch++
		}
	}
}

func summarise(stats []workerStats, elapsed time.Duration) *BenchmarkResults {
	results := &BenchmarkResults{Elapsed: elapsed}

	var samples []time.Duration
	for _, s := range stats {
		results.Calls += s.calls
		results.Bytes += s.bytes
		results.Matches += s.matches
		results.Mismatch += s.mismatch
		samples = append(samples, s.samples...)
	}
	if results.Calls == 0 || elapsed <= 0 {
		return results
	}

	seconds := elapsed.Seconds()
	results.CallsPerSecond = float64(results.Calls) / seconds
	results.MiBPerSecond = float64(results.Bytes) / (1 << 20) / seconds

	slices.Sort(samples)
	var total time.Duration
	for _, d := range samples {
		total += d
	}
	results.AverageCallTime = total / time.Duration(len(samples))
	results.MinCallTime = samples[0]
	results.MaxCallTime = samples[len(samples)-1]
	results.P95CallTime = samples[(len(samples)*95)/100]
	return results
}

// WriteReport prints results as a short text table
func WriteReport(w io.Writer, results *BenchmarkResults) {
	fmt.Fprintf(w, "Workers:        %d\n", results.Workers)
	fmt.Fprintf(w, "Duration:       %s\n", results.Elapsed.Round(time.Millisecond))
	fmt.Fprintf(w, "Calls:          %d (%.0f/s)\n", results.Calls, results.CallsPerSecond)
	fmt.Fprintf(w, "Throughput:     %.2f MiB/s\n", results.MiBPerSecond)
	fmt.Fprintf(w, "Matches:        %d\n", results.Matches)
	fmt.Fprintf(w, "Call time:      avg %s, min %s, p95 %s, max %s\n",
		results.AverageCallTime, results.MinCallTime, results.P95CallTime, results.MaxCallTime)
	if results.Mismatch > 0 {
		fmt.Fprintf(w, "Mismatches:     %d\n", results.Mismatch)
	}
}

func (br *BenchmarkRunner) logDetail(detail string) {
	if br.observer != nil && br.observer.DebugObserver != nil {
		br.observer.DebugObserver.LogDetail("benchmark_runner", detail)
	}
}
