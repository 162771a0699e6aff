// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package parallel

import (
	"context"
	"runtime"
	"time"

	"phone-scan/internal/detector"
	"phone-scan/internal/observability"
	"phone-scan/internal/preprocessors"

	"github.com/google/uuid"
)

// maxDefaultWorkers caps the worker count chosen from the CPU count
const maxDefaultWorkers = 8

// ParallelProcessor manages parallel file processing
type ParallelProcessor struct {
	workers  int
	observer *observability.StandardObserver
}

// ProcessingStats tracks parallel processing statistics
type ProcessingStats struct {
	TotalFiles     int           `json:"total_files"`
	ProcessedFiles int           `json:"processed_files"`
	FailedFiles    int           `json:"failed_files"`
	TotalMatches   int           `json:"total_matches"`
	TotalDuration  time.Duration `json:"total_duration_ms"`
	WorkerCount    int           `json:"worker_count"`
	AvgFileTime    time.Duration `json:"avg_file_time_ms"`
	Failures       []FileFailure `json:"failures,omitempty"`
}

// FileFailure records a file that could not be scanned
type FileFailure struct {
	FilePath string `json:"file_path"`
	Err      error  `json:"-"`
}

// NewParallelProcessor creates a parallel processor. A worker count below
// one uses the number of CPUs, capped at eight.
func NewParallelProcessor(workers int, observer *observability.StandardObserver) *ParallelProcessor {
	if workers < 1 {
		workers = min(runtime.NumCPU(), maxDefaultWorkers)
	}

	return &ParallelProcessor{
		workers:  workers,
		observer: observer,
	}
}

// ProgressCallback is called when a file is completed
type ProgressCallback func(completed, total int, currentFile string)

// ProcessFiles scans the files in parallel. Matches are returned grouped by
// file in the order of filePaths, and by offset within a file. Files that
// fail are listed in the stats and do not stop the batch. The error is
// non-nil only when ctx is cancelled, in which case the matches cover the
// files finished so far.
func (pp *ParallelProcessor) ProcessFiles(ctx context.Context, filePaths []string, validator detector.Validator, router *preprocessors.Router, progressCallback ProgressCallback) ([]detector.Match, *ProcessingStats, error) {
	start := time.Now()

	var finishTiming func(bool, map[string]interface{})
	if pp.observer != nil {
		finishTiming = pp.observer.StartTiming("parallel_processor", "process_files", "batch")
	}

	jobCount := len(filePaths)
	workers := max(1, min(pp.workers, jobCount))
	pool := NewWorkerPool(ctx, workers, pp.observer)
	pool.Start()

	// Submit jobs in a separate goroutine to prevent deadlock
	go func() {
		defer pool.Close()
		for i, filePath := range filePaths {
			job := &Job{
				Index:     i,
				JobID:     uuid.NewString(),
				FilePath:  filePath,
				Validator: validator,
				Router:    router,
			}
			if !pool.Submit(job) {
				return
			}
		}
	}()
	go pool.Wait()

	perFile := make([][]detector.Match, jobCount)
	failures := make([]*FileFailure, jobCount)
	completed := 0
	processedCount := 0
	totalDuration := time.Duration(0)

	for result := range pool.Results() {
		completed++
		totalDuration += result.Duration

		if result.Error != nil {
			failures[result.Index] = &FileFailure{FilePath: result.FilePath, Err: result.Error}
			if pp.observer != nil {
				pp.observer.LogOperation(observability.StandardObservabilityData{
					Component: "parallel_processor",
					Operation: "file_processing",
					FilePath:  result.FilePath,
					Success:   false,
					Error:     result.Error.Error(),
				})
			}
		} else {
			perFile[result.Index] = result.Matches
			processedCount++
		}

		if progressCallback != nil {
			progressCallback(completed, jobCount, result.FilePath)
		}
	}

	var allMatches []detector.Match
	for _, matches := range perFile {
		allMatches = append(allMatches, matches...)
	}

	stats := &ProcessingStats{
		TotalFiles:     jobCount,
		ProcessedFiles: processedCount,
		TotalMatches:   len(allMatches),
		TotalDuration:  time.Since(start),
		WorkerCount:    workers,
		AvgFileTime:    totalDuration / time.Duration(max(completed, 1)),
	}
	for _, failure := range failures {
		if failure != nil {
			stats.Failures = append(stats.Failures, *failure)
		}
	}
	stats.FailedFiles = len(stats.Failures)

	err := ctx.Err()

	if finishTiming != nil {
		finishTiming(err == nil, map[string]interface{}{
			"total_files":     jobCount,
			"processed_files": processedCount,
			"failed_files":    stats.FailedFiles,
			"total_matches":   len(allMatches),
			"worker_count":    workers,
			"duration_ms":     stats.TotalDuration.Milliseconds(),
		})
	}

	return allMatches, stats, err
}
