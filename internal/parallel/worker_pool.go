// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package parallel

import (
	"context"
	"fmt"
	"sync"
	"time"

	"phone-scan/internal/detector"
	"phone-scan/internal/observability"
	"phone-scan/internal/preprocessors"
)

// WorkerPool runs file jobs on a fixed number of goroutines
type WorkerPool struct {
	workers  int
	jobs     chan *Job
	results  chan *Result
	wg       sync.WaitGroup
	ctx      context.Context
	cancel   context.CancelFunc
	observer *observability.StandardObserver
}

// Job represents a file processing task
type Job struct {
	// Position of the file in the caller's list
	Index     int
	JobID     string
	FilePath  string
	Validator detector.Validator
	Router    *preprocessors.Router
}

// Result represents processing results
type Result struct {
	Index    int
	JobID    string
	FilePath string
	Matches  []detector.Match
	Error    error
	Duration time.Duration
}

// NewWorkerPool creates a worker pool bound to ctx. Cancelling ctx stops
// the workers after their current job.
func NewWorkerPool(ctx context.Context, workers int, observer *observability.StandardObserver) *WorkerPool {
	if workers < 1 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(ctx)

	return &WorkerPool{
		workers:  workers,
		jobs:     make(chan *Job, workers*2),
		results:  make(chan *Result, workers*2),
		ctx:      ctx,
		cancel:   cancel,
		observer: observer,
	}
}

// Start initializes worker goroutines
func (wp *WorkerPool) Start() {
	for i := 0; i < wp.workers; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
}

// Submit adds a job to the queue. It returns false once the pool's context
// is done.
func (wp *WorkerPool) Submit(job *Job) bool {
	select {
	case wp.jobs <- job:
		return true
	case <-wp.ctx.Done():
		return false
	}
}

// Close signals that no more jobs will be submitted
func (wp *WorkerPool) Close() {
	close(wp.jobs)
}

// Wait blocks until every worker has exited, then closes the results channel
func (wp *WorkerPool) Wait() {
	wp.wg.Wait()
	close(wp.results)
	wp.cancel()
}

// Results returns the results channel
func (wp *WorkerPool) Results() <-chan *Result {
	return wp.results
}

// worker processes jobs from the queue
func (wp *WorkerPool) worker(id int) {
	defer wp.wg.Done()

	for job := range wp.jobs {
		result := wp.processJob(job, id)

		select {
		case wp.results <- result:
		case <-wp.ctx.Done():
			return
		}
	}
}

// processJob extracts the text of one file and runs the validator over it
func (wp *WorkerPool) processJob(job *Job, workerID int) *Result {
	start := time.Now()
	result := &Result{Index: job.Index, JobID: job.JobID, FilePath: job.FilePath}

	if err := wp.ctx.Err(); err != nil {
		result.Error = err
		return result
	}

	var finishTiming func(bool, map[string]interface{})
	if wp.observer != nil {
		finishTiming = wp.observer.StartTiming("worker_pool", "process_job", job.FilePath)
	}

	result.Matches, result.Error = runJob(job)
	result.Duration = time.Since(start)

	if finishTiming != nil {
		finishTiming(result.Error == nil, map[string]interface{}{
			"job_id":      job.JobID,
			"worker_id":   workerID,
			"match_count": len(result.Matches),
			"duration_ms": result.Duration.Milliseconds(),
		})
	}

	return result
}

func runJob(job *Job) ([]detector.Match, error) {
	if job.Router == nil {
		return nil, fmt.Errorf("no preprocessor router for %s", job.FilePath)
	}

	content, err := job.Router.ProcessFile(job.FilePath)
	if err != nil {
		return nil, err
	}

	matches, err := job.Validator.ValidateContent(content.Text, job.FilePath)
	if err != nil {
		return nil, fmt.Errorf("validator %s failed on %s: %w", job.Validator.Name(), job.FilePath, err)
	}
	return matches, nil
}
