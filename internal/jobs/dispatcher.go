// Package jobs runs council reviews in the background.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sevigo/code-council/internal/config"
	"github.com/sevigo/code-council/internal/core"
)

// jobTimeout bounds a single review, including every model call.
const jobTimeout = 15 * time.Minute

// dispatcher implements core.JobDispatcher and manages a pool of worker goroutines
// for processing GitHub events as code review jobs.
type dispatcher struct {
	reviewJob  core.Job               // Job implementation executed by each worker.
	jobQueue   chan *core.GitHubEvent // Queue of incoming GitHub events.
	maxWorkers int                    // Number of concurrent workers.
	wg         sync.WaitGroup         // Tracks active workers for graceful shutdown.
	logger     *slog.Logger           // Logger instance for the dispatcher.
}

// NewDispatcher initializes a dispatcher with a worker pool sized from cfg.
func NewDispatcher(reviewJob core.Job, cfg config.ServerConfig, logger *slog.Logger) core.JobDispatcher {
	maxWorkers := max(cfg.MaxWorkers, 1)
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 100
	}
	d := &dispatcher{
		reviewJob:  reviewJob,
		maxWorkers: maxWorkers,
		jobQueue:   make(chan *core.GitHubEvent, queueSize),
		logger:     logger,
	}
	d.startWorkers()
	return d
}

// startWorkers launches maxWorkers goroutines to process jobs from the queue.
func (d *dispatcher) startWorkers() {
	for i := range d.maxWorkers {
		d.wg.Add(1)
		go d.startWorker(i)
	}
}

// startWorker processes events from the queue until it's closed.
func (d *dispatcher) startWorker(workerID int) {
	defer d.wg.Done()
	d.logger.Info("starting review worker", "id", workerID)

	for event := range d.jobQueue {
		d.processEvent(workerID, event)
	}

	d.logger.Info("shutting down review worker", "id", workerID)
}

// processEvent logs and runs a review job for a GitHub event.
func (d *dispatcher) processEvent(workerID int, event *core.GitHubEvent) {
	log := d.logger.With("job_id", uuid.NewString(), "repo", event.RepoFullName, "pr", event.PRNumber)
	log.Info("worker processing job", "worker_id", workerID)

	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	start := time.Now()
	err := d.reviewJob.Run(ctx, event)
	switch {
	case err == nil:
		log.Info("review job finished", "duration", time.Since(start).Round(time.Millisecond))
	case errors.Is(err, ErrAlreadyProcessed), errors.Is(err, ErrAlreadyReviewed), errors.Is(err, ErrRateLimited):
		log.Info("review job skipped", "reason", err)
	default:
		log.Error("code review job failed", "error", err)
	}
}

// Dispatch queues a GitHub event for processing by a worker.
func (d *dispatcher) Dispatch(_ context.Context, event *core.GitHubEvent) error {
	d.logger.Info("queuing code review job", "repo", event.RepoFullName, "pr", event.PRNumber, "delivery", event.DeliveryID)

	select {
	case d.jobQueue <- event:
		return nil
	default:
		return fmt.Errorf("job queue is full, cannot accept new review job")
	}
}

// Stop gracefully shuts down the dispatcher, waiting for all workers to finish.
func (d *dispatcher) Stop() {
	d.logger.Info("stopping dispatcher and waiting for jobs to finish")
	close(d.jobQueue)
	d.wg.Wait()
	d.logger.Info("all review jobs have finished")
}
