package jobs

import (
	"context"
	"log/slog"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/code-council/internal/config"
	"github.com/sevigo/code-council/internal/core"
)

type countingJob struct {
	runs    atomic.Int32
	release chan struct{}
}

func (j *countingJob) Run(_ context.Context, _ *core.GitHubEvent) error {
	if j.release != nil {
		<-j.release
	}
	j.runs.Add(1)
	return nil
}

func TestDispatcher_RunsQueuedJobs(t *testing.T) {
	job := &countingJob{}
	d := NewDispatcher(job, config.ServerConfig{MaxWorkers: 2, QueueSize: 10}, slog.New(slog.DiscardHandler))

	for i := 0; i < 5; i++ {
		require.NoError(t, d.Dispatch(context.Background(), &core.GitHubEvent{PRNumber: i + 1}))
	}
	d.Stop()

	assert.Equal(t, int32(5), job.runs.Load())
}

func TestDispatcher_QueueFull(t *testing.T) {
	job := &countingJob{release: make(chan struct{})}
	d := NewDispatcher(job, config.ServerConfig{MaxWorkers: 1, QueueSize: 1}, slog.New(slog.DiscardHandler))

	var errs int
	for i := 0; i < 5; i++ {
		if err := d.Dispatch(context.Background(), &core.GitHubEvent{PRNumber: i + 1}); err != nil {
			errs++
		}
	}
	close(job.release)
	d.Stop()

	assert.GreaterOrEqual(t, errs, 3, "one job in flight and one queued at most")
	assert.Equal(t, int32(5-errs), job.runs.Load())
}
