// Package core defines the essential interfaces and data structures that form the
// backbone of the application. These components are designed to be abstract,
// allowing for flexible and decoupled implementations of the application's logic.
package core

import (
	"context"
)

// JobDispatcher defines the contract for a system that can accept and queue
// background jobs for asynchronous processing. This interface decouples the
// event source (e.g., a webhook handler) from the job execution mechanism.
type JobDispatcher interface {
	// Dispatch accepts a GitHubEvent and queues it for processing.
	// It returns an error if the job cannot be queued, for example, if the
	// queue is full, providing a mechanism for backpressure.
	Dispatch(ctx context.Context, event *GitHubEvent) error
	// Stop drains the queue and waits for in-flight jobs.
	Stop()
}

// Job represents a single, executable unit of work that can be processed by the
// application's job dispatcher.
type Job interface {
	Run(ctx context.Context, event *GitHubEvent) error
}

// Generator produces candidate annotations for one work unit. Implementations
// talk to a model; they must not attach a source label and should return a
// small, bounded number of candidates per call.
//
//go:generate mockgen -destination=../../mocks/mock_generator.go -package=mocks . Generator
type Generator interface {
	Generate(ctx context.Context, unit WorkUnit) ([]CandidateAnnotation, error)
}

// GeneratorFactory binds a generator to the policy of one repository, since
// some agents are prompted with the repository's own conventions.
//
//go:generate mockgen -destination=../../mocks/mock_generator_factory.go -package=mocks . GeneratorFactory
type GeneratorFactory interface {
	ForRepo(cfg *RepoConfig) Generator
}

// Publisher delivers a consolidated report to the source host. It owns the
// mapping of annotation lines onto the host's addressing scheme and any
// fallback to a summary-only publish.
type Publisher interface {
	Publish(ctx context.Context, event *GitHubEvent, report *Report, files []ChangedFile) error
}

// StateStore is the narrow capability used for idempotency and similar
// "have we seen this key" checks.
//
//go:generate mockgen -destination=../../mocks/mock_state_store.go -package=mocks . StateStore
type StateStore interface {
	Check(ctx context.Context, key string) (bool, error)
	Record(ctx context.Context, key string) error
}
