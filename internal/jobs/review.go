package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/sevigo/code-council/internal/config"
	"github.com/sevigo/code-council/internal/core"
	"github.com/sevigo/code-council/internal/github"
	"github.com/sevigo/code-council/internal/storage"
)

var (
	// ErrAlreadyProcessed means the webhook delivery was handled before.
	ErrAlreadyProcessed = errors.New("delivery already processed")
	// ErrAlreadyReviewed means the head commit already carries a council review.
	ErrAlreadyReviewed = errors.New("head commit already reviewed")
	ErrRateLimited     = errors.New("installation review rate limit exceeded")
)

// RateLimiter decides whether an installation may start another review.
type RateLimiter interface {
	Allow(installationID int64) bool
}

// ReviewJob reviews one pull request in response to a review command.
type ReviewJob struct {
	clients    github.ClientFactory
	generators core.GeneratorFactory
	runner     *Runner
	state      core.StateStore
	store      storage.Store
	limiter    RateLimiter
	maxInline  int
	logger     *slog.Logger
}

func NewReviewJob(
	cfg *config.Config,
	clients github.ClientFactory,
	generators core.GeneratorFactory,
	runner *Runner,
	state core.StateStore,
	store storage.Store,
	limiter RateLimiter,
	logger *slog.Logger,
) core.Job {
	if cfg == nil {
		panic("config cannot be nil")
	}
	if clients == nil || generators == nil || runner == nil {
		panic("review pipeline dependencies cannot be nil")
	}
	if state == nil || store == nil || limiter == nil {
		panic("state, store and limiter cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &ReviewJob{
		clients:    clients,
		generators: generators,
		runner:     runner,
		state:      state,
		store:      store,
		limiter:    limiter,
		maxInline:  cfg.Council.MaxInline,
		logger:     logger,
	}
}

func deliveryKey(event *core.GitHubEvent) string {
	return "delivery:" + event.DeliveryID
}

// Run executes the review for a review-command event.
func (j *ReviewJob) Run(ctx context.Context, event *core.GitHubEvent) error {
	if err := validateEvent(event); err != nil {
		return fmt.Errorf("input validation failed: %w", err)
	}
	log := j.logger.With("repo", event.RepoFullName, "pr", event.PRNumber, "delivery", event.DeliveryID)

	if event.DeliveryID != "" {
		seen, err := j.state.Check(ctx, deliveryKey(event))
		if err != nil {
			log.Warn("idempotency check failed, continuing", "error", err)
		}
		if seen {
			return ErrAlreadyProcessed
		}
	}

	client, err := j.clients.ForInstallation(ctx, event.InstallationID)
	if err != nil {
		return fmt.Errorf("failed to create GitHub client: %w", err)
	}
	status := github.NewStatusUpdater(client)

	if !j.limiter.Allow(event.InstallationID) {
		msg := "⏳ Code Council review limit reached for this installation. Please try again later."
		if err := status.PostSimpleComment(ctx, event, msg); err != nil {
			log.Error("failed to post rate limit comment", "error", err)
		}
		return ErrRateLimited
	}

	pr, err := client.GetPullRequest(ctx, event.RepoOwner, event.RepoName, event.PRNumber)
	if err != nil {
		return fmt.Errorf("failed to get PR details: %w", err)
	}
	if pr.GetHead().GetSHA() == "" {
		return fmt.Errorf("PR %d has no valid head SHA", event.PRNumber)
	}
	event.HeadSHA = pr.GetHead().GetSHA()
	if event.PRTitle == "" {
		event.PRTitle = pr.GetTitle()
	}

	reviews, err := client.ListReviews(ctx, event.RepoOwner, event.RepoName, event.PRNumber)
	if err != nil {
		log.Warn("failed to list reviews, skipping duplicate check", "error", err)
	} else if github.HasReviewedSHA(reviews, event.HeadSHA) {
		log.Info("head commit already reviewed", "sha", event.HeadSHA)
		j.recordDelivery(ctx, event, log)
		return ErrAlreadyReviewed
	}

	checkRunID, err := status.InProgress(ctx, event, "Code Council review", "The council is reviewing this pull request...")
	if err != nil {
		return fmt.Errorf("failed to set in-progress status: %w", err)
	}

	report, err := j.review(ctx, client, event, log)
	if err != nil {
		j.updateStatusOnError(ctx, status, event, checkRunID, err)
		return err
	}

	j.recordDelivery(ctx, event, log)

	if err := status.Completed(ctx, event, checkRunID, github.Conclusion(report.Summary.Risk), "Code Council review complete", report.SummaryText); err != nil {
		log.Error("failed to update completion status", "error", err)
		return fmt.Errorf("failed to update completion status: %w", err)
	}
	log.Info("review job completed", "annotations", len(report.Annotations), "risk", report.Summary.Risk)
	return nil
}

func (j *ReviewJob) review(ctx context.Context, client github.Client, event *core.GitHubEvent, log *slog.Logger) (*core.Report, error) {
	changed, err := client.GetChangedFiles(ctx, event.RepoOwner, event.RepoName, event.PRNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to get changed files: %w", err)
	}
	files := make([]core.ChangedFile, 0, len(changed))
	for _, f := range changed {
		if f.Patch != "" {
			files = append(files, f)
		}
	}

	repoCfg, err := github.FetchRepoConfig(ctx, client, event.RepoOwner, event.RepoName, event.HeadSHA)
	switch {
	case errors.Is(err, config.ErrConfigNotFound):
		log.Debug("no repository config, using defaults")
	case err != nil:
		log.Warn("ignoring repository config", "error", err)
	}

	report, err := j.runner.Review(ctx, j.generators.ForRepo(repoCfg), files, repoCfg)
	if err != nil {
		return nil, err
	}

	publisher := github.NewPublisher(client, j.maxInline, j.logger)
	if err := publisher.Publish(ctx, event, report, files); err != nil {
		return nil, fmt.Errorf("failed to publish review: %w", err)
	}

	j.saveReview(ctx, event, report, log)
	return report, nil
}

// saveReview persists the report. Failures are logged; the review is already public.
func (j *ReviewJob) saveReview(ctx context.Context, event *core.GitHubEvent, report *core.Report, log *slog.Logger) {
	data, err := json.Marshal(report)
	if err != nil {
		log.Error("failed to encode report", "error", err)
		return
	}
	review := &core.Review{
		RunID:        uuid.NewString(),
		RepoFullName: event.RepoFullName,
		PRNumber:     event.PRNumber,
		HeadSHA:      event.HeadSHA,
		TriggeredBy:  event.Commenter,
		Risk:         string(report.Summary.Risk),
		Annotations:  len(report.Annotations),
		ReportJSON:   data,
	}
	if err := j.store.SaveReview(ctx, review); err != nil {
		log.Error("failed to save review", "run_id", review.RunID, "error", err)
	}
}

func (j *ReviewJob) recordDelivery(ctx context.Context, event *core.GitHubEvent, log *slog.Logger) {
	if event.DeliveryID == "" {
		return
	}
	if err := j.state.Record(ctx, deliveryKey(event)); err != nil {
		log.Warn("failed to record delivery", "error", err)
	}
}

// updateStatusOnError fails the check run and tells the requester.
func (j *ReviewJob) updateStatusOnError(ctx context.Context, status github.StatusUpdater, event *core.GitHubEvent, checkRunID int64, cause error) {
	if err := status.Completed(ctx, event, checkRunID, "failure", "Code Council review failed", cause.Error()); err != nil {
		j.logger.Error("failed to update failure status", "error", err)
	}
	body := fmt.Sprintf("❌ Code Council review failed for `%s`. See the check run for details.", shortSHA(event.HeadSHA))
	if err := status.PostSimpleComment(ctx, event, body); err != nil {
		j.logger.Error("failed to post failure comment", "error", err)
	}
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}

func validateEvent(event *core.GitHubEvent) error {
	if event == nil {
		return errors.New("event cannot be nil")
	}
	if event.RepoOwner == "" || event.RepoName == "" {
		return errors.New("repository owner and name are required")
	}
	if event.PRNumber <= 0 {
		return fmt.Errorf("pull request number must be positive, got: %d", event.PRNumber)
	}
	if event.InstallationID <= 0 {
		return fmt.Errorf("installation ID must be positive, got: %d", event.InstallationID)
	}
	return nil
}
