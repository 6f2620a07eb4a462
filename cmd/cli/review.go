package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sevigo/code-council/internal/config"
	"github.com/sevigo/code-council/internal/core"
	"github.com/sevigo/code-council/internal/github"
	"github.com/sevigo/code-council/internal/gitutil"
	"github.com/sevigo/code-council/internal/wire"
)

var postReview bool

var reviewCmd = &cobra.Command{
	Use:   "review [pr-url]",
	Short: "Run a council review for a GitHub Pull Request",
	Long: `Run a council review for a GitHub Pull Request.

The review command fetches the PR diff and the repository's .code-council.yml,
runs every enabled agent over the changed files and prints the consolidated
report. With --post the report is published to the PR as a review.

Examples:
  council-cli review https://github.com/owner/repo/pull/123
  council-cli review --post owner/repo#123`,
	Args: cobra.ExactArgs(1),
	RunE: runReview,
}

func init() { //nolint:gochecknoinits // Cobra command registration
	reviewCmd.Flags().BoolVar(&postReview, "post", false, "Publish the review to the pull request")
	rootCmd.AddCommand(reviewCmd)
}

func runReview(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	timer := newStepTimer(4, verbose)
	overallStart := time.Now()

	timer.step("Initializing council")
	council, cleanup, err := wire.InitializeCouncil(ctx)
	if err != nil {
		return fmt.Errorf("failed to initialize council: %w\n\nTip: Check that your config.yaml exists and is valid", err)
	}
	defer cleanup()
	timer.done()

	token := githubToken
	if token == "" {
		token = council.Cfg.GitHub.Token
	}
	if token == "" {
		return errors.New("GitHub token is not set\n\nTip: Set CC_GITHUB_TOKEN or pass --github-token")
	}

	timer.step("Fetching PR")
	owner, repoName, prNumber, err := gitutil.ParsePullRequestURL(args[0])
	if err != nil {
		return fmt.Errorf("invalid PR URL: %w\n\nExpected format: https://github.com/owner/repo/pull/123", err)
	}
	client := github.NewPATClient(ctx, token, council.Logger)

	pr, err := client.GetPullRequest(ctx, owner, repoName, prNumber)
	if err != nil {
		return fmt.Errorf("failed to fetch PR: %w\n\nTip: Check that the PR exists and your token has access", err)
	}
	event := &core.GitHubEvent{
		RepoOwner:    owner,
		RepoName:     repoName,
		RepoFullName: fmt.Sprintf("%s/%s", owner, repoName),
		PRNumber:     prNumber,
		PRTitle:      pr.GetTitle(),
		HeadSHA:      pr.GetHead().GetSHA(),
		Language:     pr.GetBase().GetRepo().GetLanguage(),
	}

	changed, err := client.GetChangedFiles(ctx, owner, repoName, prNumber)
	if err != nil {
		return fmt.Errorf("failed to fetch changed files: %w", err)
	}
	files := withPatches(changed)

	repoCfg, err := github.FetchRepoConfig(ctx, client, owner, repoName, event.HeadSHA)
	switch {
	case errors.Is(err, config.ErrConfigNotFound):
		timer.info("No .code-council.yml, using defaults")
	case err != nil:
		warnColor.Printf("Ignoring repository config: %v\n", err)
	}
	timer.info("PR #%d: %s", pr.GetNumber(), pr.GetTitle())
	timer.info("Head SHA: %s", truncateSHA(event.HeadSHA))
	timer.info("Files with patches: %d of %d", len(files), len(changed))
	timer.done()

	timer.step("Running agents")
	report, err := council.Runner.Review(ctx, council.Generators.ForRepo(repoCfg), files, repoCfg)
	if err != nil {
		return fmt.Errorf("failed to run review: %w\n\nTip: Check that the LLM service is running", err)
	}
	timer.info("Annotations: %d", len(report.Annotations))
	timer.info("Warnings: %d", len(report.Warnings))
	timer.done()

	timer.step("Publishing")
	if postReview {
		publisher := github.NewPublisher(client, council.Cfg.Council.MaxInline, council.Logger)
		if err := publisher.Publish(ctx, event, report, files); err != nil {
			return fmt.Errorf("failed to publish review: %w", err)
		}
		timer.info("Posted to %s#%d", event.RepoFullName, prNumber)
	} else {
		timer.info("Skipped, pass --post to publish")
	}
	timer.done()

	if verbose {
		dimColor.Printf("\n⏱️  Total time: %s\n", time.Since(overallStart).Round(time.Millisecond))
	}
	return emitReport(report)
}

// withPatches drops files GitHub returned without a textual patch.
func withPatches(files []core.ChangedFile) []core.ChangedFile {
	out := make([]core.ChangedFile, 0, len(files))
	for _, f := range files {
		if f.Patch != "" {
			out = append(out, f)
		}
	}
	return out
}
