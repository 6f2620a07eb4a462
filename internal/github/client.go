// Package github provides functionality for interacting with the GitHub API.
package github

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/go-github/v73/github"
	"golang.org/x/oauth2"

	"github.com/sevigo/code-council/internal/core"
)

// ErrFileNotFound is returned by GetFileContent when the path does not exist at the ref.
var ErrFileNotFound = errors.New("file not found")

// DraftReviewComment represents a single comment to be posted as part of a review.
// StartLine is only sent when it precedes Line.
type DraftReviewComment struct {
	Path      string
	Line      int
	StartLine int
	Body      string
}

// Client defines a set of operations for interacting with the GitHub API,
// focusing on pull requests, comments, and check runs.
//
//go:generate mockgen -destination=../../mocks/mock_github_client.go -package=mocks . Client
type Client interface {
	GetPullRequest(ctx context.Context, owner, repo string, number int) (*github.PullRequest, error)
	GetChangedFiles(ctx context.Context, owner, repo string, number int) ([]core.ChangedFile, error)
	GetFileContent(ctx context.Context, owner, repo, path, ref string) ([]byte, error)
	ListReviews(ctx context.Context, owner, repo string, number int) ([]*github.PullRequestReview, error)
	CreateComment(ctx context.Context, owner, repo string, number int, body string) error
	CreateReview(ctx context.Context, owner, repo string, number int, commitID, body string, comments []DraftReviewComment) error
	CreateCheckRun(ctx context.Context, owner, repo string, opts github.CreateCheckRunOptions) (*github.CheckRun, error)
	UpdateCheckRun(ctx context.Context, owner, repo string, checkRunID int64, opts github.UpdateCheckRunOptions) (*github.CheckRun, error)
}

type gitHubClient struct {
	client *github.Client
	logger *slog.Logger
}

// NewGitHubClient wraps the official go-github client to provide a focused,
// testable interface for application-specific GitHub operations.
func NewGitHubClient(client *github.Client, logger *slog.Logger) Client {
	return &gitHubClient{client: client, logger: logger}
}

// NewPATClient creates a new GitHub client authenticated with a Personal Access Token (PAT).
// This is useful for CLI tools or local development where an App installation is not available.
func NewPATClient(ctx context.Context, token string, logger *slog.Logger) Client {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)
	return &gitHubClient{client: github.NewClient(tc), logger: logger}
}

// IsUnprocessable reports whether GitHub rejected a request payload (HTTP 422),
// which happens when an inline comment points outside the diff.
func IsUnprocessable(err error) bool {
	var errResp *github.ErrorResponse
	if errors.As(err, &errResp) && errResp.Response != nil {
		return errResp.Response.StatusCode == http.StatusUnprocessableEntity
	}
	return false
}

// CreateReview creates a COMMENT review pinned to commitID with a summary body
// and line-specific comments.
func (g *gitHubClient) CreateReview(ctx context.Context, owner, repo string, number int, commitID, body string, comments []DraftReviewComment) error {
	ghComments := make([]*github.DraftReviewComment, 0, len(comments))
	for _, c := range comments {
		dc := &github.DraftReviewComment{
			Path: github.Ptr(c.Path),
			Line: github.Ptr(c.Line),
			Side: github.Ptr("RIGHT"),
			Body: github.Ptr(c.Body),
		}
		if c.StartLine > 0 && c.StartLine < c.Line {
			dc.StartLine = github.Ptr(c.StartLine)
			dc.StartSide = github.Ptr("RIGHT")
		}
		ghComments = append(ghComments, dc)
	}

	reviewRequest := &github.PullRequestReviewRequest{
		Body:     github.Ptr(body),
		Event:    github.Ptr("COMMENT"),
		Comments: ghComments,
	}
	if commitID != "" {
		reviewRequest.CommitID = github.Ptr(commitID)
	}

	_, _, err := g.client.PullRequests.CreateReview(ctx, owner, repo, number, reviewRequest)
	if err != nil {
		g.logger.Error("failed to create pull request review", "owner", owner, "repo", repo, "pr", number, "comments", len(comments), "error", err)
	}
	return err
}

// GetPullRequest retrieves a single pull request by its number.
func (g *gitHubClient) GetPullRequest(ctx context.Context, owner, repo string, number int) (*github.PullRequest, error) {
	pr, _, err := g.client.PullRequests.Get(ctx, owner, repo, number)
	if err != nil {
		g.logger.Error("failed to get pull request", "owner", owner, "repo", repo, "pr", number, "error", err)
		return nil, err
	}
	return pr, nil
}

// GetChangedFiles retrieves the list of files modified in a pull request.
// It handles pagination automatically to ensure all files are fetched
// from the GitHub API, which returns a maximum of 100 files per page.
// Files without a patch (binary or too large for the API) are included with
// an empty patch.
func (g *gitHubClient) GetChangedFiles(ctx context.Context, owner, repo string, number int) ([]core.ChangedFile, error) {
	var allFiles []core.ChangedFile
	opts := &github.ListOptions{PerPage: 100}

	for {
		files, resp, err := g.client.PullRequests.ListFiles(ctx, owner, repo, number, opts)
		if err != nil {
			g.logger.Error("failed to list files for pull request", "owner", owner, "repo", repo, "pr", number, "error", err)
			return nil, err
		}

		for _, file := range files {
			if file.GetStatus() == "removed" {
				continue
			}
			allFiles = append(allFiles, core.ChangedFile{
				Path:  file.GetFilename(),
				Patch: file.GetPatch(),
			})
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return allFiles, nil
}

// GetFileContent returns the decoded contents of a file at ref.
func (g *gitHubClient) GetFileContent(ctx context.Context, owner, repo, path, ref string) ([]byte, error) {
	file, _, resp, err := g.client.Repositories.GetContents(ctx, owner, repo, path, &github.RepositoryContentGetOptions{Ref: ref})
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("failed to get %s@%s: %w", path, ref, err)
	}
	if file == nil {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	content, err := file.GetContent()
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return []byte(content), nil
}

// ListReviews returns all reviews on a pull request.
func (g *gitHubClient) ListReviews(ctx context.Context, owner, repo string, number int) ([]*github.PullRequestReview, error) {
	var all []*github.PullRequestReview
	opts := &github.ListOptions{PerPage: 100}
	for {
		reviews, resp, err := g.client.PullRequests.ListReviews(ctx, owner, repo, number, opts)
		if err != nil {
			g.logger.Error("failed to list reviews", "owner", owner, "repo", repo, "pr", number, "error", err)
			return nil, err
		}
		all = append(all, reviews...)
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return all, nil
}

// CreateComment creates a new comment on a pull request.
func (g *gitHubClient) CreateComment(ctx context.Context, owner, repo string, number int, body string) error {
	comment := &github.IssueComment{Body: &body}
	_, _, err := g.client.Issues.CreateComment(ctx, owner, repo, number, comment)
	if err != nil {
		g.logger.Error("failed to create comment", "owner", owner, "repo", repo, "pr", number, "error", err)
	}
	return err
}

// CreateCheckRun creates a new check run.
func (g *gitHubClient) CreateCheckRun(ctx context.Context, owner, repo string, opts github.CreateCheckRunOptions) (*github.CheckRun, error) {
	checkRun, _, err := g.client.Checks.CreateCheckRun(ctx, owner, repo, opts)
	if err != nil {
		g.logger.Error("failed to create check run", "owner", owner, "repo", repo, "error", err)
		return nil, err
	}
	return checkRun, nil
}

// UpdateCheckRun updates an existing check run.
func (g *gitHubClient) UpdateCheckRun(ctx context.Context, owner, repo string, checkRunID int64, opts github.UpdateCheckRunOptions) (*github.CheckRun, error) {
	checkRun, _, err := g.client.Checks.UpdateCheckRun(ctx, owner, repo, checkRunID, opts)
	if err != nil {
		g.logger.Error("failed to update check run", "owner", owner, "repo", repo, "checkRunID", checkRunID, "error", err)
	}
	return checkRun, err
}
