package core

import (
	"fmt"
	"strings"

	"github.com/google/go-github/v73/github"
)

// ReviewCommand is the comment prefix that triggers a council review.
const ReviewCommand = "/council review"

// GitHubEvent represents a simplified, internal view of a GitHub webhook event.
type GitHubEvent struct {
	// Repository details
	RepoOwner    string
	RepoName     string
	RepoFullName string
	Language     string

	PRNumber int
	PRTitle  string
	HeadSHA  string

	Commenter      string
	CommenterID    int64
	InstallationID int64
	DeliveryID     string
}

// EventFromIssueComment transforms a raw GitHub IssueCommentEvent into the application's
// internal GitHubEvent representation. It acts as an anti-corruption layer, ensuring
// that the incoming webhook payload is valid and contains all necessary data before
// it's processed by a job. Only newly created comments on pull requests that start
// with the review command are accepted.
func EventFromIssueComment(event *github.IssueCommentEvent, deliveryID string) (*GitHubEvent, error) {
	if event.GetAction() != "created" {
		return nil, fmt.Errorf("comment action %q is not handled", event.GetAction())
	}

	if !event.GetIssue().IsPullRequest() {
		return nil, fmt.Errorf("comment is not on a pull request")
	}

	body := strings.ToLower(strings.TrimSpace(event.GetComment().GetBody()))
	if !strings.HasPrefix(body, ReviewCommand) {
		return nil, fmt.Errorf("comment is not a review command")
	}

	repo := event.GetRepo()
	if repo == nil || repo.GetOwner() == nil || repo.GetOwner().GetLogin() == "" || repo.GetName() == "" {
		return nil, fmt.Errorf("repository or owner information is missing from the event")
	}

	prNumber := event.GetIssue().GetNumber()
	if prNumber <= 0 {
		return nil, fmt.Errorf("invalid pull request number: %d", prNumber)
	}

	if event.GetComment().GetUser() == nil || event.GetComment().GetUser().GetLogin() == "" {
		return nil, fmt.Errorf("commenter information is missing from the event")
	}

	if event.GetInstallation() == nil || event.GetInstallation().GetID() == 0 {
		return nil, fmt.Errorf("installation ID is missing from the event")
	}

	return &GitHubEvent{
		RepoOwner:      repo.GetOwner().GetLogin(),
		RepoName:       repo.GetName(),
		RepoFullName:   repo.GetFullName(),
		Language:       repo.GetLanguage(),
		InstallationID: event.GetInstallation().GetID(),
		PRNumber:       prNumber,
		PRTitle:        event.GetIssue().GetTitle(),
		Commenter:      event.GetComment().GetUser().GetLogin(),
		CommenterID:    event.GetComment().GetUser().GetID(),
		DeliveryID:     deliveryID,
	}, nil
}
