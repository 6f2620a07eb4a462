// Package gitutil reads change sets from local Git repositories.
package gitutil

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/utils/merkletrie"

	"github.com/sevigo/code-council/internal/core"
)

// Client handles interacting with Git repositories.
type Client struct {
	Logger *slog.Logger
}

// NewClient returns a new Client instance.
func NewClient(logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{Logger: logger}
}

// Open opens a Git repository at a given path.
func (c *Client) Open(path string) (*git.Repository, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open repository at %s: %w", path, err)
	}
	return repo, nil
}

// ChangedFiles diffs two revisions and returns every added or modified file
// with its unified-diff patch, sorted by path. Deleted files have nothing to
// annotate and are left out; binary files come back with an empty patch.
func (c *Client) ChangedFiles(repo *git.Repository, baseRev, headRev string) ([]core.ChangedFile, error) {
	baseTree, err := treeAt(repo, baseRev)
	if err != nil {
		return nil, err
	}
	headTree, err := treeAt(repo, headRev)
	if err != nil {
		return nil, err
	}

	changes, err := object.DiffTree(baseTree, headTree)
	if err != nil {
		return nil, fmt.Errorf("failed to diff trees between %s and %s: %w", baseRev, headRev, err)
	}

	files := make([]core.ChangedFile, 0, len(changes))
	for _, change := range changes {
		action, err := change.Action()
		if err != nil {
			c.Logger.Error("failed to get action for change, skipping", "error", err)
			continue
		}
		if action == merkletrie.Delete {
			continue
		}

		patch, err := change.Patch()
		if err != nil {
			c.Logger.Warn("failed to compute patch, skipping", "path", change.To.Name, "error", err)
			continue
		}
		files = append(files, core.ChangedFile{Path: change.To.Name, Patch: hunksOnly(patch.String())})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

func treeAt(repo *git.Repository, rev string) (*object.Tree, error) {
	hash, err := repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve revision %s: %w", rev, err)
	}
	commit, err := repo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("failed to get commit object for %s: %w", rev, err)
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to get tree for commit %s: %w", rev, err)
	}
	return tree, nil
}

// hunksOnly drops the file header of a unified diff, matching the patch
// text GitHub returns for a pull request file.
func hunksOnly(diff string) string {
	i := strings.Index(diff, "@@")
	if i < 0 {
		return ""
	}
	return strings.TrimRight(diff[i:], "\n")
}
