package github

import (
	"context"
	"errors"
	"fmt"

	"github.com/sevigo/code-council/internal/config"
	"github.com/sevigo/code-council/internal/core"
)

// FetchRepoConfig loads the repository config at ref, trying each of
// config.RepoConfigPaths. A missing file yields the defaults with
// config.ErrConfigNotFound; an invalid file yields the defaults with the
// parse error so callers can report it and carry on.
func FetchRepoConfig(ctx context.Context, client Client, owner, repo, ref string) (*core.RepoConfig, error) {
	for _, path := range config.RepoConfigPaths {
		data, err := client.GetFileContent(ctx, owner, repo, path, ref)
		if err != nil {
			if errors.Is(err, ErrFileNotFound) {
				continue
			}
			return core.DefaultRepoConfig(), fmt.Errorf("failed to fetch %s: %w", path, err)
		}
		cfg, err := config.ParseRepoConfig(data)
		if err != nil {
			return core.DefaultRepoConfig(), fmt.Errorf("invalid %s: %w", path, err)
		}
		return cfg, nil
	}
	return core.DefaultRepoConfig(), config.ErrConfigNotFound
}
