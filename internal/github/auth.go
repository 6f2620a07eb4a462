package github

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/google/go-github/v73/github"
	"golang.org/x/oauth2"

	"github.com/sevigo/code-council/internal/config"
)

// ClientFactory hands out API clients scoped to an app installation.
//
//go:generate mockgen -destination=../../mocks/mock_client_factory.go -package=mocks . ClientFactory
type ClientFactory interface {
	ForInstallation(ctx context.Context, installationID int64) (Client, error)
}

type appClientFactory struct {
	cfg        config.GitHubConfig
	privateKey []byte
	logger     *slog.Logger
}

// NewAppClientFactory loads the app private key once and returns a factory
// that exchanges it for installation tokens on demand.
func NewAppClientFactory(cfg *config.Config, logger *slog.Logger) (ClientFactory, error) {
	privateKey, err := os.ReadFile(cfg.GitHub.PrivateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read private key from %s: %w", cfg.GitHub.PrivateKeyPath, err)
	}
	return &appClientFactory{cfg: cfg.GitHub, privateKey: privateKey, logger: logger}, nil
}

// ForInstallation creates a GitHub client that is authenticated as a specific application installation.
func (f *appClientFactory) ForInstallation(ctx context.Context, installationID int64) (Client, error) {
	f.logger.Debug("creating GitHub installation client", "installation_id", installationID)

	// The apps transport signs JWTs for the App API (installation tokens).
	appTransport, err := ghinstallation.NewAppsTransport(http.DefaultTransport, f.cfg.AppID, f.privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub App transport: %w", err)
	}
	appClient := github.NewClient(&http.Client{Transport: appTransport})

	token, _, err := appClient.Apps.CreateInstallationToken(ctx, installationID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create installation token for installation ID %d: %w", installationID, err)
	}
	if token.GetToken() == "" {
		return nil, fmt.Errorf("received an empty installation token")
	}
	f.logger.Debug("created installation token", "installation_id", installationID, "expires_at", token.GetExpiresAt())

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token.GetToken()})
	tc := oauth2.NewClient(ctx, ts)
	return NewGitHubClient(github.NewClient(tc), f.logger), nil
}

// StaticClientFactory always returns the same client. The CLI uses it with a
// personal access token.
type StaticClientFactory struct {
	Client Client
}

func (s StaticClientFactory) ForInstallation(context.Context, int64) (Client, error) {
	return s.Client, nil
}
