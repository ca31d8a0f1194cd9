// Package auth implements the authorized-client factory: it turns an
// account identifier into ready-to-use API clients. Credential files are
// resolved by convention from a secrets directory; interactive consent flows
// are out of scope and missing material fails fast.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
	oauthgoogle "golang.org/x/oauth2/google"

	"github.com/sitepulse-labs/sitepulse-cli/internal/adapters/driven/google"
	"github.com/sitepulse-labs/sitepulse-cli/internal/core/ports/driven"
)

// Credential file name conventions. The account identifier is a prefix, so
// the default (empty) account reads client_secrets.json and token.json.
const (
	secretsSuffix = "client_secrets.json"
	tokenSuffix   = "token.json"
)

// Ensure Factory implements the driven port.
var _ driven.ClientFactory = (*Factory)(nil)

// Factory builds authorized Google API clients per account. Rate limiters
// are shared per service across accounts, since Google quotas apply per
// project, not per authorized user.
type Factory struct {
	secretsDir string
	scLimiter  *google.RateLimiter
	gaLimiter  *google.RateLimiter
}

// NewFactory creates a factory reading credential files from secretsDir.
func NewFactory(secretsDir string) *Factory {
	return &Factory{
		secretsDir: secretsDir,
		scLimiter:  google.NewRateLimiter(google.ServiceSearchConsole),
		gaLimiter:  google.NewRateLimiter(google.ServiceAnalytics),
	}
}

// SearchConsole returns an authorized Search Console client for account.
func (f *Factory) SearchConsole(ctx context.Context, account string) (driven.SearchConsoleClient, error) {
	ts, err := f.tokenSource(ctx, account, google.ScopeWebmastersReadonly)
	if err != nil {
		return nil, err
	}
	svc, err := google.NewWebmastersService(ctx, ts)
	if err != nil {
		return nil, fmt.Errorf("build webmasters service: %w", err)
	}
	return google.NewSearchConsoleClient(svc, f.scLimiter), nil
}

// Analytics returns an authorized Analytics client for account.
func (f *Factory) Analytics(ctx context.Context, account string) (driven.AnalyticsClient, error) {
	ts, err := f.tokenSource(ctx, account, google.ScopeAnalyticsReadonly)
	if err != nil {
		return nil, err
	}
	data, err := google.NewAnalyticsDataService(ctx, ts)
	if err != nil {
		return nil, fmt.Errorf("build analytics data service: %w", err)
	}
	admin, err := google.NewAnalyticsAdminService(ctx, ts)
	if err != nil {
		return nil, fmt.Errorf("build analytics admin service: %w", err)
	}
	return google.NewAnalyticsClient(data, admin, f.gaLimiter), nil
}

// tokenSource loads the account's OAuth config and stored token and returns
// a self-refreshing token source.
func (f *Factory) tokenSource(ctx context.Context, account string, scopes ...string) (oauth2.TokenSource, error) {
	secretsPath := filepath.Join(f.secretsDir, account+secretsSuffix)
	secrets, err := os.ReadFile(secretsPath)
	if err != nil {
		return nil, fmt.Errorf("read client secrets %s: %w", secretsPath, err)
	}

	cfg, err := oauthgoogle.ConfigFromJSON(secrets, scopes...)
	if err != nil {
		return nil, fmt.Errorf("parse client secrets %s: %w", secretsPath, err)
	}

	tokenPath := filepath.Join(f.secretsDir, account+tokenSuffix)
	raw, err := os.ReadFile(tokenPath)
	if err != nil {
		return nil, fmt.Errorf("read token %s (run the authorization flow first): %w", tokenPath, err)
	}

	var tok oauth2.Token
	if err := json.Unmarshal(raw, &tok); err != nil {
		return nil, fmt.Errorf("parse token %s: %w", tokenPath, err)
	}

	return cfg.TokenSource(ctx, &tok), nil
}
