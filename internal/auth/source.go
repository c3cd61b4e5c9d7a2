package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"golang.org/x/oauth2"

	"github.com/tonimelisma/grabdoc/internal/tokenfile"
)

// TokenSource returns a source that refreshes cred on demand and writes every
// new token back to the token file, so a refresh that happens mid-transfer
// is not lost. Without client credentials the token is served as is.
//
// ctx must outlive the source; it is used for refresh requests.
func (m *Manager) TokenSource(ctx context.Context, cred *Credential) oauth2.TokenSource {
	cfg, err := m.oauthConfig()
	if err != nil {
		m.logger.Warn("client credentials unavailable, token will not be refreshed",
			slog.String("error", err.Error()),
		)

		return oauth2.StaticTokenSource(cred.Token)
	}

	return &persistingSource{
		src:    cfg.TokenSource(m.clientContext(ctx), cred.Token),
		path:   m.opts.TokenPath,
		scopes: cred.Scopes,
		last:   cred.Token.AccessToken,
		logger: m.logger,
	}
}

// HTTPClient returns an HTTP client that authorizes requests with cred.
func (m *Manager) HTTPClient(ctx context.Context, cred *Credential) *http.Client {
	return oauth2.NewClient(m.clientContext(ctx), m.TokenSource(ctx, cred))
}

// persistingSource saves each token it has not seen before.
type persistingSource struct {
	src    oauth2.TokenSource
	path   string
	scopes []string
	logger *slog.Logger

	mu   sync.Mutex
	last string
}

func (p *persistingSource) Token() (*oauth2.Token, error) {
	tok, err := p.src.Token()
	if err != nil {
		p.logger.Warn("token acquisition failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: obtaining token: %w", ErrAuth, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if tok.AccessToken == p.last {
		return tok, nil
	}

	p.logger.Info("token refreshed by oauth2 library",
		slog.String("path", p.path),
		slog.Time("new_expiry", tok.Expiry),
	)

	// A failed save does not fail the request; the next run refreshes again.
	if err := tokenfile.Save(p.path, tok, p.scopes); err != nil {
		p.logger.Warn("failed to persist refreshed token",
			slog.String("path", p.path),
			slog.String("error", err.Error()),
		)

		return tok, nil
	}

	p.last = tok.AccessToken

	return tok, nil
}
