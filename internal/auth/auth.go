// Package auth obtains and persists Google OAuth2 credentials. A Manager
// classifies the saved credential as absent, expired or valid, then loads,
// refreshes, or runs the interactive authorization code + PKCE flow over a
// localhost callback listener, and always persists the result.
package auth

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"slices"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/tonimelisma/grabdoc/internal/tokenfile"
)

// State classifies a persisted credential.
type State int

const (
	// StateAbsent: nothing usable is saved, or the saved scopes do not cover
	// the required ones. Interactive authorization is needed.
	StateAbsent State = iota
	// StateExpired: the access token expired but a refresh token is present.
	StateExpired
	// StateValid: the access token is usable as is.
	StateValid
)

func (s State) String() string {
	switch s {
	case StateAbsent:
		return "absent"
	case StateExpired:
		return "expired"
	case StateValid:
		return "valid"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Credential is an OAuth2 token together with the scopes it was granted for.
type Credential struct {
	Token  *oauth2.Token
	Scopes []string
}

// Covers reports whether every required scope was granted.
func (c *Credential) Covers(required []string) bool {
	for _, s := range required {
		if !slices.Contains(c.Scopes, s) {
			return false
		}
	}

	return true
}

// Options configures a Manager. TokenPath and Scopes are required.
type Options struct {
	// TokenPath is the persisted credential file.
	TokenPath string
	// Scopes are the scopes every credential must cover.
	Scopes []string

	// ClientSecretPath is a client_secret.json downloaded from the Google
	// Cloud console. Ignored when ClientID is set.
	ClientSecretPath string
	ClientID         string
	ClientSecret     string

	// Endpoint overrides the provider endpoint (google.Endpoint by default).
	Endpoint *oauth2.Endpoint
	// HTTPClient is used for token endpoint calls. Nil uses the oauth2 default.
	HTTPClient *http.Client

	// OpenURL launches a browser on the consent URL. When it fails, or is
	// nil, the URL is written to Prompt instead.
	OpenURL func(string) error
	// Prompt receives user-facing instructions. Defaults to os.Stderr.
	Prompt io.Writer

	Logger *slog.Logger
}

// Manager obtains credentials for one token file and one scope set. Several
// Managers with different Options can coexist in a process.
type Manager struct {
	opts   Options
	logger *slog.Logger
}

// NewManager validates opts and returns a Manager.
func NewManager(opts Options) (*Manager, error) {
	if opts.TokenPath == "" {
		return nil, fmt.Errorf("auth: token path is required")
	}

	if len(opts.Scopes) == 0 {
		return nil, fmt.Errorf("auth: at least one scope is required")
	}

	if opts.Prompt == nil {
		opts.Prompt = os.Stderr
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Manager{opts: opts, logger: logger}, nil
}

// Inspect loads the persisted credential and classifies it. The returned
// credential is nil only when nothing is saved. An unreadable or corrupt
// file yields ErrCredentialFile.
func (m *Manager) Inspect() (State, *Credential, error) {
	tok, scopes, err := tokenfile.Load(m.opts.TokenPath)
	if err != nil {
		return StateAbsent, nil, fmt.Errorf("%w: %w", ErrCredentialFile, err)
	}

	if tok == nil {
		m.logger.Debug("no saved credential", slog.String("path", m.opts.TokenPath))

		return StateAbsent, nil, nil
	}

	cred := &Credential{Token: tok, Scopes: scopes}

	if !cred.Covers(m.opts.Scopes) {
		m.logger.Info("saved credential does not cover required scopes",
			slog.String("path", m.opts.TokenPath),
			slog.String("granted", strings.Join(scopes, " ")),
		)

		return StateAbsent, cred, nil
	}

	if tok.Valid() {
		return StateValid, cred, nil
	}

	if tok.RefreshToken != "" {
		return StateExpired, cred, nil
	}

	return StateAbsent, cred, nil
}

// Obtain returns a usable credential: the saved one when valid, a refreshed
// one when expired, otherwise the result of interactive authorization. The
// result is persisted to the token file in every case, overwriting it.
func (m *Manager) Obtain(ctx context.Context) (*Credential, error) {
	state, cred, err := m.Inspect()
	if err != nil {
		return nil, err
	}

	m.logger.Info("saved credential inspected",
		slog.String("path", m.opts.TokenPath),
		slog.String("state", state.String()),
	)

	switch state {
	case StateValid:
		// Use as is.
	case StateExpired:
		cred, err = m.refresh(ctx, cred)
	case StateAbsent:
		cred, err = m.authorize(ctx)
	default:
		return nil, fmt.Errorf("auth: unknown credential state %v", state)
	}

	if err != nil {
		return nil, err
	}

	if err := tokenfile.Save(m.opts.TokenPath, cred.Token, cred.Scopes); err != nil {
		return nil, fmt.Errorf("auth: saving token: %w", err)
	}

	m.logger.Info("credential ready",
		slog.String("path", m.opts.TokenPath),
		slog.Time("expiry", cred.Token.Expiry),
	)

	return cred, nil
}

// Logout removes the token file. A missing file is not an error.
func (m *Manager) Logout() error {
	if err := tokenfile.Remove(m.opts.TokenPath); err != nil {
		return err
	}

	m.logger.Info("logout: token file removed", slog.String("path", m.opts.TokenPath))

	return nil
}

// refresh exchanges the refresh token for a new access token. The refresh
// token is kept when the provider does not rotate it.
func (m *Manager) refresh(ctx context.Context, cred *Credential) (*Credential, error) {
	cfg, err := m.oauthConfig()
	if err != nil {
		return nil, err
	}

	m.logger.Info("refreshing expired token", slog.Time("expired_at", cred.Token.Expiry))

	tok, err := cfg.TokenSource(m.clientContext(ctx), cred.Token).Token()
	if err != nil {
		return nil, fmt.Errorf("%w: refreshing token: %w", ErrAuth, err)
	}

	m.logger.Info("token refreshed", slog.Time("new_expiry", tok.Expiry))

	return &Credential{Token: tok, Scopes: cred.Scopes}, nil
}

// oauthConfig builds the client configuration. Explicit client credentials
// win over the client secret file.
func (m *Manager) oauthConfig() (*oauth2.Config, error) {
	var cfg *oauth2.Config

	if m.opts.ClientID != "" {
		cfg = &oauth2.Config{
			ClientID:     m.opts.ClientID,
			ClientSecret: m.opts.ClientSecret,
			Scopes:       m.opts.Scopes,
			Endpoint:     google.Endpoint,
		}
	} else {
		if m.opts.ClientSecretPath == "" {
			return nil, fmt.Errorf("%w: no client ID and no client secret file configured", ErrClientSecret)
		}

		data, err := os.ReadFile(m.opts.ClientSecretPath)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrClientSecret, err)
		}

		cfg, err = google.ConfigFromJSON(data, m.opts.Scopes...)
		if err != nil {
			return nil, fmt.Errorf("%w: parsing %s: %w", ErrClientSecret, m.opts.ClientSecretPath, err)
		}
	}

	if m.opts.Endpoint != nil {
		cfg.Endpoint = *m.opts.Endpoint
	}

	return cfg, nil
}

// clientContext attaches the configured HTTP client for token endpoint calls.
func (m *Manager) clientContext(ctx context.Context) context.Context {
	if m.opts.HTTPClient == nil {
		return ctx
	}

	return context.WithValue(ctx, oauth2.HTTPClient, m.opts.HTTPClient)
}

// grantedScopes prefers the scope list returned by the token endpoint and
// falls back to what was requested.
func grantedScopes(tok *oauth2.Token, requested []string) []string {
	if raw, ok := tok.Extra("scope").(string); ok && strings.TrimSpace(raw) != "" {
		return strings.Fields(raw)
	}

	return slices.Clone(requested)
}
