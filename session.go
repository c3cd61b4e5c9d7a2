package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/tonimelisma/grabdoc/internal/auth"
	"github.com/tonimelisma/grabdoc/internal/drive"
)

// newAuthManager builds a credential manager from the resolved config.
func newAuthManager(logger *slog.Logger) (*auth.Manager, error) {
	a := resolvedCfg.Auth

	return auth.NewManager(auth.Options{
		TokenPath:        a.TokenFile,
		Scopes:           a.Scopes,
		ClientSecretPath: a.ClientSecretFile,
		ClientID:         a.ClientID,
		ClientSecret:     a.ClientSecret,
		HTTPClient:       newHTTPClient(),
		OpenURL:          openBrowser,
		Prompt:           os.Stderr,
		Logger:           logger,
	})
}

// session is an authorized Drive client plus the manager that produced its
// credential.
type session struct {
	manager *auth.Manager
	cred    *auth.Credential
	drive   *drive.Client
}

// newSession obtains a credential, running the browser flow when needed,
// and returns a Drive client that keeps the token file current.
func newSession(ctx context.Context, logger *slog.Logger) (*session, error) {
	mgr, err := newAuthManager(logger)
	if err != nil {
		return nil, err
	}

	cred, err := mgr.Obtain(ctx)
	if err != nil {
		return nil, err
	}

	hc := mgr.HTTPClient(ctx, cred)
	hc.Timeout = resolvedCfg.Timeout

	client, err := drive.NewClient(ctx, hc, drive.Config{
		Endpoint:  resolvedCfg.Network.DriveEndpoint,
		UserAgent: userAgent(),
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("creating Drive client: %w", err)
	}

	return &session{manager: mgr, cred: cred, drive: client}, nil
}
