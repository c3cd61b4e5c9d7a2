package drive

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	drivev3 "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// Config tunes a Client. Zero values use the production defaults.
type Config struct {
	// Endpoint overrides the Drive API base URL. A missing trailing slash
	// is added.
	Endpoint string
	// UserAgent is sent with every request.
	UserAgent string
}

// Client wraps the generated Drive v3 service.
type Client struct {
	svc    *drivev3.Service
	logger *slog.Logger
}

// NewClient creates a Drive client that sends requests through httpClient,
// which is expected to attach credentials (see auth.Manager.HTTPClient).
func NewClient(ctx context.Context, httpClient *http.Client, cfg Config, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if httpClient == nil {
		return nil, fmt.Errorf("drive: an authorized HTTP client is required")
	}

	opts := []option.ClientOption{option.WithHTTPClient(httpClient)}
	if cfg.Endpoint != "" {
		endpoint := cfg.Endpoint
		if !strings.HasSuffix(endpoint, "/") {
			endpoint += "/"
		}

		opts = append(opts, option.WithEndpoint(endpoint))
	}

	svc, err := drivev3.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("drive: creating service: %w", err)
	}

	svc.UserAgent = cfg.UserAgent

	return &Client{svc: svc, logger: logger}, nil
}
