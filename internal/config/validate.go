package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Validation range constants.
const (
	minChunkBytes  = 256 * kibibyte
	maxChunkBytes  = 1 * gibibyte
	minTimeout     = 1 * time.Second
	maxTimeout     = 1 * time.Hour
	minMimeTypeLen = 3
)

// validLogLevels are the accepted log_level values.
var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true,
}

// Validate checks all configuration values and returns all errors found,
// so users can fix every problem in one pass.
func Validate(cfg *Config) error {
	var errs []error

	errs = append(errs, validateAuth(&cfg.Auth)...)
	errs = append(errs, validateExport(&cfg.Export)...)
	errs = append(errs, validateFetch(&cfg.Fetch)...)
	errs = append(errs, validateLogging(&cfg.Logging)...)
	errs = append(errs, validateNetwork(&cfg.Network)...)

	return errors.Join(errs...)
}

func validateAuth(a *AuthConfig) []error {
	var errs []error

	if len(a.Scopes) == 0 {
		errs = append(errs, errors.New("auth.scopes: at least one scope is required"))
	}

	for _, s := range a.Scopes {
		if strings.TrimSpace(s) == "" {
			errs = append(errs, errors.New("auth.scopes: empty scope"))
		}
	}

	if a.ClientSecret != "" && a.ClientID == "" {
		errs = append(errs, errors.New("auth.client_secret: set without auth.client_id"))
	}

	return errs
}

func validateExport(e *ExportConfig) []error {
	var errs []error

	if e.MimeType != "" && (len(e.MimeType) < minMimeTypeLen || !strings.Contains(e.MimeType, "/")) {
		errs = append(errs, fmt.Errorf("export.mime_type: %q is not a MIME type", e.MimeType))
	}

	bytes, err := ParseSize(e.ChunkSize)

	switch {
	case err != nil:
		errs = append(errs, fmt.Errorf("export.chunk_size: %w", err))
	case bytes < minChunkBytes || bytes > maxChunkBytes:
		errs = append(errs, fmt.Errorf("export.chunk_size: must be between 256KiB and 1GiB, got %q", e.ChunkSize))
	}

	return errs
}

func validateFetch(f *FetchConfig) []error {
	if f.URL == "" {
		return nil
	}

	if err := validateHTTPURL(f.URL); err != nil {
		return []error{fmt.Errorf("fetch.url: %w", err)}
	}

	return nil
}

func validateHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}

	return nil
}

func validateLogging(l *LoggingConfig) []error {
	if !validLogLevels[l.LogLevel] {
		return []error{fmt.Errorf("logging.log_level: must be one of debug, info, warn, error; got %q", l.LogLevel)}
	}

	return nil
}

func validateNetwork(n *NetworkConfig) []error {
	d, err := time.ParseDuration(n.Timeout)
	if err != nil {
		return []error{fmt.Errorf("network.timeout: %w", err)}
	}

	if d < minTimeout || d > maxTimeout {
		return []error{fmt.Errorf("network.timeout: must be between %s and %s, got %s", minTimeout, maxTimeout, d)}
	}

	if n.DriveEndpoint != "" {
		if err := validateHTTPURL(n.DriveEndpoint); err != nil {
			return []error{fmt.Errorf("network.drive_endpoint: %w", err)}
		}
	}

	return nil
}
