// Package fetch downloads publicly published documents anonymously. It is
// independent of the credential manager: requests carry no Authorization
// header and are never retried.
package fetch

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// publishedDocBase is the legacy endpoint for published Google documents.
const publishedDocBase = "https://docs.google.com/doc"

var (
	// ErrUnexpectedStatus is wrapped by every HTTPError.
	ErrUnexpectedStatus = errors.New("fetch: unexpected HTTP status")
	// ErrNetwork wraps transport failures.
	ErrNetwork = errors.New("fetch: network error")
)

// maxErrorBody bounds how much of a failed response is kept in HTTPError.
const maxErrorBody = 4 << 10

// HTTPError is returned when the response status is anything but 200.
type HTTPError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("fetch: GET %s: HTTP %d", e.URL, e.StatusCode)
}

func (e *HTTPError) Unwrap() error {
	return ErrUnexpectedStatus
}

// Fetcher performs anonymous GET requests.
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	logger     *slog.Logger
}

// New returns a Fetcher. A nil httpClient uses http.DefaultClient.
func New(httpClient *http.Client, userAgent string, logger *slog.Logger) *Fetcher {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Fetcher{httpClient: httpClient, userAgent: userAgent, logger: logger}
}

// FetchCSV issues one GET for rawURL and returns the body unmodified. Any
// status other than 200 yields an *HTTPError.
func (f *Fetcher) FetchCSV(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("fetch: creating request: %w", err)
	}

	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	f.logger.Debug("fetching published document", slog.String("url", rawURL))

	resp, err := f.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("fetch: request canceled: %w", ctx.Err())
		}

		return nil, fmt.Errorf("%w: GET %s: %w", ErrNetwork, rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

		return nil, &HTTPError{StatusCode: resp.StatusCode, URL: rawURL, Body: string(body)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body of %s: %w", ErrNetwork, rawURL, err)
	}

	f.logger.Debug("fetched published document",
		slog.Int("status", resp.StatusCode),
		slog.Int("bytes", len(body)),
	)

	return body, nil
}

// PublishedCSVURL builds the CSV export URL of a published document key.
func PublishedCSVURL(key string) string {
	q := url.Values{}
	q.Set("key", key)
	q.Set("output", "csv")

	return publishedDocBase + "?" + q.Encode()
}

// ParseCSV parses body as CSV records. Rows may have differing field counts.
func ParseCSV(body []byte) ([][]string, error) {
	r := csv.NewReader(strings.NewReader(string(body)))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("fetch: parsing CSV: %w", err)
	}

	return records, nil
}
