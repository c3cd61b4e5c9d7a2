package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

// stateTokenBytes is the number of random bytes for the OAuth2 state parameter.
const stateTokenBytes = 16

// callbackPath is the HTTP path the OAuth2 redirect hits on the local server.
const callbackPath = "/"

// shutdownTimeout is how long to wait for the callback server to drain.
const shutdownTimeout = 5 * time.Second

// callbackResult carries the authorization code or error from the callback handler.
type callbackResult struct {
	code string
	err  error
}

// authorize runs the authorization code + PKCE flow:
//  1. Binds a localhost HTTP server on a random port
//  2. Opens the browser on the consent URL (or prints it)
//  3. Receives the callback with the authorization code
//  4. Exchanges the code for a token
//
// It blocks until the callback fires or ctx is canceled.
func (m *Manager) authorize(ctx context.Context) (*Credential, error) {
	cfg, err := m.oauthConfig()
	if err != nil {
		return nil, err
	}

	m.logger.Info("starting interactive authorization",
		slog.String("path", m.opts.TokenPath),
	)

	resultCh := make(chan callbackResult, 1)
	mux := http.NewServeMux()

	srv, port, err := startCallbackServer(ctx, mux, resultCh, m.logger)
	if err != nil {
		return nil, err
	}

	defer shutdownCallbackServer(srv, m.logger)

	cfg.RedirectURL = fmt.Sprintf("http://localhost:%d%s", port, callbackPath)

	verifier := oauth2.GenerateVerifier()

	state, err := generateState()
	if err != nil {
		return nil, fmt.Errorf("auth: generating state token: %w", err)
	}

	registerCallbackHandler(mux, state, resultCh)

	authURL := cfg.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.S256ChallengeOption(verifier),
	)

	m.launchBrowser(authURL)

	code, err := waitForCallback(ctx, resultCh)
	if err != nil {
		return nil, err
	}

	m.logger.Info("received authorization code, exchanging for token")

	tok, err := cfg.Exchange(m.clientContext(ctx), code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("%w: token exchange failed: %w", ErrAuth, err)
	}

	m.logger.Info("token exchange successful", slog.Time("expiry", tok.Expiry))

	return &Credential{Token: tok, Scopes: grantedScopes(tok, m.opts.Scopes)}, nil
}

// startCallbackServer binds to 127.0.0.1:0 and serves mux. Returns the
// server and the bound port.
func startCallbackServer(
	ctx context.Context,
	mux *http.ServeMux,
	resultCh chan<- callbackResult,
	logger *slog.Logger,
) (*http.Server, int, error) {
	lc := net.ListenConfig{}

	listener, err := lc.Listen(ctx, "tcp", "127.0.0.1:0")
	if err != nil {
		return nil, 0, fmt.Errorf("auth: binding localhost listener: %w", err)
	}

	tcpAddr, ok := listener.Addr().(*net.TCPAddr)
	if !ok {
		listener.Close()
		return nil, 0, fmt.Errorf("auth: listener address is not TCP")
	}

	port := tcpAddr.Port
	logger.Info("callback server listening", slog.Int("port", port))

	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: shutdownTimeout,
	}

	go func() {
		if serveErr := srv.Serve(listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			select {
			case resultCh <- callbackResult{err: fmt.Errorf("auth: callback server error: %w", serveErr)}:
			default:
			}
		}
	}()

	return srv, port, nil
}

// registerCallbackHandler adds the callback route to the mux. Only the first
// callback is delivered; later hits (browser retries, favicon) are dropped.
func registerCallbackHandler(mux *http.ServeMux, state string, resultCh chan<- callbackResult) {
	mux.HandleFunc("GET "+callbackPath, func(w http.ResponseWriter, r *http.Request) {
		result := handleOAuthCallback(w, r, state)

		select {
		case resultCh <- result:
		default:
		}
	})
}

// handleOAuthCallback validates the state, extracts the code, and renders a
// short page for the browser.
func handleOAuthCallback(w http.ResponseWriter, r *http.Request, state string) callbackResult {
	q := r.URL.Query()

	if q.Get("state") != state {
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)

		return callbackResult{err: fmt.Errorf("%w: state mismatch in callback", ErrAuth)}
	}

	if errParam := q.Get("error"); errParam != "" {
		http.Error(w, "Authorization failed: "+errParam, http.StatusBadRequest)

		return callbackResult{err: fmt.Errorf("%w: %s: %s", ErrAuth, errParam, q.Get("error_description"))}
	}

	code := q.Get("code")
	if code == "" {
		http.Error(w, "Missing authorization code", http.StatusBadRequest)

		return callbackResult{err: fmt.Errorf("%w: callback missing authorization code", ErrAuth)}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, "<html><body><h1>Authentication successful</h1>"+
		"<p>You can close this window and return to the terminal.</p></body></html>")

	return callbackResult{code: code}
}

// shutdownCallbackServer gracefully shuts down the callback HTTP server.
func shutdownCallbackServer(srv *http.Server, logger *slog.Logger) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("callback server shutdown error", slog.String("error", err.Error()))
	}
}

// launchBrowser tries OpenURL and falls back to printing the URL.
func (m *Manager) launchBrowser(authURL string) {
	if m.opts.OpenURL != nil {
		m.logger.Info("opening browser for authorization")

		err := m.opts.OpenURL(authURL)
		if err == nil {
			return
		}

		m.logger.Warn("failed to open browser, printing URL", slog.String("error", err.Error()))
	}

	fmt.Fprintf(m.opts.Prompt, "Please visit this URL to authorize this application:\n%s\n", authURL)
}

// waitForCallback blocks until the callback fires or ctx is canceled.
func waitForCallback(ctx context.Context, resultCh <-chan callbackResult) (string, error) {
	select {
	case result := <-resultCh:
		if result.err != nil {
			return "", result.err
		}

		return result.code, nil
	case <-ctx.Done():
		return "", fmt.Errorf("%w: interactive authorization canceled: %w", ErrAuth, ctx.Err())
	}
}

// generateState produces a random hex string for the OAuth2 state parameter.
func generateState() (string, error) {
	b := make([]byte, stateTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	return hex.EncodeToString(b), nil
}
