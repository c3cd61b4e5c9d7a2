package main

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/tonimelisma/grabdoc/internal/config"
	"github.com/tonimelisma/grabdoc/internal/tokenfile"
)

const (
	testDriveScope  = "https://www.googleapis.com/auth/drive"
	testAccessToken = "saved-access"
	testChunkSize   = 256 << 10
)

// fakeDrive is an httptest Drive v3 server with one exportable document.
type fakeDrive struct {
	t *testing.T

	token   string
	fileID  string
	name    string
	content []byte
	files   string // JSON array served by files.list

	// dest must not exist while export chunks are being served.
	dest string

	mu     sync.Mutex
	ranges []string
	listed int
	lastUA string
}

func newFakeDrive(t *testing.T, content []byte) *fakeDrive {
	t.Helper()

	return &fakeDrive{
		t:       t,
		token:   testAccessToken,
		fileID:  "doc-1",
		name:    "Quarterly plan",
		content: content,
		files:   `[{"id":"doc-1","name":"Quarterly plan"},{"id":"doc-2","name":"Budget"}]`,
	}
}

func (f *fakeDrive) start() *httptest.Server {
	f.t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /files", f.handleList)
	mux.HandleFunc("GET /files/{id}", f.handleGet)
	mux.HandleFunc("GET /files/{id}/export", f.handleExport)
	mux.HandleFunc("GET /about", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"user":{"displayName":"Ada Lovelace","emailAddress":"ada@example.com"}}`)
	})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer "+f.token {
			writeDriveError(w, http.StatusUnauthorized, "authError", "bad credentials: "+got)
			return
		}

		f.mu.Lock()
		f.lastUA = r.Header.Get("User-Agent")
		f.mu.Unlock()

		mux.ServeHTTP(w, r)
	}))
	f.t.Cleanup(srv.Close)

	return srv
}

func (f *fakeDrive) handleList(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.listed++
	f.mu.Unlock()

	assert.NotEmpty(f.t, r.URL.Query().Get("pageSize"))

	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"files":%s}`, f.files)
}

func (f *fakeDrive) handleGet(w http.ResponseWriter, r *http.Request) {
	if r.PathValue("id") != f.fileID {
		writeDriveError(w, http.StatusNotFound, "notFound", "File not found: "+r.PathValue("id"))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"id":%q,"name":%q}`, f.fileID, f.name)
}

func (f *fakeDrive) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.PathValue("id") != f.fileID {
		writeDriveError(w, http.StatusNotFound, "notFound", "File not found: "+r.PathValue("id"))
		return
	}

	if f.dest != "" {
		_, err := os.Stat(f.dest)
		assert.ErrorIs(f.t, err, os.ErrNotExist, "destination written before the last chunk")
	}

	rng := r.Header.Get("Range")

	f.mu.Lock()
	f.ranges = append(f.ranges, rng)
	f.mu.Unlock()

	spec, _ := strings.CutPrefix(rng, "bytes=")
	s, e, _ := strings.Cut(spec, "-")
	start, err1 := strconv.ParseInt(s, 10, 64)
	end, err2 := strconv.ParseInt(e, 10, 64)

	if !assert.NoError(f.t, err1) || !assert.NoError(f.t, err2) {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	size := int64(len(f.content))
	if end >= size {
		end = size - 1
	}

	w.Header().Set("Content-Range", fmt.Sprintf("bytes %d-%d/%d", start, end, size))
	w.WriteHeader(http.StatusPartialContent)
	_, _ = w.Write(f.content[start : end+1])
}

func writeDriveError(w http.ResponseWriter, code int, reason, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	fmt.Fprintf(w, `{"error":{"code":%d,"message":%q,"errors":[{"domain":"global","reason":%q,"message":%q}]}}`,
		code, message, reason, message)
}

// saveValidToken writes a token file that needs neither refresh nor browser.
func saveValidToken(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "token.json")
	require.NoError(t, tokenfile.Save(path, &oauth2.Token{
		AccessToken:  testAccessToken,
		RefreshToken: "saved-refresh",
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(time.Hour),
	}, []string{testDriveScope}))

	return path
}

// driveConfig points grabdoc at the fake server with the smallest chunk size
// the config accepts.
func driveConfig(t *testing.T, srv *httptest.Server, tokenPath, extra string) string {
	t.Helper()

	return writeConfig(t, fmt.Sprintf(`[auth]
token_file = %q
client_id = "test-client"

[export]
chunk_size = "256KiB"
%s
[network]
drive_endpoint = %q
`, tokenPath, extra, srv.URL))
}

// exportContent spans three chunks: two full ones and a short last one.
func exportContent() []byte {
	return bytes.Repeat([]byte("grabdoc!"), (testChunkSize*2+testChunkSize/3)/8)
}

func TestLsCmd_ListsFiles(t *testing.T) {
	saveGlobals(t)
	clearGrabdocEnv(t)

	fd := newFakeDrive(t, nil)
	srv := fd.start()
	cfgPath := driveConfig(t, srv, saveValidToken(t), "")

	out, err := runRoot(t, "ls", "--config", cfgPath)
	require.NoError(t, err)
	assert.Equal(t, "Files:\nQuarterly plan (doc-1)\nBudget (doc-2)\n", out)
	assert.Contains(t, fd.lastUA, "grabdoc/"+version)
}

func TestLsCmd_NoFiles(t *testing.T) {
	saveGlobals(t)
	clearGrabdocEnv(t)

	fd := newFakeDrive(t, nil)
	fd.files = `[]`
	srv := fd.start()
	cfgPath := driveConfig(t, srv, saveValidToken(t), "")

	out, err := runRoot(t, "ls", "--config", cfgPath)
	require.NoError(t, err)
	assert.Equal(t, "No files found.\n", out)
}

func TestLsCmd_JSON(t *testing.T) {
	saveGlobals(t)
	clearGrabdocEnv(t)

	fd := newFakeDrive(t, nil)
	srv := fd.start()
	cfgPath := driveConfig(t, srv, saveValidToken(t), "")

	out, err := runRoot(t, "ls", "--json", "--config", cfgPath)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"doc-1","name":"Quarterly plan"},{"id":"doc-2","name":"Budget"}]`, out)
}

func TestLsCmd_Unauthorized(t *testing.T) {
	saveGlobals(t)
	clearGrabdocEnv(t)

	fd := newFakeDrive(t, nil)
	fd.token = "something-else"
	srv := fd.start()
	cfgPath := driveConfig(t, srv, saveValidToken(t), "")

	_, err := runRoot(t, "ls", "--config", cfgPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestExportCmd_DefaultDestinationFromName(t *testing.T) {
	saveGlobals(t)
	clearGrabdocEnv(t)

	dir := t.TempDir()
	t.Chdir(dir)

	content := exportContent()
	fd := newFakeDrive(t, content)
	fd.dest = filepath.Join(dir, "Quarterly plan.docx")
	srv := fd.start()
	cfgPath := driveConfig(t, srv, saveValidToken(t), "")

	out, errOut, err := runRootCapture(t, "export", "doc-1", "--config", cfgPath)
	require.NoError(t, err)
	assert.Empty(t, out)

	got, err := os.ReadFile(fd.dest)
	require.NoError(t, err)
	assert.Equal(t, content, got)

	assert.Equal(t, []string{
		"bytes=0-262143",
		"bytes=262144-524287",
		"bytes=524288-786431",
	}, fd.ranges)
	assert.Equal(t, "Download 42%.\nDownload 85%.\nDownload 100%.\n", errOut)
}

func TestExportCmd_ExplicitDestinationJSON(t *testing.T) {
	saveGlobals(t)
	clearGrabdocEnv(t)

	content := []byte("small document")
	fd := newFakeDrive(t, content)
	srv := fd.start()
	cfgPath := driveConfig(t, srv, saveValidToken(t), "")

	dest := filepath.Join(t.TempDir(), "exports", "plan.pdf")

	out, err := runRoot(t, "export", "doc-1", dest, "--mime-type", "application/pdf", "--json", "-q", "--config", cfgPath)
	require.NoError(t, err)
	assert.JSONEq(t, fmt.Sprintf(`{"file_id":"doc-1","mime_type":"application/pdf","path":%q,"size":%d}`,
		dest, len(content)), out)

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestExportCmd_UnknownFile(t *testing.T) {
	saveGlobals(t)
	clearGrabdocEnv(t)

	dir := t.TempDir()
	t.Chdir(dir)

	fd := newFakeDrive(t, []byte("x"))
	srv := fd.start()
	cfgPath := driveConfig(t, srv, saveValidToken(t), "")

	_, err := runRoot(t, "export", "missing", filepath.Join(dir, "out.docx"), "-q", "--config", cfgPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")

	_, statErr := os.Stat(filepath.Join(dir, "out.docx"))
	assert.ErrorIs(t, statErr, os.ErrNotExist)
}

func TestGrabCmd_ListsThenExports(t *testing.T) {
	saveGlobals(t)
	clearGrabdocEnv(t)

	content := exportContent()
	fd := newFakeDrive(t, content)
	fd.dest = filepath.Join(t.TempDir(), "out.docx")
	srv := fd.start()
	cfgPath := driveConfig(t, srv, saveValidToken(t),
		fmt.Sprintf("file_id = %q\noutput = %q\n", fd.fileID, fd.dest))

	out, errOut, err := runRootCapture(t, "grab", "--config", cfgPath)
	require.NoError(t, err)

	assert.Equal(t, "Files:\nQuarterly plan (doc-1)\nBudget (doc-2)\n", out)
	assert.Equal(t, "Download 42%.\nDownload 85%.\nDownload 100%.\n", errOut)
	assert.Equal(t, 1, fd.listed)

	got, err := os.ReadFile(fd.dest)
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestGrabCmd_JSON(t *testing.T) {
	saveGlobals(t)
	clearGrabdocEnv(t)

	content := []byte("grabbed")
	fd := newFakeDrive(t, content)
	dest := filepath.Join(t.TempDir(), "out.docx")
	srv := fd.start()
	cfgPath := driveConfig(t, srv, saveValidToken(t),
		fmt.Sprintf("file_id = %q\noutput = %q\n", fd.fileID, dest))

	out, err := runRoot(t, "grab", "--json", "-q", "--config", cfgPath)
	require.NoError(t, err)
	assert.JSONEq(t, fmt.Sprintf(`{
		"files": [{"id":"doc-1","name":"Quarterly plan"},{"id":"doc-2","name":"Budget"}],
		"export": {"file_id":"doc-1","mime_type":%q,"path":%q,"size":%d}
	}`, config.DefaultConfig().Export.MimeType, dest, len(content)), out)
}

func TestGrabCmd_RefreshesExpiredToken(t *testing.T) {
	saveGlobals(t)
	clearGrabdocEnv(t)

	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
		assert.Equal(t, "saved-refresh", r.PostForm.Get("refresh_token"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"fresh-access","token_type":"Bearer","expires_in":3600}`)
	}))
	t.Cleanup(tokenSrv.Close)

	dir := t.TempDir()
	secretPath := filepath.Join(dir, "client_secret.json")
	require.NoError(t, os.WriteFile(secretPath, []byte(fmt.Sprintf(`{"installed":{
		"client_id": "file-client-id",
		"client_secret": "file-secret",
		"auth_uri": %q,
		"token_uri": %q,
		"redirect_uris": ["http://localhost"]
	}}`, tokenSrv.URL+"/auth", tokenSrv.URL+"/token")), 0o600))

	tokenPath := filepath.Join(dir, "token.json")
	require.NoError(t, tokenfile.Save(tokenPath, &oauth2.Token{
		AccessToken:  "stale-access",
		RefreshToken: "saved-refresh",
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(-time.Hour),
	}, []string{testDriveScope}))

	content := []byte("refreshed export")
	fd := newFakeDrive(t, content)
	fd.token = "fresh-access"
	srv := fd.start()

	dest := filepath.Join(dir, "out.docx")
	cfgPath := writeConfig(t, fmt.Sprintf(`[auth]
token_file = %q
client_secret_file = %q

[export]
file_id = "doc-1"
output = %q

[network]
drive_endpoint = %q
`, tokenPath, secretPath, dest, srv.URL))

	_, err := runRoot(t, "grab", "-q", "--config", cfgPath)
	require.NoError(t, err)

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, content, got)

	tok, _, err := tokenfile.Load(tokenPath)
	require.NoError(t, err)
	assert.Equal(t, "fresh-access", tok.AccessToken)
	assert.Equal(t, "saved-refresh", tok.RefreshToken)
}

func TestWhoamiCmd(t *testing.T) {
	saveGlobals(t)
	clearGrabdocEnv(t)

	fd := newFakeDrive(t, nil)
	srv := fd.start()
	tokenPath := saveValidToken(t)
	cfgPath := driveConfig(t, srv, tokenPath, "")

	out, err := runRoot(t, "whoami", "--config", cfgPath)
	require.NoError(t, err)
	assert.Equal(t, "User:  Ada Lovelace (ada@example.com)\nToken: "+tokenPath+"\n", out)

	out, err = runRoot(t, "whoami", "--json", "--config", cfgPath)
	require.NoError(t, err)
	assert.JSONEq(t, fmt.Sprintf(`{"display_name":"Ada Lovelace","email":"ada@example.com","token_file":%q}`, tokenPath), out)
}
