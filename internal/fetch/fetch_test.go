package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = "name,qty\r\nwidget,3\r\n\"gadget, large\",1\r\n"

func TestFetchCSV_ExactBytes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Empty(t, r.Header.Get("Authorization"))
		assert.Equal(t, "grabdoc-test", r.Header.Get("User-Agent"))

		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte(sampleCSV))
	}))
	t.Cleanup(srv.Close)

	f := New(srv.Client(), "grabdoc-test", nil)

	body, err := f.FetchCSV(context.Background(), srv.URL+"/doc?key=abc&output=csv")
	require.NoError(t, err)
	assert.Equal(t, []byte(sampleCSV), body)
}

func TestFetchCSV_EmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	body, err := New(srv.Client(), "", nil).FetchCSV(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Empty(t, body)
}

func TestFetchCSV_NonOKStatus(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{"not found", http.StatusNotFound},
		{"no content", http.StatusNoContent},
		{"server error", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hits int

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				hits++
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte("nope"))
			}))
			t.Cleanup(srv.Close)

			_, err := New(srv.Client(), "", nil).FetchCSV(context.Background(), srv.URL)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrUnexpectedStatus)

			var httpErr *HTTPError
			require.True(t, errors.As(err, &httpErr))
			assert.Equal(t, tt.status, httpErr.StatusCode)
			assert.Equal(t, 1, hits, "no retry")
		})
	}
}

func TestFetchCSV_NotFoundBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "document missing", http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	_, err := New(srv.Client(), "", nil).FetchCSV(context.Background(), srv.URL)

	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Contains(t, httpErr.Body, "document missing")
	assert.Contains(t, err.Error(), "HTTP 404")
}

func TestFetchCSV_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(nil, "", nil).FetchCSV(context.Background(), url)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNetwork)
}

func TestFetchCSV_Canceled(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(srv.Client(), "", nil).FetchCSV(ctx, srv.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrNetwork)
}

func TestFetchCSV_InvalidURL(t *testing.T) {
	_, err := New(nil, "", nil).FetchCSV(context.Background(), "://bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "creating request")
}

func TestPublishedCSVURL(t *testing.T) {
	assert.Equal(t,
		"https://docs.google.com/doc?key=0ArM5yzzCw9IZdEdLWlpHT1FCcUpYQ2RjWmZYWmNwbXc&output=csv",
		PublishedCSVURL("0ArM5yzzCw9IZdEdLWlpHT1FCcUpYQ2RjWmZYWmNwbXc"),
	)
}

func TestParseCSV(t *testing.T) {
	records, err := ParseCSV([]byte(sampleCSV))
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"name", "qty"},
		{"widget", "3"},
		{"gadget, large", "1"},
	}, records)

	ragged, err := ParseCSV([]byte("a,b,c\nd\n"))
	require.NoError(t, err)
	assert.Len(t, ragged[1], 1)

	empty, err := ParseCSV(nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}
