package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPFetcher_PassesQueryAndHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(r.URL.Query().Get("page") + "|" + r.Header.Get("User-Agent")))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(srv.Client(), quietLogger())
	headers := http.Header{}
	headers.Set("User-Agent", "Mozilla/5.0")

	page := f.Fetch(context.Background(), srv.URL+"/search", url.Values{"page": {"2"}}, headers)

	assert.True(t, page.OK())
	assert.Equal(t, "2|Mozilla/5.0", string(page.Body))
	assert.Equal(t, srv.URL+"/search?page=2", page.URL)
}

func TestHTTPFetcher_NonSuccessIsReturned(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("busy"))
	}))
	defer srv.Close()

	page := NewHTTPFetcher(srv.Client(), quietLogger()).Fetch(context.Background(), srv.URL, nil, nil)

	assert.False(t, page.OK())
	assert.Equal(t, http.StatusServiceUnavailable, page.StatusCode)
	assert.Equal(t, "busy", string(page.Body))
}

func TestHTTPFetcher_TransportFailureYieldsEmptyPage(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	page := NewHTTPFetcher(http.DefaultClient, quietLogger()).Fetch(context.Background(), addr, nil, nil)

	require.NotNil(t, page)
	assert.Zero(t, page.StatusCode)
	assert.Empty(t, page.Body)
	assert.Zero(t, page.Document().Find("script").Length())
}
