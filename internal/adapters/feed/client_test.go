package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/emretit/paftamobile-sub007/internal/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPFeedClient_Fetch(t *testing.T) {
	gotUA := make(chan string, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA <- r.Header.Get("User-Agent")
		assert.Equal(t, http.MethodGet, r.Method)
		w.Header().Set("Content-Type", "application/xml")
		_, _ = w.Write([]byte(sampleFeed))
	}))
	defer server.Close()

	client := NewHTTPFeedClient(server.URL, "rates-test/1.0", time.Second)
	body, err := client.Fetch(context.Background())

	require.NoError(t, err)
	assert.Equal(t, sampleFeed, string(body))
	assert.Equal(t, "rates-test/1.0", <-gotUA)
}

func TestHTTPFeedClient_FetchNonSuccessStatus(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(strings.Repeat("maintenance ", 100)))
	}))
	defer server.Close()

	client := NewHTTPFeedClient(server.URL, "", time.Second)
	body, err := client.Fetch(context.Background())

	assert.Nil(t, body)
	var fetchErr *apperrors.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusServiceUnavailable, fetchErr.StatusCode)
	assert.LessOrEqual(t, len(fetchErr.Body), 512)
	assert.True(t, strings.HasPrefix(fetchErr.Body, "maintenance"))
	assert.Equal(t, int32(1), calls.Load(), "the client must not retry")
}

func TestHTTPFeedClient_FetchTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewHTTPFeedClient(url, "", time.Second)
	_, err := client.Fetch(context.Background())

	var fetchErr *apperrors.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, 0, fetchErr.StatusCode)
	assert.NotNil(t, fetchErr.Unwrap())
}

func TestHTTPFeedClient_FetchTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	client := NewHTTPFeedClient(server.URL, "", 50*time.Millisecond)
	_, err := client.Fetch(context.Background())

	var fetchErr *apperrors.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, 0, fetchErr.StatusCode)
}
