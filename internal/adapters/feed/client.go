package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/emretit/paftamobile-sub007/internal/apperrors"
)

// maxDocumentSize bounds how much of a feed response is read into memory.
const maxDocumentSize = 4 << 20

// HTTPFeedClient fetches the daily rate document with a single GET.
type HTTPFeedClient struct {
	httpClient *http.Client
	url        string
	userAgent  string
}

// NewHTTPFeedClient creates a feed client bound to url. The timeout covers
// the whole request including reading the body.
func NewHTTPFeedClient(url, userAgent string, timeout time.Duration) *HTTPFeedClient {
	return &HTTPFeedClient{
		httpClient: &http.Client{Timeout: timeout},
		url:        url,
		userAgent:  userAgent,
	}
}

// Fetch performs one GET against the feed. Transport failures and non-2xx
// responses are returned as *apperrors.FetchError; nothing is retried here.
func (c *HTTPFeedClient) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, apperrors.NewFetchError(0, nil, fmt.Errorf("failed to build feed request: %w", err))
	}
	req.Header.Set("Accept", "application/xml, text/xml")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewFetchError(0, nil, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, apperrors.NewFetchError(resp.StatusCode, body, fmt.Errorf("unexpected status %s", resp.Status))
	}
	if err != nil {
		return nil, apperrors.NewFetchError(resp.StatusCode, nil, fmt.Errorf("failed to read feed body: %w", err))
	}

	return body, nil
}
