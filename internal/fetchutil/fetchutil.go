// Package fetchutil provides the shared bounded HTTP client used for all
// outbound fetches: storefront listing pages, icon images, badge images, and
// font downloads.
//
// Every call is bounded by a fixed timeout and degrades to its caller's
// unavailable path on any failure. Retries are disabled: a tile render is
// interactive and substitutes placeholders instead of waiting.
package fetchutil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// RequestTimeout bounds every outbound HTTP call.
const RequestTimeout = 10 * time.Second

// httpClient is a lazily-initialized client shared across all fetches.
// Initialized once via httpClientOnce.
var (
	httpClient     *retryablehttp.Client
	httpClientOnce sync.Once
)

// Client returns the shared HTTP client, initializing it on first call.
func Client() *retryablehttp.Client {
	httpClientOnce.Do(func() {
		httpClient = retryablehttp.NewClient()
		httpClient.RetryMax = 0
		httpClient.HTTPClient.Timeout = RequestTimeout
		httpClient.Logger = nil // suppress retryablehttp's default logging
	})
	return httpClient
}

// Bytes fetches url and returns at most limit bytes of the response body.
// Any non-200 status is an error. Extra headers may be supplied as
// alternating key, value pairs.
func Bytes(ctx context.Context, url string, limit int64, headers ...string) ([]byte, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := Client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	return body, nil
}
