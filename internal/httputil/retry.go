// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil implements the rate-limit retry policy for metadata
// provider calls.
package httputil

import (
	"context"
	"io"
	"math"
	"net/http"
	"strconv"
	"time"
)

// RetryBaseDelay is the first backoff step for HTTP 429 responses that
// carry no usable Retry-After header. Tests shrink it to avoid real
// sleeps.
var RetryBaseDelay = 10 * time.Second

const defaultMaxRetries = 5

// DoWithRetry issues req and retries on HTTP 429 (Too Many Requests).
// The wait between attempts is the server's Retry-After value when it
// parses as seconds, otherwise exponential backoff from RetryBaseDelay:
// 10 s, 20 s, 40 s, 80 s, 160 s.
//
// maxRetries <= 0 selects the default of 5. Each 429 body is drained and
// closed before the wait so the connection can be reused. Cancelling ctx
// during a wait returns ctx.Err(). Once retries are exhausted the last
// 429 response is returned with a nil error so the caller can report the
// status itself.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxRetries int) (*http.Response, error) {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	for attempt := 0; ; attempt++ {
		resp, err := client.Do(req.Clone(ctx))
		if err != nil {
			return nil, err
		}

		if resp.StatusCode != http.StatusTooManyRequests {
			return resp, nil
		}
		if attempt >= maxRetries {
			return resp, nil
		}

		delay := retryDelay(resp, attempt)
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
}

// retryDelay prefers the provider's own Retry-After over the local
// backoff schedule. Semantic Scholar sends the header as whole seconds;
// the HTTP-date form is rare enough to ignore.
func retryDelay(resp *http.Response, attempt int) time.Duration {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return time.Duration(math.Pow(2, float64(attempt))) * RetryBaseDelay
}
