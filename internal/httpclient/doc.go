// Package httpclient provides the outbound HTTP client shared by the
// Dropbox session store and the media fetcher.
//
// Every client combines:
//   - resty for request building, bounded retries and timeouts
//   - retryablehttp's pooled transport
//   - a token bucket limiter (golang.org/x/time/rate)
//   - a circuit breaker from internal/infrastructure/resilience
//
// Callers build a request with Request(ctx) and execute it inside Do so the
// breaker sees the outcome.
package httpclient
