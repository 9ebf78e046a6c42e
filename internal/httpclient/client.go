package httpclient

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"

	"github.com/GriffinCanCode/tgwa-bridge/internal/infrastructure/resilience"
)

// ErrUnavailable is returned while the breaker refuses calls.
var ErrUnavailable = errors.New("remote service unavailable: circuit breaker open")

// Client wraps resty with rate limiting and a circuit breaker.
type Client struct {
	Resty   *resty.Client
	Limiter *rate.Limiter
	Breaker *resilience.Breaker
	mu      sync.RWMutex
}

// Options configures a Client. Zero values fall back to defaults.
type Options struct {
	Name         string
	BaseURL      string
	Timeout      time.Duration
	RetryCount   int
	RetryWait    time.Duration
	RetryMaxWait time.Duration
	UserAgent    string
	// RPS limits outgoing requests; zero means unlimited.
	RPS float64
}

// DefaultOptions returns the settings used for session store traffic.
func DefaultOptions(name string) Options {
	return Options{
		Name:         name,
		Timeout:      30 * time.Second,
		RetryCount:   2,
		RetryWait:    500 * time.Millisecond,
		RetryMaxWait: 5 * time.Second,
		UserAgent:    "tgwa-bridge/1.0",
	}
}

// New creates a client with a breaker named after opts.Name.
func New(opts Options) *Client {
	if opts.Name == "" {
		opts.Name = "http"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "tgwa-bridge/1.0"
	}

	// retryablehttp's pooled transport; retries themselves are left to resty
	// so they share the request context and timeout.
	transport := retryablehttp.NewClient().HTTPClient.Transport

	restyClient := resty.New().
		SetTransport(transport).
		SetTimeout(opts.Timeout).
		SetRetryCount(opts.RetryCount).
		SetRetryWaitTime(opts.RetryWait).
		SetRetryMaxWaitTime(opts.RetryMaxWait).
		SetHeader("User-Agent", opts.UserAgent)
	if opts.BaseURL != "" {
		restyClient.SetBaseURL(opts.BaseURL)
	}

	breaker := resilience.New(opts.Name, resilience.Settings{
		MaxProbes: 1,
		Window:    time.Minute,
		Cooldown:  30 * time.Second,
		ShouldTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 5 ||
				(counts.Requests >= 10 && float64(counts.TotalFailures)/float64(counts.Requests) > 0.7)
		},
	})

	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RPS), burst(opts.RPS))
	}

	return &Client{
		Resty:   restyClient,
		Limiter: limiter,
		Breaker: breaker,
	}
}

// SetBearerAuth configures bearer token authentication
func (c *Client) SetBearerAuth(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Resty.SetAuthToken(token)
}

// SetRateLimit configures rate limiting (requests per second)
func (c *Client) SetRateLimit(rps float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if rps <= 0 {
		c.Limiter = rate.NewLimiter(rate.Inf, 0)
	} else {
		c.Limiter = rate.NewLimiter(rate.Limit(rps), burst(rps))
	}
}

// Request creates a request bound to ctx once the breaker and limiter allow it.
func (c *Client) Request(ctx context.Context) (*resty.Request, error) {
	if err := c.Breaker.Allow(); err != nil {
		return nil, ErrUnavailable
	}

	c.mu.RLock()
	limiter := c.Limiter
	c.mu.RUnlock()
	if err := limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit error: %w", err)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Resty.R().SetContext(ctx), nil
}

// Do runs fn under the circuit breaker. Errors returned by fn count as
// failures, so callers should only return errors for genuine service faults.
func (c *Client) Do(fn func() (*resty.Response, error)) (*resty.Response, error) {
	resp, err := resilience.Do(c.Breaker, fn)
	if errors.Is(err, resilience.ErrCircuitOpen) || errors.Is(err, resilience.ErrTooManyRequests) {
		return nil, ErrUnavailable
	}
	return resp, err
}

// BreakerState returns the current circuit breaker state
func (c *Client) BreakerState() resilience.State {
	return c.Breaker.State()
}

func burst(rps float64) int {
	if rps < 1 {
		return 1
	}
	return int(rps)
}
