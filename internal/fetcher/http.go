package fetcher

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/make-ready-tech/oppintel/internal/resilience"
)

// Options configures the HTTP client.
type Options struct {
	UserAgent string
	Timeout   time.Duration
	// ExtraHeaders are applied to every request (Referer, Origin, auth
	// placeholders the portal expects from a browser session).
	ExtraHeaders map[string]string
	// RateLimiters maps host to its limiter. Nil means
	// DefaultRateLimiters; hosts absent from the map get a generous
	// limiter created on first use.
	RateLimiters map[string]*AdaptiveLimiter
}

// AdaptiveLimiter is a per-host rate.Limiter that reacts to what the portal
// sends back: a 429 halves the rate (floor initial/4), a success nudges it
// up 20% (ceiling 2x initial). Portals throttle unevenly across the day, so
// a fixed rate is either too timid or gets the session banned.
type AdaptiveLimiter struct {
	mu          sync.Mutex
	limiter     *rate.Limiter
	initialRate rate.Limit
	maxRate     rate.Limit
	minRate     rate.Limit
	currentRate rate.Limit
}

// NewAdaptiveLimiter creates a limiter starting at initialRate.
func NewAdaptiveLimiter(initialRate rate.Limit, burst int) *AdaptiveLimiter {
	return &AdaptiveLimiter{
		limiter:     rate.NewLimiter(initialRate, burst),
		initialRate: initialRate,
		maxRate:     initialRate * 2,
		minRate:     initialRate / 4,
		currentRate: initialRate,
	}
}

// Wait blocks until the limiter allows an event.
func (a *AdaptiveLimiter) Wait(ctx context.Context) error {
	return a.limiter.Wait(ctx)
}

// OnSuccess nudges the rate up toward the ceiling.
func (a *AdaptiveLimiter) OnSuccess() {
	a.mu.Lock()
	defer a.mu.Unlock()
	newRate := a.currentRate * 1.2
	if newRate > a.maxRate {
		newRate = a.maxRate
	}
	a.currentRate = newRate
	a.limiter.SetLimit(newRate)
}

// OnRateLimit halves the rate. Called when the host answers 429.
func (a *AdaptiveLimiter) OnRateLimit() {
	a.mu.Lock()
	defer a.mu.Unlock()
	newRate := a.currentRate * 0.5
	if newRate < a.minRate {
		newRate = a.minRate
	}
	a.currentRate = newRate
	a.limiter.SetLimit(newRate)
	zap.L().Warn("host throttled us, backing off",
		zap.Float64("new_rate", float64(newRate)),
	)
}

// Limit reports the current rate.
func (a *AdaptiveLimiter) Limit() rate.Limit {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.currentRate
}

// Client is an HTTP client tuned for rate-limited government portals: a
// shared cookie jar so warm-up state carries into data calls, browser-like
// headers, and per-host rate limiting. Data calls are made exactly once;
// transient failures are classified, not retried, because the caller's batch
// semantics decide what a failure means.
type Client struct {
	http *http.Client
	opts Options

	mu       sync.Mutex
	limiters map[string]*AdaptiveLimiter
}

// DefaultRateLimiters returns limiters for the hosts the pipelines hit. The
// topic portal tolerates more traffic than the news site.
func DefaultRateLimiters() map[string]*AdaptiveLimiter {
	return map[string]*AdaptiveLimiter{
		"www.dodsbirsttr.mil": NewAdaptiveLimiter(5, 5),
		"www.defense.gov":     NewAdaptiveLimiter(2, 2),
	}
}

// New creates a Client with the given options. The cookie jar is always
// enabled: portals hand out session cookies during warm-up and expect them
// back on every data call.
func New(opts Options) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "oppintel/1.0"
	}
	limiters := opts.RateLimiters
	if limiters == nil {
		limiters = DefaultRateLimiters()
	}
	jar, _ := cookiejar.New(nil)
	transport := &http.Transport{
		MaxIdleConnsPerHost: 10,
		MaxConnsPerHost:     20,
		IdleConnTimeout:     90 * time.Second,
	}
	return &Client{
		http: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
			Jar:       jar,
		},
		opts:     opts,
		limiters: limiters,
	}
}

// limiterFor returns the limiter for rawURL's host, creating and caching a
// generous one for hosts nobody configured. Caching matters: backoff state
// has to survive across requests to the same host.
func (c *Client) limiterFor(rawURL string) *AdaptiveLimiter {
	host := ""
	if u, err := url.Parse(rawURL); err == nil {
		host = u.Host
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	lim, ok := c.limiters[host]
	if !ok {
		lim = NewAdaptiveLimiter(20, 20)
		c.limiters[host] = lim
	}
	return lim
}

func (c *Client) applyHeaders(req *http.Request, accept string) {
	req.Header.Set("User-Agent", c.opts.UserAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	for k, v := range c.opts.ExtraHeaders {
		req.Header.Set(k, v)
	}
}

// do runs a single request through the rate limiter, classifying 429/5xx as
// transient. Exactly one attempt: pagination and enrichment decide for
// themselves whether a failed unit ends the batch or is skipped.
func (c *Client) do(ctx context.Context, req *http.Request) (*http.Response, error) {
	lim := c.limiterFor(req.URL.String())
	if err := lim.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "rate limiter wait")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		_ = resp.Body.Close()
		lim.OnRateLimit()
		return nil, resilience.NewTransientError(
			eris.Errorf("http 429 from %s", req.URL.String()), resp.StatusCode)
	}
	if resp.StatusCode >= 500 {
		_ = resp.Body.Close()
		return nil, resilience.NewTransientError(
			eris.Errorf("http %d from %s", resp.StatusCode, req.URL.String()), resp.StatusCode)
	}

	lim.OnSuccess()
	return resp, nil
}

// Get fetches rawURL and returns the body. timeout overrides the client
// default when non-zero; large paginated search calls need minutes while
// simple pages need seconds.
func (c *Client) Get(ctx context.Context, rawURL string, timeout time.Duration) ([]byte, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "fetcher: create request")
	}
	c.applyHeaders(req, "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := c.do(ctx, req)
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: get %s", rawURL)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("fetcher: unexpected status %d from %s", resp.StatusCode, rawURL)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "fetcher: read body")
	}
	return body, nil
}

// GetJSON fetches rawURL with a JSON accept header and decodes into out.
func (c *Client) GetJSON(ctx context.Context, rawURL string, timeout time.Duration, out any) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return eris.Wrap(err, "fetcher: create request")
	}
	c.applyHeaders(req, "application/json, text/plain, */*")

	resp, err := c.do(ctx, req)
	if err != nil {
		return eris.Wrapf(err, "fetcher: get %s", rawURL)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return eris.Errorf("fetcher: unexpected status %d from %s", resp.StatusCode, rawURL)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return eris.Wrapf(err, "fetcher: decode json from %s", rawURL)
	}
	return nil
}

// Touch issues a best-effort GET and discards the body. Warm-up steps use it
// to pick up cookies without caring about the payload; the status code is
// returned so callers can log it.
func (c *Client) Touch(ctx context.Context, rawURL string, timeout time.Duration) (int, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, eris.Wrap(err, "fetcher: create request")
	}
	c.applyHeaders(req, "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := c.do(ctx, req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close() //nolint:errcheck
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}
