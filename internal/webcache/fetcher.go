package webcache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"

	"marquee/internal/logging"
)

// FetcherOptions configures retry, pacing, and identity behavior.
type FetcherOptions struct {
	MaxAttempts       int
	BaseDelay         time.Duration
	PoliteDelayMin    time.Duration
	PoliteDelayMax    time.Duration
	RateLimitDelayMin time.Duration
	RateLimitDelayMax time.Duration
	Timeout           time.Duration
	UserAgents        []string
}

// FetchOptions adjusts a single fetch.
type FetchOptions struct {
	// MaxAge bounds how old a cached copy may be before it is refetched.
	// Zero accepts any cached copy.
	MaxAge time.Duration
	// ForceRefresh bypasses the cache read but still writes the result back.
	ForceRefresh bool
	// Timeout overrides the fetcher default for this request.
	Timeout time.Duration
}

// Fetcher retrieves pages through the cache, retrying transient failures
// with exponential backoff and rotating browser identities per attempt.
type Fetcher struct {
	store  *Store
	client *http.Client
	logger *slog.Logger
	opts   FetcherOptions

	mu    sync.Mutex
	rng   *rand.Rand
	sleep func(ctx context.Context, d time.Duration) error
}

// NewFetcher builds a fetcher over the given store. Unset options fall back
// to conservative defaults.
func NewFetcher(store *Store, logger *slog.Logger, opts FetcherOptions) *Fetcher {
	if logger == nil {
		logger = logging.NewNop()
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = 2 * time.Second
	}
	if opts.PoliteDelayMin <= 0 {
		opts.PoliteDelayMin = time.Second
	}
	if opts.PoliteDelayMax < opts.PoliteDelayMin {
		opts.PoliteDelayMax = opts.PoliteDelayMin + time.Second
	}
	if opts.RateLimitDelayMin <= 0 {
		opts.RateLimitDelayMin = 5 * time.Second
	}
	if opts.RateLimitDelayMax < opts.RateLimitDelayMin {
		opts.RateLimitDelayMax = opts.RateLimitDelayMin + 15*time.Second
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if len(opts.UserAgents) == 0 {
		opts.UserAgents = defaultUserAgents
	}
	return &Fetcher{
		store:  store,
		client: &http.Client{},
		logger: logging.NewComponentLogger(logger, "webcache"),
		opts:   opts,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		sleep:  sleepContext,
	}
}

// SetHTTPClient replaces the underlying HTTP client.
func (f *Fetcher) SetHTTPClient(client *http.Client) {
	if client != nil {
		f.client = client
	}
}

// Store exposes the backing cache store.
func (f *Fetcher) Store() *Store {
	return f.store
}

// Fetch returns the page content for rawURL, serving from cache when a fresh
// copy exists under key. A false result means every attempt failed; failures
// never surface as errors because callers degrade gracefully without the page.
func (f *Fetcher) Fetch(ctx context.Context, rawURL, key string, opts FetchOptions) (string, bool) {
	if !opts.ForceRefresh {
		if content, ok := f.store.Get(key, opts.MaxAge); ok {
			f.logger.Debug("cache hit", logging.String("key", key))
			return content, true
		}
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = f.opts.Timeout
	}

	var content string
	err := retry.Do(
		func() error {
			body, err := f.fetchOnce(ctx, rawURL, timeout)
			if err != nil {
				return err
			}
			content = body
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(uint(f.opts.MaxAttempts)),
		retry.LastErrorOnly(true),
		retry.RetryIf(isRetryable),
		retry.DelayType(f.retryDelay),
		retry.OnRetry(func(attempt uint, err error) {
			f.logger.Warn("fetch attempt failed",
				logging.String(logging.FieldURL, rawURL),
				logging.Int("attempt", int(attempt)+1),
				logging.Error(err))
		}),
	)
	if err != nil {
		f.logger.Warn("fetch failed",
			logging.String(logging.FieldURL, rawURL),
			logging.Error(err))
		return "", false
	}

	if err := f.store.Put(key, content); err != nil {
		f.logger.Warn("cache write failed",
			logging.String("key", key),
			logging.Error(err))
	}

	// Small randomized pause between successful requests keeps the crawl
	// polite toward the upstream site.
	_ = f.sleep(ctx, f.randomDelay(f.opts.PoliteDelayMin, f.opts.PoliteDelayMax))

	return content, true
}

func (f *Fetcher) fetchOnce(ctx context.Context, rawURL string, timeout time.Duration) (string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", f.pickUserAgent())
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return "", &statusError{status: resp.StatusCode}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}

	body, decodeErr := decodeBody(raw, resp.Header.Get("Content-Encoding"))
	if decodeErr != nil {
		// The raw bytes may still be usable when the server mislabeled an
		// uncompressed response.
		f.logger.Debug("body decode fell back to raw bytes",
			logging.String(logging.FieldURL, rawURL),
			logging.Error(decodeErr))
	}

	content := string(body)
	if !looksLikeHTML(content) {
		return "", errNotHTML
	}
	return content, nil
}

// statusError marks a non-200 response so the retry classifier can
// distinguish throttling from hard failures.
type statusError struct {
	status int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.status)
}

func (e *statusError) rateLimited() bool {
	switch e.status {
	case http.StatusTooManyRequests, http.StatusForbidden, http.StatusServiceUnavailable:
		return true
	}
	return false
}

var errNotHTML = errors.New("response body is not an HTML document")

// isRetryable reports whether a failed attempt is worth repeating. Client
// errors other than throttling will not improve on retry; everything that
// smells transient (timeouts, resets, server errors, blocks) will.
func isRetryable(err error) bool {
	if errors.Is(err, errNotHTML) {
		return false
	}
	var se *statusError
	if errors.As(err, &se) {
		return se.rateLimited() || se.status >= 500
	}
	var ne net.Error
	if errors.As(err, &ne) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	// Unwrapped transport errors (connection refused, EOF) land here.
	return true
}

// retryDelay computes the pause before the next attempt. Throttled responses
// wait a long randomized interval; other transient failures back off
// exponentially with a short jitter.
func (f *Fetcher) retryDelay(n uint, err error, _ *retry.Config) time.Duration {
	var se *statusError
	if errors.As(err, &se) && se.rateLimited() {
		return f.randomDelay(f.opts.RateLimitDelayMin, f.opts.RateLimitDelayMax)
	}
	backoff := f.opts.BaseDelay * (1 << n)
	jitter := f.randomDelay(100*time.Millisecond, 500*time.Millisecond)
	return backoff + jitter
}

func (f *Fetcher) randomDelay(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return min + time.Duration(f.rng.Int63n(int64(max-min)))
}

func (f *Fetcher) pickUserAgent() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.opts.UserAgents[f.rng.Intn(len(f.opts.UserAgents))]
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
