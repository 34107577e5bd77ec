package statsapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"dinger/internal/logging"
	"dinger/internal/metrics"
)

const (
	defaultHTTPTimeout = 10 * time.Second
	defaultMinInterval = time.Second
	defaultMaxAttempts = 3
	defaultBaseDelay   = 500 * time.Millisecond
	defaultMaxDelay    = 8 * time.Second
)

// ExhaustedError reports that a fetch failed after all retry attempts. It
// wraps the last underlying cause.
type ExhaustedError struct {
	GamePK   int64
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("fetch game %d content: exhausted %d attempts: %v", e.GamePK, e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error { return e.Err }

// Fetcher is the gateway surface the orchestrator depends on.
type Fetcher interface {
	FetchGameContent(ctx context.Context, gamePK int64) (*GameContent, error)
}

// Client fetches game content from the Stats API.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	limiter     *Limiter
	logger      *slog.Logger
	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration
	sleep       func(ctx context.Context, d time.Duration) error
}

var _ Fetcher = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithLogger attaches a logger to the client.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logging.NewComponentLogger(logger, "statsapi")
		}
	}
}

// WithMinInterval overrides the minimum spacing between outbound calls.
func WithMinInterval(interval time.Duration) Option {
	return func(c *Client) {
		c.limiter = NewLimiter(interval)
	}
}

// WithRetry overrides the retry attempt count and backoff delays.
func WithRetry(maxAttempts int, baseDelay, maxDelay time.Duration) Option {
	return func(c *Client) {
		if maxAttempts > 0 {
			c.maxAttempts = maxAttempts
		}
		if baseDelay > 0 {
			c.baseDelay = baseDelay
		}
		if maxDelay > 0 {
			c.maxDelay = maxDelay
		}
	}
}

// WithSleeper overrides how backoff sleeps are performed (useful for tests).
func WithSleeper(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Client) {
		if sleep != nil {
			c.sleep = sleep
		}
	}
}

// New creates a Stats API client.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("stats api base url required")
	}
	client := &Client{
		baseURL:     baseURL,
		httpClient:  &http.Client{Timeout: defaultHTTPTimeout},
		limiter:     NewLimiter(defaultMinInterval),
		logger:      logging.NewNop(),
		maxAttempts: defaultMaxAttempts,
		baseDelay:   defaultBaseDelay,
		maxDelay:    defaultMaxDelay,
		sleep:       SleepWithContext,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// FetchGameContent retrieves the highlight list for a game. The call blocks
// through the rate limiter, retries transport and non-2xx failures with
// exponential backoff, and returns an ExhaustedError once attempts run out.
func (c *Client) FetchGameContent(ctx context.Context, gamePK int64) (*GameContent, error) {
	if gamePK <= 0 {
		return nil, errors.New("game pk must be positive")
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		metrics.FetchAttempts.Inc()
		content, err := c.fetchOnce(ctx, gamePK)
		if err == nil {
			return content, nil
		}
		lastErr = err

		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		if attempt == c.maxAttempts {
			break
		}

		delay := c.backoffDelay(attempt)
		c.logger.Warn("content fetch failed, retrying",
			logging.Int64(logging.FieldGamePK, gamePK),
			logging.Int("attempt", attempt),
			logging.Int("max_attempts", c.maxAttempts),
			logging.Duration("backoff", delay),
			logging.Error(err))
		if err := c.sleep(ctx, delay); err != nil {
			return nil, err
		}
	}

	metrics.FetchExhaustions.Inc()
	return nil, &ExhaustedError{GamePK: gamePK, Attempts: c.maxAttempts, Err: lastErr}
}

func (c *Client) fetchOnce(ctx context.Context, gamePK int64) (*GameContent, error) {
	endpoint := fmt.Sprintf("%s/game/%d/content", c.baseURL, gamePK)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("content fetch returned %d (latency=%v)", resp.StatusCode, latency)
	}

	var payload contentResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode content response: %w", err)
	}

	items := payload.Highlights.Highlights.Items
	highlights := make([]Highlight, 0, len(items))
	for _, item := range items {
		h := item.toHighlight()
		if h.ID == "" && h.Title == "" {
			continue
		}
		highlights = append(highlights, h)
	}

	c.logger.Debug("fetched game content",
		logging.Int64(logging.FieldGamePK, gamePK),
		logging.Int("highlight_count", len(highlights)),
		logging.Duration("latency", latency))

	return &GameContent{GamePK: gamePK, Highlights: highlights}, nil
}

// backoffDelay doubles the base delay per completed attempt, capped.
func (c *Client) backoffDelay(attempt int) time.Duration {
	delay := c.baseDelay
	for i := 1; i < attempt; i++ {
		if delay > c.maxDelay/2 {
			return c.maxDelay
		}
		delay *= 2
	}
	if delay > c.maxDelay {
		return c.maxDelay
	}
	return delay
}
