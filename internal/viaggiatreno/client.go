// Package viaggiatreno talks to the ViaggiaTreno REST service: a single
// shared-backoff HTTP client, the endpoint catalog, and the typed payloads
// the rest of the system consumes.
package viaggiatreno

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Retry defaults, matching the live service's observed tolerance.
const (
	DefaultTimeout        = 30 * time.Second
	DefaultMaxAttempts    = 6
	DefaultInitialBackoff = 4 * time.Second
)

// maxBackoffInterval keeps the exponential schedule uncapped for any
// plausible retry budget.
const maxBackoffInterval = 24 * time.Hour

// Request outcome labels reported to the Recorder.
const (
	OutcomeOK          = "ok"
	OutcomeError       = "error"
	OutcomeRateLimited = "rate_limited"
)

// Recorder observes request-level events. Implementations must be safe for
// concurrent use; a nil Recorder disables recording.
type Recorder interface {
	ObserveRequest(endpoint, outcome string, elapsed time.Duration)
	ObserveRateLimit(endpoint string, resumeAt time.Time)
}

// ClientOptions configures a Client. Zero values fall back to the live
// service's defaults.
type ClientOptions struct {
	BaseURL        string
	Timeout        time.Duration
	MaxAttempts    int
	InitialBackoff time.Duration
	Gate           *Gate    // shared across clients when set
	Metrics        Recorder // optional
}

// Client is the only entry point other components use to talk to the
// service. It owns the retry/backoff state machine: HTTP 403 is the
// service's throttle signal and the single retryable condition; everything
// else fails the call immediately.
type Client struct {
	base        string
	httpc       *http.Client
	gate        *Gate
	rec         Recorder
	maxAttempts int
	seed        time.Duration
	clock       clock
}

// NewClient builds a Client from opts.
func NewClient(opts ClientOptions) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.InitialBackoff <= 0 {
		opts.InitialBackoff = DefaultInitialBackoff
	}
	if opts.Gate == nil {
		opts.Gate = NewGate()
	}

	return &Client{
		base:        strings.TrimRight(opts.BaseURL, "/"),
		httpc:       &http.Client{Timeout: opts.Timeout},
		gate:        opts.Gate,
		rec:         opts.Metrics,
		maxAttempts: opts.MaxAttempts,
		seed:        opts.InitialBackoff,
		clock:       systemClock{},
	}
}

// Gate exposes the shared backoff window, mainly so callers can report it.
func (c *Client) Gate() *Gate { return c.gate }

// Call performs one logical request: wait out the shared backoff window,
// issue the GET, and on a 403 widen the window and retry on an exponential
// schedule until the attempt budget is spent. Any other failure is
// returned immediately.
func (c *Client) Call(ctx context.Context, endpoint string, args ...any) (Result, error) {
	u := c.buildURL(endpoint, args)
	sched := c.newSchedule()

	for attempt := 1; ; attempt++ {
		if err := c.gate.Wait(ctx); err != nil {
			return Result{}, fmt.Errorf("%s: %w", endpoint, err)
		}

		start := c.clock.Now()
		res, err := c.roundTrip(ctx, endpoint, u)
		elapsed := c.clock.Now().Sub(start)

		var status *StatusError
		if errors.As(err, &status) && status.StatusCode == http.StatusForbidden {
			c.observe(endpoint, OutcomeRateLimited, elapsed)
			if attempt >= c.maxAttempts {
				return Result{}, &RateLimitError{Endpoint: endpoint, Attempts: attempt}
			}

			delay := sched.NextBackOff()
			widened := c.gate.Extend(delay)
			if c.rec != nil {
				c.rec.ObserveRateLimit(endpoint, c.gate.Resume())
			}
			slog.Warn("rate limited",
				"endpoint", endpoint,
				"attempt", attempt,
				"delay", delay.String(),
				"widened", widened,
			)

			// Sleep the full delay locally even when another caller
			// already widened the window further.
			if err := c.clock.Sleep(ctx, delay); err != nil {
				return Result{}, fmt.Errorf("%s: %w", endpoint, err)
			}
			continue
		}
		if err != nil {
			c.observe(endpoint, OutcomeError, elapsed)
			return Result{}, err
		}

		c.observe(endpoint, OutcomeOK, elapsed)
		return res, nil
	}
}

// roundTrip is the transport: exactly one network round trip, no retries.
func (c *Client) roundTrip(ctx context.Context, endpoint, u string) (Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Result{}, fmt.Errorf("building request for %s: %w", endpoint, err)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("fetching %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{}, &StatusError{Endpoint: endpoint, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("reading %s response: %w", endpoint, err)
	}

	return classify(resp.Header.Get("Content-Type"), body), nil
}

func (c *Client) buildURL(endpoint string, args []any) string {
	var sb strings.Builder
	sb.WriteString(c.base)
	sb.WriteByte('/')
	sb.WriteString(endpoint)
	for _, arg := range args {
		sb.WriteByte('/')
		sb.WriteString(url.PathEscape(fmt.Sprint(arg)))
	}
	return sb.String()
}

// newSchedule yields seed, seed*2, seed*4, ... with no jitter, so the
// sleep sequence is exact and repeatable.
func (c *Client) newSchedule() *backoff.ExponentialBackOff {
	b := &backoff.ExponentialBackOff{
		InitialInterval:     c.seed,
		RandomizationFactor: 0,
		Multiplier:          2,
		MaxInterval:         maxBackoffInterval,
		MaxElapsedTime:      0,
		Stop:                backoff.Stop,
		Clock:               backoff.SystemClock,
	}
	b.Reset()
	return b
}

func (c *Client) observe(endpoint, outcome string, elapsed time.Duration) {
	if c.rec != nil {
		c.rec.ObserveRequest(endpoint, outcome, elapsed)
	}
}
