// Package openf1 is a client for the public OpenF1 REST API. Endpoints
// return flat JSON arrays; a non-2xx status degrades to an empty list so
// callers can keep building with partial data, while transport faults
// propagate and feed the circuit breaker.
package openf1

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/pitwall-ai/pitwall/pkg/fn"
	"github.com/pitwall-ai/pitwall/pkg/resilience"
)

// DefaultBaseURL is the public OpenF1 API endpoint.
const DefaultBaseURL = "https://api.openf1.org/v1"

// Client fetches OpenF1 records. Safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	breaker *resilience.Breaker
	retry   fn.RetryOpts
	log     *slog.Logger
}

// NewClient creates a Client against the given base URL; empty means the
// public API.
func NewClient(baseURL string, log *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		limiter: rate.NewLimiter(rate.Every(200*time.Millisecond), 5),
		breaker: resilience.NewBreaker(resilience.DefaultBreakerOpts),
		retry: fn.RetryOpts{
			MaxAttempts: 3,
			InitialWait: 500 * time.Millisecond,
			MaxWait:     5 * time.Second,
			Jitter:      true,
		},
		log: log,
	}
}

// Meetings fetches race weekends, optionally filtered by year (0 = all).
func (c *Client) Meetings(ctx context.Context, year int) fn.Result[[]Meeting] {
	params := url.Values{}
	if year != 0 {
		params.Set("year", strconv.Itoa(year))
	}
	return fetch[Meeting](ctx, c, "meetings", params)
}

// Sessions fetches sessions, optionally filtered by year and session name.
func (c *Client) Sessions(ctx context.Context, year int, sessionName string) fn.Result[[]Session] {
	params := url.Values{}
	if year != 0 {
		params.Set("year", strconv.Itoa(year))
	}
	if sessionName != "" {
		params.Set("session_name", sessionName)
	}
	return fetch[Session](ctx, c, "sessions", params)
}

// Drivers fetches the entry list of a session.
func (c *Client) Drivers(ctx context.Context, sessionKey int) fn.Result[[]Driver] {
	params := url.Values{}
	if sessionKey != 0 {
		params.Set("session_key", strconv.Itoa(sessionKey))
	}
	return fetch[Driver](ctx, c, "drivers", params)
}

// Positions fetches classification samples of a session.
func (c *Client) Positions(ctx context.Context, sessionKey int) fn.Result[[]Position] {
	params := url.Values{"session_key": {strconv.Itoa(sessionKey)}}
	return fetch[Position](ctx, c, "position", params)
}

// RaceControl fetches stewarding messages of a session.
func (c *Client) RaceControl(ctx context.Context, sessionKey int) fn.Result[[]RaceControlMessage] {
	params := url.Values{"session_key": {strconv.Itoa(sessionKey)}}
	return fetch[RaceControlMessage](ctx, c, "race_control", params)
}

// fetch runs one GET through the rate limiter, then retry and circuit
// breaker around the request stage.
func fetch[T any](ctx context.Context, c *Client, endpoint string, params url.Values) fn.Result[[]T] {
	if err := c.limiter.Wait(ctx); err != nil {
		return fn.Err[[]T](err)
	}
	stage := fn.RetryStage(c.retry, resilience.BreakerStage(c.breaker, getStage[T](c)))
	return fn.TracedStage("openf1."+endpoint, stage)(ctx, c.baseURL+"/"+endpoint+"?"+params.Encode())
}

func getStage[T any](c *Client) fn.Stage[string, []T] {
	return func(ctx context.Context, rawURL string) fn.Result[[]T] {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return fn.Err[[]T](err)
		}
		resp, err := c.http.Do(req)
		if err != nil {
			return fn.Err[[]T](err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			io.Copy(io.Discard, resp.Body)
			c.log.Warn("openf1 request degraded to empty result", "url", rawURL, "status", resp.StatusCode)
			return fn.Ok([]T(nil))
		}

		var out []T
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return fn.Errf[[]T]("decoding %s response: %w", rawURL, err)
		}
		c.log.Debug("openf1 records fetched", "url", rawURL, "count", len(out))
		return fn.Ok(out)
	}
}

// BreakerState reports the circuit breaker state, for health reporting.
func (c *Client) BreakerState() string {
	return c.breaker.State().String()
}
