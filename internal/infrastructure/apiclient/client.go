// Package apiclient is the single HTTP entry point to the Med-Link backend.
// It injects the bearer token, applies the request timeout, and turns every
// outcome into a domain.Result. It never writes the session store.
package apiclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/medlink/session-client/internal/api/metrics"
	"github.com/medlink/session-client/internal/core/domain"
	"github.com/medlink/session-client/internal/core/ports"
)

const (
	defaultTimeout   = 10 * time.Second
	maxResponseBytes = 4 << 20
	requestIDHeader  = "X-Request-ID"
)

// Config holds the client settings.
type Config struct {
	BaseURL            string
	Timeout            time.Duration
	RatePerSecond      float64
	RetryMaxElapsed    time.Duration
	BreakerMaxFailures uint32
	BreakerOpenTimeout time.Duration
	// HTTPClient replaces the default transport; tests use it.
	HTTPClient *http.Client
}

// Client talks to the backend. It is safe for concurrent use.
type Client struct {
	base     string
	http     *http.Client
	timeout  time.Duration
	tokens   ports.TokenSource
	limiter  *rate.Limiter
	cb       *gobreaker.CircuitBreaker
	retryMax time.Duration
	log      zerolog.Logger
}

var _ ports.Backend = (*Client)(nil)

// New creates a Client. A nil tokens source sends every request
// unauthenticated.
func New(cfg Config, tokens ports.TokenSource, log zerolog.Logger) (*Client, error) {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("api base url %q: invalid", cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}

	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}
	burst := int(cfg.RatePerSecond)
	if burst < 1 {
		burst = 1
	}

	maxFailures := cfg.BreakerMaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "medlink-api",
		MaxRequests: 1,
		Timeout:     cfg.BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.APIBreakerState.Set(float64(to))
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
		},
	})

	return &Client{
		base:     strings.TrimRight(u.String(), "/"),
		http:     hc,
		timeout:  timeout,
		tokens:   tokens,
		limiter:  rate.NewLimiter(limit, burst),
		cb:       cb,
		retryMax: cfg.RetryMaxElapsed,
		log:      log,
	}, nil
}

// request describes one backend call.
type request struct {
	op          string
	method      string
	path        string
	query       url.Values
	body        any
	raw         []byte
	contentType string
}

// response is what came back from the server, whatever the status.
type response struct {
	status int
	body   []byte
}

// serverError marks a 5xx so the breaker counts it and GET retries it.
type serverError struct{ resp *response }

func (e *serverError) Error() string { return fmt.Sprintf("server responded %d", e.resp.status) }

// call runs r and decodes a successful body with decode. It is the only
// place a Result is built, so every operation shares one error contract.
func call[T any](ctx context.Context, c *Client, r request, decode func([]byte) (T, error)) domain.Result[T] {
	start := time.Now()
	resp, apiErr := c.send(ctx, r)

	var res domain.Result[T]
	if apiErr == nil {
		v, err := decode(resp.body)
		if err != nil {
			apiErr = &domain.APIError{Kind: domain.KindUnexpected, Message: err.Error(), Status: resp.status}
		} else {
			res = domain.OK(v)
		}
	}
	if apiErr != nil {
		res = domain.Fail[T](apiErr)
	}

	outcome := "ok"
	if !res.Success {
		outcome = string(res.Kind)
	}
	metrics.APIRequestsTotal.WithLabelValues(r.op, outcome).Inc()
	metrics.APIRequestDuration.WithLabelValues(r.op).Observe(time.Since(start).Seconds())
	return res
}

// send executes r and classifies the outcome. Only GET is retried.
func (c *Client) send(ctx context.Context, r request) (*response, *domain.APIError) {
	payload, contentType, err := r.encode()
	if err != nil {
		return nil, &domain.APIError{Kind: domain.KindUnexpected, Message: err.Error()}
	}

	var last *response
	attempt := func() error {
		resp, err := c.attempt(ctx, r, payload, contentType)
		last = resp
		if err == nil {
			return nil
		}
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) ||
			errors.Is(err, context.Canceled) {
			return backoff.Permanent(err)
		}
		return err
	}

	if r.method == http.MethodGet {
		err = backoff.Retry(attempt, backoff.WithContext(c.backOff(), ctx))
	} else {
		err = attempt()
	}

	var se *serverError
	if errors.As(err, &se) {
		last, err = se.resp, nil
	}
	if err != nil {
		return nil, classifyTransport(err)
	}
	return last, classifyStatus(last)
}

func (c *Client) backOff() backoff.BackOff {
	if c.retryMax <= 0 {
		return &backoff.StopBackOff{}
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond
	b.MaxElapsedTime = c.retryMax
	return b
}

func (c *Client) attempt(ctx context.Context, r request, payload []byte, contentType string) (*response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := c.newRequest(ctx, r, payload, contentType)
	if err != nil {
		return nil, backoff.Permanent(err)
	}

	start := time.Now()
	out, err := c.cb.Execute(func() (interface{}, error) {
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		if err != nil {
			return nil, err
		}
		res := &response{status: resp.StatusCode, body: body}
		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, &serverError{resp: res}
		}
		return res, nil
	})

	evt := c.log.Debug().
		Str("op", r.op).
		Str("method", r.method).
		Str("path", r.path).
		Str("request_id", req.Header.Get(requestIDHeader)).
		Dur("elapsed", time.Since(start))
	if err != nil {
		evt.Err(err).Msg("backend call failed")
		return nil, err
	}
	res := out.(*response)
	evt.Int("status", res.status).Msg("backend call")
	return res, nil
}

func (c *Client) newRequest(ctx context.Context, r request, payload []byte, contentType string) (*http.Request, error) {
	target := c.base + r.path
	if len(r.query) > 0 {
		target += "?" + r.query.Encode()
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, r.method, target, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set(requestIDHeader, uuid.NewString())
	if c.tokens != nil {
		if tok, ok := c.tokens.Token(ctx); ok {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}
	return req, nil
}

func (r request) encode() ([]byte, string, error) {
	switch {
	case r.raw != nil:
		return r.raw, r.contentType, nil
	case r.body != nil:
		b, err := json.Marshal(r.body)
		if err != nil {
			return nil, "", fmt.Errorf("encode %s body: %w", r.op, err)
		}
		return b, "application/json", nil
	default:
		return nil, "application/json", nil
	}
}

// Ping checks the backend answers at all. Any HTTP status counts as up.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.base, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("backend unreachable: %w", err)
	}
	_ = resp.Body.Close()
	return nil
}
