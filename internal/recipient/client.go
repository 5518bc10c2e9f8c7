// Package recipient is a client for the token-authenticated recipient API that
// owns documents, token verification, and persisted rejection state.
package recipient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sony/gobreaker"

	"github.com/JaimeStill/decline/internal/config"
	"github.com/JaimeStill/decline/internal/rejection"
)

const maxErrorBody = 4 << 10

// Client calls the recipient API through a circuit breaker.
// Calls are never retried: rejecting is not idempotent on the remote side.
type Client struct {
	http    *http.Client
	baseURL *url.URL
	breaker *gobreaker.CircuitBreaker
	metrics *Metrics
	logger  *slog.Logger
}

var _ rejection.Rejecter = (*Client)(nil)

// New creates a Client from the upstream configuration.
// A nil httpClient uses a client bounded by cfg's timeout.
func New(cfg *config.UpstreamConfig, httpClient *http.Client, reg prometheus.Registerer, logger *slog.Logger) (*Client, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.TimeoutDuration()}
	}

	c := &Client{
		http:    httpClient,
		baseURL: base,
		metrics: NewMetrics(reg),
		logger:  logger.With("system", "recipient"),
	}

	failures := cfg.BreakerFailures
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "recipient-api",
		MaxRequests: cfg.BreakerMaxRequests,
		Interval:    cfg.BreakerIntervalDuration(),
		Timeout:     cfg.BreakerTimeoutDuration(),
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			return !countsAsFailure(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.metrics.setBreakerState(to)
			c.logger.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})

	return c, nil
}

// RejectDocument records the recipient's rejection of req.DocumentID.
func (c *Client) RejectDocument(ctx context.Context, req rejection.Request) error {
	body, err := json.Marshal(rejectBody{Reason: req.Reason})
	if err != nil {
		return fmt.Errorf("encode reject body: %w", err)
	}

	path := "/api/v1/recipient/documents/" + url.PathEscape(req.DocumentID) + "/reject"

	_, err = c.execute(ctx, "reject", func() (*http.Response, error) {
		httpReq, err := c.newRequest(ctx, http.MethodPost, path, req.Token, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		httpReq.Header.Set("Content-Type", "application/json")
		return c.http.Do(httpReq)
	})
	return err
}

// Lookup returns the envelope the token grants access to.
func (c *Client) Lookup(ctx context.Context, token string) (*Envelope, error) {
	data, err := c.execute(ctx, "lookup", func() (*http.Response, error) {
		httpReq, err := c.newRequest(ctx, http.MethodGet, "/api/v1/recipient/envelope", token, nil)
		if err != nil {
			return nil, err
		}
		return c.http.Do(httpReq)
	})
	if err != nil {
		return nil, err
	}

	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: decode envelope: %v", ErrUpstream, err)
	}
	if env.DocumentID == "" {
		return nil, fmt.Errorf("%w: envelope missing document id", ErrUpstream)
	}
	return &env, nil
}

func (c *Client) newRequest(ctx context.Context, method, path, token string, body io.Reader) (*http.Request, error) {
	u := c.baseURL.JoinPath(path)
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) execute(ctx context.Context, operation string, send func() (*http.Response, error)) ([]byte, error) {
	start := time.Now()

	result, err := c.breaker.Execute(func() (any, error) {
		resp, err := send()
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrUpstream, operation, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			data, err := io.ReadAll(resp.Body)
			if err != nil {
				return nil, fmt.Errorf("%w: read %s response: %v", ErrUpstream, operation, err)
			}
			return data, nil
		}

		return nil, responseError(resp)
	})

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		err = fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if ctxErr := ctx.Err(); ctxErr != nil && err != nil && !errors.Is(err, ctxErr) {
		err = fmt.Errorf("%w: %w", err, ctxErr)
	}

	c.metrics.RequestDuration.
		WithLabelValues(operation, resultLabel(err)).
		Observe(time.Since(start).Seconds())

	if err != nil {
		c.logger.Debug("recipient api call failed", "operation", operation, "error", err)
		return nil, err
	}

	data, _ := result.([]byte)
	return data, nil
}

func responseError(resp *http.Response) error {
	base := statusError(resp.StatusCode)

	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var body errorBody
	if err := json.Unmarshal(data, &body); err == nil && body.Error != "" {
		return fmt.Errorf("%w: %s", base, body.Error)
	}
	if text := strings.TrimSpace(string(data)); text != "" && !strings.HasPrefix(text, "<") {
		return fmt.Errorf("%w: status %d: %s", base, resp.StatusCode, text)
	}
	return fmt.Errorf("%w: status %d", base, resp.StatusCode)
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrTokenInvalid):
		return "token_invalid"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrRejectionRefused):
		return "refused"
	case errors.Is(err, ErrUnavailable):
		return "unavailable"
	default:
		return "error"
	}
}
