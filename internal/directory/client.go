// Package directory fetches hospital branch and floor listings from the
// remote configuration service.
package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"

	"github.com/weiawesome/ward-rooms/internal/config"
	"github.com/weiawesome/ward-rooms/internal/metrics"
	"github.com/weiawesome/ward-rooms/pkg/log"
)

// Resource names used for logging and metrics.
const (
	ResourceBranches = "branches"
	ResourceFloors   = "floors"
)

// ErrUpstream is returned when the directory cannot be reached or answers
// with a non-success status.
var ErrUpstream = errors.New("directory unavailable")

// Directory lists branches and floors.
type Directory interface {
	Branches(ctx context.Context) (json.RawMessage, error)
	Floors(ctx context.Context) (json.RawMessage, error)
}

// Client implements Directory over HTTP behind a circuit breaker.
type Client struct {
	http        *resty.Client
	cb          *gobreaker.CircuitBreaker
	branchesURL string
	floorsURL   string
}

// NewClient creates a directory client from config.
func NewClient(cfg config.DirectoryConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	httpClient := resty.New().
		SetTimeout(timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(200 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= 500
		}).
		SetHeader("Accept", "application/json")

	return &Client{
		http:        httpClient,
		cb:          newCircuitBreaker("directory"),
		branchesURL: cfg.BranchesURL,
		floorsURL:   cfg.FloorsURL,
	}
}

func newCircuitBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    10 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			l := log.L()
			l.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
		},
	})
}

// Branches returns the active hospital branches as served upstream.
func (c *Client) Branches(ctx context.Context) (json.RawMessage, error) {
	return c.fetch(ctx, ResourceBranches, c.branchesURL)
}

// Floors returns the active floors as served upstream.
func (c *Client) Floors(ctx context.Context) (json.RawMessage, error) {
	return c.fetch(ctx, ResourceFloors, c.floorsURL)
}

func (c *Client) fetch(ctx context.Context, resource, url string) (json.RawMessage, error) {
	l := log.Ctx(ctx)

	body, err := c.cb.Execute(func() (interface{}, error) {
		resp, err := c.http.R().SetContext(ctx).Get(url)
		if err != nil {
			return nil, err
		}
		if resp.IsError() {
			return nil, fmt.Errorf("unexpected status %d", resp.StatusCode())
		}
		if !json.Valid(resp.Body()) {
			return nil, errors.New("response is not valid JSON")
		}
		return json.RawMessage(resp.Body()), nil
	})
	metrics.ObserveDirectoryRequest(resource, err)
	if err != nil {
		l.Error().Err(err).Str("resource", resource).Msg("directory request failed")
		return nil, fmt.Errorf("%w: %s: %v", ErrUpstream, resource, err)
	}
	return body.(json.RawMessage), nil
}
