package pms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Client executes authenticated calls against the PMS API. Rate-limited
// attempts (429) are retried with exponential backoff; every other failure
// is surfaced to the caller as a typed error without retrying.
type Client struct {
	cfg        Config
	tokens     *TokenManager
	httpClient *http.Client

	// sleep is swappable for tests
	sleep func(ctx context.Context, d time.Duration) error
}

// NewClient creates a new PMS API client using the given token manager.
func NewClient(cfg Config, tokens *TokenManager) *Client {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = time.Second
	}

	return &Client{
		cfg:    cfg,
		tokens: tokens,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		sleep: sleepCtx,
	}
}

// Execute performs an API call and returns the raw response payload.
// On 429 it retries up to MaxRetries times, waiting
// InitialBackoff * 2^(attempt-1) between attempts.
func (c *Client) Execute(ctx context.Context, method, path string, body any) ([]byte, error) {
	policy := c.newBackoff()

	attempt := 0
	for {
		attempt++

		payload, err := c.do(ctx, method, path, body)
		if err == nil {
			return payload, nil
		}

		var rateLimited *RateLimitError
		if !errors.As(err, &rateLimited) {
			return nil, err
		}

		if attempt > c.cfg.MaxRetries {
			return nil, &RateLimitError{Attempts: attempt}
		}

		wait := policy.NextBackOff()
		if wait == backoff.Stop {
			return nil, &RateLimitError{Attempts: attempt}
		}

		log.Printf("PMS rate limited (%s %s), attempt %d/%d, retrying in %s",
			method, path, attempt, c.cfg.MaxRetries+1, wait)

		if err := c.sleep(ctx, wait); err != nil {
			return nil, err
		}
	}
}

// HealthCheck issues a minimal read call and reports reachability.
func (c *Client) HealthCheck(ctx context.Context) (bool, string) {
	_, err := c.Execute(ctx, "GET", "/listings?limit=1", nil)
	if err != nil {
		return false, err.Error()
	}
	return true, "PMS API reachable"
}

// do performs a single attempt: token, request, typed-error classification.
func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	token, err := c.tokens.EnsureValid(ctx)
	if err != nil {
		return nil, fmt.Errorf("ensuring token: %w", err)
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, classifyStatus(resp.StatusCode, string(payload))
	}

	return payload, nil
}

// newBackoff builds the retry delay policy: deterministic doubling from
// InitialBackoff, capped so sustained rate limiting cannot hang a sync run.
func (c *Client) newBackoff() backoff.BackOff {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = c.cfg.InitialBackoff
	policy.RandomizationFactor = 0
	policy.Multiplier = 2
	policy.MaxInterval = 30 * time.Second
	policy.MaxElapsedTime = 0
	policy.Reset()
	return policy
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
