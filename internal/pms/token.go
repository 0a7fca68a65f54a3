package pms

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// refreshMargin is how long before expiry a token is treated as stale.
const refreshMargin = 5 * time.Minute

// TokenManager owns the OAuth2 client-credentials token lifecycle.
// It holds at most one live token and refreshes it proactively when the
// expiry is within refreshMargin of now. Refreshes are single-flight:
// concurrent callers block on the in-progress request instead of issuing
// duplicates.
type TokenManager struct {
	cfg        Config
	httpClient *http.Client

	mu     sync.Mutex
	token  string
	expiry time.Time

	// now is swappable for tests
	now func() time.Time
}

// NewTokenManager creates a token manager for the given configuration.
func NewTokenManager(cfg Config) *TokenManager {
	return &TokenManager{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		now: time.Now,
	}
}

// tokenResponse is the token endpoint's response body.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

// EnsureValid guarantees that on return a non-expired access token exists
// with at least refreshMargin left before expiry, fetching or refreshing
// one if needed. It returns the token to attach as a bearer credential.
func (m *TokenManager) EnsureValid(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.token != "" && m.expiry.Sub(m.now()) > refreshMargin {
		return m.token, nil
	}

	token, expiry, err := m.fetchToken(ctx)
	if err != nil {
		return "", err
	}

	m.token = token
	m.expiry = expiry
	return m.token, nil
}

// Invalidate discards the current token so the next call fetches a fresh one.
func (m *TokenManager) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	m.expiry = time.Time{}
}

// fetchToken performs the client-credentials grant. Callers must hold m.mu.
func (m *TokenManager) fetchToken(ctx context.Context) (string, time.Time, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", m.cfg.ClientID)
	form.Set("client_secret", m.cfg.ClientSecret)

	req, err := http.NewRequestWithContext(ctx, "POST", m.cfg.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("creating token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return "", time.Time{}, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		body, _ := io.ReadAll(resp.Body)
		return "", time.Time{}, &AuthError{Status: resp.StatusCode, Body: string(body)}
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", time.Time{}, &APIError{Status: resp.StatusCode, Body: string(body)}
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", time.Time{}, fmt.Errorf("decoding token response: %w", err)
	}
	if tr.AccessToken == "" {
		return "", time.Time{}, fmt.Errorf("token endpoint returned empty access_token")
	}

	expiry := m.now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	return tr.AccessToken, expiry, nil
}
