package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
)

const (
	maxRetries = 3
	baseDelay  = time.Second
)

type exchangeRequest struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	Assertion    string `json:"assertion,omitempty"`
}

type exchangeResponse struct {
	Status string `json:"status"`
	Data   struct {
		Token string `json:"token"`
	} `json:"data"`
}

type TokenExchangerOptions struct {
	ExchangeURL  string
	ClientID     string
	ClientSecret string
	// RefreshLeeway refreshes the token this long before its exp claim.
	RefreshLeeway time.Duration
	Logger        *logrus.Logger
	HTTPClient    *http.Client
}

// TokenExchanger trades the identity assertion for an application bearer
// token and caches it until close to expiry. It implements
// CredentialProvider and is safe for concurrent use.
type TokenExchanger struct {
	http *http.Client
	opts TokenExchangerOptions

	mu        sync.Mutex
	assertion string
	token     string
	expiresAt time.Time
}

func NewTokenExchanger(opts TokenExchangerOptions) *TokenExchanger {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	if opts.Logger == nil {
		opts.Logger = logrus.New()
	}
	if opts.RefreshLeeway <= 0 {
		opts.RefreshLeeway = time.Minute
	}
	return &TokenExchanger{
		http: httpClient,
		opts: opts,
	}
}

// SetAssertion stores the identity-provider assertion to exchange. Called on
// sign-in; clears any cached token so the next call re-exchanges.
func (t *TokenExchanger) SetAssertion(assertion string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.assertion = assertion
	t.token = ""
	t.expiresAt = time.Time{}
}

// CurrentToken returns the cached token without refreshing.
func (t *TokenExchanger) CurrentToken() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.token
}

// Token returns a valid bearer token, exchanging or refreshing when the
// cached one is absent or within the leeway window of its expiry.
func (t *TokenExchanger) Token(ctx context.Context) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.token != "" && (t.expiresAt.IsZero() || time.Now().Before(t.expiresAt.Add(-t.opts.RefreshLeeway))) {
		return t.token, nil
	}
	return t.refreshLocked(ctx)
}

func (t *TokenExchanger) refreshLocked(ctx context.Context) (string, error) {
	if ctx == nil {
		return "", errors.New("context cannot be nil")
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(attempt) * baseDelay
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(delay):
			}
		}

		token, err := t.exchange(ctx)
		if err != nil {
			lastErr = err
			continue
		}

		t.token = token
		t.expiresAt = tokenExpiry(token)
		return token, nil
	}

	return "", lastErr
}

func (t *TokenExchanger) exchange(ctx context.Context) (string, error) {
	payload, err := json.Marshal(&exchangeRequest{
		ClientID:     t.opts.ClientID,
		ClientSecret: t.opts.ClientSecret,
		Assertion:    t.assertion,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.opts.ExchangeURL, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := t.http.Do(req)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		t.opts.Logger.WithField("status", resp.StatusCode).Warn("token exchange rejected")
		return "", errors.New("token exchange rejected by identity backend")
	}

	var decoded exchangeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", err
	}
	if decoded.Data.Token == "" {
		return "", errors.New("received empty token from identity backend")
	}
	return decoded.Data.Token, nil
}

// tokenExpiry reads the exp claim without verifying the signature; the
// console only needs the lifetime bound, verification is the upstream's job.
func tokenExpiry(token string) time.Time {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	if claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}
