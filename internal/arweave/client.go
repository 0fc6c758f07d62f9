// Package arweave is a client for the Arweave storage upload service.
//
// The service fronts the Arweave network: submissions return a receipt
// immediately and a durable transaction id is assigned asynchronously once
// the network finalizes the write. The client holds a single session token
// shared by all concurrent requests; re-login is idempotent.
package arweave

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/gaiachat/arweave-agent/pkg/logger"
)

// Sentinel errors mapped from storage service responses.
var (
	// ErrUnauthorized indicates the app wallet credentials were rejected.
	ErrUnauthorized = errors.New("storage service rejected credentials")
	// ErrInsufficientFunds indicates the app wallet cannot pay for the upload.
	ErrInsufficientFunds = errors.New("insufficient funds in app wallet")
)

// Config holds storage service connection settings.
type Config struct {
	BaseURL    string
	PrivateKey string
	Network    string
	Token      string
	AppName    string
}

// Client is the storage service HTTP client.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *logger.Logger

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// NewClient creates a storage service client.
func NewClient(cfg Config, log *logger.Logger) *Client {
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: 30 * time.Second},
		logger: log,
	}
}

type loginRequest struct {
	PrivateKey string `json:"privateKey"`
	Network    string `json:"network"`
	Token      string `json:"token"`
	AppName    string `json:"appName,omitempty"`
}

type loginResponse struct {
	AccessToken string `json:"accessToken"`
}

// Login authenticates with the app wallet and caches the session token.
// Safe to call redundantly; a still-valid token is reused.
func (c *Client) Login(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry) {
		return nil
	}

	body, err := json.Marshal(loginRequest{
		PrivateKey: c.cfg.PrivateKey,
		Network:    c.cfg.Network,
		Token:      c.cfg.Token,
		AppName:    c.cfg.AppName,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal login request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/auth/login", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("login request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return ErrUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("login failed with status %d", resp.StatusCode)
	}

	var lr loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return fmt.Errorf("failed to decode login response: %w", err)
	}
	if lr.AccessToken == "" {
		return fmt.Errorf("login response missing access token")
	}

	c.accessToken = lr.AccessToken
	c.tokenExpiry = tokenExpiry(lr.AccessToken)

	c.logger.Info("storage session established")
	return nil
}

// tokenExpiry reads the exp claim from the service-issued JWT without
// verifying the signature; verification is the service's concern. Tokens
// without a readable exp are treated as short-lived.
func tokenExpiry(token string) time.Time {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err == nil {
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			// Refresh slightly ahead of expiry.
			return exp.Time.Add(-30 * time.Second)
		}
	}
	return time.Now().Add(5 * time.Minute)
}

// authToken returns the current session token.
func (c *Client) authToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken
}

// doJSON performs an authenticated request and decodes the JSON reply
// into out. A nil out discards the body.
func (c *Client) doJSON(ctx context.Context, method, path string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.authToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.asError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// asError maps an error response onto the client's error taxonomy.
func (c *Client) asError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	detail := strings.TrimSpace(string(data))

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", ErrUnauthorized, detail)
	case resp.StatusCode == http.StatusPaymentRequired,
		strings.Contains(detail, "Insufficient funds"):
		return fmt.Errorf("%w: %s", ErrInsufficientFunds, detail)
	default:
		return fmt.Errorf("storage service returned status %d: %s", resp.StatusCode, detail)
	}
}
