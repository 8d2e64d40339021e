// Package beds24 talks to the Beds24 v2 authentication API.
package beds24

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var ErrUpstream = errors.New("beds24 request failed")

// SetupResult is returned when an invite code is exchanged.
type SetupResult struct {
	Token        string `json:"token"`
	ExpiresIn    int    `json:"expiresIn"`
	RefreshToken string `json:"refreshToken"`
}

// TokenResult is returned when a refresh token is exchanged for an access token.
type TokenResult struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expiresIn"`
}

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// Setup exchanges a one-time invite code for a refresh token.
func (c *Client) Setup(ctx context.Context, code string) (*SetupResult, error) {
	var out SetupResult
	if err := c.get(ctx, "/authentication/setup", "code", code, &out); err != nil {
		return nil, err
	}
	if out.RefreshToken == "" {
		return nil, fmt.Errorf("%w: response carried no refresh token", ErrUpstream)
	}
	return &out, nil
}

// Token exchanges a refresh token for a short-lived access token.
func (c *Client) Token(ctx context.Context, refreshToken string) (*TokenResult, error) {
	var out TokenResult
	if err := c.get(ctx, "/authentication/token", "refreshToken", refreshToken, &out); err != nil {
		return nil, err
	}
	if out.Token == "" {
		return nil, fmt.Errorf("%w: response carried no token", ErrUpstream)
	}
	return &out, nil
}

func (c *Client) get(ctx context.Context, path, header, value string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(header, value)

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%w: read body: %v", ErrUpstream, err)
	}
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d: %s", ErrUpstream, res.StatusCode, upstreamMessage(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: decode: %v", ErrUpstream, err)
	}
	return nil
}

func upstreamMessage(body []byte) string {
	var e struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &e) == nil {
		if e.Error != "" {
			return e.Error
		}
		if e.Message != "" {
			return e.Message
		}
	}
	if len(body) > 200 {
		body = body[:200]
	}
	return strings.TrimSpace(string(body))
}
