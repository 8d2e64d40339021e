// Package sms sends text messages through a REST SMS gateway.
package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

var (
	ErrUpstream      = errors.New("sms gateway request failed")
	ErrNotConfigured = errors.New("sms gateway is not configured")
)

// Client posts {to, from, body} to {baseURL}/messages with a bearer key.
// Outbound sends are throttled to perSecond messages per second.
type Client struct {
	baseURL string
	apiKey  string
	sender  string
	http    *http.Client
	limiter *rate.Limiter
}

func NewClient(baseURL, apiKey, sender string, perSecond float64) *Client {
	if perSecond <= 0 {
		perSecond = 5
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		sender:  sender,
		http:    &http.Client{Timeout: 10 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(perSecond), int(perSecond)+1),
	}
}

// Send delivers body to the phone number to and returns the gateway's message id.
func (c *Client) Send(ctx context.Context, to, body string) (string, error) {
	if c.baseURL == "" || c.apiKey == "" {
		return "", ErrNotConfigured
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	payload, err := json.Marshal(map[string]string{"to": to, "from": c.sender, "body": body})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/messages", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer res.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return "", fmt.Errorf("%w: status %d: %s", ErrUpstream, res.StatusCode, strings.TrimSpace(string(raw)))
	}

	var out struct {
		ID        string `json:"id"`
		MessageID string `json:"message_id"`
	}
	_ = json.Unmarshal(raw, &out)
	if out.ID == "" {
		out.ID = out.MessageID
	}
	return out.ID, nil
}
