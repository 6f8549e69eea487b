// Package profanity classifies post content via an external scoring
// service and maps the result to the moderation status a new post starts
// in.
package profanity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jmcleod/postit/postit"
)

// DefaultEndpoint is the hosted classifier.
const DefaultEndpoint = "https://vector.profanity.dev"

// DefaultTimeout bounds a single classification call. On timeout the
// content is routed to manual review (pending) rather than blocked or
// waved through.
const DefaultTimeout = 5 * time.Second

// Client calls the profanity scoring service.
type Client struct {
	endpoint string
	http     *http.Client
}

// Option configures the Client.
type Option func(*Client)

// WithEndpoint overrides the classifier URL (used by tests).
func WithEndpoint(url string) Option {
	return func(c *Client) { c.endpoint = url }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// New creates a classifier client.
func New(opts ...Option) *Client {
	c := &Client{
		endpoint: DefaultEndpoint,
		http:     &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type request struct {
	Message string `json:"message"`
}

type response struct {
	IsProfanity bool    `json:"isProfanity"`
	Score       float64 `json:"score"`
}

// Classify scores content and returns the status a new post should start
// in: rejected when the classifier is certain, pending when it is unsure
// or unreachable in time, approved otherwise.
func (c *Client) Classify(ctx context.Context, content string) (postit.PostStatus, error) {
	body, err := json.Marshal(request{Message: content})
	if err != nil {
		return "", fmt.Errorf("encoding profanity request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building profanity request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		// Timeouts and cancellations degrade to manual review.
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return postit.StatusPending, nil
		}
		return "", fmt.Errorf("calling profanity service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("profanity service returned status %d", resp.StatusCode)
	}

	var result response
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decoding profanity response: %w", err)
	}

	switch {
	case result.IsProfanity && result.Score == 1:
		return postit.StatusRejected, nil
	case result.IsProfanity:
		return postit.StatusPending, nil
	default:
		return postit.StatusApproved, nil
	}
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}
