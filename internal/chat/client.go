package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/moodyapp/moody/internal/errors"
)

// Greeting is the canned opening assistant turn shown before any exchange.
const Greeting = "Hi! I'm Moody, your mental wellness companion. I'm here to help you reflect on your emotions and provide support. How are you feeling today?"

// FallbackReply is substituted when the assistant backend cannot be
// reached. Surfaces show it as a normal assistant turn; the failure is
// logged, never raised to the user.
const FallbackReply = "Sorry, I could not reach the AI."

// Message is one conversation turn.
type Message struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// request is the wire format the assistant backend expects: the full
// conversation so the model keeps memory across turns.
type request struct {
	Messages []Message `json:"messages"`
}

// response is the assistant backend's reply payload.
type response struct {
	Response string `json:"response"`
}

// Client talks to the external assistant endpoint.
type Client struct {
	endpoint string
	http     *http.Client
}

// NewClient creates a Client for the given endpoint URL.
func NewClient(endpoint string) *Client {
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: 30 * time.Second},
	}
}

// Send posts the conversation and returns the assistant's reply. Any
// failure (network, non-2xx status, undecodable body) comes back as an
// upstream error; callers substitute FallbackReply rather than surfacing it.
func (c *Client) Send(ctx context.Context, history []Message) (string, error) {
	body, err := json.Marshal(request{Messages: history})
	if err != nil {
		return "", errors.NewInternal(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", errors.NewInternal(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", errors.NewUpstreamUnavailable(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", errors.NewUpstreamUnavailable(fmt.Errorf("assistant returned status %d", resp.StatusCode))
	}

	var out response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", errors.NewUpstreamUnavailable(fmt.Errorf("decode assistant response: %w", err))
	}
	return out.Response, nil
}
