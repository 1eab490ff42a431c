// Package chatapi talks to the assistant chat endpoint.
package chatapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/verte-zerg/agromind/internal/remote"
)

const defaultChatTimeout = 3 * time.Minute

// Config describes how to build a Client.
type Config struct {
	BaseURL    string
	Decoder    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client posts prompts to a single endpoint using a pluggable Decoder.
type Client struct {
	url     string
	decoder Decoder
	client  *http.Client
}

// New builds a chat client. The decoder is chosen by cfg.Decoder.
func New(cfg Config) (*Client, error) {
	url := strings.TrimSpace(cfg.BaseURL)
	if url == "" {
		return nil, fmt.Errorf("chat base url is empty")
	}
	decoder, err := ParseDecoder(cfg.Decoder)
	if err != nil {
		return nil, err
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultChatTimeout
	}
	return &Client{
		url:     url,
		decoder: decoder,
		client:  remote.PickHTTPClient(cfg.HTTPClient, timeout),
	}, nil
}

// Name reports the endpoint and decoder, for status lines.
func (c *Client) Name() string {
	return fmt.Sprintf("%s (%s)", c.url, c.decoder.Name())
}

// Ask sends prompt and returns the text to show as the assistant turn.
func (c *Client) Ask(ctx context.Context, prompt string) (string, error) {
	body, contentType, err := c.decoder.Encode(prompt)
	if err != nil {
		return "", fmt.Errorf("failed to encode prompt: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", contentType)

	raw, err := remote.Do(c.client, req)
	if err != nil {
		return "", err
	}
	text, err := c.decoder.Decode(raw)
	if err != nil {
		return "", &remote.DecodeError{URL: c.url, Err: err}
	}
	return text, nil
}
