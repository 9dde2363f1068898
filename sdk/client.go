// Package revopt is the Go client SDK for the hotel revenue optimization
// backend. It consumes the backend's streaming endpoints (the multi-agent
// optimize pipeline and the conversational assistant) and exposes the
// pipeline run as an observable client-side state machine.
package revopt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hotelkit/revopt-go/pkg/core"
)

const (
	optimizePath       = "/api/v1/optimize"
	optimizeStreamPath = "/api/v1/optimize/stream"
	chatStreamPath     = "/api/v1/chatbot/chat/stream"
	historyPath        = "/api/v1/history"
	chatMessagesPath   = "/api/v1/chatbot/messages"
)

// Client is the main entry point for the SDK.
type Client struct {
	Optimize *OptimizeService
	Chat     *ChatService
	History  *HistoryService

	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	logger     *slog.Logger
	pacing     time.Duration
}

// NewClient creates a new client for the given backend base URL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: baseURL,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = newDefaultHTTPClient()
	}

	c.Optimize = &OptimizeService{client: c}
	c.Chat = &ChatService{client: c}
	c.History = &HistoryService{client: c}
	return c
}

func (c *Client) url(path string) string {
	return strings.TrimRight(c.baseURL, "/") + path
}

func (c *Client) addAuthHeaders(ctx context.Context, req *http.Request) error {
	if c.tokens == nil {
		return nil
	}
	tok, err := c.tokens.Token(ctx)
	if err != nil {
		return core.NewAuthenticationError(fmt.Sprintf("resolve bearer token: %v", err))
	}
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	return nil
}

// doJSON performs a request with a JSON body (or none) and decodes a JSON
// response into out when non-nil. Non-2xx responses become *core.Error.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if err := c.addAuthHeaders(ctx, req); err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Op: method, URL: c.url(path), Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: method, URL: c.url(path), Err: err}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return core.ErrorFromResponse(resp.StatusCode, respBody)
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// openStream POSTs a JSON body and hands back an sseReader over the
// response body. The reader owns the body; it is closed on every exit
// path, including non-2xx responses.
func (c *Client) openStream(ctx context.Context, path string, body any) (*sseReader, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(path), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	if err := c.addAuthHeaders(ctx, req); err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: http.MethodPost, URL: c.url(path), Err: err}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		_ = resp.Body.Close()
		return nil, core.ErrorFromResponse(resp.StatusCode, respBody)
	}

	return newSSEReader(resp.Body), nil
}
