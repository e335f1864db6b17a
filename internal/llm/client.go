// Package llm implements the HTTP client for the completion gateway,
// the external service that generates assistant replies and classifies
// ended conversations.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/smartsupport/backend/internal/config"
	"github.com/smartsupport/backend/internal/conversation"
)

// ClassificationResult is the structured payload returned by the
// gateway's classify operation, before vocabulary coercion.
type ClassificationResult struct {
	Category string   `json:"category"`
	Urgency  string   `json:"urgency"`
	Summary  string   `json:"summary"`
	Keywords []string `json:"keywords"`
}

type generateRequest struct {
	Message string               `json:"message"`
	History []conversation.Entry `json:"conversation_history"`
}

type generateResponse struct {
	Response string `json:"response"`
}

type classifyRequest struct {
	History []conversation.Entry `json:"conversation_history"`
}

type classifyResponse struct {
	Classification *ClassificationResult `json:"classification"`
}

// Client talks to the completion gateway. Every call is attempted
// exactly once; a timeout is indistinguishable from any other failure
// for callers, which apply their own fallback.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a gateway client from configuration
func NewClient(cfg config.LLMConfig) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// Generate asks the gateway for an assistant reply to message given the
// prior conversation history.
func (c *Client) Generate(ctx context.Context, message string, history []conversation.Entry) (string, error) {
	var resp generateResponse
	if err := c.post(ctx, "/chats", generateRequest{Message: message, History: history}, &resp); err != nil {
		return "", err
	}
	if resp.Response == "" {
		return "", fmt.Errorf("empty response from gateway")
	}
	return resp.Response, nil
}

// Classify asks the gateway to classify a conversation history into
// category, urgency, summary and keywords.
func (c *Client) Classify(ctx context.Context, history []conversation.Entry) (*ClassificationResult, error) {
	var resp classifyResponse
	if err := c.post(ctx, "/classify", classifyRequest{History: history}, &resp); err != nil {
		return nil, err
	}
	if resp.Classification == nil {
		return nil, fmt.Errorf("missing classification in gateway response")
	}
	return resp.Classification, nil
}

func (c *Client) post(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode gateway response: %w", err)
	}
	return nil
}
