package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// ErrNotConfigured is returned when no API key is set
var ErrNotConfigured = errors.New("ai client not configured")

const defaultRequestTimeout = 60 * time.Second

// Config holds the client's connection settings
type Config struct {
	APIKey        string
	BaseURL       string
	Model         string
	FallbackModel string
	Timeout       time.Duration
}

// Request is a single completion request
type Request struct {
	Prompt      string
	System      string
	MaxTokens   int
	Temperature float64
}

// Completion is the assistant's answer to a request
type Completion struct {
	Text  string
	Model string
}

// Completer produces completions; satisfied by Client and by test fakes
type Completer interface {
	Complete(ctx context.Context, req Request) (*Completion, error)
}

// Client calls an OpenAI-compatible chat completions endpoint. When the
// configured model has been retired upstream it retries once with the
// fallback model.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient creates a new AI client
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultRequestTimeout
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// IsConfigured returns whether an API key is set
func (c *Client) IsConfigured() bool {
	return c.cfg.APIKey != ""
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error"`
}

// Complete sends a completion request, falling back once to the configured
// fallback model when the primary model is deprecated or missing upstream.
func (c *Client) Complete(ctx context.Context, req Request) (*Completion, error) {
	if !c.IsConfigured() {
		return nil, ErrNotConfigured
	}

	completion, err := c.complete(ctx, c.cfg.Model, req)
	if err != nil && c.cfg.FallbackModel != "" && isModelRetired(err) {
		log.Printf("Model %s unavailable, retrying with %s: %v", c.cfg.Model, c.cfg.FallbackModel, err)
		return c.complete(ctx, c.cfg.FallbackModel, req)
	}
	return completion, err
}

func (c *Client) complete(ctx context.Context, model string, req Request) (*Completion, error) {
	messages := []chatMessage{}
	if req.System != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.System})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.Prompt})

	body, err := json.Marshal(chatRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, respBody)
		}
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if resp.StatusCode != http.StatusOK || parsed.Error != nil {
		message := string(respBody)
		if parsed.Error != nil {
			message = parsed.Error.Message
		}
		return nil, fmt.Errorf("upstream error (status %d): %s", resp.StatusCode, message)
	}
	if len(parsed.Choices) == 0 {
		return nil, errors.New("upstream returned no choices")
	}

	respModel := parsed.Model
	if respModel == "" {
		respModel = model
	}
	return &Completion{
		Text:  parsed.Choices[0].Message.Content,
		Model: respModel,
	}, nil
}

// isModelRetired reports whether an upstream error indicates the requested
// model no longer exists or is deprecated.
func isModelRetired(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "deprecat") ||
		strings.Contains(msg, "model_not_found") ||
		strings.Contains(msg, "does not exist")
}

// Classify maps an AI error to a stable category string for API responses
func Classify(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrNotConfigured) {
		return "api_key_error"
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "api key") || strings.Contains(msg, "api_key") ||
		strings.Contains(msg, "unauthorized") || strings.Contains(msg, "status 401"):
		return "api_key_error"
	case strings.Contains(msg, "quota") || strings.Contains(msg, "insufficient_quota") ||
		strings.Contains(msg, "billing"):
		return "quota_exceeded"
	case strings.Contains(msg, "model"):
		return "model_error"
	case strings.Contains(msg, "rate limit") || strings.Contains(msg, "rate_limit") ||
		strings.Contains(msg, "status 429"):
		return "rate_limit_error"
	default:
		return "unknown_error"
	}
}
