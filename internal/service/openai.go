package service

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

	"home-valuation/internal/config"
	apperrors "home-valuation/internal/errors"
	"home-valuation/internal/logger"
)

// OpenAIClient talks to an OpenAI-compatible chat completions endpoint
type OpenAIClient struct {
	config     *config.OpenAIConfig
	httpClient *http.Client
}

// NewOpenAIClient creates a new OpenAI-compatible client
func NewOpenAIClient(cfg *config.OpenAIConfig) *OpenAIClient {
	return &OpenAIClient{
		config: cfg,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
	}
}

// IsEnabled returns whether the client is configured and ready
func (c *OpenAIClient) IsEnabled() bool {
	return c.CheckConfig() == nil
}

// CheckConfig validates the credential and endpoint
func (c *OpenAIClient) CheckConfig() error {
	if strings.TrimSpace(c.config.APIKey) == "" {
		return apperrors.ConfigInvalid("oracle API key is not configured (OPENAI_API_KEY)")
	}
	if strings.TrimSpace(c.config.APIBase) == "" {
		return apperrors.ConfigInvalid("oracle endpoint is not configured (OPENAI_API_URL)")
	}
	if strings.TrimSpace(c.config.ChatModel) == "" {
		return apperrors.ConfigInvalid("oracle model is not configured (OPENAI_MODEL)")
	}
	return nil
}

// ChatCompletionRequest represents a chat completion request
type ChatCompletionRequest struct {
	Model          string          `json:"model"`
	Messages       []ChatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
}

// ChatMessage represents a single message in the conversation
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ResponseFormat specifies the format of the response
type ResponseFormat struct {
	Type string `json:"type"` // "json_object" or "text"
}

// chatCompletionRequest maps the provider-neutral request onto the wire format
func chatCompletionRequest(req OracleRequest) ChatCompletionRequest {
	out := ChatCompletionRequest{
		Model: req.Model,
		Messages: []ChatMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.User},
		},
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	if req.JSONMode {
		out.ResponseFormat = &ResponseFormat{Type: "json_object"}
	}
	return out
}

// Complete performs a chat completion request. A 429 is reported as a
// retryable rate-limit error; every other failure is a protocol error.
func (c *OpenAIClient) Complete(ctx context.Context, req OracleRequest) ([]byte, error) {
	if err := c.CheckConfig(); err != nil {
		return nil, err
	}

	reqBody, err := json.Marshal(chatCompletionRequest(req))
	if err != nil {
		return nil, apperrors.OracleProtocol(0, "", fmt.Errorf("failed to marshal request: %w", err))
	}

	url := fmt.Sprintf("%s/chat/completions", strings.TrimRight(c.config.APIBase, "/"))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, apperrors.OracleProtocol(0, "", fmt.Errorf("failed to create request: %w", err))
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.config.APIKey))
	if c.config.SiteURL != "" {
		httpReq.Header.Set("HTTP-Referer", c.config.SiteURL)
	}
	if c.config.SiteName != "" {
		httpReq.Header.Set("X-Title", c.config.SiteName)
	}

	log := logger.FromContext(ctx)
	start := time.Now()

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		// Surface the caller's deadline as-is so it is not mistaken for a bad reply
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, apperrors.OracleProtocol(0, "", fmt.Errorf("failed to send request: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.OracleProtocol(resp.StatusCode, "", fmt.Errorf("failed to read response: %w", err))
	}

	log.Debug("oracle responded",
		slog.Int("status", resp.StatusCode),
		slog.Duration("elapsed", time.Since(start)),
		slog.Int("bytes", len(body)),
	)

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, apperrors.OracleRateLimited(resp.StatusCode, string(body))
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, apperrors.OracleProtocol(resp.StatusCode, string(body), nil)
	}

	return body, nil
}
