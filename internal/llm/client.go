package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"tutorgo-backend/internal/config"
)

// ErrInvalidCredentials indicates the provider rejected our API key
var ErrInvalidCredentials = errors.New("invalid provider credentials")

// systemPrompt is the instruction sent ahead of every student question
const systemPrompt = "You are a patient, encouraging tutor. Explain the answer step by step " +
	"in plain language, and finish with a short summary the student can remember."

// Client talks to an OpenAI-compatible chat-completions endpoint
type Client struct {
	config     *config.LLMConfig
	httpClient *http.Client
}

// NewClient creates a new text-generation client
func NewClient(cfg *config.LLMConfig) *Client {
	return &Client{
		config:     cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Generate produces a tutoring response for the given question. Without a
// configured API key it returns a mock response instead of failing, so the
// rest of the system stays usable in development and tests.
func (c *Client) Generate(ctx context.Context, question string) (string, error) {
	if c.config.APIKey == "" {
		return mockResponse(question), nil
	}

	payload, err := json.Marshal(chatRequest{
		Model: c.config.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: question},
		},
	})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call provider: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", ErrInvalidCredentials
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("provider returned status %d: %s", resp.StatusCode, body)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "", errors.New("provider returned empty completion")
	}
	return parsed.Choices[0].Message.Content, nil
}

func mockResponse(question string) string {
	return fmt.Sprintf("[mock response] No language model provider is configured, "+
		"so this is a placeholder answer. Your question was: %q", question)
}
