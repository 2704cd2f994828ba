package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/konturio/insights-llm-api/internal/errors"
)

// Config holds the OpenAI client settings.
type Config struct {
	APIKey       string
	BaseURL      string
	Model        string
	Instructions string
	Timeout      time.Duration
}

// Client talks to the OpenAI chat-completions API. Only the commentary
// boundary is modeled here; assistant/thread mechanics stay on the provider
// side.
type Client struct {
	apiKey       string
	baseURL      string
	model        string
	instructions string
	http         *http.Client
}

// NewClient creates an OpenAI commentary client.
func NewClient(config Config) (*Client, error) {
	if config.APIKey == "" {
		return nil, errors.ConfigInvalid("missing OpenAI API key")
	}
	baseURL := strings.TrimSpace(config.BaseURL)
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 40 * time.Second
	}
	return &Client{
		apiKey:       config.APIKey,
		baseURL:      baseURL,
		model:        config.Model,
		instructions: config.Instructions,
		http:         &http.Client{Timeout: timeout},
	}, nil
}

// Model identifies the configured model; it is part of the cache key.
func (c *Client) Model() string {
	return c.model
}

// Commentary returns the model's response for the prompt.
func (c *Client) Commentary(ctx context.Context, prompt string) (string, error) {
	type msg struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	type reqBody struct {
		Model    string `json:"model"`
		Messages []msg  `json:"messages"`
	}

	messages := []msg{}
	if c.instructions != "" {
		messages = append(messages, msg{Role: "system", Content: c.instructions})
	}
	messages = append(messages, msg{Role: "user", Content: prompt})

	raw, err := json.Marshal(reqBody{Model: c.model, Messages: messages})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := strings.TrimRight(c.baseURL, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", errors.Upstream("openai", http.StatusBadRequest, err)
	}
	defer resp.Body.Close()

	respRaw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Upstream("openai", http.StatusBadRequest, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", errors.Upstream("openai", http.StatusBadRequest,
			fmt.Errorf("http %d: %s", resp.StatusCode, string(respRaw)))
	}

	var decoded struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(respRaw, &decoded); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return "", errors.Upstream("openai", http.StatusBadRequest, fmt.Errorf("response missing choices"))
	}
	return decoded.Choices[0].Message.Content, nil
}

// MockClient is a scriptable commentary client for testing.
type MockClient struct {
	Response  string // Set this for testing
	Error     error  // Set this to simulate errors
	ModelName string
}

func (m *MockClient) Commentary(ctx context.Context, prompt string) (string, error) {
	if m.Error != nil {
		return "", m.Error
	}
	if m.Response != "" {
		return m.Response, nil
	}
	return "The selected area closely tracks the global baseline across most indicators.", nil
}

func (m *MockClient) Model() string {
	if m.ModelName != "" {
		return m.ModelName
	}
	return "mock-model"
}
