package answer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	// DefaultTemperature keeps answers close to the retrieved context.
	DefaultTemperature = 0.3

	// DefaultMaxTokens caps the length of each tier answer.
	DefaultMaxTokens = 512

	systemPrompt = "Answer the question using only the provided context. " +
		"If the context does not contain the answer, say you don't know."
)

// Chat answers with an OpenAI-compatible chat completions endpoint.
type Chat struct {
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
	httpClient  *http.Client
}

// ChatOption is a functional option for configuring Chat.
type ChatOption func(*Chat)

// WithBaseURL sets a custom base URL, e.g. a local Ollama /v1 endpoint.
func WithBaseURL(url string) ChatOption {
	return func(c *Chat) { c.baseURL = strings.TrimSuffix(url, "/") }
}

// WithModel sets the chat model.
func WithModel(model string) ChatOption {
	return func(c *Chat) { c.model = model }
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) ChatOption {
	return func(c *Chat) { c.temperature = t }
}

// WithMaxTokens caps the generated answer length.
func WithMaxTokens(n int) ChatOption {
	return func(c *Chat) { c.maxTokens = n }
}

// WithTimeout sets the per-request timeout; zero keeps the default.
func WithTimeout(d time.Duration) ChatOption {
	return func(c *Chat) {
		if d > 0 {
			c.httpClient = &http.Client{Timeout: d}
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) ChatOption {
	return func(c *Chat) { c.httpClient = client }
}

// NewChat creates a chat answerer reading its API key from apiKeyEnv. An
// empty key is allowed for local OpenAI-compatible servers.
func NewChat(apiKeyEnv string, opts ...ChatOption) *Chat {
	c := &Chat{
		baseURL:     "https://api.openai.com/v1",
		apiKey:      os.Getenv(apiKeyEnv),
		model:       "gpt-4o-mini",
		temperature: DefaultTemperature,
		maxTokens:   DefaultMaxTokens,
		httpClient:  &http.Client{Timeout: 2 * time.Minute},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Answer implements domain.Answerer. The caller blocks for the full
// completion; there is no retry.
func (c *Chat) Answer(ctx context.Context, question string, passages []string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildPrompt(question, passages)},
		},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("chat completions returned %s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}
	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", errors.New("chat completions returned no choices")
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}

func buildPrompt(question string, passages []string) string {
	var b strings.Builder
	b.WriteString("Context:\n")
	for i, p := range passages {
		fmt.Fprintf(&b, "[%d] %s\n\n", i+1, strings.TrimSpace(p))
	}
	b.WriteString("Question: ")
	b.WriteString(question)
	return b.String()
}
