package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"indigo/internal/infra"
)

const DefaultModel = "claude-sonnet-4-20250514"

type ClaudeClient struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	model      string
	system     string
}

func NewClaudeClient(apiKey, model string) *ClaudeClient {
	return NewClaudeClientWithURL(apiKey, model, "https://api.anthropic.com/v1")
}

func NewClaudeClientWithURL(apiKey, model, baseURL string) *ClaudeClient {
	if model == "" {
		model = DefaultModel
	}
	return &ClaudeClient{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		model:      model,
		system:     "You are Indigo, a voice assistant. Your answers are read aloud, so keep them short and plain: no markdown, no lists.",
	}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type request struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system,omitempty"`
	Messages  []message `json:"messages"`
}

type response struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

func (c *ClaudeClient) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	reqBody := request{
		Model:     c.model,
		MaxTokens: maxTokens,
		System:    c.system,
		Messages: []message{
			{Role: "user", Content: prompt},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	var result response
	retryErr := infra.WithRetry(ctx, infra.DefaultRetryConfig(), func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/messages", bytes.NewReader(bodyBytes))
		if err != nil {
			return infra.Permanent(fmt.Errorf("creating request: %w", err))
		}

		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-api-key", c.apiKey)
		req.Header.Set("anthropic-version", "2023-06-01")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("sending request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return infra.StatusError("claude", resp)
		}

		if err = json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}

		return nil
	})

	if retryErr != nil {
		return "", retryErr
	}

	for _, block := range result.Content {
		if block.Type == "" || block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("empty response from claude")
}
