// Package openai wraps github.com/sashabaranov/go-openai for the legacy
// completions endpoint (Azure OpenAI deployments or api.openai.com) and for
// Whisper transcription.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	oai "github.com/sashabaranov/go-openai"

	"indigo/internal/infra"
)

const (
	DefaultDeployment = "text-davinci-002"
	DefaultModel      = "gpt-3.5-turbo-instruct"
)

type CompletionClient struct {
	client *oai.Client
	model  string
}

// NewAzureCompletionClient targets an Azure OpenAI resource such as
// https://my-resource.openai.azure.com/ and routes every request to deployment.
func NewAzureCompletionClient(apiKey, endpoint, deployment string) *CompletionClient {
	if deployment == "" {
		deployment = DefaultDeployment
	}

	cfg := oai.DefaultAzureConfig(apiKey, endpoint)
	cfg.AzureModelMapperFunc = func(string) string { return deployment }
	cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}

	return &CompletionClient{
		client: oai.NewClientWithConfig(cfg),
		model:  deployment,
	}
}

// NewCompletionClient targets the OpenAI API, or any compatible server when
// baseURL is set.
func NewCompletionClient(apiKey, model, baseURL string) *CompletionClient {
	if model == "" {
		model = DefaultModel
	}

	cfg := oai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}

	return &CompletionClient{
		client: oai.NewClientWithConfig(cfg),
		model:  model,
	}
}

func (c *CompletionClient) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	req := oai.CompletionRequest{
		Model:     c.model,
		Prompt:    prompt,
		MaxTokens: maxTokens,
	}

	var resp oai.CompletionResponse
	retryErr := infra.WithRetry(ctx, infra.DefaultRetryConfig(), func() error {
		var err error
		resp, err = c.client.CreateCompletion(ctx, req)
		return classify(err)
	})
	if retryErr != nil {
		return "", fmt.Errorf("creating completion: %w", retryErr)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("empty response from completion endpoint")
	}
	return resp.Choices[0].Text, nil
}

// classify marks client errors that a retry cannot fix as permanent.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *oai.APIError
	if errors.As(err, &apiErr) && !infra.IsRetryableHTTPStatus(apiErr.HTTPStatusCode) {
		return infra.Permanent(err)
	}

	var reqErr *oai.RequestError
	if errors.As(err, &reqErr) && !infra.IsRetryableHTTPStatus(reqErr.HTTPStatusCode) {
		return infra.Permanent(err)
	}

	if errors.Is(err, oai.ErrCompletionUnsupportedModel) || errors.Is(err, oai.ErrCompletionRequestPromptTypeNotSupported) {
		return infra.Permanent(err)
	}
	return err
}
