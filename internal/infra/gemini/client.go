package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"indigo/internal/infra"
)

const DefaultModel = "gemini-2.0-flash"

type Client struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	model      string
}

func NewClient(apiKey, model string) *Client {
	return NewClientWithURL(apiKey, model, "https://generativelanguage.googleapis.com/v1beta")
}

func NewClientWithURL(apiKey, model, baseURL string) *Client {
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		model:      model,
	}
}

type content struct {
	Parts []part `json:"parts"`
	Role  string `json:"role,omitempty"`
}

type part struct {
	Text string `json:"text"`
}

type request struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type generationConfig struct {
	MaxOutputTokens int `json:"maxOutputTokens"`
	CandidateCount  int `json:"candidateCount"`
}

type response struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error,omitempty"`
}

func (c *Client) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	reqBody := request{
		Contents: []content{
			{
				Role:  "user",
				Parts: []part{{Text: prompt}},
			},
		},
		GenerationConfig: generationConfig{
			MaxOutputTokens: maxTokens,
			CandidateCount:  1,
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	var result response
	retryErr := infra.WithRetry(ctx, infra.DefaultRetryConfig(), func() error {
		endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, url.QueryEscape(c.apiKey))
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyBytes))
		if err != nil {
			return infra.Permanent(fmt.Errorf("creating request: %w", err))
		}

		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("sending request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return infra.StatusError("gemini", resp)
		}

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("reading response: %w", err)
		}

		if err = json.Unmarshal(respBody, &result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}

		return nil
	})

	if retryErr != nil {
		return "", retryErr
	}

	if result.Error != nil {
		return "", fmt.Errorf("gemini error: %s", result.Error.Message)
	}

	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from gemini")
	}

	return result.Candidates[0].Content.Parts[0].Text, nil
}
