package openai

import (
	"bytes"
	"context"
	"net/http"
	"strings"
	"time"

	oai "github.com/sashabaranov/go-openai"

	"indigo/internal/domain"
	"indigo/internal/infra"
)

type WhisperClient struct {
	client   *oai.Client
	language string
}

func NewWhisperClient(apiKey, language string) *WhisperClient {
	return NewWhisperClientWithURL(apiKey, language, "")
}

func NewWhisperClientWithURL(apiKey, language, baseURL string) *WhisperClient {
	cfg := oai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}

	return &WhisperClient{
		client:   oai.NewClientWithConfig(cfg),
		language: language,
	}
}

// Transcribe uploads one WAV capture. Whisper has no notion of "no match", so
// an empty transcript stands in for it.
func (c *WhisperClient) Transcribe(ctx context.Context, audio []byte) (domain.Utterance, error) {
	var text string
	retryErr := infra.WithRetry(ctx, infra.DefaultRetryConfig(), func() error {
		resp, err := c.client.CreateTranscription(ctx, oai.AudioRequest{
			Model:    oai.Whisper1,
			FilePath: "audio.wav",
			Reader:   bytes.NewReader(audio),
			Language: c.language,
		})
		if err != nil {
			return classify(err)
		}
		text = resp.Text
		return nil
	})

	if retryErr != nil {
		if ctx.Err() != nil {
			return domain.Utterance{}, ctx.Err()
		}
		return domain.Canceled(domain.CancellationError, retryErr.Error()), nil
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return domain.NoMatch(""), nil
	}
	return domain.Recognized(text), nil
}
