// Package azure talks to the Azure AI Speech REST endpoints: short-audio
// recognition and SSML text-to-speech.
package azure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"indigo/internal/domain"
	"indigo/internal/infra"
)

const DefaultLanguage = "en-US"

// Values of RecognitionStatus in the short-audio response.
const (
	statusSuccess               = "Success"
	statusNoMatch               = "NoMatch"
	statusInitialSilenceTimeout = "InitialSilenceTimeout"
	statusBabbleTimeout         = "BabbleTimeout"
	statusError                 = "Error"
)

type SpeechClient struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
	language   string
	sampleRate int
}

func NewSpeechClient(apiKey, region, language string) *SpeechClient {
	return NewSpeechClientWithURL(apiKey, language, fmt.Sprintf("https://%s.stt.speech.microsoft.com", region))
}

func NewSpeechClientWithURL(apiKey, language, baseURL string) *SpeechClient {
	if language == "" {
		language = DefaultLanguage
	}
	return &SpeechClient{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    baseURL,
		language:   language,
		sampleRate: 16000,
	}
}

// WithSampleRate sets the rate announced in the Content-Type of every upload.
// It has to match the captures. Non-positive values are ignored.
func (c *SpeechClient) WithSampleRate(rate int) *SpeechClient {
	if rate > 0 {
		c.sampleRate = rate
	}
	return c
}

type recognitionResponse struct {
	RecognitionStatus string `json:"RecognitionStatus"`
	DisplayText       string `json:"DisplayText"`
	Offset            int64  `json:"Offset"`
	Duration          int64  `json:"Duration"`
}

// Transcribe sends one WAV capture for recognition. Transport and service
// failures are reported as a canceled utterance; only context cancellation is
// returned as an error.
func (c *SpeechClient) Transcribe(ctx context.Context, audio []byte) (domain.Utterance, error) {
	query := url.Values{}
	query.Set("language", c.language)
	query.Set("format", "simple")
	endpoint := c.baseURL + "/speech/recognition/conversation/cognitiveservices/v1?" + query.Encode()

	var result recognitionResponse
	retryErr := infra.WithRetry(ctx, infra.DefaultRetryConfig(), func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(audio))
		if err != nil {
			return infra.Permanent(fmt.Errorf("creating request: %w", err))
		}

		req.Header.Set("Ocp-Apim-Subscription-Key", c.apiKey)
		req.Header.Set("Content-Type", fmt.Sprintf("audio/wav; codecs=audio/pcm; samplerate=%d", c.sampleRate))
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("sending request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return infra.StatusError("speech recognition", resp)
		}

		if err = json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return infra.Permanent(fmt.Errorf("decoding response: %w", err))
		}

		return nil
	})

	if retryErr != nil {
		if ctx.Err() != nil {
			return domain.Utterance{}, ctx.Err()
		}
		return domain.Canceled(domain.CancellationError, retryErr.Error()), nil
	}

	switch result.RecognitionStatus {
	case statusSuccess:
		if result.DisplayText == "" {
			return domain.NoMatch(""), nil
		}
		return domain.Recognized(result.DisplayText), nil
	case statusNoMatch, statusInitialSilenceTimeout, statusBabbleTimeout:
		return domain.NoMatch(result.DisplayText), nil
	case statusError:
		return domain.Canceled(domain.CancellationError, "recognition service reported an error"), nil
	default:
		return domain.Canceled(domain.CancellationError, fmt.Sprintf("unexpected recognition status %q", result.RecognitionStatus)), nil
	}
}
