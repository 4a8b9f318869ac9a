package azure

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"indigo/internal/infra"
)

const (
	DefaultVoice        = "en-GB-SoniaNeural"
	DefaultOutputFormat = "riff-16khz-16bit-mono-pcm"

	maxAudioBytes = 32 << 20
)

type SynthesisClient struct {
	apiKey       string
	httpClient   *http.Client
	baseURL      string
	voice        string
	outputFormat string
}

func NewSynthesisClient(apiKey, region, voice string) *SynthesisClient {
	return NewSynthesisClientWithURL(apiKey, voice, fmt.Sprintf("https://%s.tts.speech.microsoft.com", region))
}

func NewSynthesisClientWithURL(apiKey, voice, baseURL string) *SynthesisClient {
	if voice == "" {
		voice = DefaultVoice
	}
	return &SynthesisClient{
		apiKey:       apiKey,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		baseURL:      baseURL,
		voice:        voice,
		outputFormat: DefaultOutputFormat,
	}
}

func (c *SynthesisClient) Voice() string {
	return c.voice
}

// Synthesize returns the spoken text as a 16 kHz mono PCM WAV payload.
func (c *SynthesisClient) Synthesize(ctx context.Context, text string) ([]byte, error) {
	body, err := c.ssml(text)
	if err != nil {
		return nil, fmt.Errorf("building ssml: %w", err)
	}

	var audio []byte
	retryErr := infra.WithRetry(ctx, infra.DefaultRetryConfig(), func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/cognitiveservices/v1", bytes.NewReader(body))
		if err != nil {
			return infra.Permanent(fmt.Errorf("creating request: %w", err))
		}

		req.Header.Set("Ocp-Apim-Subscription-Key", c.apiKey)
		req.Header.Set("Content-Type", "application/ssml+xml")
		req.Header.Set("X-Microsoft-OutputFormat", c.outputFormat)
		req.Header.Set("User-Agent", "indigo")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("sending request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return infra.StatusError("speech synthesis", resp)
		}

		audio, err = io.ReadAll(io.LimitReader(resp.Body, maxAudioBytes))
		if err != nil {
			return fmt.Errorf("reading audio: %w", err)
		}
		return nil
	})

	if retryErr != nil {
		return nil, retryErr
	}

	if len(audio) == 0 {
		return nil, errors.New("empty audio from speech synthesis")
	}
	return audio, nil
}

func (c *SynthesisClient) ssml(text string) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "<speak version='1.0' xml:lang='%s'><voice name='%s'>", voiceLocale(c.voice), c.voice)
	if err := xml.EscapeText(&buf, []byte(text)); err != nil {
		return nil, err
	}
	buf.WriteString("</voice></speak>")
	return buf.Bytes(), nil
}

// voiceLocale extracts "en-GB" from "en-GB-SoniaNeural".
func voiceLocale(voice string) string {
	parts := strings.SplitN(voice, "-", 3)
	if len(parts) < 3 {
		return DefaultLanguage
	}
	return parts[0] + "-" + parts[1]
}
