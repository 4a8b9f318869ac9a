package homeassistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"indigo/internal/infra"
)

// Client forwards assistant replies to a Home Assistant notify service, so
// they show up on phones or dashboards paired with the instance.
type Client struct {
	baseURL    string
	token      string
	service    string
	title      string
	httpClient *http.Client
}

// NewClient targets the notify.<service> action of the instance at baseURL,
// e.g. http://homeassistant.local:8123 and "mobile_app_pixel".
func NewClient(baseURL, token, service string) *Client {
	if service == "" {
		service = "notify"
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		token:      token,
		service:    strings.TrimPrefix(service, "notify."),
		title:      "Indigo",
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type notifyRequest struct {
	Message string `json:"message"`
	Title   string `json:"title,omitempty"`
}

func (c *Client) Notify(ctx context.Context, message string) error {
	body, err := json.Marshal(notifyRequest{Message: message, Title: c.title})
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	path := fmt.Sprintf("/api/services/notify/%s", c.service)

	return infra.WithRetry(ctx, infra.DefaultRetryConfig(), func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("creating request: %w", err)
		}

		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("sending request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusUnauthorized {
			return infra.Permanent(fmt.Errorf("unauthorized: check your Home Assistant token"))
		}

		if resp.StatusCode >= 300 {
			return infra.StatusError("home assistant", resp)
		}
		return nil
	})
}
