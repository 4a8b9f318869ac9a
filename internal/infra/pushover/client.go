package pushover

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// maxMessageLen is the Pushover limit on the message field, in characters.
const maxMessageLen = 1024

type Client struct {
	token      string
	userKey    string
	title      string
	endpoint   string
	httpClient *http.Client
}

func NewClient(token, userKey string) *Client {
	return NewClientWithURL(token, userKey, "https://api.pushover.net/1/messages.json")
}

func NewClientWithURL(token, userKey, endpoint string) *Client {
	return &Client{
		token:      token,
		userKey:    userKey,
		title:      "Indigo",
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) Notify(ctx context.Context, message string) error {
	if c.token == "" || c.userKey == "" {
		return nil
	}

	message = truncate(message, maxMessageLen)

	data := url.Values{}
	data.Set("token", c.token)
	data.Set("user", c.userKey)
	data.Set("message", message)
	data.Set("title", c.title)

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.endpoint,
		strings.NewReader(data.Encode()),
	)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("pushover error: %s", resp.Status)
	}

	return nil
}

// truncate keeps at most n runes of s.
func truncate(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
