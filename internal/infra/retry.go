package infra

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// RetryConfig holds configuration for retry logic
type RetryConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// DefaultRetryConfig returns the retry configuration used by the cloud clients
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  3,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Multiplier:   2.0,
	}
}

type permanentError struct {
	err error
}

func (p *permanentError) Error() string { return p.err.Error() }
func (p *permanentError) Unwrap() error { return p.err }

// Permanent marks err as not worth retrying. WithRetry returns it unwrapped.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// WithRetry executes a function with exponential backoff retry logic
func WithRetry(ctx context.Context, cfg RetryConfig, fn func() error) error {
	var lastErr error
	delay := cfg.InitialDelay

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}

		lastErr = err

		var perm *permanentError
		if errors.As(err, &perm) {
			return perm.err
		}

		// Don't retry on context cancellation
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}

		if attempt == cfg.MaxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		delay = time.Duration(float64(delay) * cfg.Multiplier)
		if delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}

	return lastErr
}

// IsRetryableHTTPStatus returns true if the HTTP status code is retryable
func IsRetryableHTTPStatus(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests ||
		statusCode == http.StatusServiceUnavailable ||
		statusCode == http.StatusGatewayTimeout ||
		statusCode >= 500
}

// StatusError builds the error for a non-200 response, marking it permanent
// unless the status is retryable. The body is read up to 4 KiB.
func StatusError(service string, resp *http.Response) error {
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if IsRetryableHTTPStatus(resp.StatusCode) {
		return fmt.Errorf("%s API error %d: %s (retryable)", service, resp.StatusCode, string(respBody))
	}
	return Permanent(fmt.Errorf("%s API error %d: %s", service, resp.StatusCode, string(respBody)))
}
