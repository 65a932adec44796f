package ai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// RetryPolicy controls how generation calls are retried. The policy is a
// standalone value so the backoff schedule can be tested on its own.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     func(attempt int) time.Duration
}

// DefaultRetryPolicy retries up to 3 attempts with linear backoff
// (attempt number times one second).
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		Backoff: func(attempt int) time.Duration {
			return time.Duration(attempt) * time.Second
		},
	}
}

// Do runs fn until it returns non-empty content, exhausting the attempt
// budget. An empty completion counts as a failure. Between attempts it
// sleeps the backoff delay, aborting early if the context is canceled.
func (p RetryPolicy) Do(ctx context.Context, fn func() (string, error)) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		content, err := fn()
		if err == nil && strings.TrimSpace(content) != "" {
			return content, nil
		}
		if err == nil {
			err = fmt.Errorf("empty response")
		}
		lastErr = err
		slog.Warn("AI generation attempt failed", "attempt", attempt, "error", err)

		if attempt == p.MaxAttempts {
			break
		}
		select {
		case <-time.After(p.Backoff(attempt)):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return "", lastErr
}
