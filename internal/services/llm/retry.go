package llm

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// retryPolicy bounds the completion retry loop. Empty completions and
// transient transport or server failures retry with capped exponential
// backoff; everything else fails immediately.
type retryPolicy struct {
	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration
	sleeper     func(time.Duration)
}

func (p retryPolicy) attempts() int {
	if p.maxAttempts < 1 {
		return 1
	}
	return p.maxAttempts
}

// delayFor classifies err and returns the wait before the next
// attempt, or retryable=false when the error is terminal.
func (p retryPolicy) delayFor(err error, attempt int) (delay time.Duration, retryable bool) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return 0, false
	}

	var emptyErr *emptyContentError
	if errors.As(err, &emptyErr) {
		return p.backoff(attempt), true
	}

	var httpErr *statusError
	if errors.As(err, &httpErr) {
		retriableStatus := httpErr.Code == http.StatusRequestTimeout ||
			httpErr.Code == http.StatusTooManyRequests ||
			httpErr.Code >= http.StatusInternalServerError
		if !retriableStatus {
			return 0, false
		}
		if httpErr.RetryAfter > 0 {
			return p.cap(httpErr.RetryAfter), true
		}
		return p.backoff(attempt), true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return p.backoff(attempt), true
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return p.backoff(attempt), true
	}
	return 0, false
}

// backoff doubles the base delay per completed attempt, capped.
func (p retryPolicy) backoff(attempt int) time.Duration {
	if p.baseDelay <= 0 {
		return 0
	}
	delay := p.baseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if p.maxDelay > 0 && delay >= p.maxDelay {
			return p.maxDelay
		}
	}
	return p.cap(delay)
}

func (p retryPolicy) cap(delay time.Duration) time.Duration {
	if delay < 0 {
		return 0
	}
	if p.maxDelay > 0 && delay > p.maxDelay {
		return p.maxDelay
	}
	return delay
}

func (p retryPolicy) sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return ctx.Err()
	}
	if p.sleeper != nil {
		p.sleeper(delay)
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// completeWithRetry drives the attempt loop for one prompt pair. A
// completion that arrives without usable content counts as a failed
// attempt since a second ask usually produces the payload.
func (c *Client) completeWithRetry(ctx context.Context, op, systemPrompt, userPrompt string) (string, error) {
	req := chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		ResponseFormat: map[string]string{"type": "json_object"},
	}

	attempts := c.retry.attempts()
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		response, body, err := c.send(ctx, req)
		if err == nil {
			content, finishReason := response.content()
			if content != "" {
				return content, nil
			}
			if len(response.Choices) == 0 {
				err = errors.New(op + ": empty choices")
			} else {
				err = &emptyContentError{
					Op:           op,
					FinishReason: finishReason,
					Refusal:      response.refusal(),
					Snippet:      snippet(string(body)),
				}
			}
		}

		if attempt == attempts || ctx.Err() != nil {
			return "", err
		}
		delay, retryable := c.retry.delayFor(err, attempt)
		if !retryable {
			return "", err
		}
		if sleepErr := c.retry.sleep(ctx, delay); sleepErr != nil {
			return "", sleepErr
		}
		lastErr = err
	}
	return "", lastErr
}

// parseRetryAfter accepts both the delta-seconds and HTTP-date forms.
// Unparseable or negative values report zero.
func parseRetryAfter(header string) time.Duration {
	header = strings.TrimSpace(header)
	if header == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(header); err == nil {
		if seconds <= 0 {
			return 0
		}
		return time.Duration(seconds) * time.Second
	}
	when, err := http.ParseTime(header)
	if err != nil {
		return 0
	}
	if delay := time.Until(when); delay > 0 {
		return delay
	}
	return 0
}
