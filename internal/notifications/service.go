package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"torrentai/internal/config"
)

const userAgent = "torrentai/0.1.0"

// Service defines the notification surface exposed to the session
// pipeline and the transfer engine.
type Service interface {
	NotifySearchCompleted(ctx context.Context, request, topTitle string, resultCount int) error
	NotifyAwaitingConfirmation(ctx context.Context, request, topTitle string, resultCount int) error
	NotifyNoResults(ctx context.Context, request string) error
	NotifyTransferStarted(ctx context.Context, title string) error
	NotifyError(ctx context.Context, err error, context string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when
// configured. When no ntfy topic is configured, a noop implementation
// is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint:    topic,
		client:      &http.Client{Timeout: timeout},
		completions: cfg.Notifications.Completion,
		decisions:   cfg.Notifications.Decisions,
		errors:      cfg.Notifications.Errors,
	}
}

// NewNoop returns a Service that discards every notification.
func NewNoop() Service { return noopService{} }

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint    string
	client      *http.Client
	completions bool
	decisions   bool
	errors      bool
}

func (n *ntfyService) NotifySearchCompleted(ctx context.Context, request, topTitle string, resultCount int) error {
	if !n.completions {
		return nil
	}
	data := payload{
		title:    "Torrentai - Search Complete",
		message:  fmt.Sprintf("%d results for %q\nTop match: %s", resultCount, strings.TrimSpace(request), strings.TrimSpace(topTitle)),
		tags:     []string{"torrentai", "search", "completed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyAwaitingConfirmation(ctx context.Context, request, topTitle string, resultCount int) error {
	if !n.decisions {
		return nil
	}
	data := payload{
		title:   "Torrentai - Confirmation Needed",
		message: fmt.Sprintf("%d results for %q need review\nBest candidate: %s", resultCount, strings.TrimSpace(request), strings.TrimSpace(topTitle)),
		tags:    []string{"torrentai", "search", "review"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyNoResults(ctx context.Context, request string) error {
	if !n.decisions {
		return nil
	}
	data := payload{
		title:   "Torrentai - No Results",
		message: fmt.Sprintf("No qualifying results for %q", strings.TrimSpace(request)),
		tags:    []string{"torrentai", "search", "empty"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyTransferStarted(ctx context.Context, title string) error {
	if !n.completions {
		return nil
	}
	data := payload{
		title:   "Torrentai - Transfer Started",
		message: fmt.Sprintf("Started downloading: %s", strings.TrimSpace(title)),
		tags:    []string{"torrentai", "transfer", "started"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	if !n.errors {
		return nil
	}
	var builder strings.Builder
	builder.WriteString("Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" with ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "Torrentai - Error",
		message:  builder.String(),
		tags:     []string{"torrentai", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Torrentai - Test",
		message:  "Notification system test",
		tags:     []string{"torrentai", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifySearchCompleted(context.Context, string, string, int) error      { return nil }
func (noopService) NotifyAwaitingConfirmation(context.Context, string, string, int) error { return nil }
func (noopService) NotifyNoResults(context.Context, string) error                         { return nil }
func (noopService) NotifyTransferStarted(context.Context, string) error                   { return nil }
func (noopService) NotifyError(context.Context, error, string) error                      { return nil }
func (noopService) TestNotification(context.Context) error                                { return nil }
