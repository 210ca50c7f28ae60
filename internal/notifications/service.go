package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"sponsorcut/internal/config"
)

const userAgent = "sponsorcut/0.1.0"

// Service defines the notification surface used by the fetch and batch runners.
type Service interface {
	NotifyItemCompleted(ctx context.Context, title, outputPath string, removed time.Duration) error
	NotifyBatchStarted(ctx context.Context, count int) error
	NotifyBatchCompleted(ctx context.Context, succeeded, failed int, duration time.Duration) error
	NotifyError(ctx context.Context, err error, context string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyItemCompleted(ctx context.Context, title, outputPath string, removed time.Duration) error {
	title = strings.TrimSpace(title)
	if title == "" {
		title = filepath.Base(outputPath)
	}
	message := fmt.Sprintf("Ready: %s", title)
	if removed > 0 {
		message = fmt.Sprintf("%s (%s of sponsors removed)", message, removed.Round(time.Second))
	}
	if outputPath = strings.TrimSpace(outputPath); outputPath != "" {
		message = fmt.Sprintf("%s\nFile: %s", message, outputPath)
	}
	return n.send(ctx, payload{
		title:   "sponsorcut - Complete",
		message: message,
		tags:    []string{"sponsorcut", "item", "completed"},
	})
}

func (n *ntfyService) NotifyBatchStarted(ctx context.Context, count int) error {
	return n.send(ctx, payload{
		title:   "sponsorcut - Batch Started",
		message: fmt.Sprintf("Started batch with %d items", count),
		tags:    []string{"sponsorcut", "batch", "started"},
	})
}

func (n *ntfyService) NotifyBatchCompleted(ctx context.Context, succeeded, failed int, duration time.Duration) error {
	duration = duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}

	data := payload{
		title:   "sponsorcut - Batch Complete",
		message: fmt.Sprintf("Batch complete: %d items processed in %s", succeeded, duration),
		tags:    []string{"sponsorcut", "batch", "completed"},
	}
	if failed > 0 {
		data.title = "sponsorcut - Batch Complete (with errors)"
		data.message = fmt.Sprintf("Batch complete: %d succeeded, %d failed in %s", succeeded, failed, duration)
		data.priority = "high"
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
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

	return n.send(ctx, payload{
		title:    "sponsorcut - Error",
		message:  builder.String(),
		tags:     []string{"sponsorcut", "error", "alert"},
		priority: "high",
	})
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	return n.send(ctx, payload{
		title:    "sponsorcut - Test",
		message:  "Notification system test",
		tags:     []string{"sponsorcut", "test"},
		priority: "low",
	})
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

func (noopService) NotifyItemCompleted(context.Context, string, string, time.Duration) error { return nil }
func (noopService) NotifyBatchStarted(context.Context, int) error                            { return nil }
func (noopService) NotifyBatchCompleted(context.Context, int, int, time.Duration) error      { return nil }
func (noopService) NotifyError(context.Context, error, string) error                         { return nil }
func (noopService) TestNotification(context.Context) error                                   { return nil }
