package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"subrelay/internal/config"
)

const userAgent = "subrelay/0.1"

// Notifier publishes run outcomes.
type Notifier interface {
	NotifyRunCompleted(ctx context.Context, summary RunSummary) error
	NotifyRunFailed(ctx context.Context, input string, err error) error
	TestNotification(ctx context.Context) error
}

// RunSummary describes a run that produced output.
type RunSummary struct {
	Input    string
	Written  []string
	Failed   []string
	Chunks   int
	Duration time.Duration
}

// NewService builds an ntfy notifier, or a no-op one when no topic is set.
func NewService(cfg config.Notifications) Notifier {
	topic := strings.TrimSpace(cfg.NtfyTopic)
	if topic == "" {
		return noopService{}
	}
	timeout := time.Duration(cfg.RequestTimeoutSeconds) * time.Second
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

func (n *ntfyService) NotifyRunCompleted(ctx context.Context, summary RunSummary) error {
	name := filepath.Base(strings.TrimSpace(summary.Input))
	duration := summary.Duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d subtitle files, %d chunks in %s", name, len(summary.Written), summary.Chunks, duration)
	if len(summary.Written) > 0 {
		fmt.Fprintf(&b, "\nWritten: %s", strings.Join(summary.Written, ", "))
	}
	data := payload{
		title: "subrelay - Subtitles Ready",
		tags:  []string{"subrelay", "subtitles", "completed"},
	}
	if len(summary.Failed) > 0 {
		fmt.Fprintf(&b, "\nFailed: %s", strings.Join(summary.Failed, ", "))
		data.title = "subrelay - Subtitles Ready (with errors)"
		data.tags = []string{"subrelay", "subtitles", "partial"}
		data.priority = "high"
	}
	data.message = b.String()
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyRunFailed(ctx context.Context, input string, err error) error {
	detail := "unknown"
	if err != nil {
		detail = strings.TrimSpace(err.Error())
	}
	data := payload{
		title:    "subrelay - Error",
		message:  fmt.Sprintf("Failed: %s\n%s", filepath.Base(strings.TrimSpace(input)), detail),
		tags:     []string{"subrelay", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "subrelay - Test",
		message:  "Notification system test",
		tags:     []string{"subrelay", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
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
	if data.priority != "" {
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

func (noopService) NotifyRunCompleted(context.Context, RunSummary) error { return nil }
func (noopService) NotifyRunFailed(context.Context, string, error) error { return nil }
func (noopService) TestNotification(context.Context) error               { return nil }
