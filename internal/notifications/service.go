// Package notifications pushes daemon lifecycle and matching alerts to an
// ntfy topic. Without a configured topic every call is a silent noop.
package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"dinger/internal/config"
)

const userAgent = "Dinger-Go/0.1.0"

// Service defines the notification surface exposed to the daemon and CLI.
type Service interface {
	NotifyDaemonStarted(ctx context.Context, bind string) error
	NotifyDaemonStopped(ctx context.Context) error
	NotifyFetchExhausted(ctx context.Context, gamePK int64, cause error) error
	NotifyGameReset(ctx context.Context, gamePK int64) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
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

func (n *ntfyService) NotifyDaemonStarted(ctx context.Context, bind string) error {
	data := payload{
		title:   "Dinger - Started",
		message: fmt.Sprintf("Daemon listening on %s", strings.TrimSpace(bind)),
		tags:    []string{"dinger", "daemon", "started"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyDaemonStopped(ctx context.Context) error {
	data := payload{
		title:   "Dinger - Stopped",
		message: "Daemon shut down",
		tags:    []string{"dinger", "daemon", "stopped"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyFetchExhausted(ctx context.Context, gamePK int64, cause error) error {
	var builder strings.Builder
	fmt.Fprintf(&builder, "Could not fetch highlights for game %d", gamePK)
	if cause != nil {
		builder.WriteString(": ")
		builder.WriteString(strings.TrimSpace(cause.Error()))
	}
	data := payload{
		title:    "Dinger - Fetch Failed",
		message:  builder.String(),
		tags:     []string{"dinger", "fetch", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyGameReset(ctx context.Context, gamePK int64) error {
	data := payload{
		title:   "Dinger - Game Reset",
		message: fmt.Sprintf("Cleared cached matches for game %d", gamePK),
		tags:    []string{"dinger", "game", "reset"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Dinger - Test",
		message:  "Notification system test",
		tags:     []string{"dinger", "test"},
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

func (noopService) NotifyDaemonStarted(context.Context, string) error        { return nil }
func (noopService) NotifyDaemonStopped(context.Context) error                 { return nil }
func (noopService) NotifyFetchExhausted(context.Context, int64, error) error  { return nil }
func (noopService) NotifyGameReset(context.Context, int64) error              { return nil }
func (noopService) TestNotification(context.Context) error                    { return nil }
