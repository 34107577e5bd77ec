package notifications

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"dinger/internal/config"
)

func TestNewServiceWithoutTopicIsNoop(t *testing.T) {
	cfg := config.Default()
	service := NewService(&cfg)
	if _, ok := service.(noopService); !ok {
		t.Fatalf("expected noop service, got %T", service)
	}
	if err := service.TestNotification(context.Background()); err != nil {
		t.Errorf("noop notification errored: %v", err)
	}
}

func TestNtfySendSetsHeadersAndBody(t *testing.T) {
	var gotTitle, gotTags, gotPriority, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTitle = r.Header.Get("Title")
		gotTags = r.Header.Get("Tags")
		gotPriority = r.Header.Get("Priority")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	service := NewService(&cfg)

	err := service.NotifyFetchExhausted(context.Background(), 745123, errors.New("all attempts failed"))
	if err != nil {
		t.Fatalf("NotifyFetchExhausted: %v", err)
	}

	if gotTitle != "Dinger - Fetch Failed" {
		t.Errorf("title = %q", gotTitle)
	}
	if !strings.Contains(gotTags, "fetch") {
		t.Errorf("tags = %q", gotTags)
	}
	if gotPriority != "high" {
		t.Errorf("priority = %q", gotPriority)
	}
	if !strings.Contains(gotBody, "745123") || !strings.Contains(gotBody, "all attempts failed") {
		t.Errorf("body = %q", gotBody)
	}
}

func TestNtfySendSurfacesServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "topic unavailable", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	service := NewService(&cfg)

	if err := service.TestNotification(context.Background()); err == nil {
		t.Error("expected error from failing ntfy endpoint")
	}
}
