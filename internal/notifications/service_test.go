package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"sponsorcut/internal/config"
	"sponsorcut/internal/notifications"
)

type captured struct {
	title    string
	tags     string
	priority string
	body     string
}

func newCaptureServer(t *testing.T, status int) (*httptest.Server, *captured) {
	t.Helper()
	got := &captured{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method: %s", r.Method)
		}
		got.title = r.Header.Get("Title")
		got.tags = r.Header.Get("Tags")
		got.priority = r.Header.Get("Priority")
		body, _ := io.ReadAll(r.Body)
		got.body = string(body)
		w.WriteHeader(status)
	}))
	t.Cleanup(server.Close)
	return server, got
}

func serviceFor(url string) notifications.Service {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = url
	cfg.Notifications.RequestTimeout = 5
	return notifications.NewService(&cfg)
}

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	svc := notifications.NewService(&cfg)
	if err := svc.NotifyBatchStarted(context.Background(), 3); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
	if err := notifications.NewService(nil).TestNotification(context.Background()); err != nil {
		t.Fatalf("expected nil config to yield noop, got %v", err)
	}
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	tests := []struct {
		name           string
		send           func(notifications.Service) error
		expectTitle    string
		expectMessage  string
		expectTags     string
		expectPriority string
	}{
		{
			name: "item completed",
			send: func(s notifications.Service) error {
				return s.NotifyItemCompleted(context.Background(), "Build a Cabin", "/lib/Build a Cabin.mp4", 95*time.Second)
			},
			expectTitle:   "sponsorcut - Complete",
			expectMessage: "Ready: Build a Cabin (1m35s of sponsors removed)\nFile: /lib/Build a Cabin.mp4",
			expectTags:    "sponsorcut,item,completed",
		},
		{
			name: "batch started",
			send: func(s notifications.Service) error {
				return s.NotifyBatchStarted(context.Background(), 4)
			},
			expectTitle:   "sponsorcut - Batch Started",
			expectMessage: "Started batch with 4 items",
			expectTags:    "sponsorcut,batch,started",
		},
		{
			name: "batch completed clean",
			send: func(s notifications.Service) error {
				return s.NotifyBatchCompleted(context.Background(), 3, 0, 90*time.Second)
			},
			expectTitle:   "sponsorcut - Batch Complete",
			expectMessage: "Batch complete: 3 items processed in 1m30s",
			expectTags:    "sponsorcut,batch,completed",
		},
		{
			name: "batch completed with failures",
			send: func(s notifications.Service) error {
				return s.NotifyBatchCompleted(context.Background(), 2, 1, time.Minute)
			},
			expectTitle:    "sponsorcut - Batch Complete (with errors)",
			expectMessage:  "Batch complete: 2 succeeded, 1 failed in 1m0s",
			expectTags:     "sponsorcut,batch,completed",
			expectPriority: "high",
		},
		{
			name: "error",
			send: func(s notifications.Service) error {
				return s.NotifyError(context.Background(), errors.New("encode failure"), "dQw4w9WgXcQ")
			},
			expectTitle:    "sponsorcut - Error",
			expectMessage:  "Error with dQw4w9WgXcQ: encode failure",
			expectTags:     "sponsorcut,error,alert",
			expectPriority: "high",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server, got := newCaptureServer(t, http.StatusOK)
			if err := tc.send(serviceFor(server.URL)); err != nil {
				t.Fatalf("notification returned error: %v", err)
			}
			if got.title != tc.expectTitle {
				t.Fatalf("expected title %q, got %q", tc.expectTitle, got.title)
			}
			if got.body != tc.expectMessage {
				t.Fatalf("expected message %q, got %q", tc.expectMessage, got.body)
			}
			if got.tags != tc.expectTags {
				t.Fatalf("expected tags %q, got %q", tc.expectTags, got.tags)
			}
			if got.priority != tc.expectPriority {
				t.Fatalf("expected priority %q, got %q", tc.expectPriority, got.priority)
			}
		})
	}
}

func TestNtfyServiceReportsHTTPErrors(t *testing.T) {
	server, _ := newCaptureServer(t, http.StatusForbidden)
	err := serviceFor(server.URL).TestNotification(context.Background())
	if err == nil || !strings.Contains(err.Error(), "403") {
		t.Fatalf("expected 403 error, got %v", err)
	}
}
