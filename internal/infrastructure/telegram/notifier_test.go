package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"NewsClassifier/internal/config"
)

func TestNotifierPublishDigest(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/botTOKEN/sendMessage" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if r.PostForm.Get("chat_id") != "42" {
			t.Errorf("unexpected chat id: %s", r.PostForm.Get("chat_id"))
		}
		if r.PostForm.Get("text") != "Successful: 2" {
			t.Errorf("unexpected text: %s", r.PostForm.Get("text"))
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	n := NewNotifier(config.TelegramConfig{BotToken: "TOKEN", ChatID: "42"})
	n.apiBase = server.URL
	n.client = server.Client()

	if err := n.PublishDigest(context.Background(), "Successful: 2"); err != nil {
		t.Fatalf("PublishDigest returned error: %v", err)
	}
}

func TestNotifierPublishDigestErrorStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"ok":false,"description":"chat not found"}`, http.StatusBadRequest)
	}))
	defer server.Close()

	n := NewNotifier(config.TelegramConfig{BotToken: "TOKEN", ChatID: "42"})
	n.apiBase = server.URL
	n.client = server.Client()

	if err := n.PublishDigest(context.Background(), "digest"); err == nil {
		t.Fatalf("expected error for 400 response")
	}
}

func TestNotifierMisconfigured(t *testing.T) {
	t.Parallel()

	n := NewNotifier(config.TelegramConfig{})
	if err := n.PublishDigest(context.Background(), "digest"); err == nil {
		t.Fatalf("expected misconfiguration error")
	}
}
