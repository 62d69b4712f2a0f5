package openai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"redub/internal/services/openai"
)

func completionBody(content string) string {
	payload := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	}
	encoded, _ := json.Marshal(payload)
	return string(encoded)
}

func TestCompleteReturnsContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer key" {
			t.Errorf("missing api key header")
		}
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Messages) != 1 || req.Messages[0].Role != "user" {
			t.Errorf("unexpected messages %+v", req.Messages)
		}
		w.Write([]byte(completionBody("[Привет][мир]")))
	}))
	defer server.Close()

	client := openai.NewClient(openai.Config{APIKey: "key", BaseURL: server.URL})
	content, err := client.Complete(context.Background(), "[Hello][world]")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if content != "[Привет][мир]" {
		t.Fatalf("unexpected content %q", content)
	}
}

func TestCompleteRetriesServerErrors(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(completionBody("ok")))
	}))
	defer server.Close()

	client := openai.NewClient(
		openai.Config{APIKey: "key", BaseURL: server.URL},
		openai.WithSleeper(func(time.Duration) {}),
	)
	content, err := client.Complete(context.Background(), "translate this")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if content != "ok" {
		t.Fatalf("unexpected content %q", content)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 requests, got %d", calls.Load())
	}
}

func TestCompleteFailsFastOnBadRequest(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := openai.NewClient(
		openai.Config{APIKey: "key", BaseURL: server.URL},
		openai.WithSleeper(func(time.Duration) {}),
	)
	if _, err := client.Complete(context.Background(), "translate this"); err == nil {
		t.Fatal("expected error for 400 response")
	}
	if calls.Load() != 1 {
		t.Fatalf("expected single request, got %d", calls.Load())
	}
}

func TestCompleteRequiresAPIKey(t *testing.T) {
	client := openai.NewClient(openai.Config{})
	if _, err := client.Complete(context.Background(), "hello"); err == nil {
		t.Fatal("expected error without api key")
	}
}
