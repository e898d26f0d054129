package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestOpenAIBackend_Complete(t *testing.T) {
	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer secret" {
			t.Errorf("unexpected auth header %q", auth)
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"1","object":"chat.completion","created":1,"model":"m",
			"choices":[{"index":0,"message":{"role":"assistant","content":"你好"},"finish_reason":"stop"}]}`))
	}))
	defer server.Close()

	b := NewOpenAIBackend(BackendConfig{BaseURL: server.URL, APIKey: "secret", Model: "m", Timeout: 5 * time.Second})
	out, err := b.Complete(context.Background(), Request{System: "sys", User: "Hello", Temperature: 0.3, JSON: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "你好" {
		t.Errorf("got %q", out)
	}

	msgs, _ := got["messages"].([]any)
	if len(msgs) != 2 {
		t.Fatalf("expected system and user messages, got %v", got["messages"])
	}
	rf, _ := got["response_format"].(map[string]any)
	if rf["type"] != "json_object" {
		t.Errorf("expected json_object response format, got %v", got["response_format"])
	}
}

func TestOpenAIBackend_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	b := NewOpenAIBackend(BackendConfig{BaseURL: server.URL, Model: "m"})
	if _, err := b.Complete(context.Background(), Request{User: "Hello"}); err == nil {
		t.Error("expected error for 500 response")
	}
}

func TestNewBackend_UnknownProvider(t *testing.T) {
	if _, err := NewBackend(context.Background(), BackendConfig{Provider: "nope"}); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestWaitReady(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		if r.URL.Path != "/models" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if n < 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"data":[]}`))
	}))
	defer server.Close()

	c := newTestClient(nil)
	err := WaitReady(context.Background(), server.URL+"/", "", 2*time.Second, 10*time.Millisecond, c.logger)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := calls.Load(); n < 2 {
		t.Errorf("expected at least 2 polls, got %d", n)
	}
}

func TestWaitReady_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := newTestClient(nil)
	if err := WaitReady(context.Background(), server.URL, "", 50*time.Millisecond, 10*time.Millisecond, c.logger); err == nil {
		t.Error("expected timeout error")
	}
}
