package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func chatResponse(content string) string {
	body, _ := json.Marshal(map[string]interface{}{
		"id":    "chatcmpl-1",
		"model": "test",
		"choices": []map[string]interface{}{
			{"index": 0, "message": map[string]string{"role": "assistant", "content": content}, "finish_reason": "stop"},
		},
	})
	return string(body)
}

func TestChatReturnsResponseText(t *testing.T) {
	var captured map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		json.NewDecoder(r.Body).Decode(&captured)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, chatResponse("Fishing before dawn beats any alarm clock."))
	}))
	defer srv.Close()

	c := NewClient(Config{Endpoint: srv.URL, Model: "persona-test"})
	got, err := c.Chat(context.Background(), ChatRequest{
		SystemPrompt: "You are a writer.",
		UserPrompt:   "Write about fishing.",
		Temperature:  0.9,
		MaxTokens:    512,
	})
	if err != nil {
		t.Fatalf("Chat returned error: %v", err)
	}
	if got != "Fishing before dawn beats any alarm clock." {
		t.Errorf("unexpected content: %q", got)
	}

	if captured["model"] != "persona-test" {
		t.Errorf("model not sent: %v", captured["model"])
	}
	if captured["top_p"] != 0.95 {
		t.Errorf("top_p = %v, want 0.95", captured["top_p"])
	}
	msgs := captured["messages"].([]interface{})
	if len(msgs) != 2 {
		t.Fatalf("expected system+user messages, got %d", len(msgs))
	}
}

func TestChatClassifiesServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"error":{"message":"model overloaded","type":"server_error"}}`)
	}))
	defer srv.Close()

	c := NewClient(Config{Endpoint: srv.URL})
	_, err := c.Chat(context.Background(), ChatRequest{UserPrompt: "hi"})

	var modelErr *ModelError
	if !errors.As(err, &modelErr) {
		t.Fatalf("expected *ModelError, got %T: %v", err, err)
	}
	if modelErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("StatusCode = %d, want 500", modelErr.StatusCode)
	}
}

func TestChatClassifiesUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	endpoint := srv.URL
	srv.Close() // nothing listening anymore

	c := NewClient(Config{Endpoint: endpoint})
	_, err := c.Chat(context.Background(), ChatRequest{UserPrompt: "hi"})

	var unreachable *ModelUnreachableError
	if !errors.As(err, &unreachable) {
		t.Fatalf("expected *ModelUnreachableError, got %T: %v", err, err)
	}
	if unreachable.Endpoint != endpoint {
		t.Errorf("error should name the endpoint, got %q", unreachable.Endpoint)
	}
}

func TestChatEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"chatcmpl-1","choices":[]}`)
	}))
	defer srv.Close()

	c := NewClient(Config{Endpoint: srv.URL})
	_, err := c.Chat(context.Background(), ChatRequest{UserPrompt: "hi"})

	var modelErr *ModelError
	if !errors.As(err, &modelErr) {
		t.Fatalf("expected *ModelError for empty choices, got %T: %v", err, err)
	}
}

func TestHealthCheck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := NewClient(Config{Endpoint: srv.URL})
	if !c.HealthCheck(context.Background()) {
		t.Error("expected healthy")
	}

	srv.Close()
	if c.HealthCheck(context.Background()) {
		t.Error("expected unhealthy after server shutdown")
	}
}
