package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/lexiscope/internal/domain"
)

func newTestCompleter(url string) *Completer {
	return NewCompleter(&Config{
		APIKey:   "test-key",
		BaseURL:  url,
		Model:    "llama-3.3-70b-versatile",
		Provider: "groq",
		Logger:   zap.NewNop(),
	})
}

func TestCompleter_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var req struct {
			Model       string  `json:"model"`
			Temperature float32 `json:"temperature"`
			MaxTokens   int     `json:"max_tokens"`
			Messages    []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Model != "llama-3.3-70b-versatile" || req.MaxTokens != 600 {
			t.Errorf("unexpected request: %+v", req)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" || req.Messages[1].Content != "question" {
			t.Errorf("unexpected messages: %+v", req.Messages)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","created":1,"model":"m",
			"choices":[{"index":0,"message":{"role":"assistant","content":"answer"},"finish_reason":"stop"}],
			"usage":{"prompt_tokens":30,"completion_tokens":5,"total_tokens":35}}`))
	}))
	defer srv.Close()

	res, err := newTestCompleter(srv.URL).Generate(context.Background(), []domain.Message{
		{Role: domain.RoleSystem, Content: "be brief"},
		{Role: domain.RoleUser, Content: "question"},
	}, domain.CompletionParams{Temperature: 0.21, MaxTokens: 600, Timeout: 5 * time.Second})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if res.Text != "answer" || res.TotalTokens != 35 || res.CompletionTokens != 5 {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestCompleter_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	_, err := newTestCompleter(srv.URL).Generate(context.Background(), []domain.Message{
		{Role: domain.RoleUser, Content: "slow"},
	}, domain.CompletionParams{Timeout: 50 * time.Millisecond})
	if !errors.Is(err, domain.ErrCompletionTimeout) {
		t.Fatalf("expected ErrCompletionTimeout, got %v", err)
	}
}

func TestCompleter_ServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
	}))
	defer srv.Close()

	_, err := newTestCompleter(srv.URL).Generate(context.Background(), []domain.Message{
		{Role: domain.RoleUser, Content: "x"},
	}, domain.CompletionParams{Timeout: 5 * time.Second})
	if !errors.Is(err, domain.ErrCompletionService) {
		t.Fatalf("expected ErrCompletionService, got %v", err)
	}
	if errors.Is(err, domain.ErrCompletionTimeout) {
		t.Fatal("server error must not look like a timeout")
	}
}

func TestCompleter_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","choices":[],"usage":{}}`))
	}))
	defer srv.Close()

	_, err := newTestCompleter(srv.URL).Generate(context.Background(), nil, domain.CompletionParams{})
	if !errors.Is(err, domain.ErrCompletionService) {
		t.Fatalf("expected ErrCompletionService, got %v", err)
	}
}
