package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestAnthropic_Complete(t *testing.T) {
	var got anthropicRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/messages" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Header.Get("x-api-key") != "sk-test" {
			t.Errorf("x-api-key = %q", r.Header.Get("x-api-key"))
		}
		if r.Header.Get("anthropic-version") == "" {
			t.Error("anthropic-version header missing")
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{
			"model": "claude-3-5-haiku-latest",
			"content": [{"type": "text", "text": "A thread"}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 20, "output_tokens": 5}
		}`))
	}))
	defer srv.Close()

	cfg := testUpstreamConfig(srv.URL)
	cfg.Provider = ProviderAnthropic
	a := NewAnthropic(cfg, srv.Client())

	resp, err := a.Complete(context.Background(), TextRequest{
		Model:             "claude-3-5-haiku-latest",
		SystemInstruction: "sys",
		UserPrompt:        "write",
		Temperature:       0.7,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text != "A thread" {
		t.Errorf("text = %q", resp.Text)
	}
	if resp.Usage.TotalTokens != 25 {
		t.Errorf("total tokens = %d, want 25", resp.Usage.TotalTokens)
	}
	if got.System != "sys" || len(got.Messages) != 1 || got.Messages[0].Content != "write" {
		t.Errorf("request = %+v", got)
	}
	if got.MaxTokens != 4096 {
		t.Errorf("max_tokens = %d, want 4096 default", got.MaxTokens)
	}
}

func TestAnthropic_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"type":"error"}`))
	}))
	defer srv.Close()

	a := NewAnthropic(testUpstreamConfig(srv.URL), srv.Client())
	_, err := a.Complete(context.Background(), TextRequest{})

	var se *StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 StatusError, got %v", err)
	}
}

func TestAnthropic_NoTextBlock(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"content":[{"type":"tool_use"}]}`))
	}))
	defer srv.Close()

	a := NewAnthropic(testUpstreamConfig(srv.URL), srv.Client())
	if _, err := a.Complete(context.Background(), TextRequest{}); !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestAnthropic_ImagesUnsupported(t *testing.T) {
	a := NewAnthropic(testUpstreamConfig("http://unused"), http.DefaultClient)
	if _, err := a.GenerateImage(context.Background(), ImageRequest{}); !errors.Is(err, ErrImagesUnsupported) {
		t.Fatalf("expected ErrImagesUnsupported, got %v", err)
	}
}
