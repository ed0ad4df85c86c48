package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"
)

func TestMaritacaGenerate(t *testing.T) {
	var got maritacaRequest
	var auth string
	srv := newIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/chat/inference" {
			http.NotFound(w, r)
			return
		}
		auth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("X-Request-Id", "mt_1")
		_ = json.NewEncoder(w).Encode(map[string]any{"answer": " Foram 2 óbitos. "})
	}))
	defer srv.Close()

	c := NewMaritacaClient("secret", srv.URL+"/", 2*time.Second, 1, 0, 0)
	resp, err := c.Generate(context.Background(), UserPrompt("", "prompt", 500, 0))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	answer, err := resp.Answer()
	if err != nil || answer != "Foram 2 óbitos." {
		t.Fatalf("answer %q err %v", answer, err)
	}
	if resp.RequestID != "mt_1" {
		t.Fatalf("request id: %q", resp.RequestID)
	}
	if auth != "Key secret" {
		t.Fatalf("authorization header: %q", auth)
	}
	if got.Model != DefaultMaritacaModel || got.MaxTokens != 500 || got.DoSample {
		t.Fatalf("request body: %+v", got)
	}
	if len(got.Messages) != 1 || got.Messages[0].Content != "prompt" {
		t.Fatalf("messages: %+v", got.Messages)
	}
}

func TestMaritacaMissingAnswer(t *testing.T) {
	srv := newIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"text": "wrong field"})
	}))
	defer srv.Close()
	c := NewMaritacaClient("secret", srv.URL, 2*time.Second, 1, 0, 0)
	if _, err := c.Generate(context.Background(), UserPrompt("sabia-3", "p", 10, 0)); err == nil {
		t.Fatalf("expected error for missing answer")
	}
}

func TestMaritacaAuthError(t *testing.T) {
	srv := newIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]any{"detail": "Invalid API key"})
	}))
	defer srv.Close()
	c := NewMaritacaClient("bad", srv.URL, 2*time.Second, 1, 0, 0)
	_, err := c.Generate(context.Background(), UserPrompt("sabia-3", "p", 10, 0))
	var ae *AuthError
	if !errors.As(err, &ae) || ae.Message != "Invalid API key" {
		t.Fatalf("expected AuthError with detail, got %v", err)
	}
}

func TestMaritacaMissingKey(t *testing.T) {
	_, err := NewMaritacaClient("", "", 0, 0, 0, 0).Generate(context.Background(), UserPrompt("", "p", 1, 0))
	var mk *MissingKeyError
	if !errors.As(err, &mk) || mk.EnvVar != "MARITACA_API_KEY" {
		t.Fatalf("expected MissingKeyError, got %v", err)
	}
}
