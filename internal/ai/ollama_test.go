package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"testing"
	"time"
)

func TestOllamaGenerateSuccess(t *testing.T) {
	var got ollamaChatRequest
	srv := newIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/chat" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"message": map[string]any{"role": "assistant", "content": "hello from ollama"},
			"done":    true,
		})
	}))
	defer srv.Close()

	c := NewOllamaClient(srv.URL, 2*time.Second, 1, 0, 0)
	resp, err := c.Generate(context.Background(), UserPrompt("llama3:latest", "hi", 16, 0))
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if answer, _ := resp.Answer(); answer != "hello from ollama" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.RequestID == "" {
		t.Fatalf("expected simulated request id")
	}
	if got.Stream || got.Options["num_predict"] != float64(16) {
		t.Fatalf("request: %+v", got)
	}
}

func TestOllamaGenerateBadRequest(t *testing.T) {
	srv := newIPv4Server(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{"error": "bad request"})
	}))
	defer srv.Close()
	c := NewOllamaClient(srv.URL, 2*time.Second, 1, 0, 0)
	_, err := c.Generate(context.Background(), UserPrompt("llama3:latest", "hi", 0, 0))
	var br *BadRequestError
	if !errors.As(err, &br) || br.Message != "bad request" {
		t.Fatalf("expected BadRequestError, got %v", err)
	}
}

func TestOllamaUnreachable(t *testing.T) {
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		t.Skipf("cannot open local listener: %v", err)
	}
	addr := "http://" + ln.Addr().String()
	ln.Close()

	c := NewOllamaClient(addr, time.Second, 1, 0, 0)
	_, err = c.Generate(context.Background(), UserPrompt("llama3:latest", "hi", 0, 0))
	var ue *UnreachableError
	if !errors.As(err, &ue) || ue.Host != addr {
		t.Fatalf("expected UnreachableError, got %v", err)
	}
}

func TestOllamaGenerateEmptyMessages(t *testing.T) {
	c := NewOllamaClient("", 2*time.Second, 1, 0, 0)
	_, err := c.Generate(context.Background(), GenerateRequest{Model: "llama3:latest"})
	if err == nil || err.Error() != "messages cannot be empty" {
		t.Fatalf("expected 'messages cannot be empty' error, got: %v", err)
	}
}
