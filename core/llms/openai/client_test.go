package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/koscakluka/kurt/core/llms"
	goopenai "github.com/sashabaranov/go-openai"
)

func TestGenerateSendsPromptAsUserMessage(t *testing.T) {
	var request goopenai.ChatCompletionRequest
	var authorization string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		authorization = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			t.Errorf("failed to decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":" Hi there "},"finish_reason":"stop"}],"usage":{"total_tokens":7}}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	reply, err := client.Generate(context.Background(), "User: hello\nKurt:")
	if err != nil {
		t.Fatalf("expected generation to succeed, got %v", err)
	}
	if reply != "Hi there" {
		t.Fatalf("expected reply %q, got %q", "Hi there", reply)
	}
	if authorization != "Bearer test-key" {
		t.Fatalf("expected bearer authorization, got %q", authorization)
	}
	if request.Model != DefaultModel {
		t.Fatalf("expected model %q, got %q", DefaultModel, request.Model)
	}
	if len(request.Messages) != 1 || request.Messages[0].Role != goopenai.ChatMessageRoleUser || request.Messages[0].Content != "User: hello\nKurt:" {
		t.Fatalf("expected prompt as the only user message, got %+v", request.Messages)
	}
}

func TestGenerateRateLimitIsQuotaError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":{"message":"Rate limit reached","type":"requests","code":"rate_limit_exceeded"}}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.Generate(context.Background(), "hello")
	if !errors.Is(err, llms.ErrQuota) {
		t.Fatalf("expected quota error, got %v", err)
	}
}

func TestGenerateServerErrorIsUnknownError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":{"message":"bad prompt","type":"invalid_request_error"}}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.Generate(context.Background(), "hello")
	if !errors.Is(err, llms.ErrUnknown) {
		t.Fatalf("expected unknown error, got %v", err)
	}
}

func TestGenerateUnreachableHostIsNetworkError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	baseURL := server.URL
	server.Close()

	client := newTestClient(t, baseURL)
	_, err := client.Generate(context.Background(), "hello")
	if !errors.Is(err, llms.ErrNetwork) {
		t.Fatalf("expected network error, got %v", err)
	}
}

func TestGenerateEmptyChoicesIsUnknownError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"1","choices":[]}`)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.Generate(context.Background(), "hello")
	if !errors.Is(err, llms.ErrUnknown) {
		t.Fatalf("expected unknown error, got %v", err)
	}
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	if _, err := NewClient(); err == nil {
		t.Fatalf("expected missing api key to fail")
	}
}

func newTestClient(t *testing.T, serverURL string) *Client {
	t.Helper()

	client, err := NewClient(
		WithAPIKey("test-key"),
		WithBaseURL(serverURL+"/v1"),
		WithHTTPClient(http.DefaultClient),
	)
	if err != nil {
		t.Fatalf("failed to create openai client: %v", err)
	}
	return client
}
