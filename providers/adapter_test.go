package providers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func openAIDescriptor(url string) Descriptor {
	return Descriptor{
		Name:    "groq",
		URL:     url,
		Dialect: DialectOpenAI,
		Model:   "llama-3.3-70b-versatile",
	}
}

func geminiDescriptor(url string) Descriptor {
	return Descriptor{
		Name:    "gemini",
		URL:     url,
		Dialect: DialectGemini,
	}
}

func TestAdapter_Complete_OpenAIDialect(t *testing.T) {
	var captured struct {
		auth        string
		contentType string
		body        openAIChatRequest
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.auth = r.Header.Get("Authorization")
		captured.contentType = r.Header.Get("Content-Type")

		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &captured.body); err != nil {
			t.Errorf("failed to unmarshal request body: %v", err)
		}

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": "hello there"}},
			},
		})
	}))
	defer server.Close()

	adapter := NewAdapter(server.Client(), nil)
	messages := []Message{
		{Role: RoleSystem, Content: "be brief"},
		{Role: RoleUser, Content: "hi"},
		{Role: RoleAssistant, Content: "hey"},
		{Role: RoleUser, Content: "how are you"},
	}

	content, err := adapter.Complete(context.Background(), openAIDescriptor(server.URL), "sk-test", messages)
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	if content != "hello there" {
		t.Errorf("content = %q, want %q", content, "hello there")
	}

	if captured.auth != "Bearer sk-test" {
		t.Errorf("Authorization = %q, want %q", captured.auth, "Bearer sk-test")
	}

	if captured.contentType != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", captured.contentType)
	}

	if captured.body.Model != "llama-3.3-70b-versatile" {
		t.Errorf("model = %q, want llama-3.3-70b-versatile", captured.body.Model)
	}

	if captured.body.Temperature != 0.7 {
		t.Errorf("temperature = %v, want 0.7", captured.body.Temperature)
	}

	if captured.body.MaxTokens != 1024 {
		t.Errorf("max_tokens = %d, want 1024", captured.body.MaxTokens)
	}

	// Roles preserved as-is, order preserved
	wantRoles := []string{"system", "user", "assistant", "user"}
	if len(captured.body.Messages) != len(wantRoles) {
		t.Fatalf("message count = %d, want %d", len(captured.body.Messages), len(wantRoles))
	}
	for i, want := range wantRoles {
		if captured.body.Messages[i].Role != want {
			t.Errorf("message[%d].role = %q, want %q", i, captured.body.Messages[i].Role, want)
		}
	}
}

func TestAdapter_Complete_GeminiDialect(t *testing.T) {
	var captured struct {
		key  string
		auth string
		body geminiRequest
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.key = r.URL.Query().Get("key")
		captured.auth = r.Header.Get("Authorization")

		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &captured.body); err != nil {
			t.Errorf("failed to unmarshal request body: %v", err)
		}

		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"candidates": []map[string]interface{}{
				{"content": map[string]interface{}{
					"parts": []map[string]string{{"text": "bonjour"}},
				}},
			},
		})
	}))
	defer server.Close()

	adapter := NewAdapter(server.Client(), nil)
	messages := []Message{
		{Role: RoleUser, Content: "hi"},
		{Role: RoleAssistant, Content: "hey"},
		{Role: RoleUser, Content: "in french?"},
	}

	content, err := adapter.Complete(context.Background(), geminiDescriptor(server.URL), "g-key", messages)
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	if content != "bonjour" {
		t.Errorf("content = %q, want %q", content, "bonjour")
	}

	if captured.key != "g-key" {
		t.Errorf("key query param = %q, want g-key", captured.key)
	}

	// Credential travels in the URL, never the Authorization header
	if captured.auth != "" {
		t.Errorf("Authorization = %q, want empty", captured.auth)
	}

	// assistant remapped to model, other roles unchanged, order preserved
	wantRoles := []string{"user", "model", "user"}
	if len(captured.body.Contents) != len(wantRoles) {
		t.Fatalf("content count = %d, want %d", len(captured.body.Contents), len(wantRoles))
	}
	for i, want := range wantRoles {
		if captured.body.Contents[i].Role != want {
			t.Errorf("contents[%d].role = %q, want %q", i, captured.body.Contents[i].Role, want)
		}
		if len(captured.body.Contents[i].Parts) != 1 {
			t.Fatalf("contents[%d] has %d parts, want 1", i, len(captured.body.Contents[i].Parts))
		}
	}
	if captured.body.Contents[2].Parts[0].Text != "in french?" {
		t.Errorf("contents[2] text = %q, want %q", captured.body.Contents[2].Parts[0].Text, "in french?")
	}

	if captured.body.GenerationConfig.Temperature != 0.7 {
		t.Errorf("temperature = %v, want 0.7", captured.body.GenerationConfig.Temperature)
	}
	if captured.body.GenerationConfig.MaxOutputTokens != 1024 {
		t.Errorf("maxOutputTokens = %d, want 1024", captured.body.GenerationConfig.MaxOutputTokens)
	}
}

func TestAdapter_Complete_ErrorClassification(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		wantRetryable bool
	}{
		{name: "429 is retryable", status: http.StatusTooManyRequests, wantRetryable: true},
		{name: "500 is retryable", status: http.StatusInternalServerError, wantRetryable: true},
		{name: "503 is retryable", status: http.StatusServiceUnavailable, wantRetryable: true},
		{name: "400 is not retryable", status: http.StatusBadRequest, wantRetryable: false},
		{name: "401 is not retryable", status: http.StatusUnauthorized, wantRetryable: false},
		{name: "403 is not retryable", status: http.StatusForbidden, wantRetryable: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"error":"nope"}`))
			}))
			defer server.Close()

			adapter := NewAdapter(server.Client(), nil)
			_, err := adapter.Complete(context.Background(), openAIDescriptor(server.URL), "k", []Message{{Role: RoleUser, Content: "hi"}})
			if err == nil {
				t.Fatal("expected error, got nil")
			}

			var provErr *ProviderError
			if !errors.As(err, &provErr) {
				t.Fatalf("error type = %T, want *ProviderError", err)
			}

			if provErr.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", provErr.StatusCode, tt.status)
			}

			if IsRetryable(err) != tt.wantRetryable {
				t.Errorf("IsRetryable() = %v, want %v", IsRetryable(err), tt.wantRetryable)
			}
		})
	}
}

func TestAdapter_Complete_MalformedResponse(t *testing.T) {
	tests := []struct {
		name string
		desc func(url string) Descriptor
		body string
	}{
		{name: "openai not json", desc: openAIDescriptor, body: "<html>oops</html>"},
		{name: "openai missing choices", desc: openAIDescriptor, body: `{"object":"chat.completion"}`},
		{name: "gemini missing candidates", desc: geminiDescriptor, body: `{}`},
		{name: "gemini empty parts", desc: geminiDescriptor, body: `{"candidates":[{"content":{"parts":[]}}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			adapter := NewAdapter(server.Client(), nil)
			_, err := adapter.Complete(context.Background(), tt.desc(server.URL), "k", []Message{{Role: RoleUser, Content: "hi"}})
			if err == nil {
				t.Fatal("expected error, got nil")
			}

			// A schema mismatch will not be fixed by retrying
			if IsRetryable(err) {
				t.Error("malformed response should not be retryable")
			}
		})
	}
}

func TestAdapter_Complete_EmptyContentIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":""}}]}`))
	}))
	defer server.Close()

	adapter := NewAdapter(server.Client(), nil)
	content, err := adapter.Complete(context.Background(), openAIDescriptor(server.URL), "k", []Message{{Role: RoleUser, Content: "hi"}})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if content != "" {
		t.Errorf("content = %q, want empty string", content)
	}
}

func TestAdapter_Complete_TransportError(t *testing.T) {
	// Server closed before the call: connection refused
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	adapter := NewAdapter(nil, nil)
	_, err := adapter.Complete(context.Background(), openAIDescriptor(url), "k", []Message{{Role: RoleUser, Content: "hi"}})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !IsRetryable(err) {
		t.Error("transport failure should be retryable")
	}
}

func TestAdapter_Complete_CancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	adapter := NewAdapter(server.Client(), nil)
	_, err := adapter.Complete(ctx, openAIDescriptor(server.URL), "k", []Message{{Role: RoleUser, Content: "hi"}})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if IsRetryable(err) {
		t.Error("cancellation should not be retryable")
	}
}
