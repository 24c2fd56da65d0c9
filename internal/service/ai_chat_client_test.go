package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

type fakeHTTPClient struct {
	handler func(*http.Request) (*http.Response, error)
}

func (f fakeHTTPClient) Do(req *http.Request) (*http.Response, error) {
	if f.handler == nil {
		return nil, errors.New("no handler configured")
	}
	return f.handler(req)
}

func jsonResponse(t *testing.T, status int, payload interface{}) *http.Response {
	t.Helper()
	buf, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to encode response: %v", err)
	}
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Body:       io.NopCloser(bytes.NewReader(buf)),
		Header:     make(http.Header),
	}
}

func TestAIChatClientUsesExtendedTimeout(t *testing.T) {
	t.Parallel()

	client := newAIChatClient(AIProviderOpenAI, "sk-test", "")

	httpClient, ok := client.http.(*http.Client)
	if !ok {
		t.Fatalf("expected *http.Client, got %T", client.http)
	}

	expectTimeout := 3 * time.Minute
	if httpClient.Timeout < expectTimeout {
		t.Fatalf("default timeout should be at least %v, got %v", expectTimeout, httpClient.Timeout)
	}

	client.SetHTTPClient(fakeHTTPClient{})
	client.SetHTTPClient(nil)
	httpClient, ok = client.http.(*http.Client)
	if !ok {
		t.Fatalf("expected *http.Client after reset, got %T", client.http)
	}
	if httpClient.Timeout < expectTimeout {
		t.Fatalf("reset timeout should be at least %v, got %v", expectTimeout, httpClient.Timeout)
	}
}

func TestAIChatClientProviderDefaults(t *testing.T) {
	t.Parallel()

	openai := newAIChatClient("unknown", "k", "")
	if openai.provider != AIProviderOpenAI || openai.model != defaultOpenAIModel {
		t.Fatalf("expected openai defaults, got %s/%s", openai.provider, openai.model)
	}

	deepseek := newAIChatClient(" DeepSeek ", "k", "deepseek-reasoner")
	if deepseek.provider != AIProviderDeepSeek {
		t.Fatalf("expected deepseek provider, got %s", deepseek.provider)
	}
	if deepseek.model != "deepseek-reasoner" {
		t.Fatalf("expected model override, got %s", deepseek.model)
	}
	if deepseek.baseURL != "https://api.deepseek.com/v1" {
		t.Fatalf("unexpected deepseek base url %s", deepseek.baseURL)
	}
}

func TestAIChatClientGenerateText(t *testing.T) {
	t.Parallel()

	client := newAIChatClient(AIProviderOpenAI, "sk-test", "")
	client.SetBaseURL("https://openai.test/v1/")
	client.SetHTTPClient(fakeHTTPClient{handler: func(r *http.Request) (*http.Response, error) {
		if r.Method != http.MethodPost {
			t.Fatalf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/v1/chat/completions" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Fatalf("unexpected authorization header %s", got)
		}

		var payload chatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if len(payload.Messages) != 1 || payload.Messages[0].Role != "user" || payload.Messages[0].Content != "hello future" {
			t.Fatalf("unexpected messages: %#v", payload.Messages)
		}
		if payload.MaxTokens != defaultChatMaxTokens {
			t.Fatalf("unexpected max tokens %d", payload.MaxTokens)
		}

		return jsonResponse(t, http.StatusOK, map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": "  Keep going.  "}},
			},
		}), nil
	}})

	text, err := client.GenerateText(context.Background(), "hello future")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "Keep going." {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestAIChatClientErrors(t *testing.T) {
	t.Parallel()

	missing := newAIChatClient(AIProviderDeepSeek, "", "")
	if _, err := missing.GenerateText(context.Background(), "x"); !errors.Is(err, ErrAIAPIKeyMissing) {
		t.Fatalf("expected ErrAIAPIKeyMissing, got %v", err)
	}

	client := newAIChatClient(AIProviderDeepSeek, "ds-key", "")
	client.SetHTTPClient(fakeHTTPClient{handler: func(r *http.Request) (*http.Response, error) {
		return jsonResponse(t, http.StatusTooManyRequests, map[string]interface{}{
			"error": map[string]string{"message": "rate limited"},
		}), nil
	}})
	_, err := client.GenerateText(context.Background(), "x")
	if err == nil || !strings.Contains(err.Error(), "rate limited") || !strings.Contains(err.Error(), "DeepSeek") {
		t.Fatalf("expected provider error message, got %v", err)
	}

	client.SetHTTPClient(fakeHTTPClient{handler: func(r *http.Request) (*http.Response, error) {
		return jsonResponse(t, http.StatusOK, map[string]interface{}{"choices": []interface{}{}}), nil
	}})
	if _, err := client.GenerateText(context.Background(), "x"); err == nil {
		t.Fatalf("expected error for empty choices")
	}
}
