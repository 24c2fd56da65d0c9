package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"
)

func TestGeminiClientGenerateText(t *testing.T) {
	t.Parallel()

	client := NewGeminiClient("gm-key", "https://gemini.test/v1beta/", "", "")
	client.SetHTTPClient(fakeHTTPClient{handler: func(r *http.Request) (*http.Response, error) {
		if r.URL.Path != "/v1beta/models/"+defaultGeminiTextModel+":generateContent" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("x-goog-api-key"); got != "gm-key" {
			t.Fatalf("unexpected api key header %q", got)
		}

		var payload geminiRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if payload.GenerationConfig != nil {
			t.Fatalf("text request should not carry generation config")
		}
		if len(payload.Contents) != 1 || payload.Contents[0].Parts[0].Text != "prompt" {
			t.Fatalf("unexpected contents %#v", payload.Contents)
		}

		return jsonResponse(t, http.StatusOK, map[string]interface{}{
			"candidates": []map[string]interface{}{
				{"content": map[string]interface{}{"parts": []map[string]string{{"text": "Stay "}, {"text": "the course."}}}},
			},
		}), nil
	}})

	text, err := client.GenerateText(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "Stay the course." {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestGeminiClientSynthesizeSpeech(t *testing.T) {
	t.Parallel()

	client := NewGeminiClient("gm-key", "", "", "tts-model")
	client.SetBaseURL("https://gemini.test/v1beta")
	client.SetHTTPClient(fakeHTTPClient{handler: func(r *http.Request) (*http.Response, error) {
		if !strings.HasSuffix(r.URL.Path, "/models/tts-model:generateContent") {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}

		var payload geminiRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		cfg := payload.GenerationConfig
		if cfg == nil || len(cfg.ResponseModalities) != 1 || cfg.ResponseModalities[0] != "AUDIO" {
			t.Fatalf("expected audio modality, got %#v", cfg)
		}
		if cfg.SpeechConfig.VoiceConfig.PrebuiltVoiceConfig.VoiceName != VoiceKore {
			t.Fatalf("unexpected voice %q", cfg.SpeechConfig.VoiceConfig.PrebuiltVoiceConfig.VoiceName)
		}

		return jsonResponse(t, http.StatusOK, map[string]interface{}{
			"candidates": []map[string]interface{}{
				{"content": map[string]interface{}{"parts": []map[string]interface{}{
					{"inlineData": map[string]string{"mimeType": "audio/L16;rate=24000", "data": "AAAAQA=="}},
				}}},
			},
		}), nil
	}})

	payload, err := client.SynthesizeSpeech(context.Background(), "hello", VoiceKore)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload != "AAAAQA==" {
		t.Fatalf("unexpected payload %q", payload)
	}
}

func TestGeminiClientSpeechWithoutAudio(t *testing.T) {
	t.Parallel()

	client := NewGeminiClient("gm-key", "", "", "")
	client.SetHTTPClient(fakeHTTPClient{handler: func(r *http.Request) (*http.Response, error) {
		return jsonResponse(t, http.StatusOK, map[string]interface{}{
			"candidates": []map[string]interface{}{
				{"content": map[string]interface{}{"parts": []map[string]string{{"text": "no audio"}}}},
			},
		}), nil
	}})

	payload, err := client.SynthesizeSpeech(context.Background(), "hello", VoicePuck)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload != "" {
		t.Fatalf("expected empty payload, got %q", payload)
	}
}

func TestGeminiClientErrors(t *testing.T) {
	t.Parallel()

	missing := NewGeminiClient("", "", "", "")
	if _, err := missing.GenerateText(context.Background(), "x"); !errors.Is(err, ErrAIAPIKeyMissing) {
		t.Fatalf("expected ErrAIAPIKeyMissing, got %v", err)
	}

	client := NewGeminiClient("gm-key", "", "", "")
	client.SetHTTPClient(fakeHTTPClient{handler: func(r *http.Request) (*http.Response, error) {
		return jsonResponse(t, http.StatusBadRequest, map[string]interface{}{
			"error": map[string]string{"message": "API key not valid"},
		}), nil
	}})
	if _, err := client.GenerateText(context.Background(), "x"); err == nil || !strings.Contains(err.Error(), "API key not valid") {
		t.Fatalf("expected api error, got %v", err)
	}

	client.SetHTTPClient(fakeHTTPClient{handler: func(r *http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	}})
	if _, err := client.SynthesizeSpeech(context.Background(), "x", VoiceZephyr); err == nil {
		t.Fatalf("expected transport error")
	}
}

func TestNewTextGeneratorSelectsProvider(t *testing.T) {
	t.Parallel()

	gemini := NewGeminiClient("gm-key", "", "", "")
	if gen := NewTextGenerator("", gemini, "", "", ""); gen != TextGenerator(gemini) {
		t.Fatalf("expected gemini by default, got %T", gen)
	}

	gen := NewTextGenerator("openai", gemini, "sk", "", "")
	chat, ok := gen.(*aiChatClient)
	if !ok || chat.provider != AIProviderOpenAI {
		t.Fatalf("expected openai chat client, got %#v", gen)
	}

	gen = NewTextGenerator("deepseek", gemini, "", "ds", "")
	chat, ok = gen.(*aiChatClient)
	if !ok || chat.provider != AIProviderDeepSeek || chat.apiKey != "ds" {
		t.Fatalf("expected deepseek chat client, got %#v", gen)
	}
}
