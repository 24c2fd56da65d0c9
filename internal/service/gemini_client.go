package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultGeminiBaseURL     = "https://generativelanguage.googleapis.com/v1beta"
	defaultGeminiTextModel   = "gemini-3-flash-preview"
	defaultGeminiSpeechModel = "gemini-2.5-flash-preview-tts"
	geminiModalityAudio      = "AUDIO"
)

type geminiInlineData struct {
	MimeType string `json:"mimeType,omitempty"`
	Data     string `json:"data"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPrebuiltVoiceConfig struct {
	VoiceName string `json:"voiceName"`
}

type geminiVoiceConfig struct {
	PrebuiltVoiceConfig geminiPrebuiltVoiceConfig `json:"prebuiltVoiceConfig"`
}

type geminiSpeechConfig struct {
	VoiceConfig geminiVoiceConfig `json:"voiceConfig"`
}

type geminiGenerationConfig struct {
	ResponseModalities []string            `json:"responseModalities,omitempty"`
	SpeechConfig       *geminiSpeechConfig `json:"speechConfig,omitempty"`
}

type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// GeminiClient 调用 Gemini generateContent 接口，同时提供文本生成与语音合成
type GeminiClient struct {
	apiKey      string
	http        httpDoer
	baseURL     string
	textModel   string
	speechModel string
}

// NewGeminiClient 构造 GeminiClient，模型为空时使用默认模型
func NewGeminiClient(apiKey, baseURL, textModel, speechModel string) *GeminiClient {
	c := &GeminiClient{
		apiKey:      strings.TrimSpace(apiKey),
		http:        &http.Client{Timeout: 180 * time.Second},
		baseURL:     defaultGeminiBaseURL,
		textModel:   defaultGeminiTextModel,
		speechModel: defaultGeminiSpeechModel,
	}
	c.SetBaseURL(baseURL)
	if model := strings.TrimSpace(textModel); model != "" {
		c.textModel = model
	}
	if model := strings.TrimSpace(speechModel); model != "" {
		c.speechModel = model
	}
	return c
}

// SetHTTPClient 覆盖默认 HTTP 客户端，主要用于测试。
func (c *GeminiClient) SetHTTPClient(client httpDoer) {
	if client == nil {
		c.http = &http.Client{Timeout: 180 * time.Second}
		return
	}
	c.http = client
}

// SetBaseURL 覆盖默认的 API 地址，空值保持不变。
func (c *GeminiClient) SetBaseURL(base string) {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" {
		return
	}
	c.baseURL = base
}

// GenerateText 实现 TextGenerator，拼接首个候选的所有文本片段
func (c *GeminiClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	resp, err := c.generate(ctx, c.textModel, geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
	})
	if err != nil {
		return "", err
	}

	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("Gemini 接口未返回结果")
	}

	var builder strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		builder.WriteString(part.Text)
	}
	text := strings.TrimSpace(builder.String())
	if text == "" {
		return "", fmt.Errorf("Gemini 接口返回空内容")
	}
	return text, nil
}

// SynthesizeSpeech 请求指定音色的语音，返回 base64 编码的 PCM16 数据。
// 响应中没有音频时返回空字符串且不报错。
func (c *GeminiClient) SynthesizeSpeech(ctx context.Context, text, voice string) (string, error) {
	resp, err := c.generate(ctx, c.speechModel, geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: text}}}},
		GenerationConfig: &geminiGenerationConfig{
			ResponseModalities: []string{geminiModalityAudio},
			SpeechConfig: &geminiSpeechConfig{
				VoiceConfig: geminiVoiceConfig{
					PrebuiltVoiceConfig: geminiPrebuiltVoiceConfig{VoiceName: voice},
				},
			},
		},
	})
	if err != nil {
		return "", err
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", nil
	}
	inline := resp.Candidates[0].Content.Parts[0].InlineData
	if inline == nil {
		return "", nil
	}
	return inline.Data, nil
}

func (c *GeminiClient) generate(ctx context.Context, model string, payload geminiRequest) (geminiResponse, error) {
	if c.apiKey == "" {
		return geminiResponse{}, ErrAIAPIKeyMissing
	}

	client := c.http
	if client == nil {
		client = http.DefaultClient
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return geminiResponse{}, fmt.Errorf("构造请求失败: %w", err)
	}

	endpoint := c.baseURL + "/models/" + url.PathEscape(model) + ":generateContent"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return geminiResponse{}, fmt.Errorf("创建 Gemini 请求失败: %w", err)
	}
	httpReq.Header.Set("x-goog-api-key", c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", "futureme-ai/1.0")

	resp, err := client.Do(httpReq)
	if err != nil {
		return geminiResponse{}, fmt.Errorf("请求 Gemini 接口失败: %w", err)
	}
	defer resp.Body.Close()

	// 语音响应包含整段 base64 音频，上限放宽到 32MB
	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return geminiResponse{}, fmt.Errorf("读取 Gemini 响应失败: %w", err)
	}

	var decoded geminiResponse
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return geminiResponse{}, fmt.Errorf("解析 Gemini 响应失败: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return geminiResponse{}, fmt.Errorf("Gemini 接口返回错误：%s", apiErrorMessage(decoded.Error.Message, respBody, resp.Status))
	}

	return decoded, nil
}

// NewTextGenerator 根据平台选择文本生成实现
func NewTextGenerator(provider string, gemini *GeminiClient, openAIKey, deepSeekKey, model string) TextGenerator {
	switch normalizeAIProvider(provider) {
	case AIProviderOpenAI:
		return newAIChatClient(AIProviderOpenAI, openAIKey, model)
	case AIProviderDeepSeek:
		return newAIChatClient(AIProviderDeepSeek, deepSeekKey, model)
	default:
		return gemini
	}
}
