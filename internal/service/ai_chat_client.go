package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// AIProviderGemini 表示使用 Gemini 生成文本与语音。
	AIProviderGemini = "gemini"
	// AIProviderOpenAI 表示使用 OpenAI 生成文本。
	AIProviderOpenAI = "openai"
	// AIProviderDeepSeek 表示使用 DeepSeek 生成文本。
	AIProviderDeepSeek = "deepseek"
)

var supportedAIProviders = []string{AIProviderGemini, AIProviderOpenAI, AIProviderDeepSeek}

// ErrAIAPIKeyMissing 表示未提供必需的 AI 平台 API Key。
var ErrAIAPIKeyMissing = errors.New("api key is required")

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// TextGenerator 是文本生成服务的边界：输入一段 prompt，输出纯文本。
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

const (
	defaultOpenAIModel     = "gpt-4o-mini"
	defaultDeepSeekModel   = "deepseek-chat"
	defaultChatMaxTokens   = 200
	defaultChatTemperature = 0.9
)

// aiChatClient 调用 OpenAI 兼容的 /chat/completions 接口
type aiChatClient struct {
	provider string
	label    string
	apiKey   string
	http     httpDoer
	baseURL  string
	model    string
}

// newAIChatClient 按平台填充默认地址与模型，model 为空时使用平台默认模型
func newAIChatClient(provider, apiKey, model string) *aiChatClient {
	c := &aiChatClient{
		provider: normalizeAIProvider(provider),
		apiKey:   strings.TrimSpace(apiKey),
		http:     &http.Client{Timeout: 180 * time.Second},
	}

	switch c.provider {
	case AIProviderDeepSeek:
		c.label = "DeepSeek"
		c.baseURL = "https://api.deepseek.com/v1"
		c.model = defaultDeepSeekModel
	default:
		c.provider = AIProviderOpenAI
		c.label = "OpenAI"
		c.baseURL = "https://api.openai.com/v1"
		c.model = defaultOpenAIModel
	}
	c.SetModel(model)
	return c
}

func (c *aiChatClient) SetHTTPClient(client httpDoer) {
	if client == nil {
		c.http = &http.Client{Timeout: 180 * time.Second}
		return
	}
	c.http = client
}

func (c *aiChatClient) SetBaseURL(base string) {
	c.baseURL = strings.TrimRight(strings.TrimSpace(base), "/")
}

func (c *aiChatClient) SetModel(model string) {
	model = strings.TrimSpace(model)
	if model == "" {
		return
	}
	c.model = model
}

// GenerateText 将 prompt 作为单条用户消息发送
func (c *aiChatClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", ErrAIAPIKeyMissing
	}

	client := c.http
	if client == nil {
		client = http.DefaultClient
	}

	payload := chatCompletionRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens:   defaultChatMaxTokens,
		Temperature: defaultChatTemperature,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("构造请求失败: %w", err)
	}

	endpoint := strings.TrimRight(c.baseURL, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("创建 %s 请求失败: %w", c.label, err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", "futureme-ai/1.0")

	resp, err := client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("请求 %s 接口失败: %w", c.label, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("读取 %s 响应失败: %w", c.label, err)
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(respBody, &completion); err != nil {
		return "", fmt.Errorf("解析 %s 响应失败: %w", c.label, err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return "", fmt.Errorf("%s 接口返回错误：%s", c.label, apiErrorMessage(completion.Error.Message, respBody, resp.Status))
	}

	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("%s 接口未返回结果", c.label)
	}

	content := strings.TrimSpace(completion.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("%s 接口返回空内容", c.label)
	}
	return content, nil
}

func apiErrorMessage(message string, body []byte, status string) string {
	errMsg := strings.TrimSpace(message)
	if errMsg == "" {
		errMsg = strings.TrimSpace(string(body))
	}
	if errMsg == "" {
		errMsg = status
	}
	return errMsg
}

func normalizeAIProvider(provider string) string {
	trimmed := strings.ToLower(strings.TrimSpace(provider))
	for _, candidate := range supportedAIProviders {
		if trimmed == candidate {
			return candidate
		}
	}
	return ""
}
