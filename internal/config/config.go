package config

import (
	"fmt"
	"os"
	"strings"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr     string
	Port           string
	DatabasePath   string
	SessionSecret  string
	GinMode        string
	StateSlot      string
	AIProvider     string
	GeminiAPIKey   string
	GeminiBaseURL  string
	TextModel      string
	SpeechModel    string
	OpenAIAPIKey   string
	DeepSeekAPIKey string
	CORSOrigins    []string
}

// Load 从环境变量读取应用配置，并为缺失项提供安全的默认值。
func Load() AppConfig {
	port := env("PORT", "8080")

	listenAddr := strings.TrimSpace(os.Getenv("LISTEN_ADDR"))
	if listenAddr == "" {
		listenAddr = fmt.Sprintf(":%s", port)
	}

	return AppConfig{
		ListenAddr:     listenAddr,
		Port:           port,
		DatabasePath:   env("DATABASE_PATH", "futureme.db"),
		SessionSecret:  env("SESSION_SECRET", "futureme-dev-secret"),
		GinMode:        env("GIN_MODE", "release"),
		StateSlot:      env("STATE_SLOT", "future_me_coach_data"),
		AIProvider:     strings.ToLower(env("AI_PROVIDER", "gemini")),
		GeminiAPIKey:   firstNonEmpty(os.Getenv("GEMINI_API_KEY"), os.Getenv("API_KEY")),
		GeminiBaseURL:  env("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		TextModel:      strings.TrimSpace(os.Getenv("TEXT_MODEL")),
		SpeechModel:    strings.TrimSpace(os.Getenv("SPEECH_MODEL")),
		OpenAIAPIKey:   strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		DeepSeekAPIKey: strings.TrimSpace(os.Getenv("DEEPSEEK_API_KEY")),
		CORSOrigins:    splitList(os.Getenv("CORS_ORIGINS")),
	}
}

func env(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

func splitList(raw string) []string {
	var items []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
