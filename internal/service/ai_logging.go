package service

import (
	"log"
	"strings"
	"time"
	"unicode/utf8"
)

const maxAILogSnippetRunes = 1024

// aiLogSnippet 将多行 prompt 压成一行并按字符数截断
func aiLogSnippet(content string) (string, int) {
	flat := strings.Join(strings.Fields(content), " ")
	runeCount := utf8.RuneCountInString(flat)
	if runeCount > maxAILogSnippetRunes {
		return string([]rune(flat)[:maxAILogSnippetRunes]) + "…(truncated)", runeCount
	}
	return flat, runeCount
}

// logAIExchange 用于输出 AI 请求与响应的关键信息，方便排查模型行为。
func logAIExchange(kind, phase, content string) {
	snippet, runeCount := aiLogSnippet(content)
	if snippet == "" {
		log.Printf("[AI %s] %s: <empty>", kind, phase)
		return
	}
	log.Printf("[AI %s] %s (runes=%d): %s", kind, phase, runeCount, snippet)
}

// logAIDuration 记录一次生成调用的耗时与结果
func logAIDuration(kind string, started time.Time, err error) {
	elapsed := time.Since(started).Round(time.Millisecond)
	if err != nil {
		log.Printf("[AI %s] failed after %s, using fallback", kind, elapsed)
		return
	}
	log.Printf("[AI %s] completed in %s", kind, elapsed)
}
