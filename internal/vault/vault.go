package vault

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/futureme/internal/state"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	markdownEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML()),
	)
	sanitizer = bluemonday.UGCPolicy()
)

// IDGenerator 生成记忆 ID，测试时可替换
type IDGenerator func() string

// NewID 默认使用随机 UUID
func NewID() string {
	return uuid.NewString()
}

// Archive 生成一条新记忆并插入列表头部，返回新记忆与新列表。
// 文本不做校验，空字符串同样会被归档。
func Archive(memories []state.Memory, text string, trigger state.TriggerType, now time.Time, newID IDGenerator) (state.Memory, []state.Memory) {
	if newID == nil {
		newID = NewID
	}

	memory := state.Memory{
		ID:          newID(),
		Text:        text,
		TriggerType: trigger,
		CreatedAt:   now.UTC(),
	}

	out := make([]state.Memory, 0, len(memories)+1)
	out = append(out, memory)
	out = append(out, memories...)
	return memory, out
}

// Filter 返回指定来源的记忆，trigger 为空时返回全部，保持原有顺序
func Filter(memories []state.Memory, trigger state.TriggerType) []state.Memory {
	out := make([]state.Memory, 0, len(memories))
	for _, m := range memories {
		if trigger == "" || m.TriggerType == trigger {
			out = append(out, m)
		}
	}
	return out
}

// Markdown 将记忆库导出为 Markdown 文档
func Markdown(memories []state.Memory) string {
	var builder strings.Builder
	builder.WriteString("# Memory Vault\n\n")
	if len(memories) == 0 {
		builder.WriteString("_No records yet._\n")
		return builder.String()
	}

	fmt.Fprintf(&builder, "%d records\n\n", len(memories))
	for _, m := range memories {
		fmt.Fprintf(&builder, "## %s · %s\n\n", m.TriggerType, m.CreatedAt.UTC().Format("January 2, 2006 15:04"))
		text := strings.TrimSpace(m.Text)
		if text == "" {
			builder.WriteString("> _(empty)_\n\n")
			continue
		}
		for _, line := range strings.Split(text, "\n") {
			builder.WriteString("> ")
			builder.WriteString(line)
			builder.WriteString("\n")
		}
		builder.WriteString("\n")
	}
	return builder.String()
}

// RenderHTML 渲染 Markdown 导出并过滤不安全的标签
func RenderHTML(memories []state.Memory) (string, error) {
	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(Markdown(memories)), &buf); err != nil {
		return "", fmt.Errorf("render vault markdown: %w", err)
	}
	return sanitizer.Sanitize(buf.String()), nil
}
