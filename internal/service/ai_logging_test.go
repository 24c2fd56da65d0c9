package service

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestAILogSnippetFlattensAndTruncates(t *testing.T) {
	snippet, count := aiLogSnippet("  line one\n\tline two  ")
	if snippet != "line one line two" || count != len("line one line two") {
		t.Fatalf("unexpected snippet %q (%d)", snippet, count)
	}

	long := strings.Repeat("未来", maxAILogSnippetRunes)
	snippet, count = aiLogSnippet(long)
	if count != 2*maxAILogSnippetRunes {
		t.Fatalf("expected full rune count, got %d", count)
	}
	if !strings.HasSuffix(snippet, "…(truncated)") {
		t.Fatalf("expected truncation marker, got %q", snippet[len(snippet)-20:])
	}
	if got := utf8.RuneCountInString(strings.TrimSuffix(snippet, "…(truncated)")); got != maxAILogSnippetRunes {
		t.Fatalf("expected %d runes kept, got %d", maxAILogSnippetRunes, got)
	}

	if snippet, _ := aiLogSnippet(" \n "); snippet != "" {
		t.Fatalf("expected empty snippet, got %q", snippet)
	}
}
