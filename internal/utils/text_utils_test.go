package utils

import (
	"strings"
	"testing"
	"unicode/utf8"

	"go.uber.org/zap"
)

func TestTruncateTextKeepsValidUTF8(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	// Two-byte runes; an odd byte limit lands mid-rune.
	text := strings.Repeat("é", 10)
	truncated := tp.TruncateText(text, 7)

	if !utf8.ValidString(truncated) {
		t.Errorf("truncated text is not valid UTF-8: %q", truncated)
	}
	if len(truncated) > 7 {
		t.Errorf("truncated text exceeds limit: %d bytes", len(truncated))
	}
}

func TestTruncateTextNoLimit(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	if got := tp.TruncateText("hello", 0); got != "hello" {
		t.Errorf("expected text unchanged, got %q", got)
	}
}

func TestSanitizeUTF8DropsInvalidBytes(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	sanitized := tp.SanitizeUTF8("valid\xff\xfetext")

	if !utf8.ValidString(sanitized) {
		t.Errorf("sanitized text is not valid UTF-8: %q", sanitized)
	}
	if !strings.Contains(sanitized, "valid") || !strings.Contains(sanitized, "text") {
		t.Errorf("sanitization lost valid content: %q", sanitized)
	}
}

func TestNormalizeUnicodeFoldsStylisticVariants(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	// Fullwidth "ｕｒｇｅｎｔ" should fold to plain ASCII.
	if got := tp.NormalizeUnicode("ｕｒｇｅｎｔ"); got != "urgent" {
		t.Errorf("expected %q, got %q", "urgent", got)
	}
}
