package format

import (
	"html"
	"strings"
)

// MaxMessageLen is the outbound chunk boundary for Telegram text messages.
const MaxMessageLen = 4000

var markReplacer = strings.NewReplacer(
	"*", "",
	"_", " ",
	"`", "'",
	"[", "(",
	"]", ")",
)

// Sanitize neutralises characters that are structurally significant to the
// rendering layer. Markup-significant characters are escaped first, then
// formatting triggers are stripped or replaced so generated content cannot
// corrupt message structure.
func Sanitize(text string) string {
	return markReplacer.Replace(html.EscapeString(text))
}

// Chunk splits text into contiguous pieces of at most max characters,
// preserving order without overlap. Input at or under the limit yields exactly
// one piece; empty input yields none. Splitting is rune-based so multi-byte
// characters are never cut.
func Chunk(text string, max int) []string {
	if text == "" || max <= 0 {
		return nil
	}
	runes := []rune(text)
	if len(runes) <= max {
		return []string{text}
	}
	parts := make([]string, 0, (len(runes)+max-1)/max)
	for start := 0; start < len(runes); start += max {
		end := start + max
		if end > len(runes) {
			end = len(runes)
		}
		parts = append(parts, string(runes[start:end]))
	}
	return parts
}
