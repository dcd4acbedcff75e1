package format

import (
	"strings"
	"testing"
)

func TestSanitizeStripsMarks(t *testing.T) {
	got := Sanitize("a *b* _c_ `d` [e]")
	want := "a b  c  'd' (e)"
	if got != want {
		t.Fatalf("Sanitize = %q, want %q", got, want)
	}
}

func TestSanitizeEscapesMarkupFirst(t *testing.T) {
	got := Sanitize("<b>&joined</b>")
	if strings.ContainsAny(got, "<>") {
		t.Fatalf("markup characters survived: %q", got)
	}
	if !strings.Contains(got, "&amp;joined") {
		t.Fatalf("ampersand not escaped: %q", got)
	}
}

func TestChunkShortInput(t *testing.T) {
	parts := Chunk("hello", 10)
	if len(parts) != 1 || parts[0] != "hello" {
		t.Fatalf("short input must yield one piece, got %q", parts)
	}
}

func TestChunkEmptyInput(t *testing.T) {
	if parts := Chunk("", 10); parts != nil {
		t.Fatalf("empty input must yield no pieces, got %q", parts)
	}
}

func TestChunkReassembles(t *testing.T) {
	text := strings.Repeat("abcdefg", 317)
	max := 100
	parts := Chunk(text, max)

	wantCount := (len(text) + max - 1) / max
	if len(parts) != wantCount {
		t.Fatalf("pieces = %d, want %d", len(parts), wantCount)
	}
	for i, p := range parts {
		if len([]rune(p)) > max {
			t.Fatalf("piece %d exceeds limit: %d", i, len(p))
		}
	}
	if strings.Join(parts, "") != text {
		t.Fatal("concatenated pieces differ from input")
	}
}

func TestChunkMultibyteBoundary(t *testing.T) {
	text := strings.Repeat("эссе", 50)
	parts := Chunk(text, 7)
	if strings.Join(parts, "") != text {
		t.Fatal("multibyte input corrupted by chunking")
	}
	for i, p := range parts {
		if len([]rune(p)) > 7 {
			t.Fatalf("piece %d exceeds rune limit", i)
		}
	}
}
