package tokenizer

import (
	"strings"
	"testing"
)

// fakeEncoding maps every word to one token id so window boundaries are easy
// to reason about.
type fakeEncoding struct {
	words []string
}

func (f *fakeEncoding) Encode(text string, _, _ []string) []int {
	f.words = strings.Fields(text)
	ids := make([]int, len(f.words))
	for i := range ids {
		ids[i] = i
	}
	return ids
}

func (f *fakeEncoding) Decode(tokens []int) string {
	out := make([]string, 0, len(tokens))
	for _, id := range tokens {
		out = append(out, f.words[id])
	}
	return strings.Join(out, " ")
}

func TestCountTokens_WithEncoding(t *testing.T) {
	tok := &Tokenizer{enc: &fakeEncoding{}}

	count := tok.CountTokens("one two three")
	if count != 3 {
		t.Errorf("Expected 3 tokens, got %d", count)
	}
}

func TestCountTokens_FallbackApproximation(t *testing.T) {
	tok := &Tokenizer{} // no encoding

	// ceil(10/4) = 3
	if count := tok.CountTokens("aaaaaaaaaa"); count != 3 {
		t.Errorf("Expected approximate count 3, got %d", count)
	}
	if count := tok.CountTokens(""); count != 0 {
		t.Errorf("Expected 0 for empty text, got %d", count)
	}
}

func TestEncodeWindow_OverlappingWindows(t *testing.T) {
	tok := &Tokenizer{enc: &fakeEncoding{}}

	// 10 words, windows of 4 with overlap 1: starts at 0, 3, 6, 9
	text := "w0 w1 w2 w3 w4 w5 w6 w7 w8 w9"
	windows := tok.EncodeWindow(text, 4, 1)

	expected := []string{"w0 w1 w2 w3", "w3 w4 w5 w6", "w6 w7 w8 w9"}
	if len(windows) != len(expected) {
		t.Fatalf("Expected %d windows, got %d: %v", len(expected), len(windows), windows)
	}
	for i, want := range expected {
		if windows[i] != want {
			t.Errorf("Window %d: expected %q, got %q", i, want, windows[i])
		}
	}
}

func TestEncodeWindow_FinalWindowShorter(t *testing.T) {
	tok := &Tokenizer{enc: &fakeEncoding{}}

	windows := tok.EncodeWindow("a b c d e", 3, 0)
	if len(windows) != 2 {
		t.Fatalf("Expected 2 windows, got %d: %v", len(windows), windows)
	}
	if windows[1] != "d e" {
		t.Errorf("Expected final short window 'd e', got %q", windows[1])
	}
}

func TestEncodeWindow_ClampsOverlap(t *testing.T) {
	tok := &Tokenizer{enc: &fakeEncoding{}}

	// Overlap >= maxTokens would never advance; must still terminate.
	windows := tok.EncodeWindow("a b c d e f", 2, 5)
	if len(windows) == 0 {
		t.Fatal("Expected windows, got none")
	}

	// Negative overlap behaves as zero.
	windows = tok.EncodeWindow("a b c d", 2, -3)
	if len(windows) != 2 {
		t.Errorf("Expected 2 windows with clamped overlap, got %d", len(windows))
	}
}

func TestEncodeWindow_FallbackWithoutEncoding(t *testing.T) {
	tok := &Tokenizer{}

	// 2 tokens * 4 chars = 8-char windows over 20 chars.
	text := strings.Repeat("x", 20)
	windows := tok.EncodeWindow(text, 2, 0)
	if len(windows) != 3 {
		t.Fatalf("Expected 3 windows, got %d", len(windows))
	}
	if len(windows[0]) != 8 || len(windows[2]) != 4 {
		t.Errorf("Unexpected window sizes: %d, %d, %d", len(windows[0]), len(windows[1]), len(windows[2]))
	}
}

func TestEncodeWindow_EmptyInput(t *testing.T) {
	tok := &Tokenizer{enc: &fakeEncoding{}}

	if windows := tok.EncodeWindow("", 4, 1); windows != nil {
		t.Errorf("Expected nil for empty text, got %v", windows)
	}
	if windows := tok.EncodeWindow("a b", 0, 0); windows != nil {
		t.Errorf("Expected nil for non-positive budget, got %v", windows)
	}
}
