package chunking

import (
	"strings"
)

// TokenCounter sizes and slices text in model tokens.
type TokenCounter interface {
	CountTokens(text string) int
	EncodeWindow(text string, maxTokens, overlapTokens int) []string
}

// Fallback defaults when the configured budget is unusable.
const (
	DefaultMaxTokens     = 2000
	DefaultOverlapTokens = 200
)

// DefaultSeparators orders split boundaries from coarsest to finest:
// paragraph break, line break, single space, then character level. The empty
// separator stands for the raw token-window fallback.
func DefaultSeparators() []string {
	return []string{"\n\n", "\n", " ", ""}
}

// RecursiveChunker splits section text on a priority list of separators until
// every piece fits the token budget, falling back to token-window slicing
// with overlap for text no separator can break.
type RecursiveChunker struct {
	tokens        TokenCounter
	maxTokens     int
	overlapTokens int
}

func NewRecursiveChunker(tokens TokenCounter, maxTokens, overlapTokens int) *RecursiveChunker {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	if overlapTokens < 0 {
		overlapTokens = 0
	}
	return &RecursiveChunker{
		tokens:        tokens,
		maxTokens:     maxTokens,
		overlapTokens: overlapTokens,
	}
}

// Chunk splits sectionText into pieces of at most the configured token
// budget. Pieces keep natural boundaries as long as possible; only
// unbreakable text is hard-sliced, and only those slices carry overlap.
func (c *RecursiveChunker) Chunk(sectionText string) []string {
	var out []string
	c.split(sectionText, DefaultSeparators(), &out)
	return out
}

// Recursion depth is bounded by the separator list length, which is fixed
// and small.
func (c *RecursiveChunker) split(text string, separators []string, out *[]string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	if c.tokens.CountTokens(text) <= c.maxTokens {
		*out = append(*out, strings.TrimSpace(text))
		return
	}
	if len(separators) == 0 {
		for _, window := range c.tokens.EncodeWindow(text, c.maxTokens, c.overlapTokens) {
			if trimmed := strings.TrimSpace(window); trimmed != "" {
				*out = append(*out, trimmed)
			}
		}
		return
	}

	sep, rest := separators[0], separators[1:]
	if sep == "" || !strings.Contains(text, sep) {
		c.split(text, rest, out)
		return
	}

	parts := strings.Split(text, sep)
	if len(parts) == 1 {
		c.split(text, rest, out)
		return
	}

	// Greedily pack parts back together; flush a full buffer into the next,
	// narrower separator level.
	buffer := ""
	for _, part := range parts {
		candidate := part
		if buffer != "" {
			candidate = buffer + sep + part
		}
		if c.tokens.CountTokens(candidate) > c.maxTokens && buffer != "" {
			c.split(buffer, rest, out)
			buffer = part
		} else {
			buffer = candidate
		}
	}
	if buffer != "" {
		c.split(buffer, rest, out)
	}
}
