package tokenizer

import (
	"github.com/pkoukk/tiktoken-go"
	"github.com/rs/zerolog/log"
)

// EncodingName is the fixed BPE vocabulary used for all chunk sizing.
// Keeping it constant guarantees stable chunk sizes across calls.
const EncodingName = "cl100k_base"

// approxCharsPerToken backs the size approximation used when the BPE
// encoding is unavailable.
const approxCharsPerToken = 4

// encoding is the subset of the tiktoken API the tokenizer relies on.
type encoding interface {
	Encode(text string, allowedSpecial []string, disallowedSpecial []string) []int
	Decode(tokens []int) string
}

// Tokenizer counts and slices text in model tokens. A Tokenizer with no
// underlying encoding still works, it degrades to a character-based
// approximation instead of failing.
type Tokenizer struct {
	enc encoding
}

func New() *Tokenizer {
	enc, err := tiktoken.GetEncoding(EncodingName)
	if err != nil {
		log.Warn().Err(err).Str("encoding", EncodingName).Msg("Tokenizer unavailable, using character approximation")
		return &Tokenizer{}
	}
	return &Tokenizer{enc: enc}
}

// CountTokens returns the number of tokens in text. It never fails: without
// an encoding it approximates with ceil(len/4).
func (t *Tokenizer) CountTokens(text string) int {
	if t.enc == nil {
		return approxTokens(text)
	}
	return len(t.enc.Encode(text, nil, nil))
}

// EncodeWindow slices text into successive windows of at most maxTokens
// tokens, each window starting maxTokens-overlapTokens after the previous so
// consecutive windows share overlapTokens tokens of context. The final
// window may be shorter. Overlap is clamped so the window start never moves
// backwards or goes negative.
func (t *Tokenizer) EncodeWindow(text string, maxTokens, overlapTokens int) []string {
	if text == "" || maxTokens <= 0 {
		return nil
	}
	if overlapTokens < 0 {
		overlapTokens = 0
	}
	if overlapTokens >= maxTokens {
		overlapTokens = maxTokens - 1
	}

	if t.enc == nil {
		return windowRunes(text, maxTokens, overlapTokens)
	}

	ids := t.enc.Encode(text, nil, nil)
	var windows []string
	start := 0
	for start < len(ids) {
		end := start + maxTokens
		if end > len(ids) {
			end = len(ids)
		}
		windows = append(windows, t.enc.Decode(ids[start:end]))
		if end == len(ids) {
			break
		}
		start = end - overlapTokens
		if start < 0 {
			start = 0
		}
	}
	return windows
}

func approxTokens(text string) int {
	return (len(text) + approxCharsPerToken - 1) / approxCharsPerToken
}

// windowRunes mirrors the token-window slicing on runes, with the same
// 4-chars-per-token approximation as approxTokens.
func windowRunes(text string, maxTokens, overlapTokens int) []string {
	runes := []rune(text)
	size := maxTokens * approxCharsPerToken
	overlap := overlapTokens * approxCharsPerToken

	var windows []string
	start := 0
	for start < len(runes) {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		windows = append(windows, string(runes[start:end]))
		if end == len(runes) {
			break
		}
		start = end - overlap
		if start < 0 {
			start = 0
		}
	}
	return windows
}
