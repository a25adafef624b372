package chunking

import (
	"fmt"
	"strings"
)

// Chunk is an ordered, uniquely identified unit of document text, ready for
// embedding and retrieval.
type Chunk struct {
	ID          string
	Index       int
	TotalChunks int
	Content     string
	Title       string
	Source      string
}

// Assemble re-indexes raw text pieces into chunk records. Pieces that are
// empty after trimming are dropped; indices are dense and 0-based over the
// cleaned list; ids derive from title and index. Pure and idempotent: the
// same pieces always yield the same records.
func Assemble(title, source string, pieces []string) []Chunk {
	cleaned := make([]string, 0, len(pieces))
	for _, piece := range pieces {
		if trimmed := strings.TrimSpace(piece); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}

	chunks := make([]Chunk, 0, len(cleaned))
	for index, content := range cleaned {
		chunks = append(chunks, Chunk{
			ID:          fmt.Sprintf("%s-%d", title, index),
			Index:       index,
			TotalChunks: len(cleaned),
			Content:     content,
			Title:       title,
			Source:      source,
		})
	}
	return chunks
}

// ChunkMarkdown runs the full chunking pipeline over a markdown document:
// structural split by headings, recursive chunking of each section, then
// assembly into indexed chunk records.
func ChunkMarkdown(tokens TokenCounter, markdown, title, source string, maxTokens, overlapTokens int) []Chunk {
	chunker := NewRecursiveChunker(tokens, maxTokens, overlapTokens)

	var pieces []string
	for _, section := range SplitByHeadings(markdown) {
		sectionText := strings.TrimSpace(section.Heading + "\n" + section.Body)
		pieces = append(pieces, chunker.Chunk(sectionText)...)
	}
	return Assemble(title, source, pieces)
}
