// Package convert turns remote documents (HTML pages, PDFs, JSON APIs)
// into clean markdown ready for chunking and indexing.
package convert

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tsawler/tabula"

	"github.com/careerkb/kb-agent/internal/bedrock"
)

// Prompts per content type. The model receives the pre-processed text
// and returns plain markdown without code fences.
const (
	pdfPrompt = `Extract all information from this PDF content and convert it to clean and structured markdown:
1. Preserve headings, lists, table, and document structure using proper markdown header, list, and table syntax
2. Use the following markdown header in a hierarchical manner: #, ##, ###
3. Include essential details while removing irrelevant content
4. Format tables using markdown syntax
5. No additional comments, just the converted content without triple backtick codeblock`

	jsonPrompt = `Extract all information from this JSON data and convert it to clean markdown table:
1. Convert arrays of objects to markdown tables with proper markdown headers and table syntax
2. Use just one header(#) for title
3. Identify table header and plot the data according to it
4. No additional comments, just the converted content without triple backtick codeblock`

	htmlPrompt = `Extract all information from this HTML content and convert it to clean and structured markdown:
1. Preserve headings, lists, table, and document structure using proper markdown header, list, and table syntax
2. Use the following markdown header in a hierarchical manner: #, ##, ###
3. Remove irrelevant elements and formatting
4. Exclude navigation, header, and footer elements
5. No additional comments or HTML tags, just the converted content without triple backtick codeblock`
)

const (
	conversionMaxTokens   = 8192
	conversionTemperature = 0.1
)

// ModelClient is the model call needed for markdown conversion.
type ModelClient interface {
	InvokeModel(ctx context.Context, request bedrock.ClaudeRequest) (*bedrock.ClaudeResponse, error)
}

// Result is the outcome of converting a URL.
type Result struct {
	Markdown    string
	SourceURL   string
	ContentType ContentType
}

// Converter fetches a URL and rewrites its content as markdown using
// a model for cleanup and structure.
type Converter struct {
	fetcher *Fetcher
	client  ModelClient
}

func NewConverter(client ModelClient) *Converter {
	return &Converter{
		fetcher: NewFetcher(),
		client:  client,
	}
}

// Convert downloads the URL and produces markdown for its content.
func (c *Converter) Convert(ctx context.Context, url string) (*Result, error) {
	fetched, err := c.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch content: %w", err)
	}

	log.Info().
		Str("url", fetched.ResolvedURL).
		Str("content_type", string(fetched.ContentType)).
		Int("bytes", len(fetched.Body)).
		Msg("Fetched document")

	var text string
	var prompt string

	switch fetched.ContentType {
	case TypePDF:
		text, err = extractPDFText(fetched.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to extract pdf text: %w", err)
		}
		prompt = pdfPrompt
	case TypeJSON:
		text = string(fetched.Body)
		prompt = jsonPrompt
	default:
		text = cleanHTML(string(fetched.Body))
		prompt = htmlPrompt
	}

	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("no text content found at %s", fetched.ResolvedURL)
	}

	response, err := c.client.InvokeModel(ctx, bedrock.ClaudeRequest{
		System:      prompt,
		Prompt:      text,
		MaxTokens:   conversionMaxTokens,
		Temperature: conversionTemperature,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to convert content to markdown: %w", err)
	}

	markdown := strings.TrimSpace(response.Content)
	if markdown == "" {
		return nil, fmt.Errorf("model returned empty markdown for %s", fetched.ResolvedURL)
	}

	return &Result{
		Markdown:    markdown,
		SourceURL:   fetched.ResolvedURL,
		ContentType: fetched.ContentType,
	}, nil
}

// extractPDFText writes the PDF to a temp file and runs text extraction
// on it. Bedrock text models can't read PDF bytes directly.
func extractPDFText(body []byte) (string, error) {
	dir, err := os.MkdirTemp("", "kb-agent-pdf")
	if err != nil {
		return "", fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "document.pdf")
	if err := os.WriteFile(path, body, 0o600); err != nil {
		return "", fmt.Errorf("failed to write temp pdf: %w", err)
	}

	markdown, warnings, err := tabula.Open(path).ToMarkdown()
	if err != nil {
		return "", fmt.Errorf("failed to extract pdf content: %w", err)
	}
	for _, warning := range warnings {
		log.Warn().Str("warning", warning.Message).Msg("PDF extraction warning")
	}
	return markdown, nil
}
