// Package documents manages the admin side of the knowledge base:
// fetching sources, chunking them, and keeping the vector store in sync.
package documents

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/careerkb/kb-agent/internal/chunking"
	"github.com/careerkb/kb-agent/internal/convert"
	"github.com/careerkb/kb-agent/internal/vectorstore"
)

// Converter turns a source URL into markdown.
type Converter interface {
	Convert(ctx context.Context, url string) (*convert.Result, error)
}

// Service implements document ingestion and administration on top of
// the vector store.
type Service struct {
	store         vectorstore.Store
	converter     Converter
	tokens        chunking.TokenCounter
	maxTokens     int
	overlapTokens int
}

func NewService(store vectorstore.Store, converter Converter, tokens chunking.TokenCounter, maxTokens, overlapTokens int) *Service {
	if maxTokens <= 0 {
		maxTokens = chunking.DefaultMaxTokens
	}
	if overlapTokens < 0 {
		overlapTokens = chunking.DefaultOverlapTokens
	}
	return &Service{
		store:         store,
		converter:     converter,
		tokens:        tokens,
		maxTokens:     maxTokens,
		overlapTokens: overlapTokens,
	}
}

// List aggregates stored chunks into per-document summaries, in first
// indexed order.
func (s *Service) List(ctx context.Context, limit int) (*ListDocumentsResponse, error) {
	result, err := s.store.Get(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	var order []string
	byID := make(map[string]*DocumentSummary)

	for i := range result.IDs {
		metadata := map[string]any{}
		if i < len(result.Metadatas) && result.Metadatas[i] != nil {
			metadata = result.Metadatas[i]
		}

		docID := metaString(metadata, vectorstore.MetaDocumentID)
		if docID == "" {
			docID = result.IDs[i]
		}

		summary, ok := byID[docID]
		if !ok {
			summary = &DocumentSummary{
				ID:          docID,
				Title:       metaString(metadata, vectorstore.MetaTitle),
				ContentType: metaString(metadata, vectorstore.MetaContentType),
				SourceURL:   metaString(metadata, vectorstore.MetaSourceURL),
				LastUpdate:  metaString(metadata, vectorstore.MetaLastUpdate),
			}
			byID[docID] = summary
			order = append(order, docID)
		}
		summary.Chunks++
	}

	response := &ListDocumentsResponse{Documents: []DocumentSummary{}}
	for _, docID := range order {
		response.Documents = append(response.Documents, *byID[docID])
	}
	response.Total = len(response.Documents)
	return response, nil
}

// Create indexes a new document under a generated ID.
func (s *Service) Create(ctx context.Context, request CreateDocumentRequest) (*IngestResult, error) {
	docID := GenerateDocumentID(request.Title)
	return s.ingest(ctx, docID, strings.TrimSpace(request.Title), request.URL)
}

// Update reindexes an existing document, replacing all of its chunks.
func (s *Service) Update(ctx context.Context, request UpdateDocumentRequest) (*IngestResult, error) {
	return s.ingest(ctx, strings.TrimSpace(request.ID), strings.TrimSpace(request.Title), request.URL)
}

// Delete removes every chunk belonging to a document.
func (s *Service) Delete(ctx context.Context, docID string) error {
	if err := s.store.DeleteByDocument(ctx, docID); err != nil {
		return fmt.Errorf("failed to delete document %s: %w", docID, err)
	}
	return nil
}

// ingest runs the full pipeline for one document: fetch and convert the
// source, chunk the markdown, drop stale chunks, and store the new set.
func (s *Service) ingest(ctx context.Context, docID, title, url string) (*IngestResult, error) {
	converted, err := s.converter.Convert(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to convert document: %w", err)
	}

	chunks := chunking.ChunkMarkdown(s.tokens, converted.Markdown, title, converted.SourceURL, s.maxTokens, s.overlapTokens)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("document %s produced no chunks", docID)
	}

	lastUpdate := time.Now().UTC().Format(time.RFC3339)

	ids := make([]string, len(chunks))
	contents := make([]string, len(chunks))
	metadatas := make([]map[string]any, len(chunks))
	for i, chunk := range chunks {
		ids[i] = fmt.Sprintf("%s-%d", docID, chunk.Index)
		contents[i] = chunk.Content
		metadatas[i] = map[string]any{
			vectorstore.MetaDocumentID:  docID,
			vectorstore.MetaTitle:       title,
			vectorstore.MetaContentType: string(converted.ContentType),
			vectorstore.MetaSourceURL:   converted.SourceURL,
			vectorstore.MetaLastUpdate:  lastUpdate,
			vectorstore.MetaChunkIndex:  chunk.Index,
			vectorstore.MetaTotalChunks: chunk.TotalChunks,
		}
	}

	// Remove stale chunks first so a shrinking document leaves nothing
	// behind. A failed cleanup is not fatal for reindexing.
	if err := s.store.DeleteByDocument(ctx, docID); err != nil {
		log.Warn().Err(err).Str("doc_id", docID).Msg("Failed to remove stale chunks before reindex")
	}

	if err := s.store.Upsert(ctx, ids, contents, metadatas); err != nil {
		return nil, fmt.Errorf("failed to store document chunks: %w", err)
	}

	log.Info().
		Str("doc_id", docID).
		Str("title", title).
		Int("chunks", len(chunks)).
		Msg("Document indexed")

	return &IngestResult{
		ID:          docID,
		Title:       title,
		ContentType: string(converted.ContentType),
		SourceURL:   converted.SourceURL,
		LastUpdate:  lastUpdate,
		Chunks:      len(chunks),
		Size:        len(converted.Markdown),
	}, nil
}

var docIDInvalidChars = regexp.MustCompile(`[^a-z0-9]+`)

// GenerateDocumentID builds a readable unique document ID from the
// title and the current time.
func GenerateDocumentID(title string) string {
	slug := docIDInvalidChars.ReplaceAllString(strings.ToLower(title), "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > 50 {
		slug = strings.Trim(slug[:50], "-")
	}
	if slug == "" {
		slug = "document"
	}
	return fmt.Sprintf("doc-%s-%d", slug, time.Now().UnixMilli())
}

func metaString(metadata map[string]any, key string) string {
	if value, ok := metadata[key].(string); ok {
		return value
	}
	return ""
}
