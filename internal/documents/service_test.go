package documents

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/careerkb/kb-agent/internal/convert"
	"github.com/careerkb/kb-agent/internal/vectorstore"
	"github.com/careerkb/kb-agent/internal/vectorstore/memory"
)

// wordTokens counts whitespace-separated words as tokens.
type wordTokens struct{}

func (wordTokens) CountTokens(text string) int {
	return len(strings.Fields(text))
}

func (wordTokens) EncodeWindow(text string, maxTokens, overlapTokens int) []string {
	words := strings.Fields(text)
	var windows []string
	for start := 0; start < len(words); {
		end := start + maxTokens
		if end > len(words) {
			end = len(words)
		}
		windows = append(windows, strings.Join(words[start:end], " "))
		if end == len(words) {
			break
		}
		start = end - overlapTokens
	}
	return windows
}

type stubEmbedder struct{}

func (stubEmbedder) GenerateEmbedding(context.Context, string) ([]float32, error) {
	return []float32{1, 0}, nil
}

func (s stubEmbedder) GenerateBatchEmbeddings(_ context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = []float32{1, 0}
	}
	return vectors, nil
}

type fakeConverter struct {
	markdown string
	err      error
}

func (f *fakeConverter) Convert(_ context.Context, url string) (*convert.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &convert.Result{
		Markdown:    f.markdown,
		SourceURL:   url,
		ContentType: convert.TypeHTML,
	}, nil
}

func newTestService(converter Converter) (*Service, *memory.Store) {
	store := memory.NewStore(stubEmbedder{})
	return NewService(store, converter, wordTokens{}, 10, 2), store
}

func TestCreate_IndexesChunksWithMetadata(t *testing.T) {
	converter := &fakeConverter{markdown: "# Intro\n\nwelcome text\n\n## Details\n\nmore detailed text here"}
	service, store := newTestService(converter)

	result, err := service.Create(context.Background(), CreateDocumentRequest{
		Title: "Career Guide",
		URL:   "https://example.com/guide",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if !strings.HasPrefix(result.ID, "doc-career-guide-") {
		t.Errorf("Unexpected document id: %q", result.ID)
	}
	if result.Chunks == 0 {
		t.Fatal("Expected at least one chunk")
	}

	stored, err := store.Get(context.Background(), 0)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(stored.IDs) != result.Chunks {
		t.Errorf("Expected %d stored chunks, got %d", result.Chunks, len(stored.IDs))
	}
	for i, metadata := range stored.Metadatas {
		if metadata[vectorstore.MetaDocumentID] != result.ID {
			t.Errorf("Chunk %d missing doc_id metadata: %v", i, metadata)
		}
		if metadata[vectorstore.MetaTitle] != "Career Guide" {
			t.Errorf("Chunk %d missing title metadata: %v", i, metadata)
		}
		if metadata[vectorstore.MetaSourceURL] != "https://example.com/guide" {
			t.Errorf("Chunk %d missing source_url metadata: %v", i, metadata)
		}
	}
}

func TestUpdate_ReplacesPreviousChunks(t *testing.T) {
	converter := &fakeConverter{markdown: "# One\n\nfirst version body with many words repeated over and over to force several chunks in the store"}
	service, store := newTestService(converter)

	created, err := service.Create(context.Background(), CreateDocumentRequest{
		Title: "Notes",
		URL:   "https://example.com/notes",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	converter.markdown = "# One\n\nshort"
	updated, err := service.Update(context.Background(), UpdateDocumentRequest{
		ID:    created.ID,
		Title: "Notes",
		URL:   "https://example.com/notes",
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.ID != created.ID {
		t.Errorf("Update changed document id: %q vs %q", updated.ID, created.ID)
	}

	stored, _ := store.Get(context.Background(), 0)
	if len(stored.IDs) != updated.Chunks {
		t.Errorf("Stale chunks left behind: %d stored, %d expected", len(stored.IDs), updated.Chunks)
	}
}

func TestCreate_ConversionFailure(t *testing.T) {
	converter := &fakeConverter{err: errors.New("fetch failed")}
	service, _ := newTestService(converter)

	_, err := service.Create(context.Background(), CreateDocumentRequest{
		Title: "Broken",
		URL:   "https://example.com/broken",
	})
	if err == nil {
		t.Fatal("Expected error when conversion fails")
	}
}

func TestCreate_EmptyMarkdownProducesError(t *testing.T) {
	converter := &fakeConverter{markdown: "   \n\n  "}
	service, _ := newTestService(converter)

	_, err := service.Create(context.Background(), CreateDocumentRequest{
		Title: "Empty",
		URL:   "https://example.com/empty",
	})
	if err == nil {
		t.Fatal("Expected error for document with no chunks")
	}
}

func TestList_GroupsChunksByDocument(t *testing.T) {
	converter := &fakeConverter{markdown: "# A\n\nbody text"}
	service, _ := newTestService(converter)

	first, err := service.Create(context.Background(), CreateDocumentRequest{Title: "First", URL: "https://example.com/a"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	second, err := service.Create(context.Background(), CreateDocumentRequest{Title: "Second", URL: "https://example.com/b"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	list, err := service.List(context.Background(), 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if list.Total != 2 {
		t.Fatalf("Expected 2 documents, got %d", list.Total)
	}
	if list.Documents[0].ID != first.ID || list.Documents[1].ID != second.ID {
		t.Errorf("Unexpected order: %+v", list.Documents)
	}
	if list.Documents[0].Title != "First" || list.Documents[1].Title != "Second" {
		t.Errorf("Titles not aggregated: %+v", list.Documents)
	}
}

func TestDelete_RemovesAllChunks(t *testing.T) {
	converter := &fakeConverter{markdown: "# A\n\nbody text"}
	service, store := newTestService(converter)

	created, err := service.Create(context.Background(), CreateDocumentRequest{Title: "Gone", URL: "https://example.com/gone"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := service.Delete(context.Background(), created.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	stored, _ := store.Get(context.Background(), 0)
	if len(stored.IDs) != 0 {
		t.Errorf("Expected empty store, got %v", stored.IDs)
	}
}

func TestValidate_Requests(t *testing.T) {
	create := CreateDocumentRequest{Title: "", URL: "https://example.com"}
	if err := create.Validate(); err == nil {
		t.Error("Expected error for empty title")
	}

	create = CreateDocumentRequest{Title: "T", URL: "not a url"}
	if err := create.Validate(); err == nil {
		t.Error("Expected error for invalid url")
	}

	create = CreateDocumentRequest{Title: "T", URL: "ftp://example.com/file"}
	if err := create.Validate(); err == nil {
		t.Error("Expected error for non-http scheme")
	}

	update := UpdateDocumentRequest{ID: "", Title: "T", URL: "https://example.com"}
	if err := update.Validate(); err == nil {
		t.Error("Expected error for empty id")
	}

	update = UpdateDocumentRequest{ID: "doc-1", Title: "T", URL: "https://example.com"}
	if err := update.Validate(); err != nil {
		t.Errorf("Expected valid request, got %v", err)
	}
}

func TestGenerateDocumentID_Sanitizes(t *testing.T) {
	id := GenerateDocumentID("  Career / Growth: 2025!  ")
	if !strings.HasPrefix(id, "doc-career-growth-2025-") {
		t.Errorf("Unexpected id: %q", id)
	}

	long := GenerateDocumentID(strings.Repeat("verylongtitle", 20))
	parts := strings.SplitN(strings.TrimPrefix(long, "doc-"), "-", 2)
	if len(parts[0]) > 50 {
		t.Errorf("Slug not truncated: %q", long)
	}
}
