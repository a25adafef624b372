package chat

import (
	"context"
	"testing"
	"time"

	"github.com/careerkb/kb-agent/internal/bedrock"
	"github.com/careerkb/kb-agent/internal/rag"
	"github.com/careerkb/kb-agent/internal/vectorstore"
	"github.com/careerkb/kb-agent/internal/vectorstore/memory"
)

type fakeModelClient struct {
	answer  string
	rewrite string
	calls   int
}

func (f *fakeModelClient) InvokeModel(_ context.Context, request bedrock.ClaudeRequest) (*bedrock.ClaudeResponse, error) {
	f.calls++
	if request.System == rag.DefaultRewriterPrompt {
		return &bedrock.ClaudeResponse{Content: f.rewrite, StopReason: "end_turn"}, nil
	}
	return &bedrock.ClaudeResponse{Content: f.answer, StopReason: "end_turn"}, nil
}

func (f *fakeModelClient) InvokeModelStream(ctx context.Context, request bedrock.ClaudeRequest, callback bedrock.StreamCallback) (*bedrock.ClaudeResponse, error) {
	response, err := f.InvokeModel(ctx, request)
	if err != nil {
		return nil, err
	}
	if callback != nil {
		if err := callback(response.Content); err != nil {
			return nil, err
		}
	}
	return response, nil
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

// memoryCache is an in-process SearchCache for tests.
type memoryCache struct {
	entries map[string]*rag.QueryResult
	sets    int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string]*rag.QueryResult{}}
}

func (c *memoryCache) Get(_ context.Context, query string) (*rag.QueryResult, error) {
	return c.entries[query], nil
}

func (c *memoryCache) Set(_ context.Context, query string, result *rag.QueryResult) error {
	c.sets++
	c.entries[query] = result
	return nil
}

func (c *memoryCache) Clear(context.Context) (int, error) {
	deleted := len(c.entries)
	c.entries = map[string]*rag.QueryResult{}
	return deleted, nil
}

func newTestService(t *testing.T, client *fakeModelClient, cache SearchCache) *Service {
	t.Helper()

	store := memory.NewStore(stubEmbedder{})
	err := store.Upsert(context.Background(),
		[]string{"doc-guide-1-0", "doc-guide-1-1"},
		[]string{"chunk one", "chunk two"},
		[]map[string]any{
			{
				vectorstore.MetaDocumentID: "doc-guide-1",
				vectorstore.MetaTitle:      "Guide",
				vectorstore.MetaSourceURL:  "https://example.com/guide",
			},
			{
				vectorstore.MetaDocumentID: "doc-guide-1",
				vectorstore.MetaTitle:      "Guide",
				vectorstore.MetaSourceURL:  "https://example.com/guide",
			},
		})
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	rewriter := rag.NewRewriter(client, rag.DefaultRewriterPrompt)
	rewriter.RetryDelay = time.Millisecond
	orchestrator := rag.NewOrchestrator(store, rewriter, rag.DefaultSystemPrompt, 2)

	return NewService(client, orchestrator, cache, "anthropic.claude-3-5-sonnet")
}

func TestQuery_GroundedAnswerWithSources(t *testing.T) {
	client := &fakeModelClient{answer: "grounded answer", rewrite: "better query"}
	service := newTestService(t, client, nil)

	response, err := service.Query(context.Background(), ChatRequest{Query: "what is in the guide?", MaxTokens: 2000})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}

	if response.Content != "grounded answer" {
		t.Errorf("Unexpected content: %q", response.Content)
	}
	if response.Model != "anthropic.claude-3-5-sonnet" {
		t.Errorf("Unexpected model: %q", response.Model)
	}
	if len(response.Sources) != 1 {
		t.Fatalf("Expected one deduplicated source, got %v", response.Sources)
	}
	if response.Sources[0].URL != "https://example.com/guide" || response.Sources[0].Title != "Guide" {
		t.Errorf("Unexpected source: %+v", response.Sources[0])
	}
}

func TestQuery_UsesCacheOnRepeat(t *testing.T) {
	client := &fakeModelClient{answer: "answer", rewrite: "rewrite"}
	cache := newMemoryCache()
	service := newTestService(t, client, cache)

	if _, err := service.Query(context.Background(), ChatRequest{Query: "repeated", MaxTokens: 100}); err != nil {
		t.Fatalf("First query failed: %v", err)
	}
	callsAfterFirst := client.calls
	if cache.sets != 1 {
		t.Errorf("Expected retrieval result cached once, got %d", cache.sets)
	}

	if _, err := service.Query(context.Background(), ChatRequest{Query: "repeated", MaxTokens: 100}); err != nil {
		t.Fatalf("Second query failed: %v", err)
	}

	// Second pass should skip the rewrite call and only hit generation.
	if client.calls != callsAfterFirst+1 {
		t.Errorf("Expected one model call on cache hit, got %d extra", client.calls-callsAfterFirst)
	}
}

func TestQueryStream_DeliversSourcesAndChunks(t *testing.T) {
	client := &fakeModelClient{answer: "streamed answer", rewrite: "rewrite"}
	service := newTestService(t, client, nil)

	var gotSources []Source
	var chunks []string

	response, err := service.QueryStream(context.Background(), ChatRequest{Query: "stream it", MaxTokens: 100},
		func(sources []Source) { gotSources = sources },
		func(chunk string) error {
			chunks = append(chunks, chunk)
			return nil
		})
	if err != nil {
		t.Fatalf("QueryStream failed: %v", err)
	}

	if len(gotSources) != 1 {
		t.Errorf("Expected sources delivered before streaming, got %v", gotSources)
	}
	if len(chunks) != 1 || chunks[0] != "streamed answer" {
		t.Errorf("Unexpected chunks: %v", chunks)
	}
	if response.Content != "streamed answer" {
		t.Errorf("Unexpected final content: %q", response.Content)
	}
}

func TestClearCache(t *testing.T) {
	client := &fakeModelClient{answer: "answer", rewrite: "rewrite"}
	cache := newMemoryCache()
	service := newTestService(t, client, cache)

	if _, err := service.Query(context.Background(), ChatRequest{Query: "q", MaxTokens: 100}); err != nil {
		t.Fatalf("Query failed: %v", err)
	}

	deleted, err := service.ClearCache(context.Background())
	if err != nil {
		t.Fatalf("ClearCache failed: %v", err)
	}
	if deleted != 1 {
		t.Errorf("Expected 1 entry cleared, got %d", deleted)
	}
}

func TestClearCache_NoCacheConfigured(t *testing.T) {
	client := &fakeModelClient{answer: "answer", rewrite: "rewrite"}
	service := newTestService(t, client, nil)

	deleted, err := service.ClearCache(context.Background())
	if err != nil || deleted != 0 {
		t.Errorf("Expected no-op, got %d, %v", deleted, err)
	}
}
