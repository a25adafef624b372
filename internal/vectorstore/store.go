package vectorstore

import "context"

// Metadata keys persisted with every chunk. The document contract requires
// title, source_url, content_type and last_update for citation rendering;
// doc_id keys chunk deletion to the owning document.
const (
	MetaTitle       = "title"
	MetaSourceURL   = "source_url"
	MetaContentType = "content_type"
	MetaLastUpdate  = "last_update"
	MetaDocumentID  = "doc_id"
	MetaChunkIndex  = "chunk_index"
	MetaTotalChunks = "total_chunks"
)

// GetResult holds stored chunks as parallel arrays, one entry per chunk.
type GetResult struct {
	IDs       []string
	Documents []string
	Metadatas []map[string]any
}

// QueryResult groups nearest-neighbour matches per submitted query text: the
// outer arrays have one entry per query, the inner arrays one entry per match.
type QueryResult struct {
	IDs       [][]string
	Documents [][]string
	Metadatas [][]map[string]any
	Distances [][]float64
}

// Embedder produces vector representations for stored documents and queries.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
	GenerateBatchEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

// Store is an opaque KNN chunk store. Callers never see vectors: documents
// and query texts are embedded inside the store.
type Store interface {
	// Get returns up to limit stored chunks; limit <= 0 returns all.
	Get(ctx context.Context, limit int) (*GetResult, error)
	// Upsert inserts or replaces chunks by id. The three slices are parallel.
	Upsert(ctx context.Context, ids []string, documents []string, metadatas []map[string]any) error
	// Delete removes the chunks with the given ids.
	Delete(ctx context.Context, ids []string) error
	// DeleteByDocument removes every chunk whose doc_id metadata matches.
	DeleteByDocument(ctx context.Context, docID string) error
	// Query runs a nearest-neighbour search for each query text and returns
	// one result group per text, each holding at most nResults matches.
	Query(ctx context.Context, queryTexts []string, nResults int) (*QueryResult, error)
}
