package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/careerkb/kb-agent/internal/vectorstore"
)

type record struct {
	id       string
	document string
	metadata map[string]any
	vector   []float32
}

// Store is a brute-force in-memory KNN store used for tests and local runs.
// It keeps chunks in insertion order and measures cosine distance.
type Store struct {
	mu       sync.RWMutex
	embedder vectorstore.Embedder
	records  []record
	index    map[string]int
}

var _ vectorstore.Store = (*Store)(nil)

func NewStore(embedder vectorstore.Embedder) *Store {
	return &Store{
		embedder: embedder,
		index:    make(map[string]int),
	}
}

func (s *Store) Get(_ context.Context, limit int) (*vectorstore.GetResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := &vectorstore.GetResult{}
	for _, rec := range s.records {
		if limit > 0 && len(result.IDs) >= limit {
			break
		}
		result.IDs = append(result.IDs, rec.id)
		result.Documents = append(result.Documents, rec.document)
		result.Metadatas = append(result.Metadatas, rec.metadata)
	}
	return result, nil
}

func (s *Store) Upsert(ctx context.Context, ids []string, documents []string, metadatas []map[string]any) error {
	if len(ids) != len(documents) || len(ids) != len(metadatas) {
		return fmt.Errorf("upsert requires parallel slices: %d ids, %d documents, %d metadatas", len(ids), len(documents), len(metadatas))
	}

	vectors, err := s.embedder.GenerateBatchEmbeddings(ctx, documents)
	if err != nil {
		return fmt.Errorf("failed to generate embeddings: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i, id := range ids {
		rec := record{
			id:       id,
			document: documents[i],
			metadata: metadatas[i],
			vector:   vectors[i],
		}
		if pos, ok := s.index[id]; ok {
			s.records[pos] = rec
			continue
		}
		s.index[id] = len(s.records)
		s.records = append(s.records, rec)
	}
	return nil
}

func (s *Store) Delete(_ context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	s.remove(func(rec record) bool {
		_, ok := drop[rec.id]
		return ok
	})
	return nil
}

func (s *Store) DeleteByDocument(_ context.Context, docID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.remove(func(rec record) bool {
		id, _ := rec.metadata[vectorstore.MetaDocumentID].(string)
		return id == docID
	})
	return nil
}

// remove filters records in place, preserving insertion order. Callers hold
// the write lock.
func (s *Store) remove(match func(record) bool) {
	kept := s.records[:0]
	for _, rec := range s.records {
		if !match(rec) {
			kept = append(kept, rec)
		}
	}
	s.records = kept

	s.index = make(map[string]int, len(s.records))
	for i, rec := range s.records {
		s.index[rec.id] = i
	}
}

func (s *Store) Query(ctx context.Context, queryTexts []string, nResults int) (*vectorstore.QueryResult, error) {
	if nResults <= 0 {
		return nil, fmt.Errorf("nResults must be positive, got %d", nResults)
	}

	result := &vectorstore.QueryResult{}
	for _, text := range queryTexts {
		vector, err := s.embedder.GenerateEmbedding(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("failed to embed query: %w", err)
		}

		ids, documents, metadatas, distances := s.nearest(vector, nResults)
		result.IDs = append(result.IDs, ids)
		result.Documents = append(result.Documents, documents)
		result.Metadatas = append(result.Metadatas, metadatas)
		result.Distances = append(result.Distances, distances)
	}
	return result, nil
}

func (s *Store) nearest(vector []float32, nResults int) ([]string, []string, []map[string]any, []float64) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type scored struct {
		pos      int
		distance float64
	}
	all := make([]scored, 0, len(s.records))
	for i, rec := range s.records {
		all = append(all, scored{pos: i, distance: cosineDistance(vector, rec.vector)})
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].distance < all[j].distance })

	if nResults > len(all) {
		nResults = len(all)
	}

	var ids, documents []string
	var metadatas []map[string]any
	var distances []float64
	for _, sc := range all[:nResults] {
		rec := s.records[sc.pos]
		ids = append(ids, rec.id)
		documents = append(documents, rec.document)
		metadatas = append(metadatas, rec.metadata)
		distances = append(distances, sc.distance)
	}
	return ids, documents, metadatas, distances
}

func cosineDistance(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}
