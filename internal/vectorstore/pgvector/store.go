package pgvector

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	"github.com/rs/zerolog/log"

	"github.com/careerkb/kb-agent/internal/vectorstore"
)

type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	SSLMode  string
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=%s", c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode)
}

// Store keeps chunks in a pgvector-backed table and embeds documents and
// queries through the configured embedder, so callers only deal in text.
type Store struct {
	Pool     *pgxpool.Pool
	embedder vectorstore.Embedder
}

var _ vectorstore.Store = (*Store)(nil)

func New(ctx context.Context, config Config, embedder vectorstore.Embedder) (*Store, error) {
	pool, err := pgxpool.New(ctx, config.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &Store{
		Pool:     pool,
		embedder: embedder,
	}, nil
}

// NewWithBackoff retries the initial connect, doubling the wait between
// attempts.
func NewWithBackoff(ctx context.Context, config Config, embedder vectorstore.Embedder, maxRetries int) (*Store, error) {
	var store *Store
	var err error

	for attempt := 1; attempt <= maxRetries; attempt++ {
		store, err = New(ctx, config, embedder)
		if err == nil {
			if pingErr := store.Pool.Ping(ctx); pingErr == nil {
				return store, nil
			} else {
				err = pingErr
				store.Pool.Close()
			}
		}

		log.Warn().Err(err).Int("attempt", attempt).Int("max_retries", maxRetries).Msg("Database connection failed")
		if attempt < maxRetries {
			time.Sleep(time.Duration(1<<uint(attempt-1)) * time.Second)
		}
	}

	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxRetries, err)
}

func (s *Store) Close() {
	s.Pool.Close()
}

func (s *Store) Get(ctx context.Context, limit int) (*vectorstore.GetResult, error) {
	query := `
		SELECT id, content, metadata
		FROM document_chunks
		ORDER BY created_at, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch chunks: %w", err)
	}
	defer rows.Close()

	result := &vectorstore.GetResult{}
	for rows.Next() {
		var id, content string
		var metadataJSON []byte

		if err := rows.Scan(&id, &content, &metadataJSON); err != nil {
			return nil, fmt.Errorf("failed to scan chunk row: %w", err)
		}

		result.IDs = append(result.IDs, id)
		result.Documents = append(result.Documents, content)
		result.Metadatas = append(result.Metadatas, unmarshalMetadata(metadataJSON))
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return result, nil
}

func (s *Store) Upsert(ctx context.Context, ids []string, documents []string, metadatas []map[string]any) error {
	if len(ids) != len(documents) || len(ids) != len(metadatas) {
		return fmt.Errorf("upsert requires parallel slices: %d ids, %d documents, %d metadatas", len(ids), len(documents), len(metadatas))
	}
	if len(ids) == 0 {
		return nil
	}

	embeddings, err := s.embedder.GenerateBatchEmbeddings(ctx, documents)
	if err != nil {
		return fmt.Errorf("failed to generate embeddings: %w", err)
	}

	// All chunks land in a single transaction so a document is never
	// observed half-written.
	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO document_chunks (id, content, embedding, metadata, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (id) DO UPDATE
		SET content = EXCLUDED.content,
		    embedding = EXCLUDED.embedding,
		    metadata = EXCLUDED.metadata`

	for i, id := range ids {
		metadataJSON, err := json.Marshal(metadatas[i])
		if err != nil {
			return fmt.Errorf("failed to marshal metadata for chunk %s: %w", id, err)
		}

		vector := pgvector.NewVector(embeddings[i])
		if _, err := tx.Exec(ctx, query, id, documents[i], vector, metadataJSON); err != nil {
			return fmt.Errorf("failed to upsert chunk %s: %w", id, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (s *Store) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	query := `DELETE FROM document_chunks WHERE id = ANY($1)`
	if _, err := s.Pool.Exec(ctx, query, ids); err != nil {
		return fmt.Errorf("failed to delete chunks: %w", err)
	}
	return nil
}

func (s *Store) DeleteByDocument(ctx context.Context, docID string) error {
	query := `DELETE FROM document_chunks WHERE metadata->>'doc_id' = $1`

	result, err := s.Pool.Exec(ctx, query, docID)
	if err != nil {
		return fmt.Errorf("failed to delete chunks for document %s: %w", docID, err)
	}

	if result.RowsAffected() == 0 {
		log.Warn().Str("doc_id", docID).Msg("No chunks found for document")
	} else {
		log.Info().Str("doc_id", docID).Int64("chunks", result.RowsAffected()).Msg("Document chunks deleted")
	}

	return nil
}

func (s *Store) Query(ctx context.Context, queryTexts []string, nResults int) (*vectorstore.QueryResult, error) {
	if nResults <= 0 {
		return nil, fmt.Errorf("nResults must be positive, got %d", nResults)
	}

	result := &vectorstore.QueryResult{}
	for _, text := range queryTexts {
		ids, documents, metadatas, distances, err := s.queryOne(ctx, text, nResults)
		if err != nil {
			return nil, err
		}
		result.IDs = append(result.IDs, ids)
		result.Documents = append(result.Documents, documents)
		result.Metadatas = append(result.Metadatas, metadatas)
		result.Distances = append(result.Distances, distances)
	}
	return result, nil
}

func (s *Store) queryOne(ctx context.Context, text string, nResults int) ([]string, []string, []map[string]any, []float64, error) {
	embedding, err := s.embedder.GenerateEmbedding(ctx, text)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to embed query: %w", err)
	}

	query := `
		SELECT id, content, metadata, embedding <=> $1 AS distance
		FROM document_chunks
		ORDER BY distance ASC
		LIMIT $2`

	rows, err := s.Pool.Query(ctx, query, pgvector.NewVector(embedding), nResults)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to query chunks: %w", err)
	}
	defer rows.Close()

	var ids, documents []string
	var metadatas []map[string]any
	var distances []float64

	for rows.Next() {
		var id, content string
		var metadataJSON []byte
		var distance float64

		if err := rows.Scan(&id, &content, &metadataJSON, &distance); err != nil {
			return nil, nil, nil, nil, fmt.Errorf("failed to scan result row: %w", err)
		}

		ids = append(ids, id)
		documents = append(documents, content)
		metadatas = append(metadatas, unmarshalMetadata(metadataJSON))
		distances = append(distances, distance)
	}

	if err := rows.Err(); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("row iteration error: %w", err)
	}

	return ids, documents, metadatas, distances, nil
}

func unmarshalMetadata(data []byte) map[string]any {
	metadata := map[string]any{}
	if len(data) == 0 {
		return metadata
	}
	if err := json.Unmarshal(data, &metadata); err != nil {
		log.Warn().Err(err).Msg("Failed to unmarshal chunk metadata")
	}
	return metadata
}
