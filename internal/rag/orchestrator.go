// Package rag implements the retrieval pipeline: query rewriting,
// multi-query similarity search with deduplication, and prompt assembly
// for grounded answering.
package rag

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/careerkb/kb-agent/internal/vectorstore"
)

// DefaultTopK is how many chunks each query variant retrieves.
const DefaultTopK = 7

// Orchestrator runs the full retrieval pipeline for a user query.
type Orchestrator struct {
	store    vectorstore.Store
	rewriter *Rewriter
	system   string
	topK     int
}

func NewOrchestrator(store vectorstore.Store, rewriter *Rewriter, systemPrompt string, topK int) *Orchestrator {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Orchestrator{
		store:    store,
		rewriter: rewriter,
		system:   systemPrompt,
		topK:     topK,
	}
}

// ProcessQuery rewrites the query, retrieves and deduplicates evidence,
// and assembles the prompts for generation.
func (o *Orchestrator) ProcessQuery(ctx context.Context, query string) (*QueryResult, error) {
	rewritten := o.rewriter.RewriteQuery(ctx, query)

	log.Debug().
		Str("query", query).
		Int("variants", len(rewritten)).
		Msg("Running similarity search")

	retrieved := o.similaritySearch(ctx, rewritten)

	return &QueryResult{
		RewrittenQueries: rewritten,
		RetrievedInfo:    retrieved,
		UserPrompt:       buildUserPrompt(query, retrieved),
		SystemPrompt:     o.system,
	}, nil
}

// similaritySearch queries the store with every variant and merges the
// result groups, keeping the first occurrence of each chunk id. A store
// failure yields an empty evidence set rather than failing the request.
func (o *Orchestrator) similaritySearch(ctx context.Context, queries []string) RetrievedInformation {
	info := RetrievedInformation{
		IDs:       []string{},
		Documents: []string{},
		Metadatas: []map[string]any{},
	}

	results, err := o.store.Query(ctx, queries, o.topK)
	if err != nil {
		log.Error().Err(err).Msg("Similarity search failed")
		return info
	}

	seen := make(map[string]bool)
	for g := range results.IDs {
		for j, id := range results.IDs[g] {
			if id == "" || seen[id] {
				continue
			}
			seen[id] = true

			info.IDs = append(info.IDs, id)
			if j < len(results.Documents[g]) {
				info.Documents = append(info.Documents, results.Documents[g][j])
			} else {
				info.Documents = append(info.Documents, "")
			}
			if j < len(results.Metadatas[g]) && results.Metadatas[g][j] != nil {
				info.Metadatas = append(info.Metadatas, results.Metadatas[g][j])
			} else {
				info.Metadatas = append(info.Metadatas, map[string]any{})
			}
		}
	}
	return info
}

// buildUserPrompt lays out the retrieved documents, their metadata, and
// the original query for the generation model.
func buildUserPrompt(query string, info RetrievedInformation) string {
	metadata, err := json.MarshalIndent(info.Metadatas, "", "  ")
	if err != nil {
		metadata = []byte("[]")
	}

	return fmt.Sprintf("Context:\n%s\n\nMetadata:\n%s\n\nOriginal Query: %s",
		strings.Join(info.Documents, "\n\n"), metadata, query)
}
