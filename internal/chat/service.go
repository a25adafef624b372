// Package chat answers user questions over the knowledge base using
// retrieval-augmented generation.
package chat

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/careerkb/kb-agent/internal/bedrock"
	"github.com/careerkb/kb-agent/internal/rag"
	"github.com/careerkb/kb-agent/internal/vectorstore"
)

// ModelClient is the generation side of the pipeline.
type ModelClient interface {
	InvokeModel(ctx context.Context, request bedrock.ClaudeRequest) (*bedrock.ClaudeResponse, error)
	InvokeModelStream(ctx context.Context, request bedrock.ClaudeRequest, callback bedrock.StreamCallback) (*bedrock.ClaudeResponse, error)
}

// SearchCache caches retrieval results per raw query. Optional.
type SearchCache interface {
	Get(ctx context.Context, query string) (*rag.QueryResult, error)
	Set(ctx context.Context, query string, result *rag.QueryResult) error
	Clear(ctx context.Context) (int, error)
}

type Service struct {
	client       ModelClient
	orchestrator *rag.Orchestrator
	cache        SearchCache
	modelID      string
}

func NewService(client ModelClient, orchestrator *rag.Orchestrator, cache SearchCache, modelID string) *Service {
	return &Service{
		client:       client,
		orchestrator: orchestrator,
		cache:        cache,
		modelID:      modelID,
	}
}

// retrieve runs the retrieval pipeline, consulting the cache first when
// one is configured. Cache failures fall through to a full retrieval.
func (s *Service) retrieve(ctx context.Context, query string) (*rag.QueryResult, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, query)
		if err != nil {
			log.Warn().Err(err).Msg("Search cache lookup failed")
		} else if cached != nil {
			log.Debug().Str("query", query).Msg("Search cache hit")
			return cached, nil
		}
	}

	result, err := s.orchestrator.ProcessQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to process query: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, query, result); err != nil {
			log.Warn().Err(err).Msg("Failed to cache search result")
		}
	}
	return result, nil
}

// Query answers a question in one shot.
func (s *Service) Query(ctx context.Context, request ChatRequest) (*ChatResponse, error) {
	retrieval, err := s.retrieve(ctx, request.Query)
	if err != nil {
		return nil, err
	}

	response, err := s.client.InvokeModel(ctx, bedrock.ClaudeRequest{
		System:      retrieval.SystemPrompt,
		Prompt:      retrieval.UserPrompt,
		MaxTokens:   request.MaxTokens,
		Temperature: request.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to invoke model: %w", err)
	}

	return &ChatResponse{
		Content:    response.Content,
		StopReason: response.StopReason,
		Model:      s.modelID,
		Sources:    collectSources(retrieval.RetrievedInfo),
	}, nil
}

// QueryStream answers a question, delivering sources up front and the
// answer incrementally through the callback.
func (s *Service) QueryStream(ctx context.Context, request ChatRequest, sources func([]Source), chunk bedrock.StreamCallback) (*ChatResponse, error) {
	retrieval, err := s.retrieve(ctx, request.Query)
	if err != nil {
		return nil, err
	}

	collected := collectSources(retrieval.RetrievedInfo)
	if sources != nil {
		sources(collected)
	}

	response, err := s.client.InvokeModelStream(ctx, bedrock.ClaudeRequest{
		System:      retrieval.SystemPrompt,
		Prompt:      retrieval.UserPrompt,
		MaxTokens:   request.MaxTokens,
		Temperature: request.Temperature,
	}, chunk)
	if err != nil {
		return nil, fmt.Errorf("failed to invoke model stream: %w", err)
	}

	return &ChatResponse{
		Content:    response.Content,
		StopReason: response.StopReason,
		Model:      s.modelID,
		Sources:    collected,
	}, nil
}

// ClearCache empties the search cache.
func (s *Service) ClearCache(ctx context.Context) (int, error) {
	if s.cache == nil {
		return 0, nil
	}
	return s.cache.Clear(ctx)
}

// collectSources lists the distinct documents behind the retrieved
// chunks, in retrieval order.
func collectSources(info rag.RetrievedInformation) []Source {
	sources := []Source{}
	seen := make(map[string]bool)

	for _, metadata := range info.Metadatas {
		url, _ := metadata[vectorstore.MetaSourceURL].(string)
		title, _ := metadata[vectorstore.MetaTitle].(string)
		if url == "" || seen[url] {
			continue
		}
		seen[url] = true
		sources = append(sources, Source{Title: title, URL: url})
	}
	return sources
}
