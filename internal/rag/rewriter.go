package rag

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/careerkb/kb-agent/internal/bedrock"
)

// ModelClient is the model call needed for query rewriting.
type ModelClient interface {
	InvokeModel(ctx context.Context, request bedrock.ClaudeRequest) (*bedrock.ClaudeResponse, error)
}

const (
	rewriteMaxTokens   = 512
	rewriteTemperature = 0.7
)

// Rewriter expands a user query into alternative phrasings to widen
// retrieval recall.
type Rewriter struct {
	client ModelClient
	prompt string

	// MaxRetries and RetryDelay control how rewriting failures are
	// retried before degrading to the original query alone.
	MaxRetries int
	RetryDelay time.Duration
}

func NewRewriter(client ModelClient, prompt string) *Rewriter {
	return &Rewriter{
		client:     client,
		prompt:     prompt,
		MaxRetries: 3,
		RetryDelay: time.Second,
	}
}

// RewriteQuery returns the original query followed by the model's
// alternative phrasings. Rewriting never fails the request: after all
// retries are exhausted it returns just the original query.
func (r *Rewriter) RewriteQuery(ctx context.Context, query string) []string {
	for attempt := 1; attempt <= r.MaxRetries; attempt++ {
		response, err := r.client.InvokeModel(ctx, bedrock.ClaudeRequest{
			System:      r.prompt,
			Prompt:      query,
			MaxTokens:   rewriteMaxTokens,
			Temperature: rewriteTemperature,
		})
		if err == nil {
			queries := []string{query}
			for _, line := range strings.Split(strings.TrimSpace(response.Content), "\n") {
				line = strings.TrimSpace(line)
				if line != "" {
					queries = append(queries, line)
				}
			}
			return queries
		}

		log.Error().Err(err).Int("attempt", attempt).Msg("Failed to rewrite query")

		if attempt < r.MaxRetries {
			select {
			case <-time.After(r.RetryDelay * time.Duration(attempt)):
			case <-ctx.Done():
				return []string{query}
			}
		}
	}
	return []string{query}
}
