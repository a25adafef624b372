// Package config loads runtime configuration from the environment.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/careerkb/kb-agent/internal/chunking"
	"github.com/careerkb/kb-agent/internal/embedding"
	"github.com/careerkb/kb-agent/internal/rag"
	"github.com/careerkb/kb-agent/internal/vectorstore/pgvector"
)

type Config struct {
	Port string

	// AWS / Bedrock
	Region           string
	ClaudeModelID    string
	RewriteModelID   string
	EmbeddingModelID string

	// Postgres
	Database pgvector.Config

	// Redis search cache. Caching is disabled when Addr is empty.
	RedisAddr     string
	RedisPassword string
	RedisTTL      time.Duration

	// Retrieval pipeline
	ChunkSize        int
	ChunkOverlap     int
	RetrievalResults int
	PromptsPath      string
}

func Load() Config {
	return Config{
		Port: getEnv("API_PORT", "8080"),

		Region:           getEnv("AWS_REGION", "us-east-1"),
		ClaudeModelID:    getEnv("CLAUDE_MODEL_ID", "anthropic.claude-3-5-sonnet-20241022-v2:0"),
		RewriteModelID:   getEnv("CLAUDE_MINI_MODEL_ID", "anthropic.claude-3-5-haiku-20241022-v1:0"),
		EmbeddingModelID: getEnv("EMBEDDING_MODEL_ID", embedding.DefaultModelID),

		Database: pgvector.Config{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			Database: getEnv("DB_NAME", "knowledge_base"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTTL:      getEnvDuration("REDIS_TTL", 30*time.Minute),

		ChunkSize:        getEnvInt("CHUNK_SIZE", chunking.DefaultMaxTokens),
		ChunkOverlap:     getEnvInt("CHUNK_OVERLAP", chunking.DefaultOverlapTokens),
		RetrievalResults: getEnvInt("RETRIEVAL_RESULTS", rag.DefaultTopK),
		PromptsPath:      getEnv("PROMPTS_PATH", ""),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}
