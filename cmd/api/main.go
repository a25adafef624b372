package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	restfulspec "github.com/emicklei/go-restful-openapi/v2"
	restful "github.com/emicklei/go-restful/v3"
	"github.com/go-openapi/spec"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/careerkb/kb-agent/internal/bedrock"
	"github.com/careerkb/kb-agent/internal/cache"
	"github.com/careerkb/kb-agent/internal/chat"
	"github.com/careerkb/kb-agent/internal/config"
	"github.com/careerkb/kb-agent/internal/convert"
	"github.com/careerkb/kb-agent/internal/documents"
	"github.com/careerkb/kb-agent/internal/embedding"
	"github.com/careerkb/kb-agent/internal/middleware"
	"github.com/careerkb/kb-agent/internal/rag"
	"github.com/careerkb/kb-agent/internal/redis"
	"github.com/careerkb/kb-agent/internal/tokenizer"
	"github.com/careerkb/kb-agent/internal/vectorstore/pgvector"
)

func enrichSwaggerObject(swo *spec.Swagger) {
	swo.Info = &spec.Info{
		InfoProps: spec.InfoProps{
			Title:       "KB Agent API",
			Description: "Knowledge base agent with retrieval-augmented answers",
			Version:     "1.0.0",
		},
	}
	swo.Tags = []spec.Tag{
		{TagProps: spec.TagProps{Name: "health", Description: "Health checks"}},
		{TagProps: spec.TagProps{Name: "query", Description: "Question answering"}},
		{TagProps: spec.TagProps{Name: "documents", Description: "Document administration"}},
		{TagProps: spec.TagProps{Name: "admin", Description: "Operational endpoints"}},
	}
}

func main() {
	// Setup logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	log.Info().Msg("Starting KB Agent API Server")

	if err := godotenv.Load(); err != nil {
		log.Error().Msg("No .env file found")
	}

	cfg := config.Load()
	ctx := context.Background()

	bedrockClient, err := bedrock.NewClient(ctx, cfg.Region, cfg.ClaudeModelID)
	if err != nil {
		log.Fatal().Err(err).Msg("Unable to initialize Bedrock Client")
	}
	miniClient, err := bedrock.NewClient(ctx, cfg.Region, cfg.RewriteModelID)
	if err != nil {
		log.Fatal().Err(err).Msg("Unable to initialize Mini Bedrock Client")
	}

	log.Info().
		Str("region", cfg.Region).
		Str("model", cfg.ClaudeModelID).
		Msg("Bedrock client initialized")

	embedder := embedding.NewBedrockEmbedder(bedrockClient.Client, cfg.EmbeddingModelID)

	store, err := pgvector.NewWithBackoff(ctx, cfg.Database, embedder, 5)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer store.Pool.Close()

	// Search cache is optional: without Redis the pipeline runs every
	// retrieval from scratch.
	var searchCache chat.SearchCache
	if cfg.RedisAddr != "" {
		redisClient, err := redis.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, 5)
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, running without search cache")
		} else {
			searchCache = cache.NewRedisSearchCache(redisClient, "search_cache:", cfg.RedisTTL)
		}
	}

	prompts, err := rag.LoadPrompts(cfg.PromptsPath)
	if err != nil {
		log.Warn().Err(err).Str("path", cfg.PromptsPath).Msg("Falling back to built-in prompts")
	}

	tokens := tokenizer.New()
	rewriter := rag.NewRewriter(miniClient, prompts.Rewriter)
	orchestrator := rag.NewOrchestrator(store, rewriter, prompts.System, cfg.RetrievalResults)

	chatService := chat.NewService(bedrockClient, orchestrator, searchCache, cfg.ClaudeModelID)
	chatHandler := chat.NewHandler(chatService)

	converter := convert.NewConverter(miniClient)
	documentsService := documents.NewService(store, converter, tokens, cfg.ChunkSize, cfg.ChunkOverlap)
	documentsHandler := documents.NewHandler(documentsService)

	container := restful.NewContainer()

	// Add filters
	container.Filter(middleware.Logger)
	container.Filter(middleware.RecoverPanic)

	// register API
	chat.RegisterRoutes(container, chatHandler)
	documents.RegisterRoutes(container, documentsHandler)

	openapiConfig := restfulspec.Config{
		WebServices:                   container.RegisteredWebServices(),
		APIPath:                       "/api/v1/openapi.json",
		PostBuildSwaggerObjectHandler: enrichSwaggerObject,
	}

	container.Add(restfulspec.NewOpenAPIService(openapiConfig))

	// Setup CORS
	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	})

	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Info().Str("address", addr).Msg("Starting server")

	server := http.Server{
		Addr:         addr,
		Handler:      corsHandler.Handler(container),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	if err := server.ListenAndServe(); err != nil {
		log.Fatal().Err(err).Msg("Server failed to start")
	}
}
