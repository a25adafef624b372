package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/careerkb/kb-agent/internal/bedrock"
	"github.com/careerkb/kb-agent/internal/config"
	"github.com/careerkb/kb-agent/internal/convert"
	"github.com/careerkb/kb-agent/internal/documents"
	"github.com/careerkb/kb-agent/internal/embedding"
	"github.com/careerkb/kb-agent/internal/tokenizer"
	"github.com/careerkb/kb-agent/internal/vectorstore/pgvector"
)

func main() {
	// Setup logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	insertDocCommand := flag.Bool("insert-doc", false, "Fetch, convert and index a document")
	url := flag.String("url", "", "Source URL of the document")
	title := flag.String("title", "", "Display title for the document")

	deleteDocCommand := flag.Bool("delete-doc", false, "Delete an existing document")
	documentID := flag.String("doc-id", "", "Document id to delete")

	getAllDocsCommand := flag.Bool("get-docs", false, "List indexed documents")

	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("Unable to load env variables")
	}

	cfg := config.Load()
	ctx := context.Background()

	bedrockClient, err := bedrock.NewClient(ctx, cfg.Region, cfg.RewriteModelID)
	if err != nil {
		log.Fatal().Err(err).Msg("Unable to create bedrock client")
	}

	embedder := embedding.NewBedrockEmbedder(bedrockClient.Client, cfg.EmbeddingModelID)

	store, err := pgvector.NewWithBackoff(ctx, cfg.Database, embedder, 3)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer store.Pool.Close()

	log.Info().Msg("Database connected")

	converter := convert.NewConverter(bedrockClient)
	service := documents.NewService(store, converter, tokenizer.New(), cfg.ChunkSize, cfg.ChunkOverlap)

	switch {
	case *deleteDocCommand:
		if *documentID == "" {
			log.Fatal().Msg("doc-id is required for delete-doc")
		}
		if err := service.Delete(ctx, *documentID); err != nil {
			log.Fatal().Err(err).Msg("Failed to delete document")
		}
		log.Info().Str("doc_id", *documentID).Msg("Document deleted")

	case *getAllDocsCommand:
		list, err := service.List(ctx, 0)
		if err != nil {
			log.Fatal().Err(err).Msg("Unable to fetch documents")
		}
		for _, doc := range list.Documents {
			log.Info().
				Str("id", doc.ID).
				Str("title", doc.Title).
				Str("url", doc.SourceURL).
				Int("chunks", doc.Chunks).
				Str("updated", doc.LastUpdate).
				Msg("Document")
		}
		log.Info().Int("total", list.Total).Msg("Documents listed")

	case *insertDocCommand:
		request := documents.CreateDocumentRequest{Title: *title, URL: *url}
		if err := request.Validate(); err != nil {
			log.Fatal().Err(err).Msg("Invalid document request")
		}
		result, err := service.Create(ctx, request)
		if err != nil {
			log.Fatal().Err(err).Msg("Ingestion failed")
		}
		log.Info().
			Str("doc_id", result.ID).
			Int("chunks", result.Chunks).
			Str("content_type", result.ContentType).
			Msg("Ingestion successful")

	default:
		log.Fatal().Msg("Unsupported command")
	}
}
