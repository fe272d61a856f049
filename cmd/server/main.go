package main

import (
	"context"
	"log"

	"constitutionbd-backend/config"
	"constitutionbd-backend/embedding"
	"constitutionbd-backend/generator"
	"constitutionbd-backend/handlers"
	"constitutionbd-backend/repository"
	"constitutionbd-backend/retriever"
	"constitutionbd-backend/segmenter"
	"constitutionbd-backend/service"
	"constitutionbd-backend/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/generative-ai-go/genai"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"google.golang.org/api/option"
)

func main() {
	// Load .env file from project root (relative to cmd/server/)
	// Try current directory first, then project root
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("../../.env"); err != nil {
			log.Printf("Warning: No .env file found, using environment variables")
		}
	}

	cfg := config.Load()

	// Initialize snapshot storage
	snapshotStore, err := storage.NewStoreFromEnv()
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	log.Println("Snapshot storage initialized")

	opts := []service.ConstitutionServiceOption{
		service.WithSegmenter(segmenter.New(cfg.SourceName, cfg.ChunkSize, cfg.ChunkOverlap)),
		service.WithSnapshotStore(snapshotStore),
		service.WithTopK(cfg.TopKResults),
	}

	// Postgres with pgvector enables similarity retrieval. Without it the
	// pipeline runs on lexical retrieval alone.
	if cfg.DatabaseURL != "" {
		db, err := initPostgres(cfg.DatabaseURL)
		if err != nil {
			log.Fatal("Failed to initialize Postgres:", err)
		}
		defer db.Close()

		passageRepo := repository.NewPassageRepository(db)
		embedder := embedding.NewClient(cfg.GeminiAPIKey)
		opts = append(opts,
			service.WithPassageRepository(passageRepo),
			service.WithEmbeddingClient(embedder),
			service.WithVectorRetriever(retriever.NewVector(embedder, passageRepo)),
		)
	} else {
		log.Println("DATABASE_URL not set, using lexical retrieval only")
	}

	// A missing Gemini key degrades answers to constitution excerpts
	// instead of failing startup.
	if cfg.GeminiAPIKey != "" {
		geminiClient, err := initGemini(cfg.GeminiAPIKey)
		if err != nil {
			log.Printf("Warning: Failed to initialize Gemini, serving excerpt answers: %v", err)
		} else {
			opts = append(opts, service.WithGenerator(generator.NewGemini(
				geminiClient,
				cfg.ModelName,
				float32(cfg.Temperature),
				int32(cfg.MaxTokens),
			)))
		}
	} else {
		log.Println("Warning: GEMINI_API_KEY not set, serving excerpt answers")
	}

	constitutionService := service.NewConstitutionService(opts...)

	if err := constitutionService.LoadSnapshot(context.Background()); err != nil {
		log.Printf("Warning: Failed to load corpus snapshot: %v", err)
	} else if n := constitutionService.DocumentCount(); n > 0 {
		log.Printf("Loaded %d passages from snapshot", n)
	}

	// Initialize handlers
	queryHandler := handlers.NewQueryHandler(constitutionService, "google", cfg.StorageType)
	ingestHandler := handlers.NewIngestHandler(constitutionService)

	// Setup Gin router
	r := gin.Default()

	r.GET("/", queryHandler.Root)
	r.GET("/health", queryHandler.Health)
	r.GET("/stats", queryHandler.Stats)
	r.POST("/query", queryHandler.Query)
	r.POST("/search", queryHandler.Search)
	r.POST("/ingest", ingestHandler.Upload)
	r.POST("/ingest-from-path", ingestHandler.FromPath)

	log.Printf("Server starting on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

func initPostgres(connString string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(context.Background(), connString)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(context.Background()); err != nil {
		return nil, err
	}

	// Enable pgvector extension
	ctx := context.Background()
	_, err = pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector")
	if err != nil {
		log.Printf("Warning: Failed to create pgvector extension: %v", err)
		log.Println("This may be normal if extension is already installed or requires superuser privileges")
	} else {
		log.Println("pgvector extension enabled")
	}

	log.Println("Postgres connection established with pgvector support")
	return pool, nil
}

func initGemini(apiKey string) (*genai.Client, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	log.Println("Gemini client initialized")
	return client, nil
}
