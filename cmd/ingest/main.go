package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"constitutionbd-backend/config"
	"constitutionbd-backend/embedding"
	"constitutionbd-backend/repository"
	"constitutionbd-backend/segmenter"
	"constitutionbd-backend/service"
	"constitutionbd-backend/storage"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

// Ingests a constitution text file from the command line, replacing the
// persisted snapshot and, when Postgres is configured, the vector index.
func main() {
	filePath := flag.String("file", "", "path to the constitution .txt file")
	flag.Parse()

	if *filePath == "" {
		log.Fatal("Usage: ingest -file <path to .txt file>")
	}
	if !strings.HasSuffix(*filePath, ".txt") {
		log.Fatal("Only .txt files are supported")
	}

	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("../../.env"); err != nil {
			log.Printf("Warning: No .env file found, using environment variables")
		}
	}

	cfg := config.Load()

	content, err := os.ReadFile(*filePath)
	if err != nil {
		log.Fatalf("Failed to read %s: %v", *filePath, err)
	}

	snapshotStore, err := storage.NewStoreFromEnv()
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	opts := []service.ConstitutionServiceOption{
		service.WithSegmenter(segmenter.New(cfg.SourceName, cfg.ChunkSize, cfg.ChunkOverlap)),
		service.WithSnapshotStore(snapshotStore),
	}

	var passageRepo *repository.PassageRepository
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to Postgres: %v", err)
		}
		defer pool.Close()

		passageRepo = repository.NewPassageRepository(pool)
		opts = append(opts,
			service.WithPassageRepository(passageRepo),
			service.WithEmbeddingClient(embedding.NewClient(cfg.GeminiAPIKey)),
		)
	} else {
		log.Println("DATABASE_URL not set, skipping vector index build")
	}

	constitutionService := service.NewConstitutionService(opts...)

	count, err := constitutionService.Ingest(context.Background(), string(content))
	if err != nil {
		log.Fatalf("Ingestion failed: %v", err)
	}

	fmt.Printf("✅ Ingested %d passages from %s\n", count, *filePath)
	fmt.Printf("   Articles indexed: %d\n", constitutionService.ArticleCount())

	if passageRepo != nil {
		indexed, err := passageRepo.Count(context.Background())
		if err != nil {
			log.Printf("Warning: Failed to count indexed passages: %v", err)
		} else {
			fmt.Printf("   Vector rows indexed: %d\n", indexed)
		}
	}
}
