// Package config reads the runtime settings for the ConstitutionBD backend
// from environment variables.
package config

import (
	"os"
	"strconv"
)

// Config carries every tunable the pipeline and server need.
type Config struct {
	// Server
	Port string

	// Database (optional; enables the vector retrieval strategy)
	DatabaseURL string

	// LLM
	GeminiAPIKey string
	ModelName    string
	Temperature  float64
	MaxTokens    int

	// Segmentation and retrieval
	ChunkSize    int
	ChunkOverlap int
	TopKResults  int
	SourceName   string

	// Snapshot persistence (details resolved by the storage package)
	StorageType string
}

// Load reads configuration from the environment, applying defaults for
// everything that is unset.
func Load() *Config {
	return &Config{
		Port:         envString("PORT", "8080"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		ModelName:    envString("MODEL_NAME", "gemini-1.5-flash"),
		Temperature:  envFloat("TEMPERATURE", 0.1),
		MaxTokens:    envInt("MAX_TOKENS", 2000),
		ChunkSize:    envInt("CHUNK_SIZE", 1000),
		ChunkOverlap: envInt("CHUNK_OVERLAP", 200),
		TopKResults:  envInt("TOP_K_RESULTS", 5),
		SourceName:   envString("SOURCE_NAME", "Bangladesh Constitution"),
		StorageType:  envString("STORAGE_TYPE", "local"),
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
