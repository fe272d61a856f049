package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.ModelName != "gemini-1.5-flash" {
		t.Errorf("ModelName = %q", cfg.ModelName)
	}
	if cfg.ChunkSize != 1000 || cfg.ChunkOverlap != 200 {
		t.Errorf("chunking defaults = %d/%d, want 1000/200", cfg.ChunkSize, cfg.ChunkOverlap)
	}
	if cfg.TopKResults != 5 {
		t.Errorf("TopKResults = %d, want 5", cfg.TopKResults)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("CHUNK_SIZE", "500")
	t.Setenv("TEMPERATURE", "0.5")

	cfg := Load()
	if cfg.Port != "9000" {
		t.Errorf("Port = %q, want 9000", cfg.Port)
	}
	if cfg.ChunkSize != 500 {
		t.Errorf("ChunkSize = %d, want 500", cfg.ChunkSize)
	}
	if cfg.Temperature != 0.5 {
		t.Errorf("Temperature = %v, want 0.5", cfg.Temperature)
	}
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("CHUNK_SIZE", "not-a-number")

	if cfg := Load(); cfg.ChunkSize != 1000 {
		t.Errorf("ChunkSize = %d, want fallback 1000", cfg.ChunkSize)
	}
}
