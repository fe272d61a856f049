package retriever

import (
	"context"
	"fmt"

	"constitutionbd-backend/embedding"
	"constitutionbd-backend/models"
	"constitutionbd-backend/repository"
)

// Vector retrieves passages by embedding similarity against the
// pgvector-backed passage table. The embeddings are built at ingestion time;
// queries embed the question and search the table.
type Vector struct {
	embedder *embedding.Client
	repo     *repository.PassageRepository
}

// NewVector creates a vector retriever.
func NewVector(embedder *embedding.Client, repo *repository.PassageRepository) *Vector {
	return &Vector{embedder: embedder, repo: repo}
}

// Retrieve embeds the question and returns the k nearest passages.
func (v *Vector) Retrieve(ctx context.Context, question string, k int) ([]models.Passage, error) {
	if k < 1 {
		k = 1
	}

	vec, err := v.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}
	return v.repo.SearchSimilar(ctx, vec, k)
}
