// Package retriever ranks corpus passages by relevance to a question. Two
// interchangeable strategies exist: lexical token overlap, which needs
// nothing beyond the in-memory corpus, and vector similarity, which needs an
// embedding backend and a pgvector-backed passage table.
package retriever

import (
	"context"

	"constitutionbd-backend/models"
)

// Retriever returns at most k passages ordered by descending relevance.
// Implementations clamp k below 1 to 1.
type Retriever interface {
	Retrieve(ctx context.Context, question string, k int) ([]models.Passage, error)
}
