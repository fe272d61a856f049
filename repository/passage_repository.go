package repository

import (
	"context"
	"fmt"
	"strings"

	"constitutionbd-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PassageRepository handles database operations for constitution passages
// and their embeddings.
type PassageRepository struct {
	db *pgxpool.Pool
}

// NewPassageRepository creates a new passage repository
func NewPassageRepository(db *pgxpool.Pool) *PassageRepository {
	return &PassageRepository{db: db}
}

// formatVector formats an embedding vector as a string for pgx
func formatVector(embedding []float64) string {
	if len(embedding) == 0 {
		return "[]"
	}
	var parts []string
	for _, v := range embedding {
		parts = append(parts, fmt.Sprintf("%.6f", v))
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// ReplaceAll replaces every stored passage with the given ones inside a
// single transaction, so readers never observe a half-built index. passages
// and embeddings must be aligned by position.
func (r *PassageRepository) ReplaceAll(
	ctx context.Context,
	passages []models.Passage,
	embeddings [][]float64,
) error {
	if len(passages) != len(embeddings) {
		return fmt.Errorf("passages and embeddings length mismatch: %d vs %d", len(passages), len(embeddings))
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DELETE FROM constitution_passages"); err != nil {
		return fmt.Errorf("failed to clear passages: %w", err)
	}

	for i, p := range passages {
		if len(embeddings[i]) != 768 {
			return fmt.Errorf("embedding must be 768 dimensions, got %d", len(embeddings[i]))
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO constitution_passages
				(id, content, source, article, article_number, chunk_index, position, embedding)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8::vector)`,
			uuid.New(),
			p.Content,
			p.Source,
			p.Article,
			p.ArticleNumber,
			p.ChunkIndex,
			i,
			formatVector(embeddings[i]),
		)
		if err != nil {
			return fmt.Errorf("failed to insert passage %d: %w", i, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// SearchSimilar returns the limit nearest passages to the query embedding by
// cosine distance, nearest first. Distance ties fall back to corpus position.
func (r *PassageRepository) SearchSimilar(
	ctx context.Context,
	embedding []float64,
	limit int,
) ([]models.Passage, error) {
	if len(embedding) != 768 {
		return nil, fmt.Errorf("embedding must be 768 dimensions, got %d", len(embedding))
	}

	rows, err := r.db.Query(ctx, `
		SELECT
			content,
			source,
			article,
			article_number,
			chunk_index
		FROM constitution_passages
		ORDER BY
			embedding <=> $1::vector,
			position
		LIMIT $2`,
		formatVector(embedding), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query passages: %w", err)
	}
	defer rows.Close()

	var passages []models.Passage
	for rows.Next() {
		var p models.Passage
		if err := rows.Scan(&p.Content, &p.Source, &p.Article, &p.ArticleNumber, &p.ChunkIndex); err != nil {
			return nil, fmt.Errorf("failed to scan passage: %w", err)
		}
		passages = append(passages, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating passages: %w", err)
	}
	return passages, nil
}

// Count returns the number of stored passages.
func (r *PassageRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM constitution_passages").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count passages: %w", err)
	}
	return count, nil
}
