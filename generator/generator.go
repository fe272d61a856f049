// Package generator produces natural-language answers from a question and a
// context of retrieved passages. The Gemini variant needs a configured API
// client; the Excerpt variant needs nothing and returns passage text
// directly. Generate never fails: every failure resolves to an answer string
// the caller can return as-is.
package generator

import (
	"context"
	"fmt"
	"strings"

	"constitutionbd-backend/models"
)

// Generator produces an answer from a question and its retrieved context.
type Generator interface {
	// Generate returns an answer. It must always return usable text, even
	// when the underlying model call fails.
	Generate(ctx context.Context, question string, passages []models.Passage) string

	// Available reports whether an external model backs this generator.
	Available() bool
}

// Excerpt answers with the literal content of the top context passages. It is
// the fallback when no LLM is configured or reachable.
type Excerpt struct{}

// Generate joins the top 3 passage contents with a disclaimer.
func (Excerpt) Generate(_ context.Context, _ string, passages []models.Passage) string {
	top := passages
	if len(top) > 3 {
		top = top[:3]
	}

	contents := make([]string, 0, len(top))
	for _, p := range top {
		contents = append(contents, p.Content)
	}

	return fmt.Sprintf(`Based on the constitution articles I found:

%s

Note: This is a direct excerpt from the constitution. For a more detailed answer, please configure an LLM provider like Google Gemini.`,
		strings.Join(contents, "\n\n"))
}

// Available always reports false for the excerpt fallback.
func (Excerpt) Available() bool { return false }
