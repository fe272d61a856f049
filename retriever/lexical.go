package retriever

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"constitutionbd-backend/models"
)

var wordPattern = regexp.MustCompile(`\w+`)

// Lexical scores passages by the number of distinct lowercase word tokens
// they share with the question. It reads the corpus through a snapshot
// function so it always ranks against the currently ingested passages.
type Lexical struct {
	corpus func() []models.Passage
}

// NewLexical creates a lexical retriever over the given corpus snapshot
// function.
func NewLexical(corpus func() []models.Passage) *Lexical {
	return &Lexical{corpus: corpus}
}

// Retrieve returns the top k passages by shared-token count. Passages with no
// token in common are excluded; ties keep original corpus order.
func (l *Lexical) Retrieve(_ context.Context, question string, k int) ([]models.Passage, error) {
	if k < 1 {
		k = 1
	}

	questionTokens := tokenSet(question)

	type scoredPassage struct {
		passage models.Passage
		score   int
	}

	var scored []scoredPassage
	for _, p := range l.corpus() {
		score := 0
		for token := range tokenSet(p.Content) {
			if _, ok := questionTokens[token]; ok {
				score++
			}
		}
		if score > 0 {
			scored = append(scored, scoredPassage{passage: p, score: score})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	if k > len(scored) {
		k = len(scored)
	}
	results := make([]models.Passage, 0, k)
	for _, sp := range scored[:k] {
		results = append(results, sp.passage)
	}
	return results, nil
}

func tokenSet(s string) map[string]struct{} {
	tokens := wordPattern.FindAllString(strings.ToLower(s), -1)
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}
