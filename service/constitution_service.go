package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	"constitutionbd-backend/citations"
	"constitutionbd-backend/embedding"
	"constitutionbd-backend/generator"
	"constitutionbd-backend/models"
	"constitutionbd-backend/repository"
	"constitutionbd-backend/retriever"
	"constitutionbd-backend/segmenter"
	"constitutionbd-backend/storage"
)

var (
	ErrNoPassages        = errors.New("no passages produced from the document")
	ErrSegmenterNotSet   = errors.New("segmenter not set")
	ErrPersistenceFailed = errors.New("failed to persist corpus snapshot")
)

const (
	notIngestedAnswer = "No constitution documents loaded. Please ingest the constitution first."
	noRelevantAnswer  = "No relevant information found in the constitution."

	excerptLimit = 200
	defaultTopK  = 5
)

// ConstitutionService owns the corpus and article index and composes
// segmentation, retrieval, answer generation and citation analysis into the
// ingest and query operations. Queries read a consistent corpus snapshot;
// ingestion replaces the corpus wholesale under the write lock. ingestMu
// serializes whole ingestions so the persisted snapshot, in-memory corpus
// and vector index always come from the same one.
type ConstitutionService struct {
	ingestMu sync.Mutex

	mu           sync.RWMutex
	passages     []models.Passage
	articleIndex map[string]string

	segmenter   *segmenter.Segmenter
	lexical     retriever.Retriever
	vector      retriever.Retriever
	generator   generator.Generator
	snapshots   storage.Store
	embedder    *embedding.Client
	passageRepo *repository.PassageRepository
	topK        int
}

// ConstitutionServiceOption is a functional option for ConstitutionService
type ConstitutionServiceOption func(*ConstitutionService)

// WithSegmenter sets the document segmenter
func WithSegmenter(s *segmenter.Segmenter) ConstitutionServiceOption {
	return func(c *ConstitutionService) {
		c.segmenter = s
	}
}

// WithGenerator sets the answer generator
func WithGenerator(g generator.Generator) ConstitutionServiceOption {
	return func(c *ConstitutionService) {
		c.generator = g
	}
}

// WithSnapshotStore sets the corpus snapshot store
func WithSnapshotStore(s storage.Store) ConstitutionServiceOption {
	return func(c *ConstitutionService) {
		c.snapshots = s
	}
}

// WithVectorRetriever sets the optional similarity retrieval strategy
func WithVectorRetriever(r retriever.Retriever) ConstitutionServiceOption {
	return func(c *ConstitutionService) {
		c.vector = r
	}
}

// WithEmbeddingClient sets the client used to embed passages at ingestion
func WithEmbeddingClient(e *embedding.Client) ConstitutionServiceOption {
	return func(c *ConstitutionService) {
		c.embedder = e
	}
}

// WithPassageRepository sets the pgvector-backed passage table
func WithPassageRepository(r *repository.PassageRepository) ConstitutionServiceOption {
	return func(c *ConstitutionService) {
		c.passageRepo = r
	}
}

// WithTopK sets how many passages a query retrieves
func WithTopK(k int) ConstitutionServiceOption {
	return func(c *ConstitutionService) {
		c.topK = k
	}
}

// NewConstitutionService creates a new constitution service. The lexical
// retrieval strategy is always available; the vector strategy and the
// snapshot store are optional.
func NewConstitutionService(opts ...ConstitutionServiceOption) *ConstitutionService {
	s := &ConstitutionService{
		articleIndex: make(map[string]string),
		topK:         defaultTopK,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.generator == nil {
		s.generator = generator.Excerpt{}
	}
	s.lexical = retriever.NewLexical(s.corpusSnapshot)
	return s
}

// corpusSnapshot returns a copy of the current passages.
func (s *ConstitutionService) corpusSnapshot() []models.Passage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot := make([]models.Passage, len(s.passages))
	copy(snapshot, s.passages)
	return snapshot
}

// LoadSnapshot restores the corpus persisted by a previous ingestion. A
// missing snapshot is not an error; the service simply starts empty.
func (s *ConstitutionService) LoadSnapshot(ctx context.Context) error {
	if s.snapshots == nil {
		return nil
	}

	rc, err := s.snapshots.Load(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load snapshot: %w", err)
	}
	defer rc.Close()

	var snap models.Snapshot
	if err := json.NewDecoder(rc).Decode(&snap); err != nil {
		return fmt.Errorf("failed to decode snapshot: %w", err)
	}

	s.mu.Lock()
	s.passages = snap.Documents
	s.articleIndex = snap.ArticleIndex
	if s.articleIndex == nil {
		s.articleIndex = make(map[string]string)
	}
	s.mu.Unlock()

	return nil
}

// Ingest segments rawText and replaces the corpus and article index with the
// result. The snapshot is persisted before the in-memory state is swapped, so
// a persistence failure leaves the prior corpus untouched. Concurrent
// ingestions run one at a time; queries keep reading the old corpus until the
// swap. Returns the number of passages ingested.
func (s *ConstitutionService) Ingest(ctx context.Context, rawText string) (int, error) {
	if s.segmenter == nil {
		return 0, ErrSegmenterNotSet
	}

	s.ingestMu.Lock()
	defer s.ingestMu.Unlock()

	passages, index := s.segmenter.Segment(rawText)
	if len(passages) == 0 {
		return 0, ErrNoPassages
	}

	if s.snapshots != nil {
		snap := models.Snapshot{Documents: passages, ArticleIndex: index}
		data, err := json.MarshalIndent(snap, "", "  ")
		if err != nil {
			return 0, fmt.Errorf("failed to encode snapshot: %w", err)
		}
		if err := s.snapshots.Save(ctx, bytes.NewReader(data)); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrPersistenceFailed, err)
		}
	}

	s.mu.Lock()
	s.passages = passages
	s.articleIndex = index
	s.mu.Unlock()

	// The vector index is rebuilt best-effort; lexical retrieval covers a
	// missing or stale index.
	if s.embedder != nil && s.passageRepo != nil {
		if err := s.rebuildVectorIndex(ctx, passages); err != nil {
			log.Printf("Warning: Failed to rebuild vector index: %v", err)
		}
	}

	return len(passages), nil
}

func (s *ConstitutionService) rebuildVectorIndex(ctx context.Context, passages []models.Passage) error {
	embeddings := make([][]float64, len(passages))
	for i, p := range passages {
		vec, err := s.embedder.EmbedDocument(ctx, p.Content)
		if err != nil {
			return fmt.Errorf("failed to embed passage %d: %w", i, err)
		}
		embeddings[i] = vec
	}
	return s.passageRepo.ReplaceAll(ctx, passages, embeddings)
}

// Query answers a natural-language question about the constitution.
func (s *ConstitutionService) Query(ctx context.Context, question string) models.QueryResult {
	if len(s.corpusSnapshot()) == 0 {
		return emptyResult(notIngestedAnswer)
	}

	docs := s.retrieve(ctx, question, s.topK)
	if len(docs) == 0 {
		return emptyResult(noRelevantAnswer)
	}

	contextText := joinContents(docs)
	crossRefs := citations.ExtractReferences(contextText)

	answer := s.generator.Generate(ctx, question, docs)

	verified := citations.VerifyCitations(answer, docs)

	sources := make([]models.Source, 0, len(docs))
	for _, d := range docs {
		sources = append(sources, models.Source{
			Article:       d.Article,
			ArticleNumber: d.ArticleNumber,
			Content:       excerpt(d.Content),
		})
	}

	confidence := models.ConfidenceMedium
	if len(verified) > 0 {
		confidence = models.ConfidenceHigh
	}

	return models.QueryResult{
		Answer:            answer,
		Sources:           sources,
		VerifiedCitations: orEmpty(verified),
		CrossReferences:   orEmpty(crossRefs),
		Confidence:        confidence,
	}
}

// retrieve tries the vector strategy first and falls back to lexical overlap
// whenever the vector strategy is unconfigured, fails, or finds nothing.
func (s *ConstitutionService) retrieve(ctx context.Context, question string, k int) []models.Passage {
	if s.vector != nil {
		docs, err := s.vector.Retrieve(ctx, question, k)
		if err != nil {
			log.Printf("Warning: Vector retrieval failed, falling back to lexical: %v", err)
		} else if len(docs) > 0 {
			return docs
		}
	}

	docs, err := s.lexical.Retrieve(ctx, question, k)
	if err != nil {
		log.Printf("Warning: Lexical retrieval failed: %v", err)
		return nil
	}
	return docs
}

// SearchArticles returns up to k ranked passages matching the query, with
// full passage content.
func (s *ConstitutionService) SearchArticles(ctx context.Context, query string, k int) []models.ArticleResult {
	if len(s.corpusSnapshot()) == 0 {
		return []models.ArticleResult{}
	}

	docs := s.retrieve(ctx, query, k)
	results := make([]models.ArticleResult, 0, len(docs))
	for _, d := range docs {
		results = append(results, models.ArticleResult{
			Article:       d.Article,
			ArticleNumber: d.ArticleNumber,
			Content:       d.Content,
		})
	}
	return results
}

// DocumentCount returns the number of passages in the corpus.
func (s *ConstitutionService) DocumentCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.passages)
}

// ArticleCount returns the number of indexed articles.
func (s *ConstitutionService) ArticleCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.articleIndex)
}

// ArticleText returns the full, unchunked text of an article.
func (s *ConstitutionService) ArticleText(number string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	text, ok := s.articleIndex[number]
	return text, ok
}

// LLMAvailable reports whether an external model backs answer generation.
func (s *ConstitutionService) LLMAvailable() bool {
	return s.generator.Available()
}

func emptyResult(answer string) models.QueryResult {
	return models.QueryResult{
		Answer:            answer,
		Sources:           []models.Source{},
		VerifiedCitations: []string{},
		CrossReferences:   []string{},
		Confidence:        models.ConfidenceLow,
	}
}

func joinContents(passages []models.Passage) string {
	var buf bytes.Buffer
	for i, p := range passages {
		if i > 0 {
			buf.WriteString("\n\n")
		}
		buf.WriteString(p.Content)
	}
	return buf.String()
}

// excerpt truncates content to 200 characters, marking the cut with an
// ellipsis.
func excerpt(content string) string {
	runes := []rune(content)
	if len(runes) <= excerptLimit {
		return content
	}
	return string(runes[:excerptLimit]) + "..."
}

func orEmpty(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
