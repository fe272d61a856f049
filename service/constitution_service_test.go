package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"constitutionbd-backend/generator"
	"constitutionbd-backend/models"
	"constitutionbd-backend/segmenter"
	"constitutionbd-backend/storage"
)

const sampleText = "Preamble text. Article 1. We are a republic. Article 2. Citizens have rights."

// echoGenerator answers with a fixed text, standing in for the LLM.
type echoGenerator struct {
	answer string
}

func (g echoGenerator) Generate(context.Context, string, []models.Passage) string { return g.answer }
func (g echoGenerator) Available() bool                                           { return true }

// failingStore rejects every save, for ingestion-failure tests.
type failingStore struct{}

func (failingStore) Save(context.Context, io.Reader) error       { return fmt.Errorf("disk full") }
func (failingStore) Load(context.Context) (io.ReadCloser, error) { return nil, storage.ErrNotFound }

// trackingStore records the last snapshot written and whether two saves
// ever ran at the same time.
type trackingStore struct {
	mu       sync.Mutex
	inFlight int
	overlap  bool
	last     []byte
}

func (s *trackingStore) Save(_ context.Context, data io.Reader) error {
	s.mu.Lock()
	s.inFlight++
	if s.inFlight > 1 {
		s.overlap = true
	}
	s.mu.Unlock()

	// Widen the window so an unserialized caller would be caught.
	time.Sleep(2 * time.Millisecond)
	b, err := io.ReadAll(data)

	s.mu.Lock()
	s.last = b
	s.inFlight--
	s.mu.Unlock()
	return err
}

func (s *trackingStore) Load(context.Context) (io.ReadCloser, error) {
	return nil, storage.ErrNotFound
}

func newTestService(t *testing.T, opts ...ConstitutionServiceOption) *ConstitutionService {
	t.Helper()
	base := []ConstitutionServiceOption{
		WithSegmenter(segmenter.New("Bangladesh Constitution", 1000, 200)),
	}
	return NewConstitutionService(append(base, opts...)...)
}

func TestQueryEmptyCorpus(t *testing.T) {
	s := newTestService(t)

	result := s.Query(context.Background(), "anything")

	if result.Confidence != models.ConfidenceLow {
		t.Errorf("confidence = %q, want low", result.Confidence)
	}
	if len(result.Sources) != 0 {
		t.Errorf("sources should be empty, got %d", len(result.Sources))
	}
	if !strings.Contains(result.Answer, "ingest") {
		t.Errorf("answer should ask for ingestion, got %q", result.Answer)
	}
}

func TestIngestAndQuery(t *testing.T) {
	s := newTestService(t)

	count, err := s.Ingest(context.Background(), sampleText)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if count != 3 {
		t.Fatalf("ingested %d passages, want 3", count)
	}
	if s.DocumentCount() != 3 {
		t.Errorf("DocumentCount = %d, want 3", s.DocumentCount())
	}
	if s.ArticleCount() != 3 { // Preamble, 1, 2
		t.Errorf("ArticleCount = %d, want 3", s.ArticleCount())
	}

	result := s.Query(context.Background(), "What does Article 1 say?")

	if len(result.Sources) == 0 {
		t.Fatal("expected sources")
	}
	if result.Sources[0].ArticleNumber != "1" {
		t.Errorf("top source = %q, want article 1", result.Sources[0].ArticleNumber)
	}
	if result.Confidence == models.ConfidenceLow {
		t.Errorf("confidence should not be low after successful retrieval")
	}
}

func TestQueryNoRelevantPassages(t *testing.T) {
	s := newTestService(t)
	if _, err := s.Ingest(context.Background(), sampleText); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	result := s.Query(context.Background(), "xylophone zebra")

	if result.Confidence != models.ConfidenceLow {
		t.Errorf("confidence = %q, want low", result.Confidence)
	}
	if result.Answer != "No relevant information found in the constitution." {
		t.Errorf("unexpected answer: %q", result.Answer)
	}
}

func TestQueryConfidenceFromCitations(t *testing.T) {
	tests := []struct {
		name   string
		answer string
		want   models.Confidence
	}{
		{
			name:   "verified citation",
			answer: "According to Article 1, we are a republic.",
			want:   models.ConfidenceHigh,
		},
		{
			name:   "unverifiable citation",
			answer: "See Article 99 for details.",
			want:   models.ConfidenceMedium,
		},
		{
			name:   "no citations",
			answer: "The republic exists.",
			want:   models.ConfidenceMedium,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestService(t, WithGenerator(echoGenerator{answer: tt.answer}))
			if _, err := s.Ingest(context.Background(), sampleText); err != nil {
				t.Fatalf("Ingest: %v", err)
			}

			result := s.Query(context.Background(), "What does Article 1 say?")
			if result.Confidence != tt.want {
				t.Errorf("confidence = %q, want %q", result.Confidence, tt.want)
			}
		})
	}
}

func TestQueryVerifiedCitationsAndCrossReferences(t *testing.T) {
	s := newTestService(t, WithGenerator(echoGenerator{
		answer: "See Article 1 and Article 99.",
	}))
	if _, err := s.Ingest(context.Background(), sampleText); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	result := s.Query(context.Background(), "What does Article 1 say about the republic rights citizens?")

	if !reflect.DeepEqual(result.VerifiedCitations, []string{"1"}) {
		t.Errorf("verified citations = %v, want [1]", result.VerifiedCitations)
	}
	// Cross-references come from the retrieved context, not the answer.
	if !reflect.DeepEqual(result.CrossReferences, []string{"1", "2"}) {
		t.Errorf("cross references = %v, want [1 2]", result.CrossReferences)
	}
}

func TestQueryExcerptTruncation(t *testing.T) {
	long := "Article 5. " + strings.Repeat("x", 239)  // 250 chars total
	short := "Article 6. " + strings.Repeat("y", 139) // 150 chars total

	s := newTestService(t, WithSegmenter(segmenter.New("Bangladesh Constitution", 1000, 200)))
	if _, err := s.Ingest(context.Background(), long+" "+short); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	result := s.Query(context.Background(), "Article 5 xxxx Article 6 yyyy")
	if len(result.Sources) != 2 {
		t.Fatalf("got %d sources, want 2", len(result.Sources))
	}

	for _, src := range result.Sources {
		switch src.ArticleNumber {
		case "5":
			if len(src.Content) != 203 || !strings.HasSuffix(src.Content, "...") {
				t.Errorf("250-char passage excerpt = %d chars (%q...), want 200 plus ellipsis",
					len(src.Content), src.Content[:20])
			}
		case "6":
			if len(src.Content) != 150 || strings.HasSuffix(src.Content, "...") {
				t.Errorf("150-char passage should be untruncated, got %d chars", len(src.Content))
			}
		}
	}
}

func TestIngestEmptyTextFails(t *testing.T) {
	s := newTestService(t)

	if _, err := s.Ingest(context.Background(), "   "); !errors.Is(err, ErrNoPassages) {
		t.Errorf("Ingest(empty) error = %v, want ErrNoPassages", err)
	}
}

func TestIngestFailurePreservesCorpus(t *testing.T) {
	s := newTestService(t)
	if _, err := s.Ingest(context.Background(), sampleText); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	// A failed re-ingestion must not clobber the existing corpus.
	if _, err := s.Ingest(context.Background(), ""); err == nil {
		t.Fatal("expected ingestion failure")
	}
	if s.DocumentCount() != 3 {
		t.Errorf("DocumentCount = %d after failed ingest, want 3", s.DocumentCount())
	}
}

func TestIngestPersistenceFailurePreservesCorpus(t *testing.T) {
	s := newTestService(t, WithSnapshotStore(failingStore{}))

	if _, err := s.Ingest(context.Background(), sampleText); !errors.Is(err, ErrPersistenceFailed) {
		t.Fatalf("Ingest error = %v, want ErrPersistenceFailed", err)
	}
	if s.DocumentCount() != 0 {
		t.Errorf("corpus should stay empty after persistence failure, got %d passages", s.DocumentCount())
	}
}

func TestIngestReplacesCorpus(t *testing.T) {
	s := newTestService(t)
	if _, err := s.Ingest(context.Background(), sampleText); err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if _, err := s.Ingest(context.Background(), "Article 9. A single article."); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	if s.DocumentCount() != 1 {
		t.Errorf("corpus should be replaced wholesale, got %d passages", s.DocumentCount())
	}
	if _, ok := s.ArticleText("1"); ok {
		t.Errorf("article index should not keep entries from the replaced corpus")
	}
	if _, ok := s.ArticleText("9"); !ok {
		t.Errorf("article index missing the newly ingested article")
	}
}

func TestConcurrentIngestConsistency(t *testing.T) {
	store := &trackingStore{}
	s := newTestService(t, WithSnapshotStore(store))

	texts := []string{
		"Article 1. We are a republic.",
		"Article 2. Citizens have rights.",
		"Article 3. The state language is Bangla.",
		"Article 4. The national anthem.",
	}

	var wg sync.WaitGroup
	for _, text := range texts {
		wg.Add(1)
		go func(text string) {
			defer wg.Done()
			if _, err := s.Ingest(context.Background(), text); err != nil {
				t.Errorf("Ingest: %v", err)
			}
		}(text)
	}
	wg.Wait()

	if store.overlap {
		t.Error("snapshot saves from concurrent ingestions overlapped")
	}

	// Whichever ingestion finished last, the persisted snapshot and the
	// in-memory corpus must come from the same one.
	var snap models.Snapshot
	if err := json.Unmarshal(store.last, &snap); err != nil {
		t.Fatalf("decoding persisted snapshot: %v", err)
	}
	if !reflect.DeepEqual(snap.Documents, s.corpusSnapshot()) {
		t.Errorf("persisted snapshot diverged from the in-memory corpus:\nsnapshot: %v\ncorpus:   %v",
			snap.Documents, s.corpusSnapshot())
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	store, err := storage.NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}

	first := newTestService(t, WithSnapshotStore(store))
	if _, err := first.Ingest(context.Background(), sampleText); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	second := newTestService(t, WithSnapshotStore(store))
	if err := second.LoadSnapshot(context.Background()); err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}

	if second.DocumentCount() != first.DocumentCount() {
		t.Errorf("restored %d passages, want %d", second.DocumentCount(), first.DocumentCount())
	}
	if !reflect.DeepEqual(second.corpusSnapshot(), first.corpusSnapshot()) {
		t.Errorf("restored corpus differs from the ingested one")
	}
}

func TestLoadSnapshotMissingIsNotAnError(t *testing.T) {
	store, err := storage.NewLocalStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}

	s := newTestService(t, WithSnapshotStore(store))
	if err := s.LoadSnapshot(context.Background()); err != nil {
		t.Errorf("LoadSnapshot with no snapshot = %v, want nil", err)
	}
	if s.DocumentCount() != 0 {
		t.Errorf("service should start empty")
	}
}

func TestSearchArticles(t *testing.T) {
	s := newTestService(t)
	if _, err := s.Ingest(context.Background(), sampleText); err != nil {
		t.Fatalf("Ingest: %v", err)
	}

	results := s.SearchArticles(context.Background(), "citizens rights", 5)
	if len(results) == 0 {
		t.Fatal("expected search results")
	}
	if results[0].ArticleNumber != "2" {
		t.Errorf("top result = %q, want article 2", results[0].ArticleNumber)
	}
	if !strings.Contains(results[0].Content, "Citizens have rights") {
		t.Errorf("search results should carry full content, got %q", results[0].Content)
	}
}

func TestLLMAvailable(t *testing.T) {
	if newTestService(t).LLMAvailable() {
		t.Error("excerpt-backed service must report the LLM as unavailable")
	}
	if !newTestService(t, WithGenerator(echoGenerator{answer: "ok"})).LLMAvailable() {
		t.Error("generator-backed service must report the LLM as available")
	}
}

var _ generator.Generator = echoGenerator{}
