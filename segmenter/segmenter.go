package segmenter

import (
	"regexp"
	"strings"

	"constitutionbd-backend/models"
)

// PreambleNumber is the article number assigned to text preceding the first
// article marker.
const PreambleNumber = "Preamble"

var (
	// Markers look like "Article 1.", "Article 32A" or "Article 152.".
	// "Article" with no number is not a marker and never splits the text.
	markerPattern = regexp.MustCompile(`Article\s+\d+[A-Z]*\.?`)
	numberPattern = regexp.MustCompile(`Article\s+(\d+[A-Z]*)`)
)

// chunk boundary separators, in preference order
var separators = []string{"\n\n", "\n", ". ", " "}

// Segmenter splits raw constitutional text into article-bounded passages,
// further splitting oversized articles into overlapping chunks.
type Segmenter struct {
	source       string
	chunkSize    int
	chunkOverlap int
}

// New creates a segmenter. chunkSize and chunkOverlap are character counts;
// an overlap that is negative or not smaller than the chunk size falls back
// to a fifth of the chunk size.
func New(source string, chunkSize, chunkOverlap int) *Segmenter {
	if chunkSize <= 0 {
		chunkSize = 1000
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = chunkSize / 5
	}
	return &Segmenter{
		source:       source,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}
}

// Segment splits text at article markers and returns the ordered passages
// together with the article index, which maps each article number to the
// full, unchunked article text. Articles with an empty body are discarded.
// Empty input yields no passages.
func (s *Segmenter) Segment(text string) ([]models.Passage, map[string]string) {
	index := make(map[string]string)
	var passages []models.Passage

	markers := markerPattern.FindAllStringIndex(text, -1)

	// Everything before the first marker is the preamble.
	preambleEnd := len(text)
	if len(markers) > 0 {
		preambleEnd = markers[0][0]
	}
	if preamble := strings.TrimSpace(text[:preambleEnd]); preamble != "" {
		passages = append(passages, models.Passage{
			Content:       preamble,
			Source:        s.source,
			Article:       PreambleNumber,
			ArticleNumber: PreambleNumber,
		})
		index[PreambleNumber] = preamble
	}

	for i, m := range markers {
		header := strings.TrimSpace(text[m[0]:m[1]])

		bodyEnd := len(text)
		if i+1 < len(markers) {
			bodyEnd = markers[i+1][0]
		}
		body := strings.TrimSpace(text[m[1]:bodyEnd])
		if body == "" {
			continue
		}

		fullArticle := header + " " + body
		number := ExtractArticleNumber(header)
		// Last write wins if an article number recurs.
		index[number] = fullArticle

		if len(fullArticle) > s.chunkSize {
			for ci, chunk := range splitWithOverlap(fullArticle, s.chunkSize, s.chunkOverlap) {
				chunkIndex := ci
				passages = append(passages, models.Passage{
					Content:       chunk,
					Source:        s.source,
					Article:       header,
					ArticleNumber: number,
					ChunkIndex:    &chunkIndex,
				})
			}
		} else {
			passages = append(passages, models.Passage{
				Content:       fullArticle,
				Source:        s.source,
				Article:       header,
				ArticleNumber: number,
			})
		}
	}

	return passages, index
}

// ExtractArticleNumber returns the normalized article number from a header
// string, e.g. "Article 32A." -> "32A". Headers without a number (such as
// "Preamble") are returned unchanged.
func ExtractArticleNumber(header string) string {
	if m := numberPattern.FindStringSubmatch(header); m != nil {
		return m[1]
	}
	return header
}

// splitWithOverlap cuts text into windows of at most size characters,
// breaking at the latest separator inside each window and overlapping
// consecutive windows by roughly overlap characters. Windows that trim down
// to nothing are dropped.
func splitWithOverlap(text string, size, overlap int) []string {
	var chunks []string
	start := 0
	for start < len(text) {
		if len(text)-start <= size {
			if chunk := strings.TrimSpace(text[start:]); chunk != "" {
				chunks = append(chunks, chunk)
			}
			break
		}

		cut := start + size
		for _, sep := range separators {
			if idx := strings.LastIndex(text[start:start+size], sep); idx > 0 {
				cut = start + idx + len(sep)
				break
			}
		}

		if chunk := strings.TrimSpace(text[start:cut]); chunk != "" {
			chunks = append(chunks, chunk)
		}

		next := cut - overlap
		if next <= start {
			next = cut
		}
		start = next
	}
	return chunks
}
