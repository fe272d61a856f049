package models

// Passage represents a retrievable unit of constitutional text. A passage
// belongs to exactly one article (or the preamble); oversized articles are
// split into several passages that carry a ChunkIndex.
type Passage struct {
	Content       string `json:"content"`
	Source        string `json:"source"`
	Article       string `json:"article"`        // raw header text, e.g. "Article 32A."
	ArticleNumber string `json:"article_number"` // normalized id, e.g. "32A", or "Preamble"
	ChunkIndex    *int   `json:"chunk_index,omitempty"`
}

// Snapshot is the persisted form of the corpus: the ordered passages plus the
// article index mapping article numbers to full, unchunked article text.
type Snapshot struct {
	Documents    []Passage         `json:"documents"`
	ArticleIndex map[string]string `json:"article_index"`
}
