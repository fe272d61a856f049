package models

// Confidence is a coarse indicator of answer trustworthiness.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Source describes one retrieved passage in a query result. Content holds an
// excerpt truncated to 200 characters.
type Source struct {
	Article       string `json:"article"`
	ArticleNumber string `json:"article_number"`
	Content       string `json:"content"`
}

// QueryResult is the outcome of a constitutional query.
type QueryResult struct {
	Answer            string     `json:"answer"`
	Sources           []Source   `json:"sources"`
	VerifiedCitations []string   `json:"verified_citations"`
	CrossReferences   []string   `json:"cross_references"`
	Confidence        Confidence `json:"confidence"`
}

// ArticleResult is one hit from an article search, carrying the full passage
// content rather than a truncated excerpt.
type ArticleResult struct {
	Article       string `json:"article"`
	ArticleNumber string `json:"article_number"`
	Content       string `json:"content"`
}
