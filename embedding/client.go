// Package embedding calls the Gemini embedding API over HTTP.
package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"
)

const (
	embeddingAPI = "https://generativelanguage.googleapis.com/v1beta/models/gemini-embedding-001:embedContent"

	// Dimension is the output dimensionality requested from the model; it
	// must match the vector column in the passage table.
	Dimension = 768

	maxRetries     = 3
	initialBackoff = time.Second
)

// EmbeddingRequest represents an embedding API request
type EmbeddingRequest struct {
	Model                string       `json:"model"`
	Content              ContentInput `json:"content"`
	TaskType             string       `json:"task_type,omitempty"`
	OutputDimensionality int          `json:"output_dimensionality,omitempty"`
}

// ContentInput represents content for embedding
type ContentInput struct {
	Parts []PartInput `json:"parts"`
}

// PartInput represents a part of content
type PartInput struct {
	Text string `json:"text"`
}

// EmbeddingResponse represents an embedding API response
type EmbeddingResponse struct {
	Embedding EmbeddingData `json:"embedding"`
}

// EmbeddingData contains the embedding values
type EmbeddingData struct {
	Values []float64 `json:"values"`
}

// Client embeds text with the Gemini embedding model.
type Client struct {
	apiKey string
	http   *http.Client
}

// NewClient creates an embedding client for the given API key.
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey: apiKey,
		http:   &http.Client{Timeout: 30 * time.Second},
	}
}

// EmbedQuery embeds a retrieval query.
func (c *Client) EmbedQuery(ctx context.Context, text string) ([]float64, error) {
	return c.embed(ctx, text, "RETRIEVAL_QUERY")
}

// EmbedDocument embeds a passage for indexing.
func (c *Client) EmbedDocument(ctx context.Context, text string) ([]float64, error) {
	return c.embed(ctx, text, "RETRIEVAL_DOCUMENT")
}

func (c *Client) embed(ctx context.Context, text, taskType string) ([]float64, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY not set")
	}

	reqBody := EmbeddingRequest{
		Model: "models/gemini-embedding-001",
		Content: ContentInput{
			Parts: []PartInput{{Text: text}},
		},
		TaskType:             taskType,
		OutputDimensionality: Dimension,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	backoff := initialBackoff
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(backoff)
			backoff *= 2
		}

		req, err := http.NewRequestWithContext(ctx, "POST", embeddingAPI, bytes.NewBuffer(jsonData))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-goog-api-key", c.apiKey)

		resp, err := c.http.Do(req)
		if err != nil {
			if attempt == maxRetries-1 {
				return nil, fmt.Errorf("failed to send request after %d attempts: %w", maxRetries, err)
			}
			continue
		}

		if resp.StatusCode == http.StatusOK {
			var apiResp EmbeddingResponse
			err := json.NewDecoder(resp.Body).Decode(&apiResp)
			resp.Body.Close()
			if err != nil {
				if attempt == maxRetries-1 {
					return nil, fmt.Errorf("failed to decode response: %w", err)
				}
				continue
			}
			return normalize(apiResp.Embedding.Values), nil
		}

		resp.Body.Close()

		// Don't retry on 400 or 401 errors
		if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized {
			return nil, fmt.Errorf("API error: %d", resp.StatusCode)
		}

		if attempt == maxRetries-1 {
			return nil, fmt.Errorf("API error after %d attempts: %d", maxRetries, resp.StatusCode)
		}
	}

	return nil, fmt.Errorf("embedding request failed")
}

// normalize scales the vector to unit length so cosine distance and inner
// product rank identically.
func normalize(embedding []float64) []float64 {
	norm := 0.0
	for _, v := range embedding {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range embedding {
			embedding[i] /= norm
		}
	}
	return embedding
}
