package generator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"constitutionbd-backend/models"

	"github.com/google/generative-ai-go/genai"
)

const defaultCallTimeout = 60 * time.Second

// Gemini generates answers with the Gemini API. A nil client degrades to the
// excerpt fallback, so construction never fails on missing configuration.
type Gemini struct {
	client      *genai.Client
	model       string
	temperature float32
	maxTokens   int32
	timeout     time.Duration
	fallback    Excerpt
}

// NewGemini creates a Gemini-backed generator. client may be nil when the API
// key is not configured.
func NewGemini(client *genai.Client, model string, temperature float32, maxTokens int32) *Gemini {
	return &Gemini{
		client:      client,
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
		timeout:     defaultCallTimeout,
	}
}

// Available reports whether a Gemini client is configured.
func (g *Gemini) Available() bool { return g.client != nil }

// Generate asks Gemini to answer from the provided passages. Model failures
// become a descriptive answer string; timeouts and cancellation fall back to
// the excerpt answer instead of hanging the query.
func (g *Gemini) Generate(ctx context.Context, question string, passages []models.Passage) string {
	if g.client == nil {
		return g.fallback.Generate(ctx, question, passages)
	}

	contents := make([]string, 0, len(passages))
	for _, p := range passages {
		contents = append(contents, p.Content)
	}
	prompt := buildPrompt(question, strings.Join(contents, "\n\n"))

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	model := g.client.GenerativeModel(g.model)
	model.SetTemperature(g.temperature)
	model.SetMaxOutputTokens(g.maxTokens)

	resp, err := model.GenerateContent(callCtx, genai.Text(prompt))
	if err != nil {
		if timedOut(callCtx, err) {
			log.Printf("Warning: Gemini call timed out, answering with excerpts: %v", err)
			return g.fallback.Generate(ctx, question, passages)
		}
		return fmt.Sprintf("Failed to generate answer using Gemini: %v", err)
	}

	answer := collectText(resp)
	if answer == "" {
		return "Failed to generate answer using Gemini: empty response"
	}
	return answer
}

// timedOut reports whether a failed call should fall back to excerpts. The
// gRPC transport does not always wrap the context error, so the call context
// is checked directly as well.
func timedOut(callCtx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	return callCtx.Err() != nil
}

func collectText(resp *genai.GenerateContentResponse) string {
	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				builder.WriteString(string(text))
			}
		}
	}
	return builder.String()
}

func buildPrompt(question, contextText string) string {
	return fmt.Sprintf(`You are a constitutional law expert specializing in the Bangladesh Constitution.

Based on the following constitutional provisions, answer the user's question accurately and concisely.

CONTEXT:
%s

QUESTION: %s

INSTRUCTIONS:
1. Answer based ONLY on the provided constitutional text
2. Cite specific articles when referring to constitutional provisions
3. If the information is not in the provided context, state that clearly
4. Use clear, accessible language while maintaining legal accuracy
5. Format your answer with proper article citations (e.g., "According to Article 32...")

ANSWER:`, contextText, question)
}
