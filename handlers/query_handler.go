package handlers

import (
	"net/http"
	"strings"

	"constitutionbd-backend/service"

	"github.com/gin-gonic/gin"
)

const (
	minSearchK = 1
	maxSearchK = 20
)

// QueryHandler handles HTTP requests for querying and searching the
// constitution.
type QueryHandler struct {
	constitutionService *service.ConstitutionService
	llmProvider         string
	storageType         string
}

// NewQueryHandler creates a new query handler
func NewQueryHandler(constitutionService *service.ConstitutionService, llmProvider, storageType string) *QueryHandler {
	return &QueryHandler{
		constitutionService: constitutionService,
		llmProvider:         llmProvider,
		storageType:         storageType,
	}
}

// QueryRequest represents the request body for a constitutional query
type QueryRequest struct {
	Question       string `json:"question"`
	IncludeSources *bool  `json:"include_sources"`
}

// Query handles POST /query
func (h *QueryHandler) Query(c *gin.Context) {
	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	if strings.TrimSpace(req.Question) == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "EMPTY_QUESTION",
				"message": "Question cannot be empty",
			},
		})
		return
	}

	result := h.constitutionService.Query(c.Request.Context(), req.Question)

	if req.IncludeSources != nil && !*req.IncludeSources {
		result.Sources = result.Sources[:0]
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"question":           req.Question,
			"answer":             result.Answer,
			"sources":            result.Sources,
			"verified_citations": result.VerifiedCitations,
			"cross_references":   result.CrossReferences,
			"confidence":         result.Confidence,
		},
	})
}

// SearchRequest represents the request body for an article search
type SearchRequest struct {
	Query string `json:"query"`
	K     int    `json:"k"`
}

// Search handles POST /search
func (h *QueryHandler) Search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	if strings.TrimSpace(req.Query) == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "EMPTY_QUERY",
				"message": "Search query cannot be empty",
			},
		})
		return
	}

	if req.K == 0 {
		req.K = 5
	}
	if req.K < minSearchK || req.K > maxSearchK {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_K",
				"message": "k must be between 1 and 20",
			},
		})
		return
	}

	results := h.constitutionService.SearchArticles(c.Request.Context(), req.Query, req.K)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"query":   req.Query,
			"k":       req.K,
			"results": results,
			"count":   len(results),
		},
	})
}

// Health handles GET /health
func (h *QueryHandler) Health(c *gin.Context) {
	documentsLoaded := h.constitutionService.DocumentCount() > 0

	status := "healthy"
	message := "All systems operational"
	if !documentsLoaded {
		status = "degraded"
		message = "Documents not loaded - need to ingest constitution"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":           status,
		"documents_loaded": documentsLoaded,
		"llm_available":    h.constitutionService.LLMAvailable(),
		"message":          message,
	})
}

// Stats handles GET /stats
func (h *QueryHandler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"documents_loaded": h.constitutionService.DocumentCount(),
			"articles_indexed": h.constitutionService.ArticleCount(),
			"llm_available":    h.constitutionService.LLMAvailable(),
			"llm_provider":     h.llmProvider,
			"storage_type":     h.storageType,
		},
	})
}

// Root handles GET /
func (h *QueryHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "ConstitutionBD API - RAG-powered Bangladesh Constitution Query System",
		"version": "1.0.0",
		"endpoints": gin.H{
			"health":           "/health",
			"query":            "/query",
			"search":           "/search",
			"ingest":           "/ingest",
			"ingest_from_path": "/ingest-from-path",
			"stats":            "/stats",
		},
	})
}
