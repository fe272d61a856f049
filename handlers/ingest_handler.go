package handlers

import (
	"io"
	"net/http"
	"os"
	"strings"

	"constitutionbd-backend/service"

	"github.com/gin-gonic/gin"
)

// IngestHandler handles HTTP requests that load a constitution document into
// the pipeline.
type IngestHandler struct {
	constitutionService *service.ConstitutionService
	maxFileSize         int64
}

// NewIngestHandler creates a new ingest handler
func NewIngestHandler(constitutionService *service.ConstitutionService) *IngestHandler {
	return &IngestHandler{
		constitutionService: constitutionService,
		maxFileSize:         10 * 1024 * 1024, // 10MB
	}
}

// Upload handles POST /ingest with a multipart .txt file
func (h *IngestHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_FILE",
				"message": "File is required",
			},
		})
		return
	}

	if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".txt") {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_FILE_TYPE",
				"message": "Only .txt files are supported",
			},
		})
		return
	}

	if fileHeader.Size > h.maxFileSize {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FILE_TOO_LARGE",
				"message": "File exceeds the 10MB limit",
			},
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "READ_FAILED",
				"message": err.Error(),
			},
		})
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "READ_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	h.ingest(c, string(content))
}

// IngestFromPathRequest represents the request body for path-based ingestion
type IngestFromPathRequest struct {
	FilePath string `json:"file_path" binding:"required"`
}

// FromPath handles POST /ingest-from-path
func (h *IngestHandler) FromPath(c *gin.Context) {
	var req IngestFromPathRequest
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

	if !strings.HasSuffix(strings.ToLower(req.FilePath), ".txt") {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_FILE_TYPE",
				"message": "Only .txt files are supported",
			},
		})
		return
	}

	content, err := os.ReadFile(req.FilePath)
	if err != nil {
		if os.IsNotExist(err) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "FILE_NOT_FOUND",
					"message": "File not found: " + req.FilePath,
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "READ_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	h.ingest(c, string(content))
}

func (h *IngestHandler) ingest(c *gin.Context, rawText string) {
	count, err := h.constitutionService.Ingest(c.Request.Context(), rawText)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INGEST_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"message":             "Constitution ingested successfully",
			"documents_processed": count,
		},
	})
}
