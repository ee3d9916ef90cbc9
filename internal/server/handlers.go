package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"retail-chatbot/internal/common/errors"
	"retail-chatbot/internal/common/validation"
	"retail-chatbot/internal/concept"
	"retail-chatbot/internal/model"
)

func (s *Server) handleChat(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}

	result, err := validation.ValidateChatRequest(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed JSON payload"})
		return
	}
	if !result.Valid {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "invalid chat request",
			"fields": result.GetErrorMessages(),
		})
		return
	}

	var req model.ChatRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed JSON payload"})
		return
	}

	if _, err := concept.Normalize(req.Concept); err != nil {
		stdErr, _ := errors.AsStandardError(err)
		c.JSON(http.StatusBadRequest, gin.H{
			"error": stdErr.Message,
			"code":  string(stdErr.Code),
		})
		return
	}

	resp := s.router.HandleUserQuery(c.Request.Context(), &req)
	c.JSON(http.StatusOK, resp)
}

type documentRequest struct {
	Concept string `json:"concept" binding:"required"`
	Text    string `json:"text"`
}

func (s *Server) handleAddDocument(c *gin.Context) {
	var req documentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	docID, chunks, err := s.store.AddDocument(c.Request.Context(), req.Concept, req.Text)
	if err != nil {
		s.writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"documentId": docID, "chunks": chunks})
}

func (s *Server) handleDeleteDocument(c *gin.Context) {
	rawConcept := c.Query("concept")
	docID := c.Param("id")

	if err := s.store.DeleteDocument(c.Request.Context(), rawConcept, docID); err != nil {
		s.writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": docID})
}

func (s *Server) handleClearConcept(c *gin.Context) {
	var req documentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.store.ClearConcept(c.Request.Context(), req.Concept); err != nil {
		s.writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cleared": req.Concept})
}

func (s *Server) handleInitDocuments(c *gin.Context) {
	if err := s.store.InitializeAll(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"initialized": concept.ValidConcepts()})
}

func (s *Server) handleAnalyticsSummary(c *gin.Context) {
	hours, err := strconv.Atoi(c.DefaultQuery("hours", "24"))
	if err != nil || hours <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "hours must be a positive integer"})
		return
	}

	summary, err := s.stats.GetSummary(c.Request.Context(), time.Now().Add(-time.Duration(hours)*time.Hour))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (s *Server) handleSearchConversations(c *gin.Context) {
	size, err := strconv.Atoi(c.DefaultQuery("size", "20"))
	if err != nil || size <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "size must be a positive integer"})
		return
	}

	records, err := s.search.SearchConversations(c.Request.Context(), c.Query("q"), size)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversations": records, "total": len(records)})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "retail-chatbot",
	})
}

func (s *Server) writeStoreError(c *gin.Context, err error) {
	if stdErr, ok := errors.AsStandardError(err); ok {
		status := http.StatusInternalServerError
		if stdErr.Code == errors.ErrCodeUnknownConcept || stdErr.Code == errors.ErrCodeInvalidRequest {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": stdErr.Message, "code": string(stdErr.Code)})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
