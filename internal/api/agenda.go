package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nhle/onebox/internal/model"
	"github.com/nhle/onebox/internal/store"
)

// createAgendaRequest mirrors the reference document creation payload.
type createAgendaRequest struct {
	Title   string   `json:"title" binding:"required"`
	Content string   `json:"content" binding:"required"`
	Tags    []string `json:"tags"`
}

func (s *Server) handleCreateAgendaDoc(c *gin.Context) {
	var req createAgendaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	doc := model.AgendaDoc{
		Title:   req.Title,
		Content: req.Content,
		Tags:    req.Tags,
	}
	if err := s.store.CreateAgendaDoc(c.Request.Context(), &doc); err != nil {
		s.logger.Error("creating agenda doc", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "creating agenda doc failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": doc.ID})
}

// suggestRequest names the message to draft a reply for.
type suggestRequest struct {
	EmailID string `json:"email_id" binding:"required"`
}

func (s *Server) handleSuggestReply(c *gin.Context) {
	var req suggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	suggestion, err := s.engine.Suggest(c.Request.Context(), req.EmailID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Email not found"})
			return
		}
		s.logger.Error("suggesting reply", zap.String("email_id", req.EmailID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "suggesting reply failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"suggestion": suggestion})
}
