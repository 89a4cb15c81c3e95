package api

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nhle/onebox/internal/store"
)

// syncRequest carries the per-run overrides for a sync trigger.
type syncRequest struct {
	// Folders defaults to INBOX alone when empty.
	Folders []string `json:"folders"`

	// Days is the lookback window; the server default applies when
	// omitted or non-positive.
	Days int `json:"days"`
}

// handleTriggerSync acknowledges the request and runs the sync in the
// background. Only an unknown account is reported synchronously; run
// failures surface in the logs and as a lower message count.
func (s *Server) handleTriggerSync(c *gin.Context) {
	accountID := c.Param("accountID")

	// An empty body means defaults for everything.
	var req syncRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	acc, err := s.store.GetAccount(c.Request.Context(), accountID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Account not found"})
			return
		}
		s.logger.Error("loading account", zap.String("account_id", accountID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "loading account failed"})
		return
	}

	days := req.Days
	if days <= 0 {
		days = s.defaultDays
	}

	go func() {
		inserted, err := s.orch.Run(context.Background(), *acc, req.Folders, days)
		if err != nil {
			s.logger.Warn("sync run failed",
				zap.String("account_id", acc.ID),
				zap.Error(err))
			return
		}
		s.logger.Info("sync run finished",
			zap.String("account_id", acc.ID),
			zap.Int("inserted", inserted))
	}()

	c.JSON(http.StatusOK, gin.H{"status": "started"})
}
