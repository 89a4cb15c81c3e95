package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nhle/onebox/internal/model"
	"github.com/nhle/onebox/internal/notify"
	"github.com/nhle/onebox/internal/store"
)

func (s *Server) handleListEmails(c *gin.Context) {
	filter := store.MessageFilter{
		AccountID: c.Query("account_id"),
		Folder:    c.Query("folder"),
		Query:     c.Query("q"),
		Limit:     intQuery(c, "limit", 50),
		Skip:      intQuery(c, "skip", 0),
	}

	messages, err := s.store.ListMessages(c.Request.Context(), filter)
	if err != nil {
		s.logger.Error("listing emails", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "listing emails failed"})
		return
	}
	if messages == nil {
		messages = []model.EmailMessage{}
	}

	c.JSON(http.StatusOK, gin.H{"items": messages, "count": len(messages)})
}

func (s *Server) handleListFolders(c *gin.Context) {
	accountID := c.Query("account_id")
	if accountID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "account_id is required"})
		return
	}

	counts, err := s.store.CountByFolder(c.Request.Context(), accountID)
	if err != nil {
		s.logger.Error("counting folders", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "listing folders failed"})
		return
	}
	if counts == nil {
		counts = []store.FolderCount{}
	}

	c.JSON(http.StatusOK, counts)
}

// markInterestedRequest optionally names a webhook to notify.
type markInterestedRequest struct {
	WebhookURL string `json:"webhook_url"`
}

// handleMarkInterested overrides a message's category to Interested and
// fires the outbound notifications. Notification failures are never
// surfaced to the caller.
func (s *Server) handleMarkInterested(c *gin.Context) {
	id := c.Param("id")

	var req markInterestedRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := s.store.GetMessage(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Email not found"})
			return
		}
		s.logger.Error("loading email", zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "loading email failed"})
		return
	}

	if err := s.store.UpdateCategory(c.Request.Context(), id, model.CategoryInterested); err != nil {
		s.logger.Error("updating category", zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "updating email failed"})
		return
	}

	subject := msg.Subject
	if subject == "" {
		subject = "(no subject)"
	}
	sender := msg.Sender
	if sender == "" {
		sender = "unknown"
	}

	webhookURL := req.WebhookURL
	go func() {
		s.notifier.Slack(fmt.Sprintf("New Interested email from %s: %s", sender, subject))
		s.notifier.Interested(webhookURL, notify.InterestedEvent{
			EmailID:   msg.ID,
			Subject:   subject,
			Sender:    sender,
			AccountID: msg.AccountID,
		})
	}()

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// intQuery parses an integer query parameter, falling back to def on
// absence or garbage.
func intQuery(c *gin.Context, name string, def int) int {
	raw := c.Query(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}
