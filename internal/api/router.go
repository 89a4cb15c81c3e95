// Package api exposes the synchronous HTTP surface: account and agenda
// CRUD, sync triggering, message search, and reply suggestions.
package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nhle/onebox/internal/notify"
	"github.com/nhle/onebox/internal/store"
	"github.com/nhle/onebox/internal/suggest"
	"github.com/nhle/onebox/internal/syncer"
)

// Server bundles the collaborators the HTTP handlers depend on.
type Server struct {
	store       store.Store
	orch        *syncer.Orchestrator
	engine      *suggest.Engine
	notifier    *notify.Notifier
	logger      *zap.Logger
	defaultDays int

	// storePassword hook lets the account handler divert secrets to an
	// external credential backend at creation time. Nil keeps the
	// password on the account row.
	storePassword func(accountID, password string) error
}

// NewServer creates the handler set over the given collaborators.
func NewServer(
	st store.Store,
	orch *syncer.Orchestrator,
	engine *suggest.Engine,
	notifier *notify.Notifier,
	logger *zap.Logger,
	defaultDays int,
	storePassword func(accountID, password string) error,
) *Server {
	return &Server{
		store:         st,
		orch:          orch,
		engine:        engine,
		notifier:      notifier,
		logger:        logger,
		defaultDays:   defaultDays,
		storePassword: storePassword,
	}
}

// Router builds the Gin engine with all routes configured.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}))

	router.GET("/", s.handleRoot)
	router.GET("/health", s.handleHealth)

	router.POST("/accounts", s.handleCreateAccount)
	router.GET("/accounts", s.handleListAccounts)

	router.POST("/sync/:accountID", s.handleTriggerSync)

	router.GET("/emails", s.handleListEmails)
	router.GET("/emails/folders", s.handleListFolders)
	router.POST("/emails/:id/mark/interested", s.handleMarkInterested)

	router.POST("/agenda", s.handleCreateAgendaDoc)
	router.POST("/suggest-reply", s.handleSuggestReply)

	return router
}

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Onebox backend running"})
}

func (s *Server) handleHealth(c *gin.Context) {
	dbStatus := "connected"
	status := http.StatusOK
	if err := s.store.Ping(c.Request.Context()); err != nil {
		dbStatus = "unavailable"
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"backend": "running", "database": dbStatus})
}
