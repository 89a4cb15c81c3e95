package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nhle/onebox/internal/model"
)

// createAccountRequest mirrors the account creation payload. Port and
// use_ssl default to the common IMAP-over-TLS settings when omitted.
type createAccountRequest struct {
	Provider    string `json:"provider" binding:"required"`
	Host        string `json:"host" binding:"required"`
	Port        *int   `json:"port"`
	Username    string `json:"username" binding:"required"`
	Password    string `json:"password" binding:"required"`
	UseSSL      *bool  `json:"use_ssl"`
	Description string `json:"description"`
}

func (s *Server) handleCreateAccount(c *gin.Context) {
	var req createAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	acc := model.Account{
		Provider:    req.Provider,
		Host:        req.Host,
		Port:        993,
		Username:    req.Username,
		Password:    req.Password,
		UseSSL:      true,
		Description: req.Description,
	}
	if req.Port != nil {
		acc.Port = *req.Port
	}
	if req.UseSSL != nil {
		acc.UseSSL = *req.UseSSL
	}

	if s.storePassword != nil {
		// Secret goes to the credential backend; the row keeps none.
		password := acc.Password
		acc.Password = ""
		if err := s.store.CreateAccount(c.Request.Context(), &acc); err != nil {
			s.logger.Error("creating account", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "creating account failed"})
			return
		}
		if err := s.storePassword(acc.ID, password); err != nil {
			s.logger.Error("storing account credential", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "storing credential failed"})
			return
		}
	} else {
		if err := s.store.CreateAccount(c.Request.Context(), &acc); err != nil {
			s.logger.Error("creating account", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "creating account failed"})
			return
		}
	}

	c.JSON(http.StatusOK, acc)
}

func (s *Server) handleListAccounts(c *gin.Context) {
	accounts, err := s.store.ListAccounts(c.Request.Context())
	if err != nil {
		s.logger.Error("listing accounts", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "listing accounts failed"})
		return
	}
	if accounts == nil {
		accounts = []model.Account{}
	}
	c.JSON(http.StatusOK, accounts)
}
