package handler

import (
	"errors"
	"net/http"
	"time"

	"connect-gateway/internal/auth/account"
	"connect-gateway/internal/auth/provisioner"
	"connect-gateway/internal/logger"
	"connect-gateway/internal/middleware"

	"github.com/gin-gonic/gin"
)

// AccountHandler serves the signed-in user's account. Routes must sit
// behind the auth middleware.
type AccountHandler struct {
	accounts    account.Store
	provisioner *provisioner.StoreProvisioner
	refresher   provisioner.Refresher
}

func NewAccountHandler(
	accounts account.Store,
	prov *provisioner.StoreProvisioner,
	refresher provisioner.Refresher,
) *AccountHandler {
	return &AccountHandler{
		accounts:    accounts,
		provisioner: prov,
		refresher:   refresher,
	}
}

func (h *AccountHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/me", h.me)
	r.POST("/me/token/refresh", h.refreshToken)
}

type accountResponse struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	FullName     string     `json:"full_name"`
	Email        string     `json:"email"`
	Slug         string     `json:"slug"`
	RoleID       int64      `json:"role_id"`
	HasToken     bool       `json:"has_token"`
	TokenExpires *time.Time `json:"token_expires,omitempty"`
}

func toResponse(a *account.Account) accountResponse {
	resp := accountResponse{
		ID:       a.ID,
		Name:     a.Name,
		FullName: a.FullName,
		Email:    a.Email,
		Slug:     a.Slug,
		RoleID:   a.RoleID,
		HasToken: a.HasToken(),
	}
	if !a.TokenExpires.IsZero() {
		exp := a.TokenExpires
		resp.TokenExpires = &exp
	}
	return resp
}

func (h *AccountHandler) me(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	acct, err := h.accounts.FindByID(c.Request.Context(), userID)
	if errors.Is(err, account.ErrNotFound) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unknown account"})
		return
	}
	if err != nil {
		logger.Error("failed to load account", map[string]any{"user_id": userID, "error": err.Error()})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load account"})
		return
	}

	c.JSON(http.StatusOK, toResponse(acct))
}

func (h *AccountHandler) refreshToken(c *gin.Context) {
	userID, ok := middleware.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	acct, err := h.provisioner.RefreshTokens(c.Request.Context(), userID, h.refresher)
	switch {
	case err == nil:
		logger.Info("provider token refreshed", map[string]any{"user_id": userID})
		c.JSON(http.StatusOK, toResponse(acct))
	case errors.Is(err, account.ErrNotFound):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unknown account"})
	case errors.Is(err, provisioner.ErrNoRefreshToken):
		c.JSON(http.StatusConflict, gin.H{"error": "no refresh token on record"})
	case errors.Is(err, provisioner.ErrReauthenticate):
		logger.Warn("provider rejected refresh token", map[string]any{"user_id": userID})
		c.JSON(http.StatusUnauthorized, gin.H{"error": "login required"})
	default:
		logger.Error("token refresh failed", map[string]any{"user_id": userID, "error": err.Error()})
		c.JSON(http.StatusBadGateway, gin.H{"error": "token refresh failed"})
	}
}
