// Package web renders the landing and account pages.
package web

import (
	"embed"
	"html/template"
	"net/http"

	"connect-gateway/internal/auth/account"
	"connect-gateway/internal/logger"
	"connect-gateway/internal/middleware"
	"connect-gateway/internal/session"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates parses the embedded page templates.
func Templates() *template.Template {
	return template.Must(template.ParseFS(templateFS, "templates/*.html"))
}

// Button is the provider login button shown to guests.
type Button struct {
	Name string
	Icon string
}

type Handler struct {
	sessions *session.Manager
	accounts account.Store
	button   Button
}

func NewHandler(sessions *session.Manager, accounts account.Store, button Button) *Handler {
	return &Handler{sessions: sessions, accounts: accounts, button: button}
}

// RegisterRoutes installs the templates and pages. requireLogin guards
// the account page.
func (h *Handler) RegisterRoutes(r *gin.Engine, requireLogin gin.HandlerFunc) {
	r.SetHTMLTemplate(Templates())
	r.GET("/", h.landing)
	r.GET("/account", requireLogin, h.account)
}

type landingPage struct {
	Button  Button
	Error   string
	Success string
	Account *account.Account
}

func (h *Handler) landing(c *gin.Context) {
	ctx := c.Request.Context()
	page := landingPage{Button: h.button}

	sess, err := h.sessions.Current(c.Request)
	if err != nil {
		logger.Error("failed to load session", map[string]any{"error": err.Error()})
	}

	// Flashes are shown once.
	page.Error, _ = h.sessions.Pull(ctx, sess, session.FlashError)
	page.Success, _ = h.sessions.Pull(ctx, sess, session.FlashSuccess)

	if sess.Authenticated() {
		acct, err := h.accounts.FindByID(ctx, sess.UserID)
		if err != nil {
			logger.Warn("session user has no account", map[string]any{
				"user_id": sess.UserID,
				"error":   err.Error(),
			})
		} else {
			page.Account = acct
		}
	}

	c.HTML(http.StatusOK, "landing.html", page)
}

func (h *Handler) account(c *gin.Context) {
	userID, _ := middleware.UserIDFromContext(c.Request.Context())

	acct, err := h.accounts.FindByID(c.Request.Context(), userID)
	if err != nil {
		logger.Warn("session user has no account", map[string]any{
			"user_id": userID,
			"error":   err.Error(),
		})
		c.Redirect(http.StatusFound, "/logout")
		return
	}

	c.HTML(http.StatusOK, "account.html", gin.H{"Account": acct})
}
