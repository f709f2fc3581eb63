package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"connect-gateway/internal/auth"
	"connect-gateway/internal/auth/provider"
	"connect-gateway/internal/auth/provisioner"
	"connect-gateway/internal/logger"
	"connect-gateway/internal/metrics"
	"connect-gateway/internal/middleware"
	"connect-gateway/internal/session"

	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
)

const (
	LoginRoute   = "/login"
	FailedRoute  = "/login/failed"
	LogoutRoute  = "/logout"
	LandingRoute = "/"

	MessageLoginFailed = "Error logging in. Please try again."
	MessageLoggedOut   = "Logged out successfully."
)

type Options struct {
	// PKCE adds an S256 code challenge to the authorization redirect.
	PKCE bool
}

type Handler struct {
	provider    provider.OAuthProvider
	sessions    *session.Manager
	provisioner provisioner.Provisioner
	metrics     *metrics.Metrics
	opts        Options
}

func NewHandler(
	p provider.OAuthProvider,
	sessions *session.Manager,
	prov provisioner.Provisioner,
	m *metrics.Metrics,
	opts Options,
) *Handler {
	return &Handler{
		provider:    p,
		sessions:    sessions,
		provisioner: prov,
		metrics:     m,
		opts:        opts,
	}
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET(LoginRoute, h.login)
	r.GET(FailedRoute, h.failed)
	r.GET(LogoutRoute, h.logout)
}

// login serves both legs of the flow: without code and state it starts a
// login, with both it handles the provider callback.
func (h *Handler) login(c *gin.Context) {
	code, hasCode := c.GetQuery("code")
	state, hasState := c.GetQuery("state")
	providerErr := c.Query("error")

	switch {
	case providerErr != "":
		h.denied(c, providerErr)
	case hasCode && hasState:
		h.callback(c, code, state)
	default:
		h.start(c)
	}
}

func (h *Handler) start(c *gin.Context) {
	ctx := c.Request.Context()

	began := time.Now()
	err := h.provider.Ping(ctx)
	h.metrics.ObservePing(time.Since(began))
	if err != nil {
		logger.Warn("identity provider unavailable", map[string]any{
			"provider": h.provider.Name(),
			"error":    err.Error(),
		})
		h.fail(c, metrics.OutcomeUnavailable)
		return
	}

	sess, err := h.sessions.Ensure(c.Writer, c.Request)
	if err != nil {
		h.internalError(c, "failed to start session", err)
		return
	}

	state, err := generateState()
	if err != nil {
		h.internalError(c, "failed to generate state", err)
		return
	}
	if err := h.sessions.Put(ctx, sess, stateKey, state); err != nil {
		h.internalError(c, "failed to store state", err)
		return
	}

	var opts []oauth2.AuthCodeOption
	if h.opts.PKCE {
		verifier, challenge := challengeOptions()
		if err := h.sessions.Put(ctx, sess, verifierKey, verifier); err != nil {
			h.internalError(c, "failed to store pkce verifier", err)
			return
		}
		opts = challenge
	}

	h.metrics.Login(h.provider.Name(), metrics.OutcomeRedirected)
	c.Redirect(http.StatusFound, h.provider.AuthCodeURL(state, opts...))
}

func (h *Handler) callback(c *gin.Context, code, received string) {
	ctx := c.Request.Context()

	sess, err := h.sessions.Current(c.Request)
	if err != nil {
		h.internalError(c, "failed to load session", err)
		return
	}

	pending, err := h.sessions.Pull(ctx, sess, stateKey)
	if err != nil {
		h.internalError(c, "failed to read state", err)
		return
	}
	if err := verifyState(pending, received); err != nil {
		logger.Warn("rejected login callback", map[string]any{
			"provider": h.provider.Name(),
			"error":    err.Error(),
			"ip":       c.ClientIP(),
		})
		h.metrics.Login(h.provider.Name(), metrics.OutcomeState)
		if _, err := h.sessions.Invalidate(c.Writer, c.Request); err != nil {
			logger.Error("failed to invalidate session", map[string]any{"error": err.Error()})
		}
		c.Redirect(http.StatusFound, LoginRoute)
		return
	}

	verifier, err := h.sessions.Pull(ctx, sess, verifierKey)
	if err != nil {
		h.internalError(c, "failed to read pkce verifier", err)
		return
	}

	identity, err := h.authenticate(ctx, code, verifier)
	if err != nil {
		logger.Warn("login failed", map[string]any{
			"provider": h.provider.Name(),
			"error":    err.Error(),
		})
		h.fail(c, outcomeFor(err))
		return
	}

	acct, err := h.provisioner.Provision(ctx, identity)
	if err != nil {
		h.internalError(c, "failed to provision account", err)
		return
	}

	// Read before Login, which discards the guest session's values.
	intended, err := h.sessions.Pull(ctx, sess, session.IntendedKey)
	if err != nil {
		logger.Warn("failed to read intended url", map[string]any{"error": err.Error()})
	}

	if _, err := h.sessions.Login(c.Writer, c.Request, acct.ID); err != nil {
		h.internalError(c, "failed to open session", err)
		return
	}

	logger.Info("login succeeded", map[string]any{
		"provider": h.provider.Name(),
		"user_id":  acct.ID,
		"ip":       c.ClientIP(),
	})
	h.metrics.Login(h.provider.Name(), metrics.OutcomeSuccess)
	c.Redirect(http.StatusFound, middleware.SafeRedirect(intended, LandingRoute))
}

// authenticate runs exchange, fetch, map and validate. Nothing is written
// before all four succeed.
func (h *Handler) authenticate(ctx context.Context, code, verifier string) (*auth.Identity, error) {
	token, err := h.provider.Exchange(ctx, code, verifierOptions(verifier)...)
	if err != nil {
		return nil, err
	}

	doc, err := h.provider.FetchProfile(ctx, token)
	if err != nil {
		return nil, err
	}

	identity := h.provider.MapProfile(doc, token)
	if err := identity.Validate(); err != nil {
		return nil, err
	}
	return identity, nil
}

// denied handles a callback carrying an error from the provider, such as
// the user declining consent. The pending state is consumed only when the
// callback carries it; otherwise it is put back for the real callback.
func (h *Handler) denied(c *gin.Context, reason string) {
	ctx := c.Request.Context()

	sess, err := h.sessions.Current(c.Request)
	if err == nil && sess != nil {
		pending, err := h.sessions.Pull(ctx, sess, stateKey)
		switch {
		case err != nil || pending == "":
		case verifyState(pending, c.Query("state")) == nil:
			_, _ = h.sessions.Pull(ctx, sess, verifierKey)
		default:
			if err := h.sessions.Put(ctx, sess, stateKey, pending); err != nil {
				logger.Error("failed to restore state", map[string]any{"error": err.Error()})
			}
		}
	}

	logger.Warn("provider returned error on callback", map[string]any{
		"provider": h.provider.Name(),
		"error":    reason,
		"desc":     c.Query("error_description"),
	})
	h.fail(c, metrics.OutcomeDenied)
}

func (h *Handler) failed(c *gin.Context) {
	sess, err := h.sessions.Ensure(c.Writer, c.Request)
	if err == nil {
		err = h.sessions.Put(c.Request.Context(), sess, session.FlashError, MessageLoginFailed)
	}
	if err != nil {
		logger.Error("failed to flash login error", map[string]any{"error": err.Error()})
	}
	c.Redirect(http.StatusFound, LandingRoute)
}

func (h *Handler) logout(c *gin.Context) {
	var userID string
	if sess, err := h.sessions.Current(c.Request); err == nil && sess != nil {
		userID = sess.UserID
	}

	sess, err := h.sessions.Invalidate(c.Writer, c.Request)
	if err == nil {
		err = h.sessions.Put(c.Request.Context(), sess, session.FlashSuccess, MessageLoggedOut)
	}
	if err != nil {
		logger.Error("failed to complete logout", map[string]any{"error": err.Error()})
	}

	if userID != "" {
		logger.Info("logout", map[string]any{"user_id": userID, "ip": c.ClientIP()})
	}
	c.Redirect(http.StatusFound, LandingRoute)
}

func (h *Handler) fail(c *gin.Context, outcome string) {
	h.metrics.Login(h.provider.Name(), outcome)
	c.Redirect(http.StatusFound, FailedRoute)
}

func (h *Handler) internalError(c *gin.Context, msg string, err error) {
	logger.Error(msg, map[string]any{
		"provider": h.provider.Name(),
		"error":    err.Error(),
	})
	h.fail(c, metrics.OutcomeInternal)
}

func outcomeFor(err error) string {
	switch {
	case errors.Is(err, auth.ErrTokenExchange):
		return metrics.OutcomeExchange
	case errors.Is(err, auth.ErrProfileFetch):
		return metrics.OutcomeProfile
	case errors.Is(err, auth.ErrIncompleteProfile):
		return metrics.OutcomeIncomplete
	default:
		return metrics.OutcomeInternal
	}
}
