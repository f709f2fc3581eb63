package app

import (
	"context"
	"net/http"
	"time"

	"connect-gateway/internal/auth/account"
	"connect-gateway/internal/auth/handler"
	"connect-gateway/internal/auth/provider"
	"connect-gateway/internal/auth/provisioner"
	"connect-gateway/internal/config"
	"connect-gateway/internal/metrics"
	"connect-gateway/internal/middleware"
	"connect-gateway/internal/session"
	"connect-gateway/internal/web"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps are the collaborators the router is built from.
type Deps struct {
	Provider provider.OAuthProvider
	Sessions session.Store
	Accounts account.Store
	Registry *prometheus.Registry
	Health   func(ctx context.Context) error
}

func setupHTTP(ctx context.Context, cfg config.Config) (*gin.Engine, func() error, error) {
	infra, err := setupInfra(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	p, err := setupProvider(ctx, cfg)
	if err != nil {
		_ = infra.Close()
		return nil, nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	router := NewRouter(cfg, Deps{
		Provider: p,
		Sessions: session.NewRedisStore(infra.Redis.Client),
		Accounts: account.NewPostgresStore(infra.DB),
		Registry: registry,
		Health:   infra.Health,
	})

	return router, infra.Close, nil
}

// NewRouter wires handlers and middleware onto a gin engine.
func NewRouter(cfg config.Config, deps Deps) *gin.Engine {
	// ----------------------------
	// Dependencies
	// ----------------------------

	sessions := session.NewManager(deps.Sessions, cfg.SessionTTL, session.CookieOptions{
		Secure:   cfg.SessionSecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	prov := provisioner.NewStoreProvisioner(deps.Accounts, cfg.Connect.DefaultRoleID)

	authHandler := handler.NewHandler(
		deps.Provider,
		sessions,
		prov,
		metrics.New(deps.Registry),
		handler.Options{PKCE: cfg.Connect.PKCE},
	)
	accountHandler := handler.NewAccountHandler(deps.Accounts, prov, deps.Provider)
	pages := web.NewHandler(sessions, deps.Accounts, web.Button{
		Name: cfg.Connect.Name,
		Icon: cfg.Connect.Icon,
	})

	authMiddleware := middleware.NewAuthMiddleware(sessions, handler.LoginRoute)

	// ----------------------------
	// Router
	// ----------------------------

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID())

	// ----------------------------
	// Public Routes
	// ----------------------------

	authHandler.RegisterRoutes(router)
	pages.RegisterRoutes(router, middleware.Gin(authMiddleware.RequireLogin))

	router.GET("/health", func(c *gin.Context) {
		if deps.Health != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := deps.Health(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))

	// ----------------------------
	// Protected API Routes
	// ----------------------------

	api := router.Group("/api")
	api.Use(middleware.Gin(authMiddleware.RequireAuth))
	accountHandler.RegisterRoutes(api)

	return router
}
