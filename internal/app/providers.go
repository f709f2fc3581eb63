package app

import (
	"context"
	"net/http"

	"connect-gateway/internal/auth/provider"
	"connect-gateway/internal/auth/provider/connect"
	"connect-gateway/internal/auth/provider/oidc"
	"connect-gateway/internal/auth/provider/vatsim"
	"connect-gateway/internal/config"
	"connect-gateway/internal/logger"
)

func newRegistry() *provider.Registry {
	r := provider.NewRegistry()
	r.Register("vatsim", vatsim.New)
	r.Register("connect", connect.New)
	r.Register("oidc", oidc.New)
	return r
}

func providerOptions(cfg config.Config) provider.Options {
	c := cfg.Connect
	return provider.Options{
		ClientID:       c.ClientID,
		ClientSecret:   c.ClientSecret,
		RedirectURL:    c.RedirectURI,
		BaseURL:        c.Base,
		AuthURL:        c.AuthorizeURI,
		TokenURL:       c.TokenURI,
		UserInfoURL:    c.UserURI,
		Scopes:         c.ScopeList(),
		RequiredScopes: c.RequiredScopes,
		PingTimeout:    c.PingTimeout,
		HTTPTimeout:    c.HTTPTimeout,
		HTTPClient:     &http.Client{Timeout: c.HTTPTimeout},
	}
}

// setupProvider builds the configured identity provider.
func setupProvider(ctx context.Context, cfg config.Config) (provider.OAuthProvider, error) {
	registry := newRegistry()

	p, err := registry.Build(ctx, cfg.Connect.Provider, providerOptions(cfg))
	if err != nil {
		return nil, err
	}

	logger.Info("identity provider configured", map[string]any{
		"provider": p.Name(),
		"base":     cfg.Connect.Base,
		"pkce":     cfg.Connect.PKCE,
	})
	return p, nil
}
