package oidc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"time"

	"connect-gateway/internal/auth"
	"connect-gateway/internal/auth/provider"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

const providerName = "oidc"

// Provider implements a generic OpenID Connect provider found through
// discovery. The profile document is the set of verified ID token claims.
type Provider struct {
	*provider.Client
	verifier *oidc.IDTokenVerifier
}

// New runs discovery against opts.BaseURL, which must be the issuer.
// A non-empty opts.AuthURL replaces the discovered authorization
// endpoint, for issuers whose public hostname differs from the internal one.
func New(ctx context.Context, opts provider.Options) (provider.OAuthProvider, error) {
	if opts.BaseURL == "" || opts.ClientID == "" {
		return nil, fmt.Errorf("oidc config missing required fields")
	}

	if opts.HTTPClient == nil {
		timeout := opts.HTTPTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		opts.HTTPClient = &http.Client{Timeout: timeout}
	}
	ctx = oidc.ClientContext(ctx, opts.HTTPClient)

	oidcProvider, err := oidc.NewProvider(ctx, opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to init oidc provider: %w", err)
	}

	ep := oidcProvider.Endpoint()
	if opts.AuthURL != "" {
		ep.AuthURL = opts.AuthURL
	}
	if !slices.Contains(opts.Scopes, oidc.ScopeOpenID) {
		opts.Scopes = append([]string{oidc.ScopeOpenID}, opts.Scopes...)
	}

	client, err := provider.NewClientWithEndpoint(opts, ep)
	if err != nil {
		return nil, err
	}

	return &Provider{
		Client:   client,
		verifier: oidcProvider.Verifier(&oidc.Config{ClientID: opts.ClientID}),
	}, nil
}

func (p *Provider) Name() string {
	return providerName
}

// FetchProfile verifies the ID token returned with the access token and
// returns its claims.
func (p *Provider) FetchProfile(ctx context.Context, token *oauth2.Token) (provider.Document, error) {
	if token == nil {
		return nil, fmt.Errorf("%w: no token", auth.ErrProfileFetch)
	}
	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, fmt.Errorf("%w: provider did not return id_token", auth.ErrProfileFetch)
	}

	idToken, err := p.verifier.Verify(oidc.ClientContext(ctx, p.HTTPClient()), rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("%w: id_token verification: %w", auth.ErrProfileFetch, err)
	}

	var claims json.RawMessage
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("%w: id_token claims: %w", auth.ErrProfileFetch, err)
	}
	return provider.Document(claims), nil
}

type claims struct {
	Subject    string `json:"sub"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	Email      string `json:"email"`
}

// MapProfile maps verified claims. Only verified documents reach it, so
// the token is always considered valid.
func (p *Provider) MapProfile(doc provider.Document, token *oauth2.Token) *auth.Identity {
	var c claims
	_ = doc.Decode(&c)

	id := &auth.Identity{
		Provider:   providerName,
		ExternalID: c.Subject,
		FirstName:  c.GivenName,
		LastName:   c.FamilyName,
		Email:      c.Email,
		TokenValid: true,
	}
	provider.AttachToken(id, token)
	return id
}
