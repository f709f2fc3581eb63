package provider

import (
	"context"

	"connect-gateway/internal/auth"

	"golang.org/x/oauth2"
)

// OAuthProvider is the capability set the login flow needs from an
// identity provider. Implementations return identity facts only and
// must not create accounts or touch sessions.
type OAuthProvider interface {
	// Name returns the provider identifier (e.g. "vatsim", "connect").
	Name() string

	// Ping reports ErrProviderUnavailable when the provider answers
	// with a 5xx or cannot be reached.
	Ping(ctx context.Context) error

	// AuthCodeURL returns the authorization URL for the given state.
	AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string

	// Exchange trades an authorization code for tokens.
	Exchange(ctx context.Context, code string, opts ...oauth2.AuthCodeOption) (*oauth2.Token, error)

	// FetchProfile retrieves the resource owner document.
	FetchProfile(ctx context.Context, token *oauth2.Token) (Document, error)

	// MapProfile normalizes a profile document. Missing fields come
	// back empty; it never fails.
	MapProfile(doc Document, token *oauth2.Token) *auth.Identity

	// Refresh returns nil without an error when the provider rejects
	// the refresh token.
	Refresh(ctx context.Context, token *oauth2.Token) (*oauth2.Token, error)
}

// AttachToken copies the token into the identity when the provider
// granted lasting access.
func AttachToken(id *auth.Identity, token *oauth2.Token) {
	if id == nil || token == nil || !id.TokenValid {
		return
	}
	id.AccessToken = token.AccessToken
	id.RefreshToken = token.RefreshToken
	id.TokenExpiry = token.Expiry
}
