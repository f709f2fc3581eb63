package session

import (
	"net/http"
	"time"
)

const (
	// CookieName is used over HTTPS. The __Host- prefix pins the cookie
	// to this host and path.
	CookieName = "__Host-session"

	// InsecureCookieName is used when Secure is off (local development);
	// browsers reject __Host- cookies without Secure.
	InsecureCookieName = "wiki_session"
)

// CookieOptions defines how session cookies are issued.
type CookieOptions struct {
	Path     string
	HttpOnly bool
	Secure   bool
	SameSite http.SameSite
	Domain   string // should usually be empty for __Host- cookies
}

// normalize applies safe defaults without breaking callers
func (o CookieOptions) normalize() CookieOptions {
	if o.Path == "" {
		o.Path = "/" // required for __Host-
	}
	if !o.HttpOnly {
		o.HttpOnly = true // secure default
	}
	if o.SameSite == 0 {
		// Lax keeps the cookie on the top-level redirect back from the provider.
		o.SameSite = http.SameSiteLaxMode
	}
	return o
}

// Name returns the cookie name matching the Secure flag.
func (o CookieOptions) Name() string {
	if o.Secure {
		return CookieName
	}
	return InsecureCookieName
}

// SetCookie issues the session cookie to the client.
func SetCookie(
	w http.ResponseWriter,
	sessionID string,
	expiresAt time.Time,
	opts CookieOptions,
) {
	opts = opts.normalize()

	http.SetCookie(w, &http.Cookie{
		Name:     opts.Name(),
		Value:    sessionID,
		Path:     opts.Path,
		Domain:   opts.Domain,
		Expires:  expiresAt,
		HttpOnly: opts.HttpOnly,
		Secure:   opts.Secure,
		SameSite: opts.SameSite,
	})
}
