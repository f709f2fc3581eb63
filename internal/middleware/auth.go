package middleware

import (
	"context"
	"net/http"
	"strings"

	"connect-gateway/internal/logger"
	"connect-gateway/internal/session"
)

// unexported, collision-proof context key
type userIDContextKeyType struct{}

var userIDKey = userIDContextKeyType{}

// UserIDFromContext extracts the authenticated user ID from context.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey).(string)
	return id, ok && id != ""
}

// WithUserID returns a context carrying the authenticated user ID.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

type AuthMiddleware struct {
	Sessions   *session.Manager
	LoginRoute string
}

func NewAuthMiddleware(sessions *session.Manager, loginRoute string) *AuthMiddleware {
	return &AuthMiddleware{Sessions: sessions, LoginRoute: loginRoute}
}

// RequireAuth rejects requests without an authenticated session with 401.
func (a *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := a.Sessions.Current(r)
		if err != nil || !sess.Authenticated() {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		a.touch(w, r, sess)
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), sess.UserID)))
	})
}

// RequireLogin sends visitors without an authenticated session to the
// login route, remembering the page they asked for.
func (a *AuthMiddleware) RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := a.Sessions.Current(r)
		if err == nil && sess.Authenticated() {
			a.touch(w, r, sess)
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), sess.UserID)))
			return
		}

		if r.Method == http.MethodGet {
			a.rememberIntended(w, r)
		}
		http.Redirect(w, r, a.LoginRoute, http.StatusFound)
	})
}

// touch slides the session expiry. Failure only shortens the session, so
// the request goes on.
func (a *AuthMiddleware) touch(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	if err := a.Sessions.Touch(r.Context(), w, sess); err != nil {
		logger.Warn("failed to extend session", map[string]any{"error": err.Error()})
	}
}

func (a *AuthMiddleware) rememberIntended(w http.ResponseWriter, r *http.Request) {
	sess, err := a.Sessions.Ensure(w, r)
	if err != nil {
		logger.Error("failed to start session", map[string]any{"error": err.Error()})
		return
	}
	if err := a.Sessions.Put(r.Context(), sess, session.IntendedKey, r.URL.RequestURI()); err != nil {
		logger.Error("failed to remember intended url", map[string]any{"error": err.Error()})
	}
}

// SafeRedirect returns target when it is a local absolute path, and
// fallback otherwise.
func SafeRedirect(target, fallback string) string {
	if target == "" || !strings.HasPrefix(target, "/") {
		return fallback
	}
	// "//host" and "/\host" are protocol-relative in browsers.
	if strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return fallback
	}
	return target
}
