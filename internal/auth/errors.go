package auth

import "errors"

// Every login failure is classified as one of these. Callers match them
// with errors.Is; the wrapped detail is for logs only.
var (
	ErrProviderUnavailable = errors.New("identity provider unavailable")
	ErrStateMismatch       = errors.New("login state mismatch")
	ErrTokenExchange       = errors.New("token exchange failed")
	ErrProfileFetch        = errors.New("profile fetch failed")
	ErrIncompleteProfile   = errors.New("incomplete profile")
)
