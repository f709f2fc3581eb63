package session

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Manager ties the store to the session cookie. It is created once and
// passed explicitly to the handlers and middleware that need sessions.
type Manager struct {
	store  Store
	ttl    time.Duration
	cookie CookieOptions
	now    func() time.Time
}

func NewManager(store Store, ttl time.Duration, cookie CookieOptions) *Manager {
	return &Manager{
		store:  store,
		ttl:    ttl,
		cookie: cookie,
		now:    time.Now,
	}
}

// Current returns the live session named by the request cookie, or nil
// when there is none.
func (m *Manager) Current(r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(m.cookie.Name())
	if err != nil || cookie.Value == "" {
		return nil, nil
	}

	sess, err := m.store.Get(r.Context(), cookie.Value)
	if err != nil || sess == nil {
		return nil, err
	}

	if !m.now().Before(sess.ExpiresAt) {
		_ = m.store.Delete(r.Context(), sess.SessionID)
		return nil, nil
	}
	return sess, nil
}

// Ensure returns the current session, starting a guest session when the
// request has none.
func (m *Manager) Ensure(w http.ResponseWriter, r *http.Request) (*Session, error) {
	sess, err := m.Current(r)
	if err != nil {
		return nil, err
	}
	if sess != nil {
		return sess, nil
	}
	return m.start(r.Context(), w, "")
}

// Invalidate destroys the current session with all its values and starts
// a fresh guest session under a new id.
func (m *Manager) Invalidate(w http.ResponseWriter, r *http.Request) (*Session, error) {
	if err := m.destroyCurrent(r); err != nil {
		return nil, err
	}
	return m.start(r.Context(), w, "")
}

// Login replaces the current session with an authenticated session under
// a new id. Values of the old session are discarded.
func (m *Manager) Login(w http.ResponseWriter, r *http.Request, userID string) (*Session, error) {
	if userID == "" {
		return nil, fmt.Errorf("session: missing user_id")
	}
	if err := m.destroyCurrent(r); err != nil {
		return nil, err
	}
	return m.start(r.Context(), w, userID)
}

// Touch slides the expiry of a live session: once less than half of the
// TTL remains, the session and its cookie are extended to a full TTL.
func (m *Manager) Touch(ctx context.Context, w http.ResponseWriter, sess *Session) error {
	if sess == nil {
		return nil
	}

	now := m.now()
	if sess.ExpiresAt.Sub(now) > m.ttl/2 {
		return nil
	}

	sess.ExpiresAt = now.Add(m.ttl)
	if err := m.store.Update(ctx, *sess); err != nil {
		return fmt.Errorf("session: failed to extend: %w", err)
	}

	SetCookie(w, sess.SessionID, sess.ExpiresAt, m.cookie)
	return nil
}

// Put stores a value on the session.
func (m *Manager) Put(ctx context.Context, sess *Session, key, value string) error {
	return m.store.Put(ctx, sess.SessionID, key, value)
}

// Pull reads and clears a value. A nil session has no values.
func (m *Manager) Pull(ctx context.Context, sess *Session, key string) (string, error) {
	if sess == nil {
		return "", nil
	}
	return m.store.Pull(ctx, sess.SessionID, key)
}

func (m *Manager) destroyCurrent(r *http.Request) error {
	cookie, err := r.Cookie(m.cookie.Name())
	if err != nil || cookie.Value == "" {
		return nil
	}
	return m.store.Delete(r.Context(), cookie.Value)
}

func (m *Manager) start(ctx context.Context, w http.ResponseWriter, userID string) (*Session, error) {
	id, err := GenerateID()
	if err != nil {
		return nil, err
	}

	now := m.now()
	sess := Session{
		SessionID: id,
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}
	if err := m.store.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("session: failed to persist: %w", err)
	}

	SetCookie(w, id, sess.ExpiresAt, m.cookie)
	return &sess, nil
}
