package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStorePullIsReadOnce(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Create(ctx, Session{SessionID: "sid", ExpiresAt: time.Now().Add(time.Minute)}))

	require.NoError(t, s.Put(ctx, "sid", "k", "v"))

	v, err := s.Pull(ctx, "sid", "k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)

	v, err = s.Pull(ctx, "sid", "k")
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestMemoryStorePutRequiresSession(t *testing.T) {
	s := NewMemoryStore()
	assert.ErrorIs(t, s.Put(context.Background(), "missing", "k", "v"), ErrNotFound)
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	now := time.Now()
	s.now = func() time.Time { return now }

	require.NoError(t, s.Create(ctx, Session{SessionID: "sid", ExpiresAt: now.Add(time.Minute)}))
	require.NoError(t, s.Put(ctx, "sid", "k", "v"))

	now = now.Add(2 * time.Minute)

	got, err := s.Get(ctx, "sid")
	require.NoError(t, err)
	assert.Nil(t, got)

	v, err := s.Pull(ctx, "sid", "k")
	require.NoError(t, err)
	assert.Empty(t, v)
	assert.Equal(t, 0, s.Len())
}

func TestMemoryStoreDeleteDropsValues(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	require.NoError(t, s.Create(ctx, Session{SessionID: "sid", ExpiresAt: time.Now().Add(time.Minute)}))
	require.NoError(t, s.Put(ctx, "sid", "k", "v"))

	require.NoError(t, s.Delete(ctx, "sid"))

	_, ok := s.Value("sid", "k")
	assert.False(t, ok)
}

func TestMemoryStoreRejectsExpiredCreate(t *testing.T) {
	s := NewMemoryStore()
	err := s.Create(context.Background(), Session{SessionID: "sid", ExpiresAt: time.Now().Add(-time.Second)})
	assert.Error(t, err)
}

func TestMemoryStoreUpdate(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	now := time.Now()
	s.now = func() time.Time { return now }

	sess := Session{SessionID: "sid", UserID: "1", ExpiresAt: now.Add(time.Minute)}
	require.NoError(t, s.Create(ctx, sess))
	require.NoError(t, s.Put(ctx, "sid", "k", "v"))

	sess.ExpiresAt = now.Add(time.Hour)
	require.NoError(t, s.Update(ctx, sess))

	now = now.Add(30 * time.Minute)
	got, err := s.Get(ctx, "sid")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "1", got.UserID)

	v, err := s.Pull(ctx, "sid", "k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)

	// an expiry in the past ends the session
	sess.ExpiresAt = now.Add(-time.Second)
	require.NoError(t, s.Update(ctx, sess))
	assert.Equal(t, 0, s.Len())
}
