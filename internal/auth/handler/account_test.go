package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"connect-gateway/internal/auth/account"
	"connect-gateway/internal/auth/provider/providertest"
	"connect-gateway/internal/auth/provider/vatsim"
	"connect-gateway/internal/auth/provisioner"
	"connect-gateway/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAccountRouter(t *testing.T, userID string) (*gin.Engine, *account.MemoryStore, *providertest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	idp := providertest.NewServer()
	t.Cleanup(idp.Close)
	p, err := vatsim.New(context.Background(), idp.Options())
	require.NoError(t, err)

	accounts := account.NewMemoryStore()
	h := NewAccountHandler(accounts, provisioner.NewStoreProvisioner(accounts, 4), p)

	r := gin.New()
	api := r.Group("/api")
	api.Use(func(c *gin.Context) {
		if userID != "" {
			c.Request = c.Request.WithContext(middleware.WithUserID(c.Request.Context(), userID))
		}
		c.Next()
	})
	h.RegisterRoutes(api)
	return r, accounts, idp
}

func seedAccount(t *testing.T, accounts *account.MemoryStore, refresh string) {
	t.Helper()
	require.NoError(t, accounts.Create(context.Background(), &account.Account{
		ID: "999999", Name: "999999", FullName: "Jane Doe", Email: "jane@example.com",
		Slug: "999999", RoleID: 4,
		AccessToken: "access-1", RefreshToken: refresh, TokenExpires: time.Now().Add(time.Minute),
	}))
}

func serve(r http.Handler, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestMe(t *testing.T) {
	r, accounts, _ := newAccountRouter(t, "999999")
	seedAccount(t, accounts, "refresh-1")

	rec := serve(r, http.MethodGet, "/api/me")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "999999", body["id"])
	assert.Equal(t, "Jane Doe", body["full_name"])
	assert.Equal(t, true, body["has_token"])
	assert.NotContains(t, rec.Body.String(), "access-1")
	assert.NotContains(t, rec.Body.String(), "refresh-1")
}

func TestMeUnknownAccount(t *testing.T) {
	r, _, _ := newAccountRouter(t, "404")
	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/api/me").Code)
}

func TestMeWithoutUser(t *testing.T) {
	r, _, _ := newAccountRouter(t, "")
	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/api/me").Code)
}

func TestRefreshToken(t *testing.T) {
	r, accounts, idp := newAccountRouter(t, "999999")
	seedAccount(t, accounts, "refresh-1")
	idp.Set(func(s *providertest.Server) {
		s.TokenBody = `{"access_token":"access-2","token_type":"Bearer","expires_in":3600}`
	})

	rec := serve(r, http.MethodPost, "/api/me/token/refresh")
	require.Equal(t, http.StatusOK, rec.Code)

	acct, err := accounts.FindByID(context.Background(), "999999")
	require.NoError(t, err)
	assert.Equal(t, "access-2", acct.AccessToken)
	assert.Equal(t, "refresh-1", acct.RefreshToken)
	assert.NotContains(t, rec.Body.String(), "access-2")
}

func TestRefreshTokenRejected(t *testing.T) {
	r, accounts, idp := newAccountRouter(t, "999999")
	seedAccount(t, accounts, "refresh-1")
	idp.Set(func(s *providertest.Server) {
		s.TokenStatus = http.StatusBadRequest
		s.TokenBody = `{"error":"invalid_grant"}`
	})

	rec := serve(r, http.MethodPost, "/api/me/token/refresh")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	acct, err := accounts.FindByID(context.Background(), "999999")
	require.NoError(t, err)
	assert.False(t, acct.HasToken())
}

func TestRefreshTokenWithoutRefreshToken(t *testing.T) {
	r, accounts, idp := newAccountRouter(t, "999999")
	seedAccount(t, accounts, "")

	rec := serve(r, http.MethodPost, "/api/me/token/refresh")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Empty(t, idp.TokenRequests())
}
