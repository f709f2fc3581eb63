package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"connect-gateway/internal/auth/account"
	"connect-gateway/internal/middleware"
	"connect-gateway/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	router   *gin.Engine
	manager  *session.Manager
	store    *session.MemoryStore
	accounts *account.MemoryStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := session.NewMemoryStore()
	manager := session.NewManager(store, time.Hour, session.CookieOptions{})
	accounts := account.NewMemoryStore()
	auth := middleware.NewAuthMiddleware(manager, "/login")

	r := gin.New()
	NewHandler(manager, accounts, Button{Name: "VATSIM Connect", Icon: "https://example.com/icon.png"}).
		RegisterRoutes(r, middleware.Gin(auth.RequireLogin))

	return &fixture{router: r, manager: manager, store: store, accounts: accounts}
}

func (f *fixture) get(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

// withSession starts a session for userID (empty for a guest) and returns
// a request to target carrying its cookie.
func (f *fixture) withSession(t *testing.T, userID, target string) (*http.Request, *session.Session) {
	t.Helper()
	rec := httptest.NewRecorder()
	base := httptest.NewRequest(http.MethodGet, "/", nil)

	var (
		sess *session.Session
		err  error
	)
	if userID == "" {
		sess, err = f.manager.Ensure(rec, base)
	} else {
		sess, err = f.manager.Login(rec, base, userID)
	}
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, target, nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	return req, sess
}

func TestLandingShowsLoginButton(t *testing.T) {
	f := newFixture(t)

	rec := f.get(httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Log in with VATSIM Connect")
	assert.Contains(t, rec.Body.String(), `src="https://example.com/icon.png"`)
	assert.Contains(t, rec.Body.String(), `href="/login"`)
}

func TestLandingShowsFlashOnce(t *testing.T) {
	f := newFixture(t)
	req, sess := f.withSession(t, "", "/")
	require.NoError(t, f.manager.Put(context.Background(), sess, session.FlashError, "Error logging in. Please try again."))

	rec := f.get(req)
	assert.Contains(t, rec.Body.String(), "Error logging in. Please try again.")

	again := httptest.NewRequest(http.MethodGet, "/", nil)
	again.AddCookie(&http.Cookie{Name: session.InsecureCookieName, Value: sess.SessionID})
	rec = f.get(again)
	assert.NotContains(t, rec.Body.String(), "Error logging in")
}

func TestLandingShowsSignedInUser(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.accounts.Create(context.Background(), &account.Account{
		ID: "999999", Name: "999999", FullName: "Jane Doe", Email: "jane@example.com", Slug: "999999", RoleID: 4,
	}))

	req, _ := f.withSession(t, "999999", "/")
	rec := f.get(req)
	assert.Contains(t, rec.Body.String(), "Jane Doe")
	assert.Contains(t, rec.Body.String(), `href="/logout"`)
	assert.NotContains(t, rec.Body.String(), "Log in with")
}

func TestAccountPageRequiresLogin(t *testing.T) {
	f := newFixture(t)

	rec := f.get(httptest.NewRequest(http.MethodGet, "/account", nil))
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	v, _ := f.store.Value(cookies[0].Value, session.IntendedKey)
	assert.Equal(t, "/account", v)
}

func TestAccountPage(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.accounts.Create(context.Background(), &account.Account{
		ID: "999999", Name: "999999", FullName: "Jane Doe", Email: "jane@example.com", Slug: "999999", RoleID: 4,
	}))

	req, _ := f.withSession(t, "999999", "/account")
	rec := f.get(req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "jane@example.com")
}
