// Package providertest runs a fake OAuth2 identity provider for tests.
package providertest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"connect-gateway/internal/auth/provider"
)

// Server serves the base URL, /oauth/authorize, /oauth/token and /api/user.
// The exported fields may be changed between requests.
type Server struct {
	*httptest.Server

	mu sync.Mutex

	PingStatus    int
	PingDelay     time.Duration
	TokenStatus   int
	TokenBody     string
	ProfileStatus int
	ProfileBody   string

	// Recorded requests.
	TokenForms     []map[string]string
	ProfileAuthHdr []string
}

const (
	DefaultTokenBody = `{"access_token":"access-1","refresh_token":"refresh-1","token_type":"Bearer","expires_in":3600}`

	// VatsimProfile is a complete VATSIM Connect user document.
	VatsimProfile = `{"data":{"cid":"999999","personal":{"name_first":"Jane","name_last":"Doe","email":"jane@example.com"},"oauth":{"token_valid":"true"}}}`
)

func NewServer() *Server {
	s := &Server{
		PingStatus:    http.StatusOK,
		TokenStatus:   http.StatusOK,
		TokenBody:     DefaultTokenBody,
		ProfileStatus: http.StatusOK,
		ProfileBody:   VatsimProfile,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.ping)
	mux.HandleFunc("/oauth/token", s.token)
	mux.HandleFunc("/api/user", s.profile)
	s.Server = httptest.NewServer(mux)
	return s
}

// Options returns client options pointing every endpoint at the server.
func (s *Server) Options() provider.Options {
	return provider.Options{
		ClientID:       "client-1",
		ClientSecret:   "secret-1",
		RedirectURL:    "http://wiki.test/login",
		BaseURL:        s.URL,
		AuthURL:        s.URL + "/oauth/authorize",
		TokenURL:       s.URL + "/oauth/token",
		UserInfoURL:    s.URL + "/api/user",
		Scopes:         []string{"full_name", "email"},
		RequiredScopes: true,
		PingTimeout:    time.Second,
		HTTPTimeout:    2 * time.Second,
		HTTPClient:     s.Client(),
	}
}

func (s *Server) Set(fn func(s *Server)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s)
}

func (s *Server) TokenRequests() []map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]map[string]string(nil), s.TokenForms...)
}

func (s *Server) ProfileRequests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.ProfileAuthHdr...)
}

func (s *Server) ping(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	status, delay := s.PingStatus, s.PingDelay
	s.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}
	w.WriteHeader(status)
}

func (s *Server) token(w http.ResponseWriter, r *http.Request) {
	_ = r.ParseForm()
	form := make(map[string]string, len(r.PostForm))
	for k := range r.PostForm {
		form[k] = r.PostForm.Get(k)
	}

	s.mu.Lock()
	s.TokenForms = append(s.TokenForms, form)
	status, body := s.TokenStatus, s.TokenBody
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func (s *Server) profile(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.ProfileAuthHdr = append(s.ProfileAuthHdr, r.Header.Get("Authorization"))
	status, body := s.ProfileStatus, s.ProfileBody
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

// JSON marshals v or panics; handy for building profile bodies.
func JSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(b)
}
