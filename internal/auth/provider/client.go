package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"connect-gateway/internal/auth"

	"golang.org/x/oauth2"
)

const maxProfileBytes = 1 << 20

// Options configures the shared OAuth2 client.
type Options struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string

	BaseURL     string // pinged for availability; issuer for OIDC
	AuthURL     string
	TokenURL    string
	UserInfoURL string
	Scopes      []string

	// RequiredScopes mirrors the scope list into a required_scopes
	// parameter on the authorization redirect.
	RequiredScopes bool

	PingTimeout time.Duration
	HTTPTimeout time.Duration

	// HTTPClient overrides the outbound client. Tests point it at an
	// httptest server.
	HTTPClient *http.Client
}

func (o Options) validate() error {
	if o.ClientID == "" || o.ClientSecret == "" || o.RedirectURL == "" {
		return errors.New("oauth config missing required fields")
	}
	if o.BaseURL == "" {
		return errors.New("oauth config missing base url")
	}
	return nil
}

// Client wraps the authorization-code grant against one provider. It is
// embedded by every provider variant, which adds its own profile mapping.
type Client struct {
	config         *oauth2.Config
	baseURL        string
	userInfoURL    string
	requiredScopes bool
	pingTimeout    time.Duration
	httpTimeout    time.Duration
	httpClient     *http.Client
}

// NewClient builds a client for providers with static endpoints.
func NewClient(opts Options) (*Client, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if opts.AuthURL == "" || opts.TokenURL == "" || opts.UserInfoURL == "" {
		return nil, errors.New("oauth config missing endpoints")
	}
	return NewClientWithEndpoint(opts, oauth2.Endpoint{
		AuthURL:   opts.AuthURL,
		TokenURL:  opts.TokenURL,
		AuthStyle: oauth2.AuthStyleInParams,
	})
}

// NewClientWithEndpoint builds a client around an endpoint obtained
// elsewhere, e.g. from OIDC discovery.
func NewClientWithEndpoint(opts Options, ep oauth2.Endpoint) (*Client, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	pingTimeout := opts.PingTimeout
	if pingTimeout <= 0 {
		pingTimeout = 5 * time.Second
	}
	httpTimeout := opts.HTTPTimeout
	if httpTimeout <= 0 {
		httpTimeout = 10 * time.Second
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: httpTimeout}
	}

	return &Client{
		config: &oauth2.Config{
			ClientID:     opts.ClientID,
			ClientSecret: opts.ClientSecret,
			RedirectURL:  opts.RedirectURL,
			Endpoint:     ep,
			Scopes:       opts.Scopes,
		},
		baseURL:        opts.BaseURL,
		userInfoURL:    opts.UserInfoURL,
		requiredScopes: opts.RequiredScopes,
		pingTimeout:    pingTimeout,
		httpTimeout:    httpTimeout,
		httpClient:     httpClient,
	}, nil
}

// HTTPClient returns the outbound client used for every provider call.
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

// WithHTTPClient attaches the outbound client so that golang.org/x/oauth2
// and go-oidc use it instead of http.DefaultClient.
func (c *Client) WithHTTPClient(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
}

// Ping issues a GET to the provider base URL. Any status below 500 counts
// as available.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.pingTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", auth.ErrProviderUnavailable, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", auth.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode >= 500 && resp.StatusCode <= 599 {
		return fmt.Errorf("%w: status %d", auth.ErrProviderUnavailable, resp.StatusCode)
	}
	return nil
}

// AuthCodeURL builds the authorization redirect. Scopes are space-joined.
func (c *Client) AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string {
	if c.requiredScopes && len(c.config.Scopes) > 0 {
		opts = append(opts, oauth2.SetAuthURLParam("required_scopes", strings.Join(c.config.Scopes, " ")))
	}
	return c.config.AuthCodeURL(state, opts...)
}

func (c *Client) Exchange(ctx context.Context, code string, opts ...oauth2.AuthCodeOption) (*oauth2.Token, error) {
	ctx, cancel := context.WithTimeout(ctx, c.httpTimeout)
	defer cancel()

	token, err := c.config.Exchange(c.WithHTTPClient(ctx), code, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", auth.ErrTokenExchange, err)
	}
	return token, nil
}

func (c *Client) FetchProfile(ctx context.Context, token *oauth2.Token) (Document, error) {
	if token == nil || token.AccessToken == "" {
		return nil, fmt.Errorf("%w: no access token", auth.ErrProfileFetch)
	}

	ctx, cancel := context.WithTimeout(ctx, c.httpTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", auth.ErrProfileFetch, err)
	}
	req.Header.Set("Accept", "application/json")
	token.SetAuthHeader(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", auth.ErrProfileFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", auth.ErrProfileFetch, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxProfileBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", auth.ErrProfileFetch, err)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: malformed response", auth.ErrProfileFetch)
	}
	return Document(body), nil
}

func (c *Client) Refresh(ctx context.Context, token *oauth2.Token) (*oauth2.Token, error) {
	if token == nil || token.RefreshToken == "" {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.httpTimeout)
	defer cancel()

	src := c.config.TokenSource(c.WithHTTPClient(ctx), &oauth2.Token{RefreshToken: token.RefreshToken})
	next, err := src.Token()
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %w", auth.ErrTokenExchange, err)
	}
	return next, nil
}
