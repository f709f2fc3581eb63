package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	AppPort string `env:"APP_PORT" envDefault:"8080"`
	AppURL  string `env:"APP_URL" envDefault:"http://localhost:8080"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	DatabaseDSN string `env:"DATABASE_DSN"`

	SessionTTL          time.Duration `env:"SESSION_TTL" envDefault:"2h"`
	SessionSecureCookie bool          `env:"SESSION_SECURE_COOKIE" envDefault:"true"`

	Connect Connect
}

// Connect describes the single identity provider the gateway talks to.
type Connect struct {
	Provider     string `env:"CONNECT_PROVIDER" envDefault:"vatsim"`
	Name         string `env:"CONNECT_NAME" envDefault:"VATSIM Connect"`
	Icon         string `env:"CONNECT_ICON" envDefault:"https://vatsim-forums.nyc3.digitaloceanspaces.com/monthly_2020_08/Vatsim-social_icon.thumb.png.e9bdf49928c9bd5327f08245a68d8304.png"`
	Base         string `env:"CONNECT_BASE" envDefault:"https://auth-dev.vatsim.net"`
	ClientID     string `env:"CONNECT_CLIENT_ID"`
	ClientSecret string `env:"CONNECT_CLIENT_SECRET"`
	Scopes       string `env:"CONNECT_SCOPES" envDefault:"full_name,email,vatsim_details,country"`

	AuthorizeURI string `env:"CONNECT_AUTHORIZE_URI"`
	TokenURI     string `env:"CONNECT_TOKEN_URI"`
	UserURI      string `env:"CONNECT_USER_URI"`
	RedirectURI  string `env:"CONNECT_REDIRECT_URI"`

	RequiredScopes bool          `env:"CONNECT_REQUIRED_SCOPES" envDefault:"true"`
	PKCE           bool          `env:"CONNECT_PKCE" envDefault:"false"`
	PingTimeout    time.Duration `env:"CONNECT_PING_TIMEOUT" envDefault:"5s"`
	HTTPTimeout    time.Duration `env:"CONNECT_HTTP_TIMEOUT" envDefault:"10s"`
	DefaultRoleID  int64         `env:"CONNECT_DEFAULT_ROLE_ID" envDefault:"4"`
}

// Load reads the configuration from the environment and fills in the
// endpoints derived from the provider base URL.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	cfg.Connect.applyDefaults(cfg.AppURL)

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Connect) applyDefaults(appURL string) {
	if c.RedirectURI == "" {
		c.RedirectURI = strings.TrimRight(appURL, "/") + "/login"
	}
	// OIDC endpoints come from discovery.
	if c.Provider == "oidc" {
		return
	}

	base := strings.TrimRight(c.Base, "/")
	if c.AuthorizeURI == "" {
		c.AuthorizeURI = base + "/oauth/authorize"
	}
	if c.TokenURI == "" {
		c.TokenURI = base + "/oauth/token"
	}
	if c.UserURI == "" {
		c.UserURI = base + "/api/user"
	}
}

// ScopeList splits the configured scopes on commas and whitespace.
func (c Connect) ScopeList() []string {
	return strings.FieldsFunc(c.Scopes, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
}

func (c Config) validate() error {
	var missing []string
	if c.Connect.ClientID == "" {
		missing = append(missing, "CONNECT_CLIENT_ID")
	}
	if c.Connect.ClientSecret == "" {
		missing = append(missing, "CONNECT_CLIENT_SECRET")
	}
	if c.DatabaseDSN == "" {
		missing = append(missing, "DATABASE_DSN")
	}
	if len(missing) > 0 {
		return errors.New("config missing required fields: " + strings.Join(missing, ", "))
	}
	if c.Connect.PingTimeout <= 0 || c.Connect.HTTPTimeout <= 0 {
		return errors.New("config timeouts must be positive")
	}
	return nil
}
