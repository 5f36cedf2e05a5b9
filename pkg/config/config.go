// Package config loads the server configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// LinkedIn endpoints used when no provider endpoints are configured.
const (
	DefaultAuthURL     = "https://www.linkedin.com/oauth/v2/authorization"
	DefaultTokenURL    = "https://www.linkedin.com/oauth/v2/accessToken"
	DefaultUserInfoURL = "https://api.linkedin.com/v2/userinfo"
)

// Config is the full server configuration.
type Config struct {
	Port      int    `env:"PORT"       envDefault:"8000"`
	Env       string `env:"ENV"        envDefault:"development"`
	LogLevel  string `env:"LOG_LEVEL"`
	StaticDir string `env:"STATIC_DIR" envDefault:"public"`

	Session SessionConfig
	Redis   RedisConfig
	OAuth   OAuthConfig
}

// SessionConfig configures the session cookie and its backing store.
type SessionConfig struct {
	Secret       string        `env:"SESSION_SECRET"`
	TTL          time.Duration `env:"SESSION_TTL"           envDefault:"24h"`
	CookieName   string        `env:"SESSION_COOKIE_NAME"   envDefault:"oauth_login.sid"`
	CookieSecure bool          `env:"SESSION_COOKIE_SECURE" envDefault:"false"`
	Store        string        `env:"SESSION_STORE"         envDefault:"memory"`
}

// RedisConfig is only read when SESSION_STORE=redis.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"     envDefault:"localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB"       envDefault:"0"`
}

// OAuthConfig describes the identity provider and this client's registration.
type OAuthConfig struct {
	ClientID        string        `env:"OAUTH_CLIENT_ID"`
	ClientSecret    string        `env:"OAUTH_CLIENT_SECRET"`
	RedirectURL     string        `env:"OAUTH_REDIRECT_URL"  envDefault:"http://localhost:8000/auth/callback"`
	Scopes          []string      `env:"OAUTH_SCOPES"        envDefault:"openid,profile,email" envSeparator:","`
	AuthURL         string        `env:"OAUTH_AUTH_URL"`
	TokenURL        string        `env:"OAUTH_TOKEN_URL"`
	UserInfoURL     string        `env:"OAUTH_USERINFO_URL"`
	UpstreamTimeout time.Duration `env:"UPSTREAM_TIMEOUT"    envDefault:"10s"`
}

// Load reads envFile (if it exists) into the process environment without
// overriding variables that are already set, then parses the environment.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	}
	return Parse()
}

// Parse builds a Config from environment variables and validates it.
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.OAuth.Scopes = trimCSV(cfg.OAuth.Scopes)
	cfg.OAuth.applyEndpointDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports every missing or invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Session.Secret == "" {
		errs = append(errs, errors.New("SESSION_SECRET is required"))
	}
	if c.OAuth.ClientID == "" {
		errs = append(errs, errors.New("OAUTH_CLIENT_ID is required"))
	}
	if c.OAuth.ClientSecret == "" {
		errs = append(errs, errors.New("OAUTH_CLIENT_SECRET is required"))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT %d is out of range", c.Port))
	}
	if c.Session.TTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	if len(c.OAuth.Scopes) == 0 {
		errs = append(errs, errors.New("OAUTH_SCOPES must name at least one scope"))
	}
	return errors.Join(errs...)
}

// applyEndpointDefaults points unset provider endpoints at LinkedIn.
func (o *OAuthConfig) applyEndpointDefaults() {
	if o.AuthURL == "" {
		o.AuthURL = DefaultAuthURL
	}
	if o.TokenURL == "" {
		o.TokenURL = DefaultTokenURL
	}
	if o.UserInfoURL == "" {
		o.UserInfoURL = DefaultUserInfoURL
	}
}

// Addr is the listen address derived from Port.
func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

// IsProduction reports whether ENV=production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// trimCSV removes empty entries from a string slice.
func trimCSV(values []string) []string {
	result := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			result = append(result, v)
		}
	}
	return result
}
