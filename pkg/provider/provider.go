// Package provider talks to the OAuth 2.0 identity provider: it builds the
// authorization redirect, exchanges the authorization code for an access
// token and fetches the signed-in user's profile.
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-training/oauth-login/pkg/core"

	"golang.org/x/oauth2"
)

const (
	// DefaultRequestTimeout bounds each upstream call when Config.Timeout is zero.
	DefaultRequestTimeout = 10 * time.Second

	// maxBodySize caps how much of a profile response is read.
	maxBodySize = 1 << 20
)

// Token is the result of a successful code exchange. It lives only for the
// duration of the callback request.
type Token struct {
	AccessToken string
	TokenType   string
	Expiry      time.Time
}

// Provider is the identity provider as seen by the HTTP handlers.
type Provider interface {
	AuthorizationURL() string
	Exchange(ctx context.Context, code string) (*Token, error)
	FetchProfile(ctx context.Context, accessToken string) (*UserProfile, error)
}

// Config describes the provider endpoints and this client's registration.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
	AuthURL      string
	TokenURL     string
	UserInfoURL  string
	Timeout      time.Duration
}

// Client implements Provider for any provider exposing the standard
// authorization, token and userinfo endpoints.
type Client struct {
	oauth2Config *oauth2.Config
	userInfoURL  string
	httpClient   *http.Client
}

var _ Provider = (*Client)(nil)

// NewClient creates a Client with its own timeout-bounded HTTP client.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return NewClientWithHTTP(cfg, &http.Client{Timeout: timeout})
}

// NewClientWithHTTP creates a Client that sends every upstream request
// through httpClient.
func NewClientWithHTTP(cfg Config, httpClient *http.Client) *Client {
	return &Client{
		oauth2Config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       cfg.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   cfg.AuthURL,
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		userInfoURL: cfg.UserInfoURL,
		httpClient:  httpClient,
	}
}

// BuildAuthorizationURL formats the provider's authorization endpoint with
// exactly response_type=code, client_id, redirect_uri and scope. It is pure:
// the same inputs always produce the same URL.
func BuildAuthorizationURL(authURL, clientID, redirectURI string, scopes []string) string {
	cfg := oauth2.Config{
		ClientID:    clientID,
		RedirectURL: redirectURI,
		Scopes:      scopes,
		Endpoint:    oauth2.Endpoint{AuthURL: authURL},
	}
	return cfg.AuthCodeURL("")
}

// AuthorizationURL returns the URL the browser is redirected to for sign-in.
func (c *Client) AuthorizationURL() string {
	return BuildAuthorizationURL(
		c.oauth2Config.Endpoint.AuthURL,
		c.oauth2Config.ClientID,
		c.oauth2Config.RedirectURL,
		c.oauth2Config.Scopes,
	)
}

// Exchange trades an authorization code for an access token with a
// form-encoded POST carrying the client credentials in the body.
func (c *Client) Exchange(ctx context.Context, code string) (*Token, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)

	tok, err := c.oauth2Config.Exchange(ctx, code)
	if err != nil {
		return nil, exchangeError(err)
	}
	return &Token{
		AccessToken: tok.AccessToken,
		TokenType:   tok.TokenType,
		Expiry:      tok.Expiry,
	}, nil
}

// FetchProfile calls the userinfo endpoint with the access token as a
// bearer credential.
func (c *Client) FetchProfile(ctx context.Context, accessToken string) (*UserProfile, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}))
	client.Timeout = c.httpClient.Timeout

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.userInfoURL, nil)
	if err != nil {
		return nil, &UpstreamError{Op: OpProfileFetch, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, &UpstreamError{Op: OpProfileFetch, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &UpstreamError{
			Op:         OpProfileFetch,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("failed to read response body: %w", err),
		}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &UpstreamError{
			Op:         OpProfileFetch,
			StatusCode: resp.StatusCode,
			Body:       string(body),
			Err:        fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	core.LoggerFromCtx(ctx).Debug("userinfo response", "raw_body", string(body))

	var profile UserProfile
	if err := json.Unmarshal(body, &profile); err != nil {
		return nil, &UpstreamError{Op: OpProfileFetch, Err: fmt.Errorf("failed to decode profile: %w", err)}
	}
	if err := profile.Validate(); err != nil {
		return nil, &UpstreamError{Op: OpProfileFetch, Err: err}
	}
	return &profile, nil
}
