// Package web holds the HTTP routes that drive the sign-in flow.
package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-training/oauth-login/pkg/core"
	"github.com/go-training/oauth-login/pkg/provider"
	"github.com/go-training/oauth-login/pkg/session"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// Route paths.
const (
	HomePath     = "/"
	LoginPath    = "/auth/login"
	CallbackPath = "/auth/callback"
	ProfilePath  = "/profile"
	ErrorPath    = "/error"
)

// MissingCodeMessage is the plain-text body of a callback without a code.
const MissingCodeMessage = "Authorization code not provided"

// Handler sequences the provider calls and session updates for each route.
type Handler struct {
	title    string
	provider provider.Provider
	sessions *session.Manager
}

// NewHandler creates a Handler. title is shown on the landing page.
func NewHandler(title string, p provider.Provider, sessions *session.Manager) *Handler {
	return &Handler{
		title:    title,
		provider: p,
		sessions: sessions,
	}
}

// Register mounts the routes on r.
func (h *Handler) Register(r gin.IRouter) {
	r.GET(HomePath, h.Index)
	r.GET(LoginPath, h.Login)
	r.GET(CallbackPath, h.Callback)
	r.GET(ProfilePath, h.Profile)
	r.GET(ErrorPath, h.Error)
}

// Index renders the landing page.
func (h *Handler) Index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{
		"Title":     h.title,
		"LoginPath": LoginPath,
	})
}

// Login sends the browser to the provider's authorization endpoint.
func (h *Handler) Login(c *gin.Context) {
	logger := core.LoggerFromCtx(c.Request.Context())
	sess := session.FromContext(c)

	if sess.BeginLogin() {
		if err := h.sessions.Save(c, sess); err != nil {
			logger.Error("Failed to record login start", "session_id", sess.ID, "error", err)
			c.Redirect(http.StatusFound, ErrorPath)
			return
		}
	}

	authURL := h.provider.AuthorizationURL()
	logger.Debug("Redirecting to provider", "session_id", sess.ID, "state", sess.State)
	c.Redirect(http.StatusFound, authURL)
}

// Callback finishes the sign-in: it exchanges the code, fetches the profile
// and only then writes the session. Upstream failures end on the error page.
func (h *Handler) Callback(c *gin.Context) {
	ctx := c.Request.Context()
	logger := core.LoggerFromCtx(ctx)
	sess := session.FromContext(c)

	code := c.Query("code")
	if code == "" {
		err := &MissingCodeError{
			ProviderError:    c.Query("error"),
			ErrorDescription: c.Query("error_description"),
		}
		logger.Warn("Callback rejected", "session_id", sess.ID, "error", err)
		c.String(http.StatusBadRequest, MissingCodeMessage)
		return
	}

	profile, err := h.signIn(ctx, code)
	if err != nil {
		logUpstreamError(logger, sess.ID, err)
		if sess.AbandonLogin() {
			if saveErr := h.sessions.Save(c, sess); saveErr != nil {
				logger.Error("Failed to reset login state", "session_id", sess.ID, "error", saveErr)
			}
		}
		c.Redirect(http.StatusFound, ErrorPath)
		return
	}

	sess.CompleteLogin(profile)
	if err := h.sessions.Save(c, sess); err != nil {
		logger.Error("Failed to store profile in session", "session_id", sess.ID, "error", err)
		c.Redirect(http.StatusFound, ErrorPath)
		return
	}

	logger.Info("User signed in", "session_id", sess.ID, "user_name", profile.Name, "user_email", profile.Email)
	c.Redirect(http.StatusFound, ProfilePath)
}

// signIn runs the token exchange and then the profile fetch; the second
// call needs the first call's token.
func (h *Handler) signIn(ctx context.Context, code string) (*provider.UserProfile, error) {
	token, err := h.provider.Exchange(ctx, code)
	if err == nil && (token == nil || token.AccessToken == "") {
		err = &provider.UpstreamError{Op: provider.OpTokenExchange, Err: errors.New("empty token response")}
	}
	recordStep(ctx, provider.OpTokenExchange, err)
	if err != nil {
		return nil, err
	}

	profile, err := h.provider.FetchProfile(ctx, token.AccessToken)
	if err == nil && profile == nil {
		err = &provider.UpstreamError{Op: provider.OpProfileFetch, Err: errors.New("empty profile response")}
	}
	recordStep(ctx, provider.OpProfileFetch, err)
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// Profile shows the signed-in user's profile. It never writes the session.
func (h *Handler) Profile(c *gin.Context) {
	sess := session.FromContext(c)
	if sess == nil || !sess.IsAuthenticated() {
		c.Redirect(http.StatusFound, LoginPath)
		return
	}

	profile := sess.User.Profile
	c.Header("Cache-Control", "no-store")
	c.HTML(http.StatusOK, "profile.html", gin.H{
		"Name":        profile.Name,
		"Email":       profile.Email,
		"Picture":     profile.Picture,
		"ProfileJSON": profile.PrettyJSON(),
	})
}

// Error is the generic page failed sign-ins are redirected to.
func (h *Handler) Error(c *gin.Context) {
	c.HTML(http.StatusOK, "error.html", gin.H{
		"HomePath": HomePath,
	})
}

func recordStep(ctx context.Context, step string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	core.AddRequestAttributes(ctx,
		attribute.String("oauth.step", step),
		attribute.String("oauth.status", status),
	)
}

func logUpstreamError(logger *slog.Logger, sessionID string, err error) {
	var upstream *provider.UpstreamError
	if errors.As(err, &upstream) {
		logger.Error("OAuth callback failed",
			"session_id", sessionID,
			"op", upstream.Op,
			"status", upstream.StatusCode,
			"body", upstream.Body,
			"error", err,
		)
		return
	}
	logger.Error("OAuth callback failed", "session_id", sessionID, "error", err)
}
