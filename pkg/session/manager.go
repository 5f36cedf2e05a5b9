package session

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-training/oauth-login/pkg/core"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// contextKey is the gin context key holding the request's *Session.
const contextKey = "oauth_login.session"

// CookieOptions configures the session cookie.
type CookieOptions struct {
	Name   string
	MaxAge time.Duration
	Secure bool
}

// Manager binds sessions to browsers through a signed cookie.
type Manager struct {
	store  Store
	codec  *CookieCodec
	cookie CookieOptions
	newID  func() string
}

// NewManager creates a Manager backed by store, signing cookies with secret.
func NewManager(store Store, secret string, cookie CookieOptions) *Manager {
	return &Manager{
		store:  store,
		codec:  NewCookieCodec(secret),
		cookie: cookie,
		newID:  uuid.NewString,
	}
}

// Middleware resolves the request's session before the handler runs.
// A browser without a valid session gets a new empty one, which is stored
// and announced through the cookie right away.
func (m *Manager) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := core.LoggerFromCtx(c.Request.Context())

		s, err := m.load(c)
		if err != nil {
			logger.Error("Failed to load session", "error", err)
			c.String(http.StatusInternalServerError, "Session unavailable")
			c.Abort()
			return
		}
		if s == nil {
			s = New(m.newID())
			if err := m.Save(c, s); err != nil {
				logger.Error("Failed to create session", "error", err)
				c.String(http.StatusInternalServerError, "Session unavailable")
				c.Abort()
				return
			}
			logger.Debug("Session created", "session_id", s.ID)
		}

		c.Set(contextKey, s)
		c.Next()
	}
}

// Save persists s and re-issues the session cookie.
func (m *Manager) Save(c *gin.Context, s *Session) error {
	if err := m.store.Set(c.Request.Context(), s); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.cookie.Name, m.codec.Encode(s.ID), int(m.cookie.MaxAge/time.Second), "/", "", m.cookie.Secure, true)
	return nil
}

// load returns the stored session named by the request cookie. A missing,
// forged or expired session yields nil without error; backend failures are
// returned so the browser keeps its cookie.
func (m *Manager) load(c *gin.Context) (*Session, error) {
	logger := core.LoggerFromCtx(c.Request.Context())

	value, err := c.Cookie(m.cookie.Name)
	if err != nil || value == "" {
		return nil, nil
	}
	id, ok := m.codec.Decode(value)
	if !ok {
		logger.Warn("Ignoring session cookie with invalid signature")
		return nil, nil
	}

	s, err := m.store.Get(c.Request.Context(), id)
	if errors.Is(err, ErrSessionNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", id, err)
	}
	return s, nil
}

// FromContext returns the session resolved by Middleware, or nil.
func FromContext(c *gin.Context) *Session {
	v, ok := c.Get(contextKey)
	if !ok {
		return nil
	}
	s, _ := v.(*Session)
	return s
}
