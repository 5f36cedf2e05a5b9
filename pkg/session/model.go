package session

import (
	"time"

	"github.com/go-training/oauth-login/pkg/provider"
)

// LoginState is where a browser is in the sign-in flow.
type LoginState string

const (
	// StateAnonymous has never completed a login.
	StateAnonymous LoginState = "anonymous"
	// StateAwaitingCallback was sent to the provider and has not come back yet.
	StateAwaitingCallback LoginState = "awaiting_callback"
	// StateAuthenticated holds a fetched profile.
	StateAuthenticated LoginState = "authenticated"
)

// User is the signed-in user attached to a session.
type User struct {
	Profile provider.UserProfile `json:"profile"`
}

// Session is the server-side record behind a browser's session cookie.
// User is non-nil exactly when State is StateAuthenticated.
type Session struct {
	ID        string     `json:"id"`
	State     LoginState `json:"state"`
	User      *User      `json:"user,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// New returns an empty anonymous session.
func New(id string) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        id,
		State:     StateAnonymous,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsAuthenticated reports whether the session carries a profile.
func (s *Session) IsAuthenticated() bool {
	return s.State == StateAuthenticated && s.User != nil
}

// BeginLogin records that the browser is being sent to the provider.
// An authenticated session keeps its profile until a new login succeeds.
func (s *Session) BeginLogin() bool {
	if s.State != StateAnonymous {
		return false
	}
	s.State = StateAwaitingCallback
	s.touch()
	return true
}

// CompleteLogin stores the fetched profile and marks the session authenticated.
func (s *Session) CompleteLogin(profile *provider.UserProfile) {
	s.User = &User{Profile: *profile.Clone()}
	s.State = StateAuthenticated
	s.touch()
}

// AbandonLogin returns a session awaiting the callback to anonymous.
// It reports whether anything changed.
func (s *Session) AbandonLogin() bool {
	if s.State != StateAwaitingCallback {
		return false
	}
	s.State = StateAnonymous
	s.touch()
	return true
}

// Clone returns a deep copy of s.
func (s *Session) Clone() *Session {
	c := *s
	if s.User != nil {
		c.User = &User{Profile: *s.User.Profile.Clone()}
	}
	return &c
}

// normalize repairs records whose state and user disagree.
func (s *Session) normalize() {
	switch {
	case s.User != nil:
		s.State = StateAuthenticated
	case s.State == StateAuthenticated || s.State == "":
		s.State = StateAnonymous
	}
}

func (s *Session) touch() {
	s.UpdatedAt = time.Now().UTC()
}
