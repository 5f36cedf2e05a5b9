package session

import (
	"testing"

	"github.com/go-training/oauth-login/pkg/provider"
)

func adaProfile() *provider.UserProfile {
	return &provider.UserProfile{
		Name:   "Ada",
		Email:  "ada@example.com",
		Claims: map[string]any{"name": "Ada", "email": "ada@example.com", "locale": "en_GB"},
	}
}

func TestSession_Transitions(t *testing.T) {
	s := New("sid")
	if s.State != StateAnonymous || s.IsAuthenticated() {
		t.Fatalf("new session should be anonymous, got %v", s.State)
	}

	if !s.BeginLogin() {
		t.Fatal("BeginLogin() on anonymous session should change state")
	}
	if s.State != StateAwaitingCallback {
		t.Errorf("state = %v, want %v", s.State, StateAwaitingCallback)
	}
	if s.BeginLogin() {
		t.Error("BeginLogin() twice should not change state again")
	}

	if !s.AbandonLogin() {
		t.Fatal("AbandonLogin() while awaiting callback should change state")
	}
	if s.State != StateAnonymous || s.User != nil {
		t.Errorf("abandoned login should be anonymous without user, got %v %v", s.State, s.User)
	}
	if s.AbandonLogin() {
		t.Error("AbandonLogin() on anonymous session should be a no-op")
	}

	s.BeginLogin()
	s.CompleteLogin(adaProfile())
	if !s.IsAuthenticated() {
		t.Fatal("CompleteLogin() should authenticate the session")
	}
	if s.User.Profile.Name != "Ada" || s.User.Profile.Email != "ada@example.com" {
		t.Errorf("unexpected profile %+v", s.User.Profile)
	}
}

func TestSession_AuthenticatedKeepsProfile(t *testing.T) {
	s := New("sid")
	s.CompleteLogin(adaProfile())

	if s.BeginLogin() {
		t.Error("BeginLogin() should not downgrade an authenticated session")
	}
	if s.AbandonLogin() {
		t.Error("AbandonLogin() should not touch an authenticated session")
	}
	if !s.IsAuthenticated() {
		t.Error("session should still be authenticated")
	}
}

func TestSession_CompleteLoginCopiesProfile(t *testing.T) {
	profile := adaProfile()
	s := New("sid")
	s.CompleteLogin(profile)

	profile.Claims["locale"] = "fr_FR"
	if s.User.Profile.Claims["locale"] != "en_GB" {
		t.Error("session profile should not alias the caller's claims")
	}
}

func TestSession_Clone(t *testing.T) {
	s := New("sid")
	s.CompleteLogin(adaProfile())

	c := s.Clone()
	c.User.Profile.Claims["locale"] = "de_DE"
	c.State = StateAnonymous

	if s.User.Profile.Claims["locale"] != "en_GB" || s.State != StateAuthenticated {
		t.Error("Clone() should not share state with the original")
	}
}

func TestSession_Normalize(t *testing.T) {
	tests := []struct {
		name    string
		session Session
		want    LoginState
	}{
		{"authenticated without user", Session{ID: "a", State: StateAuthenticated}, StateAnonymous},
		{"empty state", Session{ID: "b"}, StateAnonymous},
		{"user with stale state", Session{ID: "c", State: StateAwaitingCallback, User: &User{Profile: *adaProfile()}}, StateAuthenticated},
		{"awaiting callback", Session{ID: "d", State: StateAwaitingCallback}, StateAwaitingCallback},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tt.session
			s.normalize()
			if s.State != tt.want {
				t.Errorf("normalize() state = %v, want %v", s.State, tt.want)
			}
		})
	}
}
