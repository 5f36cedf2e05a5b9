package session

import (
	"context"
	"errors"
)

var (
	// ErrSessionNotFound is returned when a session does not exist or has expired.
	ErrSessionNotFound = errors.New("session not found")
	// ErrNilSession is returned when attempting to save a nil session.
	ErrNilSession = errors.New("session cannot be nil")
	// ErrEmptySessionID is returned when the session ID is empty.
	ErrEmptySessionID = errors.New("session ID cannot be empty")
)

// Store keeps sessions by ID. Implementations must be safe for concurrent
// use; writes to one session never affect another.
type Store interface {
	// Get returns the session or ErrSessionNotFound.
	Get(ctx context.Context, id string) (*Session, error)
	// Set replaces the stored session and restarts its lifetime.
	Set(ctx context.Context, s *Session) error
}

func validate(s *Session) error {
	if s == nil {
		return ErrNilSession
	}
	if s.ID == "" {
		return ErrEmptySessionID
	}
	return nil
}
