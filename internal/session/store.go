// Package session persists the session token issued by login and register
// between CLI invocations.
package session

import (
	"errors"
	"time"
)

// ErrNoSession is returned by Load when nothing is stored.
var ErrNoSession = errors.New("no session stored; run login first")

// Session is what gets persisted after a successful login or register.
type Session struct {
	ID        string    `json:"session_id"`
	Username  string    `json:"username,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Store loads and saves the current session.
type Store interface {
	Load() (*Session, error)
	Save(s *Session) error
	Clear() error
	// Name is used in log output.
	Name() string
}
