// Package session holds the bearer token issued at login. A Session is
// created with Load, filled by Login and emptied by Logout; nothing else
// reads or writes the token file.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrNotLoggedIn is returned by Token when there is no active session
var ErrNotLoggedIn = errors.New("not logged in")

type state struct {
	Token    string    `json:"token"`
	Username string    `json:"username"`
	IssuedAt time.Time `json:"issued_at"`
}

// Session is the process-wide login state, persisted to a file
type Session struct {
	mu    sync.RWMutex
	path  string
	state state
}

// Load reads the session file at path. A missing file is a logged-out session.
func Load(path string) (*Session, error) {
	s := &Session{path: path}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	if err := json.Unmarshal(data, &s.state); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", path, err)
	}

	zap.L().Debug("session loaded", zap.String("username", s.state.Username))
	return s, nil
}

// Login stores token and writes it to disk with owner-only permissions
func (s *Session) Login(token, username string, now time.Time) error {
	if token == "" {
		return errors.New("empty token")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := state{Token: token, Username: username, IssuedAt: now}
	data, err := json.MarshalIndent(next, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return err
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("write session: %w", err)
	}

	s.state = next
	zap.L().Info("logged in", zap.String("username", username))
	return nil
}

// Logout forgets the token and removes the session file
func (s *Session) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = state{}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	zap.L().Info("logged out")
	return nil
}

// Token returns the bearer token or ErrNotLoggedIn
func (s *Session) Token() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.state.Token == "" {
		return "", ErrNotLoggedIn
	}
	return s.state.Token, nil
}

func (s *Session) LoggedIn() bool {
	_, err := s.Token()
	return err == nil
}

func (s *Session) Username() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Username
}
