package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dvcrn/steepshot-go/internal/env"
	"github.com/dvcrn/steepshot-go/internal/logger"
)

// Environment variables read by FileStore.
const (
	PathEnv  = "STEEPSHOT_SESSION_PATH"
	TokenEnv = "STEEPSHOT_SESSION"
)

// FileStore keeps the session as JSON in ~/.steepshot/session.json.
// STEEPSHOT_SESSION_PATH moves the file; STEEPSHOT_SESSION supplies a token
// when no file exists.
type FileStore struct {
	path string
}

// NewFileStore resolves the session file path.
func NewFileStore() (*FileStore, error) {
	if p, ok := env.Get(PathEnv); ok {
		return &FileStore{path: p}, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}
	return &FileStore{path: filepath.Join(home, ".steepshot", "session.json")}, nil
}

// NewFileStoreAt uses the given path.
func NewFileStoreAt(path string) *FileStore {
	return &FileStore{path: path}
}

// Path is the session file location.
func (f *FileStore) Path() string { return f.path }

// Load reads the session file, falling back to STEEPSHOT_SESSION.
func (f *FileStore) Load() (*Session, error) {
	data, err := os.ReadFile(f.path)
	switch {
	case err == nil:
		s := &Session{}
		if err := json.Unmarshal(data, s); err != nil {
			return nil, fmt.Errorf("failed to parse session file %s: %w", f.path, err)
		}
		if strings.TrimSpace(s.ID) == "" {
			return nil, ErrNoSession
		}
		return s, nil
	case !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	if token, ok := env.Get(TokenEnv); ok {
		return &Session{ID: token}, nil
	}
	return nil, ErrNoSession
}

// Save writes the session file with owner-only permissions.
func (f *FileStore) Save(s *Session) error {
	if s == nil || strings.TrimSpace(s.ID) == "" {
		return errors.New("refusing to save an empty session")
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("failed to replace session file: %w", err)
	}

	logger.Get().Debug().Str("path", f.path).Str("username", s.Username).Msg("Saved session")
	return nil
}

// Clear removes the session file. A missing file is not an error.
func (f *FileStore) Clear() error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}

func (f *FileStore) Name() string { return "FileStore" }
