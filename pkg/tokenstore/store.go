package tokenstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// ErrNoToken is returned by Load when no credential is held.
var ErrNoToken = errors.New("no token stored")

// Store holds at most one bearer credential.
//
// Implementations must serialize mutation: a Load that races a Save or Clear
// observes either the old or the new slot, never a torn write.
type Store interface {
	// Load returns the stored token, or ErrNoToken when the slot is empty.
	Load() (string, error)

	// Save stores the token, replacing any previous one.
	Save(token string) error

	// Clear empties the slot. Clearing an empty slot is not an error.
	Clear() error
}

// DefaultPath returns the default location of the credential file.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "streamweave", "token")
}

// FileStore persists the credential in a file, the console's analogue of the
// fixed browser-local storage key. Writes are atomic (temp file + rename) so
// a concurrent reader never sees a partial token.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a file-backed store at path.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("token path is required")
	}
	return &FileStore{path: path}, nil
}

// Path returns the credential file location.
func (s *FileStore) Path() string {
	return s.path
}

// Load returns the stored token, or ErrNoToken when the file is absent or empty.
func (s *FileStore) Load() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNoToken
		}
		return "", fmt.Errorf("failed to read token file: %w", err)
	}

	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", ErrNoToken
	}
	return token, nil
}

// Save stores the token with 0600 permissions.
func (s *FileStore) Save(token string) error {
	if token == "" {
		return fmt.Errorf("refusing to store an empty token")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".token-*")
	if err != nil {
		return fmt.Errorf("failed to create temp token file: %w", err)
	}
	tmpName := tmp.Name()

	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to set token file permissions: %w", err)
	}
	if _, err := tmp.WriteString(token + "\n"); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write token file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close token file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace token file: %w", err)
	}
	return nil
}

// Clear removes the credential file. A missing file is not an error.
func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove token file: %w", err)
	}
	return nil
}

// MemoryStore is an in-process store for tests and ephemeral sessions.
type MemoryStore struct {
	mu    sync.Mutex
	token string
	held  bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load returns the stored token, or ErrNoToken when empty.
func (s *MemoryStore) Load() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.held {
		return "", ErrNoToken
	}
	return s.token, nil
}

// Save stores the token.
func (s *MemoryStore) Save(token string) error {
	if token == "" {
		return fmt.Errorf("refusing to store an empty token")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token
	s.held = true
	return nil
}

// Clear empties the slot.
func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = ""
	s.held = false
	return nil
}
