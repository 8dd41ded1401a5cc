package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/GeovanniVera/chamus/pkg/sdk"
)

const credentialsFile = "credentials.json"

// FileStore implements sdk.TokenStore using a JSON file. Reads are served
// from an in-memory copy that every write updates, so a token is visible
// to the next request as soon as SetToken returns.
type FileStore struct {
	path      string
	serverURL string

	mu     sync.Mutex
	loaded bool
	creds  *sdk.Credentials
}

// Ensure FileStore implements sdk.TokenStore at compile time.
var _ sdk.TokenStore = (*FileStore)(nil)

// DefaultPath returns ~/.chamus/credentials.json.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, ".chamus", credentialsFile), nil
}

// NewFileStore creates a store at path, or at DefaultPath when path is
// empty. A token saved for a different serverURL is treated as absent.
func NewFileStore(path, serverURL string) (*FileStore, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create credentials directory: %w", err)
	}
	return &FileStore{path: path, serverURL: serverURL}, nil
}

// Path returns the credentials file location.
func (s *FileStore) Path() string { return s.path }

// Token returns the stored token. Unreadable or corrupted files count as
// no session.
func (s *FileStore) Token() (string, bool) {
	creds, err := s.Credentials()
	if err != nil || !creds.Valid() {
		return "", false
	}
	if !s.owns(creds) {
		return "", false
	}
	return creds.AccessToken, true
}

// owns reports whether creds belong to this store's server. Records
// without a server URL belong to every store.
func (s *FileStore) owns(creds *sdk.Credentials) bool {
	return creds == nil || s.serverURL == "" || creds.ServerURL == "" || creds.ServerURL == s.serverURL
}

func (s *FileStore) ownsLocked() bool {
	return s.owns(s.creds)
}

// Credentials returns the stored record, or nil when there is none.
func (s *FileStore) Credentials() (*sdk.Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.loadLocked(); err != nil {
		return nil, err
	}
	return s.creds, nil
}

// SetToken persists token, replacing any previous one.
func (s *FileStore) SetToken(token string) error {
	if token == "" {
		return errors.New("refusing to store an empty token")
	}
	creds := sdk.NewCredentials(token, s.serverURL)

	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}
	data = append(data, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename %s: %w", tmpPath, err)
	}

	s.creds = creds
	s.loaded = true
	return nil
}

// ClearToken deletes the credentials file. Clearing an absent file, or a
// session saved for another server, is a no-op.
func (s *FileStore) ClearToken() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(); err == nil && !s.ownsLocked() {
		return nil
	}

	s.creds = nil
	s.loaded = true
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete credentials: %w", err)
	}
	return nil
}

func (s *FileStore) loadLocked() error {
	if s.loaded {
		return nil
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.loaded = true
			return nil
		}
		return fmt.Errorf("failed to read credentials file: %w", err)
	}
	var creds sdk.Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return fmt.Errorf("corrupted credentials file %s: %w", s.path, err)
	}
	s.creds = &creds
	s.loaded = true
	return nil
}
