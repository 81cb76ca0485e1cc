package authclient

import (
	"encoding/json"
	"errors"
	"os"
	"sync"
)

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// TokenStore holds the current credential pair. Implementations must
// be safe for concurrent use; the coordinator reads and writes from
// many goroutines.
type TokenStore interface {
	Load() (TokenPair, error)
	Save(TokenPair) error
	Clear() error
}

type MemoryStore struct {
	mu   sync.Mutex
	pair TokenPair
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (s *MemoryStore) Load() (TokenPair, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pair, nil
}

func (s *MemoryStore) Save(p TokenPair) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pair = p
	return nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pair = TokenPair{}
	return nil
}

// FileStore persists the pair on disk, the CLI analog of browser
// storage.
type FileStore struct {
	mu   sync.Mutex
	path string
}

func NewFileStore(path string) *FileStore { return &FileStore{path: path} }

func (s *FileStore) Load() (TokenPair, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return TokenPair{}, nil
		}
		return TokenPair{}, err
	}
	var p TokenPair
	if err := json.Unmarshal(data, &p); err != nil {
		return TokenPair{}, err
	}
	return p, nil
}

func (s *FileStore) Save(p TokenPair) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}

func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
