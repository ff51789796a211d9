package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/telekom/idctl/pkg/apperrors"
)

const accountsFileName = "accounts.json"

// FileStore persists the hash → entry map as JSON under a storage
// directory. With a passphrase the file is encrypted at rest (see
// filecrypt.go); without one it is plain JSON with 0600 permissions.
type FileStore struct {
	mu     sync.Mutex
	path   string
	cipher *fileCipher
}

// NewFileStore creates a file-backed store rooted at dir. The directory is
// required; it is created lazily on first write.
func NewFileStore(dir, passphrase string) (*FileStore, error) {
	if dir == "" {
		return nil, apperrors.New(apperrors.MissingRequiredParameter, "file store requires a storage directory")
	}
	s := &FileStore{path: filepath.Join(dir, accountsFileName)}
	if passphrase != "" {
		s.cipher = newFileCipher(passphrase)
	}
	return s, nil
}

func (s *FileStore) Kind() string { return KindFile }

// Path returns the backing file location.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) load() (map[string]Entry, error) {
	content, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]Entry{}, nil
		}
		return nil, err
	}
	if s.cipher != nil {
		content, err = s.cipher.decrypt(content)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt account store: %w", err)
		}
	}
	entries := map[string]Entry{}
	if err := json.Unmarshal(content, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse account store: %w", err)
	}
	return entries, nil
}

func (s *FileStore) save(entries map[string]Entry) error {
	content, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal account store: %w", err)
	}
	if s.cipher != nil {
		content, err = s.cipher.encrypt(content)
		if err != nil {
			return fmt.Errorf("failed to encrypt account store: %w", err)
		}
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create store dir: %w", err)
	}
	return os.WriteFile(s.path, content, 0o600)
}

func (s *FileStore) Get(criteria Criteria) (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries, err := s.load()
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if criteria.matches(e) {
			found := e
			return &found, nil
		}
	}
	return nil, nil
}

func (s *FileStore) List() ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries, err := s.load()
	if err != nil {
		return nil, err
	}
	list := make([]Entry, 0, len(entries))
	for _, e := range entries {
		list = append(list, e)
	}
	return list, nil
}

func (s *FileStore) Set(entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries, err := s.load()
	if err != nil {
		return err
	}
	entries[entry.Hash] = entry
	return s.save(entries)
}

func (s *FileStore) Delete(criteria ...Criteria) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries, err := s.load()
	if err != nil {
		return nil, err
	}
	var removed []Entry
	for hash, e := range entries {
		for _, c := range criteria {
			if c.matches(e) {
				removed = append(removed, e)
				delete(entries, hash)
				break
			}
		}
	}
	if len(removed) == 0 {
		return nil, nil
	}
	return removed, s.save(entries)
}

func (s *FileStore) Clear(baseURL string) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries, err := s.load()
	if err != nil {
		return nil, err
	}
	var removed []Entry
	for hash, e := range entries {
		if baseURL != "" && e.BaseURL != baseURL {
			continue
		}
		removed = append(removed, e)
		delete(entries, hash)
	}
	if len(removed) == 0 {
		return nil, nil
	}
	return removed, s.save(entries)
}
