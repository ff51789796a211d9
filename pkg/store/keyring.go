package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"github.com/telekom/idctl/pkg/apperrors"
)

const (
	defaultKeyringService = "idctl"
	keyringIndexKey       = "__index__"
	keyringProbeKey       = "__probe__"
)

// KeyringStore keeps one keyring record per entry hash plus an index record,
// since the host keyring offers no enumeration. Availability is probed at
// construction so auto-selection can fall through on headless systems.
type KeyringStore struct {
	service string
}

func NewKeyringStore(service string) (*KeyringStore, error) {
	if service == "" {
		service = defaultKeyringService
	}
	if err := keyring.Set(service, keyringProbeKey, "ok"); err != nil {
		return nil, apperrors.Wrap(apperrors.StoreUnavailable, err, "host keyring not available")
	}
	_ = keyring.Delete(service, keyringProbeKey)
	return &KeyringStore{service: service}, nil
}

func (s *KeyringStore) Kind() string { return KindKeyring }

func (s *KeyringStore) index() ([]string, error) {
	raw, err := keyring.Get(s.service, keyringIndexKey)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	var hashes []string
	if err := json.Unmarshal([]byte(raw), &hashes); err != nil {
		return nil, fmt.Errorf("corrupt keyring index: %w", err)
	}
	return hashes, nil
}

func (s *KeyringStore) saveIndex(hashes []string) error {
	if len(hashes) == 0 {
		err := keyring.Delete(s.service, keyringIndexKey)
		if errors.Is(err, keyring.ErrNotFound) {
			return nil
		}
		return err
	}
	raw, err := json.Marshal(hashes)
	if err != nil {
		return err
	}
	return keyring.Set(s.service, keyringIndexKey, string(raw))
}

func (s *KeyringStore) read(hash string) (*Entry, error) {
	raw, err := keyring.Get(s.service, hash)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	var e Entry
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		return nil, fmt.Errorf("corrupt keyring entry %s: %w", hash, err)
	}
	return &e, nil
}

func (s *KeyringStore) Get(criteria Criteria) (*Entry, error) {
	entries, err := s.List()
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

func (s *KeyringStore) List() ([]Entry, error) {
	hashes, err := s.index()
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(hashes))
	for _, hash := range hashes {
		e, err := s.read(hash)
		if err != nil {
			return nil, err
		}
		if e != nil {
			entries = append(entries, *e)
		}
	}
	return entries, nil
}

func (s *KeyringStore) Set(entry Entry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	if err := keyring.Set(s.service, entry.Hash, string(raw)); err != nil {
		return err
	}
	hashes, err := s.index()
	if err != nil {
		return err
	}
	for _, h := range hashes {
		if h == entry.Hash {
			return nil
		}
	}
	return s.saveIndex(append(hashes, entry.Hash))
}

func (s *KeyringStore) Delete(criteria ...Criteria) ([]Entry, error) {
	entries, err := s.List()
	if err != nil {
		return nil, err
	}
	var removed []Entry
	for _, e := range entries {
		for _, c := range criteria {
			if c.matches(e) {
				if err := s.remove(e.Hash); err != nil {
					return removed, err
				}
				removed = append(removed, e)
				break
			}
		}
	}
	return removed, nil
}

func (s *KeyringStore) Clear(baseURL string) ([]Entry, error) {
	entries, err := s.List()
	if err != nil {
		return nil, err
	}
	var removed []Entry
	for _, e := range entries {
		if baseURL != "" && e.BaseURL != baseURL {
			continue
		}
		if err := s.remove(e.Hash); err != nil {
			return removed, err
		}
		removed = append(removed, e)
	}
	return removed, nil
}

func (s *KeyringStore) remove(hash string) error {
	if err := keyring.Delete(s.service, hash); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return err
	}
	hashes, err := s.index()
	if err != nil {
		return err
	}
	kept := hashes[:0]
	for _, h := range hashes {
		if h != hash {
			kept = append(kept, h)
		}
	}
	return s.saveIndex(kept)
}
