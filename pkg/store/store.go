// Package store persists credential entries keyed by a stable fingerprint.
// Three backends share one contract: an in-process map, an (optionally
// encrypted) JSON file, and the host keyring. Selection with automatic
// fallback lives in select.go.
package store

import (
	"time"
)

// Tokens is the token set obtained from one grant exchange.
type Tokens struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	IDToken      string    `json:"id_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at,omitempty"`
}

// AuthInfo holds decoded identity claims for display purposes.
type AuthInfo struct {
	Subject string `json:"subject,omitempty"`
	Email   string `json:"email,omitempty"`
	Name    string `json:"name,omitempty"`
}

// Entry is one persisted credential record. Hash uniquely identifies the
// login slot (authenticator kind + client id + realm + base URL); a store
// holds at most one entry per hash.
type Entry struct {
	Hash     string    `json:"hash"`
	Name     string    `json:"name"`
	BaseURL  string    `json:"base_url"`
	Realm    string    `json:"realm"`
	Tokens   Tokens    `json:"tokens"`
	AuthInfo *AuthInfo `json:"auth_info,omitempty"`
}

// Criteria selects entries. Hash takes precedence; otherwise Name and
// BaseURL must both match when set. Empty criteria match nothing.
type Criteria struct {
	Hash    string
	Name    string
	BaseURL string
}

func (c Criteria) empty() bool {
	return c.Hash == "" && c.Name == "" && c.BaseURL == ""
}

func (c Criteria) matches(e Entry) bool {
	if c.empty() {
		return false
	}
	if c.Hash != "" {
		return c.Hash == e.Hash
	}
	if c.Name != "" && c.Name != e.Name {
		return false
	}
	if c.BaseURL != "" && c.BaseURL != e.BaseURL {
		return false
	}
	return true
}

// Store is the common credential-store contract. Set is an upsert by hash
// with last-write-wins semantics; listing order is not significant.
type Store interface {
	// Get returns the first matching entry, or nil when absent.
	Get(criteria Criteria) (*Entry, error)
	List() ([]Entry, error)
	Set(entry Entry) error
	// Delete removes all entries matching any of the given criteria and
	// returns the removed entries.
	Delete(criteria ...Criteria) ([]Entry, error)
	// Clear removes every entry, or only those under baseURL when non-empty,
	// and returns the removed entries.
	Clear(baseURL string) ([]Entry, error)
	// Kind names the backend (memory, file, keyring).
	Kind() string
}
