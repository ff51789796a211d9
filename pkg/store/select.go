package store

import (
	"go.uber.org/zap"

	"github.com/telekom/idctl/pkg/apperrors"
)

const (
	KindAuto    = "auto"
	KindKeyring = "keyring"
	KindFile    = "file"
	KindMemory  = "memory"
)

// Config carries the construction inputs for the store backends.
type Config struct {
	// Dir is the storage directory for the file backend.
	Dir string
	// Passphrase enables encryption at rest for the file backend.
	Passphrase string
	// Service is the keyring service name (defaults to idctl).
	Service string
}

type candidate struct {
	kind  string
	build func(Config) (Store, error)
}

// autoChain is the fallback order for KindAuto: most durable and most
// protected first, in-memory as the last resort.
var autoChain = []candidate{
	{KindKeyring, func(cfg Config) (Store, error) { return NewKeyringStore(cfg.Service) }},
	{KindFile, func(cfg Config) (Store, error) { return NewFileStore(cfg.Dir, cfg.Passphrase) }},
	{KindMemory, func(Config) (Store, error) { return NewMemoryStore(), nil }},
}

// Select constructs the requested store backend. KindAuto walks the
// fallback chain and returns the first backend that constructs, logging
// skipped candidates at debug level. An explicit kind propagates its
// constructor error instead of falling back.
func Select(log *zap.SugaredLogger, kind string, cfg Config) (Store, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	switch kind {
	case "", KindAuto:
		return selectFrom(log, autoChain, cfg)
	case KindKeyring:
		return NewKeyringStore(cfg.Service)
	case KindFile:
		return NewFileStore(cfg.Dir, cfg.Passphrase)
	case KindMemory:
		return NewMemoryStore(), nil
	default:
		return nil, apperrors.New(apperrors.InvalidValue, "unknown store kind %q", kind)
	}
}

func selectFrom(log *zap.SugaredLogger, chain []candidate, cfg Config) (Store, error) {
	var lastErr error
	for _, c := range chain {
		s, err := c.build(cfg)
		if err != nil {
			log.Debugw("Store backend unavailable, trying next", "kind", c.kind, "error", err)
			lastErr = err
			continue
		}
		log.Debugw("Selected store backend", "kind", c.kind)
		return s, nil
	}
	return nil, apperrors.Wrap(apperrors.StoreUnavailable, lastErr, "no store backend available")
}
