package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/telekom/idctl/pkg/idp"
	"github.com/telekom/idctl/pkg/store"
)

const (
	VersionV1 = "v1"
)

type Config struct {
	Version            string            `yaml:"version"`
	CurrentEnvironment string            `yaml:"current-environment,omitempty"`
	Environments       map[string]string `yaml:"environments,omitempty"`
	Defaults           Defaults          `yaml:"defaults,omitempty"`
	Storage            Storage           `yaml:"storage,omitempty"`
	Settings           Settings          `yaml:"settings,omitempty"`
}

// Defaults are applied to every login unless overridden on the command line.
type Defaults struct {
	Realm           string   `yaml:"realm,omitempty"`
	ClientID        string   `yaml:"client-id,omitempty"`
	Scopes          []string `yaml:"scopes,omitempty"`
	CAFile          string   `yaml:"ca-file,omitempty"`
	InsecureSkipTLS bool     `yaml:"insecure-skip-tls-verify,omitempty"`
}

// Storage selects the credential store backend. PassphraseEnv names an
// environment variable so the passphrase itself never lands in the file.
type Storage struct {
	Kind          string `yaml:"kind,omitempty"`
	Dir           string `yaml:"dir,omitempty"`
	PassphraseEnv string `yaml:"passphrase-env,omitempty"`
	Service       string `yaml:"service,omitempty"`
}

type Settings struct {
	OutputFormat string `yaml:"output-format,omitempty"`
	Color        string `yaml:"color,omitempty"`
}

func DefaultConfig() Config {
	return Config{
		Version:            VersionV1,
		CurrentEnvironment: idp.EnvProd,
		Storage: Storage{
			Kind: store.KindAuto,
		},
		Settings: Settings{
			OutputFormat: "table",
			Color:        "auto",
		},
	}
}

func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is required")
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Version == "" {
		cfg.Version = VersionV1
	}
	return &cfg, nil
}

// LoadOrDefault returns the defaults when the file does not exist yet.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		if os.IsNotExist(err) {
			def := DefaultConfig()
			return &def, nil
		}
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	if cfg.Version == "" {
		cfg.Version = VersionV1
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	content, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, content, 0o600)
}

// MergedEnvironments overlays the configured environments on the built-in
// ones, so a config can add environments or repoint a known name.
func (c *Config) MergedEnvironments() idp.Environments {
	merged := make(idp.Environments, len(idp.DefaultEnvironments)+len(c.Environments))
	for name, url := range idp.DefaultEnvironments {
		merged[name] = url
	}
	for name, url := range c.Environments {
		merged[name] = url
	}
	return merged
}

// Passphrase reads the file-store passphrase from the configured
// environment variable, if any.
func (c *Config) Passphrase() string {
	if c.Storage.PassphraseEnv == "" {
		return ""
	}
	return os.Getenv(c.Storage.PassphraseEnv)
}

func (c *Config) CurrentEnvironmentOrDefault() string {
	if c.CurrentEnvironment != "" {
		return c.CurrentEnvironment
	}
	return idp.EnvProd
}

func (c *Config) Validate() error {
	if c.Version == "" {
		return errors.New("config version missing")
	}
	for name, url := range c.Environments {
		if strings.TrimSpace(name) == "" {
			return errors.New("environment name cannot be empty")
		}
		if strings.TrimSpace(url) == "" {
			return fmt.Errorf("environment %s url is required", name)
		}
	}
	switch c.Storage.Kind {
	case "", store.KindAuto, store.KindKeyring, store.KindFile, store.KindMemory, "none":
	default:
		return fmt.Errorf("unknown storage kind: %s", c.Storage.Kind)
	}
	return nil
}
