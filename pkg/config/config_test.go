package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/telekom/idctl/pkg/idp"
	"github.com/telekom/idctl/pkg/store"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	cfg := DefaultConfig()
	cfg.CurrentEnvironment = "dev"
	cfg.Environments = map[string]string{
		"lab": "https://identity.lab.example.com",
	}
	cfg.Defaults = Defaults{
		Realm:    "platform",
		ClientID: "idctl",
		Scopes:   []string{"openid", "email"},
	}
	cfg.Storage = Storage{Kind: store.KindFile, Dir: "/var/lib/idctl", PassphraseEnv: "IDCTL_PASSPHRASE"}

	require.NoError(t, Save(path, &cfg))
	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg.CurrentEnvironment, loaded.CurrentEnvironment)
	require.Equal(t, cfg.Environments, loaded.Environments)
	require.Equal(t, cfg.Defaults, loaded.Defaults)
	require.Equal(t, cfg.Storage, loaded.Storage)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	require.True(t, os.IsNotExist(err))
}

func TestLoadOrDefault(t *testing.T) {
	t.Run("missing file yields defaults", func(t *testing.T) {
		cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
		require.NoError(t, err)
		require.Equal(t, VersionV1, cfg.Version)
		require.Equal(t, store.KindAuto, cfg.Storage.Kind)
	})

	t.Run("existing file wins", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		cfg := DefaultConfig()
		cfg.CurrentEnvironment = "preprod"
		require.NoError(t, Save(path, &cfg))

		loaded, err := LoadOrDefault(path)
		require.NoError(t, err)
		require.Equal(t, "preprod", loaded.CurrentEnvironment)
	})
}

func TestLoadEmptyPath(t *testing.T) {
	_, err := Load("")
	require.Error(t, err)
	require.Contains(t, err.Error(), "config path is required")
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "invalid.yaml")
	require.NoError(t, os.WriteFile(path, []byte("invalid: [yaml: content"), 0o600))
	_, err := Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to parse config")
}

func TestSaveNilConfig(t *testing.T) {
	err := Save(filepath.Join(t.TempDir(), "config.yaml"), nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "config is nil")
}

func TestSaveDefaultsVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := &Config{} // No version set
	require.NoError(t, Save(path, cfg))
	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, VersionV1, loaded.Version)
}

func TestMergedEnvironments(t *testing.T) {
	t.Run("built-ins pass through", func(t *testing.T) {
		cfg := &Config{}
		merged := cfg.MergedEnvironments()
		require.Equal(t, idp.DefaultEnvironments[idp.EnvProd], merged[idp.EnvProd])
	})

	t.Run("config adds and overrides", func(t *testing.T) {
		cfg := &Config{Environments: map[string]string{
			"lab":     "https://identity.lab.example.com",
			idp.EnvDev: "https://identity.other-dev.example.com",
		}}
		merged := cfg.MergedEnvironments()
		require.Equal(t, "https://identity.lab.example.com", merged["lab"])
		require.Equal(t, "https://identity.other-dev.example.com", merged[idp.EnvDev])
		require.Equal(t, idp.DefaultEnvironments[idp.EnvProd], merged[idp.EnvProd])
	})
}

func TestPassphrase(t *testing.T) {
	t.Run("reads from the named variable", func(t *testing.T) {
		t.Setenv("IDCTL_TEST_PASSPHRASE", "hunter2")
		cfg := &Config{Storage: Storage{PassphraseEnv: "IDCTL_TEST_PASSPHRASE"}}
		require.Equal(t, "hunter2", cfg.Passphrase())
	})

	t.Run("empty without a variable name", func(t *testing.T) {
		cfg := &Config{}
		require.Equal(t, "", cfg.Passphrase())
	})
}

func TestCurrentEnvironmentOrDefault(t *testing.T) {
	require.Equal(t, "dev", (&Config{CurrentEnvironment: "dev"}).CurrentEnvironmentOrDefault())
	require.Equal(t, idp.EnvProd, (&Config{}).CurrentEnvironmentOrDefault())
}

func TestValidate(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Environments = map[string]string{"lab": "https://identity.lab.example.com"}
		require.NoError(t, cfg.Validate())
	})

	t.Run("missing version", func(t *testing.T) {
		err := (&Config{}).Validate()
		require.Error(t, err)
		require.Contains(t, err.Error(), "config version missing")
	})

	t.Run("empty environment name", func(t *testing.T) {
		cfg := &Config{Version: VersionV1, Environments: map[string]string{"  ": "https://example.com"}}
		err := cfg.Validate()
		require.Error(t, err)
		require.Contains(t, err.Error(), "environment name cannot be empty")
	})

	t.Run("empty environment url", func(t *testing.T) {
		cfg := &Config{Version: VersionV1, Environments: map[string]string{"lab": " "}}
		err := cfg.Validate()
		require.Error(t, err)
		require.Contains(t, err.Error(), "url is required")
	})

	t.Run("unknown storage kind", func(t *testing.T) {
		cfg := &Config{Version: VersionV1, Storage: Storage{Kind: "cloud"}}
		err := cfg.Validate()
		require.Error(t, err)
		require.Contains(t, err.Error(), "unknown storage kind")
	})
}
