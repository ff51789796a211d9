package config

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfigPath(t *testing.T) {
	t.Run("uses IDCTL_CONFIG env var when set", func(t *testing.T) {
		t.Setenv("IDCTL_CONFIG", "/custom/path/config.yaml")
		assert.Equal(t, "/custom/path/config.yaml", DefaultConfigPath())
	})

	t.Run("falls back to the user config dir", func(t *testing.T) {
		t.Setenv("IDCTL_CONFIG", "")

		result := DefaultConfigPath()
		assert.True(t, strings.HasSuffix(result, filepath.Join("idctl", "config.yaml")) ||
			strings.HasSuffix(result, filepath.Join(".idctl", "config.yaml")),
			"unexpected config path: %s", result)
		assert.True(t, filepath.IsAbs(result))
	})
}

func TestDefaultStoreDir(t *testing.T) {
	result := DefaultStoreDir()
	assert.NotEmpty(t, result)
	assert.True(t, filepath.IsAbs(result))
	assert.Contains(t, result, "idctl")
	assert.True(t, strings.HasSuffix(result, "tokens"), "unexpected store dir: %s", result)
}
