package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zabi-Anwari/CollabCore/config"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
	assert.Equal(t, ":8081", cfg.ListenAddr)
	assert.Equal(t, "default", cfg.Document)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "collabcore.toml")
	data := `
listen_addr = ":9000"
document = "notes"
redis_addr = "localhost:6379"
user_name = "ada"
log_level = "debug"
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, "notes", cfg.Document)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, "ada", cfg.UserName)
	// Fields the file omits keep their defaults.
	assert.Equal(t, "ws://localhost:8081/ws", cfg.RelayURL)
}

func TestLoadRejectsMalformedTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("listen_addr = ["), 0o644))
	_, err := config.Load(path)
	assert.Error(t, err)
}
