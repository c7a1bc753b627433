package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, StoreSQLite, cfg.Store.Driver)
	assert.Equal(t, 8787, cfg.Server.Port)
	assert.True(t, cfg.Player.Captions)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
store:
  driver: http
  http_base_url: https://focus.example.com
server:
  port: 9000
  token_ttl: 1h
player:
  captions: false
logging:
  level: debug
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, StoreHTTP, cfg.Store.Driver)
	assert.Equal(t, "https://focus.example.com", cfg.Store.HTTPBaseURL)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, time.Hour, cfg.Server.TokenTTL)
	assert.False(t, cfg.Player.Captions)
	assert.Equal(t, "en", cfg.Player.CaptionLang)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadRejectsBadValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	require.NoError(t, os.WriteFile(path, []byte("store:\n  driver: mongo\n"), 0o644))
	_, err := Load(path)
	assert.ErrorContains(t, err, "unknown store driver")

	require.NoError(t, os.WriteFile(path, []byte("store:\n  driver: postgres\n"), 0o644))
	_, err = Load(path)
	assert.ErrorContains(t, err, "postgres_url")

	require.NoError(t, os.WriteFile(path, []byte("store: [\n"), 0o644))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"DEEPFOCUS_JWT_SECRET":   "s3cret",
		"DEEPFOCUS_AI_API_KEY":   "sk-1",
		"DEEPFOCUS_PORT":         "9999",
		"DEEPFOCUS_STORE_DRIVER": "",
	}
	cfg := Default()
	applyEnv(cfg, func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})

	assert.Equal(t, "s3cret", cfg.Server.JWTSecret)
	assert.Equal(t, "sk-1", cfg.AI.APIKey)
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, StoreSQLite, cfg.Store.Driver)
	assert.Equal(t, "127.0.0.1:9999", cfg.Server.Addr())
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggingConfig{Level: "warn"}, &buf)

	logger.Info().Msg("hidden")
	logger.Warn().Str("k", "v").Msg("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"message":"shown"`)
	assert.Contains(t, buf.String(), `"k":"v"`)
}
