package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson(t *testing.T) {
	path := writeTempJSON(t, "", "", map[string]any{
		"endpoint_addr_http":             "0.0.0.0:8080",
		"endpoint_addr_grpc":             "0.0.0.0:9090",
		"database_dsn":                   "postgres://db",
		"secret_key":                     "my_secret_key",
		"access_token_validity_duration": "30m",
		"db_max_conns":                   20,
		"store_timeout":                  "2s",
		"revocation_purge_interval":      "1h",
		"mfa_qr_size":                    512,
		"log_level":                      "warn",
	})

	t.Run("loads from json", func(t *testing.T) {
		cfg := &Config{}
		require.NoError(t, parseJson(cfg, path))

		assert.Equal(t, "0.0.0.0:8080", cfg.EndpointAddrHTTP)
		assert.Equal(t, "0.0.0.0:9090", cfg.EndpointAddrGRPC)
		assert.Equal(t, "postgres://db", cfg.DatabaseDSN)
		assert.Equal(t, "my_secret_key", cfg.SecretKey)
		assert.Equal(t, 30*time.Minute, cfg.AccessTokenValidityDuration)
		assert.Equal(t, int32(20), cfg.DBMaxConns)
		assert.Equal(t, 2*time.Second, cfg.StoreTimeout)
		assert.Equal(t, time.Hour, cfg.RevocationPurgeInterval)
		assert.Equal(t, 512, cfg.MFAQRSize)
		assert.Equal(t, "warn", cfg.LogLevel)
	})

	t.Run("partial file keeps existing values", func(t *testing.T) {
		partial := writeTempJSON(t, "", "partial.json", map[string]any{"log_level": "debug"})

		cfg := &Config{}
		cfg.LoadDefaults()
		require.NoError(t, parseJson(cfg, partial))

		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, ":3000", cfg.EndpointAddrHTTP)
		assert.Equal(t, time.Hour, cfg.AccessTokenValidityDuration)
	})

	t.Run("no path is a no-op", func(t *testing.T) {
		cfg := &Config{}
		require.NoError(t, parseJson(cfg, ""))
		assert.Equal(t, &Config{}, cfg)
	})

	t.Run("missing file", func(t *testing.T) {
		err := parseJson(&Config{}, filepath.Join(t.TempDir(), "nope.json"))
		require.Error(t, err)
	})

	t.Run("invalid json", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte("{"), 0o600))
		require.Error(t, parseJson(&Config{}, bad))
	})
}
