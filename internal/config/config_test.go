package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "env: test\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "test", cfg.Env)
	require.Equal(t, ":8080", cfg.HTTP.Port)
	require.Equal(t, ":50051", cfg.GRPC.Port)
	require.Equal(t, StoreRedis, cfg.Cart.Store)
	require.Equal(t, "cart:", cfg.Cart.KeyPrefix)
	require.Equal(t, 720*time.Hour, cfg.Cart.TTL)
	require.Equal(t, 30*time.Minute, cfg.Cart.IdleTimeout)
	require.Equal(t, time.Minute, cfg.Cart.EvictInterval)
	require.Equal(t, CatalogHTTP, cfg.Catalog.Mode)
	require.Equal(t, 3*time.Second, cfg.Catalog.Timeout)
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := writeConfig(t, `
env: prod
cart:
  store: memory
  ttl: 1h
catalog:
  mode: mysql
`)
	t.Setenv("HTTP_PORT", ":9090")

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, ":9090", cfg.HTTP.Port)
	require.Equal(t, StoreMemory, cfg.Cart.Store)
	require.Equal(t, time.Hour, cfg.Cart.TTL)
	require.Equal(t, CatalogMySQL, cfg.Catalog.Mode)
}

func TestLoad_Invalid(t *testing.T) {
	_, err := Load(writeConfig(t, "cart:\n  store: sqlite\n"))
	require.Error(t, err)

	_, err = Load(writeConfig(t, "catalog:\n  mode: grpc\n"))
	require.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
