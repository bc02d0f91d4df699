package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ORDERSYNC_CONFIG_PATH", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Empty(t, cfg.Stores)
	assert.Equal(t, DefaultAPIDomain, cfg.APIDomain)
	assert.Equal(t, 7200, cfg.LookbackSeconds)
	assert.Equal(t, 900, cfg.SweepIntervalSeconds)
	assert.Equal(t, 30, cfg.HTTPTimeoutSeconds)
	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, "default", cfg.Source("lookback_seconds"))
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ORDERSYNC_CONFIG_PATH", dir)

	content := `
stores:
  - subdomain: bonappetit
    api_key_env: BON_APPETIT_API_KEY
  - subdomain: amentuminventory
    api_key_env: AMENTUM_INVENTORY_API_KEY
lookback_seconds: 3600
port: 9000
`
	err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0o600)
	require.NoError(t, err)

	cfg, err := Load()
	require.NoError(t, err)

	require.Len(t, cfg.Stores, 2)
	assert.Equal(t, "bonappetit", cfg.Stores[0].Subdomain)
	assert.Equal(t, "BON_APPETIT_API_KEY", cfg.Stores[0].APIKeyEnv)
	assert.Equal(t, 3600, cfg.LookbackSeconds)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, "file", cfg.Source("stores"))
	assert.Equal(t, "file", cfg.Source("lookback_seconds"))
	assert.Equal(t, "default", cfg.Source("sweep_interval_seconds"))
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ORDERSYNC_CONFIG_PATH", dir)

	content := "lookback_seconds: 3600\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0o600))

	t.Setenv("ORDERSYNC_LOOKBACK_SECONDS", "1800")
	t.Setenv("PORT", "3000")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 1800, cfg.LookbackSeconds)
	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, "environment", cfg.Source("lookback_seconds"))
	assert.Equal(t, "environment", cfg.Source("port"))
}

func TestLoad_BadYAML(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ORDERSYNC_CONFIG_PATH", dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("stores: {"), 0o600))

	_, err := Load()
	assert.Error(t, err)
}

func TestParseStoresEnv(t *testing.T) {
	stores := parseStoresEnv("bonappetit=BON_APPETIT_API_KEY, centricity-test-store ,")

	require.Len(t, stores, 2)
	assert.Equal(t, "bonappetit", stores[0].Subdomain)
	assert.Equal(t, "BON_APPETIT_API_KEY", stores[0].APIKeyEnv)
	assert.Equal(t, "centricity-test-store", stores[1].Subdomain)
	assert.Equal(t, "CENTRICITY_TEST_STORE_API_KEY", stores[1].APIKeyEnv)
}

func TestStore_APIKey(t *testing.T) {
	t.Setenv("BON_APPETIT_API_KEY", "sekrit")

	s := Store{Subdomain: "bonappetit", APIKeyEnv: "BON_APPETIT_API_KEY"}
	assert.Equal(t, "sekrit", s.APIKey())

	missing := Store{Subdomain: "other", APIKeyEnv: "OTHER_API_KEY"}
	assert.Empty(t, missing.APIKey())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(c *Config) {},
		},
		{
			name: "empty subdomain",
			mutate: func(c *Config) {
				c.Stores = []Store{{Subdomain: "", APIKeyEnv: "X"}}
			},
			wantErr: "empty subdomain",
		},
		{
			name: "duplicate subdomain",
			mutate: func(c *Config) {
				c.Stores = []Store{
					{Subdomain: "bonappetit", APIKeyEnv: "A"},
					{Subdomain: "bonappetit", APIKeyEnv: "B"},
				}
			},
			wantErr: "duplicate store subdomain",
		},
		{
			name: "missing key env",
			mutate: func(c *Config) {
				c.Stores = []Store{{Subdomain: "bonappetit"}}
			},
			wantErr: "no api_key_env",
		},
		{
			name:    "bad lookback",
			mutate:  func(c *Config) { c.LookbackSeconds = 0 },
			wantErr: "lookback_seconds",
		},
		{
			name:    "bad interval",
			mutate:  func(c *Config) { c.SweepIntervalSeconds = -1 },
			wantErr: "sweep_interval_seconds",
		},
		{
			name:    "bad port",
			mutate:  func(c *Config) { c.Port = 70000 },
			wantErr: "invalid port",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newDefault()
			cfg.Stores = []Store{{Subdomain: "bonappetit", APIKeyEnv: "BON_APPETIT_API_KEY"}}
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestAdminTokenSecret(t *testing.T) {
	t.Setenv("ORDERSYNC_ADMIN_TOKEN_SECRET", "")
	assert.Nil(t, AdminTokenSecret())

	t.Setenv("ORDERSYNC_ADMIN_TOKEN_SECRET", "topsecret")
	assert.Equal(t, []byte("topsecret"), AdminTokenSecret())
}
