package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, StorageSQLite, cfg.Storage)
	assert.Equal(t, "intake.db", cfg.SQLitePath)
	assert.Equal(t, "intake:", cfg.KeyPrefix)
	assert.Equal(t, "weight-loss", cfg.Category)
	require.NoError(t, cfg.Validate())

	level, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, level)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "intake.env")
	require.NoError(t, os.WriteFile(path, []byte("STORAGE=redis\nREDIS_URL=redis://file:6379/0\nCATEGORY=longevity\n"), 0o600))

	t.Setenv("INTAKE_REDIS_URL", "redis://env:6379/1")
	t.Setenv("INTAKE_PRODUCT_FIRST", "true")
	t.Setenv("INTAKE_PRODUCT_ID", "prod_1")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, StorageRedis, cfg.Storage)
	assert.Equal(t, "redis://env:6379/1", cfg.RedisURL)
	assert.Equal(t, "longevity", cfg.Category)
	assert.True(t, cfg.ProductFirst)
	require.NoError(t, cfg.Validate())
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.env"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Storage:           StorageMemory,
			Category:          "weight-loss",
			LogLevel:          "info",
			ProductSummaryURL: "https://shop.example.com/products",
		}
	}

	cases := map[string]struct {
		mutate  func(*Config)
		wantErr string
	}{
		"memory ok":             {mutate: func(c *Config) {}},
		"unknown storage":       {mutate: func(c *Config) { c.Storage = "etcd" }, wantErr: "STORAGE"},
		"postgres needs url":    {mutate: func(c *Config) { c.Storage = StoragePostgres }, wantErr: "DATABASE_URL"},
		"mongo needs uri":       {mutate: func(c *Config) { c.Storage = StorageMongo }, wantErr: "MONGO_URI"},
		"product first no id":   {mutate: func(c *Config) { c.ProductFirst = true }, wantErr: "PRODUCT_ID"},
		"no redirect target":    {mutate: func(c *Config) { c.ProductSummaryURL = "" }, wantErr: "PRODUCT_SUMMARY_URL"},
		"bad log level":         {mutate: func(c *Config) { c.LogLevel = "loud" }, wantErr: "LOG_LEVEL"},
		"checkout url suffices": {mutate: func(c *Config) { c.ProductSummaryURL = ""; c.CheckoutURL = "https://c.example.com" }},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := base()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tc.wantErr)
		})
	}
}
