package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Port:          "8080",
		Env:           "production",
		SessionSecret: "secure-secret-at-least-32-chars-long",
		SessionTTL:    time.Hour,
		DBDriver:      DriverPostgres,
		DBPassword:    "secure-password",
		DBSSLMode:     "require",
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
	}{
		{"valid production", func(*Config) {}, false},
		{"missing port", func(c *Config) { c.Port = "" }, true},
		{"zero ttl", func(c *Config) { c.SessionTTL = 0 }, true},
		{"unknown driver", func(c *Config) { c.DBDriver = "mysql" }, true},
		{"negative fake listings", func(c *Config) { c.SeedFakeListings = -1 }, true},
		{"default secret in production", func(c *Config) { c.SessionSecret = defaultSessionSecret }, true},
		{"short secret in production", func(c *Config) { c.SessionSecret = "short" }, true},
		{"weak db password in production", func(c *Config) { c.DBPassword = "password" }, true},
		{"ssl disabled in production", func(c *Config) { c.DBSSLMode = "disable" }, true},
		{"no database in production", func(c *Config) { c.DBDriver = DriverNone; c.DBPassword = "" }, false},
		{"short secret in development", func(c *Config) { c.Env = "development"; c.SessionSecret = "short" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(&c)
			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoad_DefaultsAndEnv(t *testing.T) {
	t.Setenv("DB_DRIVER", "  SQLite ")
	t.Setenv("SEED_FAKE_LISTINGS", "12")

	c, err := load(viper.New(), t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "8080", c.Port)
	assert.Equal(t, DriverSQLite, c.DBDriver)
	assert.Equal(t, 12, c.SeedFakeListings)
	assert.Equal(t, 24*time.Hour, c.SessionTTL)
	assert.False(t, c.IsProduction())
}

func TestLoad_ProfileFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), []byte("APP_ENV: staging\nPORT: \"9000\"\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.staging.yml"), []byte("FEATURE_FLAGS: profile_edit=on\nSESSION_TTL: 2h\n"), 0o600))

	c, err := load(viper.New(), dir)
	require.NoError(t, err)
	assert.Equal(t, "9000", c.Port)
	assert.Equal(t, "staging", c.Env)
	assert.Equal(t, "profile_edit=on", c.FeatureFlags)
	assert.Equal(t, 2*time.Hour, c.SessionTTL)
}

func TestPostgresDSN(t *testing.T) {
	c := validConfig()
	c.DBHost, c.DBUser, c.DBName, c.DBPort = "db", "app", "sublet", "5432"
	assert.Equal(t, "host=db user=app password=secure-password dbname=sublet port=5432 sslmode=require TimeZone=UTC", c.PostgresDSN())
}
