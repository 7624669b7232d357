package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-1234567890"

func envFrom(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))
	return fs
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", newFlags(t), envFrom(map[string]string{"SECRET_KEY": testSecret}))
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.Addr)
	assert.Equal(t, "data/daily-real.db", cfg.DBPath)
	assert.Equal(t, 2*time.Minute, cfg.TokenTTL)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, testSecret, cfg.SecretKey)
	assert.False(t, cfg.UsePostgres())
}

func TestLoad_Environment(t *testing.T) {
	env := map[string]string{
		"SECRET_KEY":   testSecret,
		"DATABASE_URL": "postgres://u:p@localhost:5432/daily",
		"HOST":         "127.0.0.1",
		"PORT":         "9000",
		"TOKEN_TTL":    "5m",
		"BCRYPT_COST":  "4",
		"LOG_FORMAT":   "json",
	}

	cfg, err := Load("", newFlags(t), envFrom(env))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Addr)
	assert.True(t, cfg.UsePostgres())
	assert.Equal(t, 5*time.Minute, cfg.TokenTTL)
	assert.Equal(t, 4, cfg.BcryptCost)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoad_HostWithoutPort(t *testing.T) {
	cfg, err := Load("", newFlags(t), envFrom(map[string]string{
		"SECRET_KEY": testSecret,
		"HOST":       "127.0.0.1",
	}))
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8000", cfg.Addr)

	cfg, err = Load("", newFlags(t), envFrom(map[string]string{
		"SECRET_KEY": testSecret,
		"PORT":       "9100",
	}))
	require.NoError(t, err)
	assert.Equal(t, ":9100", cfg.Addr)
}

func TestLoad_Precedence(t *testing.T) {
	path := writeFile(t, `
addr: ":7000"
secret_key: "file-secret-key-0123456789"
token_ttl: 10m
log_level: debug
`)

	// file only
	cfg, err := Load(path, newFlags(t), envFrom(nil))
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Addr)
	assert.Equal(t, 10*time.Minute, cfg.TokenTTL)
	assert.Equal(t, "debug", cfg.LogLevel)

	// environment beats file
	cfg, err = Load(path, newFlags(t), envFrom(map[string]string{"PORT": "7100"}))
	require.NoError(t, err)
	assert.Equal(t, ":7100", cfg.Addr)
	assert.Equal(t, "file-secret-key-0123456789", cfg.SecretKey)

	// explicit flag beats environment
	cfg, err = Load(path, newFlags(t, "--addr=:7200", "--token-ttl=30s"), envFrom(map[string]string{"PORT": "7100"}))
	require.NoError(t, err)
	assert.Equal(t, ":7200", cfg.Addr)
	assert.Equal(t, 30*time.Second, cfg.TokenTTL)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil, envFrom(nil))
	assert.Error(t, err)
}

func TestLoad_WithoutFlagSet(t *testing.T) {
	cfg, err := Load("", nil, envFrom(map[string]string{"SECRET_KEY": testSecret}))
	require.NoError(t, err)
	assert.Equal(t, Defaults().Addr, cfg.Addr)
}

func TestValidate(t *testing.T) {
	valid := Defaults()
	valid.SecretKey = testSecret

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"short secret", func(c *Config) { c.SecretKey = "short" }, "secret_key"},
		{"zero ttl", func(c *Config) { c.TokenTTL = 0 }, "token_ttl"},
		{"cost too low", func(c *Config) { c.BcryptCost = 3 }, "bcrypt_cost"},
		{"cost too high", func(c *Config) { c.BcryptCost = 32 }, "bcrypt_cost"},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }, "log_format"},
		{"no store", func(c *Config) { c.DBPath = "" }, "db_path"},
		{"postgres without path", func(c *Config) { c.DBPath = ""; c.DatabaseURL = "postgres://x" }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_RejectsMissingSecret(t *testing.T) {
	_, err := Load("", newFlags(t), envFrom(nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "secret_key")
}
