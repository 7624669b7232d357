// Package config loads the server configuration.
//
// SOURCES, HIGHEST PRIORITY FIRST:
//  1. command-line flags that were explicitly set
//  2. environment variables (SECRET_KEY, DATABASE_URL, DB_PATH, HOST/PORT, ...)
//  3. an optional YAML file passed with --config
//  4. flag defaults (see Defaults)
//
// Nothing outside this package reads the environment. The loaded Config is
// passed by value into the constructors that need it.
package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

const (
	// MinSecretLength is the shortest signing secret the token codec accepts.
	MinSecretLength = 16

	minBcryptCost = 4
	maxBcryptCost = 31
)

// Config is the full set of process settings.
type Config struct {
	Addr string `koanf:"addr"`

	// DatabaseURL selects the postgres store when set. Otherwise the
	// embedded sqlite store at DBPath is used.
	DatabaseURL string `koanf:"database_url"`
	DBPath      string `koanf:"db_path"`

	SecretKey  string        `koanf:"secret_key"`
	TokenTTL   time.Duration `koanf:"token_ttl"`
	BcryptCost int           `koanf:"bcrypt_cost"`

	LogFormat string `koanf:"log_format"`
	LogLevel  string `koanf:"log_level"`
}

// Defaults returns the configuration used when no source overrides a key.
func Defaults() Config {
	return Config{
		Addr:       ":8000",
		DBPath:     "data/daily-real.db",
		TokenTTL:   2 * time.Minute,
		BcryptCost: 12,
		LogFormat:  "text",
		LogLevel:   "info",
	}
}

// UsePostgres reports whether the postgres store is selected.
func (c Config) UsePostgres() bool {
	return c.DatabaseURL != ""
}

// Validate checks the settings that would otherwise fail later at first use.
func (c Config) Validate() error {
	var errs []error
	if c.Addr == "" {
		errs = append(errs, errors.New("addr must not be empty"))
	}
	if len(c.SecretKey) < MinSecretLength {
		errs = append(errs, fmt.Errorf("secret_key must be at least %d characters", MinSecretLength))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("token_ttl must be positive"))
	}
	if c.BcryptCost < minBcryptCost || c.BcryptCost > maxBcryptCost {
		errs = append(errs, fmt.Errorf("bcrypt_cost must be between %d and %d", minBcryptCost, maxBcryptCost))
	}
	if !c.UsePostgres() && c.DBPath == "" {
		errs = append(errs, errors.New("db_path must be set when database_url is empty"))
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("log_format must be json or text, got %q", c.LogFormat))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// RegisterFlags adds one flag per configuration key to fs.
// Flag names use dashes; the matching keys use underscores.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Defaults()
	fs.String("addr", d.Addr, "listen address (host:port)")
	fs.String("database-url", d.DatabaseURL, "postgres connection string; empty selects sqlite")
	fs.String("db-path", d.DBPath, "sqlite database file")
	fs.String("secret-key", d.SecretKey, "HS256 token signing secret")
	fs.Duration("token-ttl", d.TokenTTL, "access token lifetime")
	fs.Int("bcrypt-cost", d.BcryptCost, "bcrypt work factor")
	fs.String("log-format", d.LogFormat, "log format: json or text")
	fs.String("log-level", d.LogLevel, "log level: debug, info, warn, error")
}

// envKeys maps environment variable names to configuration keys.
var envKeys = map[string]string{
	"DATABASE_URL": "database_url",
	"DB_PATH":      "db_path",
	"SECRET_KEY":   "secret_key",
	"TOKEN_TTL":    "token_ttl",
	"BCRYPT_COST":  "bcrypt_cost",
	"LOG_FORMAT":   "log_format",
	"LOG_LEVEL":    "log_level",
}

// Load assembles a Config from path (optional), the environment as seen
// through getenv, and fs (optional). The result is validated.
func Load(path string, fs *pflag.FlagSet, getenv func(string) string) (Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
		}
	}

	if getenv != nil {
		if err := k.Load(confmap.Provider(fromEnv(getenv), "."), nil); err != nil {
			return Config{}, fmt.Errorf("config: reading environment: %w", err)
		}
	}

	if fs != nil {
		provider := posflag.ProviderWithFlag(fs, ".", k, func(f *pflag.Flag) (string, interface{}) {
			return flagKey(f.Name), posflag.FlagVal(fs, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return Config{}, fmt.Errorf("config: reading flags: %w", err)
		}
	}

	cfg := Defaults()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("config: decoding: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func fromEnv(getenv func(string) string) map[string]interface{} {
	out := make(map[string]interface{})
	for env, key := range envKeys {
		if v := getenv(env); v != "" {
			out[key] = v
		}
	}
	host, port := getenv("HOST"), getenv("PORT")
	if host != "" || port != "" {
		if port == "" {
			_, port, _ = net.SplitHostPort(Defaults().Addr)
		}
		out["addr"] = net.JoinHostPort(host, port)
	}
	return out
}

func flagKey(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}
