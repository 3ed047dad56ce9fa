package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment variables recognised by Load.
const (
	EnvPrefix  = "BIOAGE_"
	EnvConfig  = EnvPrefix + "CONFIG"
	EnvEnvFile = EnvPrefix + "ENV_FILE"
)

// defaultEnvFile is read when present and BIOAGE_ENV_FILE is unset.
const defaultEnvFile = ".env"

// Load builds a Config by layering defaults, optional files, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if BIOAGE_CONFIG is set
//  3. dotenv file (BIOAGE_ENV_FILE, or ./.env when present)
//  4. env (prefix BIOAGE_)
func Load(_ context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv(EnvConfig); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	dotenv, err := readEnvFile()
	if err != nil {
		return nil, fmt.Errorf("%w: env file: %w", ErrLoadConfig, err)
	}
	for name, value := range dotenv {
		if !strings.HasPrefix(name, EnvPrefix) || name == EnvConfig || name == EnvEnvFile {
			continue
		}
		if err := k.Set(envKey(name), value); err != nil {
			return nil, fmt.Errorf("%w: env file: %s: %w", ErrLoadConfig, name, err)
		}
	}

	envProvider := env.Provider(EnvPrefix, ".", envKey)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey maps env names like BIOAGE_LOG_LEVEL to flat keys like log_level.
func envKey(s string) string {
	s = strings.ToLower(s)
	return strings.TrimPrefix(s, strings.ToLower(EnvPrefix))
}

// readEnvFile returns the variables of the configured dotenv file. A missing
// default file is not an error; a missing explicit one is.
func readEnvFile() (map[string]string, error) {
	path := os.Getenv(EnvEnvFile)
	if path == "" {
		path = defaultEnvFile
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
	}
	return godotenv.Read(path)
}

// Validate checks the loaded values.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: unknown log_format %q", ErrInvalidConfig, c.LogFormat)
	}
	if t := c.BAATable(); t != nil {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("%w: baa_coefficients: %w", ErrInvalidConfig, err)
		}
	}
	return nil
}
