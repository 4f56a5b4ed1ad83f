package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// Environment variables and files read by Load.
const (
	EnvConfigFile = "MCUGW_CONFIG"
	DefaultFile   = "config.yaml"
	DotEnvFile    = ".env"
)

// Load merges defaults, .env, the YAML file and MCUGW_* overrides, then
// validates the result.
func Load() (*Config, error) {
	return load(DotEnvFile, DefaultFile)
}

func load(dotEnvPath, defaultPath string) (*Config, error) {
	cfg := Default()

	// .env values never replace variables already set in the environment
	dotEnv, err := readDotEnv(dotEnvPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", dotEnvPath, err)
	}
	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotEnv[key]
		return v, ok
	}

	path, _ := lookup(EnvConfigFile)
	if path == "" {
		if _, err := os.Stat(defaultPath); err == nil {
			path = defaultPath
		}
	}
	if path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
	}

	if err := applyEnvOverrides(cfg, lookup); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func readDotEnv(path string) (map[string]string, error) {
	values, err := godotenv.Read(path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	return values, err
}

// loadFromFile decodes a YAML file over cfg. Keys absent from the file keep
// their current values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.UnmarshalStrict(data, cfg); err != nil {
		return fmt.Errorf("invalid YAML: %w", err)
	}
	return nil
}

type lookupFunc func(key string) (string, bool)

// applyEnvOverrides applies MCUGW_* variables to cfg.
func applyEnvOverrides(cfg *Config, lookup lookupFunc) error {
	e := &envReader{lookup: lookup}

	// Server
	e.str("MCUGW_SERVER_ADDR", &cfg.Server.Addr)
	e.duration("MCUGW_SERVER_READ_TIMEOUT", &cfg.Server.ReadTimeout)
	e.duration("MCUGW_SERVER_WRITE_TIMEOUT", &cfg.Server.WriteTimeout)
	e.duration("MCUGW_SERVER_IDLE_TIMEOUT", &cfg.Server.IdleTimeout)

	// Bridge
	e.str("MCUGW_BRIDGE_URL", &cfg.Bridge.URL)
	e.str("MCUGW_BRIDGE_USER", &cfg.Bridge.User)
	e.str("MCUGW_BRIDGE_PASSWORD", &cfg.Bridge.Password)
	e.duration("MCUGW_BRIDGE_TIMEOUT", &cfg.Bridge.Timeout)
	e.str("MCUGW_BRIDGE_SUCCESS_STATUS", &cfg.Bridge.SuccessStatus)

	e.str("MCUGW_LOCALE", &cfg.Gateway.Locale)

	// Logging
	e.str("MCUGW_LOG_LEVEL", &cfg.Log.Level)
	e.str("MCUGW_LOG_FILE", &cfg.Log.File)
	e.integer("MCUGW_LOG_MAX_SIZE_MB", &cfg.Log.MaxSizeMB)
	e.integer("MCUGW_LOG_MAX_BACKUPS", &cfg.Log.MaxBackups)
	e.integer("MCUGW_LOG_MAX_AGE_DAYS", &cfg.Log.MaxAgeDays)
	e.boolean("MCUGW_LOG_COMPRESS", &cfg.Log.Compress)

	// Audit
	e.boolean("MCUGW_AUDIT_ENABLED", &cfg.Audit.Enabled)
	e.str("MCUGW_AUDIT_DIR", &cfg.Audit.Dir)

	// Auth
	e.boolean("MCUGW_AUTH_ENABLED", &cfg.Auth.Enabled)
	e.str("MCUGW_AUTH_ALGORITHM", &cfg.Auth.Algorithm)
	e.str("MCUGW_AUTH_SECRET", &cfg.Auth.Secret)
	e.str("MCUGW_AUTH_PUBLIC_KEY_FILE", &cfg.Auth.PublicKeyFile)

	e.list("MCUGW_CORS_ALLOWED_ORIGINS", &cfg.CORS.AllowedOrigins)
	e.boolean("MCUGW_METRICS_ENABLED", &cfg.Metrics.Enabled)

	return errors.Join(e.errs...)
}

// envReader collects parse errors so every bad variable is reported at once.
type envReader struct {
	lookup lookupFunc
	errs   []error
}

func (e *envReader) get(key string) (string, bool) {
	v, ok := e.lookup(key)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func (e *envReader) str(key string, dst *string) {
	if v, ok := e.get(key); ok {
		*dst = v
	}
}

func (e *envReader) duration(key string, dst *time.Duration) {
	if v, ok := e.get(key); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			e.errs = append(e.errs, fmt.Errorf("%s: %w", key, err))
			return
		}
		*dst = d
	}
}

func (e *envReader) integer(key string, dst *int) {
	if v, ok := e.get(key); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			e.errs = append(e.errs, fmt.Errorf("%s: %w", key, err))
			return
		}
		*dst = n
	}
}

func (e *envReader) boolean(key string, dst *bool) {
	if v, ok := e.get(key); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			e.errs = append(e.errs, fmt.Errorf("%s: %w", key, err))
			return
		}
		*dst = b
	}
}

func (e *envReader) list(key string, dst *[]string) {
	if v, ok := e.get(key); ok {
		var items []string
		for _, item := range strings.Split(v, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		*dst = items
	}
}
