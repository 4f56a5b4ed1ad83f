package config

import (
	"fmt"
	"net/url"
	"slices"

	"github.com/purezhi/mcu/internal/auth"
	"github.com/purezhi/mcu/internal/locale"
	"github.com/purezhi/mcu/internal/logging"
)

// Validate checks cfg for values the gateway cannot start with.
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if err := validateServer(&cfg.Server); err != nil {
		return fmt.Errorf("server validation failed: %w", err)
	}

	if err := validateBridge(&cfg.Bridge); err != nil {
		return fmt.Errorf("bridge validation failed: %w", err)
	}

	if !slices.Contains(locale.Available(), cfg.Gateway.Locale) {
		return fmt.Errorf("unsupported locale %q, available: %v", cfg.Gateway.Locale, locale.Available())
	}

	if _, err := logging.ParseLevel(cfg.Log.Level); err != nil {
		return fmt.Errorf("log validation failed: %w", err)
	}

	if cfg.Audit.Enabled && cfg.Audit.Dir == "" {
		return fmt.Errorf("audit validation failed: dir is required when audit is enabled")
	}

	if err := validateAuth(&cfg.Auth); err != nil {
		return fmt.Errorf("auth validation failed: %w", err)
	}

	return nil
}

func validateServer(s *ServerConfig) error {
	if s.Addr == "" {
		return fmt.Errorf("addr is required")
	}
	if s.ReadTimeout <= 0 || s.WriteTimeout <= 0 || s.IdleTimeout <= 0 {
		return fmt.Errorf("timeouts must be positive, got read=%v write=%v idle=%v",
			s.ReadTimeout, s.WriteTimeout, s.IdleTimeout)
	}
	return nil
}

func validateBridge(b *BridgeConfig) error {
	u, err := url.Parse(b.URL)
	if err != nil {
		return fmt.Errorf("invalid url %q: %w", b.URL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url %q must use http or https", b.URL)
	}
	if u.Host == "" {
		return fmt.Errorf("url %q has no host", b.URL)
	}
	if b.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", b.Timeout)
	}
	if b.SuccessStatus == "" {
		return fmt.Errorf("successStatus is required")
	}
	return nil
}

func validateAuth(a *AuthConfig) error {
	if !a.Enabled {
		return nil
	}
	switch a.Algorithm {
	case auth.AlgorithmHS256:
		if a.Secret == "" {
			return fmt.Errorf("HS256 requires a secret")
		}
	case auth.AlgorithmRS256:
		if a.PublicKeyFile == "" {
			return fmt.Errorf("RS256 requires publicKeyFile")
		}
	default:
		return fmt.Errorf("unsupported algorithm %q", a.Algorithm)
	}
	return nil
}
