// Package main implements the conference gateway entry point.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/purezhi/mcu/internal/action"
	"github.com/purezhi/mcu/internal/api"
	"github.com/purezhi/mcu/internal/audit"
	"github.com/purezhi/mcu/internal/auth"
	"github.com/purezhi/mcu/internal/bridge"
	"github.com/purezhi/mcu/internal/command"
	"github.com/purezhi/mcu/internal/config"
	"github.com/purezhi/mcu/internal/fault"
	"github.com/purezhi/mcu/internal/locale"
	"github.com/purezhi/mcu/internal/logging"
	"github.com/purezhi/mcu/internal/metrics"
)

// Version is overridden at build time with -ldflags "-X main.Version=...".
var Version = "1.0.0"

func main() {
	if err := run(); err != nil {
		log.Fatalf("mcugw: %v", err)
	}
}

func run() error {
	// Step 1: Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Step 2: Initialize logger
	logger, closeLog, err := logging.New(logging.Options{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = closeLog() }()

	logger.Info("starting conference gateway",
		zap.String("version", Version),
		zap.String("bridge", cfg.Bridge.URL),
		zap.String("locale", cfg.Gateway.Locale),
	)

	// Step 3: Initialize message catalog and fault translator
	catalog, err := locale.New(cfg.Gateway.Locale)
	if err != nil {
		return fmt.Errorf("failed to load locale: %w", err)
	}
	translator := fault.NewTranslator(catalog)

	// Step 4: Initialize metrics
	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	// Step 5: Create bridge client
	client := bridge.NewClient(
		bridge.NewXMLRPC(cfg.Bridge.URL, cfg.Bridge.Timeout),
		bridge.Credentials{User: cfg.Bridge.User, Password: cfg.Bridge.Password},
		cfg.Bridge.SuccessStatus,
	)
	client.SetLogger(logger.Named("bridge"))
	if m != nil {
		client.SetObserver(m)
	}

	// Step 6: Create dispatcher
	dispatcher := command.NewDispatcher(client, translator)
	dispatcher.SetLogger(logger.Named("dispatch"))
	if m != nil {
		dispatcher.SetRecorder(m)
	}

	// Step 7: Initialize audit logger
	var auditLogger *audit.Logger
	if cfg.Audit.Enabled {
		auditLogger, err = audit.NewLogger(cfg.Audit.Dir, audit.Rotation{
			MaxSizeMB:  cfg.Audit.MaxSizeMB,
			MaxBackups: cfg.Audit.MaxBackups,
			MaxAgeDays: cfg.Audit.MaxAgeDays,
			Compress:   cfg.Audit.Compress,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize audit logger: %w", err)
		}
		defer func() {
			if err := auditLogger.Close(); err != nil {
				logger.Error("failed to close audit logger", zap.Error(err))
			}
		}()
		auditLogger.SetErrorLogger(logger.Named("audit"))
		dispatcher.SetAuditLogger(auditLogger)
		logger.Info("audit logger initialized", zap.String("file", auditLogger.FilePath()))
	}

	// Step 8: Create API server
	server := api.NewServer(dispatcher, action.NewRouter(), translator,
		cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.IdleTimeout)
	server.SetLogger(logger.Named("http"))
	server.SetVersion(Version)
	server.SetCORSOrigins(cfg.CORS.AllowedOrigins)
	if m != nil {
		server.SetMetrics(m)
	}

	if cfg.Auth.Enabled {
		verifier, err := newVerifier(cfg.Auth)
		if err != nil {
			return fmt.Errorf("failed to initialize authentication: %w", err)
		}
		server.SetAuthMiddleware(auth.NewMiddleware(verifier, server.AuthFailure))
		logger.Info("authentication enabled", zap.String("algorithm", cfg.Auth.Algorithm))
	}

	// Step 9: Serve until a shutdown signal or a server error
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return server.Start(cfg.Server.Addr)
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Stop(shutdownCtx)
	})

	if auditLogger != nil {
		g.Go(func() error {
			rotateOnHangup(ctx, auditLogger, logger)
			return nil
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	logger.Info("conference gateway stopped")
	return nil
}

// newVerifier builds the token verifier, reading the RS256 public key from
// disk when configured.
func newVerifier(cfg config.AuthConfig) (*auth.Verifier, error) {
	vc := auth.VerifierConfig{
		Algorithm: cfg.Algorithm,
		SecretKey: cfg.Secret,
	}
	if cfg.Algorithm == auth.AlgorithmRS256 {
		pem, err := os.ReadFile(cfg.PublicKeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read public key: %w", err)
		}
		vc.PublicKeyPEM = string(pem)
	}
	return auth.NewVerifier(vc)
}

// rotateOnHangup reopens the audit file on SIGHUP so external log shippers
// can take the old one.
func rotateOnHangup(ctx context.Context, auditLogger *audit.Logger, logger *zap.Logger) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			if err := auditLogger.Rotate(); err != nil {
				logger.Error("audit rotation failed", zap.Error(err))
				continue
			}
			logger.Info("audit log rotated")
		}
	}
}
