// Package main runs an in-memory conferencing bridge that speaks XML-RPC, for
// local development of the gateway without bridge hardware.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/purezhi/mcu/internal/bridge/fake"
	"github.com/purezhi/mcu/internal/bridge/mockserver"
	"github.com/purezhi/mcu/internal/logging"
)

func main() {
	addr := flag.String("addr", ":8081", "listen address")
	path := flag.String("path", "/RPC2", "XML-RPC endpoint path")
	user := flag.String("user", "", "required authenticationUser (empty accepts any)")
	password := flag.String("password", "", "required authenticationPassword")
	seed := flag.String("conferences", "", "comma-separated conference names to create at start")
	level := flag.String("log-level", "info", "log level")
	flag.Parse()

	logger, closeLog, err := logging.New(logging.Options{Level: *level})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = closeLog() }()

	// Initialize bridge state
	fb := fake.New()
	if *user != "" || *password != "" {
		fb.WithCredentials(*user, *password)
	}
	for _, name := range strings.Split(*seed, ",") {
		if name = strings.TrimSpace(name); name != "" {
			id := fb.WithConference(name)
			logger.Info("conference seeded", zap.String("name", name), zap.String("id", id))
		}
	}

	handler := mockserver.New(fb)
	handler.SetLogger(logger)

	mux := http.NewServeMux()
	mux.Handle(*path, handler)

	httpServer := &http.Server{
		Addr:         *addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", zap.Error(err))
		}
	}()

	logger.Info("mock bridge listening", zap.String("addr", *addr), zap.String("path", *path))
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("mock bridge failed", zap.Error(err))
	}
	logger.Info("mock bridge stopped")
}
