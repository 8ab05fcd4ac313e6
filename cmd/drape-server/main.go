// Package main is the entry point for the headless streaming server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Faultbox/drape/internal/config"
	"github.com/Faultbox/drape/internal/logger"
	"github.com/Faultbox/drape/internal/server"
	"github.com/Faultbox/drape/internal/session"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== Drape Server ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	sess, err := session.New(cfg)
	if err != nil {
		logger.Error("failed to build simulation", zap.Error(err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(cfg, sess)
	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("server closed normally")
}
