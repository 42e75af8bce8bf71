// Package main is the entry point for the Hodeway API server.
//
// MAIN PACKAGE IN GO:
// The main package stays minimal. Its job is to:
// 1. Read configuration (internal/config, from environment variables)
// 2. Create the logger
// 3. Start the application
//
// All actual logic lives in imported packages (internal/server, internal/service, etc.).
//
// WHY cmd/server/?
// The cmd/ directory is a Go convention for executable entry points.
// Each executable gets its own directory with its own main.go.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/sakif/hodeway/internal/config"
	"github.com/sakif/hodeway/internal/server"
)

func main() {
	// === 1. READ CONFIGURATION ===
	// Load fails fast on a missing SECRET_KEY or any out-of-range value, so a
	// misconfigured deployment never starts serving requests.
	//
	// Required:  SECRET_KEY=$(openssl rand -hex 32)
	// Optional:  PORT, LOG_LEVEL, DATABASE_URL, ALGORITHM,
	//            ACCESS_TOKEN_EXPIRE_MINUTES, BCRYPT_COST, API_V1_STR
	cfg, err := config.Load()
	if err != nil {
		// No configured logger yet; fall back to the default one.
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// === 2. SET UP LOGGING ===
	// slog.NewTextHandler outputs human-readable key=value logs.
	// Log levels (from least to most severe): Debug → Info → Warn → Error
	level, _ := cfg.SlogLevel() // already checked by Load
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))

	// === 3. CREATE AND START THE SERVER ===
	// Opening the store runs migrations, so give it a bounded startup window.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	srv, err := server.New(ctx, cfg, logger)
	cancel()
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start() blocks until the server is shut down (via Ctrl+C or SIGTERM)
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
