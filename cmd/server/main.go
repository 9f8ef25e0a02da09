// Package main is the entry point for the student records server.
//
// Its only jobs: load configuration from the environment, set up the
// logger, and hand off to internal/server. All real logic lives in the
// internal packages.
package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/ydahmen/student-records/internal/mail"
	"github.com/ydahmen/student-records/internal/server"
)

func main() {
	// .env is optional — real deployments set the environment directly.
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	cfg := server.Config{
		Port:          envInt(logger, "PORT", 5000),
		DBPath:        envStr("DB_PATH", "data/students.db"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		CORSOrigin:    envStr("CORS_ORIGIN", "http://localhost:3000"),
		AdminUsername: envStr("ADMIN_USERNAME", "admin"),
		AdminPassword: envStr("ADMIN_PASSWORD", "admin123"),
		SMTP: mail.Config{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     envInt(logger, "SMTP_PORT", 587),
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     os.Getenv("SMTP_FROM"),
		},
	}

	// The token secret has no safe default. Generate one with:
	//   JWT_SECRET=$(openssl rand -hex 32)
	if cfg.JWTSecret == "" {
		logger.Error("JWT_SECRET must be set")
		os.Exit(1)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		logger.Error("failed to create database directory",
			slog.String("dir", filepath.Dir(cfg.DBPath)),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(logger *slog.Logger, key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		logger.Error("invalid integer env value",
			slog.String("key", key),
			slog.String("value", v),
		)
		os.Exit(1)
	}
	return n
}
