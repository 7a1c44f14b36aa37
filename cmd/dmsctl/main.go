package main

import (
	"errors"
	"fmt"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"go.uber.org/zap"

	"dmsreport/internal/cache"
	"dmsreport/internal/config"
	"dmsreport/internal/database"
	"dmsreport/internal/loader"
	"dmsreport/internal/logger"
	"dmsreport/internal/repository/sqlstore"
	"dmsreport/internal/service"
)

// Exit codes
const (
	exitFailure     = 1
	exitUnavailable = 2
)

func main() {
	root := newRootCmd(openService, os.Stdout)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	if errors.Is(err, loader.ErrUnavailable) {
		return exitUnavailable
	}
	return exitFailure
}

// openService wires the analytics service from the environment. The returned
// func releases the database pool and flushes the logger.
func openService() (service.AnalyticsService, *config.AppConfig, func(), error) {
	cfg := config.Load()
	// Artifacts may be piped from stdout
	cfg.Log.Output = "stderr"

	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init logger: %w", err)
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		_ = log.Sync()
		return nil, nil, nil, fmt.Errorf("%w: %w", loader.ErrUnavailable, err)
	}

	store, err := cache.New(cfg.Cache)
	if err != nil {
		log.Warn("cache_disabled", zap.Error(err))
		store = nil
	}

	ld := loader.New(sqlstore.NewTableSQL(db), store, log, nil)
	svc := service.NewAnalyticsService(ld, cfg.Report, log, nil)

	closer := func() {
		_ = db.Close()
		_ = log.Sync()
	}
	return svc, cfg, closer, nil
}
