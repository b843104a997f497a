package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukerupert/chorewheel/internal/config"
	"github.com/dukerupert/chorewheel/internal/database"
	"github.com/dukerupert/chorewheel/internal/logging"
	"github.com/dukerupert/chorewheel/internal/rotation"
	"github.com/dukerupert/chorewheel/internal/store"
)

// app is what every subcommand needs: settings, a logger, the database and
// the rotation service on top of it.
type app struct {
	cfg    config.Config
	loc    *time.Location
	logger *slog.Logger
	db     *sql.DB
	svc    *rotation.Service
}

func openApp() (*app, error) {
	cfg, err := config.Load(configPath, envPath)
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	logger := logging.Setup(cfg.Log.Level, cfg.Log.Format)

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	svc := rotation.NewService(store.New(db), logger.With("component", "rotation"), rotation.WithLocation(loc))
	return &app{cfg: cfg, loc: loc, logger: logger, db: db, svc: svc}, nil
}

func (a *app) Close() error {
	return a.db.Close()
}
