package app

import (
	"context"
	"fmt"
	"net/http"

	"gorm.io/gorm"

	"member-tracker-go/internal/config"
	"member-tracker-go/internal/db"
	"member-tracker-go/internal/jobs"
	"member-tracker-go/internal/transport/httpserver"
	"member-tracker-go/pkg/logger"
)

type App struct {
	cfg        config.Config
	log        logger.Logger
	db         *gorm.DB
	graph      *Graph
	httpServer *http.Server
	scheduler  *jobs.Scheduler
}

// New connects to the database and wires the HTTP server and scheduler.
func New(cfg config.Config, log logger.Logger) (*App, error) {
	log.Info("app: initializing database")
	dbConn, err := db.NewPostgres(cfg.DB, log)
	if err != nil {
		return nil, err
	}

	log.Info("app: wiring services")
	graph, err := NewGraph(cfg, dbConn, log)
	if err != nil {
		closeDB(dbConn)
		return nil, err
	}

	log.Info("app: initializing router")
	router := httpserver.NewRouter(cfg, graph.Handlers, graph.Members, log)

	log.Info("app: initializing http server")
	srv := httpserver.New(cfg, router)

	scheduler := jobs.NewScheduler(log)
	if cfg.Jobs.Enabled {
		if err := jobs.Register(scheduler, graph.Deliverer, cfg.Jobs); err != nil {
			closeDB(dbConn)
			return nil, fmt.Errorf("register jobs: %w", err)
		}
	}

	return &App{
		cfg:        cfg,
		log:        log,
		db:         dbConn,
		graph:      graph,
		httpServer: srv,
		scheduler:  scheduler,
	}, nil
}

func (a *App) HTTPServer() *http.Server {
	return a.httpServer
}

func (a *App) Scheduler() *jobs.Scheduler {
	return a.scheduler
}

func (a *App) Deliverer() *jobs.Deliverer {
	return a.graph.Deliverer
}

// Migrate applies pending schema migrations.
func (a *App) Migrate(ctx context.Context) (int, error) {
	return db.Migrate(a.db.WithContext(ctx), a.log)
}

func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func closeDB(dbConn *gorm.DB) {
	if sqlDB, err := dbConn.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
