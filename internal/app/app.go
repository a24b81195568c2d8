package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yungbote/codesheets-backend/internal/data/db"
	apphttp "github.com/yungbote/codesheets-backend/internal/http"
	httpH "github.com/yungbote/codesheets-backend/internal/http/handlers"
	"github.com/yungbote/codesheets-backend/internal/observability"
	"github.com/yungbote/codesheets-backend/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Router   *gin.Engine
	Cfg      Config
	Repos    Repos
	Services Services
	Clients  Clients
	Metrics  *observability.Metrics

	server        *apphttp.Server
	closeDB       func() error
	shutdownTrace func(context.Context) error
	cancel        context.CancelFunc
}

func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)
	if cfg.LogMode == "production" || cfg.LogMode == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	theDB, closeDB, err := openDB(log, cfg)
	if err != nil {
		log.Sync()
		return nil, err
	}
	if err := db.AutoMigrateAll(theDB); err != nil {
		_ = closeDB()
		log.Sync()
		return nil, fmt.Errorf("automigrate: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	shutdownTrace := observability.InitOTel(ctx, log, cfg.Otel)

	metrics := observability.NewMetrics()
	metrics.RegisterRuntimeCollectors()
	metrics.RegisterDBStats(log, theDB, cfg.DBDriver)

	clients, err := wireClients(ctx, log, cfg, metrics)
	if err != nil {
		cancel()
		_ = closeDB()
		log.Sync()
		return nil, err
	}

	reposet := wireRepos(theDB, log)
	serviceset := wireServices(theDB, log, cfg, reposet, clients, metrics)
	var pinger httpH.Pinger
	if sqlDB, err := theDB.DB(); err == nil {
		pinger = sqlDB
	}
	handlerset := wireHandlers(log, serviceset, pinger)
	middleware := wireMiddleware(log, serviceset)
	router := wireRouter(log, cfg, metrics, handlerset, middleware)

	return &App{
		Log:           log,
		DB:            theDB,
		Router:        router,
		Cfg:           cfg,
		Repos:         reposet,
		Services:      serviceset,
		Clients:       clients,
		Metrics:       metrics,
		server:        &apphttp.Server{Engine: router},
		closeDB:       closeDB,
		shutdownTrace: shutdownTrace,
		cancel:        cancel,
	}, nil
}

func openDB(log *logger.Logger, cfg Config) (*gorm.DB, func() error, error) {
	switch cfg.DBDriver {
	case DriverSQLite:
		svc, err := db.NewSQLiteService(log, cfg.SQLitePath, false)
		if err != nil {
			return nil, nil, fmt.Errorf("init sqlite: %w", err)
		}
		return svc.DB(), svc.Close, nil
	case DriverPostgres:
		pg, err := db.NewPostgresService(log, cfg.Postgres)
		if err != nil {
			return nil, nil, fmt.Errorf("init postgres: %w", err)
		}
		return pg.DB(), func() error {
			sqlDB, err := pg.DB().DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.server == nil {
		return errors.New("app not initialized")
	}
	addr := ":" + a.Cfg.Port
	errCh := make(chan error, 1)
	go func() {
		a.Log.Info("HTTP server listening", "addr", addr)
		errCh <- a.server.Run(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	a.Log.Info("Shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return <-errCh
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.Clients.Close()
	if a.shutdownTrace != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.shutdownTrace(ctx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
		cancel()
	}
	if a.closeDB != nil {
		if err := a.closeDB(); err != nil {
			a.Log.Warn("db close failed", "error", err)
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
