package app

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/codesheets-backend/internal/http"
	httpH "github.com/yungbote/codesheets-backend/internal/http/handlers"
	httpMW "github.com/yungbote/codesheets-backend/internal/http/middleware"
	"github.com/yungbote/codesheets-backend/internal/observability"
	"github.com/yungbote/codesheets-backend/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health  *httpH.HealthHandler
	Sheet   *httpH.SheetHandler
	Problem *httpH.ProblemHandler
	Note    *httpH.NoteHandler
	Admin   *httpH.AdminHandler
}

func wireHandlers(log *logger.Logger, services Services, db httpH.Pinger) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:  httpH.NewHealthHandler(db),
		Sheet:   httpH.NewSheetHandler(log, services.Catalog, services.Feed, services.Metrics),
		Problem: httpH.NewProblemHandler(log, services.Progress, services.Disclosure),
		Note:    httpH.NewNoteHandler(log, services.Notes),
		Admin:   httpH.NewAdminHandler(log, services.Catalog),
	}
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Auth),
	}
}

func wireRouter(log *logger.Logger, cfg Config, metrics *observability.Metrics, handlers Handlers, middleware Middleware) *gin.Engine {
	rc := http.RouterConfig{
		Log:            log,
		AllowedOrigins: cfg.AllowedOrigins,
		AuthMiddleware: middleware.Auth,
		HealthHandler:  handlers.Health,
		SheetHandler:   handlers.Sheet,
		ProblemHandler: handlers.Problem,
		NoteHandler:    handlers.Note,
		AdminHandler:   handlers.Admin,
	}
	if cfg.MetricsEnabled {
		rc.Metrics = metrics
	}
	if cfg.Otel.Enabled {
		rc.ServiceName = cfg.Otel.ServiceName
	}
	return http.NewRouter(rc)
}
