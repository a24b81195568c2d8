package http

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/codesheets-backend/internal/http/handlers"
	httpMW "github.com/yungbote/codesheets-backend/internal/http/middleware"
	"github.com/yungbote/codesheets-backend/internal/observability"
	"github.com/yungbote/codesheets-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	Metrics        *observability.Metrics
	ServiceName    string
	AllowedOrigins []string

	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler  *httpH.HealthHandler
	SheetHandler   *httpH.SheetHandler
	ProblemHandler *httpH.ProblemHandler
	NoteHandler    *httpH.NoteHandler
	AdminHandler   *httpH.AdminHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	if err := httpH.RegisterValidators(); err != nil {
		if cfg.Log != nil {
			cfg.Log.Error("Validator registration failed", "error", err)
		}
		panic(fmt.Sprintf("register validators: %v", err))
	}

	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	if cfg.Log != nil {
		r.Use(httpMW.RequestLogger(cfg.Log))
	}
	if cfg.Metrics != nil {
		r.Use(httpMW.Metrics(cfg.Metrics, "/metrics"))
	}
	r.Use(httpMW.CORS(cfg.AllowedOrigins...))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api")

	// Sheets (anonymous callers see the catalog without progress)
	optional := api.Group("/")
	if cfg.AuthMiddleware != nil {
		optional.Use(cfg.AuthMiddleware.OptionalAuth())
	}
	if cfg.SheetHandler != nil {
		optional.GET("/sheets", cfg.SheetHandler.ListSheets)
		optional.GET("/sheets/:sheetId", cfg.SheetHandler.GetSheet)
	}

	protected := api.Group("/")
	if cfg.AuthMiddleware != nil {
		protected.Use(cfg.AuthMiddleware.RequireAuth())
	}
	{
		if cfg.SheetHandler != nil {
			protected.GET("/sheets/:sheetId/problems", cfg.SheetHandler.ListProblems)
			protected.GET("/sheets/:sheetId/metrics", cfg.SheetHandler.GetMetrics)
		}

		// Progress + disclosure
		if cfg.ProblemHandler != nil {
			protected.POST("/problems/:problemId/complete", cfg.ProblemHandler.ToggleComplete)
			protected.GET("/problems/:problemId/hints-solution", cfg.ProblemHandler.GetDisclosure)
			protected.POST("/problems/:problemId/hints/:hintNumber/unlock", cfg.ProblemHandler.UnlockHint)
			protected.POST("/problems/:problemId/solution/unlock", cfg.ProblemHandler.UnlockSolution)
		}

		// Notes
		if cfg.NoteHandler != nil {
			protected.GET("/problems/:problemId/notes", cfg.NoteHandler.GetNote)
			protected.PUT("/problems/:problemId/notes", cfg.NoteHandler.SaveNote)
			protected.DELETE("/problems/:problemId/notes", cfg.NoteHandler.DeleteNote)
		}
	}

	// Admin
	admin := api.Group("/admin")
	if cfg.AuthMiddleware != nil {
		admin.Use(cfg.AuthMiddleware.RequireAuth(), cfg.AuthMiddleware.RequireAdmin())
	}
	if cfg.AdminHandler != nil {
		admin.POST("/sheets", cfg.AdminHandler.CreateSheet)
		admin.PUT("/sheets/:sheetId", cfg.AdminHandler.UpdateSheet)
		admin.DELETE("/sheets/:sheetId", cfg.AdminHandler.DeleteSheet)
		admin.GET("/sheets/:sheetId/problems", cfg.AdminHandler.ListProblems)
		admin.POST("/sheets/:sheetId/problems", cfg.AdminHandler.CreateProblem)
		admin.GET("/problems/:problemId", cfg.AdminHandler.GetProblem)
		admin.PUT("/problems/:problemId", cfg.AdminHandler.UpdateProblem)
		admin.DELETE("/problems/:problemId", cfg.AdminHandler.DeleteProblem)
	}

	return r
}
