package app

import (
	"gorm.io/gorm"

	dataagg "github.com/yungbote/codesheets-backend/internal/data/aggregates"
	"github.com/yungbote/codesheets-backend/internal/observability"
	"github.com/yungbote/codesheets-backend/internal/platform/logger"
	"github.com/yungbote/codesheets-backend/internal/services"
)

type Services struct {
	Auth       services.AuthService
	Catalog    services.CatalogService
	Metrics    services.MetricsService
	Progress   services.ProgressService
	Disclosure services.DisclosureService
	Feed       services.FeedService
	Notes      services.NoteService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos, c Clients, metrics *observability.Metrics) Services {
	log.Info("Wiring services...")
	base := dataagg.BaseDeps{
		DB:    db,
		Log:   log,
		Hooks: dataagg.ChainHooks(dataagg.NewObservabilityHooks(metrics), dataagg.NewLogHooks(log)),
	}
	disclosureAgg := dataagg.NewDisclosureAggregate(dataagg.DisclosureAggregateDeps{
		Base:     base,
		Problems: r.Problem,
		Hints:    r.Hint,
		Progress: r.Progress,
	})
	catalogAgg := dataagg.NewCatalogAggregate(dataagg.CatalogAggregateDeps{
		Base:     base,
		Sheets:   r.Sheet,
		Problems: r.Problem,
		Hints:    r.Hint,
		Progress: r.Progress,
		Notes:    r.Note,
	})

	metricsSvc := services.NewMetricsService(db, log, r.Sheet, r.Problem, r.Progress)
	return Services{
		Auth:       services.NewAuthService(log, cfg.JWTSecretKey, cfg.AccessTokenTTL),
		Catalog:    services.NewCatalogService(db, log, r.Sheet, r.Problem, r.Hint, catalogAgg, metricsSvc, c.Advisory, metrics),
		Metrics:    metricsSvc,
		Progress:   services.NewProgressService(db, log, r.Sheet, r.Problem, r.Progress, metricsSvc, c.Advisory, metrics),
		Disclosure: services.NewDisclosureService(db, log, r.Sheet, r.Problem, r.Hint, r.Progress, disclosureAgg, metrics),
		Feed:       services.NewFeedService(db, log, r.Sheet, r.Problem, r.Progress, r.Note, cfg.FeedMaxLimit),
		Notes:      services.NewNoteService(db, log, r.Sheet, r.Problem, r.Note),
	}
}
