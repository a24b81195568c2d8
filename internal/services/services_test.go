package services

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dataagg "github.com/yungbote/codesheets-backend/internal/data/aggregates"
	"github.com/yungbote/codesheets-backend/internal/data/repos"
	repotest "github.com/yungbote/codesheets-backend/internal/data/repos/testutil"
	types "github.com/yungbote/codesheets-backend/internal/domain"
	"github.com/yungbote/codesheets-backend/internal/observability"
	"github.com/yungbote/codesheets-backend/internal/platform/ctxutil"
)

type fixture struct {
	db       *gorm.DB
	counters *observability.Metrics
	advisory *memoryAdvisory

	sheets   repos.SheetRepo
	problems repos.ProblemRepo
	hints    repos.ProblemHintRepo
	progress repos.ProgressRecordRepo
	notes    repos.NoteRepo

	metrics    MetricsService
	progressSv ProgressService
	disclosure DisclosureService
	feed       FeedService
	catalog    CatalogService
	noteSv     NoteService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := repotest.DB(t)
	log := repotest.Logger(t)
	f := &fixture{
		db:       db,
		counters: observability.NewMetrics(),
		advisory: newMemoryAdvisory(),
		sheets:   repos.NewSheetRepo(db, log),
		problems: repos.NewProblemRepo(db, log),
		hints:    repos.NewProblemHintRepo(db, log),
		progress: repos.NewProgressRecordRepo(db, log),
		notes:    repos.NewNoteRepo(db, log),
	}
	base := dataagg.BaseDeps{DB: db, Log: log, Hooks: dataagg.NewObservabilityHooks(f.counters)}
	disclosureAgg := dataagg.NewDisclosureAggregate(dataagg.DisclosureAggregateDeps{
		Base:     base,
		Problems: f.problems,
		Hints:    f.hints,
		Progress: f.progress,
	})
	catalogAgg := dataagg.NewCatalogAggregate(dataagg.CatalogAggregateDeps{
		Base:     base,
		Sheets:   f.sheets,
		Problems: f.problems,
		Hints:    f.hints,
		Progress: f.progress,
		Notes:    f.notes,
	})
	f.metrics = NewMetricsService(db, log, f.sheets, f.problems, f.progress)
	f.progressSv = NewProgressService(db, log, f.sheets, f.problems, f.progress, f.metrics, f.advisory, f.counters)
	f.disclosure = NewDisclosureService(db, log, f.sheets, f.problems, f.hints, f.progress, disclosureAgg, f.counters)
	f.feed = NewFeedService(db, log, f.sheets, f.problems, f.progress, f.notes, DefaultFeedMax)
	f.catalog = NewCatalogService(db, log, f.sheets, f.problems, f.hints, catalogAgg, f.metrics, f.advisory, f.counters)
	f.noteSv = NewNoteService(db, log, f.sheets, f.problems, f.notes)
	return f
}

func userCtx(userID uuid.UUID) context.Context {
	return ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{UserID: userID, Role: RoleUser})
}

func adminCtx() context.Context {
	return ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{UserID: uuid.New(), Role: RoleAdmin})
}

func (f *fixture) seedSheet(t *testing.T, name string) *types.Sheet {
	return repotest.SeedSheet(t, context.Background(), f.db, name)
}

func (f *fixture) seedProblem(t *testing.T, sheetID uuid.UUID, order int, d types.Difficulty, hints int) *types.Problem {
	return repotest.SeedProblem(t, context.Background(), f.db, sheetID, order, d, hints)
}

type advisoryKey struct{ sheet, user uuid.UUID }

type memoryAdvisory struct {
	mu   sync.Mutex
	data map[advisoryKey]types.AdvisoryProgress
	puts int
}

func newMemoryAdvisory() *memoryAdvisory {
	return &memoryAdvisory{data: map[advisoryKey]types.AdvisoryProgress{}}
}

func (m *memoryAdvisory) Get(_ context.Context, sheetID, userID uuid.UUID) (*types.AdvisoryProgress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.data[advisoryKey{sheetID, userID}]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *memoryAdvisory) Put(_ context.Context, sheetID, userID uuid.UUID, p types.AdvisoryProgress) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[advisoryKey{sheetID, userID}] = p
	m.puts++
	return nil
}

func (m *memoryAdvisory) InvalidateSheet(_ context.Context, sheetID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.data {
		if k.sheet == sheetID {
			delete(m.data, k)
		}
	}
	return nil
}
