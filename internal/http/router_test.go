package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	dataagg "github.com/yungbote/codesheets-backend/internal/data/aggregates"
	"github.com/yungbote/codesheets-backend/internal/data/repos"
	repotest "github.com/yungbote/codesheets-backend/internal/data/repos/testutil"
	types "github.com/yungbote/codesheets-backend/internal/domain"
	apphttp "github.com/yungbote/codesheets-backend/internal/http"
	httpH "github.com/yungbote/codesheets-backend/internal/http/handlers"
	httpMW "github.com/yungbote/codesheets-backend/internal/http/middleware"
	"github.com/yungbote/codesheets-backend/internal/observability"
	"github.com/yungbote/codesheets-backend/internal/services"
)

type harness struct {
	db     *gorm.DB
	engine *gin.Engine
	auth   services.AuthService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := repotest.DB(t)
	log := repotest.Logger(t)
	counters := observability.NewMetrics()

	sheets := repos.NewSheetRepo(db, log)
	problems := repos.NewProblemRepo(db, log)
	hints := repos.NewProblemHintRepo(db, log)
	progress := repos.NewProgressRecordRepo(db, log)
	notes := repos.NewNoteRepo(db, log)

	base := dataagg.BaseDeps{DB: db, Log: log, Hooks: dataagg.NewObservabilityHooks(counters)}
	disclosureAgg := dataagg.NewDisclosureAggregate(dataagg.DisclosureAggregateDeps{
		Base: base, Problems: problems, Hints: hints, Progress: progress,
	})
	catalogAgg := dataagg.NewCatalogAggregate(dataagg.CatalogAggregateDeps{
		Base: base, Sheets: sheets, Problems: problems, Hints: hints, Progress: progress, Notes: notes,
	})

	advisory := services.NewNoopAdvisoryStore()
	auth := services.NewAuthService(log, "router-test-secret", 0)
	metrics := services.NewMetricsService(db, log, sheets, problems, progress)
	catalog := services.NewCatalogService(db, log, sheets, problems, hints, catalogAgg, metrics, advisory, counters)

	engine := apphttp.NewRouter(apphttp.RouterConfig{
		Log:            log,
		Metrics:        counters,
		AuthMiddleware: httpMW.NewAuthMiddleware(log, auth),
		HealthHandler:  httpH.NewHealthHandler(nil),
		SheetHandler: httpH.NewSheetHandler(log, catalog,
			services.NewFeedService(db, log, sheets, problems, progress, notes, services.DefaultFeedMax),
			metrics),
		ProblemHandler: httpH.NewProblemHandler(log,
			services.NewProgressService(db, log, sheets, problems, progress, metrics, advisory, counters),
			services.NewDisclosureService(db, log, sheets, problems, hints, progress, disclosureAgg, counters)),
		NoteHandler:  httpH.NewNoteHandler(log, services.NewNoteService(db, log, sheets, problems, notes)),
		AdminHandler: httpH.NewAdminHandler(log, catalog),
	})
	return &harness{db: db, engine: engine, auth: auth}
}

func (h *harness) token(t *testing.T, role string) string {
	t.Helper()
	tok, err := h.auth.IssueAccessToken(uuid.New(), role)
	require.NoError(t, err)
	return tok
}

func (h *harness) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.engine.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func errorOf(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	body := decode(t, rec)
	e, ok := body["error"].(map[string]any)
	require.True(t, ok, "missing error envelope: %s", rec.Body.String())
	return e
}

func (h *harness) seed(t *testing.T, hintCount int) (*types.Sheet, *types.Problem) {
	t.Helper()
	sheet := repotest.SeedSheet(t, context.Background(), h.db, "router sheet")
	p := repotest.SeedProblem(t, context.Background(), h.db, sheet.ID, 1, types.DifficultyEasy, hintCount)
	return sheet, p
}

func TestHealthcheckAndMetrics(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodGet, "/healthcheck", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec = h.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "api_requests_total")
}

func TestSheetsAllowAnonymousButRejectBadTokens(t *testing.T) {
	h := newHarness(t)
	sheet, _ := h.seed(t, 0)

	rec := h.do(t, http.MethodGet, "/api/sheets", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	sheets := decode(t, rec)["sheets"].([]any)
	require.Len(t, sheets, 1)
	assert.Equal(t, sheet.ID.String(), sheets[0].(map[string]any)["id"])

	rec = h.do(t, http.MethodGet, "/api/sheets", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = h.do(t, http.MethodGet, "/api/sheets/"+uuid.NewString(), "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", errorOf(t, rec)["code"])

	rec = h.do(t, http.MethodGet, "/api/sheets/not-a-uuid", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	h := newHarness(t)
	sheet, p := h.seed(t, 1)

	for _, path := range []string{
		"/api/sheets/" + sheet.ID.String() + "/problems",
		"/api/sheets/" + sheet.ID.String() + "/metrics",
		"/api/problems/" + p.ID.String() + "/hints-solution",
		"/api/problems/" + p.ID.String() + "/notes",
	} {
		rec := h.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
		assert.Equal(t, "unauthorized", errorOf(t, rec)["code"], path)
	}
}

func TestDisclosureFlowOverHTTP(t *testing.T) {
	h := newHarness(t)
	_, p := h.seed(t, 3)
	tok := h.token(t, services.RoleUser)
	base := "/api/problems/" + p.ID.String()

	rec := h.do(t, http.MethodPost, base+"/hints/2/unlock", tok, nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	e := errorOf(t, rec)
	assert.Equal(t, "sequence_violation", e["code"])
	assert.EqualValues(t, 1, e["details"].(map[string]any)["requiredHint"])

	rec = h.do(t, http.MethodPost, base+"/hints/1/unlock", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.EqualValues(t, 1, body["hintNumber"])
	assert.Equal(t, "hint 1", body["content"])

	rec = h.do(t, http.MethodPost, base+"/solution/unlock", tok, nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	e = errorOf(t, rec)
	assert.Equal(t, "prerequisite_not_met", e["code"])
	assert.EqualValues(t, 2, e["details"].(map[string]any)["remainingHints"])

	for n := 2; n <= 3; n++ {
		rec = h.do(t, http.MethodPost, fmt.Sprintf("%s/hints/%d/unlock", base, n), tok, nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec = h.do(t, http.MethodPost, base+"/solution/unlock", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	sol := decode(t, rec)["solution"].(map[string]any)
	assert.Equal(t, "package main", sol["code"].(map[string]any)["go"])
	assert.Equal(t, "explained", sol["explanation"])

	rec = h.do(t, http.MethodGet, base+"/hints-solution", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	state := decode(t, rec)
	assert.EqualValues(t, 3, state["totalHints"])
	assert.Equal(t, true, state["solution"].(map[string]any)["isUnlocked"])

	rec = h.do(t, http.MethodPost, base+"/hints/x/unlock", tok, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = h.do(t, http.MethodPost, base+"/hints/4/unlock", tok, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation", errorOf(t, rec)["code"])
}

func TestCompleteFeedAndMetricsOverHTTP(t *testing.T) {
	h := newHarness(t)
	sheet, p := h.seed(t, 0)
	tok := h.token(t, services.RoleUser)

	rec := h.do(t, http.MethodPost, "/api/problems/"+p.ID.String()+"/complete", tok, map[string]any{})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation", errorOf(t, rec)["code"])

	rec = h.do(t, http.MethodPost, "/api/problems/"+p.ID.String()+"/complete", tok, map[string]any{"completed": true})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, p.ID.String(), body["problemId"])
	assert.Equal(t, true, body["completed"])

	feedPath := "/api/sheets/" + sheet.ID.String() + "/problems"
	rec = h.do(t, http.MethodGet, feedPath, tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	feed := decode(t, rec)
	problems := feed["problems"].([]any)
	require.Len(t, problems, 1)
	assert.Equal(t, true, problems[0].(map[string]any)["completed"])
	pag := feed["pagination"].(map[string]any)
	assert.EqualValues(t, 1, pag["currentPage"])
	assert.EqualValues(t, 1, pag["totalProblems"])

	for _, q := range []string{"?page=0", "?limit=0", "?limit=101", "?page=abc", "?difficulty=extreme"} {
		rec = h.do(t, http.MethodGet, feedPath+q, tok, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}

	rec = h.do(t, http.MethodGet, "/api/sheets/"+sheet.ID.String()+"/metrics", tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	m := decode(t, rec)
	assert.EqualValues(t, 100, m["overall"].(map[string]any)["progressPercentage"])
	easy := m["byDifficulty"].(map[string]any)["easy"].(map[string]any)
	assert.EqualValues(t, 1, easy["completed"])
}

func TestNotesOverHTTP(t *testing.T) {
	h := newHarness(t)
	_, p := h.seed(t, 0)
	tok := h.token(t, services.RoleUser)
	path := "/api/problems/" + p.ID.String() + "/notes"

	rec := h.do(t, http.MethodPut, path, tok, map[string]any{"content": "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do(t, http.MethodPut, path, tok, map[string]any{"content": "two pointers"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = h.do(t, http.MethodGet, path, tok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "two pointers", decode(t, rec)["note"].(map[string]any)["content"])

	rec = h.do(t, http.MethodDelete, path, tok, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = h.do(t, http.MethodDelete, path, tok, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminRoutes(t *testing.T) {
	h := newHarness(t)
	admin := h.token(t, services.RoleAdmin)

	rec := h.do(t, http.MethodPost, "/api/admin/sheets", h.token(t, services.RoleUser), map[string]any{"name": "x"})
	require.Equal(t, http.StatusForbidden, rec.Code)
	rec = h.do(t, http.MethodPost, "/api/admin/sheets", "", map[string]any{"name": "x"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = h.do(t, http.MethodPost, "/api/admin/sheets", admin, map[string]any{"name": "Blind 75", "icon": "list"})
	require.Equal(t, http.StatusCreated, rec.Code)
	sheetID := decode(t, rec)["sheet"].(map[string]any)["id"].(string)

	rec = h.do(t, http.MethodPost, "/api/admin/sheets", admin, map[string]any{"name": "Blind 75"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	problemsPath := "/api/admin/sheets/" + sheetID + "/problems"
	rec = h.do(t, http.MethodPost, problemsPath, admin, map[string]any{
		"title": "Two Sum", "order": 1, "difficulty": "extreme",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	fields := errorOf(t, rec)["details"].(map[string]any)["fields"].(map[string]any)
	assert.Equal(t, "difficulty", fields["Difficulty"])

	rec = h.do(t, http.MethodPost, problemsPath, admin, map[string]any{
		"title": "Two Sum", "order": 0, "difficulty": "easy",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do(t, http.MethodPost, problemsPath, admin, map[string]any{
		"title":      "Two Sum",
		"order":      1,
		"difficulty": "Easy",
		"link":       "https://leetcode.com/problems/two-sum",
		"tags":       []string{"array", "hash"},
		"hints":      []string{"use a map", "single pass"},
		"solution":   map[string]any{"code": map[string]string{"go": "func twoSum() {}"}, "explanation": "hash it"},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	problem := decode(t, rec)["problem"].(map[string]any)
	problemID := problem["id"].(string)
	assert.Len(t, problem["hints"], 2)
	assert.Equal(t, "easy", problem["difficulty"])

	rec = h.do(t, http.MethodGet, "/api/admin/problems/"+problemID, admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hash it", decode(t, rec)["problem"].(map[string]any)["solutionExplanation"])

	rec = h.do(t, http.MethodGet, problemsPath+"?difficulty=easy", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	listed := decode(t, rec)["problems"].([]any)
	require.Len(t, listed, 1)
	assert.Equal(t, problemID, listed[0].(map[string]any)["id"])
	rec = h.do(t, http.MethodGet, problemsPath+"?difficulty=extreme", admin, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = h.do(t, http.MethodGet, problemsPath, h.token(t, services.RoleUser), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = h.do(t, http.MethodGet, "/api/sheets/"+sheetID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode(t, rec)["sheet"].(map[string]any)["totalProblems"])

	rec = h.do(t, http.MethodDelete, "/api/admin/sheets/"+sheetID, admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "deleted"))

	rec = h.do(t, http.MethodGet, "/api/sheets/"+sheetID, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHiddenSheetProblemsReturnNotFound(t *testing.T) {
	h := newHarness(t)
	sheet, p := h.seed(t, 1)
	require.NoError(t, h.db.Model(&types.Sheet{}).Where("id = ?", sheet.ID).Update("is_active", false).Error)
	user := h.token(t, services.RoleUser)
	base := "/api/problems/" + p.ID.String()

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, base + "/hints-solution"},
		{http.MethodPost, base + "/hints/1/unlock"},
		{http.MethodPost, base + "/solution/unlock"},
		{http.MethodGet, base + "/notes"},
	} {
		rec := h.do(t, tc.method, tc.path, user, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code, "%s %s: %s", tc.method, tc.path, rec.Body.String())
	}
	rec := h.do(t, http.MethodPost, base+"/complete", user, map[string]any{"completed": true})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = h.do(t, http.MethodGet, base+"/hints-solution", h.token(t, services.RoleAdmin), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
