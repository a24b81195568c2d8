package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/codesheets-backend/internal/http/response"
	"github.com/yungbote/codesheets-backend/internal/platform/logger"
	"github.com/yungbote/codesheets-backend/internal/services"
)

type SheetHandler struct {
	log     *logger.Logger
	catalog services.CatalogService
	feed    services.FeedService
	metrics services.MetricsService
}

func NewSheetHandler(log *logger.Logger, catalog services.CatalogService, feed services.FeedService, metrics services.MetricsService) *SheetHandler {
	return &SheetHandler{
		log:     log.With("handler", "SheetHandler"),
		catalog: catalog,
		feed:    feed,
		metrics: metrics,
	}
}

// GET /api/sheets
func (h *SheetHandler) ListSheets(c *gin.Context) {
	sheets, err := h.catalog.ListSheets(c.Request.Context())
	if err != nil {
		response.RespondAggregateError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"sheets": sheets})
}

// GET /api/sheets/:sheetId
func (h *SheetHandler) GetSheet(c *gin.Context) {
	sheetID, ok := uuidParam(c, "sheetId")
	if !ok {
		return
	}
	sheet, err := h.catalog.GetSheet(c.Request.Context(), sheetID)
	if err != nil {
		response.RespondAggregateError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"sheet": sheet})
}

type feedQuery struct {
	Page       *int   `form:"page"`
	Limit      *int   `form:"limit"`
	Difficulty string `form:"difficulty" binding:"omitempty,difficulty"`
}

// GET /api/sheets/:sheetId/problems?page=&limit=&difficulty=
func (h *SheetHandler) ListProblems(c *gin.Context) {
	sheetID, ok := uuidParam(c, "sheetId")
	if !ok {
		return
	}
	var q feedQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}
	in := services.FeedQuery{Page: 1, Limit: services.DefaultFeedLimit, Difficulty: q.Difficulty}
	if q.Page != nil {
		in.Page = *q.Page
	}
	if q.Limit != nil {
		in.Limit = *q.Limit
	}
	page, err := h.feed.ListProblems(c.Request.Context(), sheetID, in)
	if err != nil {
		response.RespondAggregateError(c, h.log, err)
		return
	}
	response.RespondOK(c, page)
}

// GET /api/sheets/:sheetId/metrics?difficulty=
func (h *SheetHandler) GetMetrics(c *gin.Context) {
	sheetID, ok := uuidParam(c, "sheetId")
	if !ok {
		return
	}
	m, err := h.metrics.ComputeMetrics(c.Request.Context(), sheetID, c.Query("difficulty"))
	if err != nil {
		response.RespondAggregateError(c, h.log, err)
		return
	}
	response.RespondOK(c, m)
}
