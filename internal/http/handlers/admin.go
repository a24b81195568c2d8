package handlers

import (
	"github.com/gin-gonic/gin"

	domainagg "github.com/yungbote/codesheets-backend/internal/domain/aggregates"
	"github.com/yungbote/codesheets-backend/internal/http/response"
	"github.com/yungbote/codesheets-backend/internal/platform/logger"
	"github.com/yungbote/codesheets-backend/internal/services"
)

type AdminHandler struct {
	log     *logger.Logger
	catalog services.CatalogService
}

func NewAdminHandler(log *logger.Logger, catalog services.CatalogService) *AdminHandler {
	return &AdminHandler{log: log.With("handler", "AdminHandler"), catalog: catalog}
}

type sheetRequest struct {
	Name        string `json:"name" binding:"required,max=200"`
	Description string `json:"description" binding:"max=5000"`
	Icon        string `json:"icon" binding:"max=100"`
	IsActive    *bool  `json:"isActive"`
}

func (r sheetRequest) input() services.SheetInput {
	return services.SheetInput{
		Name:        r.Name,
		Description: r.Description,
		Icon:        r.Icon,
		IsActive:    r.IsActive,
	}
}

type solutionRequest struct {
	Code        map[string]string `json:"code"`
	Explanation string            `json:"explanation"`
}

type problemRequest struct {
	Title      string          `json:"title" binding:"required,max=300"`
	Order      int             `json:"order" binding:"required,min=1"`
	Difficulty string          `json:"difficulty" binding:"required,difficulty"`
	Platform   string          `json:"platform" binding:"max=100"`
	Link       string          `json:"link" binding:"omitempty,url"`
	Tags       []string        `json:"tags" binding:"omitempty,dive,required"`
	Hints      *[]string       `json:"hints" binding:"omitempty,dive,required"`
	Solution   solutionRequest `json:"solution"`
}

func (r problemRequest) input() services.ProblemInput {
	return services.ProblemInput{
		Fields: domainagg.ProblemFields{
			Title:               r.Title,
			Order:               r.Order,
			Difficulty:          r.Difficulty,
			Platform:            r.Platform,
			Link:                r.Link,
			Tags:                r.Tags,
			SolutionCode:        r.Solution.Code,
			SolutionExplanation: r.Solution.Explanation,
		},
		Hints: r.Hints,
	}
}

// POST /api/admin/sheets
func (h *AdminHandler) CreateSheet(c *gin.Context) {
	var req sheetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	sheet, err := h.catalog.CreateSheet(c.Request.Context(), req.input())
	if err != nil {
		response.RespondAggregateError(c, h.log, err)
		return
	}
	response.RespondCreated(c, gin.H{"sheet": sheet})
}

// PUT /api/admin/sheets/:sheetId
func (h *AdminHandler) UpdateSheet(c *gin.Context) {
	sheetID, ok := uuidParam(c, "sheetId")
	if !ok {
		return
	}
	var req sheetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	sheet, err := h.catalog.UpdateSheet(c.Request.Context(), sheetID, req.input())
	if err != nil {
		response.RespondAggregateError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"sheet": sheet})
}

// DELETE /api/admin/sheets/:sheetId
func (h *AdminHandler) DeleteSheet(c *gin.Context) {
	sheetID, ok := uuidParam(c, "sheetId")
	if !ok {
		return
	}
	res, err := h.catalog.DeleteSheet(c.Request.Context(), sheetID)
	if err != nil {
		response.RespondAggregateError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"deleted": res})
}

// POST /api/admin/sheets/:sheetId/problems
func (h *AdminHandler) CreateProblem(c *gin.Context) {
	sheetID, ok := uuidParam(c, "sheetId")
	if !ok {
		return
	}
	var req problemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	p, err := h.catalog.CreateProblem(c.Request.Context(), sheetID, req.input())
	if err != nil {
		response.RespondAggregateError(c, h.log, err)
		return
	}
	response.RespondCreated(c, gin.H{"problem": p})
}

type adminProblemsQuery struct {
	Difficulty string `form:"difficulty" binding:"omitempty,difficulty"`
}

// GET /api/admin/sheets/:sheetId/problems?difficulty=
func (h *AdminHandler) ListProblems(c *gin.Context) {
	sheetID, ok := uuidParam(c, "sheetId")
	if !ok {
		return
	}
	var q adminProblemsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}
	problems, err := h.catalog.ListProblems(c.Request.Context(), sheetID, q.Difficulty)
	if err != nil {
		response.RespondAggregateError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"problems": problems})
}

// GET /api/admin/problems/:problemId
func (h *AdminHandler) GetProblem(c *gin.Context) {
	problemID, ok := uuidParam(c, "problemId")
	if !ok {
		return
	}
	p, err := h.catalog.GetProblem(c.Request.Context(), problemID)
	if err != nil {
		response.RespondAggregateError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"problem": p})
}

// PUT /api/admin/problems/:problemId
func (h *AdminHandler) UpdateProblem(c *gin.Context) {
	problemID, ok := uuidParam(c, "problemId")
	if !ok {
		return
	}
	var req problemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	p, err := h.catalog.UpdateProblem(c.Request.Context(), problemID, req.input())
	if err != nil {
		response.RespondAggregateError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"problem": p})
}

// DELETE /api/admin/problems/:problemId
func (h *AdminHandler) DeleteProblem(c *gin.Context) {
	problemID, ok := uuidParam(c, "problemId")
	if !ok {
		return
	}
	res, err := h.catalog.DeleteProblem(c.Request.Context(), problemID)
	if err != nil {
		response.RespondAggregateError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"deleted": res})
}
