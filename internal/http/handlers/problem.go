package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/codesheets-backend/internal/http/response"
	"github.com/yungbote/codesheets-backend/internal/platform/logger"
	"github.com/yungbote/codesheets-backend/internal/services"
)

type ProblemHandler struct {
	log        *logger.Logger
	progress   services.ProgressService
	disclosure services.DisclosureService
}

func NewProblemHandler(log *logger.Logger, progress services.ProgressService, disclosure services.DisclosureService) *ProblemHandler {
	return &ProblemHandler{
		log:        log.With("handler", "ProblemHandler"),
		progress:   progress,
		disclosure: disclosure,
	}
}

type completeRequest struct {
	Completed *bool `json:"completed" binding:"required"`
}

// POST /api/problems/:problemId/complete
func (h *ProblemHandler) ToggleComplete(c *gin.Context) {
	problemID, ok := uuidParam(c, "problemId")
	if !ok {
		return
	}
	var req completeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	res, err := h.progress.ToggleComplete(c.Request.Context(), problemID, *req.Completed)
	if err != nil {
		response.RespondAggregateError(c, h.log, err)
		return
	}
	response.RespondOK(c, res)
}

// GET /api/problems/:problemId/hints-solution
func (h *ProblemHandler) GetDisclosure(c *gin.Context) {
	problemID, ok := uuidParam(c, "problemId")
	if !ok {
		return
	}
	st, err := h.disclosure.GetDisclosureState(c.Request.Context(), problemID)
	if err != nil {
		response.RespondAggregateError(c, h.log, err)
		return
	}
	response.RespondOK(c, st)
}

// POST /api/problems/:problemId/hints/:hintNumber/unlock
func (h *ProblemHandler) UnlockHint(c *gin.Context) {
	problemID, ok := uuidParam(c, "problemId")
	if !ok {
		return
	}
	n, err := strconv.Atoi(c.Param("hintNumber"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "validation", err)
		return
	}
	res, err := h.disclosure.UnlockHint(c.Request.Context(), problemID, n)
	if err != nil {
		response.RespondAggregateError(c, h.log, err)
		return
	}
	response.RespondOK(c, res)
}

// POST /api/problems/:problemId/solution/unlock
func (h *ProblemHandler) UnlockSolution(c *gin.Context) {
	problemID, ok := uuidParam(c, "problemId")
	if !ok {
		return
	}
	sol, err := h.disclosure.UnlockSolution(c.Request.Context(), problemID)
	if err != nil {
		response.RespondAggregateError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"solution": sol})
}
