package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/codesheets-backend/internal/http/response"
	"github.com/yungbote/codesheets-backend/internal/platform/logger"
	"github.com/yungbote/codesheets-backend/internal/services"
)

type NoteHandler struct {
	log   *logger.Logger
	notes services.NoteService
}

func NewNoteHandler(log *logger.Logger, notes services.NoteService) *NoteHandler {
	return &NoteHandler{log: log.With("handler", "NoteHandler"), notes: notes}
}

type noteRequest struct {
	Content string `json:"content" binding:"required"`
}

// GET /api/problems/:problemId/notes
func (h *NoteHandler) GetNote(c *gin.Context) {
	problemID, ok := uuidParam(c, "problemId")
	if !ok {
		return
	}
	n, err := h.notes.GetNote(c.Request.Context(), problemID)
	if err != nil {
		response.RespondAggregateError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"note": n})
}

// PUT /api/problems/:problemId/notes
func (h *NoteHandler) SaveNote(c *gin.Context) {
	problemID, ok := uuidParam(c, "problemId")
	if !ok {
		return
	}
	var req noteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	n, err := h.notes.SaveNote(c.Request.Context(), problemID, req.Content)
	if err != nil {
		response.RespondAggregateError(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"note": n})
}

// DELETE /api/problems/:problemId/notes
func (h *NoteHandler) DeleteNote(c *gin.Context) {
	problemID, ok := uuidParam(c, "problemId")
	if !ok {
		return
	}
	if err := h.notes.DeleteNote(c.Request.Context(), problemID); err != nil {
		response.RespondAggregateError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}
