package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ormawa-api/internal/dto"
	"github.com/noah-isme/ormawa-api/internal/models"
	"github.com/noah-isme/ormawa-api/pkg/response"
)

type activityLogService interface {
	Append(ctx context.Context, workItemID int64, notes string, actor *models.JWTClaims) (*models.ActivityLog, error)
	List(ctx context.Context, workItemID int64, actor *models.JWTClaims) ([]models.ActivityLog, error)
}

// ActivityLogHandler exposes the append-only work item journal.
type ActivityLogHandler struct {
	service activityLogService
}

// NewActivityLogHandler builds a new handler.
func NewActivityLogHandler(service activityLogService) *ActivityLogHandler {
	return &ActivityLogHandler{service: service}
}

// List godoc
// @Summary List activity logs, newest first
// @Tags ActivityLogs
// @Produce json
// @Param id path int true "Work item ID"
// @Success 200 {object} response.Envelope
// @Router /work-items/{id}/logs [get]
func (h *ActivityLogHandler) List(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	logs, err := h.service.List(c.Request.Context(), id, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, logs, nil)
}

// Append godoc
// @Summary Write a manual activity note
// @Tags ActivityLogs
// @Accept json
// @Produce json
// @Param id path int true "Work item ID"
// @Param payload body dto.AppendLogRequest true "Note"
// @Success 201 {object} response.Envelope
// @Router /work-items/{id}/logs [post]
func (h *ActivityLogHandler) Append(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.AppendLogRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	entry, err := h.service.Append(c.Request.Context(), id, req.Notes, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, entry)
}
