package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ormawa-api/internal/dto"
	"github.com/noah-isme/ormawa-api/internal/models"
	"github.com/noah-isme/ormawa-api/pkg/response"
)

type taskService interface {
	ListByWorkItem(ctx context.Context, workItemID int64, actor *models.JWTClaims) ([]models.Task, error)
	Add(ctx context.Context, workItemID int64, req dto.AddTaskRequest, actor *models.JWTClaims) (*models.Task, error)
	Toggle(ctx context.Context, taskID int64, actor *models.JWTClaims) (*models.Task, error)
	Delete(ctx context.Context, taskID int64, actor *models.JWTClaims) error
}

// TaskHandler exposes work item checklists.
type TaskHandler struct {
	service taskService
}

// NewTaskHandler builds a new handler.
func NewTaskHandler(service taskService) *TaskHandler {
	return &TaskHandler{service: service}
}

// List godoc
// @Summary List tasks of a work item
// @Tags Tasks
// @Produce json
// @Param id path int true "Work item ID"
// @Success 200 {object} response.Envelope
// @Router /work-items/{id}/tasks [get]
func (h *TaskHandler) List(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	tasks, err := h.service.ListByWorkItem(c.Request.Context(), id, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tasks, nil)
}

// Add godoc
// @Summary Add a task
// @Tags Tasks
// @Accept json
// @Produce json
// @Param id path int true "Work item ID"
// @Param payload body dto.AddTaskRequest true "Task payload"
// @Success 201 {object} response.Envelope
// @Router /work-items/{id}/tasks [post]
func (h *TaskHandler) Add(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.AddTaskRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	task, err := h.service.Add(c.Request.Context(), id, req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, task)
}

// Toggle godoc
// @Summary Flip a task between done and open
// @Tags Tasks
// @Produce json
// @Param id path int true "Task ID"
// @Success 200 {object} response.Envelope
// @Router /tasks/{id}/toggle [patch]
func (h *TaskHandler) Toggle(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	task, err := h.service.Toggle(c.Request.Context(), id, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, task, nil)
}

// Delete godoc
// @Summary Delete a program task
// @Tags Tasks
// @Param id path int true "Task ID"
// @Success 204
// @Router /tasks/{id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.Delete(c.Request.Context(), id, claimsFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
