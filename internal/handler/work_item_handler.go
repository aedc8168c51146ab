package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ormawa-api/internal/dto"
	"github.com/noah-isme/ormawa-api/internal/models"
	"github.com/noah-isme/ormawa-api/internal/service"
	appErrors "github.com/noah-isme/ormawa-api/pkg/errors"
	"github.com/noah-isme/ormawa-api/pkg/export"
	"github.com/noah-isme/ormawa-api/pkg/response"
)

type workItemService interface {
	Create(ctx context.Context, req dto.CreateWorkItemRequest, actor *models.JWTClaims) (*models.WorkItem, error)
	Get(ctx context.Context, id int64, actor *models.JWTClaims) (*models.WorkItemDetail, error)
	List(ctx context.Context, filter models.WorkItemFilter, actor *models.JWTClaims) ([]models.WorkItemSummary, *models.Pagination, error)
	Update(ctx context.Context, id int64, req dto.UpdateWorkItemRequest, actor *models.JWTClaims) (*models.WorkItem, error)
	SetStatus(ctx context.Context, id int64, status models.WorkStatus, expectedVersion *int, actor *models.JWTClaims) (*models.WorkItem, error)
	Move(ctx context.Context, kind models.WorkKind, req dto.MoveCardRequest, actor *models.JWTClaims) (*dto.MoveCardResponse, error)
	Board(ctx context.Context, kind models.WorkKind, filter models.WorkItemFilter, actor *models.JWTClaims) (*dto.BoardResponse, error)
	Delete(ctx context.Context, id int64, actor *models.JWTClaims) error
	Export(ctx context.Context, kind models.WorkKind, format export.Format, filter models.WorkItemFilter, actor *models.JWTClaims) (*service.ExportFile, error)
}

// WorkItemHandler exposes programs, prokers and their board.
type WorkItemHandler struct {
	service workItemService
}

// NewWorkItemHandler builds a new handler.
func NewWorkItemHandler(service workItemService) *WorkItemHandler {
	return &WorkItemHandler{service: service}
}

// List godoc
// @Summary List programs or prokers
// @Tags WorkItems
// @Produce json
// @Param kind query string false "program | proker"
// @Param status query string false "Status column"
// @Param divisionId query int false "Division"
// @Param from query string false "Start date lower bound (YYYY-MM-DD)"
// @Param to query string false "Start date upper bound (YYYY-MM-DD)"
// @Param q query string false "Title search"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /work-items [get]
func (h *WorkItemHandler) List(c *gin.Context) {
	filter, err := workItemFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	items, pagination, err := h.service.List(c.Request.Context(), filter, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Create godoc
// @Summary Create a program or proker
// @Tags WorkItems
// @Accept json
// @Produce json
// @Param payload body dto.CreateWorkItemRequest true "Work item payload"
// @Success 201 {object} response.Envelope
// @Router /work-items [post]
func (h *WorkItemHandler) Create(c *gin.Context) {
	var req dto.CreateWorkItemRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	item, err := h.service.Create(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// Get godoc
// @Summary Get a work item with tasks, logs and participants
// @Tags WorkItems
// @Produce json
// @Param id path int true "Work item ID"
// @Success 200 {object} response.Envelope
// @Router /work-items/{id} [get]
func (h *WorkItemHandler) Get(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	item, err := h.service.Get(c.Request.Context(), id, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Update godoc
// @Summary Update work item fields
// @Tags WorkItems
// @Accept json
// @Produce json
// @Param id path int true "Work item ID"
// @Param payload body dto.UpdateWorkItemRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Router /work-items/{id} [patch]
func (h *WorkItemHandler) Update(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.UpdateWorkItemRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	item, err := h.service.Update(c.Request.Context(), id, req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// SetStatus godoc
// @Summary Move a work item to another status
// @Tags WorkItems
// @Accept json
// @Produce json
// @Param id path int true "Work item ID"
// @Param payload body dto.SetWorkItemStatusRequest true "Target status"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /work-items/{id}/status [patch]
func (h *WorkItemHandler) SetStatus(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.SetWorkItemStatusRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	item, err := h.service.SetStatus(c.Request.Context(), id, req.Status, req.ExpectedVersion, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Delete godoc
// @Summary Delete a program
// @Tags WorkItems
// @Param id path int true "Work item ID"
// @Success 204
// @Router /work-items/{id} [delete]
func (h *WorkItemHandler) Delete(c *gin.Context) {
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

// Board godoc
// @Summary Kanban board for one kind
// @Tags Boards
// @Produce json
// @Param kind path string true "program | proker"
// @Success 200 {object} response.Envelope
// @Router /boards/{kind} [get]
func (h *WorkItemHandler) Board(c *gin.Context) {
	kind, err := kindParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	filter, err := workItemFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	board, err := h.service.Board(c.Request.Context(), kind, filter, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, board, nil)
}

// Move godoc
// @Summary Drag a card to another column
// @Description A failed write is rolled back and reported with rolledBack=true.
// @Tags Boards
// @Accept json
// @Produce json
// @Param kind path string true "program | proker"
// @Param payload body dto.MoveCardRequest true "Card move"
// @Success 200 {object} response.Envelope
// @Router /boards/{kind}/move [post]
func (h *WorkItemHandler) Move(c *gin.Context) {
	kind, err := kindParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.MoveCardRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.service.Move(c.Request.Context(), kind, req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Export godoc
// @Summary Download a work item report
// @Tags Reports
// @Produce text/csv
// @Produce application/pdf
// @Param kind query string true "program | proker"
// @Param format query string false "csv | pdf"
// @Success 200 {file} file
// @Router /reports/work-items [get]
func (h *WorkItemHandler) Export(c *gin.Context) {
	filter, err := workItemFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	format, err := export.ParseFormat(c.DefaultQuery("format", string(export.FormatCSV)))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format tidak didukung"))
		return
	}
	file, err := h.service.Export(c.Request.Context(), filter.Kind, format, filter, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Download(c, file.Filename, file.ContentType, file.Body)
}

func kindParam(c *gin.Context) (models.WorkKind, error) {
	kind := models.WorkKind(c.Param("kind"))
	if !kind.Valid() {
		return "", appErrors.Clone(appErrors.ErrValidation, "jenis tidak valid")
	}
	return kind, nil
}

func workItemFilter(c *gin.Context) (models.WorkItemFilter, error) {
	var q dto.WorkItemQuery
	if err := bindQuery(c, &q); err != nil {
		return models.WorkItemFilter{}, err
	}
	from, err := dto.ParseDate(q.From)
	if err != nil {
		return models.WorkItemFilter{}, appErrors.Clone(appErrors.ErrValidation, "tanggal tidak valid")
	}
	to, err := dto.ParseDate(q.To)
	if err != nil {
		return models.WorkItemFilter{}, appErrors.Clone(appErrors.ErrValidation, "tanggal tidak valid")
	}
	return models.WorkItemFilter{
		Kind:       models.WorkKind(q.Kind),
		Status:     models.WorkStatus(q.Status),
		DivisionID: q.DivisionID,
		From:       from,
		To:         to,
		Search:     q.Search,
		Page:       q.Page,
		PageSize:   q.PageSize,
	}, nil
}
