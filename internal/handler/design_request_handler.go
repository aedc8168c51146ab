package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ormawa-api/internal/dto"
	"github.com/noah-isme/ormawa-api/internal/models"
	"github.com/noah-isme/ormawa-api/pkg/response"
)

type designRequestService interface {
	Create(ctx context.Context, req dto.CreateDesignRequest, actor *models.JWTClaims) (*models.DesignRequest, error)
	List(ctx context.Context, filter models.DesignRequestFilter, actor *models.JWTClaims) ([]models.DesignRequest, *models.Pagination, error)
	Get(ctx context.Context, id int64, actor *models.JWTClaims) (*models.DesignRequest, error)
	Update(ctx context.Context, id int64, req dto.UpdateDesignRequest, actor *models.JWTClaims) (*models.DesignRequest, error)
	Assign(ctx context.Context, id int64, assignee string, actor *models.JWTClaims) (*models.DesignRequest, error)
	SetStatus(ctx context.Context, id int64, status models.DesignStatus, actor *models.JWTClaims) (*models.DesignRequest, error)
	AddComment(ctx context.Context, id int64, req dto.AddCommentRequest, actor *models.JWTClaims) (*models.DesignComment, error)
	SetDeliverable(ctx context.Context, id int64, url string, actor *models.JWTClaims) (*models.DesignRequest, error)
	UploadAttachment(ctx context.Context, id int64, filename string, data []byte, actor *models.JWTClaims) (*models.DesignRequest, error)
}

// DesignRequestHandler exposes the design ticket queue.
type DesignRequestHandler struct {
	service     designRequestService
	uploadLimit int64
}

// NewDesignRequestHandler builds a new handler. uploadLimit caps how much of
// a multipart file is read into memory.
func NewDesignRequestHandler(service designRequestService, uploadLimit int64) *DesignRequestHandler {
	return &DesignRequestHandler{service: service, uploadLimit: uploadLimit}
}

// List godoc
// @Summary List design requests
// @Tags DesignRequests
// @Produce json
// @Param status query string false "pending | in_progress | review | completed | rejected"
// @Param priority query string false "low | medium | high | urgent"
// @Param assignedTo query string false "Designer user ID"
// @Param divisionId query int false "Requesting division"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /design-requests [get]
func (h *DesignRequestHandler) List(c *gin.Context) {
	var q dto.DesignRequestQuery
	if err := bindQuery(c, &q); err != nil {
		response.Error(c, err)
		return
	}
	filter := models.DesignRequestFilter{
		Status:              models.DesignStatus(q.Status),
		Priority:            models.DesignPriority(q.Priority),
		AssignedTo:          q.AssignedTo,
		RequesterDivisionID: q.DivisionID,
		Page:                q.Page,
		PageSize:            q.PageSize,
	}
	items, pagination, err := h.service.List(c.Request.Context(), filter, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Create godoc
// @Summary Open a design request
// @Tags DesignRequests
// @Accept json
// @Produce json
// @Param payload body dto.CreateDesignRequest true "Ticket"
// @Success 201 {object} response.Envelope
// @Router /design-requests [post]
func (h *DesignRequestHandler) Create(c *gin.Context) {
	var req dto.CreateDesignRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	ticket, err := h.service.Create(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, ticket)
}

// Get godoc
// @Summary Get a design request with its comments
// @Tags DesignRequests
// @Produce json
// @Param id path int true "Ticket ID"
// @Success 200 {object} response.Envelope
// @Router /design-requests/{id} [get]
func (h *DesignRequestHandler) Get(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	ticket, err := h.service.Get(c.Request.Context(), id, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, ticket, nil)
}

// Update godoc
// @Summary Edit a design request
// @Tags DesignRequests
// @Accept json
// @Produce json
// @Param id path int true "Ticket ID"
// @Param payload body dto.UpdateDesignRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Router /design-requests/{id} [patch]
func (h *DesignRequestHandler) Update(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.UpdateDesignRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	ticket, err := h.service.Update(c.Request.Context(), id, req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, ticket, nil)
}

// Assign godoc
// @Summary Assign a designer
// @Tags DesignRequests
// @Accept json
// @Produce json
// @Param id path int true "Ticket ID"
// @Param payload body dto.AssignDesignRequest true "Designer"
// @Success 200 {object} response.Envelope
// @Router /design-requests/{id}/assign [patch]
func (h *DesignRequestHandler) Assign(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.AssignDesignRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	ticket, err := h.service.Assign(c.Request.Context(), id, req.AssignedTo, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, ticket, nil)
}

// SetStatus godoc
// @Summary Change a design request status
// @Tags DesignRequests
// @Accept json
// @Produce json
// @Param id path int true "Ticket ID"
// @Param payload body dto.DesignStatusRequest true "Status"
// @Success 200 {object} response.Envelope
// @Router /design-requests/{id}/status [patch]
func (h *DesignRequestHandler) SetStatus(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.DesignStatusRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	ticket, err := h.service.SetStatus(c.Request.Context(), id, req.Status, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, ticket, nil)
}

// AddComment godoc
// @Summary Comment on a design request
// @Tags DesignRequests
// @Accept json
// @Produce json
// @Param id path int true "Ticket ID"
// @Param payload body dto.AddCommentRequest true "Comment"
// @Success 201 {object} response.Envelope
// @Router /design-requests/{id}/comments [post]
func (h *DesignRequestHandler) AddComment(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.AddCommentRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	comment, err := h.service.AddComment(c.Request.Context(), id, req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, comment)
}

// SetDeliverable godoc
// @Summary Attach the finished design link
// @Tags DesignRequests
// @Accept json
// @Produce json
// @Param id path int true "Ticket ID"
// @Param payload body dto.DeliverableRequest true "Deliverable"
// @Success 200 {object} response.Envelope
// @Router /design-requests/{id}/deliverable [put]
func (h *DesignRequestHandler) SetDeliverable(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.DeliverableRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	ticket, err := h.service.SetDeliverable(c.Request.Context(), id, req.URL, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, ticket, nil)
}

// UploadAttachment godoc
// @Summary Upload a reference file
// @Tags DesignRequests
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "Ticket ID"
// @Param file formData file true "Reference file"
// @Success 200 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Router /design-requests/{id}/attachment [post]
func (h *DesignRequestHandler) UploadAttachment(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	header, data, err := readFormFile(c, h.uploadLimit)
	if err != nil {
		response.Error(c, err)
		return
	}
	ticket, err := h.service.UploadAttachment(c.Request.Context(), id, header.Filename, data, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, ticket, nil)
}
