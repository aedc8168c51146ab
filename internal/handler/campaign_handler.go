package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ormawa-api/internal/dto"
	"github.com/noah-isme/ormawa-api/internal/models"
	"github.com/noah-isme/ormawa-api/pkg/response"
)

type campaignService interface {
	List(ctx context.Context, filter models.CampaignFilter) ([]models.Campaign, *models.Pagination, error)
	Get(ctx context.Context, id int64) (*models.Campaign, error)
	Create(ctx context.Context, req dto.CreateCampaignRequest, actor *models.JWTClaims) (*models.Campaign, error)
	Update(ctx context.Context, id int64, req dto.UpdateCampaignRequest, actor *models.JWTClaims) (*models.Campaign, error)
	Delete(ctx context.Context, id int64, actor *models.JWTClaims) error
}

// CampaignHandler exposes publication planning.
type CampaignHandler struct {
	service campaignService
}

// NewCampaignHandler builds a new handler.
func NewCampaignHandler(service campaignService) *CampaignHandler {
	return &CampaignHandler{service: service}
}

// List godoc
// @Summary List campaigns
// @Tags Campaigns
// @Produce json
// @Param status query string false "draft | scheduled | published | archived"
// @Param platform query string false "Platform"
// @Param programId query int false "Linked program"
// @Param divisionId query int false "Division"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /campaigns [get]
func (h *CampaignHandler) List(c *gin.Context) {
	var q dto.CampaignQuery
	if err := bindQuery(c, &q); err != nil {
		response.Error(c, err)
		return
	}
	items, pagination, err := h.service.List(c.Request.Context(), models.CampaignFilter{
		Status:     models.CampaignStatus(q.Status),
		Platform:   q.Platform,
		ProgramID:  q.ProgramID,
		DivisionID: q.DivisionID,
		Page:       q.Page,
		PageSize:   q.PageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Get godoc
// @Summary Get a campaign
// @Tags Campaigns
// @Produce json
// @Param id path int true "Campaign ID"
// @Success 200 {object} response.Envelope
// @Router /campaigns/{id} [get]
func (h *CampaignHandler) Get(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	item, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Create godoc
// @Summary Plan a campaign
// @Tags Campaigns
// @Accept json
// @Produce json
// @Param payload body dto.CreateCampaignRequest true "Campaign"
// @Success 201 {object} response.Envelope
// @Router /campaigns [post]
func (h *CampaignHandler) Create(c *gin.Context) {
	var req dto.CreateCampaignRequest
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

// Update godoc
// @Summary Edit a campaign
// @Tags Campaigns
// @Accept json
// @Produce json
// @Param id path int true "Campaign ID"
// @Param payload body dto.UpdateCampaignRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Router /campaigns/{id} [patch]
func (h *CampaignHandler) Update(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.UpdateCampaignRequest
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

// Delete godoc
// @Summary Delete a campaign
// @Tags Campaigns
// @Param id path int true "Campaign ID"
// @Success 204
// @Router /campaigns/{id} [delete]
func (h *CampaignHandler) Delete(c *gin.Context) {
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
