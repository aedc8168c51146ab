package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ormawa-api/internal/dto"
	"github.com/noah-isme/ormawa-api/internal/models"
	"github.com/noah-isme/ormawa-api/pkg/response"
)

type participantService interface {
	Add(ctx context.Context, programID int64, userID string, role models.ParticipantRole, actor *models.JWTClaims) (*models.Participant, error)
	Remove(ctx context.Context, participantID int64, actor *models.JWTClaims) error
	List(ctx context.Context, programID int64, actor *models.JWTClaims) ([]models.Participant, error)
}

// ParticipantHandler manages program rosters.
type ParticipantHandler struct {
	service participantService
}

// NewParticipantHandler builds a new handler.
func NewParticipantHandler(service participantService) *ParticipantHandler {
	return &ParticipantHandler{service: service}
}

// List godoc
// @Summary List program participants
// @Tags Participants
// @Produce json
// @Param id path int true "Program ID"
// @Success 200 {object} response.Envelope
// @Router /work-items/{id}/participants [get]
func (h *ParticipantHandler) List(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	participants, err := h.service.List(c.Request.Context(), id, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, participants, nil)
}

// Add godoc
// @Summary Add a participant to a program
// @Tags Participants
// @Accept json
// @Produce json
// @Param id path int true "Program ID"
// @Param payload body dto.AddParticipantRequest true "Participant"
// @Success 201 {object} response.Envelope
// @Router /work-items/{id}/participants [post]
func (h *ParticipantHandler) Add(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.AddParticipantRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	p, err := h.service.Add(c.Request.Context(), id, req.UserID, models.ParticipantRole(req.Role), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, p)
}

// Remove godoc
// @Summary Remove a participant
// @Tags Participants
// @Param id path int true "Participant ID"
// @Success 204
// @Router /participants/{id} [delete]
func (h *ParticipantHandler) Remove(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.service.Remove(c.Request.Context(), id, claimsFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
