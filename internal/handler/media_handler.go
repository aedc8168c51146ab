package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ormawa-api/internal/dto"
	"github.com/noah-isme/ormawa-api/internal/models"
	appErrors "github.com/noah-isme/ormawa-api/pkg/errors"
	"github.com/noah-isme/ormawa-api/pkg/response"
)

type mediaService interface {
	Upload(ctx context.Context, filename string, data []byte, req dto.UploadMediaRequest, actor *models.JWTClaims) (*models.MediaAsset, error)
	Get(ctx context.Context, id int64) (*models.MediaAsset, error)
	List(ctx context.Context, filter models.MediaFilter) ([]models.MediaAsset, *models.Pagination, error)
	Update(ctx context.Context, id int64, req dto.UpdateMediaRequest, actor *models.JWTClaims) (*models.MediaAsset, error)
	Delete(ctx context.Context, id int64, actor *models.JWTClaims) error
}

// MediaHandler exposes the media library.
type MediaHandler struct {
	service     mediaService
	uploadLimit int64
}

// NewMediaHandler builds a new handler.
func NewMediaHandler(service mediaService, uploadLimit int64) *MediaHandler {
	return &MediaHandler{service: service, uploadLimit: uploadLimit}
}

// Upload godoc
// @Summary Upload a media file
// @Tags Media
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Media file"
// @Param title formData string false "Title"
// @Param folder formData string false "Folder"
// @Param tags formData []string false "Tags"
// @Param programId formData int false "Linked program"
// @Param divisionId formData int false "Owning division"
// @Success 201 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Router /media [post]
func (h *MediaHandler) Upload(c *gin.Context) {
	var req dto.UploadMediaRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "payload tidak valid"))
		return
	}
	header, data, err := readFormFile(c, h.uploadLimit)
	if err != nil {
		response.Error(c, err)
		return
	}
	asset, err := h.service.Upload(c.Request.Context(), header.Filename, data, req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, asset)
}

// List godoc
// @Summary Browse the media library
// @Tags Media
// @Produce json
// @Param folder query string false "Folder"
// @Param tag query string false "Tag"
// @Param type query string false "image | video | document | audio | other"
// @Param programId query int false "Program"
// @Param divisionId query int false "Division"
// @Param q query string false "Title search"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /media [get]
func (h *MediaHandler) List(c *gin.Context) {
	var q dto.MediaQuery
	if err := bindQuery(c, &q); err != nil {
		response.Error(c, err)
		return
	}
	items, pagination, err := h.service.List(c.Request.Context(), models.MediaFilter{
		Folder:     q.Folder,
		Tag:        q.Tag,
		Type:       models.MediaType(q.Type),
		ProgramID:  q.ProgramID,
		DivisionID: q.DivisionID,
		Search:     q.Search,
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
// @Summary Get a media asset
// @Tags Media
// @Produce json
// @Param id path int true "Media ID"
// @Success 200 {object} response.Envelope
// @Router /media/{id} [get]
func (h *MediaHandler) Get(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	asset, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, asset, nil)
}

// Update godoc
// @Summary Edit media catalog fields
// @Tags Media
// @Accept json
// @Produce json
// @Param id path int true "Media ID"
// @Param payload body dto.UpdateMediaRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Router /media/{id} [patch]
func (h *MediaHandler) Update(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.UpdateMediaRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	asset, err := h.service.Update(c.Request.Context(), id, req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, asset, nil)
}

// Delete godoc
// @Summary Remove a media asset from the library
// @Tags Media
// @Param id path int true "Media ID"
// @Success 204
// @Router /media/{id} [delete]
func (h *MediaHandler) Delete(c *gin.Context) {
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
