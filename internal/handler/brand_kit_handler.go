package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ormawa-api/internal/dto"
	"github.com/noah-isme/ormawa-api/internal/models"
	"github.com/noah-isme/ormawa-api/internal/service"
	appErrors "github.com/noah-isme/ormawa-api/pkg/errors"
	"github.com/noah-isme/ormawa-api/pkg/response"
)

type brandKitService interface {
	List(ctx context.Context, category models.BrandCategory) ([]models.BrandKitItem, error)
	Get(ctx context.Context, id int64) (*models.BrandKitItem, error)
	Create(ctx context.Context, req dto.CreateBrandKitRequest, file *service.BrandFile, actor *models.JWTClaims) (*models.BrandKitItem, error)
	Update(ctx context.Context, id int64, req dto.UpdateBrandKitRequest, file *service.BrandFile, actor *models.JWTClaims) (*models.BrandKitItem, error)
	Delete(ctx context.Context, id int64, actor *models.JWTClaims) error
	Download(ctx context.Context, id int64, actor *models.JWTClaims) (*dto.BrandKitDownloadResponse, error)
}

// BrandKitHandler exposes official logos, colors, fonts and templates.
type BrandKitHandler struct {
	service     brandKitService
	uploadLimit int64
}

// NewBrandKitHandler builds a new handler.
func NewBrandKitHandler(service brandKitService, uploadLimit int64) *BrandKitHandler {
	return &BrandKitHandler{service: service, uploadLimit: uploadLimit}
}

// List godoc
// @Summary List brand kit entries
// @Tags BrandKit
// @Produce json
// @Param category query string false "logo | color | font | template | guideline"
// @Success 200 {object} response.Envelope
// @Router /brand-kit [get]
func (h *BrandKitHandler) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context(), models.BrandCategory(c.Query("category")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Get godoc
// @Summary Get a brand kit entry
// @Tags BrandKit
// @Produce json
// @Param id path int true "Entry ID"
// @Success 200 {object} response.Envelope
// @Router /brand-kit/{id} [get]
func (h *BrandKitHandler) Get(c *gin.Context) {
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
// @Summary Add a brand kit entry
// @Tags BrandKit
// @Accept multipart/form-data
// @Produce json
// @Param name formData string true "Name"
// @Param category formData string true "Category"
// @Param description formData string false "Description"
// @Param value formData string false "Hex color or text value"
// @Param file formData file false "Asset file"
// @Success 201 {object} response.Envelope
// @Router /brand-kit [post]
func (h *BrandKitHandler) Create(c *gin.Context) {
	var req dto.CreateBrandKitRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "payload tidak valid"))
		return
	}
	file, err := h.brandFile(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	item, err := h.service.Create(c.Request.Context(), req, file, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// Update godoc
// @Summary Edit a brand kit entry
// @Tags BrandKit
// @Accept json
// @Produce json
// @Param id path int true "Entry ID"
// @Param payload body dto.UpdateBrandKitRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Router /brand-kit/{id} [patch]
func (h *BrandKitHandler) Update(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.UpdateBrandKitRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	item, err := h.service.Update(c.Request.Context(), id, req, nil, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// ReplaceFile godoc
// @Summary Replace the file behind a brand kit entry
// @Tags BrandKit
// @Accept multipart/form-data
// @Produce json
// @Param id path int true "Entry ID"
// @Param file formData file true "Asset file"
// @Success 200 {object} response.Envelope
// @Router /brand-kit/{id}/file [put]
func (h *BrandKitHandler) ReplaceFile(c *gin.Context) {
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
	file := &service.BrandFile{Name: header.Filename, Data: data}
	item, err := h.service.Update(c.Request.Context(), id, dto.UpdateBrandKitRequest{}, file, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}

// Delete godoc
// @Summary Delete a brand kit entry and its file
// @Tags BrandKit
// @Param id path int true "Entry ID"
// @Success 204
// @Router /brand-kit/{id} [delete]
func (h *BrandKitHandler) Delete(c *gin.Context) {
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

// Download godoc
// @Summary Issue a short-lived download link
// @Tags BrandKit
// @Produce json
// @Param id path int true "Entry ID"
// @Success 200 {object} response.Envelope
// @Router /brand-kit/{id}/download [get]
func (h *BrandKitHandler) Download(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	link, err := h.service.Download(c.Request.Context(), id, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, link, nil)
}

func (h *BrandKitHandler) brandFile(c *gin.Context) (*service.BrandFile, error) {
	header, data, err := optionalFormFile(c, h.uploadLimit)
	if err != nil || header == nil {
		return nil, err
	}
	return &service.BrandFile{Name: header.Filename, Data: data}, nil
}
