package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/ormawa-api/internal/dto"
	"github.com/noah-isme/ormawa-api/internal/middleware"
	"github.com/noah-isme/ormawa-api/internal/models"
	appErrors "github.com/noah-isme/ormawa-api/pkg/errors"
	"github.com/noah-isme/ormawa-api/pkg/response"
)

type siteConfigService interface {
	GetEntry(ctx context.Context, section, key string) (*dto.ConfigEntry, error)
	GetSection(ctx context.Context, section string) (*dto.ConfigSection, error)
	ListSections(ctx context.Context) ([]string, error)
	SetValue(ctx context.Context, req dto.SetConfigRequest, actor *models.JWTClaims) (*dto.ConfigEntry, error)
	BatchSet(ctx context.Context, items []dto.SetConfigRequest, actor *models.JWTClaims) (*dto.BatchResult, error)
	RenderPage(ctx context.Context, section string) (*dto.PagePayload, error)
	PreviewPage(ctx context.Context, section string, actor *models.JWTClaims) (*dto.PagePayload, error)
}

// SiteConfigHandler exposes the CMS editor and the public page feed.
type SiteConfigHandler struct {
	service siteConfigService
	maxAge  int
}

// NewSiteConfigHandler builds a new handler. maxAge is the Cache-Control
// max-age sent with public pages.
func NewSiteConfigHandler(service siteConfigService, maxAge int) *SiteConfigHandler {
	return &SiteConfigHandler{service: service, maxAge: maxAge}
}

// Sections godoc
// @Summary List CMS sections
// @Tags CMS
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /cms/sections [get]
func (h *SiteConfigHandler) Sections(c *gin.Context) {
	sections, err := h.service.ListSections(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sections, nil)
}

// Section godoc
// @Summary Effective values of a section, defaults merged
// @Tags CMS
// @Produce json
// @Param section path string true "Section"
// @Success 200 {object} response.Envelope
// @Router /cms/sections/{section} [get]
func (h *SiteConfigHandler) Section(c *gin.Context) {
	section, err := h.service.GetSection(c.Request.Context(), c.Param("section"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, section, nil)
}

// Entry godoc
// @Summary Effective value of one key
// @Tags CMS
// @Produce json
// @Param section path string true "Section"
// @Param key path string true "Key"
// @Success 200 {object} response.Envelope
// @Router /cms/sections/{section}/{key} [get]
func (h *SiteConfigHandler) Entry(c *gin.Context) {
	entry, err := h.service.GetEntry(c.Request.Context(), c.Param("section"), c.Param("key"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entry, nil)
}

// Set godoc
// @Summary Write one CMS value
// @Tags CMS
// @Accept json
// @Produce json
// @Param section path string true "Section"
// @Param key path string true "Key"
// @Param payload body dto.SetConfigRequest true "Value"
// @Success 200 {object} response.Envelope
// @Router /cms/sections/{section}/{key} [put]
func (h *SiteConfigHandler) Set(c *gin.Context) {
	var req dto.SetConfigRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	if req.Section == "" {
		req.Section = c.Param("section")
	}
	if req.Key == "" {
		req.Key = c.Param("key")
	}
	if req.Section != c.Param("section") || req.Key != c.Param("key") {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "section/key tidak sesuai dengan path"))
		return
	}
	entry, err := h.service.SetValue(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entry, nil)
}

// BatchSet godoc
// @Summary Write several CMS values in order
// @Description Items are written one by one. A partial failure answers 207 with the per-item result.
// @Tags CMS
// @Accept json
// @Produce json
// @Param payload body dto.BatchSetConfigRequest true "Values"
// @Success 200 {object} response.Envelope
// @Success 207 {object} response.Envelope
// @Router /cms/batch [put]
func (h *SiteConfigHandler) BatchSet(c *gin.Context) {
	var req dto.BatchSetConfigRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.service.BatchSet(c.Request.Context(), req.Items, claimsFromContext(c))
	if errors.Is(err, appErrors.ErrPartialFailure) && result != nil {
		response.JSON(c, http.StatusMultiStatus, result, nil)
		return
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Page godoc
// @Summary Public render-ready content of a section
// @Description CMS editors sending a bearer token get an uncached preview.
// @Tags Public
// @Produce json
// @Param section path string true "Section"
// @Success 200 {object} response.Envelope
// @Router /public/pages/{section} [get]
func (h *SiteConfigHandler) Page(c *gin.Context) {
	if actor := claimsFromContext(c); actor != nil && actor.Role.Elevated() {
		page, err := h.service.PreviewPage(c.Request.Context(), c.Param("section"), actor)
		if err != nil {
			response.Error(c, err)
			return
		}
		meta := middleware.ExtractMeta(c)
		if meta == nil {
			meta = map[string]any{}
		}
		meta["preview"] = true
		response.JSON(c, http.StatusOK, page, nil, meta)
		return
	}

	page, err := h.service.RenderPage(c.Request.Context(), c.Param("section"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, page.FromCache)
	response.Public(c, page, h.maxAge, middleware.ExtractMeta(c))
}
