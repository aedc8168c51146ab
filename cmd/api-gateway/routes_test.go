package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/noah-isme/ormawa-api/internal/dto"
	"github.com/noah-isme/ormawa-api/internal/handler"
	"github.com/noah-isme/ormawa-api/internal/models"
	"github.com/noah-isme/ormawa-api/internal/service"
	"github.com/noah-isme/ormawa-api/pkg/config"
	appErrors "github.com/noah-isme/ormawa-api/pkg/errors"
)

type tokenStub map[string]*models.JWTClaims

func (s tokenStub) ValidateToken(token string) (*models.JWTClaims, error) {
	if claims, ok := s[token]; ok {
		return claims, nil
	}
	return nil, appErrors.ErrUnauthorized
}

func testRouter() *gin.Engine {
	return testRouterWith(handler.NewSiteConfigHandler(nil, 0))
}

func testRouterWith(siteConfig *handler.SiteConfigHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{Env: config.EnvProduction, APIPrefix: "/api/v1"}
	metrics := service.NewMetricsService()
	return newRouter(cfg, zap.NewNop(), routerDeps{
		identity: tokenStub{
			"member": {UserID: "u-1", Role: models.RoleAnggota, DivisionID: 1},
			"admin":  {UserID: "u-0", Role: models.RoleAdmin},
		},
		metrics:      metrics,
		workItems:    handler.NewWorkItemHandler(nil),
		tasks:        handler.NewTaskHandler(nil),
		logs:         handler.NewActivityLogHandler(nil),
		participants: handler.NewParticipantHandler(nil),
		designs:      handler.NewDesignRequestHandler(nil, 0),
		siteConfig:   siteConfig,
		media:        handler.NewMediaHandler(nil, 0),
		brandKit:     handler.NewBrandKitHandler(nil, 0),
		campaigns:    handler.NewCampaignHandler(nil),
		files:        handler.NewFileHandler(nil, nil, nil),
		ops:          handler.NewMetricsHandler(metrics, nil),
	})
}

func serve(r *gin.Engine, method, path, token string) int {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRouterProbesArePublic(t *testing.T) {
	r := testRouter()
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/health", ""))
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/ready", ""))
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/metrics", ""))
}

func TestRouterRequiresIdentity(t *testing.T) {
	r := testRouter()
	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/api/v1/work-items", ""))
	assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodGet, "/api/v1/design-requests", "forged"))
}

func TestRouterGuardsElevatedRoutes(t *testing.T) {
	r := testRouter()
	assert.Equal(t, http.StatusForbidden, serve(r, http.MethodGet, "/api/v1/cms/sections", "member"))
	assert.Equal(t, http.StatusForbidden, serve(r, http.MethodDelete, "/api/v1/brand-kit/1", "member"))
	assert.Equal(t, http.StatusForbidden, serve(r, http.MethodGet, "/api/v1/metrics/summary", "member"))
}

func TestRouterHidesDocsInProduction(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, serve(testRouter(), http.MethodGet, "/docs/index.html", ""))
}

type pageStub struct {
	previews []string
}

func (p *pageStub) GetEntry(ctx context.Context, section, key string) (*dto.ConfigEntry, error) {
	return nil, appErrors.ErrNotFound
}

func (p *pageStub) GetSection(ctx context.Context, section string) (*dto.ConfigSection, error) {
	return nil, appErrors.ErrNotFound
}

func (p *pageStub) ListSections(ctx context.Context) ([]string, error) { return nil, nil }

func (p *pageStub) SetValue(ctx context.Context, req dto.SetConfigRequest, actor *models.JWTClaims) (*dto.ConfigEntry, error) {
	return nil, appErrors.ErrForbidden
}

func (p *pageStub) BatchSet(ctx context.Context, items []dto.SetConfigRequest, actor *models.JWTClaims) (*dto.BatchResult, error) {
	return nil, appErrors.ErrForbidden
}

func (p *pageStub) RenderPage(ctx context.Context, section string) (*dto.PagePayload, error) {
	return &dto.PagePayload{Section: section}, nil
}

func (p *pageStub) PreviewPage(ctx context.Context, section string, actor *models.JWTClaims) (*dto.PagePayload, error) {
	p.previews = append(p.previews, actor.UserID)
	return &dto.PagePayload{Section: section}, nil
}

func TestRouterPublicPagesAcceptOptionalIdentity(t *testing.T) {
	pages := &pageStub{}
	r := testRouterWith(handler.NewSiteConfigHandler(pages, 60))

	get := func(token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/public/pages/home", nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	for _, token := range []string{"", "forged", "member"} {
		w := get(token)
		assert.Equal(t, http.StatusOK, w.Code, token)
		assert.Equal(t, "public, max-age=60", w.Header().Get("Cache-Control"), token)
	}
	assert.Empty(t, pages.previews)

	w := get("admin")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	assert.Equal(t, []string{"u-0"}, pages.previews)
}
