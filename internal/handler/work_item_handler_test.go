package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ormawa-api/internal/dto"
	"github.com/noah-isme/ormawa-api/internal/models"
	"github.com/noah-isme/ormawa-api/internal/service"
	appErrors "github.com/noah-isme/ormawa-api/pkg/errors"
	"github.com/noah-isme/ormawa-api/pkg/export"
)

type workItemServiceMock struct {
	filter    models.WorkItemFilter
	status    models.WorkStatus
	version   *int
	statusErr error
	moveResp  *dto.MoveCardResponse
	exportFmt export.Format
	actor     *models.JWTClaims
}

func (m *workItemServiceMock) Create(ctx context.Context, req dto.CreateWorkItemRequest, actor *models.JWTClaims) (*models.WorkItem, error) {
	m.actor = actor
	return &models.WorkItem{ID: 1, Kind: req.Kind, Title: req.Title}, nil
}

func (m *workItemServiceMock) Get(ctx context.Context, id int64, actor *models.JWTClaims) (*models.WorkItemDetail, error) {
	return &models.WorkItemDetail{WorkItem: models.WorkItem{ID: id}}, nil
}

func (m *workItemServiceMock) List(ctx context.Context, filter models.WorkItemFilter, actor *models.JWTClaims) ([]models.WorkItemSummary, *models.Pagination, error) {
	m.filter = filter
	return []models.WorkItemSummary{}, &models.Pagination{Page: 1, PageSize: 20}, nil
}

func (m *workItemServiceMock) Update(ctx context.Context, id int64, req dto.UpdateWorkItemRequest, actor *models.JWTClaims) (*models.WorkItem, error) {
	return &models.WorkItem{ID: id}, nil
}

func (m *workItemServiceMock) SetStatus(ctx context.Context, id int64, status models.WorkStatus, expectedVersion *int, actor *models.JWTClaims) (*models.WorkItem, error) {
	m.status, m.version = status, expectedVersion
	if m.statusErr != nil {
		return nil, m.statusErr
	}
	return &models.WorkItem{ID: id, Status: status}, nil
}

func (m *workItemServiceMock) Move(ctx context.Context, kind models.WorkKind, req dto.MoveCardRequest, actor *models.JWTClaims) (*dto.MoveCardResponse, error) {
	return m.moveResp, nil
}

func (m *workItemServiceMock) Board(ctx context.Context, kind models.WorkKind, filter models.WorkItemFilter, actor *models.JWTClaims) (*dto.BoardResponse, error) {
	return &dto.BoardResponse{Kind: kind}, nil
}

func (m *workItemServiceMock) Delete(ctx context.Context, id int64, actor *models.JWTClaims) error {
	return nil
}

func (m *workItemServiceMock) Export(ctx context.Context, kind models.WorkKind, format export.Format, filter models.WorkItemFilter, actor *models.JWTClaims) (*service.ExportFile, error) {
	m.exportFmt = format
	return &service.ExportFile{Filename: "laporan-proker-20260101.csv", ContentType: format.ContentType(), Body: []byte("Judul\n")}, nil
}

func TestWorkItemHandlerListMapsQuery(t *testing.T) {
	svc := &workItemServiceMock{}
	h := NewWorkItemHandler(svc)
	c, w := newTestContext(t, http.MethodGet, "/work-items?kind=proker&status=active&divisionId=3&from=2026-01-01&q=bakti&page=2", nil, memberActor)

	h.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.WorkKindProker, svc.filter.Kind)
	assert.Equal(t, models.ProkerActive, svc.filter.Status)
	require.NotNil(t, svc.filter.DivisionID)
	assert.EqualValues(t, 3, *svc.filter.DivisionID)
	require.NotNil(t, svc.filter.From)
	assert.Equal(t, "2026-01-01", svc.filter.From.Format("2006-01-02"))
	assert.Equal(t, "bakti", svc.filter.Search)
	assert.Equal(t, 2, svc.filter.Page)
	assert.Contains(t, decodeEnvelope(t, w), "pagination")
}

func TestWorkItemHandlerListRejectsBadDate(t *testing.T) {
	h := NewWorkItemHandler(&workItemServiceMock{})
	c, w := newTestContext(t, http.MethodGet, "/work-items?from=kemarin", nil, memberActor)

	h.List(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWorkItemHandlerCreatePassesActor(t *testing.T) {
	svc := &workItemServiceMock{}
	h := NewWorkItemHandler(svc)
	c, w := jsonContext(t, http.MethodPost, "/work-items", dto.CreateWorkItemRequest{Kind: models.WorkKindProgram, Title: "Bakti Sosial", StartDate: "2026-02-01"}, memberActor)

	h.Create(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Same(t, memberActor, svc.actor)
}

func TestWorkItemHandlerGetInvalidID(t *testing.T) {
	h := NewWorkItemHandler(&workItemServiceMock{})
	c, w := newTestContext(t, http.MethodGet, "/work-items/abc", nil, memberActor)
	c.Params = gin.Params{{Key: "id", Value: "abc"}}

	h.Get(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWorkItemHandlerSetStatusConflict(t *testing.T) {
	svc := &workItemServiceMock{statusErr: appErrors.ErrConflict}
	h := NewWorkItemHandler(svc)
	c, w := jsonContext(t, http.MethodPatch, "/work-items/7/status", `{"status":"ongoing","expectedVersion":4}`, memberActor)
	c.Params = gin.Params{{Key: "id", Value: "7"}}

	h.SetStatus(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, models.ProgramOngoing, svc.status)
	require.NotNil(t, svc.version)
	assert.Equal(t, 4, *svc.version)
}

func TestWorkItemHandlerBoardRejectsUnknownKind(t *testing.T) {
	h := NewWorkItemHandler(&workItemServiceMock{})
	c, w := newTestContext(t, http.MethodGet, "/boards/event", nil, memberActor)
	c.Params = gin.Params{{Key: "kind", Value: "event"}}

	h.Board(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWorkItemHandlerMoveReportsRollback(t *testing.T) {
	svc := &workItemServiceMock{moveResp: &dto.MoveCardResponse{ItemID: 3, Status: models.ProkerCreated, RolledBack: true, Notice: "Gagal memperbarui status"}}
	h := NewWorkItemHandler(svc)
	c, w := jsonContext(t, http.MethodPost, "/boards/proker/move", dto.MoveCardRequest{ItemID: 3, Target: models.ProkerActive}, memberActor)
	c.Params = gin.Params{{Key: "kind", Value: "proker"}}

	h.Move(c)

	require.Equal(t, http.StatusOK, w.Code)
	data := decodeEnvelope(t, w)["data"].(map[string]any)
	assert.Equal(t, true, data["rolledBack"])
	assert.Equal(t, "created", data["status"])
}

func TestWorkItemHandlerExport(t *testing.T) {
	svc := &workItemServiceMock{}
	h := NewWorkItemHandler(svc)
	c, w := newTestContext(t, http.MethodGet, "/reports/work-items?kind=proker", nil, adminActor)

	h.Export(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, export.FormatCSV, svc.exportFmt)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "laporan-proker-20260101.csv")
	assert.Equal(t, "Judul\n", w.Body.String())
}

func TestWorkItemHandlerExportUnknownFormat(t *testing.T) {
	h := NewWorkItemHandler(&workItemServiceMock{})
	c, w := newTestContext(t, http.MethodGet, "/reports/work-items?kind=proker&format=xlsx", nil, adminActor)

	h.Export(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
