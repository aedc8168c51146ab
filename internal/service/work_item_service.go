package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/ormawa-api/internal/dto"
	"github.com/noah-isme/ormawa-api/internal/models"
	"github.com/noah-isme/ormawa-api/internal/repository"
	appErrors "github.com/noah-isme/ormawa-api/pkg/errors"
	"github.com/noah-isme/ormawa-api/pkg/kanban"
)

type workItemRepository interface {
	Create(ctx context.Context, item *models.WorkItem) error
	GetByID(ctx context.Context, id int64) (*models.WorkItem, error)
	List(ctx context.Context, filter models.WorkItemFilter) ([]models.WorkItemSummary, int, error)
	ListAll(ctx context.Context, filter models.WorkItemFilter) ([]models.WorkItemSummary, error)
	Update(ctx context.Context, item *models.WorkItem) error
	UpdateStatus(ctx context.Context, id int64, status models.WorkStatus, expectedVersion *int) (*models.WorkItem, error)
	DeleteProgram(ctx context.Context, id int64) error
}

type taskLister interface {
	ListByWorkItem(ctx context.Context, workItemID int64) ([]models.Task, error)
}

type activityLogLister interface {
	ListByWorkItem(ctx context.Context, workItemID int64) ([]models.ActivityLog, error)
}

type participantRepository interface {
	Create(ctx context.Context, p *models.Participant) error
	GetByID(ctx context.Context, id int64) (*models.Participant, error)
	ListByWorkItem(ctx context.Context, workItemID int64) ([]models.Participant, error)
	Delete(ctx context.Context, id int64) error
}

// WorkItemConfig toggles optional behaviour.
type WorkItemConfig struct {
	// EnforceVersionCheck makes every status write conditional on the
	// version read just before it, even when the caller sent none.
	EnforceVersionCheck bool
}

// WorkItemService owns programs and prokers.
type WorkItemService struct {
	items        workItemRepository
	tasks        taskLister
	logs         activityLogLister
	participants participantRepository
	revalidator  *RevalidationService
	metrics      *MetricsService
	validator    *validator.Validate
	logger       *zap.Logger
	cfg          WorkItemConfig
}

// NewWorkItemService wires the service.
func NewWorkItemService(items workItemRepository, tasks taskLister, logs activityLogLister, participants participantRepository,
	revalidator *RevalidationService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg WorkItemConfig) *WorkItemService {
	return &WorkItemService{
		items:        items,
		tasks:        tasks,
		logs:         logs,
		participants: participants,
		revalidator:  revalidator,
		metrics:      metrics,
		validator:    orValidator(validate),
		logger:       orNop(logger),
		cfg:          cfg,
	}
}

// ComputeProgress is round(100*done/total), 0 for an empty checklist.
func ComputeProgress(total, done int) int {
	if total <= 0 {
		return 0
	}
	if done > total {
		done = total
	}
	return (200*done + total) / (2 * total)
}

func pagePath(kind models.WorkKind) string {
	if kind == models.WorkKindProgram {
		return PathPrograms
	}
	return PathProkers
}

// Create stores a new program or proker.
func (s *WorkItemService) Create(ctx context.Context, req dto.CreateWorkItemRequest, actor *models.JWTClaims) (*models.WorkItem, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	req.Title = strings.TrimSpace(req.Title)
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err)
	}

	start, end, err := parseRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	item := &models.WorkItem{
		Kind:        req.Kind,
		Title:       req.Title,
		Description: strings.TrimSpace(req.Description),
		StartDate:   *start,
		EndDate:     end,
		PICUserID:   strings.TrimSpace(req.PICUserID),
	}

	if req.Kind == models.WorkKindProgram {
		item.Location = trimmedOrNil(req.Location)
		if item.Location == nil {
			return nil, invalidf(appErrors.ErrValidation.Message)
		}
	}

	item.Status = req.Status
	if item.Status == "" {
		item.Status = models.StatusDomain(req.Kind)[0]
	} else if !models.InDomain(req.Kind, item.Status) {
		return nil, invalidf("status tidak valid")
	}

	switch {
	case actor.Role.Elevated():
		if req.DivisionID <= 0 {
			return nil, invalidf("divisi wajib diisi")
		}
		item.DivisionID = req.DivisionID
	case req.DivisionID != 0 && req.DivisionID != actor.DivisionID:
		return nil, appErrors.Clone(appErrors.ErrForbidden, "tidak dapat membuat untuk divisi lain")
	default:
		item.DivisionID = actor.DivisionID
	}
	if item.PICUserID == "" {
		item.PICUserID = actor.UserID
	}

	if err := s.items.Create(ctx, item); err != nil {
		s.logger.Error("create work item failed", zap.String("kind", string(req.Kind)), zap.Error(err))
		return nil, appErrors.Internal(err, "Gagal menyimpan data")
	}

	if item.Kind == models.WorkKindProgram && s.participants != nil {
		pic := &models.Participant{WorkItemID: item.ID, UserID: item.PICUserID, Role: models.ParticipantPIC}
		if err := s.participants.Create(ctx, pic); err != nil {
			s.logger.Warn("add program PIC participant failed", zap.Int64("work_item_id", item.ID), zap.Error(err))
		}
	}

	s.revalidator.Revalidate(ctx, pagePath(item.Kind))
	return item, nil
}

// Get returns an item with its tasks, logs, participants and progress.
func (s *WorkItemService) Get(ctx context.Context, id int64, actor *models.JWTClaims) (*models.WorkItemDetail, error) {
	item, err := s.load(ctx, id, actor)
	if err != nil {
		return nil, err
	}

	detail := &models.WorkItemDetail{WorkItem: *item, Participants: []models.Participant{}}
	if detail.Tasks, err = s.tasks.ListByWorkItem(ctx, id); err != nil {
		return nil, appErrors.Internal(err, "Gagal memuat tugas")
	}
	if detail.Logs, err = s.logs.ListByWorkItem(ctx, id); err != nil {
		return nil, appErrors.Internal(err, "Gagal memuat log aktivitas")
	}
	if item.Kind == models.WorkKindProgram {
		if detail.Participants, err = s.participants.ListByWorkItem(ctx, id); err != nil {
			return nil, appErrors.Internal(err, "Gagal memuat peserta")
		}
	}

	done := 0
	for _, t := range detail.Tasks {
		if t.Status == models.TaskDone {
			done++
		}
	}
	detail.Progress = ComputeProgress(len(detail.Tasks), done)
	return detail, nil
}

// List returns a scoped page of summaries with progress.
func (s *WorkItemService) List(ctx context.Context, filter models.WorkItemFilter, actor *models.JWTClaims) ([]models.WorkItemSummary, *models.Pagination, error) {
	if actor == nil {
		return nil, nil, appErrors.ErrUnauthorized
	}
	if err := validateFilter(&filter); err != nil {
		return nil, nil, err
	}
	scopeFilter(&filter, actor)

	start := time.Now()
	items, total, err := s.items.List(ctx, filter)
	s.metrics.ObserveDBQuery("work_items.list", time.Since(start))
	if err != nil {
		return nil, nil, appErrors.Internal(err, "Gagal memuat data")
	}
	withProgress(items)

	page, size, _ := models.NormalizePage(filter.Page, filter.PageSize)
	return items, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Update edits fields of an item.
func (s *WorkItemService) Update(ctx context.Context, id int64, req dto.UpdateWorkItemRequest, actor *models.JWTClaims) (*models.WorkItem, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err)
	}
	item, err := s.load(ctx, id, actor)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		if item.Title = strings.TrimSpace(*req.Title); item.Title == "" {
			return nil, invalidf(appErrors.ErrValidation.Message)
		}
	}
	if req.Description != nil {
		item.Description = strings.TrimSpace(*req.Description)
	}
	if req.Location != nil && item.Kind == models.WorkKindProgram {
		if item.Location = trimmedOrNil(req.Location); item.Location == nil {
			return nil, invalidf(appErrors.ErrValidation.Message)
		}
	}
	if req.StartDate != nil {
		start, err := dto.ParseDate(*req.StartDate)
		if err != nil || start == nil {
			return nil, invalidf("tanggal mulai tidak valid")
		}
		item.StartDate = *start
	}
	if req.ClearEndDate {
		item.EndDate = nil
	} else if req.EndDate != nil {
		end, err := dto.ParseDate(*req.EndDate)
		if err != nil {
			return nil, invalidf("tanggal selesai tidak valid")
		}
		item.EndDate = end
	}
	if item.EndDate != nil && item.EndDate.Before(item.StartDate) {
		return nil, invalidf("tanggal selesai harus setelah tanggal mulai")
	}
	if req.PICUserID != nil {
		if pic := strings.TrimSpace(*req.PICUserID); pic != "" {
			item.PICUserID = pic
		}
	}

	if err := s.items.Update(ctx, item); err != nil {
		s.logger.Error("update work item failed", zap.Int64("id", id), zap.Error(err))
		return nil, notFoundOr(err, "data tidak ditemukan", "Gagal menyimpan perubahan")
	}
	s.revalidator.Revalidate(ctx, pagePath(item.Kind))
	return item, nil
}

// SetStatus moves an item to any status of its kind. No activity log is
// written. A non-nil expectedVersion makes the write conditional.
func (s *WorkItemService) SetStatus(ctx context.Context, id int64, status models.WorkStatus, expectedVersion *int, actor *models.JWTClaims) (*models.WorkItem, error) {
	item, err := s.load(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	if !models.InDomain(item.Kind, status) {
		return nil, invalidf("status tidak valid")
	}
	if expectedVersion == nil && s.cfg.EnforceVersionCheck {
		v := item.Version
		expectedVersion = &v
	}
	if item.Status == status && (expectedVersion == nil || *expectedVersion == item.Version) {
		return item, nil
	}

	updated, err := s.items.UpdateStatus(ctx, id, status, expectedVersion)
	if err != nil {
		if errors.Is(err, repository.ErrStaleVersion) {
			return nil, appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, appErrors.ErrConflict.Message)
		}
		s.logger.Error("update work item status failed", zap.Int64("id", id), zap.String("status", string(status)), zap.Error(err))
		return nil, notFoundOr(err, "data tidak ditemukan", "Gagal memperbarui status")
	}

	s.metrics.RecordStatusTransition(updated.Kind, status)
	s.revalidator.Revalidate(ctx, pagePath(updated.Kind))
	return updated, nil
}

// Move is a board drag-and-drop: the card is moved optimistically and put
// back when the status write fails. A rollback is reported in the response,
// not as an error.
func (s *WorkItemService) Move(ctx context.Context, kind models.WorkKind, req dto.MoveCardRequest, actor *models.JWTClaims) (*dto.MoveCardResponse, error) {
	if !kind.Valid() {
		return nil, invalidf("jenis tidak valid")
	}
	item, err := s.load(ctx, req.ItemID, actor)
	if err != nil {
		return nil, err
	}
	if item.Kind != kind {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "data tidak ditemukan")
	}

	columns := make([]string, 0, 4)
	for _, st := range models.StatusDomain(kind) {
		columns = append(columns, string(st))
	}
	board := kanban.NewBoard(columns, kanban.Card{ID: item.ID, Title: item.Title, Status: string(item.Status)})

	next, outcome, err := kanban.Move(ctx, board, item.ID, string(req.Target), func(ctx context.Context, e kanban.Event) error {
		_, err := s.SetStatus(ctx, e.ItemID, models.WorkStatus(e.To), nil, actor)
		return err
	}, kanban.WithNotice(fmt.Sprintf("%s %q", kanban.DefaultNotice, item.Title)))
	if err != nil {
		if errors.Is(err, kanban.ErrUnknownColumn) {
			return nil, invalidf("status tidak valid")
		}
		return nil, appErrors.Internal(err, "Gagal memperbarui status")
	}
	if outcome.RolledBack {
		s.logger.Warn("board move rolled back", zap.Int64("id", item.ID), zap.String("target", string(req.Target)), zap.Error(outcome.Err))
	}

	return &dto.MoveCardResponse{
		ItemID:     item.ID,
		Status:     models.WorkStatus(next.Cards[item.ID].Status),
		Changed:    outcome.Changed,
		RolledBack: outcome.RolledBack,
		Notice:     outcome.Notice,
	}, nil
}

// Board groups the scoped items of kind into status columns in domain order.
func (s *WorkItemService) Board(ctx context.Context, kind models.WorkKind, filter models.WorkItemFilter, actor *models.JWTClaims) (*dto.BoardResponse, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if !kind.Valid() {
		return nil, invalidf("jenis tidak valid")
	}
	filter.Kind = kind
	filter.Status = ""
	scopeFilter(&filter, actor)

	items, err := s.items.ListAll(ctx, filter)
	if err != nil {
		return nil, appErrors.Internal(err, "Gagal memuat data")
	}
	withProgress(items)

	domain := models.StatusDomain(kind)
	index := make(map[models.WorkStatus]int, len(domain))
	resp := &dto.BoardResponse{Kind: kind, Columns: make([]dto.BoardColumn, len(domain))}
	for i, st := range domain {
		index[st] = i
		resp.Columns[i] = dto.BoardColumn{Status: st, Items: []models.WorkItemSummary{}}
	}
	for _, it := range items {
		if i, ok := index[it.Status]; ok {
			resp.Columns[i].Items = append(resp.Columns[i].Items, it)
		}
	}
	return resp, nil
}

// Delete hard-deletes a program. Prokers are archived, never deleted.
func (s *WorkItemService) Delete(ctx context.Context, id int64, actor *models.JWTClaims) error {
	item, err := s.load(ctx, id, actor)
	if err != nil {
		return err
	}
	if item.Kind == models.WorkKindProker {
		return invalidf("proker tidak dapat dihapus, gunakan status archived")
	}
	if err := s.items.DeleteProgram(ctx, id); err != nil {
		s.logger.Error("delete program failed", zap.Int64("id", id), zap.Error(err))
		return notFoundOr(err, "data tidak ditemukan", "Gagal menghapus data")
	}
	s.revalidator.Revalidate(ctx, PathPrograms)
	return nil
}

// load fetches an item the actor is allowed to see.
func (s *WorkItemService) load(ctx context.Context, id int64, actor *models.JWTClaims) (*models.WorkItem, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "data tidak ditemukan", "Gagal memuat data")
	}
	if !actor.CanAccessDivision(item.DivisionID) {
		return nil, appErrors.ErrForbidden
	}
	return item, nil
}

func parseRange(rawStart string, rawEnd *string) (*time.Time, *time.Time, error) {
	start, err := dto.ParseDate(rawStart)
	if err != nil || start == nil {
		return nil, nil, invalidf("tanggal mulai tidak valid")
	}
	end, err := dto.ParseOptionalDate(rawEnd)
	if err != nil {
		return nil, nil, invalidf("tanggal selesai tidak valid")
	}
	if end != nil && end.Before(*start) {
		return nil, nil, invalidf("tanggal selesai harus setelah tanggal mulai")
	}
	return start, end, nil
}

func validateFilter(filter *models.WorkItemFilter) error {
	if filter.Kind != "" && !filter.Kind.Valid() {
		return invalidf("jenis tidak valid")
	}
	if filter.Status != "" && filter.Kind != "" && !models.InDomain(filter.Kind, filter.Status) {
		return invalidf("status tidak valid")
	}
	return nil
}

func scopeFilter(filter *models.WorkItemFilter, actor *models.JWTClaims) {
	if actor.Role.Elevated() {
		return
	}
	division := actor.DivisionID
	filter.DivisionID = &division
}

func withProgress(items []models.WorkItemSummary) {
	for i := range items {
		items[i].Progress = ComputeProgress(items[i].TaskTotal, items[i].TaskDone)
	}
}
