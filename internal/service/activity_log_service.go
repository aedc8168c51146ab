package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/ormawa-api/internal/models"
	appErrors "github.com/noah-isme/ormawa-api/pkg/errors"
)

type activityLogRepository interface {
	activityLogAppender
	activityLogLister
}

// ActivityLogService exposes the append-only timeline of a work item.
type ActivityLogService struct {
	logs   activityLogRepository
	items  workItemReader
	logger *zap.Logger
}

// NewActivityLogService wires the service.
func NewActivityLogService(logs activityLogRepository, items workItemReader, logger *zap.Logger) *ActivityLogService {
	return &ActivityLogService{logs: logs, items: items, logger: orNop(logger)}
}

// Append adds a manual note.
func (s *ActivityLogService) Append(ctx context.Context, workItemID int64, notes string, actor *models.JWTClaims) (*models.ActivityLog, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	notes = strings.TrimSpace(notes)
	if notes == "" {
		return nil, invalidf(appErrors.ErrValidation.Message)
	}
	if err := s.authorize(ctx, workItemID, actor); err != nil {
		return nil, err
	}

	entry := &models.ActivityLog{WorkItemID: workItemID, CreatedBy: actor.UserID, Notes: notes}
	if err := s.logs.Append(ctx, entry); err != nil {
		s.logger.Error("append activity log failed", zap.Int64("work_item_id", workItemID), zap.Error(err))
		return nil, appErrors.Internal(err, "Gagal menambahkan log")
	}
	return entry, nil
}

// List returns the timeline newest first.
func (s *ActivityLogService) List(ctx context.Context, workItemID int64, actor *models.JWTClaims) ([]models.ActivityLog, error) {
	if err := s.authorize(ctx, workItemID, actor); err != nil {
		return nil, err
	}
	logs, err := s.logs.ListByWorkItem(ctx, workItemID)
	if err != nil {
		return nil, appErrors.Internal(err, "Gagal memuat log aktivitas")
	}
	return logs, nil
}

func (s *ActivityLogService) authorize(ctx context.Context, workItemID int64, actor *models.JWTClaims) error {
	if actor == nil {
		return appErrors.ErrUnauthorized
	}
	item, err := s.items.GetByID(ctx, workItemID)
	if err != nil {
		return notFoundOr(err, "data tidak ditemukan", "Gagal memuat data")
	}
	if !actor.CanAccessDivision(item.DivisionID) {
		return appErrors.ErrForbidden
	}
	return nil
}
