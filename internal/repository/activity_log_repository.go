package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/ormawa-api/internal/models"
)

// ActivityLogRepository appends and reads work item logs. Rows are never
// updated or deleted.
type ActivityLogRepository struct {
	db *sqlx.DB
}

// NewActivityLogRepository constructs the repository.
func NewActivityLogRepository(db *sqlx.DB) *ActivityLogRepository {
	return &ActivityLogRepository{db: db}
}

// Append inserts a log entry.
func (r *ActivityLogRepository) Append(ctx context.Context, entry *models.ActivityLog) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO activity_logs (work_item_id, created_by, notes, created_at) VALUES ($1, $2, $3, $4) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query, entry.WorkItemID, entry.CreatedBy, entry.Notes, entry.CreatedAt).Scan(&entry.ID); err != nil {
		return fmt.Errorf("append activity log: %w", err)
	}
	return nil
}

// ListByWorkItem returns logs newest first.
func (r *ActivityLogRepository) ListByWorkItem(ctx context.Context, workItemID int64) ([]models.ActivityLog, error) {
	logs := make([]models.ActivityLog, 0)
	const query = `SELECT id, work_item_id, created_by, notes, created_at FROM activity_logs
	WHERE work_item_id = $1 ORDER BY created_at DESC, id DESC`
	if err := r.db.SelectContext(ctx, &logs, query, workItemID); err != nil {
		return nil, fmt.Errorf("list activity logs: %w", err)
	}
	return logs, nil
}
