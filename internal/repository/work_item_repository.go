package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/ormawa-api/internal/models"
)

// ErrStaleVersion is returned when a conditional status write loses the race.
var ErrStaleVersion = errors.New("work item version mismatch")

const workItemColumns = `id, kind, title, description, location, start_date, end_date, status, division_id, pic_user_id, version, created_at, updated_at`

// WorkItemRepository persists programs and prokers in the work_items table.
type WorkItemRepository struct {
	db *sqlx.DB
}

// NewWorkItemRepository constructs the repository.
func NewWorkItemRepository(db *sqlx.DB) *WorkItemRepository {
	return &WorkItemRepository{db: db}
}

// Create inserts item and fills its generated fields.
func (r *WorkItemRepository) Create(ctx context.Context, item *models.WorkItem) error {
	now := time.Now().UTC()
	const query = `INSERT INTO work_items (kind, title, description, location, start_date, end_date, status, division_id, pic_user_id, version, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 1, $10, $10)
	RETURNING id, version, created_at, updated_at`
	row := r.db.QueryRowxContext(ctx, query,
		item.Kind, item.Title, item.Description, item.Location, item.StartDate, item.EndDate,
		item.Status, item.DivisionID, item.PICUserID, now)
	if err := row.Scan(&item.ID, &item.Version, &item.CreatedAt, &item.UpdatedAt); err != nil {
		return fmt.Errorf("create work item: %w", err)
	}
	return nil
}

// GetByID returns a single item or sql.ErrNoRows.
func (r *WorkItemRepository) GetByID(ctx context.Context, id int64) (*models.WorkItem, error) {
	query := `SELECT ` + workItemColumns + ` FROM work_items WHERE id = $1`
	var item models.WorkItem
	if err := r.db.GetContext(ctx, &item, query, id); err != nil {
		return nil, err
	}
	return &item, nil
}

func workItemConditions(filter models.WorkItemFilter) *conditions {
	c := &conditions{}
	if filter.Kind != "" {
		c.add("w.kind = $%d", filter.Kind)
	}
	if filter.Status != "" {
		c.add("w.status = $%d", filter.Status)
	}
	if filter.DivisionID != nil {
		c.add("w.division_id = $%d", *filter.DivisionID)
	}
	if filter.From != nil {
		c.add("COALESCE(w.end_date, w.start_date) >= $%d", *filter.From)
	}
	if filter.To != nil {
		c.add("w.start_date <= $%d", *filter.To)
	}
	if filter.Search != "" {
		c.add("(LOWER(w.title) LIKE $%[1]d OR LOWER(w.description) LIKE $%[1]d)", likePattern(filter.Search))
	}
	return c
}

const workItemSummarySelect = `SELECT w.id, w.kind, w.title, w.description, w.location, w.start_date, w.end_date, w.status,
	w.division_id, w.pic_user_id, w.version, w.created_at, w.updated_at,
	COALESCE(t.total, 0) AS task_total, COALESCE(t.done, 0) AS task_done
	FROM work_items w
	LEFT JOIN (
		SELECT work_item_id, COUNT(*) AS total, COUNT(*) FILTER (WHERE status = 'done') AS done
		FROM tasks GROUP BY work_item_id
	) t ON t.work_item_id = w.id`

// List returns a page of summaries with task counts and the total row count.
func (r *WorkItemRepository) List(ctx context.Context, filter models.WorkItemFilter) ([]models.WorkItemSummary, int, error) {
	c := workItemConditions(filter)
	limit, offset := pageWindow(filter.Page, filter.PageSize)

	query := fmt.Sprintf("%s%s ORDER BY w.start_date DESC, w.id DESC LIMIT %d OFFSET %d", workItemSummarySelect, c.where(), limit, offset)
	items := make([]models.WorkItemSummary, 0)
	if err := r.db.SelectContext(ctx, &items, query, c.args...); err != nil {
		return nil, 0, fmt.Errorf("list work items: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM work_items w"+c.where(), c.args...); err != nil {
		return nil, 0, fmt.Errorf("count work items: %w", err)
	}
	return items, total, nil
}

// ListAll returns every matching summary without paging, for boards and exports.
func (r *WorkItemRepository) ListAll(ctx context.Context, filter models.WorkItemFilter) ([]models.WorkItemSummary, error) {
	c := workItemConditions(filter)
	query := workItemSummarySelect + c.where() + " ORDER BY w.start_date ASC, w.id ASC"
	items := make([]models.WorkItemSummary, 0)
	if err := r.db.SelectContext(ctx, &items, query, c.args...); err != nil {
		return nil, fmt.Errorf("list all work items: %w", err)
	}
	return items, nil
}

// Update writes the editable fields and bumps the version.
func (r *WorkItemRepository) Update(ctx context.Context, item *models.WorkItem) error {
	const query = `UPDATE work_items SET title = $2, description = $3, location = $4, start_date = $5, end_date = $6,
	pic_user_id = $7, version = version + 1, updated_at = $8
	WHERE id = $1 RETURNING version, updated_at`
	row := r.db.QueryRowxContext(ctx, query, item.ID, item.Title, item.Description, item.Location,
		item.StartDate, item.EndDate, item.PICUserID, time.Now().UTC())
	if err := row.Scan(&item.Version, &item.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return err
		}
		return fmt.Errorf("update work item: %w", err)
	}
	return nil
}

// UpdateStatus sets the status. When expectedVersion is set the write only
// applies if the row still carries that version, otherwise ErrStaleVersion.
func (r *WorkItemRepository) UpdateStatus(ctx context.Context, id int64, status models.WorkStatus, expectedVersion *int) (*models.WorkItem, error) {
	args := []interface{}{id, status, time.Now().UTC()}
	query := `UPDATE work_items SET status = $2, version = version + 1, updated_at = $3 WHERE id = $1`
	if expectedVersion != nil {
		args = append(args, *expectedVersion)
		query += ` AND version = $4`
	}
	query += ` RETURNING ` + workItemColumns

	var item models.WorkItem
	err := r.db.GetContext(ctx, &item, query, args...)
	if err == nil {
		return &item, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("update work item status: %w", err)
	}
	if expectedVersion == nil {
		return nil, sql.ErrNoRows
	}

	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM work_items WHERE id = $1)`, id); err != nil {
		return nil, fmt.Errorf("check work item: %w", err)
	}
	if exists {
		return nil, ErrStaleVersion
	}
	return nil, sql.ErrNoRows
}

// DeleteProgram removes a program with its sub-entities. Prokers never match.
func (r *WorkItemRepository) DeleteProgram(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM work_items WHERE id = $1 AND kind = 'program'`, id)
	if err != nil {
		return fmt.Errorf("delete program: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check program delete rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
