package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/ormawa-api/internal/models"
)

const taskColumns = `id, work_item_id, title, status, deadline, assigned_user_id, created_at, updated_at`

// TaskRepository persists work item checklists.
type TaskRepository struct {
	db *sqlx.DB
}

// NewTaskRepository constructs the repository.
func NewTaskRepository(db *sqlx.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create inserts a task and fills id and timestamps.
func (r *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	now := time.Now().UTC()
	const query = `INSERT INTO tasks (work_item_id, title, status, deadline, assigned_user_id, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $6) RETURNING id, created_at, updated_at`
	row := r.db.QueryRowxContext(ctx, query, task.WorkItemID, task.Title, task.Status, task.Deadline, task.AssignedUserID, now)
	if err := row.Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt); err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// GetByID returns a task or sql.ErrNoRows.
func (r *TaskRepository) GetByID(ctx context.Context, id int64) (*models.Task, error) {
	var task models.Task
	if err := r.db.GetContext(ctx, &task, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &task, nil
}

// ListByWorkItem returns tasks in creation order.
func (r *TaskRepository) ListByWorkItem(ctx context.Context, workItemID int64) ([]models.Task, error) {
	tasks := make([]models.Task, 0)
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE work_item_id = $1 ORDER BY created_at ASC, id ASC`
	if err := r.db.SelectContext(ctx, &tasks, query, workItemID); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// UpdateStatus stores a new checklist state.
func (r *TaskRepository) UpdateStatus(ctx context.Context, id int64, status models.TaskStatus) error {
	res, err := r.db.ExecContext(ctx, `UPDATE tasks SET status = $2, updated_at = $3 WHERE id = $1`, id, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update task status: %w", err)
	}
	return requireAffected(res, "task status")
}

// Delete removes a task.
func (r *TaskRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return requireAffected(res, "task delete")
}

func requireAffected(res sql.Result, op string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check %s rows: %w", op, err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
