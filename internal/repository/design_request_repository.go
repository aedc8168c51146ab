package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/ormawa-api/internal/models"
)

const designRequestColumns = `id, title, description, status, priority, deadline, requester_id, requester_division_id,
	assigned_to, attachment_url, deliverable_url, completed_at, created_at, updated_at`

// DesignRequestRepository persists design tickets and their comments.
type DesignRequestRepository struct {
	db *sqlx.DB
}

// NewDesignRequestRepository constructs the repository.
func NewDesignRequestRepository(db *sqlx.DB) *DesignRequestRepository {
	return &DesignRequestRepository{db: db}
}

// Create inserts a ticket.
func (r *DesignRequestRepository) Create(ctx context.Context, req *models.DesignRequest) error {
	now := time.Now().UTC()
	const query = `INSERT INTO design_requests (title, description, status, priority, deadline, requester_id, requester_division_id,
	assigned_to, attachment_url, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10) RETURNING id, created_at, updated_at`
	row := r.db.QueryRowxContext(ctx, query, req.Title, req.Description, req.Status, req.Priority, req.Deadline,
		req.RequesterID, req.RequesterDivisionID, req.AssignedTo, req.AttachmentURL, now)
	if err := row.Scan(&req.ID, &req.CreatedAt, &req.UpdatedAt); err != nil {
		return fmt.Errorf("create design request: %w", err)
	}
	return nil
}

// GetByID returns a ticket without comments or sql.ErrNoRows.
func (r *DesignRequestRepository) GetByID(ctx context.Context, id int64) (*models.DesignRequest, error) {
	var req models.DesignRequest
	if err := r.db.GetContext(ctx, &req, `SELECT `+designRequestColumns+` FROM design_requests WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &req, nil
}

// List returns a page of tickets, urgent and oldest first, with the total count.
func (r *DesignRequestRepository) List(ctx context.Context, filter models.DesignRequestFilter) ([]models.DesignRequest, int, error) {
	c := &conditions{}
	if filter.Status != "" {
		c.add("status = $%d", filter.Status)
	}
	if filter.Priority != "" {
		c.add("priority = $%d", filter.Priority)
	}
	if filter.AssignedTo != "" {
		c.add("assigned_to = $%d", filter.AssignedTo)
	}
	if filter.RequesterDivisionID != nil {
		c.add("requester_division_id = $%d", *filter.RequesterDivisionID)
	}
	if v := filter.VisibleTo; v != nil {
		c.args = append(c.args, v.DivisionID, v.UserID)
		c.raw(fmt.Sprintf("(requester_division_id = $%d OR assigned_to = $%d)", len(c.args)-1, len(c.args)))
	}
	limit, offset := pageWindow(filter.Page, filter.PageSize)

	query := fmt.Sprintf(`SELECT %s FROM design_requests%s
	ORDER BY CASE priority WHEN 'urgent' THEN 0 WHEN 'high' THEN 1 WHEN 'medium' THEN 2 ELSE 3 END, created_at ASC
	LIMIT %d OFFSET %d`, designRequestColumns, c.where(), limit, offset)
	items := make([]models.DesignRequest, 0)
	if err := r.db.SelectContext(ctx, &items, query, c.args...); err != nil {
		return nil, 0, fmt.Errorf("list design requests: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM design_requests"+c.where(), c.args...); err != nil {
		return nil, 0, fmt.Errorf("count design requests: %w", err)
	}
	return items, total, nil
}

// Update writes the editable fields.
func (r *DesignRequestRepository) Update(ctx context.Context, req *models.DesignRequest) error {
	req.UpdatedAt = time.Now().UTC()
	const query = `UPDATE design_requests SET title = $2, description = $3, priority = $4, deadline = $5, updated_at = $6 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, req.ID, req.Title, req.Description, req.Priority, req.Deadline, req.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update design request: %w", err)
	}
	return requireAffected(res, "design request update")
}

// UpdateStatus sets the status. A non-nil completedAt is stored; nil keeps
// whatever completion stamp the row already has.
func (r *DesignRequestRepository) UpdateStatus(ctx context.Context, id int64, status models.DesignStatus, completedAt *time.Time) error {
	const query = `UPDATE design_requests SET status = $2, completed_at = COALESCE($3, completed_at), updated_at = $4 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, status, completedAt, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update design request status: %w", err)
	}
	return requireAffected(res, "design request status")
}

// Assign sets the designer responsible for the ticket.
func (r *DesignRequestRepository) Assign(ctx context.Context, id int64, assignee string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE design_requests SET assigned_to = $2, updated_at = $3 WHERE id = $1`, id, assignee, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("assign design request: %w", err)
	}
	return requireAffected(res, "design request assign")
}

// SetDeliverable records the finished design URL.
func (r *DesignRequestRepository) SetDeliverable(ctx context.Context, id int64, url string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE design_requests SET deliverable_url = $2, updated_at = $3 WHERE id = $1`, id, url, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set design deliverable: %w", err)
	}
	return requireAffected(res, "design request deliverable")
}

// SetAttachment records the brief attachment URL.
func (r *DesignRequestRepository) SetAttachment(ctx context.Context, id int64, url string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE design_requests SET attachment_url = $2, updated_at = $3 WHERE id = $1`, id, url, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set design attachment: %w", err)
	}
	return requireAffected(res, "design request attachment")
}

// AddComment appends to a ticket thread.
func (r *DesignRequestRepository) AddComment(ctx context.Context, comment *models.DesignComment) error {
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO design_request_comments (request_id, author_id, message, attachment_url, created_at)
	VALUES ($1, $2, $3, $4, $5) RETURNING id`
	row := r.db.QueryRowxContext(ctx, query, comment.RequestID, comment.AuthorID, comment.Message, comment.AttachmentURL, comment.CreatedAt)
	if err := row.Scan(&comment.ID); err != nil {
		return fmt.Errorf("add design comment: %w", err)
	}
	return nil
}

// ListComments returns a thread oldest first.
func (r *DesignRequestRepository) ListComments(ctx context.Context, requestID int64) ([]models.DesignComment, error) {
	out := make([]models.DesignComment, 0)
	const query = `SELECT id, request_id, author_id, message, attachment_url, created_at FROM design_request_comments
	WHERE request_id = $1 ORDER BY created_at ASC, id ASC`
	if err := r.db.SelectContext(ctx, &out, query, requestID); err != nil {
		return nil, fmt.Errorf("list design comments: %w", err)
	}
	return out, nil
}
