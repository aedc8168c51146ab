package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/ormawa-api/internal/models"
)

// ParticipantRepository stores program membership rows.
type ParticipantRepository struct {
	db *sqlx.DB
}

// NewParticipantRepository constructs the repository.
func NewParticipantRepository(db *sqlx.DB) *ParticipantRepository {
	return &ParticipantRepository{db: db}
}

// Create inserts a participant. No uniqueness is enforced on (work_item_id, user_id).
func (r *ParticipantRepository) Create(ctx context.Context, p *models.Participant) error {
	if p.JoinedAt.IsZero() {
		p.JoinedAt = time.Now().UTC()
	}
	const query = `INSERT INTO participants (work_item_id, user_id, role, joined_at) VALUES ($1, $2, $3, $4) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query, p.WorkItemID, p.UserID, p.Role, p.JoinedAt).Scan(&p.ID); err != nil {
		return fmt.Errorf("create participant: %w", err)
	}
	return nil
}

// GetByID returns a participant or sql.ErrNoRows.
func (r *ParticipantRepository) GetByID(ctx context.Context, id int64) (*models.Participant, error) {
	var p models.Participant
	if err := r.db.GetContext(ctx, &p, `SELECT id, work_item_id, user_id, role, joined_at FROM participants WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListByWorkItem returns members in join order.
func (r *ParticipantRepository) ListByWorkItem(ctx context.Context, workItemID int64) ([]models.Participant, error) {
	out := make([]models.Participant, 0)
	const query = `SELECT id, work_item_id, user_id, role, joined_at FROM participants WHERE work_item_id = $1 ORDER BY joined_at ASC, id ASC`
	if err := r.db.SelectContext(ctx, &out, query, workItemID); err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	return out, nil
}

// Delete removes a participant row.
func (r *ParticipantRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM participants WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete participant: %w", err)
	}
	return requireAffected(res, "participant delete")
}
