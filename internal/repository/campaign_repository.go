package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/ormawa-api/internal/models"
)

const campaignColumns = `id, title, description, platform, status, publish_at, program_id, division_id, cover_url, created_by, created_at, updated_at`

// CampaignRepository persists publication campaigns.
type CampaignRepository struct {
	db *sqlx.DB
}

// NewCampaignRepository constructs the repository.
func NewCampaignRepository(db *sqlx.DB) *CampaignRepository {
	return &CampaignRepository{db: db}
}

// Create inserts a campaign.
func (r *CampaignRepository) Create(ctx context.Context, c *models.Campaign) error {
	now := time.Now().UTC()
	const query = `INSERT INTO campaigns (title, description, platform, status, publish_at, program_id, division_id, cover_url, created_by, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10) RETURNING id, created_at, updated_at`
	row := r.db.QueryRowxContext(ctx, query, c.Title, c.Description, c.Platform, c.Status, c.PublishAt, c.ProgramID,
		c.DivisionID, c.CoverURL, c.CreatedBy, now)
	if err := row.Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return fmt.Errorf("create campaign: %w", err)
	}
	return nil
}

// GetByID returns a campaign or sql.ErrNoRows.
func (r *CampaignRepository) GetByID(ctx context.Context, id int64) (*models.Campaign, error) {
	var c models.Campaign
	if err := r.db.GetContext(ctx, &c, `SELECT `+campaignColumns+` FROM campaigns WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns a page of campaigns ordered by publish date.
func (r *CampaignRepository) List(ctx context.Context, filter models.CampaignFilter) ([]models.Campaign, int, error) {
	c := &conditions{}
	if filter.Status != "" {
		c.add("status = $%d", filter.Status)
	}
	if filter.Platform != "" {
		c.add("platform = $%d", filter.Platform)
	}
	if filter.ProgramID != nil {
		c.add("program_id = $%d", *filter.ProgramID)
	}
	if filter.DivisionID != nil {
		c.add("division_id = $%d", *filter.DivisionID)
	}
	limit, offset := pageWindow(filter.Page, filter.PageSize)

	query := fmt.Sprintf("SELECT %s FROM campaigns%s ORDER BY publish_at DESC NULLS LAST, id DESC LIMIT %d OFFSET %d", campaignColumns, c.where(), limit, offset)
	items := make([]models.Campaign, 0)
	if err := r.db.SelectContext(ctx, &items, query, c.args...); err != nil {
		return nil, 0, fmt.Errorf("list campaigns: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM campaigns"+c.where(), c.args...); err != nil {
		return nil, 0, fmt.Errorf("count campaigns: %w", err)
	}
	return items, total, nil
}

// Update writes the editable fields.
func (r *CampaignRepository) Update(ctx context.Context, c *models.Campaign) error {
	c.UpdatedAt = time.Now().UTC()
	const query = `UPDATE campaigns SET title = $2, description = $3, platform = $4, status = $5, publish_at = $6,
	program_id = $7, cover_url = $8, updated_at = $9 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, c.ID, c.Title, c.Description, c.Platform, c.Status, c.PublishAt,
		c.ProgramID, c.CoverURL, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update campaign: %w", err)
	}
	return requireAffected(res, "campaign update")
}

// Delete removes a campaign.
func (r *CampaignRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM campaigns WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete campaign: %w", err)
	}
	return requireAffected(res, "campaign delete")
}
