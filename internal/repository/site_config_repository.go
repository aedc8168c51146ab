package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/ormawa-api/internal/models"
)

const siteConfigColumns = `id, section, key, value, type, label, description, sort_order, updated_by, updated_at`

// SiteConfigRepository stores CMS overrides keyed by (section, key).
type SiteConfigRepository struct {
	db *sqlx.DB
}

// NewSiteConfigRepository constructs the repository.
func NewSiteConfigRepository(db *sqlx.DB) *SiteConfigRepository {
	return &SiteConfigRepository{db: db}
}

// Get returns one row or sql.ErrNoRows.
func (r *SiteConfigRepository) Get(ctx context.Context, section, key string) (*models.SiteConfig, error) {
	var cfg models.SiteConfig
	query := `SELECT ` + siteConfigColumns + ` FROM site_config WHERE section = $1 AND key = $2`
	if err := r.db.GetContext(ctx, &cfg, query, section, key); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ListSection returns every stored row of a section.
func (r *SiteConfigRepository) ListSection(ctx context.Context, section string) ([]models.SiteConfig, error) {
	rows := make([]models.SiteConfig, 0)
	query := `SELECT ` + siteConfigColumns + ` FROM site_config WHERE section = $1 ORDER BY sort_order ASC, key ASC`
	if err := r.db.SelectContext(ctx, &rows, query, section); err != nil {
		return nil, fmt.Errorf("list site config section: %w", err)
	}
	return rows, nil
}

// ListSections returns the distinct stored section names.
func (r *SiteConfigRepository) ListSections(ctx context.Context) ([]string, error) {
	sections := make([]string, 0)
	if err := r.db.SelectContext(ctx, &sections, `SELECT DISTINCT section FROM site_config ORDER BY section`); err != nil {
		return nil, fmt.Errorf("list site config sections: %w", err)
	}
	return sections, nil
}

// Insert stores a new row.
func (r *SiteConfigRepository) Insert(ctx context.Context, cfg *models.SiteConfig) error {
	if cfg.UpdatedAt.IsZero() {
		cfg.UpdatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO site_config (section, key, value, type, label, description, sort_order, updated_by, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) RETURNING id`
	row := r.db.QueryRowxContext(ctx, query, cfg.Section, cfg.Key, cfg.Value, cfg.Type, cfg.Label, cfg.Description,
		cfg.SortOrder, cfg.UpdatedBy, cfg.UpdatedAt)
	if err := row.Scan(&cfg.ID); err != nil {
		return fmt.Errorf("insert site config %s.%s: %w", cfg.Section, cfg.Key, err)
	}
	return nil
}

// UpdateValue overwrites the value of an existing row by id.
func (r *SiteConfigRepository) UpdateValue(ctx context.Context, id int64, value string, typ models.ConfigType, updatedBy string, updatedAt time.Time) error {
	const query = `UPDATE site_config SET value = $2, type = $3, updated_by = $4, updated_at = $5 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, value, typ, updatedBy, updatedAt)
	if err != nil {
		return fmt.Errorf("update site config %d: %w", id, err)
	}
	return requireAffected(res, "site config update")
}
