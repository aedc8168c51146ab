package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/ormawa-api/internal/models"
)

const brandKitColumns = `id, name, category, description, value, storage_key, file_url, mime_type, created_by, created_at, updated_at`

// BrandKitRepository persists brand identity assets.
type BrandKitRepository struct {
	db *sqlx.DB
}

// NewBrandKitRepository constructs the repository.
func NewBrandKitRepository(db *sqlx.DB) *BrandKitRepository {
	return &BrandKitRepository{db: db}
}

// Create inserts an entry.
func (r *BrandKitRepository) Create(ctx context.Context, item *models.BrandKitItem) error {
	now := time.Now().UTC()
	const query = `INSERT INTO brand_kit_items (name, category, description, value, storage_key, file_url, mime_type, created_by, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9) RETURNING id, created_at, updated_at`
	row := r.db.QueryRowxContext(ctx, query, item.Name, item.Category, item.Description, item.Value, item.StorageKey,
		item.FileURL, item.MimeType, item.CreatedBy, now)
	if err := row.Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt); err != nil {
		return fmt.Errorf("create brand kit item: %w", err)
	}
	return nil
}

// GetByID returns an entry or sql.ErrNoRows.
func (r *BrandKitRepository) GetByID(ctx context.Context, id int64) (*models.BrandKitItem, error) {
	var item models.BrandKitItem
	if err := r.db.GetContext(ctx, &item, `SELECT `+brandKitColumns+` FROM brand_kit_items WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &item, nil
}

// List returns entries, optionally of one category.
func (r *BrandKitRepository) List(ctx context.Context, category models.BrandCategory) ([]models.BrandKitItem, error) {
	c := &conditions{}
	if category != "" {
		c.add("category = $%d", category)
	}
	items := make([]models.BrandKitItem, 0)
	query := `SELECT ` + brandKitColumns + ` FROM brand_kit_items` + c.where() + ` ORDER BY category ASC, name ASC`
	if err := r.db.SelectContext(ctx, &items, query, c.args...); err != nil {
		return nil, fmt.Errorf("list brand kit: %w", err)
	}
	return items, nil
}

// Update writes the editable fields including file references.
func (r *BrandKitRepository) Update(ctx context.Context, item *models.BrandKitItem) error {
	item.UpdatedAt = time.Now().UTC()
	const query = `UPDATE brand_kit_items SET name = $2, category = $3, description = $4, value = $5, storage_key = $6,
	file_url = $7, mime_type = $8, updated_at = $9 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, item.ID, item.Name, item.Category, item.Description, item.Value,
		item.StorageKey, item.FileURL, item.MimeType, item.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update brand kit item: %w", err)
	}
	return requireAffected(res, "brand kit update")
}

// Delete hard-deletes an entry.
func (r *BrandKitRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM brand_kit_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete brand kit item: %w", err)
	}
	return requireAffected(res, "brand kit delete")
}
