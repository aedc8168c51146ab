package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/ormawa-api/internal/models"
)

const mediaColumns = `id, title, file_name, storage_key, file_url, thumbnail_url, mime_type, size_bytes, type, folder, tags,
	status, uploaded_by, program_id, division_id, created_at, updated_at, deleted_at`

// MediaRepository persists the media library.
type MediaRepository struct {
	db *sqlx.DB
}

// NewMediaRepository constructs the repository.
func NewMediaRepository(db *sqlx.DB) *MediaRepository {
	return &MediaRepository{db: db}
}

// CreatePending inserts a row whose blob has not been confirmed yet.
func (r *MediaRepository) CreatePending(ctx context.Context, asset *models.MediaAsset) error {
	now := time.Now().UTC()
	asset.Status = models.MediaPending
	if asset.Tags == nil {
		asset.Tags = pq.StringArray{}
	}
	const query = `INSERT INTO media_assets (title, file_name, storage_key, file_url, mime_type, size_bytes, type, folder, tags,
	status, uploaded_by, program_id, division_id, created_at, updated_at)
	VALUES ($1, $2, $3, '', $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $13)
	RETURNING id, created_at, updated_at`
	row := r.db.QueryRowxContext(ctx, query, asset.Title, asset.FileName, asset.StorageKey, asset.MimeType, asset.SizeBytes,
		asset.Type, asset.Folder, asset.Tags, asset.Status, asset.UploadedBy, asset.ProgramID, asset.DivisionID, now)
	if err := row.Scan(&asset.ID, &asset.CreatedAt, &asset.UpdatedAt); err != nil {
		return fmt.Errorf("create pending media: %w", err)
	}
	return nil
}

// Finalize marks a pending row ready with its public URLs.
func (r *MediaRepository) Finalize(ctx context.Context, id int64, fileURL string, thumbnailURL *string) error {
	const query = `UPDATE media_assets SET status = 'ready', file_url = $2, thumbnail_url = $3, updated_at = $4
	WHERE id = $1 AND status = 'pending'`
	res, err := r.db.ExecContext(ctx, query, id, fileURL, thumbnailURL, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("finalize media: %w", err)
	}
	return requireAffected(res, "media finalize")
}

// DeletePending hard-deletes a row that never became ready.
func (r *MediaRepository) DeletePending(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM media_assets WHERE id = $1 AND status = 'pending'`, id)
	if err != nil {
		return fmt.Errorf("delete pending media: %w", err)
	}
	return requireAffected(res, "pending media delete")
}

// GetByID returns a non-deleted asset or sql.ErrNoRows.
func (r *MediaRepository) GetByID(ctx context.Context, id int64) (*models.MediaAsset, error) {
	var asset models.MediaAsset
	query := `SELECT ` + mediaColumns + ` FROM media_assets WHERE id = $1 AND deleted_at IS NULL`
	if err := r.db.GetContext(ctx, &asset, query, id); err != nil {
		return nil, err
	}
	return &asset, nil
}

// List returns ready, non-deleted assets newest first with the total count.
func (r *MediaRepository) List(ctx context.Context, filter models.MediaFilter) ([]models.MediaAsset, int, error) {
	c := &conditions{}
	c.raw("deleted_at IS NULL")
	c.raw("status = 'ready'")
	if filter.Folder != "" {
		c.add("folder = $%d", filter.Folder)
	}
	if filter.Tag != "" {
		c.add("$%d = ANY(tags)", filter.Tag)
	}
	if filter.Type != "" {
		c.add("type = $%d", filter.Type)
	}
	if filter.ProgramID != nil {
		c.add("program_id = $%d", *filter.ProgramID)
	}
	if filter.DivisionID != nil {
		c.add("division_id = $%d", *filter.DivisionID)
	}
	if filter.Search != "" {
		c.add("(LOWER(title) LIKE $%[1]d OR LOWER(file_name) LIKE $%[1]d)", likePattern(filter.Search))
	}
	limit, offset := pageWindow(filter.Page, filter.PageSize)

	query := fmt.Sprintf("SELECT %s FROM media_assets%s ORDER BY created_at DESC, id DESC LIMIT %d OFFSET %d", mediaColumns, c.where(), limit, offset)
	items := make([]models.MediaAsset, 0)
	if err := r.db.SelectContext(ctx, &items, query, c.args...); err != nil {
		return nil, 0, fmt.Errorf("list media: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM media_assets"+c.where(), c.args...); err != nil {
		return nil, 0, fmt.Errorf("count media: %w", err)
	}
	return items, total, nil
}

// UpdateMeta writes title, folder and tags.
func (r *MediaRepository) UpdateMeta(ctx context.Context, asset *models.MediaAsset) error {
	asset.UpdatedAt = time.Now().UTC()
	const query = `UPDATE media_assets SET title = $2, folder = $3, tags = $4, updated_at = $5 WHERE id = $1 AND deleted_at IS NULL`
	res, err := r.db.ExecContext(ctx, query, asset.ID, asset.Title, asset.Folder, asset.Tags, asset.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update media: %w", err)
	}
	return requireAffected(res, "media update")
}

// SoftDelete hides an asset from listings.
func (r *MediaRepository) SoftDelete(ctx context.Context, id int64, deletedAt time.Time) error {
	res, err := r.db.ExecContext(ctx, `UPDATE media_assets SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL`, id, deletedAt)
	if err != nil {
		return fmt.Errorf("soft delete media: %w", err)
	}
	return requireAffected(res, "media delete")
}

// ListStalePending returns pending rows created before cutoff.
func (r *MediaRepository) ListStalePending(ctx context.Context, cutoff time.Time, limit int) ([]models.MediaAsset, error) {
	if limit <= 0 {
		limit = 500
	}
	query := fmt.Sprintf(`SELECT %s FROM media_assets WHERE status = 'pending' AND created_at < $1 ORDER BY created_at ASC LIMIT %d`, mediaColumns, limit)
	items := make([]models.MediaAsset, 0)
	if err := r.db.SelectContext(ctx, &items, query, cutoff); err != nil {
		return nil, fmt.Errorf("list stale pending media: %w", err)
	}
	return items, nil
}
