package service

import (
	"context"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/noah-isme/ormawa-api/internal/dto"
	"github.com/noah-isme/ormawa-api/internal/models"
	appErrors "github.com/noah-isme/ormawa-api/pkg/errors"
	"github.com/noah-isme/ormawa-api/pkg/storage"
)

type mediaRepository interface {
	CreatePending(ctx context.Context, asset *models.MediaAsset) error
	Finalize(ctx context.Context, id int64, fileURL string, thumbnailURL *string) error
	DeletePending(ctx context.Context, id int64) error
	GetByID(ctx context.Context, id int64) (*models.MediaAsset, error)
	List(ctx context.Context, filter models.MediaFilter) ([]models.MediaAsset, int, error)
	UpdateMeta(ctx context.Context, asset *models.MediaAsset) error
	SoftDelete(ctx context.Context, id int64, deletedAt time.Time) error
	ListStalePending(ctx context.Context, cutoff time.Time, limit int) ([]models.MediaAsset, error)
}

// MediaOptions tunes uploads.
type MediaOptions struct {
	Policy         UploadPolicy
	ThumbnailWidth int
}

// MediaService is the media library. Uploads are two-phase: a pending row
// is written first and only marked ready once the blob is stored.
type MediaService struct {
	repo        mediaRepository
	storage     objectStore
	revalidator *RevalidationService
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
	opts        MediaOptions
	now         func() time.Time
}

// NewMediaService wires the service.
func NewMediaService(repo mediaRepository, store objectStore, revalidator *RevalidationService, metrics *MetricsService,
	validate *validator.Validate, logger *zap.Logger, opts MediaOptions) *MediaService {
	return &MediaService{
		repo:        repo,
		storage:     store,
		revalidator: revalidator,
		metrics:     metrics,
		validator:   orValidator(validate),
		logger:      orNop(logger),
		opts:        opts,
		now:         time.Now,
	}
}

// MediaTypeFor maps a MIME type to a library type.
func MediaTypeFor(mime string) models.MediaType {
	switch {
	case strings.HasPrefix(mime, "image/"):
		return models.MediaImage
	case strings.HasPrefix(mime, "video/"):
		return models.MediaVideo
	case strings.HasPrefix(mime, "audio/"):
		return models.MediaAudio
	case mime == "application/pdf", strings.HasPrefix(mime, "text/"),
		strings.Contains(mime, "officedocument"), strings.Contains(mime, "msword"):
		return models.MediaDocument
	default:
		return models.MediaOther
	}
}

// Upload stores a file and registers it in the library.
func (s *MediaService) Upload(ctx context.Context, filename string, data []byte, req dto.UploadMediaRequest, actor *models.JWTClaims) (*models.MediaAsset, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	mime, err := s.opts.Policy.Check(data)
	if err != nil {
		s.metrics.RecordUpload("rejected")
		return nil, err
	}
	division, err := ownDivision(req.DivisionID, actor)
	if err != nil {
		return nil, err
	}

	filename = path.Base(strings.TrimSpace(filename))
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = strings.TrimSuffix(filename, path.Ext(filename))
	}
	key := objectKey(s.now().UTC().Format("2006/01"), filename)
	asset := &models.MediaAsset{
		Title:      title,
		FileName:   filename,
		StorageKey: key,
		MimeType:   mime,
		SizeBytes:  int64(len(data)),
		Type:       MediaTypeFor(mime),
		Folder:     strings.Trim(strings.TrimSpace(req.Folder), "/"),
		Tags:       normalizeTags(req.Tags),
		UploadedBy: actor.UserID,
		ProgramID:  req.ProgramID,
		DivisionID: division,
	}

	if err := s.repo.CreatePending(ctx, asset); err != nil {
		s.metrics.RecordUpload("failed")
		s.logger.Error("create pending media failed", zap.Error(err))
		return nil, appErrors.Internal(err, "Gagal menyimpan media")
	}

	url, err := s.storage.Upload(ctx, BucketMedia, key, data)
	if err != nil {
		s.metrics.RecordUpload("failed")
		s.logger.Error("upload media blob failed", zap.Int64("id", asset.ID), zap.Error(err))
		if delErr := s.repo.DeletePending(ctx, asset.ID); delErr != nil {
			s.logger.Warn("delete pending media failed", zap.Int64("id", asset.ID), zap.Error(delErr))
		}
		return nil, appErrors.Internal(err, "Gagal mengunggah file")
	}

	thumbURL, thumbKey := s.thumbnail(ctx, asset, data)

	if err := s.repo.Finalize(ctx, asset.ID, url, thumbURL); err != nil {
		s.metrics.RecordUpload("failed")
		s.logger.Error("finalize media failed", zap.Int64("id", asset.ID), zap.String("key", key), zap.Error(err))
		if thumbKey != "" {
			_ = s.storage.Remove(ctx, BucketMedia, thumbKey)
		}
		if rmErr := s.storage.Remove(ctx, BucketMedia, key); rmErr != nil {
			s.logger.Error("media blob orphaned", zap.Int64("id", asset.ID), zap.String("key", key), zap.Error(rmErr))
			return nil, appErrors.Wrap(err, appErrors.ErrOrphanedUpload.Code, appErrors.ErrOrphanedUpload.Status, appErrors.ErrOrphanedUpload.Message)
		}
		if delErr := s.repo.DeletePending(ctx, asset.ID); delErr != nil {
			s.logger.Warn("delete pending media failed", zap.Int64("id", asset.ID), zap.Error(delErr))
		}
		return nil, appErrors.Internal(err, "Gagal menyimpan media")
	}

	asset.Status = models.MediaReady
	asset.FileURL = url
	asset.ThumbnailURL = thumbURL
	s.metrics.RecordUpload("ok")
	s.revalidator.Revalidate(ctx, PathMedia)
	return asset, nil
}

func (s *MediaService) thumbnail(ctx context.Context, asset *models.MediaAsset, data []byte) (*string, string) {
	if asset.Type != models.MediaImage || asset.MimeType == mimeSVG || s.opts.ThumbnailWidth <= 0 {
		return nil, ""
	}
	thumb, err := storage.Thumbnail(data, s.opts.ThumbnailWidth)
	if err != nil {
		s.logger.Warn("generate thumbnail failed", zap.Int64("id", asset.ID), zap.Error(err))
		return nil, ""
	}
	key := storage.ThumbnailKey(asset.StorageKey)
	url, err := s.storage.Upload(ctx, BucketMedia, key, thumb)
	if err != nil {
		s.logger.Warn("upload thumbnail failed", zap.Int64("id", asset.ID), zap.Error(err))
		return nil, ""
	}
	return &url, key
}

// Get returns a ready asset.
func (s *MediaService) Get(ctx context.Context, id int64) (*models.MediaAsset, error) {
	asset, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "media tidak ditemukan", "Gagal memuat media")
	}
	if asset.Status != models.MediaReady {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "media tidak ditemukan")
	}
	return asset, nil
}

// List returns ready assets matching filter.
func (s *MediaService) List(ctx context.Context, filter models.MediaFilter) ([]models.MediaAsset, *models.Pagination, error) {
	if filter.Type != "" && !filter.Type.Valid() {
		return nil, nil, invalidf("tipe media tidak valid")
	}
	filter.Tag = strings.ToLower(strings.TrimSpace(filter.Tag))
	filter.Folder = strings.Trim(strings.TrimSpace(filter.Folder), "/")

	start := time.Now()
	items, total, err := s.repo.List(ctx, filter)
	s.metrics.ObserveDBQuery("media.list", time.Since(start))
	if err != nil {
		return nil, nil, appErrors.Internal(err, "Gagal memuat media")
	}
	page, size, _ := models.NormalizePage(filter.Page, filter.PageSize)
	return items, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Update edits title, folder or tags.
func (s *MediaService) Update(ctx context.Context, id int64, req dto.UpdateMediaRequest, actor *models.JWTClaims) (*models.MediaAsset, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err)
	}
	asset, err := s.manageable(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		if asset.Title = strings.TrimSpace(*req.Title); asset.Title == "" {
			return nil, invalidf(appErrors.ErrValidation.Message)
		}
	}
	if req.Folder != nil {
		asset.Folder = strings.Trim(strings.TrimSpace(*req.Folder), "/")
	}
	if req.Tags != nil {
		asset.Tags = normalizeTags(*req.Tags)
	}
	if err := s.repo.UpdateMeta(ctx, asset); err != nil {
		s.logger.Error("update media failed", zap.Int64("id", id), zap.Error(err))
		return nil, notFoundOr(err, "media tidak ditemukan", "Gagal menyimpan perubahan")
	}
	s.revalidator.Revalidate(ctx, PathMedia)
	return asset, nil
}

// Delete soft-deletes an asset. The blob is kept.
func (s *MediaService) Delete(ctx context.Context, id int64, actor *models.JWTClaims) error {
	if actor == nil {
		return appErrors.ErrUnauthorized
	}
	if _, err := s.manageable(ctx, id, actor); err != nil {
		return err
	}
	if err := s.repo.SoftDelete(ctx, id, s.now().UTC()); err != nil {
		s.logger.Error("delete media failed", zap.Int64("id", id), zap.Error(err))
		return notFoundOr(err, "media tidak ditemukan", "Gagal menghapus media")
	}
	s.revalidator.Revalidate(ctx, PathMedia)
	return nil
}

// manageable loads an asset the actor may edit: elevated roles, the
// uploader, or members of the owning division.
func (s *MediaService) manageable(ctx context.Context, id int64, actor *models.JWTClaims) (*models.MediaAsset, error) {
	asset, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role.Elevated() || asset.UploadedBy == actor.UserID {
		return asset, nil
	}
	if asset.DivisionID != nil && actor.CanAccessDivision(*asset.DivisionID) {
		return asset, nil
	}
	return nil, appErrors.ErrForbidden
}

// ownDivision resolves the division a new catalog row belongs to.
func ownDivision(requested *int64, actor *models.JWTClaims) (*int64, error) {
	if actor.Role.Elevated() {
		return requested, nil
	}
	if requested != nil && *requested != actor.DivisionID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "tidak dapat membuat untuk divisi lain")
	}
	division := actor.DivisionID
	return &division, nil
}

func normalizeTags(tags []string) pq.StringArray {
	seen := make(map[string]struct{}, len(tags))
	out := pq.StringArray{}
	for _, tag := range tags {
		for _, part := range strings.Split(tag, ",") {
			part = strings.ToLower(strings.TrimSpace(part))
			if part == "" {
				continue
			}
			if _, dup := seen[part]; dup {
				continue
			}
			seen[part] = struct{}{}
			out = append(out, part)
		}
	}
	sort.Strings(out)
	return out
}
