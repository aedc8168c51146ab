package service

import (
	"context"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/ormawa-api/internal/dto"
	"github.com/noah-isme/ormawa-api/internal/models"
	appErrors "github.com/noah-isme/ormawa-api/pkg/errors"
)

type brandKitRepository interface {
	Create(ctx context.Context, item *models.BrandKitItem) error
	GetByID(ctx context.Context, id int64) (*models.BrandKitItem, error)
	List(ctx context.Context, category models.BrandCategory) ([]models.BrandKitItem, error)
	Update(ctx context.Context, item *models.BrandKitItem) error
	Delete(ctx context.Context, id int64) error
}

type urlSigner interface {
	Generate(bucket, key string) (string, time.Time, error)
}

// BrandFile is an optional file attached to a brand kit entry.
type BrandFile struct {
	Name string
	Data []byte
}

// BrandKitService manages the official identity assets. Only elevated
// roles may change it.
type BrandKitService struct {
	repo         brandKitRepository
	storage      objectStore
	signer       urlSigner
	downloadBase string
	policy       UploadPolicy
	revalidator  *RevalidationService
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewBrandKitService wires the service. downloadBase is the route that
// redeems signed tokens, e.g. /files/download.
func NewBrandKitService(repo brandKitRepository, store objectStore, signer urlSigner, downloadBase string, policy UploadPolicy,
	revalidator *RevalidationService, validate *validator.Validate, logger *zap.Logger) *BrandKitService {
	return &BrandKitService{
		repo:         repo,
		storage:      store,
		signer:       signer,
		downloadBase: downloadBase,
		policy:       policy,
		revalidator:  revalidator,
		validator:    orValidator(validate),
		logger:       orNop(logger),
	}
}

// List returns entries, optionally of one category.
func (s *BrandKitService) List(ctx context.Context, category models.BrandCategory) ([]models.BrandKitItem, error) {
	if category != "" && !category.Valid() {
		return nil, invalidf("kategori tidak valid")
	}
	items, err := s.repo.List(ctx, category)
	if err != nil {
		return nil, appErrors.Internal(err, "Gagal memuat brand kit")
	}
	return items, nil
}

// Get returns one entry.
func (s *BrandKitService) Get(ctx context.Context, id int64) (*models.BrandKitItem, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "brand kit tidak ditemukan", "Gagal memuat brand kit")
	}
	return item, nil
}

// Create adds an entry. Colors need a value; other categories may carry a file.
func (s *BrandKitService) Create(ctx context.Context, req dto.CreateBrandKitRequest, file *BrandFile, actor *models.JWTClaims) (*models.BrandKitItem, error) {
	if err := requireElevated(actor); err != nil {
		return nil, err
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err)
	}
	if !req.Category.Valid() {
		return nil, invalidf("kategori tidak valid")
	}
	item := &models.BrandKitItem{
		Name:        req.Name,
		Category:    req.Category,
		Description: strings.TrimSpace(req.Description),
		Value:       trimmedOrNil(req.Value),
		CreatedBy:   actor.UserID,
	}
	if err := s.checkValue(item); err != nil {
		return nil, err
	}
	if file == nil && item.Value == nil {
		return nil, invalidf("file atau nilai wajib diisi")
	}

	var key string
	if file != nil {
		var err error
		if key, err = s.store(ctx, item, file); err != nil {
			return nil, err
		}
	}
	if err := s.repo.Create(ctx, item); err != nil {
		s.logger.Error("create brand kit item failed", zap.Error(err))
		s.discard(ctx, key)
		return nil, appErrors.Internal(err, "Gagal menyimpan brand kit")
	}
	s.revalidator.Revalidate(ctx, PathBrandKit)
	return item, nil
}

// Update edits an entry and optionally replaces its file.
func (s *BrandKitService) Update(ctx context.Context, id int64, req dto.UpdateBrandKitRequest, file *BrandFile, actor *models.JWTClaims) (*models.BrandKitItem, error) {
	if err := requireElevated(actor); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err)
	}
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		if item.Name = strings.TrimSpace(*req.Name); item.Name == "" {
			return nil, invalidf(appErrors.ErrValidation.Message)
		}
	}
	if req.Category != nil {
		if !req.Category.Valid() {
			return nil, invalidf("kategori tidak valid")
		}
		item.Category = *req.Category
	}
	if req.Description != nil {
		item.Description = strings.TrimSpace(*req.Description)
	}
	if req.Value != nil {
		item.Value = trimmedOrNil(req.Value)
	}
	if err := s.checkValue(item); err != nil {
		return nil, err
	}

	previous := item.StorageKey
	var key string
	if file != nil {
		if key, err = s.store(ctx, item, file); err != nil {
			return nil, err
		}
	}
	if err := s.repo.Update(ctx, item); err != nil {
		s.logger.Error("update brand kit item failed", zap.Int64("id", id), zap.Error(err))
		s.discard(ctx, key)
		return nil, notFoundOr(err, "brand kit tidak ditemukan", "Gagal menyimpan perubahan")
	}
	if key != "" && previous != nil {
		s.discard(ctx, *previous)
	}
	s.revalidator.Revalidate(ctx, PathBrandKit)
	return item, nil
}

// Delete hard-deletes an entry and its file.
func (s *BrandKitService) Delete(ctx context.Context, id int64, actor *models.JWTClaims) error {
	if err := requireElevated(actor); err != nil {
		return err
	}
	item, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("delete brand kit item failed", zap.Int64("id", id), zap.Error(err))
		return notFoundOr(err, "brand kit tidak ditemukan", "Gagal menghapus brand kit")
	}
	if item.StorageKey != nil {
		s.discard(ctx, *item.StorageKey)
	}
	s.revalidator.Revalidate(ctx, PathBrandKit)
	return nil
}

// Download returns the entry with a short-lived signed link to its file.
func (s *BrandKitService) Download(ctx context.Context, id int64, actor *models.JWTClaims) (*dto.BrandKitDownloadResponse, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	item, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.StorageKey == nil || s.signer == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "file tidak tersedia")
	}
	token, expires, err := s.signer.Generate(BucketBrandKit, *item.StorageKey)
	if err != nil {
		return nil, appErrors.Internal(err, "Gagal membuat tautan unduhan")
	}
	return &dto.BrandKitDownloadResponse{
		BrandKitItem: *item,
		DownloadURL:  s.downloadBase + "?token=" + url.QueryEscape(token),
		ExpiresAt:    expires.UTC().Format(time.RFC3339),
	}, nil
}

func (s *BrandKitService) store(ctx context.Context, item *models.BrandKitItem, file *BrandFile) (string, error) {
	if s.storage == nil {
		return "", appErrors.Clone(appErrors.ErrInternal, "penyimpanan file tidak tersedia")
	}
	mime, err := s.policy.Check(file.Data)
	if err != nil {
		return "", err
	}
	key := objectKey(string(item.Category), path.Base(file.Name))
	fileURL, err := s.storage.Upload(ctx, BucketBrandKit, key, file.Data)
	if err != nil {
		s.logger.Error("upload brand kit file failed", zap.Error(err))
		return "", appErrors.Internal(err, "Gagal mengunggah file")
	}
	item.StorageKey = &key
	item.FileURL = &fileURL
	item.MimeType = &mime
	return key, nil
}

func (s *BrandKitService) discard(ctx context.Context, key string) {
	if key == "" || s.storage == nil {
		return
	}
	if err := s.storage.Remove(ctx, BucketBrandKit, key); err != nil {
		s.logger.Warn("remove brand kit file failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *BrandKitService) checkValue(item *models.BrandKitItem) error {
	if item.Category != models.BrandColor {
		return nil
	}
	if item.Value == nil {
		return invalidf("kode warna wajib diisi")
	}
	if err := s.validator.Var(*item.Value, "hexcolor"); err != nil {
		return invalidf("kode warna tidak valid")
	}
	return nil
}

func requireElevated(actor *models.JWTClaims) error {
	if actor == nil {
		return appErrors.ErrUnauthorized
	}
	if !actor.Role.Elevated() {
		return appErrors.ErrForbidden
	}
	return nil
}
