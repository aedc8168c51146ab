package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/ormawa-api/internal/dto"
	"github.com/noah-isme/ormawa-api/internal/models"
	appErrors "github.com/noah-isme/ormawa-api/pkg/errors"
)

type campaignRepository interface {
	Create(ctx context.Context, c *models.Campaign) error
	GetByID(ctx context.Context, id int64) (*models.Campaign, error)
	List(ctx context.Context, filter models.CampaignFilter) ([]models.Campaign, int, error)
	Update(ctx context.Context, c *models.Campaign) error
	Delete(ctx context.Context, id int64) error
}

// CampaignService plans publications.
type CampaignService struct {
	repo        campaignRepository
	items       workItemReader
	revalidator *RevalidationService
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewCampaignService wires the service. items resolves linked programs and may be nil.
func NewCampaignService(repo campaignRepository, items workItemReader, revalidator *RevalidationService, validate *validator.Validate, logger *zap.Logger) *CampaignService {
	return &CampaignService{repo: repo, items: items, revalidator: revalidator, validator: orValidator(validate), logger: orNop(logger)}
}

// List returns a page of campaigns.
func (s *CampaignService) List(ctx context.Context, filter models.CampaignFilter) ([]models.Campaign, *models.Pagination, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, nil, invalidf("status tidak valid")
	}
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "Gagal memuat kampanye")
	}
	page, size, _ := models.NormalizePage(filter.Page, filter.PageSize)
	return items, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns one campaign.
func (s *CampaignService) Get(ctx context.Context, id int64) (*models.Campaign, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "kampanye tidak ditemukan", "Gagal memuat kampanye")
	}
	return c, nil
}

// Create plans a campaign. A scheduled campaign needs a publish date.
func (s *CampaignService) Create(ctx context.Context, req dto.CreateCampaignRequest, actor *models.JWTClaims) (*models.Campaign, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Platform = strings.TrimSpace(req.Platform)
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err)
	}
	division, err := ownDivision(req.DivisionID, actor)
	if err != nil {
		return nil, err
	}
	publishAt, err := dto.ParseOptionalDate(req.PublishAt)
	if err != nil {
		return nil, invalidf("tanggal publikasi tidak valid")
	}
	c := &models.Campaign{
		Title:       req.Title,
		Description: strings.TrimSpace(req.Description),
		Platform:    strings.ToLower(req.Platform),
		Status:      req.Status,
		PublishAt:   publishAt,
		ProgramID:   req.ProgramID,
		DivisionID:  division,
		CoverURL:    trimmedOrNil(req.CoverURL),
		CreatedBy:   actor.UserID,
	}
	if c.Status == "" {
		c.Status = models.CampaignDraft
	}
	if err := s.check(ctx, c, actor); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, c); err != nil {
		s.logger.Error("create campaign failed", zap.Error(err))
		return nil, appErrors.Internal(err, "Gagal menyimpan kampanye")
	}
	s.revalidator.Revalidate(ctx, PathCampaigns)
	return c, nil
}

// Update edits a campaign.
func (s *CampaignService) Update(ctx context.Context, id int64, req dto.UpdateCampaignRequest, actor *models.JWTClaims) (*models.Campaign, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err)
	}
	c, err := s.manageable(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		if c.Title = strings.TrimSpace(*req.Title); c.Title == "" {
			return nil, invalidf(appErrors.ErrValidation.Message)
		}
	}
	if req.Description != nil {
		c.Description = strings.TrimSpace(*req.Description)
	}
	if req.Platform != nil {
		if c.Platform = strings.ToLower(strings.TrimSpace(*req.Platform)); c.Platform == "" {
			return nil, invalidf(appErrors.ErrValidation.Message)
		}
	}
	if req.Status != nil {
		c.Status = *req.Status
	}
	if req.PublishAt != nil {
		if c.PublishAt, err = dto.ParseDate(*req.PublishAt); err != nil {
			return nil, invalidf("tanggal publikasi tidak valid")
		}
	}
	if req.ProgramID != nil {
		c.ProgramID = req.ProgramID
		if *req.ProgramID == 0 {
			c.ProgramID = nil
		}
	}
	if req.CoverURL != nil {
		c.CoverURL = trimmedOrNil(req.CoverURL)
	}
	if err := s.check(ctx, c, actor); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, c); err != nil {
		s.logger.Error("update campaign failed", zap.Int64("id", id), zap.Error(err))
		return nil, notFoundOr(err, "kampanye tidak ditemukan", "Gagal menyimpan perubahan")
	}
	s.revalidator.Revalidate(ctx, PathCampaigns)
	return c, nil
}

// Delete removes a campaign.
func (s *CampaignService) Delete(ctx context.Context, id int64, actor *models.JWTClaims) error {
	if actor == nil {
		return appErrors.ErrUnauthorized
	}
	if _, err := s.manageable(ctx, id, actor); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("delete campaign failed", zap.Int64("id", id), zap.Error(err))
		return notFoundOr(err, "kampanye tidak ditemukan", "Gagal menghapus kampanye")
	}
	s.revalidator.Revalidate(ctx, PathCampaigns)
	return nil
}

func (s *CampaignService) check(ctx context.Context, c *models.Campaign, actor *models.JWTClaims) error {
	if !c.Status.Valid() {
		return invalidf("status tidak valid")
	}
	if c.Status == models.CampaignScheduled && c.PublishAt == nil {
		return invalidf("kampanye terjadwal membutuhkan tanggal publikasi")
	}
	if c.ProgramID == nil || s.items == nil {
		return nil
	}
	program, err := s.items.GetByID(ctx, *c.ProgramID)
	if err != nil {
		return notFoundOr(err, "program tidak ditemukan", "Gagal memuat program")
	}
	if program.Kind != models.WorkKindProgram {
		return invalidf("kampanye hanya dapat ditautkan ke program")
	}
	if !actor.CanAccessDivision(program.DivisionID) {
		return appErrors.ErrForbidden
	}
	return nil
}

func (s *CampaignService) manageable(ctx context.Context, id int64, actor *models.JWTClaims) (*models.Campaign, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role.Elevated() || c.CreatedBy == actor.UserID {
		return c, nil
	}
	if c.DivisionID != nil && actor.CanAccessDivision(*c.DivisionID) {
		return c, nil
	}
	return nil, appErrors.ErrForbidden
}
