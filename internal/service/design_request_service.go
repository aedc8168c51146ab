package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/ormawa-api/internal/dto"
	"github.com/noah-isme/ormawa-api/internal/models"
	appErrors "github.com/noah-isme/ormawa-api/pkg/errors"
)

type designRequestRepository interface {
	Create(ctx context.Context, req *models.DesignRequest) error
	GetByID(ctx context.Context, id int64) (*models.DesignRequest, error)
	List(ctx context.Context, filter models.DesignRequestFilter) ([]models.DesignRequest, int, error)
	Update(ctx context.Context, req *models.DesignRequest) error
	UpdateStatus(ctx context.Context, id int64, status models.DesignStatus, completedAt *time.Time) error
	Assign(ctx context.Context, id int64, assignee string) error
	SetDeliverable(ctx context.Context, id int64, url string) error
	SetAttachment(ctx context.Context, id int64, url string) error
	AddComment(ctx context.Context, comment *models.DesignComment) error
	ListComments(ctx context.Context, requestID int64) ([]models.DesignComment, error)
}

// objectLocator maps a URL issued by the object store back to its object.
type objectLocator interface {
	KeyFromURL(raw string) (bucket, key string, ok bool)
}

// DesignRequestService runs the design ticket queue.
type DesignRequestService struct {
	repo      designRequestRepository
	storage   objectStore
	policy    UploadPolicy
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewDesignRequestService wires the service. storage may be nil when
// attachments are disabled.
func NewDesignRequestService(repo designRequestRepository, storage objectStore, policy UploadPolicy, validate *validator.Validate, logger *zap.Logger) *DesignRequestService {
	return &DesignRequestService{
		repo:      repo,
		storage:   storage,
		policy:    policy,
		validator: orValidator(validate),
		logger:    orNop(logger),
		now:       time.Now,
	}
}

// Create opens a pending ticket for the actor's division.
func (s *DesignRequestService) Create(ctx context.Context, req dto.CreateDesignRequest, actor *models.JWTClaims) (*models.DesignRequest, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	req.Title = strings.TrimSpace(req.Title)
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err)
	}
	priority := req.Priority
	if priority == "" {
		priority = models.PriorityMedium
	} else if !priority.Valid() {
		return nil, invalidf("prioritas tidak valid")
	}
	deadline, err := dto.ParseOptionalDate(req.Deadline)
	if err != nil {
		return nil, invalidf("deadline tidak valid")
	}

	ticket := &models.DesignRequest{
		Title:               req.Title,
		Description:         strings.TrimSpace(req.Description),
		Status:              models.DesignPending,
		Priority:            priority,
		Deadline:            deadline,
		RequesterID:         actor.UserID,
		RequesterDivisionID: actor.DivisionID,
		AttachmentURL:       trimmedOrNil(req.AttachmentURL),
	}
	if err := s.repo.Create(ctx, ticket); err != nil {
		s.logger.Error("create design request failed", zap.Error(err))
		return nil, appErrors.Internal(err, "Gagal membuat permintaan desain")
	}
	return ticket, nil
}

// List returns tickets visible to the actor, most urgent first.
func (s *DesignRequestService) List(ctx context.Context, filter models.DesignRequestFilter, actor *models.JWTClaims) ([]models.DesignRequest, *models.Pagination, error) {
	if actor == nil {
		return nil, nil, appErrors.ErrUnauthorized
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, nil, invalidf("status tidak valid")
	}
	if filter.Priority != "" && !filter.Priority.Valid() {
		return nil, nil, invalidf("prioritas tidak valid")
	}
	if !actor.Role.Elevated() {
		filter.VisibleTo = &models.DesignVisibility{DivisionID: actor.DivisionID, UserID: actor.UserID}
	}

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Internal(err, "Gagal memuat permintaan desain")
	}
	page, size, _ := models.NormalizePage(filter.Page, filter.PageSize)
	return items, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns a ticket with its comment thread in posting order.
func (s *DesignRequestService) Get(ctx context.Context, id int64, actor *models.JWTClaims) (*models.DesignRequest, error) {
	ticket, err := s.load(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	comments, err := s.repo.ListComments(ctx, id)
	if err != nil {
		return nil, appErrors.Internal(err, "Gagal memuat komentar")
	}
	ticket.Comments = comments
	return ticket, nil
}

// Update edits title, description, priority or deadline.
func (s *DesignRequestService) Update(ctx context.Context, id int64, req dto.UpdateDesignRequest, actor *models.JWTClaims) (*models.DesignRequest, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err)
	}
	ticket, err := s.load(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		if ticket.Title = strings.TrimSpace(*req.Title); ticket.Title == "" {
			return nil, invalidf(appErrors.ErrValidation.Message)
		}
	}
	if req.Description != nil {
		ticket.Description = strings.TrimSpace(*req.Description)
	}
	if req.Priority != nil {
		if !req.Priority.Valid() {
			return nil, invalidf("prioritas tidak valid")
		}
		ticket.Priority = *req.Priority
	}
	if req.Deadline != nil {
		if ticket.Deadline, err = dto.ParseDate(*req.Deadline); err != nil {
			return nil, invalidf("deadline tidak valid")
		}
	}
	if err := s.repo.Update(ctx, ticket); err != nil {
		s.logger.Error("update design request failed", zap.Int64("id", id), zap.Error(err))
		return nil, notFoundOr(err, "permintaan desain tidak ditemukan", "Gagal menyimpan perubahan")
	}
	return ticket, nil
}

// Assign hands the ticket to a designer.
func (s *DesignRequestService) Assign(ctx context.Context, id int64, assignee string, actor *models.JWTClaims) (*models.DesignRequest, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	assignee = strings.TrimSpace(assignee)
	if assignee == "" {
		return nil, invalidf(appErrors.ErrValidation.Message)
	}
	ticket, err := s.load(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Assign(ctx, id, assignee); err != nil {
		s.logger.Error("assign design request failed", zap.Int64("id", id), zap.Error(err))
		return nil, notFoundOr(err, "permintaan desain tidak ditemukan", "Gagal menugaskan desainer")
	}
	ticket.AssignedTo = &assignee
	return ticket, nil
}

// SetStatus moves the ticket to any status. Completion stamps completedAt.
func (s *DesignRequestService) SetStatus(ctx context.Context, id int64, status models.DesignStatus, actor *models.JWTClaims) (*models.DesignRequest, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if !status.Valid() {
		return nil, invalidf("status tidak valid")
	}
	ticket, err := s.load(ctx, id, actor)
	if err != nil {
		return nil, err
	}

	var completedAt *time.Time
	if status == models.DesignCompleted {
		now := s.now().UTC()
		completedAt = &now
	}
	if err := s.repo.UpdateStatus(ctx, id, status, completedAt); err != nil {
		s.logger.Error("update design request status failed", zap.Int64("id", id), zap.String("status", string(status)), zap.Error(err))
		return nil, notFoundOr(err, "permintaan desain tidak ditemukan", "Gagal memperbarui status")
	}
	ticket.Status = status
	if completedAt != nil {
		ticket.CompletedAt = completedAt
	}
	return ticket, nil
}

// AddComment appends to the ticket thread.
func (s *DesignRequestService) AddComment(ctx context.Context, id int64, req dto.AddCommentRequest, actor *models.JWTClaims) (*models.DesignComment, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	req.Message = strings.TrimSpace(req.Message)
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err)
	}
	if _, err := s.load(ctx, id, actor); err != nil {
		return nil, err
	}
	comment := &models.DesignComment{
		RequestID:     id,
		AuthorID:      actor.UserID,
		Message:       req.Message,
		AttachmentURL: trimmedOrNil(req.AttachmentURL),
	}
	if err := s.repo.AddComment(ctx, comment); err != nil {
		s.logger.Error("add design comment failed", zap.Int64("id", id), zap.Error(err))
		return nil, appErrors.Internal(err, "Gagal menambahkan komentar")
	}
	return comment, nil
}

// SetDeliverable records the link to the finished design.
func (s *DesignRequestService) SetDeliverable(ctx context.Context, id int64, url string, actor *models.JWTClaims) (*models.DesignRequest, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	url = strings.TrimSpace(url)
	if err := s.validator.Struct(dto.DeliverableRequest{URL: url}); err != nil {
		return nil, invalid(err)
	}
	ticket, err := s.load(ctx, id, actor)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetDeliverable(ctx, id, url); err != nil {
		s.logger.Error("set deliverable failed", zap.Int64("id", id), zap.Error(err))
		return nil, notFoundOr(err, "permintaan desain tidak ditemukan", "Gagal menyimpan hasil desain")
	}
	ticket.DeliverableURL = &url
	return ticket, nil
}

// UploadAttachment stores a reference file and links it to the ticket.
func (s *DesignRequestService) UploadAttachment(ctx context.Context, id int64, filename string, data []byte, actor *models.JWTClaims) (*models.DesignRequest, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if s.storage == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "penyimpanan file tidak tersedia")
	}
	if _, err := s.policy.Check(data); err != nil {
		return nil, err
	}
	ticket, err := s.load(ctx, id, actor)
	if err != nil {
		return nil, err
	}

	key := objectKey(fmt.Sprintf("%d", id), filename)
	url, err := s.storage.Upload(ctx, BucketDesign, key, data)
	if err != nil {
		s.logger.Error("upload design attachment failed", zap.Int64("id", id), zap.Error(err))
		return nil, appErrors.Internal(err, "Gagal mengunggah lampiran")
	}
	if err := s.repo.SetAttachment(ctx, id, url); err != nil {
		s.logger.Error("link design attachment failed", zap.Int64("id", id), zap.String("key", key), zap.Error(err))
		if rmErr := s.storage.Remove(ctx, BucketDesign, key); rmErr != nil {
			s.logger.Warn("remove unlinked attachment failed", zap.String("key", key), zap.Error(rmErr))
		}
		return nil, notFoundOr(err, "permintaan desain tidak ditemukan", "Gagal menyimpan lampiran")
	}
	if ticket.AttachmentURL != nil {
		s.discardAttachment(ctx, *ticket.AttachmentURL)
	}
	ticket.AttachmentURL = &url
	return ticket, nil
}

// discardAttachment removes a replaced attachment when it was uploaded here.
// External links are left alone.
func (s *DesignRequestService) discardAttachment(ctx context.Context, previous string) {
	locator, ok := s.storage.(objectLocator)
	if !ok {
		return
	}
	bucket, key, ok := locator.KeyFromURL(previous)
	if !ok || bucket != BucketDesign {
		return
	}
	if err := s.storage.Remove(ctx, bucket, key); err != nil {
		s.logger.Warn("remove replaced attachment failed", zap.String("key", key), zap.Error(err))
	}
}

// load fetches a ticket the actor may see: elevated roles, the requesting
// division, or the assignee.
func (s *DesignRequestService) load(ctx context.Context, id int64, actor *models.JWTClaims) (*models.DesignRequest, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	ticket, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "permintaan desain tidak ditemukan", "Gagal memuat permintaan desain")
	}
	assigned := ticket.AssignedTo != nil && *ticket.AssignedTo == actor.UserID
	if !assigned && !actor.CanAccessDivision(ticket.RequesterDivisionID) {
		return nil, appErrors.ErrForbidden
	}
	return ticket, nil
}
