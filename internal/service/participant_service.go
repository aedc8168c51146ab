package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/ormawa-api/internal/models"
	appErrors "github.com/noah-isme/ormawa-api/pkg/errors"
)

// ParticipantService manages program membership. Adding the same user twice
// creates two rows; callers dedupe on display.
type ParticipantService struct {
	participants participantRepository
	items        workItemReader
	revalidator  *RevalidationService
	logger       *zap.Logger
}

// NewParticipantService wires the service.
func NewParticipantService(participants participantRepository, items workItemReader, revalidator *RevalidationService, logger *zap.Logger) *ParticipantService {
	return &ParticipantService{participants: participants, items: items, revalidator: revalidator, logger: orNop(logger)}
}

// Add enrols userID in a program. role defaults to Anggota.
func (s *ParticipantService) Add(ctx context.Context, programID int64, userID string, role models.ParticipantRole, actor *models.JWTClaims) (*models.Participant, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, invalidf(appErrors.ErrValidation.Message)
	}
	switch role {
	case "":
		role = models.ParticipantAnggota
	case models.ParticipantPIC, models.ParticipantAnggota:
	default:
		return nil, invalidf("peran tidak valid")
	}
	if _, err := s.program(ctx, programID, actor); err != nil {
		return nil, err
	}

	p := &models.Participant{WorkItemID: programID, UserID: userID, Role: role}
	if err := s.participants.Create(ctx, p); err != nil {
		s.logger.Error("add participant failed", zap.Int64("program_id", programID), zap.Error(err))
		return nil, appErrors.Internal(err, "Gagal menambahkan peserta")
	}
	s.revalidator.Revalidate(ctx, PathPrograms)
	return p, nil
}

// Remove deletes a participant row.
func (s *ParticipantService) Remove(ctx context.Context, participantID int64, actor *models.JWTClaims) error {
	if actor == nil {
		return appErrors.ErrUnauthorized
	}
	p, err := s.participants.GetByID(ctx, participantID)
	if err != nil {
		return notFoundOr(err, "peserta tidak ditemukan", "Gagal memuat peserta")
	}
	if _, err := s.program(ctx, p.WorkItemID, actor); err != nil {
		return err
	}
	if err := s.participants.Delete(ctx, participantID); err != nil {
		s.logger.Error("remove participant failed", zap.Int64("participant_id", participantID), zap.Error(err))
		return notFoundOr(err, "peserta tidak ditemukan", "Gagal menghapus peserta")
	}
	s.revalidator.Revalidate(ctx, PathPrograms)
	return nil
}

// List returns the members of a program.
func (s *ParticipantService) List(ctx context.Context, programID int64, actor *models.JWTClaims) ([]models.Participant, error) {
	if _, err := s.program(ctx, programID, actor); err != nil {
		return nil, err
	}
	out, err := s.participants.ListByWorkItem(ctx, programID)
	if err != nil {
		return nil, appErrors.Internal(err, "Gagal memuat peserta")
	}
	return out, nil
}

func (s *ParticipantService) program(ctx context.Context, id int64, actor *models.JWTClaims) (*models.WorkItem, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "data tidak ditemukan", "Gagal memuat data")
	}
	if item.Kind != models.WorkKindProgram {
		return nil, invalidf("peserta hanya untuk program")
	}
	if !actor.CanAccessDivision(item.DivisionID) {
		return nil, appErrors.ErrForbidden
	}
	return item, nil
}
