package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ormawa-api/internal/models"
	appErrors "github.com/noah-isme/ormawa-api/pkg/errors"
)

func TestParticipantDuplicatesAreStored(t *testing.T) {
	f := newWorkFixture()
	program := f.seed(models.WorkKindProgram, models.ProgramPlanned, 1)
	svc := NewParticipantService(f.participants, f.items, f.revalidator, nil)
	ctx := context.Background()

	first, err := svc.Add(ctx, program.ID, "u-7", "", member1)
	require.NoError(t, err)
	second, err := svc.Add(ctx, program.ID, "u-7", models.ParticipantAnggota, member1)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, models.ParticipantAnggota, first.Role)

	rows, err := svc.List(ctx, program.ID, member1)
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	require.NoError(t, svc.Remove(ctx, first.ID, member1))
	rows, _ = svc.List(ctx, program.ID, member1)
	assert.Len(t, rows, 1)
}

func TestParticipantRules(t *testing.T) {
	f := newWorkFixture()
	program := f.seed(models.WorkKindProgram, models.ProgramPlanned, 1)
	proker := f.seed(models.WorkKindProker, models.ProkerCreated, 1)
	svc := NewParticipantService(f.participants, f.items, f.revalidator, nil)
	ctx := context.Background()

	_, err := svc.Add(ctx, program.ID, "u-7", "", nil)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
	_, err = svc.Add(ctx, program.ID, "u-7", "Ketua", member1)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	_, err = svc.Add(ctx, proker.ID, "u-7", "", member1)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	_, err = svc.Add(ctx, program.ID, "u-7", "", member2)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
	assert.Empty(t, f.participants.rows)
}
