package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ormawa-api/internal/models"
)

func TestBrandKitRepositoryListByCategory(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewBrandKitRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("FROM brand_kit_items WHERE category = $1 ORDER BY category ASC, name ASC")).
		WithArgs(models.BrandColor).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "category", "description", "value", "storage_key", "file_url", "mime_type", "created_by", "created_at", "updated_at"}).
			AddRow(int64(1), "Biru Utama", "color", "", "#0A3D91", nil, nil, nil, "admin", time.Now(), time.Now()))

	items, err := repo.List(context.Background(), models.BrandColor)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.NotNil(t, items[0].Value)
	assert.Equal(t, "#0A3D91", *items[0].Value)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBrandKitRepositoryDeleteMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewBrandKitRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM brand_kit_items")).WithArgs(int64(4)).WillReturnResult(sqlmock.NewResult(0, 0))
	require.ErrorIs(t, repo.Delete(context.Background(), 4), sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCampaignRepositoryCreateAndList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewCampaignRepository(db)
	now := time.Now()
	program := int64(3)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO campaigns")).
		WithArgs("Open Recruitment", "", "instagram", models.CampaignDraft, nil, program, nil, nil, "user-1", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(2), now, now))

	c := &models.Campaign{Title: "Open Recruitment", Platform: "instagram", Status: models.CampaignDraft, ProgramID: &program, CreatedBy: "user-1"}
	require.NoError(t, repo.Create(context.Background(), c))
	assert.Equal(t, int64(2), c.ID)

	mock.ExpectQuery(regexp.QuoteMeta("FROM campaigns WHERE status = $1 AND program_id = $2 ORDER BY publish_at DESC NULLS LAST")).
		WithArgs(models.CampaignDraft, program).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "description", "platform", "status", "publish_at", "program_id", "division_id", "cover_url", "created_by", "created_at", "updated_at"}).
			AddRow(int64(2), "Open Recruitment", "", "instagram", "draft", nil, program, nil, nil, "user-1", now, now))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM campaigns WHERE")).
		WithArgs(models.CampaignDraft, program).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	items, total, err := repo.List(context.Background(), models.CampaignFilter{Status: models.CampaignDraft, ProgramID: &program})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 1, total)
	require.NoError(t, mock.ExpectationsWereMet())
}
