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

var siteConfigCols = []string{"id", "section", "key", "value", "type", "label", "description", "sort_order", "updated_by", "updated_at"}

func TestSiteConfigRepositoryGet(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSiteConfigRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("FROM site_config WHERE section = $1 AND key = $2")).
		WithArgs("hero", "title").
		WillReturnRows(sqlmock.NewRows(siteConfigCols).
			AddRow(int64(1), "hero", "title", "Halo", "text", "Judul", "", 1, "admin", time.Now()))

	cfg, err := repo.Get(context.Background(), "hero", "title")
	require.NoError(t, err)
	assert.Equal(t, "Halo", cfg.Value)
	assert.Equal(t, models.ConfigText, cfg.Type)

	mock.ExpectQuery(regexp.QuoteMeta("FROM site_config WHERE section = $1 AND key = $2")).
		WithArgs("hero", "missing").
		WillReturnRows(sqlmock.NewRows(siteConfigCols))

	_, err = repo.Get(context.Background(), "hero", "missing")
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSiteConfigRepositoryInsertAndUpdate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSiteConfigRepository(db)
	by := "admin"
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO site_config")).
		WithArgs("about", "vision", "Maju", models.ConfigRichtext, "Visi", "", 2, "admin", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(5)))

	cfg := &models.SiteConfig{Section: "about", Key: "vision", Value: "Maju", Type: models.ConfigRichtext, Label: "Visi", SortOrder: 2, UpdatedBy: &by}
	require.NoError(t, repo.Insert(context.Background(), cfg))
	assert.Equal(t, int64(5), cfg.ID)

	at := time.Now()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE site_config SET value = $2")).
		WithArgs(int64(5), "Lebih maju", models.ConfigRichtext, "admin", at).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.UpdateValue(context.Background(), 5, "Lebih maju", models.ConfigRichtext, "admin", at))
	require.NoError(t, mock.ExpectationsWereMet())
}
