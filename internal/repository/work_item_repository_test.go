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

var workItemCols = []string{"id", "kind", "title", "description", "location", "start_date", "end_date", "status", "division_id", "pic_user_id", "version", "created_at", "updated_at"}

func TestWorkItemRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewWorkItemRepository(db)
	now := time.Now()
	start := time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO work_items")).
		WithArgs(models.WorkKindProker, "Rapat Kerja", "", nil, start, nil, models.ProkerCreated, int64(3), "user-1", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "version", "created_at", "updated_at"}).AddRow(int64(42), 1, now, now))

	item := &models.WorkItem{Kind: models.WorkKindProker, Title: "Rapat Kerja", StartDate: start, Status: models.ProkerCreated, DivisionID: 3, PICUserID: "user-1"}
	require.NoError(t, repo.Create(context.Background(), item))
	assert.Equal(t, int64(42), item.ID)
	assert.Equal(t, 1, item.Version)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkItemRepositoryListAppliesFilters(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewWorkItemRepository(db)
	division := int64(7)
	cols := append(append([]string{}, workItemCols...), "task_total", "task_done")
	rows := sqlmock.NewRows(cols).
		AddRow(int64(1), "program", "Seminar", "", "Aula", time.Now(), nil, "planned", division, "u1", 1, time.Now(), time.Now(), 4, 1)

	mock.ExpectQuery(regexp.QuoteMeta("FROM work_items w")+".*"+regexp.QuoteMeta("WHERE w.kind = $1 AND w.division_id = $2 AND (LOWER(w.title) LIKE $3 OR LOWER(w.description) LIKE $3)")+".*LIMIT 10 OFFSET 10").
		WithArgs(models.WorkKindProgram, division, "%seminar%").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM work_items w WHERE")).
		WithArgs(models.WorkKindProgram, division, "%seminar%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))

	items, total, err := repo.List(context.Background(), models.WorkItemFilter{
		Kind: models.WorkKindProgram, DivisionID: &division, Search: " Seminar ", Page: 2, PageSize: 10,
	})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 11, total)
	assert.Equal(t, 4, items[0].TaskTotal)
	assert.Equal(t, 1, items[0].TaskDone)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkItemRepositoryListCapsOversizedPages(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewWorkItemRepository(db)
	cols := append(append([]string{}, workItemCols...), "task_total", "task_done")
	mock.ExpectQuery(regexp.QuoteMeta("FROM work_items w") + ".*LIMIT 100 OFFSET 100").
		WillReturnRows(sqlmock.NewRows(cols))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM work_items w")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(120))

	items, total, err := repo.List(context.Background(), models.WorkItemFilter{Page: 2, PageSize: 150})
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
	assert.Equal(t, 120, total)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkItemRepositoryListAllEmptyIsNotNil(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewWorkItemRepository(db)
	cols := append(append([]string{}, workItemCols...), "task_total", "task_done")
	mock.ExpectQuery(regexp.QuoteMeta("FROM work_items w")).
		WillReturnRows(sqlmock.NewRows(cols))

	items, err := repo.ListAll(context.Background(), models.WorkItemFilter{Kind: models.WorkKindProker})
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkItemRepositoryUpdateStatusUnconditional(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewWorkItemRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE work_items SET status = $2, version = version + 1, updated_at = $3 WHERE id = $1 RETURNING")).
		WithArgs(int64(5), models.ProkerActive, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows(workItemCols).
			AddRow(int64(5), "proker", "Rapat", "", nil, time.Now(), nil, "active", int64(1), "u1", 3, time.Now(), time.Now()))

	item, err := repo.UpdateStatus(context.Background(), 5, models.ProkerActive, nil)
	require.NoError(t, err)
	assert.Equal(t, models.ProkerActive, item.Status)
	assert.Equal(t, 3, item.Version)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkItemRepositoryUpdateStatusStaleVersion(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewWorkItemRepository(db)
	expected := 2
	mock.ExpectQuery(regexp.QuoteMeta("AND version = $4 RETURNING")).
		WithArgs(int64(5), models.ProkerActive, sqlmock.AnyArg(), expected).
		WillReturnRows(sqlmock.NewRows(workItemCols))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM work_items WHERE id = $1)")).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	_, err := repo.UpdateStatus(context.Background(), 5, models.ProkerActive, &expected)
	require.ErrorIs(t, err, ErrStaleVersion)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkItemRepositoryUpdateStatusMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewWorkItemRepository(db)
	expected := 2
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE work_items SET status")).
		WillReturnRows(sqlmock.NewRows(workItemCols))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	_, err := repo.UpdateStatus(context.Background(), 9, models.ProkerActive, &expected)
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWorkItemRepositoryDeleteProgramOnly(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewWorkItemRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM work_items WHERE id = $1 AND kind = 'program'")).
		WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DeleteProgram(context.Background(), 3)
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}
