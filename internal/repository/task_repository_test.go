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

func TestTaskRepositoryCreateAndList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewTaskRepository(db)
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO tasks")).
		WithArgs(int64(10), "Sewa sound system", models.TaskTodo, nil, nil, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(1), now, now))

	task := &models.Task{WorkItemID: 10, Title: "Sewa sound system", Status: models.TaskTodo}
	require.NoError(t, repo.Create(context.Background(), task))
	assert.Equal(t, int64(1), task.ID)

	mock.ExpectQuery(regexp.QuoteMeta("FROM tasks WHERE work_item_id = $1 ORDER BY created_at ASC")).
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "work_item_id", "title", "status", "deadline", "assigned_user_id", "created_at", "updated_at"}).
			AddRow(int64(1), int64(10), "Sewa sound system", "todo", nil, nil, now, now).
			AddRow(int64(2), int64(10), "Konsumsi", "done", nil, "user-9", now, now))

	tasks, err := repo.ListByWorkItem(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, models.TaskDone, tasks[1].Status)
	require.NotNil(t, tasks[1].AssignedUserID)
	assert.Equal(t, "user-9", *tasks[1].AssignedUserID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepositoryUpdateStatusMissingRow(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewTaskRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE tasks SET status = $2")).
		WithArgs(int64(99), models.TaskDone, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateStatus(context.Background(), 99, models.TaskDone)
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestActivityLogRepositoryAppendAndList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewActivityLogRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO activity_logs")).
		WithArgs(int64(4), "user-1", "Menambahkan tugas baru: Konsumsi", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(77)))

	entry := &models.ActivityLog{WorkItemID: 4, CreatedBy: "user-1", Notes: "Menambahkan tugas baru: Konsumsi"}
	require.NoError(t, repo.Append(context.Background(), entry))
	assert.Equal(t, int64(77), entry.ID)
	assert.False(t, entry.CreatedAt.IsZero())

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC, id DESC")).
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "work_item_id", "created_by", "notes", "created_at"}).
			AddRow(int64(77), int64(4), "user-1", "x", time.Now()))

	logs, err := repo.ListByWorkItem(context.Background(), 4)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestParticipantRepositoryAllowsDuplicates(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewParticipantRepository(db)
	for i := int64(1); i <= 2; i++ {
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO participants")).
			WithArgs(int64(8), "user-3", models.ParticipantAnggota, sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(i))
	}

	for i := 0; i < 2; i++ {
		p := &models.Participant{WorkItemID: 8, UserID: "user-3", Role: models.ParticipantAnggota}
		require.NoError(t, repo.Create(context.Background(), p))
	}
	require.NoError(t, mock.ExpectationsWereMet())
}
