package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ormawa-api/internal/models"
)

var designCols = []string{"id", "title", "description", "status", "priority", "deadline", "requester_id", "requester_division_id",
	"assigned_to", "attachment_url", "deliverable_url", "completed_at", "created_at", "updated_at"}

func TestDesignRequestRepositoryListVisibility(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewDesignRequestRepository(db)
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM design_requests WHERE status = $1 AND (requester_division_id = $2 OR assigned_to = $3)")).
		WithArgs(models.DesignPending, int64(4), "designer-1").
		WillReturnRows(sqlmock.NewRows(designCols).
			AddRow(int64(1), "Poster", "", "pending", "high", nil, "u1", int64(4), nil, nil, nil, nil, now, now))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM design_requests WHERE")).
		WithArgs(models.DesignPending, int64(4), "designer-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	items, total, err := repo.List(context.Background(), models.DesignRequestFilter{
		Status:    models.DesignPending,
		VisibleTo: &models.DesignVisibility{DivisionID: 4, UserID: "designer-1"},
	})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 1, total)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDesignRequestRepositoryUpdateStatusKeepsCompletion(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewDesignRequestRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("completed_at = COALESCE($3, completed_at)")).
		WithArgs(int64(3), models.DesignReview, nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateStatus(context.Background(), 3, models.DesignReview, nil))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDesignRequestRepositoryComments(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewDesignRequestRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO design_request_comments")).
		WithArgs(int64(3), "user-1", "Revisi warna", nil, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(12)))

	c := &models.DesignComment{RequestID: 3, AuthorID: "user-1", Message: "Revisi warna"}
	require.NoError(t, repo.AddComment(context.Background(), c))
	assert.Equal(t, int64(12), c.ID)

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at ASC, id ASC")).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "request_id", "author_id", "message", "attachment_url", "created_at"}).
			AddRow(int64(11), int64(3), "u2", "Awal", nil, time.Now().Add(-time.Hour)).
			AddRow(int64(12), int64(3), "user-1", "Revisi warna", nil, time.Now()))

	comments, err := repo.ListComments(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "Awal", comments[0].Message)
	require.NoError(t, mock.ExpectationsWereMet())
}
