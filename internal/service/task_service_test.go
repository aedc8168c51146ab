package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/ormawa-api/internal/dto"
	"github.com/noah-isme/ormawa-api/internal/models"
	appErrors "github.com/noah-isme/ormawa-api/pkg/errors"
)

func TestTaskLogPolicy(t *testing.T) {
	p := DefaultTaskLogPolicy(false)
	assert.True(t, p.Logs(models.WorkKindProker, TaskAdded))
	assert.True(t, p.Logs(models.WorkKindProker, TaskToggled))
	assert.False(t, p.Logs(models.WorkKindProker, TaskDeleted))
	assert.False(t, p.Logs(models.WorkKindProgram, TaskToggled))

	p = DefaultTaskLogPolicy(true)
	assert.True(t, p.Logs(models.WorkKindProgram, TaskToggled))
}

func TestTaskToggleLogsOncePerTransitionForProker(t *testing.T) {
	f := newWorkFixture()
	proker := f.seed(models.WorkKindProker, models.ProkerActive, 1)
	svc := f.taskService(nil)
	ctx := context.Background()

	task, err := svc.Add(ctx, proker.ID, dto.AddTaskRequest{Title: "Cetak banner"}, member1)
	require.NoError(t, err)
	assert.Equal(t, models.TaskTodo, task.Status)
	require.Len(t, f.logs.entries, 1)
	assert.Equal(t, "Menambahkan tugas baru: Cetak banner", f.logs.entries[0].Notes)

	task, err = svc.Toggle(ctx, task.ID, member1)
	require.NoError(t, err)
	assert.Equal(t, models.TaskDone, task.Status)
	require.Len(t, f.logs.entries, 2)
	assert.Equal(t, `Menandai tugas "Cetak banner" sebagai SELESAI`, f.logs.entries[1].Notes)
	assert.Equal(t, "u-member", f.logs.entries[1].CreatedBy)

	task, err = svc.Toggle(ctx, task.ID, member1)
	require.NoError(t, err)
	assert.Equal(t, models.TaskTodo, task.Status)
	require.Len(t, f.logs.entries, 3)
	assert.Contains(t, f.logs.entries[2].Notes, "BELUM SELESAI")
	assert.Contains(t, f.logs.entries[2].Notes, "Cetak banner")
}

func TestTaskToggleOnProgramDoesNotLog(t *testing.T) {
	f := newWorkFixture()
	program := f.seed(models.WorkKindProgram, models.ProgramOngoing, 1)
	svc := f.taskService(nil)

	task, err := svc.Add(context.Background(), program.ID, dto.AddTaskRequest{Title: "Sewa sound"}, member1)
	require.NoError(t, err)
	_, err = svc.Toggle(context.Background(), task.ID, member1)
	require.NoError(t, err)
	assert.Empty(t, f.logs.entries)
}

func TestTaskLogFailureIsNotFatal(t *testing.T) {
	f := newWorkFixture()
	f.logs.err = errBoom
	proker := f.seed(models.WorkKindProker, models.ProkerActive, 1)
	svc := f.taskService(nil)

	task, err := svc.Add(context.Background(), proker.ID, dto.AddTaskRequest{Title: "Rapat"}, member1)
	require.NoError(t, err)
	_, err = svc.Toggle(context.Background(), task.ID, member1)
	require.NoError(t, err)
}

func TestTaskDelete(t *testing.T) {
	f := newWorkFixture()
	program := f.seed(models.WorkKindProgram, models.ProgramOngoing, 1)
	proker := f.seed(models.WorkKindProker, models.ProkerActive, 1)
	svc := f.taskService(DefaultTaskLogPolicy(true))
	ctx := context.Background()

	pt, err := svc.Add(ctx, program.ID, dto.AddTaskRequest{Title: "Konsumsi"}, member1)
	require.NoError(t, err)
	kt, err := svc.Add(ctx, proker.ID, dto.AddTaskRequest{Title: "Proposal"}, member1)
	require.NoError(t, err)
	logged := len(f.logs.entries)

	assert.ErrorIs(t, svc.Delete(ctx, kt.ID, member1), appErrors.ErrValidation)
	require.NoError(t, svc.Delete(ctx, pt.ID, member1))
	assert.Len(t, f.logs.entries, logged)

	assert.ErrorIs(t, svc.Delete(ctx, pt.ID, member1), appErrors.ErrNotFound)
}

func TestTaskMutationsRequireActorAndScope(t *testing.T) {
	f := newWorkFixture()
	proker := f.seed(models.WorkKindProker, models.ProkerActive, 1)
	svc := f.taskService(nil)
	ctx := context.Background()

	_, err := svc.Add(ctx, proker.ID, dto.AddTaskRequest{Title: "x"}, nil)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
	_, err = svc.Add(ctx, proker.ID, dto.AddTaskRequest{Title: "x"}, member2)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
	_, err = svc.Add(ctx, proker.ID, dto.AddTaskRequest{Title: "   "}, member1)
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	task, err := svc.Add(ctx, proker.ID, dto.AddTaskRequest{Title: "y"}, member1)
	require.NoError(t, err)
	_, err = svc.Toggle(ctx, task.ID, nil)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
	assert.ErrorIs(t, svc.Delete(ctx, task.ID, nil), appErrors.ErrUnauthorized)

	stored, _ := f.tasks.GetByID(ctx, task.ID)
	assert.Equal(t, models.TaskTodo, stored.Status)
}
