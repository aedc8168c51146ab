package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/ormawa-api/internal/dto"
	"github.com/noah-isme/ormawa-api/internal/models"
	appErrors "github.com/noah-isme/ormawa-api/pkg/errors"
)

type taskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	GetByID(ctx context.Context, id int64) (*models.Task, error)
	ListByWorkItem(ctx context.Context, workItemID int64) ([]models.Task, error)
	UpdateStatus(ctx context.Context, id int64, status models.TaskStatus) error
	Delete(ctx context.Context, id int64) error
}

type workItemReader interface {
	GetByID(ctx context.Context, id int64) (*models.WorkItem, error)
}

type activityLogAppender interface {
	Append(ctx context.Context, entry *models.ActivityLog) error
}

// TaskMutation names a checklist change that may carry side effects.
type TaskMutation string

const (
	TaskAdded   TaskMutation = "task.added"
	TaskToggled TaskMutation = "task.toggled"
	TaskDeleted TaskMutation = "task.deleted"
)

// TaskLogPolicy lists, per kind, the mutations that append an activity log.
type TaskLogPolicy map[models.WorkKind][]TaskMutation

// DefaultTaskLogPolicy logs proker adds and toggles. Program tasks only log
// when logProgramTasks is set.
func DefaultTaskLogPolicy(logProgramTasks bool) TaskLogPolicy {
	p := TaskLogPolicy{
		models.WorkKindProker: {TaskAdded, TaskToggled},
	}
	if logProgramTasks {
		p[models.WorkKindProgram] = []TaskMutation{TaskAdded, TaskToggled}
	}
	return p
}

// Logs reports whether m on a task of kind appends a log entry.
func (p TaskLogPolicy) Logs(kind models.WorkKind, m TaskMutation) bool {
	for _, candidate := range p[kind] {
		if candidate == m {
			return true
		}
	}
	return false
}

// TaskLogNote renders the activity log text for a task mutation.
func TaskLogNote(m TaskMutation, task *models.Task) string {
	switch m {
	case TaskAdded:
		return "Menambahkan tugas baru: " + task.Title
	case TaskToggled:
		label := "BELUM SELESAI"
		if task.Status == models.TaskDone {
			label = "SELESAI"
		}
		return fmt.Sprintf("Menandai tugas %q sebagai %s", task.Title, label)
	default:
		return "Menghapus tugas: " + task.Title
	}
}

// TaskService manages work item checklists.
type TaskService struct {
	tasks       taskRepository
	items       workItemReader
	logs        activityLogAppender
	policy      TaskLogPolicy
	revalidator *RevalidationService
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewTaskService wires the service. A nil policy uses DefaultTaskLogPolicy(false).
func NewTaskService(tasks taskRepository, items workItemReader, logs activityLogAppender, policy TaskLogPolicy,
	revalidator *RevalidationService, validate *validator.Validate, logger *zap.Logger) *TaskService {
	if policy == nil {
		policy = DefaultTaskLogPolicy(false)
	}
	return &TaskService{
		tasks:       tasks,
		items:       items,
		logs:        logs,
		policy:      policy,
		revalidator: revalidator,
		validator:   orValidator(validate),
		logger:      orNop(logger),
	}
}

// ListByWorkItem returns the checklist of an item.
func (s *TaskService) ListByWorkItem(ctx context.Context, workItemID int64, actor *models.JWTClaims) ([]models.Task, error) {
	if _, err := s.workItem(ctx, workItemID, actor); err != nil {
		return nil, err
	}
	tasks, err := s.tasks.ListByWorkItem(ctx, workItemID)
	if err != nil {
		return nil, appErrors.Internal(err, "Gagal memuat tugas")
	}
	return tasks, nil
}

// Add creates a todo task.
func (s *TaskService) Add(ctx context.Context, workItemID int64, req dto.AddTaskRequest, actor *models.JWTClaims) (*models.Task, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	req.Title = strings.TrimSpace(req.Title)
	if err := s.validator.Struct(req); err != nil {
		return nil, invalid(err)
	}
	deadline, err := dto.ParseOptionalDate(req.Deadline)
	if err != nil {
		return nil, invalidf("deadline tidak valid")
	}
	item, err := s.workItem(ctx, workItemID, actor)
	if err != nil {
		return nil, err
	}

	task := &models.Task{
		WorkItemID:     workItemID,
		Title:          req.Title,
		Status:         models.TaskTodo,
		Deadline:       deadline,
		AssignedUserID: trimmedOrNil(req.AssignedUserID),
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		s.logger.Error("create task failed", zap.Int64("work_item_id", workItemID), zap.Error(err))
		return nil, appErrors.Internal(err, "Gagal menambahkan tugas")
	}

	s.applySideEffects(ctx, item, task, TaskAdded, actor)
	return task, nil
}

// Toggle flips a task between todo and done.
func (s *TaskService) Toggle(ctx context.Context, taskID int64, actor *models.JWTClaims) (*models.Task, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, notFoundOr(err, "tugas tidak ditemukan", "Gagal memuat tugas")
	}
	item, err := s.workItem(ctx, task.WorkItemID, actor)
	if err != nil {
		return nil, err
	}

	next := task.Status.Toggled()
	if err := s.tasks.UpdateStatus(ctx, taskID, next); err != nil {
		s.logger.Error("toggle task failed", zap.Int64("task_id", taskID), zap.Error(err))
		return nil, notFoundOr(err, "tugas tidak ditemukan", "Gagal memperbarui tugas")
	}
	task.Status = next

	s.applySideEffects(ctx, item, task, TaskToggled, actor)
	return task, nil
}

// Delete removes a program task. Proker checklists keep their history.
func (s *TaskService) Delete(ctx context.Context, taskID int64, actor *models.JWTClaims) error {
	if actor == nil {
		return appErrors.ErrUnauthorized
	}
	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		return notFoundOr(err, "tugas tidak ditemukan", "Gagal memuat tugas")
	}
	item, err := s.workItem(ctx, task.WorkItemID, actor)
	if err != nil {
		return err
	}
	if item.Kind != models.WorkKindProgram {
		return invalidf("tugas proker tidak dapat dihapus")
	}
	if err := s.tasks.Delete(ctx, taskID); err != nil {
		s.logger.Error("delete task failed", zap.Int64("task_id", taskID), zap.Error(err))
		return notFoundOr(err, "tugas tidak ditemukan", "Gagal menghapus tugas")
	}

	s.applySideEffects(ctx, item, task, TaskDeleted, actor)
	return nil
}

func (s *TaskService) applySideEffects(ctx context.Context, item *models.WorkItem, task *models.Task, m TaskMutation, actor *models.JWTClaims) {
	if s.logs != nil && s.policy.Logs(item.Kind, m) {
		entry := &models.ActivityLog{WorkItemID: item.ID, CreatedBy: actor.UserID, Notes: TaskLogNote(m, task)}
		if err := s.logs.Append(ctx, entry); err != nil {
			s.logger.Warn("append task activity log failed", zap.Int64("work_item_id", item.ID), zap.String("mutation", string(m)), zap.Error(err))
		}
	}
	s.revalidator.Revalidate(ctx, pagePath(item.Kind))
}

func (s *TaskService) workItem(ctx context.Context, id int64, actor *models.JWTClaims) (*models.WorkItem, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "data tidak ditemukan", "Gagal memuat data")
	}
	if !actor.CanAccessDivision(item.DivisionID) {
		return nil, appErrors.ErrForbidden
	}
	return item, nil
}
