package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"time"

	"github.com/noah-isme/ormawa-api/internal/models"
	"github.com/noah-isme/ormawa-api/internal/repository"
)

var (
	admin   = &models.JWTClaims{UserID: "u-admin", Role: models.RoleAdmin}
	member1 = &models.JWTClaims{UserID: "u-member", Role: models.RoleAnggota, DivisionID: 1}
	member2 = &models.JWTClaims{UserID: "u-other", Role: models.RoleAnggota, DivisionID: 2}
)

type workItemStoreStub struct {
	items     map[int64]*models.WorkItem
	tasks     *taskStoreStub
	nextID    int64
	statusErr error
	writes    int
}

func newWorkItemStoreStub(tasks *taskStoreStub) *workItemStoreStub {
	return &workItemStoreStub{items: make(map[int64]*models.WorkItem), tasks: tasks}
}

func (s *workItemStoreStub) Create(ctx context.Context, item *models.WorkItem) error {
	s.nextID++
	item.ID = s.nextID
	item.Version = 1
	item.CreatedAt = time.Now()
	item.UpdatedAt = item.CreatedAt
	cp := *item
	s.items[item.ID] = &cp
	return nil
}

func (s *workItemStoreStub) GetByID(ctx context.Context, id int64) (*models.WorkItem, error) {
	item, ok := s.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *item
	return &cp, nil
}

func (s *workItemStoreStub) summaries(filter models.WorkItemFilter) []models.WorkItemSummary {
	ids := make([]int64, 0, len(s.items))
	for id := range s.items {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := []models.WorkItemSummary{}
	for _, id := range ids {
		item := s.items[id]
		if filter.Kind != "" && item.Kind != filter.Kind {
			continue
		}
		if filter.Status != "" && item.Status != filter.Status {
			continue
		}
		if filter.DivisionID != nil && item.DivisionID != *filter.DivisionID {
			continue
		}
		sum := models.WorkItemSummary{WorkItem: *item}
		if s.tasks != nil {
			for _, t := range s.tasks.tasks {
				if t.WorkItemID != id {
					continue
				}
				sum.TaskTotal++
				if t.Status == models.TaskDone {
					sum.TaskDone++
				}
			}
		}
		out = append(out, sum)
	}
	return out
}

func (s *workItemStoreStub) List(ctx context.Context, filter models.WorkItemFilter) ([]models.WorkItemSummary, int, error) {
	out := s.summaries(filter)
	return out, len(out), nil
}

func (s *workItemStoreStub) ListAll(ctx context.Context, filter models.WorkItemFilter) ([]models.WorkItemSummary, error) {
	return s.summaries(filter), nil
}

func (s *workItemStoreStub) Update(ctx context.Context, item *models.WorkItem) error {
	current, ok := s.items[item.ID]
	if !ok {
		return sql.ErrNoRows
	}
	item.Version = current.Version + 1
	cp := *item
	s.items[item.ID] = &cp
	return nil
}

func (s *workItemStoreStub) UpdateStatus(ctx context.Context, id int64, status models.WorkStatus, expectedVersion *int) (*models.WorkItem, error) {
	if s.statusErr != nil {
		return nil, s.statusErr
	}
	item, ok := s.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	if expectedVersion != nil && *expectedVersion != item.Version {
		return nil, repository.ErrStaleVersion
	}
	s.writes++
	item.Status = status
	item.Version++
	cp := *item
	return &cp, nil
}

func (s *workItemStoreStub) DeleteProgram(ctx context.Context, id int64) error {
	item, ok := s.items[id]
	if !ok || item.Kind != models.WorkKindProgram {
		return sql.ErrNoRows
	}
	delete(s.items, id)
	return nil
}

type taskStoreStub struct {
	tasks  map[int64]*models.Task
	nextID int64
}

func newTaskStoreStub() *taskStoreStub {
	return &taskStoreStub{tasks: make(map[int64]*models.Task)}
}

func (s *taskStoreStub) Create(ctx context.Context, task *models.Task) error {
	s.nextID++
	task.ID = s.nextID
	cp := *task
	s.tasks[task.ID] = &cp
	return nil
}

func (s *taskStoreStub) GetByID(ctx context.Context, id int64) (*models.Task, error) {
	t, ok := s.tasks[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *t
	return &cp, nil
}

func (s *taskStoreStub) ListByWorkItem(ctx context.Context, workItemID int64) ([]models.Task, error) {
	out := []models.Task{}
	for id := int64(1); id <= s.nextID; id++ {
		if t, ok := s.tasks[id]; ok && t.WorkItemID == workItemID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (s *taskStoreStub) UpdateStatus(ctx context.Context, id int64, status models.TaskStatus) error {
	t, ok := s.tasks[id]
	if !ok {
		return sql.ErrNoRows
	}
	t.Status = status
	return nil
}

func (s *taskStoreStub) Delete(ctx context.Context, id int64) error {
	if _, ok := s.tasks[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.tasks, id)
	return nil
}

type logStoreStub struct {
	entries []models.ActivityLog
	err     error
}

func (s *logStoreStub) Append(ctx context.Context, entry *models.ActivityLog) error {
	if s.err != nil {
		return s.err
	}
	entry.ID = int64(len(s.entries) + 1)
	entry.CreatedAt = time.Now()
	s.entries = append(s.entries, *entry)
	return nil
}

func (s *logStoreStub) ListByWorkItem(ctx context.Context, workItemID int64) ([]models.ActivityLog, error) {
	out := []models.ActivityLog{}
	for i := len(s.entries) - 1; i >= 0; i-- {
		if s.entries[i].WorkItemID == workItemID {
			out = append(out, s.entries[i])
		}
	}
	return out, nil
}

type participantStoreStub struct {
	rows   []models.Participant
	nextID int64
	err    error
}

func (s *participantStoreStub) Create(ctx context.Context, p *models.Participant) error {
	if s.err != nil {
		return s.err
	}
	s.nextID++
	p.ID = s.nextID
	p.JoinedAt = time.Now()
	s.rows = append(s.rows, *p)
	return nil
}

func (s *participantStoreStub) GetByID(ctx context.Context, id int64) (*models.Participant, error) {
	for _, p := range s.rows {
		if p.ID == id {
			cp := p
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *participantStoreStub) ListByWorkItem(ctx context.Context, workItemID int64) ([]models.Participant, error) {
	out := []models.Participant{}
	for _, p := range s.rows {
		if p.WorkItemID == workItemID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *participantStoreStub) Delete(ctx context.Context, id int64) error {
	for i, p := range s.rows {
		if p.ID == id {
			s.rows = append(s.rows[:i], s.rows[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

type invalidatorStub struct {
	patterns []string
	err      error
}

func (s *invalidatorStub) Invalidate(ctx context.Context, pattern string) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.patterns = append(s.patterns, pattern)
	return 1, nil
}

var errBoom = errors.New("boom")

type workFixture struct {
	items        *workItemStoreStub
	tasks        *taskStoreStub
	logs         *logStoreStub
	participants *participantStoreStub
	pages        *invalidatorStub
	revalidator  *RevalidationService
}

func newWorkFixture() *workFixture {
	tasks := newTaskStoreStub()
	pages := &invalidatorStub{}
	return &workFixture{
		items:        newWorkItemStoreStub(tasks),
		tasks:        tasks,
		logs:         &logStoreStub{},
		participants: &participantStoreStub{},
		pages:        pages,
		revalidator:  NewRevalidationService(pages, nil, nil),
	}
}

func (f *workFixture) workItems(cfg WorkItemConfig) *WorkItemService {
	return NewWorkItemService(f.items, f.tasks, f.logs, f.participants, f.revalidator, nil, nil, nil, cfg)
}

func (f *workFixture) taskService(policy TaskLogPolicy) *TaskService {
	return NewTaskService(f.tasks, f.items, f.logs, policy, f.revalidator, nil, nil)
}

func (f *workFixture) seed(kind models.WorkKind, status models.WorkStatus, division int64) *models.WorkItem {
	item := &models.WorkItem{
		Kind:       kind,
		Title:      string(kind) + " seeded",
		StartDate:  time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
		Status:     status,
		DivisionID: division,
		PICUserID:  "u-member",
	}
	_ = f.items.Create(context.Background(), item)
	return item
}
