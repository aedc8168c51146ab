package models

import "time"

// WorkKind distinguishes events (program) from work plans (proker).
type WorkKind string

const (
	WorkKindProgram WorkKind = "program"
	WorkKindProker  WorkKind = "proker"
)

// Valid reports whether k is a known kind.
func (k WorkKind) Valid() bool {
	return k == WorkKindProgram || k == WorkKindProker
}

// WorkStatus is a board column. Each kind has its own vocabulary.
type WorkStatus string

const (
	ProgramPlanned   WorkStatus = "planned"
	ProgramOngoing   WorkStatus = "ongoing"
	ProgramCompleted WorkStatus = "completed"
	ProgramCanceled  WorkStatus = "canceled"

	ProkerCreated   WorkStatus = "created"
	ProkerActive    WorkStatus = "active"
	ProkerCompleted WorkStatus = "completed"
	ProkerArchived  WorkStatus = "archived"
)

var statusDomains = map[WorkKind][]WorkStatus{
	WorkKindProgram: {ProgramPlanned, ProgramOngoing, ProgramCompleted, ProgramCanceled},
	WorkKindProker:  {ProkerCreated, ProkerActive, ProkerCompleted, ProkerArchived},
}

// StatusDomain lists the statuses of kind in board order.
func StatusDomain(kind WorkKind) []WorkStatus {
	domain := statusDomains[kind]
	out := make([]WorkStatus, len(domain))
	copy(out, domain)
	return out
}

// InDomain reports whether status belongs to kind's vocabulary.
func InDomain(kind WorkKind, status WorkStatus) bool {
	for _, s := range statusDomains[kind] {
		if s == status {
			return true
		}
	}
	return false
}

// WorkItem is a program or a proker row.
type WorkItem struct {
	ID          int64      `db:"id" json:"id"`
	Kind        WorkKind   `db:"kind" json:"kind"`
	Title       string     `db:"title" json:"title"`
	Description string     `db:"description" json:"description"`
	Location    *string    `db:"location" json:"location,omitempty"`
	StartDate   time.Time  `db:"start_date" json:"startDate"`
	EndDate     *time.Time `db:"end_date" json:"endDate,omitempty"`
	Status      WorkStatus `db:"status" json:"status"`
	DivisionID  int64      `db:"division_id" json:"divisionId"`
	PICUserID   string     `db:"pic_user_id" json:"picUserId"`
	Version     int        `db:"version" json:"version"`
	CreatedAt   time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updatedAt"`
}

// WorkItemSummary is a list row with task counts for the progress bar.
type WorkItemSummary struct {
	WorkItem
	TaskTotal int `db:"task_total" json:"taskTotal"`
	TaskDone  int `db:"task_done" json:"taskDone"`
	Progress  int `db:"-" json:"progress"`
}

// WorkItemDetail bundles an item with its sub-entities.
type WorkItemDetail struct {
	WorkItem
	Tasks        []Task        `json:"tasks"`
	Logs         []ActivityLog `json:"logs"`
	Participants []Participant `json:"participants"`
	Progress     int           `json:"progress"`
}

// WorkItemFilter narrows list and board queries.
type WorkItemFilter struct {
	Kind       WorkKind
	Status     WorkStatus
	DivisionID *int64
	From       *time.Time
	To         *time.Time
	Search     string
	Page       int
	PageSize   int
}
