package models

import "time"

// TaskStatus is a checklist state.
type TaskStatus string

const (
	TaskTodo TaskStatus = "todo"
	TaskDone TaskStatus = "done"
)

// Toggled flips todo and done.
func (s TaskStatus) Toggled() TaskStatus {
	if s == TaskDone {
		return TaskTodo
	}
	return TaskDone
}

// Task is a checklist entry attached to a work item.
type Task struct {
	ID             int64      `db:"id" json:"id"`
	WorkItemID     int64      `db:"work_item_id" json:"workItemId"`
	Title          string     `db:"title" json:"title"`
	Status         TaskStatus `db:"status" json:"status"`
	Deadline       *time.Time `db:"deadline" json:"deadline,omitempty"`
	AssignedUserID *string    `db:"assigned_user_id" json:"assignedUserId,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updatedAt"`
}
