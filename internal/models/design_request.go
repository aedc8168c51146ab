package models

import "time"

// DesignStatus tracks a design ticket through the studio.
type DesignStatus string

const (
	DesignPending    DesignStatus = "pending"
	DesignInProgress DesignStatus = "in_progress"
	DesignReview     DesignStatus = "review"
	DesignCompleted  DesignStatus = "completed"
	DesignRejected   DesignStatus = "rejected"
)

// Valid reports whether s is a known status.
func (s DesignStatus) Valid() bool {
	switch s {
	case DesignPending, DesignInProgress, DesignReview, DesignCompleted, DesignRejected:
		return true
	}
	return false
}

// DesignPriority orders the queue.
type DesignPriority string

const (
	PriorityLow    DesignPriority = "low"
	PriorityMedium DesignPriority = "medium"
	PriorityHigh   DesignPriority = "high"
	PriorityUrgent DesignPriority = "urgent"
)

// Valid reports whether p is a known priority.
func (p DesignPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// DesignRequest is a ticket raised by a division for the design team.
type DesignRequest struct {
	ID                  int64           `db:"id" json:"id"`
	Title               string          `db:"title" json:"title"`
	Description         string          `db:"description" json:"description"`
	Status              DesignStatus    `db:"status" json:"status"`
	Priority            DesignPriority  `db:"priority" json:"priority"`
	Deadline            *time.Time      `db:"deadline" json:"deadline,omitempty"`
	RequesterID         string          `db:"requester_id" json:"requesterId"`
	RequesterDivisionID int64           `db:"requester_division_id" json:"requesterDivisionId"`
	AssignedTo          *string         `db:"assigned_to" json:"assignedTo,omitempty"`
	AttachmentURL       *string         `db:"attachment_url" json:"attachmentUrl,omitempty"`
	DeliverableURL      *string         `db:"deliverable_url" json:"deliverableUrl,omitempty"`
	CompletedAt         *time.Time      `db:"completed_at" json:"completedAt,omitempty"`
	CreatedAt           time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt           time.Time       `db:"updated_at" json:"updatedAt"`
	Comments            []DesignComment `db:"-" json:"comments,omitempty"`
}

// DesignComment is one message in a ticket thread.
type DesignComment struct {
	ID            int64     `db:"id" json:"id"`
	RequestID     int64     `db:"request_id" json:"requestId"`
	AuthorID      string    `db:"author_id" json:"authorId"`
	Message       string    `db:"message" json:"message"`
	AttachmentURL *string   `db:"attachment_url" json:"attachmentUrl,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
}

// DesignRequestFilter narrows ticket listings.
type DesignRequestFilter struct {
	Status              DesignStatus
	Priority            DesignPriority
	AssignedTo          string
	RequesterDivisionID *int64
	// VisibleTo restricts rows to a division plus tickets assigned to a user.
	VisibleTo *DesignVisibility
	Page      int
	PageSize  int
}

// DesignVisibility is the scope of a non-elevated viewer.
type DesignVisibility struct {
	DivisionID int64
	UserID     string
}
