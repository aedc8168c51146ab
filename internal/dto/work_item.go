package dto

import "github.com/noah-isme/ormawa-api/internal/models"

// CreateWorkItemRequest creates a program or proker.
type CreateWorkItemRequest struct {
	Kind        models.WorkKind   `json:"kind" validate:"required,oneof=program proker"`
	Title       string            `json:"title" validate:"required,max=200"`
	Description string            `json:"description"`
	Location    *string           `json:"location"`
	StartDate   string            `json:"startDate" validate:"required"`
	EndDate     *string           `json:"endDate"`
	Status      models.WorkStatus `json:"status"`
	DivisionID  int64             `json:"divisionId"`
	PICUserID   string            `json:"picUserId"`
}

// UpdateWorkItemRequest edits fields; nil fields are left untouched.
type UpdateWorkItemRequest struct {
	Title        *string `json:"title" validate:"omitempty,min=1,max=200"`
	Description  *string `json:"description"`
	Location     *string `json:"location"`
	StartDate    *string `json:"startDate"`
	EndDate      *string `json:"endDate"`
	ClearEndDate bool    `json:"clearEndDate"`
	PICUserID    *string `json:"picUserId"`
}

// SetWorkItemStatusRequest moves an item to another column.
type SetWorkItemStatusRequest struct {
	Status          models.WorkStatus `json:"status" validate:"required"`
	ExpectedVersion *int              `json:"expectedVersion"`
}

// MoveCardRequest is a drag-and-drop on the board.
type MoveCardRequest struct {
	ItemID int64             `json:"itemId" validate:"required"`
	Target models.WorkStatus `json:"target" validate:"required"`
}

// WorkItemQuery captures list query parameters.
type WorkItemQuery struct {
	Kind       string `form:"kind"`
	Status     string `form:"status"`
	DivisionID *int64 `form:"divisionId"`
	From       string `form:"from"`
	To         string `form:"to"`
	Search     string `form:"q"`
	Page       int    `form:"page"`
	PageSize   int    `form:"pageSize"`
}

// BoardColumn is one status column with its cards.
type BoardColumn struct {
	Status models.WorkStatus        `json:"status"`
	Items  []models.WorkItemSummary `json:"items"`
}

// BoardResponse is the kanban view of one kind.
type BoardResponse struct {
	Kind    models.WorkKind `json:"kind"`
	Columns []BoardColumn   `json:"columns"`
}

// MoveCardResponse reports the board after a move attempt.
type MoveCardResponse struct {
	ItemID     int64             `json:"itemId"`
	Status     models.WorkStatus `json:"status"`
	Changed    bool              `json:"changed"`
	RolledBack bool              `json:"rolledBack"`
	Notice     string            `json:"notice,omitempty"`
}
