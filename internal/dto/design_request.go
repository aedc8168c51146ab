package dto

import "github.com/noah-isme/ormawa-api/internal/models"

// CreateDesignRequest opens a ticket.
type CreateDesignRequest struct {
	Title         string                `json:"title" validate:"required,max=200"`
	Description   string                `json:"description"`
	Priority      models.DesignPriority `json:"priority"`
	Deadline      *string               `json:"deadline"`
	AttachmentURL *string               `json:"attachmentUrl" validate:"omitempty,url"`
}

// UpdateDesignRequest edits ticket fields.
type UpdateDesignRequest struct {
	Title       *string                `json:"title" validate:"omitempty,min=1,max=200"`
	Description *string                `json:"description"`
	Priority    *models.DesignPriority `json:"priority"`
	Deadline    *string                `json:"deadline"`
}

// AssignDesignRequest hands a ticket to a designer.
type AssignDesignRequest struct {
	AssignedTo string `json:"assignedTo" validate:"required"`
}

// DesignStatusRequest changes a ticket status.
type DesignStatusRequest struct {
	Status models.DesignStatus `json:"status" validate:"required"`
}

// AddCommentRequest posts to a ticket thread.
type AddCommentRequest struct {
	Message       string  `json:"message" validate:"required"`
	AttachmentURL *string `json:"attachmentUrl" validate:"omitempty,url"`
}

// DeliverableRequest attaches the finished design.
type DeliverableRequest struct {
	URL string `json:"url" validate:"required,url"`
}

// DesignRequestQuery captures list query parameters.
type DesignRequestQuery struct {
	Status     string `form:"status"`
	Priority   string `form:"priority"`
	AssignedTo string `form:"assignedTo"`
	DivisionID *int64 `form:"divisionId"`
	Page       int    `form:"page"`
	PageSize   int    `form:"pageSize"`
}
