package models

import "time"

// CampaignStatus is the publication state of a campaign.
type CampaignStatus string

const (
	CampaignDraft     CampaignStatus = "draft"
	CampaignScheduled CampaignStatus = "scheduled"
	CampaignPublished CampaignStatus = "published"
	CampaignArchived  CampaignStatus = "archived"
)

// Valid reports whether s is a known status.
func (s CampaignStatus) Valid() bool {
	switch s {
	case CampaignDraft, CampaignScheduled, CampaignPublished, CampaignArchived:
		return true
	}
	return false
}

// Campaign is a planned publication, optionally tied to a program.
type Campaign struct {
	ID          int64          `db:"id" json:"id"`
	Title       string         `db:"title" json:"title"`
	Description string         `db:"description" json:"description"`
	Platform    string         `db:"platform" json:"platform"`
	Status      CampaignStatus `db:"status" json:"status"`
	PublishAt   *time.Time     `db:"publish_at" json:"publishAt,omitempty"`
	ProgramID   *int64         `db:"program_id" json:"programId,omitempty"`
	DivisionID  *int64         `db:"division_id" json:"divisionId,omitempty"`
	CoverURL    *string        `db:"cover_url" json:"coverUrl,omitempty"`
	CreatedBy   string         `db:"created_by" json:"createdBy"`
	CreatedAt   time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updatedAt"`
}

// CampaignFilter narrows campaign listings.
type CampaignFilter struct {
	Status     CampaignStatus
	Platform   string
	ProgramID  *int64
	DivisionID *int64
	Page       int
	PageSize   int
}
