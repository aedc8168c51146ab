package models

import "time"

// ActivityLog is an append-only note on a work item.
type ActivityLog struct {
	ID         int64     `db:"id" json:"id"`
	WorkItemID int64     `db:"work_item_id" json:"workItemId"`
	CreatedBy  string    `db:"created_by" json:"createdBy"`
	Notes      string    `db:"notes" json:"notes"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}
