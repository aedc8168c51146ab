package models

import "time"

// ParticipantRole is the role a member holds in a program.
type ParticipantRole string

const (
	ParticipantPIC     ParticipantRole = "PIC"
	ParticipantAnggota ParticipantRole = "Anggota"
)

// Participant links a user to a program. (work_item_id, user_id) is not unique.
type Participant struct {
	ID         int64           `db:"id" json:"id"`
	WorkItemID int64           `db:"work_item_id" json:"workItemId"`
	UserID     string          `db:"user_id" json:"userId"`
	Role       ParticipantRole `db:"role" json:"role"`
	JoinedAt   time.Time       `db:"joined_at" json:"joinedAt"`
}
