package dto

// AddTaskRequest adds a checklist entry.
type AddTaskRequest struct {
	Title          string  `json:"title" validate:"required,max=200"`
	Deadline       *string `json:"deadline"`
	AssignedUserID *string `json:"assignedUserId"`
}

// AppendLogRequest adds a manual activity note.
type AppendLogRequest struct {
	Notes string `json:"notes" validate:"required"`
}

// AddParticipantRequest enrols a member in a program.
type AddParticipantRequest struct {
	UserID string `json:"userId" validate:"required"`
	Role   string `json:"role" validate:"omitempty,oneof=PIC Anggota"`
}
