package models

// UserRole represents the organisation roles carried by identity tokens.
type UserRole string

const (
	RoleAdmin       UserRole = "ADMIN"
	RoleBPH         UserRole = "BPH"
	RoleKoordinator UserRole = "KOORDINATOR"
	RoleAnggota     UserRole = "ANGGOTA"
)

// Elevated roles see and mutate data across every division.
func (r UserRole) Elevated() bool {
	return r == RoleAdmin || r == RoleBPH
}

// Valid reports whether r is a known role.
func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleBPH, RoleKoordinator, RoleAnggota:
		return true
	}
	return false
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}

// NormalizePage clamps page/pageSize to sane bounds and returns the SQL offset.
func NormalizePage(page, pageSize int) (int, int, int) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize, (page - 1) * pageSize
}
