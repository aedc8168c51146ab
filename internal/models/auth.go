package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims is the actor identity extracted from an access token.
type JWTClaims struct {
	UserID     string   `json:"user_id"`
	Role       UserRole `json:"role"`
	DivisionID int64    `json:"division_id,omitempty"`
	Email      string   `json:"email"`
	FullName   string   `json:"full_name"`
	jwt.RegisteredClaims
}

// CanAccessDivision reports whether the actor may see rows owned by divisionID.
func (c *JWTClaims) CanAccessDivision(divisionID int64) bool {
	if c == nil {
		return false
	}
	return c.Role.Elevated() || (c.DivisionID != 0 && c.DivisionID == divisionID)
}
