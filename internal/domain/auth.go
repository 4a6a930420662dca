package domain

import "time"

// Actor identifies who performs an operation.
type Actor struct {
	ID   string
	Role Role
}

// IsAdmin reports whether the actor uses the admin portal.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// Token represents issued access token metadata.
type Token struct {
	SubjectID string
	Role      Role
	ExpiresAt time.Time
	IssuedAt  time.Time
}
