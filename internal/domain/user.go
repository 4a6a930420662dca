package domain

import "time"

// Role separates the two portals.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleAdmin
}

// SenderRole maps the portal role onto the chat sender role.
func (r Role) SenderRole() SenderRole {
	if r == RoleAdmin {
		return SenderRoleAdmin
	}
	return SenderRoleCustomer
}

// User is an account of either portal.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Actor returns the acting identity of the user.
func (u *User) Actor() Actor {
	return Actor{ID: u.ID, Role: u.Role}
}
