package domain

import "time"

type User struct {
	ID           string
	Email        string
	PasswordHash string // argon2id PHC string
	FullName     string
	Role         Role
	IsActive     bool
	CreatedByID  *string // nil for self signup and bootstrap
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Deletable
}

func (u User) IsAdmin() bool      { return u.Role >= RoleAdmin }
func (u User) IsSuperadmin() bool { return u.Role == RoleSuperadmin }

// UserStats summarises the identity table for administrators.
type UserStats struct {
	Total       int
	Active      int
	Inactive    int
	Deleted     int
	Users       int
	Admins      int
	Superadmins int
}
