package domain

import "time"

// Role enumerates console account roles. Exactly one admin exists
// system-wide; everyone else is a member.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// Valid reports whether the role is a recognized value.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleMember
}

// User is a staff account on the management console.
type User struct {
	ID           string
	FirstName    string
	LastName     string
	Email        string
	Phone        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// FullName joins first and last name for display.
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
