package domain

import "time"

// UserRole represents the operator's role within the system
type UserRole string

const (
	UserRoleAdmin      UserRole = "ADMIN"
	UserRoleCultivator UserRole = "CULTIVATOR"
	UserRoleDispenser  UserRole = "DISPENSER"
)

// User represents an operator account
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	DisplayName  string    `json:"displayName"`
	Role         UserRole  `json:"role"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Actor returns the audit actor identity for this user
func (u *User) Actor() Actor {
	return Actor{UserID: u.ID, UserEmail: u.Email}
}

var (
	ErrUserNotFound       = NewDomainError("user not found")
	ErrInvalidCredentials = NewDomainError("invalid email or password")
	ErrUserInactive       = NewDomainError("user account is inactive")
	ErrEmailTaken         = NewDomainError("email is already registered")
)
