package dto

import (
	"time"

	"github.com/hubly/helpdesk/internal/domain"
)

// CreateUserRequest is the admin's new-member payload.
type CreateUserRequest struct {
	FirstName string      `json:"firstName"`
	LastName  string      `json:"lastName"`
	Email     string      `json:"email"`
	Phone     string      `json:"phone"`
	Password  string      `json:"password"`
	Role      domain.Role `json:"role"`
}

// UpdateUserRequest carries partial updates; absent fields stay as-is.
type UpdateUserRequest struct {
	FirstName *string      `json:"firstName"`
	LastName  *string      `json:"lastName"`
	Phone     *string      `json:"phone"`
	Role      *domain.Role `json:"role"`
}

// UserResponse is the user representation; the password hash is never
// serialized.
type UserResponse struct {
	ID        string      `json:"id"`
	FirstName string      `json:"firstName"`
	LastName  string      `json:"lastName"`
	Email     string      `json:"email"`
	Phone     string      `json:"phone"`
	Role      domain.Role `json:"role"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}
