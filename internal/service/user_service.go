package service

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/hubly/helpdesk/internal/auth"
	"github.com/hubly/helpdesk/internal/domain"
	"github.com/hubly/helpdesk/internal/repository"
	apperrors "github.com/hubly/helpdesk/pkg/util"
)

// defaultMemberPassword is assigned when the admin creates a member
// without choosing one; the console prompts the member to change it.
const defaultMemberPassword = "password123"

// UserService manages team members under the sole-admin invariants.
type UserService struct {
	users      repository.UserRepository
	tickets    repository.TicketRepository
	bcryptCost int
}

// NewUserService constructs the service.
func NewUserService(users repository.UserRepository, tickets repository.TicketRepository, bcryptCost int) *UserService {
	return &UserService{users: users, tickets: tickets, bcryptCost: bcryptCost}
}

// CreateUserInput is the admin's new-member payload.
type CreateUserInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Password  string
	Role      domain.Role
}

// UpdateUserInput carries partial updates; nil fields are untouched.
type UpdateUserInput struct {
	FirstName *string
	LastName  *string
	Phone     *string
	Role      *domain.Role
}

// DeleteResult reports the outcome of a member deletion.
type DeleteResult struct {
	TicketsReassigned int
}

// List returns all team members, newest first.
func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}

// Get returns a single user.
func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, err
	}
	return user, nil
}

// Create adds a team member. Admin-only; a second admin can never be
// created once one exists.
func (s *UserService) Create(ctx context.Context, caller Caller, input CreateUserInput) (*domain.User, error) {
	if err := RequireAdmin(caller, "create users"); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if input.FirstName == "" || input.LastName == "" || email == "" {
		return nil, apperrors.NewValidationError("firstName, lastName and email are required", nil)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewValidationError("email already exists", nil)
	} else if err != pgx.ErrNoRows {
		return nil, err
	}

	role := input.Role
	if role == "" {
		role = domain.RoleMember
	}
	if !role.Valid() {
		return nil, apperrors.NewValidationError("invalid role", nil)
	}
	if role == domain.RoleAdmin {
		if _, err := s.users.GetAdmin(ctx); err == nil {
			return nil, apperrors.NewValidationError("admin account already exists", nil)
		} else if err != pgx.ErrNoRows {
			return nil, err
		}
	}

	password := input.Password
	if password == "" {
		password = defaultMemberPassword
	}
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        email,
		Phone:        input.Phone,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Update applies a partial update under the per-role field rules: the
// admin may change any field on any user; a member may change only
// their own non-role fields. The sole admin can never be demoted.
func (s *UserService) Update(ctx context.Context, caller Caller, id string, input UpdateUserInput) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, err
	}

	if err := CanUpdateUser(caller, user.ID); err != nil {
		return nil, err
	}
	if !caller.IsAdmin() {
		for field, set := range map[string]bool{
			"firstName": input.FirstName != nil,
			"lastName":  input.LastName != nil,
			"phone":     input.Phone != nil,
			"role":      input.Role != nil,
		} {
			if set && !MemberMayEditUserField(field) {
				return nil, apperrors.NewForbidden("not authorized to change " + field)
			}
		}
	}

	if input.Role != nil && caller.IsAdmin() {
		if !input.Role.Valid() {
			return nil, apperrors.NewValidationError("invalid role", nil)
		}
		if user.Role == domain.RoleAdmin && *input.Role != domain.RoleAdmin {
			adminCount, err := s.users.CountByRole(ctx, domain.RoleAdmin)
			if err != nil {
				return nil, err
			}
			if adminCount <= 1 {
				return nil, apperrors.NewValidationError("cannot change role: at least one admin must exist", nil)
			}
		}
		user.Role = *input.Role
	}

	if input.FirstName != nil && *input.FirstName != "" {
		user.FirstName = *input.FirstName
	}
	if input.LastName != nil && *input.LastName != "" {
		user.LastName = *input.LastName
	}
	if input.Phone != nil {
		user.Phone = *input.Phone
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Delete removes a member and reassigns every ticket they owned to the
// current admin, reporting the count.
func (s *UserService) Delete(ctx context.Context, caller Caller, id string) (*DeleteResult, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, err
	}

	if err := CanDeleteUser(caller, user); err != nil {
		return nil, err
	}

	admin, err := s.users.GetAdmin(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	reassigned, err := s.tickets.ReassignAll(ctx, user.ID, admin.ID)
	if err != nil {
		return nil, err
	}

	if err := s.users.Delete(ctx, user.ID); err != nil {
		return nil, err
	}
	return &DeleteResult{TicketsReassigned: reassigned}, nil
}
