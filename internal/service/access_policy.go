package service

import (
	"github.com/hubly/helpdesk/internal/domain"
	apperrors "github.com/hubly/helpdesk/pkg/util"
)

// Caller is the authenticated identity attached to a request by the
// auth collaborator.
type Caller struct {
	ID   string
	Role domain.Role
}

// IsAdmin reports whether the caller holds the admin role.
func (c Caller) IsAdmin() bool {
	return c.Role == domain.RoleAdmin
}

// memberEditableUserFields is the per-role allow-list for user updates:
// a member editing their own record may touch these and nothing else.
var memberEditableUserFields = map[string]bool{
	"firstName": true,
	"lastName":  true,
	"phone":     true,
}

// MemberMayEditUserField reports whether a non-admin self-update may
// touch the named field.
func MemberMayEditUserField(field string) bool {
	return memberEditableUserFields[field]
}

// ScopeTickets returns the assignee filter for ticket queries: nil for
// the admin (unscoped), the caller's own id for members. Scoping is
// applied at query time, never by post-filtering.
func ScopeTickets(caller Caller) *string {
	if caller.IsAdmin() {
		return nil
	}
	id := caller.ID
	return &id
}

// CanAccessTicket reports whether the caller may read or mutate the
// ticket.
func CanAccessTicket(caller Caller, ticket *domain.Ticket) bool {
	if caller.IsAdmin() {
		return true
	}
	return ticket.AssignedTo == caller.ID
}

// RequireTicketAccess converts a failed access check into a forbidden
// error with a readable reason.
func RequireTicketAccess(caller Caller, ticket *domain.Ticket, action string) error {
	if CanAccessTicket(caller, ticket) {
		return nil
	}
	return apperrors.NewForbidden("not authorized to " + action + " this ticket")
}

// RequireAdmin gates admin-only ticket operations (assign, delete) and
// user management.
func RequireAdmin(caller Caller, action string) error {
	if caller.IsAdmin() {
		return nil
	}
	return apperrors.NewForbidden("admin role required to " + action)
}

// CanDeleteUser applies the user-deletion rules: admin-only, the admin
// account itself is undeletable, and nobody deletes their own account.
func CanDeleteUser(caller Caller, target *domain.User) error {
	if !caller.IsAdmin() {
		return apperrors.NewForbidden("admin role required to delete users")
	}
	if target.Role == domain.RoleAdmin {
		return apperrors.NewValidationError("cannot delete admin account", nil)
	}
	if caller.ID == target.ID {
		return apperrors.NewValidationError("cannot delete your own account", nil)
	}
	return nil
}

// CanUpdateUser checks who may touch a user record at all; field-level
// rules are enforced by the user service against the allow-list.
func CanUpdateUser(caller Caller, targetID string) error {
	if caller.IsAdmin() || caller.ID == targetID {
		return nil
	}
	return apperrors.NewForbidden("not authorized to update this user")
}
