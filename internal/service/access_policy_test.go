package service

import (
	"testing"

	"github.com/hubly/helpdesk/internal/domain"
)

func TestScopeTickets(t *testing.T) {
	if got := ScopeTickets(Caller{ID: "a1", Role: domain.RoleAdmin}); got != nil {
		t.Errorf("admin scope = %q, want unscoped", *got)
	}
	got := ScopeTickets(Caller{ID: "m1", Role: domain.RoleMember})
	if got == nil || *got != "m1" {
		t.Errorf("member scope = %v, want m1", got)
	}
}

func TestCanAccessTicket(t *testing.T) {
	ticket := &domain.Ticket{ID: "t1", AssignedTo: "m1"}

	tests := []struct {
		name   string
		caller Caller
		want   bool
	}{
		{"admin sees any ticket", Caller{ID: "a1", Role: domain.RoleAdmin}, true},
		{"assignee sees own ticket", Caller{ID: "m1", Role: domain.RoleMember}, true},
		{"other member denied", Caller{ID: "m2", Role: domain.RoleMember}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanAccessTicket(tt.caller, ticket); got != tt.want {
				t.Errorf("CanAccessTicket() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	if err := RequireAdmin(Caller{ID: "a1", Role: domain.RoleAdmin}, "assign tickets"); err != nil {
		t.Errorf("admin rejected: %v", err)
	}
	if err := RequireAdmin(Caller{ID: "m1", Role: domain.RoleMember}, "assign tickets"); err == nil {
		t.Error("member allowed, want forbidden")
	}
}

func TestCanDeleteUser(t *testing.T) {
	admin := Caller{ID: "a1", Role: domain.RoleAdmin}

	tests := []struct {
		name    string
		caller  Caller
		target  *domain.User
		wantErr bool
	}{
		{
			name:   "admin deletes member",
			caller: admin,
			target: &domain.User{ID: "m1", Role: domain.RoleMember},
		},
		{
			name:    "member cannot delete",
			caller:  Caller{ID: "m1", Role: domain.RoleMember},
			target:  &domain.User{ID: "m2", Role: domain.RoleMember},
			wantErr: true,
		},
		{
			name:    "admin account undeletable",
			caller:  admin,
			target:  &domain.User{ID: "a1", Role: domain.RoleAdmin},
			wantErr: true,
		},
		{
			name:    "no self-delete",
			caller:  Caller{ID: "m1", Role: domain.RoleAdmin},
			target:  &domain.User{ID: "m1", Role: domain.RoleMember},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanDeleteUser(tt.caller, tt.target)
			if (err != nil) != tt.wantErr {
				t.Errorf("CanDeleteUser() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCanUpdateUser(t *testing.T) {
	if err := CanUpdateUser(Caller{ID: "a1", Role: domain.RoleAdmin}, "m1"); err != nil {
		t.Errorf("admin update rejected: %v", err)
	}
	if err := CanUpdateUser(Caller{ID: "m1", Role: domain.RoleMember}, "m1"); err != nil {
		t.Errorf("self update rejected: %v", err)
	}
	if err := CanUpdateUser(Caller{ID: "m1", Role: domain.RoleMember}, "m2"); err == nil {
		t.Error("cross-member update allowed, want forbidden")
	}
}

func TestMemberMayEditUserField(t *testing.T) {
	for _, field := range []string{"firstName", "lastName", "phone"} {
		if !MemberMayEditUserField(field) {
			t.Errorf("field %s should be member-editable", field)
		}
	}
	for _, field := range []string{"role", "email", "password"} {
		if MemberMayEditUserField(field) {
			t.Errorf("field %s should not be member-editable", field)
		}
	}
}
