package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/hubly/helpdesk/internal/domain"
	apperrors "github.com/hubly/helpdesk/pkg/util"
)

type ticketServiceFixture struct {
	svc      *TicketService
	tickets  *fakeTicketRepo
	messages *fakeMessageRepo
	users    *fakeUserRepo
	admin    *domain.User
	now      time.Time
}

func newTicketServiceFixture(t *testing.T, timer time.Duration) *ticketServiceFixture {
	t.Helper()
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	tickets := newFakeTicketRepo()
	messages := newFakeMessageRepo()
	users := newFakeUserRepo()
	admin := users.add(domain.User{FirstName: "Ada", LastName: "Admin", Email: "ada@helpdesk.io", Role: domain.RoleAdmin})

	eval := newTestEvaluator(tickets, messages, fixedTimer{d: timer}, now)
	svc := NewTicketService(TicketDependencies{
		TicketRepo:  tickets,
		MessageRepo: messages,
		UserRepo:    users,
		Sequencer:   &fakeSequencer{},
		Evaluator:   eval,
		Logger:      zap.NewNop(),
	})
	svc.now = func() time.Time { return now }

	return &ticketServiceFixture{
		svc: svc, tickets: tickets, messages: messages, users: users, admin: admin, now: now,
	}
}

func domainErrStatus(t *testing.T, err error) int {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	return apperrors.ToDomainError(err).HTTPStatus
}

func TestTicketCreate(t *testing.T) {
	ctx := context.Background()
	f := newTicketServiceFixture(t, time.Hour)

	_, err := f.svc.Create(ctx, CreateTicketInput{UserName: "Sam"})
	if got := domainErrStatus(t, err); got != 400 {
		t.Errorf("missing fields status = %d, want 400", got)
	}

	ticket, err := f.svc.Create(ctx, CreateTicketInput{
		UserName:       "Sam Smith",
		UserEmail:      "Sam@Example.com",
		UserPhone:      "+1 555 0100",
		InitialMessage: "my order never arrived",
	})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	if ticket.AssignedTo != f.admin.ID {
		t.Errorf("assigned to %s, want admin %s", ticket.AssignedTo, f.admin.ID)
	}
	if ticket.Status != domain.TicketStatusOpen {
		t.Errorf("status = %s, want open", ticket.Status)
	}
	if !strings.HasPrefix(ticket.TicketID, "2026-") {
		t.Errorf("ticket key = %q, want year-prefixed", ticket.TicketID)
	}
	if ticket.UserEmail != "sam@example.com" {
		t.Errorf("email = %q, want lowercased", ticket.UserEmail)
	}

	msgs, _ := f.messages.ListByTicket(ctx, ticket.ID)
	if len(msgs) != 1 || !msgs[0].FromCustomer() {
		t.Fatalf("opening message not recorded as customer message: %+v", msgs)
	}
}

func TestTicketListScoping(t *testing.T) {
	ctx := context.Background()
	f := newTicketServiceFixture(t, time.Hour)
	member := f.users.add(domain.User{FirstName: "Max", Email: "max@helpdesk.io", Role: domain.RoleMember})

	f.tickets.add(domain.Ticket{ID: "t-admin", AssignedTo: f.admin.ID, Status: domain.TicketStatusOpen, LastMessageAt: f.now})
	f.tickets.add(domain.Ticket{ID: "t-member", AssignedTo: member.ID, Status: domain.TicketStatusOpen, LastMessageAt: f.now.Add(-time.Minute)})

	adminPage, err := f.svc.List(ctx, Caller{ID: f.admin.ID, Role: domain.RoleAdmin}, ListTicketsQuery{})
	if err != nil {
		t.Fatalf("admin List() failed: %v", err)
	}
	if len(adminPage.Items) != 2 {
		t.Errorf("admin sees %d tickets, want 2", len(adminPage.Items))
	}

	memberPage, err := f.svc.List(ctx, Caller{ID: member.ID, Role: domain.RoleMember}, ListTicketsQuery{})
	if err != nil {
		t.Fatalf("member List() failed: %v", err)
	}
	if len(memberPage.Items) != 1 || memberPage.Items[0].Ticket.ID != "t-member" {
		t.Errorf("member page = %+v, want only t-member", memberPage.Items)
	}
}

func TestTicketListCursor(t *testing.T) {
	ctx := context.Background()
	f := newTicketServiceFixture(t, time.Hour)
	caller := Caller{ID: f.admin.ID, Role: domain.RoleAdmin}

	for i := 0; i < 5; i++ {
		f.tickets.add(domain.Ticket{
			AssignedTo:    f.admin.ID,
			Status:        domain.TicketStatusOpen,
			LastMessageAt: f.now.Add(-time.Duration(i) * time.Minute),
		})
	}

	first, err := f.svc.List(ctx, caller, ListTicketsQuery{Limit: 2})
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(first.Items) != 2 || !first.HasMore {
		t.Fatalf("first page: %d items, hasMore=%v; want 2, true", len(first.Items), first.HasMore)
	}

	second, err := f.svc.List(ctx, caller, ListTicketsQuery{Limit: 2, LastID: first.LastID})
	if err != nil {
		t.Fatalf("List() with cursor failed: %v", err)
	}
	if len(second.Items) != 2 {
		t.Fatalf("second page: %d items, want 2", len(second.Items))
	}
	for _, item := range second.Items {
		for _, prev := range first.Items {
			if item.Ticket.ID == prev.Ticket.ID {
				t.Errorf("ticket %s appears on both pages", item.Ticket.ID)
			}
		}
	}

	third, err := f.svc.List(ctx, caller, ListTicketsQuery{Limit: 2, LastID: second.LastID})
	if err != nil {
		t.Fatalf("List() last page failed: %v", err)
	}
	if len(third.Items) != 1 || third.HasMore {
		t.Errorf("last page: %d items, hasMore=%v; want 1, false", len(third.Items), third.HasMore)
	}
}

func TestTicketUpdateStatus(t *testing.T) {
	ctx := context.Background()
	f := newTicketServiceFixture(t, time.Hour)
	caller := Caller{ID: f.admin.ID, Role: domain.RoleAdmin}

	ticket := f.tickets.add(domain.Ticket{ID: "t1", AssignedTo: f.admin.ID, Status: domain.TicketStatusOpen})

	updated, err := f.svc.UpdateStatus(ctx, caller, ticket.ID, "resolved")
	if err != nil {
		t.Fatalf("UpdateStatus() failed: %v", err)
	}
	if updated.Status != domain.TicketStatusResolved {
		t.Errorf("status = %s, want resolved", updated.Status)
	}

	// Unrecognized statuses are ignored, not rejected.
	same, err := f.svc.UpdateStatus(ctx, caller, ticket.ID, "escalated")
	if err != nil {
		t.Fatalf("UpdateStatus() with unknown status failed: %v", err)
	}
	if same.Status != domain.TicketStatusResolved {
		t.Errorf("status = %s after unknown value, want unchanged resolved", same.Status)
	}

	member := f.users.add(domain.User{FirstName: "Max", Role: domain.RoleMember})
	_, err = f.svc.UpdateStatus(ctx, Caller{ID: member.ID, Role: domain.RoleMember}, ticket.ID, "open")
	if got := domainErrStatus(t, err); got != 403 {
		t.Errorf("foreign member update status = %d, want 403", got)
	}
}

func TestTicketAssign(t *testing.T) {
	ctx := context.Background()
	f := newTicketServiceFixture(t, time.Hour)
	member := f.users.add(domain.User{FirstName: "Max", Role: domain.RoleMember})
	ticket := f.tickets.add(domain.Ticket{ID: "t1", AssignedTo: f.admin.ID, Status: domain.TicketStatusOpen, IsMissed: true})

	_, err := f.svc.Assign(ctx, Caller{ID: member.ID, Role: domain.RoleMember}, ticket.ID, member.ID)
	if got := domainErrStatus(t, err); got != 403 {
		t.Errorf("member assign status = %d, want 403", got)
	}

	admin := Caller{ID: f.admin.ID, Role: domain.RoleAdmin}
	_, err = f.svc.Assign(ctx, admin, ticket.ID, "nobody")
	if got := domainErrStatus(t, err); got != 404 {
		t.Errorf("assign to unknown user status = %d, want 404", got)
	}

	updated, err := f.svc.Assign(ctx, admin, ticket.ID, member.ID)
	if err != nil {
		t.Fatalf("Assign() failed: %v", err)
	}
	if updated.AssignedTo != member.ID {
		t.Errorf("assigned to %s, want %s", updated.AssignedTo, member.ID)
	}
	// Reassignment never resets the missed flag.
	if !updated.IsMissed {
		t.Error("missed flag cleared by reassignment")
	}
}

func TestTicketDelete(t *testing.T) {
	ctx := context.Background()
	f := newTicketServiceFixture(t, time.Hour)
	ticket := f.tickets.add(domain.Ticket{ID: "t1", AssignedTo: f.admin.ID, Status: domain.TicketStatusOpen})

	err := f.svc.Delete(ctx, Caller{ID: "m1", Role: domain.RoleMember}, ticket.ID)
	if got := domainErrStatus(t, err); got != 403 {
		t.Errorf("member delete status = %d, want 403", got)
	}

	admin := Caller{ID: f.admin.ID, Role: domain.RoleAdmin}
	if err := f.svc.Delete(ctx, admin, ticket.ID); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	err = f.svc.Delete(ctx, admin, ticket.ID)
	if got := domainErrStatus(t, err); got != 404 {
		t.Errorf("delete missing ticket status = %d, want 404", got)
	}
}

func TestTicketStats(t *testing.T) {
	ctx := context.Background()
	f := newTicketServiceFixture(t, 10*time.Minute)

	f.tickets.add(domain.Ticket{ID: "t1", AssignedTo: f.admin.ID, Status: domain.TicketStatusResolved, CreatedAt: f.now.Add(-time.Hour)})
	f.tickets.add(domain.Ticket{ID: "t2", AssignedTo: f.admin.ID, Status: domain.TicketStatusOpen, CreatedAt: f.now.Add(-time.Hour)})
	f.tickets.add(domain.Ticket{ID: "t3", AssignedTo: f.admin.ID, Status: domain.TicketStatusInProgress, CreatedAt: f.now.Add(-time.Hour)})
	// t3 has an unanswered customer message older than the timer, so
	// the refresh marks it missed before counting.
	f.messages.add(customerMsg("t3", f.now.Add(-30*time.Minute)))

	stats, err := f.svc.Stats(ctx, Caller{ID: f.admin.ID, Role: domain.RoleAdmin})
	if err != nil {
		t.Fatalf("Stats() failed: %v", err)
	}

	want := TicketStats{AllTickets: 3, ResolvedTickets: 1, UnresolvedTickets: 2, MissedTickets: 1}
	if *stats != want {
		t.Errorf("Stats() = %+v, want %+v", *stats, want)
	}
}
