package service

import (
	"context"
	"testing"
	"time"

	"github.com/hubly/helpdesk/internal/domain"
)

func TestMessageSend(t *testing.T) {
	ctx := context.Background()
	tickets := newFakeTicketRepo()
	messages := newFakeMessageRepo()
	svc := NewMessageService(messages, tickets, nil)

	ticket := tickets.add(domain.Ticket{ID: "t1", AssignedTo: "m1", Status: domain.TicketStatusOpen})

	_, err := svc.Send(ctx, Caller{ID: "m1", Role: domain.RoleMember}, ticket.ID, "   ")
	if got := domainErrStatus(t, err); got != 400 {
		t.Errorf("blank text status = %d, want 400", got)
	}

	_, err = svc.Send(ctx, Caller{ID: "m2", Role: domain.RoleMember}, ticket.ID, "hello")
	if got := domainErrStatus(t, err); got != 403 {
		t.Errorf("foreign member status = %d, want 403", got)
	}

	_, err = svc.Send(ctx, Caller{ID: "m1", Role: domain.RoleMember}, "ghost", "hello")
	if got := domainErrStatus(t, err); got != 404 {
		t.Errorf("unknown ticket status = %d, want 404", got)
	}

	msg, err := svc.Send(ctx, Caller{ID: "m1", Role: domain.RoleMember}, ticket.ID, "  on my way  ")
	if err != nil {
		t.Fatalf("Send() failed: %v", err)
	}
	if msg.Text != "on my way" {
		t.Errorf("text = %q, want trimmed", msg.Text)
	}
	if msg.SenderID == nil || *msg.SenderID != "m1" {
		t.Errorf("sender = %v, want m1", msg.SenderID)
	}

	stored, _ := tickets.GetByID(ctx, ticket.ID)
	if !stored.LastMessageAt.Equal(msg.Timestamp) {
		t.Error("ticket activity time not bumped")
	}
}

func TestMessageListByTicket(t *testing.T) {
	ctx := context.Background()
	tickets := newFakeTicketRepo()
	messages := newFakeMessageRepo()
	svc := NewMessageService(messages, tickets, nil)

	ticket := tickets.add(domain.Ticket{ID: "t1", AssignedTo: "m1", Status: domain.TicketStatusOpen})
	base := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	messages.add(staffMsg("t1", "m1", base.Add(time.Minute)))
	messages.add(customerMsg("t1", base))

	_, err := svc.ListByTicket(ctx, Caller{ID: "m2", Role: domain.RoleMember}, ticket.ID)
	if got := domainErrStatus(t, err); got != 403 {
		t.Errorf("foreign member status = %d, want 403", got)
	}

	thread, err := svc.ListByTicket(ctx, Caller{ID: "m1", Role: domain.RoleMember}, ticket.ID)
	if err != nil {
		t.Fatalf("ListByTicket() failed: %v", err)
	}
	if len(thread) != 2 {
		t.Fatalf("thread length = %d, want 2", len(thread))
	}
	// Oldest first, regardless of insertion order.
	if !thread[0].FromCustomer() || thread[1].FromCustomer() {
		t.Errorf("thread not ordered oldest-first: %+v", thread)
	}
}
