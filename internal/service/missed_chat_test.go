package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/hubly/helpdesk/internal/domain"
)

func customerMsg(ticketID string, at time.Time) domain.Message {
	return domain.Message{TicketID: ticketID, Text: "hello", Timestamp: at}
}

func staffMsg(ticketID, senderID string, at time.Time) domain.Message {
	return domain.Message{TicketID: ticketID, SenderID: &senderID, Text: "hi", Timestamp: at}
}

func TestEvaluateMissed(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	timer := 10 * time.Minute

	tests := []struct {
		name     string
		messages []domain.Message
		timer    time.Duration
		want     bool
	}{
		{
			name:     "zero timer disables detection",
			messages: []domain.Message{customerMsg("t1", now.Add(-time.Hour))},
			timer:    0,
			want:     false,
		},
		{
			name:     "no messages",
			messages: nil,
			timer:    timer,
			want:     false,
		},
		{
			name:     "staff-only thread",
			messages: []domain.Message{staffMsg("t1", "u1", now.Add(-time.Hour))},
			timer:    timer,
			want:     false,
		},
		{
			name:     "customer waiting less than timer",
			messages: []domain.Message{customerMsg("t1", now.Add(-9 * time.Minute))},
			timer:    timer,
			want:     false,
		},
		{
			name:     "customer waiting exactly the timer",
			messages: []domain.Message{customerMsg("t1", now.Add(-timer))},
			timer:    timer,
			want:     false,
		},
		{
			name:     "customer waiting longer than timer",
			messages: []domain.Message{customerMsg("t1", now.Add(-11 * time.Minute))},
			timer:    timer,
			want:     true,
		},
		{
			name: "staff replied after first customer message",
			messages: []domain.Message{
				customerMsg("t1", now.Add(-time.Hour)),
				staffMsg("t1", "u1", now.Add(-50*time.Minute)),
			},
			timer: timer,
			want:  false,
		},
		{
			name: "staff reply anchors on first customer message even with later customer messages",
			messages: []domain.Message{
				customerMsg("t1", now.Add(-time.Hour)),
				staffMsg("t1", "u1", now.Add(-50*time.Minute)),
				customerMsg("t1", now.Add(-30*time.Minute)),
			},
			timer: timer,
			want:  false,
		},
		{
			name: "staff message predating the customer does not count as a reply",
			messages: []domain.Message{
				staffMsg("t1", "u1", now.Add(-2*time.Hour)),
				customerMsg("t1", now.Add(-time.Hour)),
			},
			timer: timer,
			want:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EvaluateMissed(now, tt.messages, tt.timer); got != tt.want {
				t.Errorf("EvaluateMissed() = %v, want %v", got, tt.want)
			}
		})
	}
}

func newTestEvaluator(tickets *fakeTicketRepo, messages *fakeMessageRepo, timer TimerSource, now time.Time) *MissedChatEvaluator {
	eval := NewMissedChatEvaluator(tickets, messages, timer, nil, zap.NewNop())
	eval.now = func() time.Time { return now }
	return eval
}

func TestEvaluatorRefreshPersistsFlagChanges(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	ticketRepo := newFakeTicketRepo()
	messageRepo := newFakeMessageRepo()
	eval := newTestEvaluator(ticketRepo, messageRepo, fixedTimer{d: 10 * time.Minute}, now)

	ticket := ticketRepo.add(domain.Ticket{
		ID:         "t1",
		AssignedTo: "admin",
		Status:     domain.TicketStatusOpen,
		CreatedAt:  now.Add(-time.Hour),
	})
	messageRepo.add(customerMsg("t1", now.Add(-30*time.Minute)))

	if got := eval.Refresh(ctx, ticket); !got {
		t.Fatal("Refresh() = false, want missed")
	}
	stored, _ := ticketRepo.GetByID(ctx, "t1")
	if !stored.IsMissed {
		t.Error("missed flag not persisted")
	}

	// A staff reply arriving later must clear the flag on the next
	// evaluation.
	messageRepo.add(staffMsg("t1", "u1", now.Add(-5*time.Minute)))
	if got := eval.Refresh(ctx, ticket); got {
		t.Fatal("Refresh() = true after staff reply, want cleared")
	}
	stored, _ = ticketRepo.GetByID(ctx, "t1")
	if stored.IsMissed {
		t.Error("cleared flag not persisted")
	}
}

func TestEvaluatorSoftFailure(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	ticketRepo := newFakeTicketRepo()
	messageRepo := newFakeMessageRepo()
	eval := newTestEvaluator(ticketRepo, messageRepo, fixedTimer{err: context.DeadlineExceeded}, now)

	ticket := ticketRepo.add(domain.Ticket{ID: "t1", CreatedAt: now.Add(-time.Hour)})
	messageRepo.add(customerMsg("t1", now.Add(-time.Hour)))

	if eval.Evaluate(ctx, ticket) {
		t.Error("Evaluate() = true with unavailable timer, want false")
	}
}

func TestSweep(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	ticketRepo := newFakeTicketRepo()
	messageRepo := newFakeMessageRepo()
	// No configured timer: the sweep falls back to ten minutes.
	eval := newTestEvaluator(ticketRepo, messageRepo, fixedTimer{d: 0}, now)

	stale := ticketRepo.add(domain.Ticket{
		ID: "stale", Status: domain.TicketStatusOpen, CreatedAt: now.Add(-11 * time.Minute),
	})
	fresh := ticketRepo.add(domain.Ticket{
		ID: "fresh", Status: domain.TicketStatusOpen, CreatedAt: now.Add(-9 * time.Minute),
	})
	replied := ticketRepo.add(domain.Ticket{
		ID: "replied", Status: domain.TicketStatusOpen, CreatedAt: now.Add(-time.Hour),
	})
	resolved := ticketRepo.add(domain.Ticket{
		ID: "resolved", Status: domain.TicketStatusResolved, CreatedAt: now.Add(-time.Hour),
	})
	messageRepo.add(staffMsg("replied", "u1", now.Add(-50*time.Minute)))

	if err := eval.Sweep(ctx); err != nil {
		t.Fatalf("Sweep() failed: %v", err)
	}

	for _, tc := range []struct {
		id   string
		want bool
	}{
		{stale.ID, true},
		{fresh.ID, false},
		{replied.ID, false},
		{resolved.ID, false},
	} {
		stored, err := ticketRepo.GetByID(ctx, tc.id)
		if err != nil {
			t.Fatalf("GetByID(%s): %v", tc.id, err)
		}
		if stored.IsMissed != tc.want {
			t.Errorf("ticket %s missed = %v, want %v", tc.id, stored.IsMissed, tc.want)
		}
	}
}

func TestSweepAnchorsOnCreationNotFirstMessage(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

	ticketRepo := newFakeTicketRepo()
	messageRepo := newFakeMessageRepo()
	eval := newTestEvaluator(ticketRepo, messageRepo, fixedTimer{d: 10 * time.Minute}, now)

	// The ticket is old but its first customer message is recent. The
	// sweep still flags it because it anchors on creation time.
	ticketRepo.add(domain.Ticket{
		ID: "t1", Status: domain.TicketStatusOpen, CreatedAt: now.Add(-time.Hour),
	})
	messageRepo.add(customerMsg("t1", now.Add(-2*time.Minute)))

	if err := eval.Sweep(ctx); err != nil {
		t.Fatalf("Sweep() failed: %v", err)
	}
	stored, _ := ticketRepo.GetByID(ctx, "t1")
	if !stored.IsMissed {
		t.Error("sweep did not flag ticket anchored on creation time")
	}
}
