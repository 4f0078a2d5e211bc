package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hubly/helpdesk/internal/domain"
	"github.com/hubly/helpdesk/internal/events"
	"github.com/hubly/helpdesk/internal/repository"
)

// sweepFallbackTimer is used by the sweep when no timer is configured,
// mirroring the console's historical 10-minute default.
const sweepFallbackTimer = 10 * time.Minute

// TimerSource supplies the configured missed-chat timer.
type TimerSource interface {
	MissedChatTimer(ctx context.Context) (time.Duration, error)
}

// EvaluateMissed decides whether a ticket is currently missed, given
// its ordered message timeline and the configured timer.
//
// A ticket is missed when the customer's opening message has waited
// longer than the timer without any staff reply after it. A zero timer
// disables the feature; a ticket with no messages, or no customer
// message, is never missed.
func EvaluateMissed(now time.Time, messages []domain.Message, timer time.Duration) bool {
	if timer == 0 {
		return false
	}
	if len(messages) == 0 {
		return false
	}

	var firstCustomer *domain.Message
	for i := range messages {
		if messages[i].FromCustomer() {
			firstCustomer = &messages[i]
			break
		}
	}
	if firstCustomer == nil {
		return false
	}

	for i := range messages {
		if messages[i].FromCustomer() {
			continue
		}
		if messages[i].Timestamp.After(firstCustomer.Timestamp) {
			// Staff replied; elapsed time no longer matters.
			return false
		}
	}

	return now.Sub(firstCustomer.Timestamp) > timer
}

// MissedChatEvaluator recomputes and persists the missed flag. It is
// invoked lazily on ticket reads and eagerly before analytics runs.
// Evaluation never blocks a read: every failure degrades to "not
// missed".
type MissedChatEvaluator struct {
	tickets    repository.TicketRepository
	messages   repository.MessageRepository
	timers     TimerSource
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// NewMissedChatEvaluator constructs the evaluator.
func NewMissedChatEvaluator(
	tickets repository.TicketRepository,
	messages repository.MessageRepository,
	timers TimerSource,
	dispatcher events.Dispatcher,
	logger *zap.Logger,
) *MissedChatEvaluator {
	return &MissedChatEvaluator{
		tickets:    tickets,
		messages:   messages,
		timers:     timers,
		dispatcher: dispatcher,
		logger:     logger,
		now:        time.Now,
	}
}

// Evaluate computes the current missed state of a ticket. Lookup
// failures are swallowed and reported as false.
func (e *MissedChatEvaluator) Evaluate(ctx context.Context, ticket *domain.Ticket) bool {
	timer, err := e.timers.MissedChatTimer(ctx)
	if err != nil {
		e.logger.Debug("missed-chat timer unavailable", zap.Error(err))
		return false
	}
	messages, err := e.messages.ListByTicket(ctx, ticket.ID)
	if err != nil {
		e.logger.Debug("message timeline unavailable",
			zap.String("ticket_id", ticket.ID), zap.Error(err))
		return false
	}
	return EvaluateMissed(e.now(), messages, timer)
}

// Refresh evaluates the ticket and persists the flag when it changed,
// updating the in-memory record as well. Persisting is best-effort;
// the evaluated value is authoritative for the current response.
func (e *MissedChatEvaluator) Refresh(ctx context.Context, ticket *domain.Ticket) bool {
	missed := e.Evaluate(ctx, ticket)
	if missed != ticket.IsMissed {
		if err := e.tickets.SetMissed(ctx, ticket.ID, missed); err != nil {
			e.logger.Warn("failed to persist missed flag",
				zap.String("ticket_id", ticket.ID), zap.Error(err))
		} else if missed {
			e.publishMissed(ctx, ticket)
		}
		ticket.IsMissed = missed
	}
	return missed
}

// RefreshScope re-evaluates every ticket visible to the given scope
// (nil = all tickets). Used by stats endpoints so counts reflect
// current state rather than stale flags.
func (e *MissedChatEvaluator) RefreshScope(ctx context.Context, assignedTo *string) {
	tickets, err := e.tickets.List(ctx, repository.TicketFilter{AssignedTo: assignedTo})
	if err != nil {
		e.logger.Warn("missed-chat refresh scan failed", zap.Error(err))
		return
	}
	for i := range tickets {
		e.Refresh(ctx, &tickets[i])
	}
}

// Sweep is the secondary, idempotent scan: it marks unresolved tickets
// missed when no staff member has ever replied and the timer has
// elapsed since ticket creation.
//
// Note the divergence from Evaluate, kept on purpose: the sweep
// anchors elapsed time to ticket creation rather than to the first
// customer message, and it only ever sets the flag, never clears it.
func (e *MissedChatEvaluator) Sweep(ctx context.Context) error {
	timer := sweepFallbackTimer
	if configured, err := e.timers.MissedChatTimer(ctx); err == nil && configured > 0 {
		timer = configured
	}

	notMissed := false
	tickets, err := e.tickets.List(ctx, repository.TicketFilter{
		Unresolved: true,
		IsMissed:   &notMissed,
	})
	if err != nil {
		return err
	}

	now := e.now()
	for i := range tickets {
		ticket := &tickets[i]
		replied, err := e.messages.HasStaffMessage(ctx, ticket.ID)
		if err != nil {
			e.logger.Warn("sweep: staff reply lookup failed",
				zap.String("ticket_id", ticket.ID), zap.Error(err))
			continue
		}
		if replied {
			continue
		}
		if now.Sub(ticket.CreatedAt) > timer {
			if err := e.tickets.SetMissed(ctx, ticket.ID, true); err != nil {
				e.logger.Warn("sweep: failed to mark ticket missed",
					zap.String("ticket_id", ticket.ID), zap.Error(err))
				continue
			}
			ticket.IsMissed = true
			e.publishMissed(ctx, ticket)
		}
	}
	return nil
}

func (e *MissedChatEvaluator) publishMissed(ctx context.Context, ticket *domain.Ticket) {
	if e.dispatcher == nil {
		return
	}
	_ = e.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventTicketMissed,
		TicketID:  ticket.ID,
		Timestamp: e.now(),
		Payload:   events.TicketMissedPayload{TicketKey: ticket.TicketID},
	})
}
