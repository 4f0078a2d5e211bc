package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hubly/helpdesk/internal/domain"
	"github.com/hubly/helpdesk/internal/events"
	"github.com/hubly/helpdesk/internal/repository"
	apperrors "github.com/hubly/helpdesk/pkg/util"
)

// MessageService handles the scope-checked conversation thread.
type MessageService struct {
	messages   repository.MessageRepository
	tickets    repository.TicketRepository
	dispatcher events.Dispatcher
	now        func() time.Time
}

// NewMessageService constructs the service.
func NewMessageService(messages repository.MessageRepository, tickets repository.TicketRepository, dispatcher events.Dispatcher) *MessageService {
	return &MessageService{
		messages:   messages,
		tickets:    tickets,
		dispatcher: dispatcher,
		now:        time.Now,
	}
}

// ListByTicket returns the ordered thread for a ticket the caller may
// see.
func (s *MessageService) ListByTicket(ctx context.Context, caller Caller, ticketID string) ([]domain.Message, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("ticket", nil)
		}
		return nil, err
	}
	if err := RequireTicketAccess(caller, ticket, "view messages for"); err != nil {
		return nil, err
	}
	return s.messages.ListByTicket(ctx, ticket.ID)
}

// Send appends a staff reply to a ticket the caller may act on and
// bumps the ticket's last-activity time.
func (s *MessageService) Send(ctx context.Context, caller Caller, ticketID, text string) (*domain.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.NewValidationError("message text is required", nil)
	}

	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("ticket", nil)
		}
		return nil, err
	}
	if err := RequireTicketAccess(caller, ticket, "send messages to"); err != nil {
		return nil, err
	}

	senderID := caller.ID
	msg := &domain.Message{
		TicketID: ticket.ID,
		SenderID: &senderID,
		Text:     text,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}

	// Last-write-wins by design; concurrent replies may interleave.
	if err := s.tickets.TouchLastMessage(ctx, ticket.ID, msg.Timestamp); err != nil {
		return nil, err
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:        uuid.NewString(),
			Type:      events.EventMessageAdded,
			TicketID:  ticket.ID,
			Actor:     events.Actor{UserID: &senderID, Role: caller.Role},
			Timestamp: s.now(),
			Payload: events.MessageAddedPayload{
				MessageID:    msg.ID,
				SenderID:     msg.SenderID,
				FromCustomer: false,
				TextPreview:  textPreview(msg.Text, 120),
			},
		})
	}
	return msg, nil
}

func textPreview(text string, max int) string {
	if len(text) <= max {
		return text
	}
	if max <= 3 {
		return text[:max]
	}
	return text[:max-3] + "..."
}
