package events

import (
	"time"

	"github.com/hubly/helpdesk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketAssigned      EventType = "ticket_assigned"
	EventTicketMissed        EventType = "ticket_missed"
	EventMessageAdded        EventType = "message_added"
)

// Actor identifies who triggered an event. A nil UserID means the
// customer acting through the public widget.
type Actor struct {
	UserID *string     `json:"user_id,omitempty"`
	Role   domain.Role `json:"role,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	TicketKey string `json:"ticket_key"`
	UserName  string `json:"user_name"`
	UserEmail string `json:"user_email"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	OldAssignee string `json:"old_assignee"`
	NewAssignee string `json:"new_assignee"`
}

// TicketMissedPayload payload.
type TicketMissedPayload struct {
	TicketKey string `json:"ticket_key"`
}

// MessageAddedPayload payload.
type MessageAddedPayload struct {
	MessageID    string  `json:"message_id"`
	SenderID     *string `json:"sender_id,omitempty"`
	FromCustomer bool    `json:"from_customer"`
	TextPreview  string  `json:"text_preview"`
}
