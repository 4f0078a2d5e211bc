package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusResolved   TicketStatus = "resolved"
)

// Valid reports whether the status is one of the recognized values.
// Unrecognized statuses are ignored on update rather than rejected.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved:
		return true
	}
	return false
}

// Ticket is the aggregate for a customer support conversation. Tickets
// are created from the public chat widget and always owned by exactly
// one console user (the admin at creation time).
type Ticket struct {
	ID            string
	TicketID      string // human-readable key, "<year>-<5-digit-seq>"
	UserName      string
	UserEmail     string
	UserPhone     string
	AssignedTo    string
	Assignee      *User // populated on reads, never persisted here
	Status        TicketStatus
	LastMessageAt time.Time
	IsMissed      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Resolved reports whether the ticket reached its terminal state.
func (t *Ticket) Resolved() bool {
	return t.Status == TicketStatusResolved
}
