package dto

import (
	"time"

	"github.com/hubly/helpdesk/internal/domain"
)

// CreateTicketRequest is the public widget intake payload.
type CreateTicketRequest struct {
	UserName       string `json:"userName"`
	UserEmail      string `json:"userEmail"`
	UserPhone      string `json:"userPhone"`
	InitialMessage string `json:"initialMessage"`
}

// UpdateTicketRequest carries a status change.
type UpdateTicketRequest struct {
	Status string `json:"status"`
}

// AssignTicketRequest carries the reassignment target. Both field
// names are accepted for console compatibility.
type AssignTicketRequest struct {
	AssignedTo string `json:"assignedTo"`
	UserID     string `json:"userId"`
}

// UserSummary is the compact assignee/sender representation embedded
// in ticket and message responses.
type UserSummary struct {
	ID        string      `json:"id"`
	FirstName string      `json:"firstName"`
	LastName  string      `json:"lastName"`
	Email     string      `json:"email,omitempty"`
	Role      domain.Role `json:"role"`
}

// TicketResponse is the full ticket representation.
type TicketResponse struct {
	ID            string              `json:"id"`
	TicketID      string              `json:"ticketId"`
	UserName      string              `json:"userName"`
	UserEmail     string              `json:"userEmail"`
	UserPhone     string              `json:"userPhone"`
	AssignedTo    *UserSummary        `json:"assignedTo"`
	Status        domain.TicketStatus `json:"status"`
	LastMessageAt time.Time           `json:"lastMessageAt"`
	IsMissed      bool                `json:"isMissed"`
	LastMessage   *string             `json:"lastMessage,omitempty"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
}

// TicketCreatedResponse is the reduced acknowledgement returned to the
// widget.
type TicketCreatedResponse struct {
	ID        string `json:"id"`
	TicketID  string `json:"ticketId"`
	UserName  string `json:"userName"`
	UserEmail string `json:"userEmail"`
}

// TicketStatsResponse holds the dashboard counters.
type TicketStatsResponse struct {
	AllTickets        int `json:"allTickets"`
	ResolvedTickets   int `json:"resolvedTickets"`
	UnresolvedTickets int `json:"unresolvedTickets"`
	MissedTickets     int `json:"missedTickets"`
}
