package dto

import "time"

// SendMessageRequest appends a staff reply to a ticket.
type SendMessageRequest struct {
	TicketID string `json:"ticketId"`
	Text     string `json:"text"`
}

// MessageResponse is one thread entry. A nil sender marks a customer
// message.
type MessageResponse struct {
	ID        string       `json:"id"`
	TicketID  string       `json:"ticketId"`
	SenderID  *string      `json:"senderId"`
	Sender    *UserSummary `json:"sender,omitempty"`
	Text      string       `json:"text"`
	Timestamp time.Time    `json:"timestamp"`
}
