package domain

import "time"

// Message is a single entry in a ticket's conversation thread. A nil
// SenderID marks a customer message from the public widget; a non-nil
// SenderID references the console user who replied, and may point at
// an account that has since been deleted. Messages are immutable once
// created.
type Message struct {
	ID        string
	TicketID  string
	SenderID  *string
	Sender    *User // populated on reads when SenderID is set
	Text      string
	Timestamp time.Time
	CreatedAt time.Time
}

// FromCustomer reports whether the message originated from the widget.
func (m *Message) FromCustomer() bool {
	return m.SenderID == nil
}
