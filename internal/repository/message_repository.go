package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hubly/helpdesk/internal/domain"
)

// MessageRepository manages the append-only conversation log. Messages
// are never edited or deleted on their own; deletion happens only as
// part of the ticket delete cascade.
type MessageRepository interface {
	Create(ctx context.Context, msg *domain.Message) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.Message, error)
	LastText(ctx context.Context, ticketID string) (string, error)
	HasStaffMessage(ctx context.Context, ticketID string) (bool, error)
}

type messageRepository struct {
	pool *pgxpool.Pool
}

// NewMessageRepository builds repository.
func NewMessageRepository(pool *pgxpool.Pool) MessageRepository {
	return &messageRepository{pool: pool}
}

func (r *messageRepository) Create(ctx context.Context, msg *domain.Message) error {
	if msg.Timestamp.IsZero() {
		const query = `
            INSERT INTO messages (ticket_id, sender_id, text)
            VALUES ($1,$2,$3)
            RETURNING id, timestamp, created_at`
		return r.pool.QueryRow(ctx, query, msg.TicketID, msg.SenderID, msg.Text).
			Scan(&msg.ID, &msg.Timestamp, &msg.CreatedAt)
	}
	const query = `
        INSERT INTO messages (ticket_id, sender_id, text, timestamp)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query, msg.TicketID, msg.SenderID, msg.Text, msg.Timestamp).
		Scan(&msg.ID, &msg.CreatedAt)
}

func (r *messageRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.Message, error) {
	const query = `
        SELECT m.id, m.ticket_id, m.sender_id, m.text, m.timestamp, m.created_at,
               u.id, u.first_name, u.last_name, u.role
        FROM messages m
        LEFT JOIN users u ON u.id = m.sender_id
        WHERE m.ticket_id=$1
        ORDER BY m.timestamp ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Message
	for rows.Next() {
		var msg domain.Message
		var senderID, senderFirst, senderLast *string
		var senderRole *domain.Role
		if err := rows.Scan(
			&msg.ID,
			&msg.TicketID,
			&msg.SenderID,
			&msg.Text,
			&msg.Timestamp,
			&msg.CreatedAt,
			&senderID,
			&senderFirst,
			&senderLast,
			&senderRole,
		); err != nil {
			return nil, err
		}
		if senderID != nil {
			msg.Sender = &domain.User{
				ID:        *senderID,
				FirstName: derefString(senderFirst),
				LastName:  derefString(senderLast),
			}
			if senderRole != nil {
				msg.Sender.Role = *senderRole
			}
		}
		result = append(result, msg)
	}
	return result, rows.Err()
}

func (r *messageRepository) LastText(ctx context.Context, ticketID string) (string, error) {
	const query = `
        SELECT text FROM messages WHERE ticket_id=$1
        ORDER BY timestamp DESC LIMIT 1`
	var text string
	err := r.pool.QueryRow(ctx, query, ticketID).Scan(&text)
	if err == pgx.ErrNoRows {
		return "", nil
	}
	return text, err
}

func (r *messageRepository) HasStaffMessage(ctx context.Context, ticketID string) (bool, error) {
	const query = `
        SELECT EXISTS (
            SELECT 1 FROM messages WHERE ticket_id=$1 AND sender_id IS NOT NULL
        )`
	var exists bool
	err := r.pool.QueryRow(ctx, query, ticketID).Scan(&exists)
	return exists, err
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
