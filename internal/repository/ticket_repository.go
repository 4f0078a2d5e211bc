package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hubly/helpdesk/internal/domain"
)

// TicketFilter captures listing and counting parameters. A nil field
// leaves the dimension unconstrained.
type TicketFilter struct {
	AssignedTo  *string
	Status      *domain.TicketStatus
	StatusNot   *domain.TicketStatus
	IsMissed    *bool
	Unresolved  bool
	Search      *string
	LastID      *string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	Count(ctx context.Context, filter TicketFilter) (int, error)
	SetMissed(ctx context.Context, id string, missed bool) error
	TouchLastMessage(ctx context.Context, id string, at time.Time) error
	ReassignAll(ctx context.Context, fromUserID, toUserID string) (int, error)
	Delete(ctx context.Context, id string) error
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `t.id, t.ticket_id, t.user_name, t.user_email, t.user_phone, t.assigned_to,
               t.status, t.last_message_at, t.is_missed, t.created_at, t.updated_at,
               u.id, u.first_name, u.last_name, u.email, u.role`

const ticketSelect = `SELECT ` + ticketColumns + `
        FROM tickets t
        JOIN users u ON u.id = t.assigned_to`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (ticket_id, user_name, user_email, user_phone, assigned_to, status)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, last_message_at, is_missed, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.TicketID,
		ticket.UserName,
		ticket.UserEmail,
		ticket.UserPhone,
		ticket.AssignedTo,
		ticket.Status,
	).Scan(&ticket.ID, &ticket.LastMessageAt, &ticket.IsMissed, &ticket.CreatedAt, &ticket.UpdatedAt)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET assigned_to=$1, status=$2, last_message_at=$3, is_missed=$4, updated_at=NOW()
        WHERE id=$5`
	cmd, err := r.pool.Exec(ctx, query,
		ticket.AssignedTo,
		ticket.Status,
		ticket.LastMessageAt,
		ticket.IsMissed,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	row := r.pool.QueryRow(ctx, ticketSelect+` WHERE t.id=$1`, id)
	var ticket domain.Ticket
	if err := scanTicket(row, &ticket); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	clauses, args := buildTicketClauses(filter)

	query := ticketSelect
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY t.last_message_at DESC, t.id DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := scanTicket(rows, &ticket); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}

func (r *ticketRepository) Count(ctx context.Context, filter TicketFilter) (int, error) {
	clauses, args := buildTicketClauses(filter)

	query := `SELECT COUNT(*) FROM tickets t`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}

	var count int
	err := r.pool.QueryRow(ctx, query, args...).Scan(&count)
	return count, err
}

func (r *ticketRepository) SetMissed(ctx context.Context, id string, missed bool) error {
	_, err := r.pool.Exec(ctx, `UPDATE tickets SET is_missed=$1, updated_at=NOW() WHERE id=$2`, missed, id)
	return err
}

func (r *ticketRepository) TouchLastMessage(ctx context.Context, id string, at time.Time) error {
	_, err := r.pool.Exec(ctx, `UPDATE tickets SET last_message_at=$1, updated_at=NOW() WHERE id=$2`, at, id)
	return err
}

func (r *ticketRepository) ReassignAll(ctx context.Context, fromUserID, toUserID string) (int, error) {
	cmd, err := r.pool.Exec(ctx,
		`UPDATE tickets SET assigned_to=$1, updated_at=NOW() WHERE assigned_to=$2`,
		toUserID, fromUserID)
	if err != nil {
		return 0, err
	}
	return int(cmd.RowsAffected()), nil
}

// Delete removes a ticket and its messages in one transaction, so a
// crash mid-cascade cannot orphan messages.
func (r *ticketRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `DELETE FROM messages WHERE ticket_id=$1`, id); err != nil {
		return err
	}
	cmd, err := tx.Exec(ctx, `DELETE FROM tickets WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return tx.Commit(ctx)
}

func buildTicketClauses(filter TicketFilter) ([]string, []any) {
	clauses := []string{}
	args := []any{}

	if filter.AssignedTo != nil {
		args = append(args, *filter.AssignedTo)
		clauses = append(clauses, fmt.Sprintf("t.assigned_to=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("t.status=$%d", len(args)))
	}
	if filter.StatusNot != nil {
		args = append(args, *filter.StatusNot)
		clauses = append(clauses, fmt.Sprintf("t.status <> $%d", len(args)))
	}
	if filter.Unresolved {
		args = append(args, domain.TicketStatusResolved)
		clauses = append(clauses, fmt.Sprintf("t.status <> $%d", len(args)))
	}
	if filter.IsMissed != nil {
		args = append(args, *filter.IsMissed)
		clauses = append(clauses, fmt.Sprintf("t.is_missed=$%d", len(args)))
	}
	if filter.Search != nil && strings.TrimSpace(*filter.Search) != "" {
		args = append(args, "%"+strings.TrimSpace(*filter.Search)+"%")
		clauses = append(clauses, fmt.Sprintf(
			"(t.user_name ILIKE $%d OR t.user_email ILIKE $%d OR t.ticket_id ILIKE $%d)",
			len(args), len(args), len(args)))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		clauses = append(clauses, fmt.Sprintf("t.created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		clauses = append(clauses, fmt.Sprintf("t.created_at <= $%d", len(args)))
	}
	if filter.LastID != nil {
		// Keyset cursor: resume strictly after the cursor ticket in
		// (last_message_at, id) descending order.
		args = append(args, *filter.LastID)
		clauses = append(clauses, fmt.Sprintf(
			"(t.last_message_at, t.id) < (SELECT t2.last_message_at, t2.id FROM tickets t2 WHERE t2.id=$%d)",
			len(args)))
	}

	return clauses, args
}

func scanTicket(row pgx.Row, ticket *domain.Ticket) error {
	var assignee domain.User
	if err := row.Scan(
		&ticket.ID,
		&ticket.TicketID,
		&ticket.UserName,
		&ticket.UserEmail,
		&ticket.UserPhone,
		&ticket.AssignedTo,
		&ticket.Status,
		&ticket.LastMessageAt,
		&ticket.IsMissed,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&assignee.ID,
		&assignee.FirstName,
		&assignee.LastName,
		&assignee.Email,
		&assignee.Role,
	); err != nil {
		return err
	}
	ticket.Assignee = &assignee
	return nil
}
