package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// TicketSequencer issues the human-readable ticket keys shown in the
// console, formatted "<year>-<5-digit-seq>".
type TicketSequencer interface {
	Next(ctx context.Context) (string, error)
}

type ticketSequencer struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// NewTicketSequencer returns a sequencer backed by a Postgres sequence.
func NewTicketSequencer(pool *pgxpool.Pool) TicketSequencer {
	return &ticketSequencer{pool: pool, now: time.Now}
}

func (s *ticketSequencer) Next(ctx context.Context) (string, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, `SELECT nextval('ticket_number_seq')`).Scan(&n); err != nil {
		return "", err
	}
	return FormatTicketKey(s.now().Year(), n), nil
}

// FormatTicketKey renders a ticket key for the given year and sequence
// number.
func FormatTicketKey(year int, n int64) string {
	return fmt.Sprintf("%d-%05d", year, n)
}
