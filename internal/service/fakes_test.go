package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/hubly/helpdesk/internal/domain"
	"github.com/hubly/helpdesk/internal/repository"
)

// In-memory repository doubles. They mirror the Postgres query
// semantics closely enough for service-level tests: filter matching,
// activity ordering and keyset cursors.

type fakeTicketRepo struct {
	mu      sync.Mutex
	seq     int
	tickets map[string]*domain.Ticket
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: map[string]*domain.Ticket{}}
}

func (r *fakeTicketRepo) add(t domain.Ticket) *domain.Ticket {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t.ID == "" {
		r.seq++
		t.ID = fmt.Sprintf("ticket-%03d", r.seq)
	}
	stored := t
	r.tickets[stored.ID] = &stored
	return &stored
}

func (r *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	ticket.ID = fmt.Sprintf("ticket-%03d", r.seq)
	now := time.Now()
	ticket.CreatedAt = now
	ticket.UpdatedAt = now
	ticket.LastMessageAt = now
	stored := *ticket
	r.tickets[ticket.ID] = &stored
	return nil
}

func (r *fakeTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	stored := *ticket
	r.tickets[ticket.ID] = &stored
	return nil
}

func (r *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *stored
	return &copied, nil
}

func (r *fakeTicketRepo) List(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	matched := make([]domain.Ticket, 0, len(r.tickets))
	for _, t := range r.tickets {
		if matchesTicket(filter, t) {
			matched = append(matched, *t)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].LastMessageAt.Equal(matched[j].LastMessageAt) {
			return matched[i].LastMessageAt.After(matched[j].LastMessageAt)
		}
		return matched[i].ID > matched[j].ID
	})

	if filter.LastID != nil {
		cut := -1
		for i := range matched {
			if matched[i].ID == *filter.LastID {
				cut = i
				break
			}
		}
		matched = matched[cut+1:]
	}
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

func (r *fakeTicketRepo) Count(_ context.Context, filter repository.TicketFilter) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, t := range r.tickets {
		if matchesTicket(filter, t) {
			count++
		}
	}
	return count, nil
}

func (r *fakeTicketRepo) SetMissed(_ context.Context, id string, missed bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.tickets[id]
	if !ok {
		return pgx.ErrNoRows
	}
	stored.IsMissed = missed
	return nil
}

func (r *fakeTicketRepo) TouchLastMessage(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.tickets[id]
	if !ok {
		return pgx.ErrNoRows
	}
	stored.LastMessageAt = at
	return nil
}

func (r *fakeTicketRepo) ReassignAll(_ context.Context, fromUserID, toUserID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, t := range r.tickets {
		if t.AssignedTo == fromUserID {
			t.AssignedTo = toUserID
			count++
		}
	}
	return count, nil
}

func (r *fakeTicketRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tickets[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.tickets, id)
	return nil
}

func matchesTicket(filter repository.TicketFilter, t *domain.Ticket) bool {
	if filter.AssignedTo != nil && t.AssignedTo != *filter.AssignedTo {
		return false
	}
	if filter.Status != nil && t.Status != *filter.Status {
		return false
	}
	if filter.StatusNot != nil && t.Status == *filter.StatusNot {
		return false
	}
	if filter.IsMissed != nil && t.IsMissed != *filter.IsMissed {
		return false
	}
	if filter.Unresolved && t.Resolved() {
		return false
	}
	if filter.Search != nil {
		needle := strings.ToLower(*filter.Search)
		if !strings.Contains(strings.ToLower(t.UserName), needle) &&
			!strings.Contains(strings.ToLower(t.UserEmail), needle) &&
			!strings.Contains(strings.ToLower(t.TicketID), needle) {
			return false
		}
	}
	if filter.CreatedFrom != nil && t.CreatedAt.Before(*filter.CreatedFrom) {
		return false
	}
	if filter.CreatedTo != nil && t.CreatedAt.After(*filter.CreatedTo) {
		return false
	}
	return true
}

type fakeMessageRepo struct {
	mu       sync.Mutex
	seq      int
	byTicket map[string][]domain.Message
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{byTicket: map[string][]domain.Message{}}
}

func (r *fakeMessageRepo) add(msg domain.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	if msg.ID == "" {
		msg.ID = fmt.Sprintf("msg-%03d", r.seq)
	}
	r.byTicket[msg.TicketID] = append(r.byTicket[msg.TicketID], msg)
}

func (r *fakeMessageRepo) Create(_ context.Context, msg *domain.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	msg.ID = fmt.Sprintf("msg-%03d", r.seq)
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	msg.CreatedAt = msg.Timestamp
	r.byTicket[msg.TicketID] = append(r.byTicket[msg.TicketID], *msg)
	return nil
}

func (r *fakeMessageRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	msgs := append([]domain.Message(nil), r.byTicket[ticketID]...)
	sort.Slice(msgs, func(i, j int) bool {
		return msgs[i].Timestamp.Before(msgs[j].Timestamp)
	})
	return msgs, nil
}

func (r *fakeMessageRepo) LastText(ctx context.Context, ticketID string) (string, error) {
	msgs, _ := r.ListByTicket(ctx, ticketID)
	if len(msgs) == 0 {
		return "", nil
	}
	return msgs[len(msgs)-1].Text, nil
}

func (r *fakeMessageRepo) HasStaffMessage(_ context.Context, ticketID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, msg := range r.byTicket[ticketID] {
		if msg.SenderID != nil {
			return true, nil
		}
	}
	return false, nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	seq   int
	users map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*domain.User{}}
}

func (r *fakeUserRepo) add(u domain.User) *domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID == "" {
		r.seq++
		u.ID = fmt.Sprintf("user-%03d", r.seq)
	}
	stored := u
	r.users[stored.ID] = &stored
	return &stored
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	user.ID = fmt.Sprintf("user-%03d", r.seq)
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	stored := *user
	r.users[user.ID] = &stored
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	stored := *user
	r.users[user.ID] = &stored
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *stored
	return &copied, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, stored := range r.users {
		if stored.Email == email {
			copied := *stored
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) GetAdmin(_ context.Context) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, stored := range r.users {
		if stored.Role == domain.RoleAdmin {
			copied := *stored
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) List(_ context.Context) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	users := make([]domain.User, 0, len(r.users))
	for _, stored := range r.users {
		users = append(users, *stored)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (r *fakeUserRepo) CountByRole(_ context.Context, role domain.Role) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, stored := range r.users {
		if stored.Role == role {
			count++
		}
	}
	return count, nil
}

type fakeSettingsRepo struct {
	mu     sync.Mutex
	stored *domain.ChatbotSettings
}

func (r *fakeSettingsRepo) Get(_ context.Context) (*domain.ChatbotSettings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stored == nil {
		return nil, pgx.ErrNoRows
	}
	copied := *r.stored
	return &copied, nil
}

func (r *fakeSettingsRepo) Save(_ context.Context, settings *domain.ChatbotSettings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *settings
	r.stored = &copied
	return nil
}

func (r *fakeSettingsRepo) Reset(ctx context.Context) (*domain.ChatbotSettings, error) {
	defaults := domain.DefaultChatbotSettings()
	if err := r.Save(ctx, defaults); err != nil {
		return nil, err
	}
	return defaults, nil
}

type fakeSequencer struct {
	mu  sync.Mutex
	seq int64
}

func (s *fakeSequencer) Next(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return repository.FormatTicketKey(2026, s.seq), nil
}

// fixedTimer is a TimerSource returning a constant duration.
type fixedTimer struct {
	d   time.Duration
	err error
}

func (t fixedTimer) MissedChatTimer(context.Context) (time.Duration, error) {
	return t.d, t.err
}

func strPtr(s string) *string            { return &s }
func rolePtr(r domain.Role) *domain.Role { return &r }
