package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hubly/helpdesk/internal/domain"
	"github.com/hubly/helpdesk/internal/events"
	"github.com/hubly/helpdesk/internal/repository"
	apperrors "github.com/hubly/helpdesk/pkg/util"
)

const defaultTicketPageSize = 20

// TicketService coordinates ticket intake, listing and lifecycle
// transitions.
type TicketService struct {
	tickets    repository.TicketRepository
	messages   repository.MessageRepository
	users      repository.UserRepository
	sequencer  repository.TicketSequencer
	evaluator  *MissedChatEvaluator
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo  repository.TicketRepository
	MessageRepo repository.MessageRepository
	UserRepo    repository.UserRepository
	Sequencer   repository.TicketSequencer
	Evaluator   *MissedChatEvaluator
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		messages:   deps.MessageRepo,
		users:      deps.UserRepo,
		sequencer:  deps.Sequencer,
		evaluator:  deps.Evaluator,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		now:        time.Now,
	}
}

// CreateTicketInput is the public widget intake payload.
type CreateTicketInput struct {
	UserName       string
	UserEmail      string
	UserPhone      string
	InitialMessage string
}

// ListTicketsQuery captures list filters from the console.
type ListTicketsQuery struct {
	Status string
	Search string
	LastID string
	Limit  int
}

// TicketListItem augments a ticket with the most recent message text.
type TicketListItem struct {
	Ticket      domain.Ticket
	LastMessage string
}

// TicketListPage is a cursor page of tickets.
type TicketListPage struct {
	Items   []TicketListItem
	HasMore bool
	LastID  string
}

// TicketStats holds the scoped dashboard counters.
type TicketStats struct {
	AllTickets        int
	ResolvedTickets   int
	UnresolvedTickets int
	MissedTickets     int
}

// Create handles public ticket intake: the ticket is assigned to the
// sole admin and an optional opening customer message is recorded.
func (s *TicketService) Create(ctx context.Context, input CreateTicketInput) (*domain.Ticket, error) {
	if strings.TrimSpace(input.UserName) == "" ||
		strings.TrimSpace(input.UserEmail) == "" ||
		strings.TrimSpace(input.UserPhone) == "" {
		return nil, apperrors.NewValidationError("userName, userEmail and userPhone are required", nil)
	}

	admin, err := s.users.GetAdmin(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	key, err := s.sequencer.Next(ctx)
	if err != nil {
		return nil, err
	}

	ticket := &domain.Ticket{
		TicketID:   key,
		UserName:   strings.TrimSpace(input.UserName),
		UserEmail:  strings.ToLower(strings.TrimSpace(input.UserEmail)),
		UserPhone:  strings.TrimSpace(input.UserPhone),
		AssignedTo: admin.ID,
		Status:     domain.TicketStatusOpen,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}
	ticket.Assignee = admin

	if text := strings.TrimSpace(input.InitialMessage); text != "" {
		msg := &domain.Message{TicketID: ticket.ID, Text: text}
		if err := s.messages.Create(ctx, msg); err != nil {
			// Intake must not fail because the opening message could
			// not be recorded; the ticket itself already exists.
			s.logger.Warn("failed to record opening message",
				zap.String("ticket_id", ticket.ID), zap.Error(err))
		} else if err := s.tickets.TouchLastMessage(ctx, ticket.ID, msg.Timestamp); err != nil {
			s.logger.Warn("failed to touch last message time",
				zap.String("ticket_id", ticket.ID), zap.Error(err))
		} else {
			ticket.LastMessageAt = msg.Timestamp
		}
	}

	s.publish(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Payload: events.TicketCreatedPayload{
			TicketKey: ticket.TicketID,
			UserName:  ticket.UserName,
			UserEmail: ticket.UserEmail,
		},
	})
	return ticket, nil
}

// List returns a scoped, cursor-paginated page of tickets, each
// augmented with its last message and a freshly evaluated missed flag.
func (s *TicketService) List(ctx context.Context, caller Caller, query ListTicketsQuery) (*TicketListPage, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = defaultTicketPageSize
	}

	filter := repository.TicketFilter{
		AssignedTo: ScopeTickets(caller),
		Limit:      limit,
	}
	if status := domain.TicketStatus(query.Status); status.Valid() {
		filter.Status = &status
	}
	if query.Search != "" {
		filter.Search = &query.Search
	}
	if query.LastID != "" {
		filter.LastID = &query.LastID
	}

	tickets, err := s.tickets.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	page := &TicketListPage{
		Items:   make([]TicketListItem, 0, len(tickets)),
		HasMore: len(tickets) == limit,
	}
	for i := range tickets {
		ticket := tickets[i]
		item := TicketListItem{Ticket: ticket}

		// Augmentation failures degrade the item, not the page.
		if last, err := s.messages.LastText(ctx, ticket.ID); err == nil {
			item.LastMessage = last
		}
		s.evaluator.Refresh(ctx, &item.Ticket)

		page.Items = append(page.Items, item)
	}
	if len(tickets) > 0 {
		page.LastID = tickets[len(tickets)-1].ID
	}
	return page, nil
}

// Get returns a single ticket with its full ordered message thread and
// a freshly evaluated missed flag.
func (s *TicketService) Get(ctx context.Context, caller Caller, id string) (*domain.Ticket, []domain.Message, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, nil, apperrors.NewNotFound("ticket", nil)
		}
		return nil, nil, err
	}
	if err := RequireTicketAccess(caller, ticket, "access"); err != nil {
		return nil, nil, err
	}

	messages, err := s.messages.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, nil, err
	}

	s.evaluator.Refresh(ctx, ticket)
	return ticket, messages, nil
}

// UpdateStatus applies a status transition. Any recognized status may
// be set directly; unrecognized values are silently ignored and the
// ticket keeps its prior status. The assignee is re-populated before
// returning, and the missed flag is left untouched.
func (s *TicketService) UpdateStatus(ctx context.Context, caller Caller, id, status string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("ticket", nil)
		}
		return nil, err
	}
	if err := RequireTicketAccess(caller, ticket, "update"); err != nil {
		return nil, err
	}

	next := domain.TicketStatus(status)
	if next.Valid() && next != ticket.Status {
		old := ticket.Status
		ticket.Status = next
		if err := s.tickets.Update(ctx, ticket); err != nil {
			return nil, err
		}
		callerID := caller.ID
		s.publish(ctx, events.Event{
			Type:     events.EventTicketStatusChanged,
			TicketID: ticket.ID,
			Actor:    events.Actor{UserID: &callerID, Role: caller.Role},
			Payload:  events.TicketStatusChangedPayload{OldStatus: old, NewStatus: next},
		})
	}

	return s.tickets.GetByID(ctx, ticket.ID)
}

// Assign reassigns the ticket to another user. Admin-only at the
// interface level; the target may be any existing user of any role.
// Reassignment does not reset the missed flag.
func (s *TicketService) Assign(ctx context.Context, caller Caller, id, userID string) (*domain.Ticket, error) {
	if err := RequireAdmin(caller, "assign tickets"); err != nil {
		return nil, err
	}
	if strings.TrimSpace(userID) == "" {
		return nil, apperrors.NewValidationError("user id is required", nil)
	}

	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("ticket", nil)
		}
		return nil, err
	}

	target, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, err
	}

	old := ticket.AssignedTo
	ticket.AssignedTo = target.ID
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}

	callerID := caller.ID
	s.publish(ctx, events.Event{
		Type:     events.EventTicketAssigned,
		TicketID: ticket.ID,
		Actor:    events.Actor{UserID: &callerID, Role: caller.Role},
		Payload:  events.TicketAssignedPayload{OldAssignee: old, NewAssignee: target.ID},
	})

	return s.tickets.GetByID(ctx, ticket.ID)
}

// Delete removes a ticket and its messages. Admin-only.
func (s *TicketService) Delete(ctx context.Context, caller Caller, id string) error {
	if err := RequireAdmin(caller, "delete tickets"); err != nil {
		return err
	}
	if _, err := s.tickets.GetByID(ctx, id); err != nil {
		if apperrors.IsNotFound(err) {
			return apperrors.NewNotFound("ticket", nil)
		}
		return err
	}
	return s.tickets.Delete(ctx, id)
}

// Stats returns scoped counters, forcing a missed-flag refresh first so
// the missed count reflects current state.
func (s *TicketService) Stats(ctx context.Context, caller Caller) (*TicketStats, error) {
	scope := ScopeTickets(caller)
	s.evaluator.RefreshScope(ctx, scope)

	all, err := s.tickets.Count(ctx, repository.TicketFilter{AssignedTo: scope})
	if err != nil {
		return nil, err
	}
	resolved := domain.TicketStatusResolved
	resolvedCount, err := s.tickets.Count(ctx, repository.TicketFilter{AssignedTo: scope, Status: &resolved})
	if err != nil {
		return nil, err
	}
	unresolvedCount, err := s.tickets.Count(ctx, repository.TicketFilter{AssignedTo: scope, StatusNot: &resolved})
	if err != nil {
		return nil, err
	}
	missed := true
	missedCount, err := s.tickets.Count(ctx, repository.TicketFilter{AssignedTo: scope, IsMissed: &missed})
	if err != nil {
		return nil, err
	}

	return &TicketStats{
		AllTickets:        all,
		ResolvedTickets:   resolvedCount,
		UnresolvedTickets: unresolvedCount,
		MissedTickets:     missedCount,
	}, nil
}

func (s *TicketService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
