package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/hubly/helpdesk/internal/api/dto"
	"github.com/hubly/helpdesk/internal/auth"
	"github.com/hubly/helpdesk/internal/domain"
	"github.com/hubly/helpdesk/internal/service"
	apperrors "github.com/hubly/helpdesk/pkg/util"
)

// TicketsHandler manages ticket endpoints for the console and the
// public intake endpoint for the widget.
type TicketsHandler struct {
	tickets *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(tickets *service.TicketService) *TicketsHandler {
	return &TicketsHandler{tickets: tickets}
}

// Create POST /tickets — public widget intake.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.tickets.Create(c.Context(), service.CreateTicketInput{
		UserName:       req.UserName,
		UserEmail:      req.UserEmail,
		UserPhone:      req.UserPhone,
		InitialMessage: req.InitialMessage,
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Ticket created successfully. Our team will get back to you soon.",
		"ticket": dto.TicketCreatedResponse{
			ID:        ticket.ID,
			TicketID:  ticket.TicketID,
			UserName:  ticket.UserName,
			UserEmail: ticket.UserEmail,
		},
	})
}

// List GET /tickets — scoped, cursor-paginated.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	caller, err := callerFromContext(c)
	if err != nil {
		return err
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	page, err := h.tickets.List(c.Context(), caller, service.ListTicketsQuery{
		Status: c.Query("status"),
		Search: c.Query("search"),
		LastID: c.Query("lastId"),
		Limit:  limit,
	})
	if err != nil {
		return err
	}

	items := make([]dto.TicketResponse, 0, len(page.Items))
	for i := range page.Items {
		resp := ticketResponse(&page.Items[i].Ticket)
		last := page.Items[i].LastMessage
		resp.LastMessage = &last
		items = append(items, resp)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"count":   len(items),
		"tickets": items,
		"hasMore": page.HasMore,
		"lastId":  page.LastID,
	})
}

// Get GET /tickets/:id — single ticket with its full thread.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	caller, err := callerFromContext(c)
	if err != nil {
		return err
	}

	ticket, messages, err := h.tickets.Get(c.Context(), caller, c.Params("id"))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"ticket":   ticketResponse(ticket),
		"messages": messageResponses(messages),
	})
}

// Update PUT /tickets/:id — status change.
func (h *TicketsHandler) Update(c *fiber.Ctx) error {
	caller, err := callerFromContext(c)
	if err != nil {
		return err
	}

	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.tickets.UpdateStatus(c.Context(), caller, c.Params("id"), req.Status)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Ticket updated successfully",
		"data":    ticketResponse(ticket),
	})
}

// Assign PATCH /tickets/:id/assign — admin-only reassignment.
func (h *TicketsHandler) Assign(c *fiber.Ctx) error {
	caller, err := callerFromContext(c)
	if err != nil {
		return err
	}

	var req dto.AssignTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	target := req.AssignedTo
	if target == "" {
		target = req.UserID
	}

	ticket, err := h.tickets.Assign(c.Context(), caller, c.Params("id"), target)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Ticket assigned successfully",
		"data":    ticketResponse(ticket),
	})
}

// Delete DELETE /tickets/:id — admin-only; cascades to messages.
func (h *TicketsHandler) Delete(c *fiber.Ctx) error {
	caller, err := callerFromContext(c)
	if err != nil {
		return err
	}

	if err := h.tickets.Delete(c.Context(), caller, c.Params("id")); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Ticket deleted successfully",
	})
}

// Stats GET /tickets/stats — scoped counters with forced missed-flag
// refresh.
func (h *TicketsHandler) Stats(c *fiber.Ctx) error {
	caller, err := callerFromContext(c)
	if err != nil {
		return err
	}

	stats, err := h.tickets.Stats(c.Context(), caller)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"stats": dto.TicketStatsResponse{
			AllTickets:        stats.AllTickets,
			ResolvedTickets:   stats.ResolvedTickets,
			UnresolvedTickets: stats.UnresolvedTickets,
			MissedTickets:     stats.MissedTickets,
		},
	})
}

func callerFromContext(c *fiber.Ctx) (service.Caller, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return service.Caller{}, apperrors.NewUnauthorized("authentication required")
	}
	return service.Caller{ID: principal.ID(), Role: principal.Role()}, nil
}

func userSummary(user *domain.User) *dto.UserSummary {
	if user == nil {
		return nil
	}
	return &dto.UserSummary{
		ID:        user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Role:      user.Role,
	}
}

func ticketResponse(ticket *domain.Ticket) dto.TicketResponse {
	return dto.TicketResponse{
		ID:            ticket.ID,
		TicketID:      ticket.TicketID,
		UserName:      ticket.UserName,
		UserEmail:     ticket.UserEmail,
		UserPhone:     ticket.UserPhone,
		AssignedTo:    userSummary(ticket.Assignee),
		Status:        ticket.Status,
		LastMessageAt: ticket.LastMessageAt,
		IsMissed:      ticket.IsMissed,
		CreatedAt:     ticket.CreatedAt,
		UpdatedAt:     ticket.UpdatedAt,
	}
}

func messageResponse(msg *domain.Message) dto.MessageResponse {
	return dto.MessageResponse{
		ID:        msg.ID,
		TicketID:  msg.TicketID,
		SenderID:  msg.SenderID,
		Sender:    userSummary(msg.Sender),
		Text:      msg.Text,
		Timestamp: msg.Timestamp,
	}
}

func messageResponses(messages []domain.Message) []dto.MessageResponse {
	result := make([]dto.MessageResponse, 0, len(messages))
	for i := range messages {
		result = append(result, messageResponse(&messages[i]))
	}
	return result
}
