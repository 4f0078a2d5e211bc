package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/hubly/helpdesk/internal/api/dto"
	"github.com/hubly/helpdesk/internal/service"
	apperrors "github.com/hubly/helpdesk/pkg/util"
)

// MessagesHandler serves ticket conversation threads.
type MessagesHandler struct {
	messages *service.MessageService
}

// NewMessagesHandler constructs handler.
func NewMessagesHandler(messages *service.MessageService) *MessagesHandler {
	return &MessagesHandler{messages: messages}
}

// List GET /messages/:ticketId — full thread, oldest first.
func (h *MessagesHandler) List(c *fiber.Ctx) error {
	caller, err := callerFromContext(c)
	if err != nil {
		return err
	}

	messages, err := h.messages.ListByTicket(c.Context(), caller, c.Params("ticketId"))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"count":    len(messages),
		"messages": messageResponses(messages),
	})
}

// Send POST /messages — staff reply on a ticket.
func (h *MessagesHandler) Send(c *fiber.Ctx) error {
	caller, err := callerFromContext(c)
	if err != nil {
		return err
	}

	var req dto.SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.TicketID == "" {
		return apperrors.NewValidationError("ticketId is required", nil)
	}

	msg, err := h.messages.Send(c.Context(), caller, req.TicketID, req.Text)
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"success": true,
		"data":    messageResponse(msg),
	})
}
