package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/hubly/helpdesk/internal/api/dto"
	"github.com/hubly/helpdesk/internal/domain"
	"github.com/hubly/helpdesk/internal/service"
	apperrors "github.com/hubly/helpdesk/pkg/util"
)

// SettingsHandler serves the chatbot widget configuration. Reads are
// public so the widget can fetch its appearance without a token.
type SettingsHandler struct {
	settings *service.SettingsService
}

// NewSettingsHandler constructs handler.
func NewSettingsHandler(settings *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// Get GET /settings/chatbot.
func (h *SettingsHandler) Get(c *fiber.Ctx) error {
	settings, err := h.settings.Get(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    settingsResponse(settings),
	})
}

// Update PUT /settings/chatbot — admin-only partial update.
func (h *SettingsHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateSettingsRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	input := service.SettingsUpdateInput{
		HeaderColor:     req.HeaderColor,
		BackgroundColor: req.BackgroundColor,
		WelcomeMessage:  req.WelcomeMessage,
	}
	if req.CustomMessages != nil {
		input.Message1 = req.CustomMessages.Message1
		input.Message2 = req.CustomMessages.Message2
	}
	if req.IntroductionForm != nil {
		input.NameLabel = req.IntroductionForm.NameLabel
		input.NamePlaceholder = req.IntroductionForm.NamePlaceholder
		input.PhoneLabel = req.IntroductionForm.PhoneLabel
		input.PhonePlaceholder = req.IntroductionForm.PhonePlaceholder
		input.EmailLabel = req.IntroductionForm.EmailLabel
		input.EmailPlaceholder = req.IntroductionForm.EmailPlaceholder
	}
	if req.MissedChatTimer != nil {
		input.TimerHours = req.MissedChatTimer.Hours
		input.TimerMinutes = req.MissedChatTimer.Minutes
		input.TimerSeconds = req.MissedChatTimer.Seconds
	}

	settings, err := h.settings.Update(c.Context(), input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Settings updated successfully",
		"data":    settingsResponse(settings),
	})
}

// Reset POST /settings/chatbot/reset — admin-only factory reset.
func (h *SettingsHandler) Reset(c *fiber.Ctx) error {
	settings, err := h.settings.Reset(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Settings reset to defaults",
		"data":    settingsResponse(settings),
	})
}

func settingsResponse(settings *domain.ChatbotSettings) dto.SettingsResponse {
	var resp dto.SettingsResponse
	resp.HeaderColor = settings.HeaderColor
	resp.BackgroundColor = settings.BackgroundColor
	resp.CustomMessages.Message1 = settings.CustomMessages.Message1
	resp.CustomMessages.Message2 = settings.CustomMessages.Message2
	resp.IntroductionForm.NameLabel = settings.IntroductionForm.NameLabel
	resp.IntroductionForm.NamePlaceholder = settings.IntroductionForm.NamePlaceholder
	resp.IntroductionForm.PhoneLabel = settings.IntroductionForm.PhoneLabel
	resp.IntroductionForm.PhonePlaceholder = settings.IntroductionForm.PhonePlaceholder
	resp.IntroductionForm.EmailLabel = settings.IntroductionForm.EmailLabel
	resp.IntroductionForm.EmailPlaceholder = settings.IntroductionForm.EmailPlaceholder
	resp.WelcomeMessage = settings.WelcomeMessage
	resp.MissedChatTimer.Hours = settings.MissedChatTimer.Hours
	resp.MissedChatTimer.Minutes = settings.MissedChatTimer.Minutes
	resp.MissedChatTimer.Seconds = settings.MissedChatTimer.Seconds
	return resp
}
