package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/hubly/helpdesk/internal/domain"
	"github.com/hubly/helpdesk/internal/repository"
)

const settingsCacheKey = "helpdesk:chatbot_settings"

// SettingsUpdateInput carries partial updates; nil fields keep the
// current value. Empty strings are deliberately allowed so staff can
// blank out a greeting.
type SettingsUpdateInput struct {
	HeaderColor      *string
	BackgroundColor  *string
	Message1         *string
	Message2         *string
	NameLabel        *string
	NamePlaceholder  *string
	PhoneLabel       *string
	PhonePlaceholder *string
	EmailLabel       *string
	EmailPlaceholder *string
	WelcomeMessage   *string
	TimerHours       *int
	TimerMinutes     *int
	TimerSeconds     *int
}

// SettingsService owns the singleton chatbot configuration. Reads go
// through a Redis cache in front of Postgres; a missing row lazily
// materializes the defaults.
type SettingsService struct {
	repo     repository.SettingsRepository
	cache    *redis.Client
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewSettingsService constructs the service. The cache client may be
// nil, which disables caching.
func NewSettingsService(repo repository.SettingsRepository, cache *redis.Client, cacheTTL time.Duration, logger *zap.Logger) *SettingsService {
	return &SettingsService{repo: repo, cache: cache, cacheTTL: cacheTTL, logger: logger}
}

// Get returns the current settings, creating the default record when
// none exists yet.
func (s *SettingsService) Get(ctx context.Context) (*domain.ChatbotSettings, error) {
	if cached := s.fromCache(ctx); cached != nil {
		return cached, nil
	}

	settings, err := s.repo.Get(ctx)
	if err == pgx.ErrNoRows {
		settings = domain.DefaultChatbotSettings()
		if err := s.repo.Save(ctx, settings); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	s.toCache(ctx, settings)
	return settings, nil
}

// Update applies a partial update and returns the stored record.
func (s *SettingsService) Update(ctx context.Context, input SettingsUpdateInput) (*domain.ChatbotSettings, error) {
	settings, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}

	applyString(&settings.HeaderColor, input.HeaderColor)
	applyString(&settings.BackgroundColor, input.BackgroundColor)
	applyString(&settings.CustomMessages.Message1, input.Message1)
	applyString(&settings.CustomMessages.Message2, input.Message2)
	applyString(&settings.IntroductionForm.NameLabel, input.NameLabel)
	applyString(&settings.IntroductionForm.NamePlaceholder, input.NamePlaceholder)
	applyString(&settings.IntroductionForm.PhoneLabel, input.PhoneLabel)
	applyString(&settings.IntroductionForm.PhonePlaceholder, input.PhonePlaceholder)
	applyString(&settings.IntroductionForm.EmailLabel, input.EmailLabel)
	applyString(&settings.IntroductionForm.EmailPlaceholder, input.EmailPlaceholder)
	applyString(&settings.WelcomeMessage, input.WelcomeMessage)
	applyInt(&settings.MissedChatTimer.Hours, input.TimerHours)
	applyInt(&settings.MissedChatTimer.Minutes, input.TimerMinutes)
	applyInt(&settings.MissedChatTimer.Seconds, input.TimerSeconds)

	if err := s.repo.Save(ctx, settings); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return settings, nil
}

// Reset restores the factory defaults.
func (s *SettingsService) Reset(ctx context.Context) (*domain.ChatbotSettings, error) {
	settings, err := s.repo.Reset(ctx)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return settings, nil
}

// MissedChatTimer implements TimerSource for the missed-chat
// evaluator.
func (s *SettingsService) MissedChatTimer(ctx context.Context) (time.Duration, error) {
	settings, err := s.Get(ctx)
	if err != nil {
		return 0, err
	}
	return settings.MissedChatTimer.Duration(), nil
}

func (s *SettingsService) fromCache(ctx context.Context) *domain.ChatbotSettings {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(ctx, settingsCacheKey).Bytes()
	if err != nil {
		return nil
	}
	var settings domain.ChatbotSettings
	if err := json.Unmarshal(raw, &settings); err != nil {
		return nil
	}
	return &settings
}

func (s *SettingsService) toCache(ctx context.Context, settings *domain.ChatbotSettings) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(settings)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, settingsCacheKey, raw, s.cacheTTL).Err(); err != nil {
		s.logger.Debug("settings cache write failed", zap.Error(err))
	}
}

func (s *SettingsService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, settingsCacheKey).Err(); err != nil {
		s.logger.Debug("settings cache invalidation failed", zap.Error(err))
	}
}

func applyString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func applyInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}
