package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hubly/helpdesk/internal/domain"
)

// SettingsRepository persists the singleton chatbot configuration as a
// single well-known row, so multiple process instances stay consistent.
type SettingsRepository interface {
	Get(ctx context.Context) (*domain.ChatbotSettings, error)
	Save(ctx context.Context, settings *domain.ChatbotSettings) error
	Reset(ctx context.Context) (*domain.ChatbotSettings, error)
}

type settingsRepository struct {
	pool *pgxpool.Pool
}

// NewSettingsRepository builds repository.
func NewSettingsRepository(pool *pgxpool.Pool) SettingsRepository {
	return &settingsRepository{pool: pool}
}

func (r *settingsRepository) Get(ctx context.Context) (*domain.ChatbotSettings, error) {
	const query = `
        SELECT header_color, background_color, message1, message2,
               name_label, name_placeholder, phone_label, phone_placeholder,
               email_label, email_placeholder, welcome_message,
               timer_hours, timer_minutes, timer_seconds, created_at, updated_at
        FROM chatbot_settings WHERE id=1`

	var s domain.ChatbotSettings
	if err := r.pool.QueryRow(ctx, query).Scan(
		&s.HeaderColor,
		&s.BackgroundColor,
		&s.CustomMessages.Message1,
		&s.CustomMessages.Message2,
		&s.IntroductionForm.NameLabel,
		&s.IntroductionForm.NamePlaceholder,
		&s.IntroductionForm.PhoneLabel,
		&s.IntroductionForm.PhonePlaceholder,
		&s.IntroductionForm.EmailLabel,
		&s.IntroductionForm.EmailPlaceholder,
		&s.WelcomeMessage,
		&s.MissedChatTimer.Hours,
		&s.MissedChatTimer.Minutes,
		&s.MissedChatTimer.Seconds,
		&s.CreatedAt,
		&s.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *settingsRepository) Save(ctx context.Context, settings *domain.ChatbotSettings) error {
	const query = `
        INSERT INTO chatbot_settings (
            id, header_color, background_color, message1, message2,
            name_label, name_placeholder, phone_label, phone_placeholder,
            email_label, email_placeholder, welcome_message,
            timer_hours, timer_minutes, timer_seconds
        ) VALUES (1,$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
        ON CONFLICT (id) DO UPDATE SET
            header_color=EXCLUDED.header_color,
            background_color=EXCLUDED.background_color,
            message1=EXCLUDED.message1,
            message2=EXCLUDED.message2,
            name_label=EXCLUDED.name_label,
            name_placeholder=EXCLUDED.name_placeholder,
            phone_label=EXCLUDED.phone_label,
            phone_placeholder=EXCLUDED.phone_placeholder,
            email_label=EXCLUDED.email_label,
            email_placeholder=EXCLUDED.email_placeholder,
            welcome_message=EXCLUDED.welcome_message,
            timer_hours=EXCLUDED.timer_hours,
            timer_minutes=EXCLUDED.timer_minutes,
            timer_seconds=EXCLUDED.timer_seconds,
            updated_at=NOW()
        RETURNING created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		settings.HeaderColor,
		settings.BackgroundColor,
		settings.CustomMessages.Message1,
		settings.CustomMessages.Message2,
		settings.IntroductionForm.NameLabel,
		settings.IntroductionForm.NamePlaceholder,
		settings.IntroductionForm.PhoneLabel,
		settings.IntroductionForm.PhonePlaceholder,
		settings.IntroductionForm.EmailLabel,
		settings.IntroductionForm.EmailPlaceholder,
		settings.WelcomeMessage,
		settings.MissedChatTimer.Hours,
		settings.MissedChatTimer.Minutes,
		settings.MissedChatTimer.Seconds,
	).Scan(&settings.CreatedAt, &settings.UpdatedAt)
}

func (r *settingsRepository) Reset(ctx context.Context) (*domain.ChatbotSettings, error) {
	if _, err := r.pool.Exec(ctx, `DELETE FROM chatbot_settings WHERE id=1`); err != nil {
		return nil, err
	}
	defaults := domain.DefaultChatbotSettings()
	if err := r.Save(ctx, defaults); err != nil {
		return nil, err
	}
	return defaults, nil
}
