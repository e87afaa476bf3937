package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Juste-Gnimavo/cechemoi-notifications/internal/notification_service/domain"
)

type PgSettingsRepository struct {
	db     PgxIface
	logger *slog.Logger
}

func NewPgSettingsRepository(db PgxIface, logger *slog.Logger) *PgSettingsRepository {
	return &PgSettingsRepository{db: db, logger: logger.With("component", "settings_repository_pg")}
}

func (r *PgSettingsRepository) GetNotificationSettings(ctx context.Context) (*domain.NotificationSettings, error) {
	query := `
		SELECT id, channels, failover_order, test_mode, test_phone_number, admin_phone, admin_whatsapp, updated_at
		FROM notification_settings WHERE id = $1
	`
	var (
		s            domain.NotificationSettings
		channelsJSON []byte
		failoverJSON []byte
	)
	err := r.db.QueryRow(ctx, query, domain.DefaultSettingsID).Scan(
		&s.ID, &channelsJSON, &failoverJSON, &s.TestMode,
		&s.TestPhoneNumber, &s.AdminPhone, &s.AdminWhatsApp, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSettingsNotFound
		}
		return nil, fmt.Errorf("loading notification settings: %w", err)
	}
	if err := json.Unmarshal(channelsJSON, &s.Channels); err != nil {
		return nil, fmt.Errorf("decoding channel config: %w", err)
	}
	if err := json.Unmarshal(failoverJSON, &s.FailoverOrder); err != nil {
		return nil, fmt.Errorf("decoding failover order: %w", err)
	}
	return &s, nil
}

// UpdateNotificationSettings writes the singleton with last-writer-wins
// semantics; administrative edits are infrequent and human-triggered.
func (r *PgSettingsRepository) UpdateNotificationSettings(ctx context.Context, s *domain.NotificationSettings) error {
	channelsJSON, err := json.Marshal(s.Channels)
	if err != nil {
		return fmt.Errorf("encoding channel config: %w", err)
	}
	failoverJSON, err := json.Marshal(s.FailoverOrder)
	if err != nil {
		return fmt.Errorf("encoding failover order: %w", err)
	}
	query := `
		INSERT INTO notification_settings (id, channels, failover_order, test_mode, test_phone_number, admin_phone, admin_whatsapp, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE
		SET channels = EXCLUDED.channels,
		    failover_order = EXCLUDED.failover_order,
		    test_mode = EXCLUDED.test_mode,
		    test_phone_number = EXCLUDED.test_phone_number,
		    admin_phone = EXCLUDED.admin_phone,
		    admin_whatsapp = EXCLUDED.admin_whatsapp,
		    updated_at = EXCLUDED.updated_at
	`
	_, err = r.db.Exec(ctx, query,
		domain.DefaultSettingsID, channelsJSON, failoverJSON,
		s.TestMode, s.TestPhoneNumber, s.AdminPhone, s.AdminWhatsApp, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("updating notification settings: %w", err)
	}
	return nil
}

func (r *PgSettingsRepository) GetPaymentFollowUpSettings(ctx context.Context) (*domain.PaymentFollowUpSettings, error) {
	query := `
		SELECT id, enabled,
		       reminder1_delay_hours, reminder1_enabled,
		       reminder2_delay_hours, reminder2_enabled,
		       reminder3_delay_hours, reminder3_enabled,
		       max_attempts_per_slot, updated_at
		FROM payment_followup_settings WHERE id = $1
	`
	var s domain.PaymentFollowUpSettings
	err := r.db.QueryRow(ctx, query, domain.DefaultSettingsID).Scan(
		&s.ID, &s.Enabled,
		&s.Reminders[0].DelayHours, &s.Reminders[0].Enabled,
		&s.Reminders[1].DelayHours, &s.Reminders[1].Enabled,
		&s.Reminders[2].DelayHours, &s.Reminders[2].Enabled,
		&s.MaxAttemptsPerSlot, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSettingsNotFound
		}
		return nil, fmt.Errorf("loading payment follow-up settings: %w", err)
	}
	return &s, nil
}

func (r *PgSettingsRepository) UpdatePaymentFollowUpSettings(ctx context.Context, s *domain.PaymentFollowUpSettings) error {
	query := `
		INSERT INTO payment_followup_settings
			(id, enabled,
			 reminder1_delay_hours, reminder1_enabled,
			 reminder2_delay_hours, reminder2_enabled,
			 reminder3_delay_hours, reminder3_enabled,
			 max_attempts_per_slot, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE
		SET enabled = EXCLUDED.enabled,
		    reminder1_delay_hours = EXCLUDED.reminder1_delay_hours,
		    reminder1_enabled = EXCLUDED.reminder1_enabled,
		    reminder2_delay_hours = EXCLUDED.reminder2_delay_hours,
		    reminder2_enabled = EXCLUDED.reminder2_enabled,
		    reminder3_delay_hours = EXCLUDED.reminder3_delay_hours,
		    reminder3_enabled = EXCLUDED.reminder3_enabled,
		    max_attempts_per_slot = EXCLUDED.max_attempts_per_slot,
		    updated_at = EXCLUDED.updated_at
	`
	_, err := r.db.Exec(ctx, query,
		domain.DefaultSettingsID, s.Enabled,
		s.Reminders[0].DelayHours, s.Reminders[0].Enabled,
		s.Reminders[1].DelayHours, s.Reminders[1].Enabled,
		s.Reminders[2].DelayHours, s.Reminders[2].Enabled,
		s.MaxAttemptsPerSlot, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("updating payment follow-up settings: %w", err)
	}
	return nil
}

// EnsureDefaults materializes both singleton rows on first start without
// touching existing configuration.
func (r *PgSettingsRepository) EnsureDefaults(ctx context.Context) error {
	now := time.Now().UTC()

	defaultChannels, err := json.Marshal(map[domain.Channel]domain.ChannelConfig{
		domain.ChannelSMS:      {Enabled: true, SenderID: "CECHEMOI"},
		domain.ChannelWhatsApp: {Enabled: true},
	})
	if err != nil {
		return fmt.Errorf("encoding default channel config: %w", err)
	}
	defaultFailover, err := json.Marshal([]domain.Channel{domain.ChannelWhatsApp, domain.ChannelSMS})
	if err != nil {
		return fmt.Errorf("encoding default failover order: %w", err)
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO notification_settings (id, channels, failover_order, test_mode, test_phone_number, admin_phone, admin_whatsapp, updated_at)
		VALUES ($1, $2, $3, FALSE, '', '', '', $4)
		ON CONFLICT (id) DO NOTHING
	`, domain.DefaultSettingsID, defaultChannels, defaultFailover, now)
	if err != nil {
		return fmt.Errorf("ensuring default notification settings: %w", err)
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO payment_followup_settings
			(id, enabled,
			 reminder1_delay_hours, reminder1_enabled,
			 reminder2_delay_hours, reminder2_enabled,
			 reminder3_delay_hours, reminder3_enabled,
			 max_attempts_per_slot, updated_at)
		VALUES ($1, TRUE, 24, TRUE, 72, TRUE, 120, TRUE, 5, $2)
		ON CONFLICT (id) DO NOTHING
	`, domain.DefaultSettingsID, now)
	if err != nil {
		return fmt.Errorf("ensuring default payment follow-up settings: %w", err)
	}
	return nil
}
