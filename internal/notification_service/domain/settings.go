package domain

import (
	"context"
	"time"
)

// DefaultSettingsID is the fixed primary key of both configuration
// singletons. The rows are never deleted, only updated.
const DefaultSettingsID = "default"

// ChannelConfig holds the per-channel configuration inside
// NotificationSettings.
type ChannelConfig struct {
	Enabled  bool   `json:"enabled"`
	SenderID string `json:"sender_id"` // sender name or phone-number id at the provider
	APIKey   string `json:"api_key"`
}

// NotificationSettings is the singleton delivery configuration.
type NotificationSettings struct {
	ID       string                    `json:"id"`
	Channels map[Channel]ChannelConfig `json:"channels"`
	// FailoverOrder is the ordered list of channels attempted until one
	// succeeds.
	FailoverOrder []Channel `json:"failover_order"`
	// TestMode redirects every send to TestPhoneNumber regardless of
	// recipient kind or channel.
	TestMode        bool      `json:"test_mode"`
	TestPhoneNumber string    `json:"test_phone_number"`
	AdminPhone      string    `json:"admin_phone"`
	AdminWhatsApp   string    `json:"admin_whatsapp"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ChannelEnabled reports whether ch is globally enabled.
func (s *NotificationSettings) ChannelEnabled(ch Channel) bool {
	cfg, ok := s.Channels[ch]
	return ok && cfg.Enabled
}

// ReminderRule configures one payment reminder slot.
type ReminderRule struct {
	DelayHours int  `json:"delay_hours"`
	Enabled    bool `json:"enabled"`
}

// PaymentFollowUpSettings is the singleton payment reminder configuration.
type PaymentFollowUpSettings struct {
	ID      string `json:"id"`
	Enabled bool   `json:"enabled"`
	// Reminders holds slots 1..3 in ascending slot order.
	Reminders [3]ReminderRule `json:"reminders"`
	// MaxAttemptsPerSlot caps how many failed sends a reminder slot may
	// accumulate before the poller stops retrying it.
	MaxAttemptsPerSlot int       `json:"max_attempts_per_slot"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// Rule returns the rule for a 1-based slot.
func (s *PaymentFollowUpSettings) Rule(slot int) ReminderRule {
	return s.Reminders[slot-1]
}

// SettingsRepository manages both configuration singletons. Reads are
// frequent (once per Notify / per tick); writes are infrequent
// administrative edits with last-writer-wins semantics.
type SettingsRepository interface {
	GetNotificationSettings(ctx context.Context) (*NotificationSettings, error)
	UpdateNotificationSettings(ctx context.Context, s *NotificationSettings) error
	GetPaymentFollowUpSettings(ctx context.Context) (*PaymentFollowUpSettings, error)
	UpdatePaymentFollowUpSettings(ctx context.Context, s *PaymentFollowUpSettings) error
}
