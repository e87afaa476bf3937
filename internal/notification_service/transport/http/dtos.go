package http

import (
	"time"

	"github.com/Juste-Gnimavo/cechemoi-notifications/internal/notification_service/domain"
)

// --- Request DTOs ---

// UpdateTemplateRequestDTO is the administrative edit of one template. The
// (trigger, channel) key comes from the URL, not the body.
type UpdateTemplateRequestDTO struct {
	Name          string `json:"name" validate:"required,max=120"`
	Description   string `json:"description" validate:"max=500"`
	RecipientKind string `json:"recipient_kind" validate:"required,oneof=customer admin"`
	Body          string `json:"body" validate:"required,max=2000"`
	Enabled       bool   `json:"enabled"`
}

// ChannelConfigDTO mirrors domain.ChannelConfig on the wire.
type ChannelConfigDTO struct {
	Enabled  bool   `json:"enabled"`
	SenderID string `json:"sender_id" validate:"max=120"`
	APIKey   string `json:"api_key" validate:"max=500"`
}

// UpdateNotificationSettingsRequestDTO replaces the delivery settings
// singleton (last writer wins).
type UpdateNotificationSettingsRequestDTO struct {
	Channels        map[string]ChannelConfigDTO `json:"channels" validate:"required,dive"`
	FailoverOrder   []string                    `json:"failover_order" validate:"required,min=1,dive,oneof=SMS WHATSAPP WHATSAPP_CLOUD"`
	TestMode        bool                        `json:"test_mode"`
	TestPhoneNumber string                      `json:"test_phone_number" validate:"required_if=TestMode true,omitempty,e164"`
	AdminPhone      string                      `json:"admin_phone" validate:"omitempty,e164"`
	AdminWhatsApp   string                      `json:"admin_whatsapp" validate:"omitempty,e164"`
}

// ReminderRuleDTO configures one payment reminder slot.
type ReminderRuleDTO struct {
	DelayHours int  `json:"delay_hours" validate:"min=1,max=8760"`
	Enabled    bool `json:"enabled"`
}

// UpdatePaymentFollowUpRequestDTO replaces the payment follow-up singleton.
type UpdatePaymentFollowUpRequestDTO struct {
	Enabled            bool               `json:"enabled"`
	Reminders          [3]ReminderRuleDTO `json:"reminders" validate:"required"`
	MaxAttemptsPerSlot int                `json:"max_attempts_per_slot" validate:"min=0,max=100"`
}

// SendTestRequestDTO asks the dispatcher to deliver one trigger's message
// immediately, normally with test mode on.
type SendTestRequestDTO struct {
	Trigger       string            `json:"trigger" validate:"required"`
	RecipientKind string            `json:"recipient_kind" validate:"required,oneof=customer admin"`
	OrderID       string            `json:"order_id" validate:"required,max=64"`
	Phone         string            `json:"phone" validate:"omitempty,e164"`
	Values        map[string]string `json:"values"`
}

// --- Response DTOs ---

type TemplateDTO struct {
	Trigger       string    `json:"trigger"`
	Channel       string    `json:"channel"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	RecipientKind string    `json:"recipient_kind"`
	Body          string    `json:"body"`
	Enabled       bool      `json:"enabled"`
	Customized    bool      `json:"customized"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func templateToDTO(tpl *domain.Template) TemplateDTO {
	return TemplateDTO{
		Trigger:       string(tpl.Trigger),
		Channel:       string(tpl.Channel),
		Name:          tpl.Name,
		Description:   tpl.Description,
		RecipientKind: string(tpl.RecipientKind),
		Body:          tpl.Body,
		Enabled:       tpl.Enabled,
		Customized:    tpl.Customized,
		CreatedAt:     tpl.CreatedAt,
		UpdatedAt:     tpl.UpdatedAt,
	}
}

type ListTemplatesResponseDTO struct {
	Templates  []TemplateDTO `json:"templates"`
	TotalCount int           `json:"total_count"`
}

type NotificationSettingsDTO struct {
	Channels        map[string]ChannelConfigDTO `json:"channels"`
	FailoverOrder   []string                    `json:"failover_order"`
	TestMode        bool                        `json:"test_mode"`
	TestPhoneNumber string                      `json:"test_phone_number,omitempty"`
	AdminPhone      string                      `json:"admin_phone,omitempty"`
	AdminWhatsApp   string                      `json:"admin_whatsapp,omitempty"`
	UpdatedAt       time.Time                   `json:"updated_at"`
}

func settingsToDTO(s *domain.NotificationSettings) NotificationSettingsDTO {
	channels := make(map[string]ChannelConfigDTO, len(s.Channels))
	for ch, cfg := range s.Channels {
		channels[string(ch)] = ChannelConfigDTO{Enabled: cfg.Enabled, SenderID: cfg.SenderID, APIKey: cfg.APIKey}
	}
	order := make([]string, 0, len(s.FailoverOrder))
	for _, ch := range s.FailoverOrder {
		order = append(order, string(ch))
	}
	return NotificationSettingsDTO{
		Channels:        channels,
		FailoverOrder:   order,
		TestMode:        s.TestMode,
		TestPhoneNumber: s.TestPhoneNumber,
		AdminPhone:      s.AdminPhone,
		AdminWhatsApp:   s.AdminWhatsApp,
		UpdatedAt:       s.UpdatedAt,
	}
}

type PaymentFollowUpDTO struct {
	Enabled            bool               `json:"enabled"`
	Reminders          [3]ReminderRuleDTO `json:"reminders"`
	MaxAttemptsPerSlot int                `json:"max_attempts_per_slot"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

func followUpToDTO(s *domain.PaymentFollowUpSettings) PaymentFollowUpDTO {
	var reminders [3]ReminderRuleDTO
	for i, rule := range s.Reminders {
		reminders[i] = ReminderRuleDTO{DelayHours: rule.DelayHours, Enabled: rule.Enabled}
	}
	return PaymentFollowUpDTO{
		Enabled:            s.Enabled,
		Reminders:          reminders,
		MaxAttemptsPerSlot: s.MaxAttemptsPerSlot,
		UpdatedAt:          s.UpdatedAt,
	}
}

type DeliveryAttemptDTO struct {
	ID                string    `json:"id"`
	OrderID           string    `json:"order_id"`
	Trigger           string    `json:"trigger"`
	Channel           string    `json:"channel"`
	Recipient         string    `json:"recipient"`
	Status            string    `json:"status"`
	FailureKind       string    `json:"failure_kind,omitempty"`
	ProviderMessageID string    `json:"provider_message_id,omitempty"`
	ProviderResponse  string    `json:"provider_response,omitempty"`
	SentAt            time.Time `json:"sent_at"`
}

func attemptToDTO(a *domain.DeliveryAttempt) DeliveryAttemptDTO {
	dto := DeliveryAttemptDTO{
		ID:          a.ID.String(),
		OrderID:     a.OrderID,
		Trigger:     string(a.Trigger),
		Channel:     string(a.Channel),
		Recipient:   a.Recipient,
		Status:      string(a.Status),
		FailureKind: string(a.FailureKind),
		SentAt:      a.SentAt,
	}
	if a.ProviderMessageID != nil {
		dto.ProviderMessageID = *a.ProviderMessageID
	}
	if a.ProviderResponse != nil {
		dto.ProviderResponse = *a.ProviderResponse
	}
	return dto
}

type ListAttemptsResponseDTO struct {
	Attempts   []DeliveryAttemptDTO `json:"attempts"`
	TotalCount int                  `json:"total_count"`
}

type SendTestResponseDTO struct {
	Delivered           bool     `json:"delivered"`
	Channel             string   `json:"channel,omitempty"`
	AlreadyDelivered    bool     `json:"already_delivered"`
	MissingPlaceholders []string `json:"missing_placeholders,omitempty"`
}
