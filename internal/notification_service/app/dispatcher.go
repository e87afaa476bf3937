package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Juste-Gnimavo/cechemoi-notifications/internal/notification_service/domain"
	"github.com/Juste-Gnimavo/cechemoi-notifications/internal/notification_service/provider"
	"github.com/Juste-Gnimavo/cechemoi-notifications/internal/notification_service/render"
)

// adminAlertSubject is the out-of-band escalation channel for admin-facing
// triggers whose delivery failed on every configured channel.
const adminAlertSubject = "notifications.alerts.admin"

// AlertPublisher publishes out-of-band alerts. Satisfied by
// messagebroker.NATSClient.
type AlertPublisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

// NotificationContext carries everything a single Notify call needs beyond
// the trigger itself: the idempotency reference, the recipient's contact
// fields and the placeholder values for rendering.
type NotificationContext struct {
	// OrderID is the order (or invoice) this notification belongs to. For
	// order-less triggers (daily report, low stock) callers supply a
	// synthetic reference such as "report:2026-08-30" so idempotency still
	// holds per event.
	OrderID string

	CustomerPhone    string
	CustomerWhatsApp string

	// Values feeds the template renderer.
	Values map[string]string
}

// DispatchResult is the outcome of one Notify call.
type DispatchResult struct {
	Delivered bool
	Channel   domain.Channel
	// AlreadyDelivered is set when a success attempt for (OrderID, trigger)
	// existed before this call did any work, or when this call lost the
	// claim race to a concurrent dispatcher.
	AlreadyDelivered bool
	// MissingPlaceholders lists template tokens that had no value in the
	// context; the message was still sent with the literal tokens.
	MissingPlaceholders []string
}

// Dispatcher resolves a template for a trigger, renders it and sends it
// through the configured failover chain, stopping at the first success.
type Dispatcher struct {
	templateRepo domain.TemplateRepository
	settingsRepo domain.SettingsRepository
	attemptRepo  domain.DeliveryAttemptRepository
	providers    map[domain.Channel]provider.NotificationSenderProvider
	alerts       AlertPublisher
	logger       *slog.Logger
	sendTimeout  time.Duration
}

// NewDispatcher creates a Dispatcher. alerts may be nil when no out-of-band
// escalation channel is available.
func NewDispatcher(
	templateRepo domain.TemplateRepository,
	settingsRepo domain.SettingsRepository,
	attemptRepo domain.DeliveryAttemptRepository,
	providers map[domain.Channel]provider.NotificationSenderProvider,
	alerts AlertPublisher,
	logger *slog.Logger,
	sendTimeout time.Duration,
) *Dispatcher {
	if sendTimeout <= 0 {
		sendTimeout = 15 * time.Second
	}
	return &Dispatcher{
		templateRepo: templateRepo,
		settingsRepo: settingsRepo,
		attemptRepo:  attemptRepo,
		providers:    providers,
		alerts:       alerts,
		logger:       logger.With("component", "dispatcher"),
		sendTimeout:  sendTimeout,
	}
}

// Notify attempts delivery of the message for trigger to the recipient
// described by nctx, walking the configured failover order. At most one
// channel is used per call; success on one channel suppresses all later
// ones. Every attempt, success or failure, is appended to the delivery log.
// On total exhaustion it returns domain.ErrAllChannelsExhausted.
func (d *Dispatcher) Notify(ctx context.Context, trigger domain.Trigger, kind domain.RecipientKind, nctx NotificationContext) (*DispatchResult, error) {
	if !trigger.Valid() {
		return nil, fmt.Errorf("unknown trigger: %s", trigger)
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown recipient kind: %s", kind)
	}

	settings, err := d.settingsRepo.GetNotificationSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load notification settings: %w", err)
	}

	// Cheap pre-check; the partial unique index on the delivery log is the
	// real guard against concurrent dispatchers.
	if nctx.OrderID != "" {
		delivered, err := d.attemptRepo.HasSuccess(ctx, nctx.OrderID, trigger)
		if err != nil {
			return nil, fmt.Errorf("failed to check delivery log: %w", err)
		}
		if delivered {
			d.logger.InfoContext(ctx, "Notification already delivered, skipping", "trigger", trigger, "order_id", nctx.OrderID)
			return &DispatchResult{Delivered: true, AlreadyDelivered: true}, nil
		}
	}

	attempted := 0
	for _, channel := range settings.FailoverOrder {
		if !settings.ChannelEnabled(channel) {
			continue
		}
		snd, ok := d.providers[channel]
		if !ok {
			d.logger.WarnContext(ctx, "No sender configured for enabled channel", "channel", channel)
			continue
		}

		tpl, err := d.templateRepo.Resolve(ctx, trigger, channel)
		if err != nil {
			if errors.Is(err, domain.ErrTemplateNotFound) {
				// Not a failure: the business event has no message on this
				// channel.
				continue
			}
			return nil, fmt.Errorf("failed to resolve template for (%s, %s): %w", trigger, channel, err)
		}
		if !tpl.Enabled || tpl.RecipientKind != kind {
			continue
		}

		address := d.resolveAddress(channel, kind, nctx, settings)
		if address == "" {
			d.logger.WarnContext(ctx, "No recipient address for channel", "trigger", trigger, "channel", channel, "recipient_kind", kind)
			attempt := domain.NewDeliveryAttempt(nctx.OrderID, trigger, channel, "")
			attempt.Status = domain.AttemptStatusFailure
			attempt.FailureKind = domain.FailureKindPermanent
			resp := "no recipient address available"
			attempt.ProviderResponse = &resp
			if recErr := d.attemptRepo.RecordFailure(ctx, attempt); recErr != nil {
				d.logger.ErrorContext(ctx, "Failed to record delivery attempt", "error", recErr, "order_id", nctx.OrderID)
			}
			attempted++
			continue
		}

		body, missing := render.Render(tpl.Body, nctx.Values)
		if len(missing) > 0 {
			d.logger.WarnContext(ctx, "Template rendered with missing placeholders",
				"trigger", trigger, "channel", channel, "missing", missing)
		}

		attempted++
		attempt := domain.NewDeliveryAttempt(nctx.OrderID, trigger, channel, address)

		sendCtx, cancel := context.WithTimeout(ctx, d.sendTimeout)
		resp, sendErr := snd.Send(sendCtx, provider.SendRequestDetails{
			InternalMessageID: attempt.ID.String(),
			SenderID:          settings.Channels[channel].SenderID,
			Recipient:         address,
			Content:           body,
		})
		cancel()

		if sendErr == nil && resp != nil && resp.IsSuccess {
			attempt.Status = domain.AttemptStatusSuccess
			if resp.ProviderMessageID != "" {
				attempt.ProviderMessageID = &resp.ProviderMessageID
			}
			if resp.ProviderStatus != "" {
				attempt.ProviderResponse = &resp.ProviderStatus
			}
			inserted, recErr := d.attemptRepo.RecordSuccess(ctx, attempt)
			if recErr != nil {
				return nil, fmt.Errorf("failed to record success attempt: %w", recErr)
			}
			if !inserted {
				// A concurrent dispatcher won the claim; its attempt is the
				// delivery of record.
				d.logger.InfoContext(ctx, "Lost delivery claim to concurrent dispatch", "trigger", trigger, "order_id", nctx.OrderID)
				return &DispatchResult{Delivered: true, AlreadyDelivered: true}, nil
			}
			d.logger.InfoContext(ctx, "Notification delivered",
				"trigger", trigger, "channel", channel, "order_id", nctx.OrderID, "provider", snd.GetName())
			notificationsDispatchedCounter.WithLabelValues(string(trigger), string(channel), "success").Inc()
			return &DispatchResult{Delivered: true, Channel: channel, MissingPlaceholders: missing}, nil
		}

		// Failure on this channel: log it, record it, fall through to the
		// next channel in the order.
		attempt.Status = domain.AttemptStatusFailure
		attempt.FailureKind = failureKindOf(sendErr)
		if resp != nil {
			if resp.ProviderStatus != "" {
				attempt.ProviderResponse = &resp.ProviderStatus
			}
			if resp.ErrorMessage != "" {
				msg := resp.ErrorMessage
				attempt.ProviderResponse = &msg
			}
		} else if sendErr != nil {
			msg := sendErr.Error()
			attempt.ProviderResponse = &msg
		}
		if recErr := d.attemptRepo.RecordFailure(ctx, attempt); recErr != nil {
			d.logger.ErrorContext(ctx, "Failed to record failure attempt", "error", recErr, "order_id", nctx.OrderID)
		}
		notificationsDispatchedCounter.WithLabelValues(string(trigger), string(channel), "failure").Inc()
		d.logger.WarnContext(ctx, "Channel send failed, trying next channel",
			"trigger", trigger, "channel", channel, "order_id", nctx.OrderID,
			"failure_kind", attempt.FailureKind, "error", sendErr)

		if ctx.Err() != nil {
			// Deadline exceeded mid-failover: attempts already appended
			// stand, the call fails overall.
			break
		}
	}

	d.logger.ErrorContext(ctx, "Notification undeliverable on all channels",
		"trigger", trigger, "order_id", nctx.OrderID, "recipient_kind", kind, "channels_attempted", attempted)
	notificationsExhaustedCounter.WithLabelValues(string(trigger)).Inc()

	if kind == domain.RecipientAdmin {
		d.escalateAdminFailure(ctx, trigger, nctx.OrderID)
	}

	return &DispatchResult{Delivered: false}, domain.ErrAllChannelsExhausted
}

// resolveAddress picks the destination address for a channel. WhatsApp
// channels prefer the WhatsApp-specific number and fall back to the general
// phone number. Test mode overrides everything with the test number.
func (d *Dispatcher) resolveAddress(channel domain.Channel, kind domain.RecipientKind, nctx NotificationContext, settings *domain.NotificationSettings) string {
	if settings.TestMode {
		return settings.TestPhoneNumber
	}

	var phone, whatsapp string
	switch kind {
	case domain.RecipientAdmin:
		phone = settings.AdminPhone
		whatsapp = settings.AdminWhatsApp
	default:
		phone = nctx.CustomerPhone
		whatsapp = nctx.CustomerWhatsApp
	}

	switch channel {
	case domain.ChannelWhatsApp, domain.ChannelWhatsAppCloud:
		if whatsapp != "" {
			return whatsapp
		}
		return phone
	default:
		return phone
	}
}

// escalateAdminFailure publishes the total delivery failure of an
// admin-critical trigger to the internal alert subject. There is no further
// fallback beyond the configured channel list, so this must stay visible.
func (d *Dispatcher) escalateAdminFailure(ctx context.Context, trigger domain.Trigger, orderID string) {
	if d.alerts == nil {
		return
	}
	payload, err := json.Marshal(map[string]string{
		"trigger":  string(trigger),
		"order_id": orderID,
		"reason":   "all notification channels exhausted",
	})
	if err != nil {
		return
	}
	if err := d.alerts.Publish(ctx, adminAlertSubject, payload); err != nil {
		d.logger.ErrorContext(ctx, "Failed to publish admin delivery alert", "error", err, "trigger", trigger)
	}
}

func failureKindOf(err error) domain.FailureKind {
	if err == nil {
		return domain.FailureKindRetryable
	}
	return provider.Classify(err)
}
