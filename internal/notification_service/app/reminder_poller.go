package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/Juste-Gnimavo/cechemoi-notifications/internal/notification_service/domain"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
)

// Notifier is the dispatcher capability the poller needs; it exists so
// tests can substitute the real Dispatcher.
type Notifier interface {
	Notify(ctx context.Context, trigger domain.Trigger, kind domain.RecipientKind, nctx NotificationContext) (*DispatchResult, error)
}

// PollerConfig holds configuration specific to the ReminderPoller.
type PollerConfig struct {
	PollingInterval time.Duration `mapstructure:"REMINDER_POLLING_INTERVAL"`
	OrderBatchSize  int           `mapstructure:"REMINDER_ORDER_BATCH_SIZE"`
	WorkerLimit     int           `mapstructure:"REMINDER_WORKER_LIMIT"`
}

// ReminderPoller periodically scans unpaid orders and dispatches payment
// reminders whose delay has elapsed. It keeps no schedule of its own: "due"
// is re-derived from live order state and the delivery log every tick, so a
// payment or cancellation between ticks needs no cancellation bookkeeping.
type ReminderPoller struct {
	settingsRepo domain.SettingsRepository
	orderRepo    domain.OrderRepository
	attemptRepo  domain.DeliveryAttemptRepository
	notifier     Notifier
	logger       *slog.Logger
	config       PollerConfig
	now          func() time.Time
}

// NewReminderPoller creates a new ReminderPoller instance.
func NewReminderPoller(
	settingsRepo domain.SettingsRepository,
	orderRepo domain.OrderRepository,
	attemptRepo domain.DeliveryAttemptRepository,
	notifier Notifier,
	logger *slog.Logger,
	cfg PollerConfig,
) *ReminderPoller {
	if cfg.WorkerLimit <= 0 {
		cfg.WorkerLimit = 4
	}
	if cfg.OrderBatchSize <= 0 {
		cfg.OrderBatchSize = 100
	}
	return &ReminderPoller{
		settingsRepo: settingsRepo,
		orderRepo:    orderRepo,
		attemptRepo:  attemptRepo,
		notifier:     notifier,
		logger:       logger.With("component", "reminder_poller"),
		config:       cfg,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// PollAndProcessReminders runs one tick: it evaluates every unpaid order
// against the follow-up settings and dispatches due reminders. It returns
// the number of dispatch calls made. One order's failure never blocks the
// others; only settings/order-list loading errors are critical.
func (p *ReminderPoller) PollAndProcessReminders(ctx context.Context) (int, error) {
	timer := prometheus.NewTimer(reminderTickDurationHist)
	defer timer.ObserveDuration()

	followUp, err := p.settingsRepo.GetPaymentFollowUpSettings(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load payment follow-up settings: %w", err)
	}
	if !followUp.Enabled {
		p.logger.DebugContext(ctx, "Payment follow-up disabled, skipping tick")
		return 0, nil
	}

	orders, err := p.orderRepo.ListUnpaid(ctx, p.config.OrderBatchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to list unpaid orders: %w", err)
	}
	if len(orders) == 0 {
		return 0, nil
	}

	p.logger.InfoContext(ctx, "Evaluating unpaid orders for reminders", "count", len(orders))

	var dispatched atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.config.WorkerLimit)

	for _, order := range orders {
		order := order
		g.Go(func() error {
			n := p.processOrder(gctx, order, followUp)
			dispatched.Add(int64(n))
			// Per-order errors are logged inside; never abort the tick.
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return int(dispatched.Load()), err
	}

	return int(dispatched.Load()), nil
}

// processOrder evaluates the three reminder slots for one order in
// ascending order. Ascending evaluation guards against misconfigured
// delays (e.g. delay2 < delay1) promoting a later reminder ahead of an
// earlier one within a tick.
func (p *ReminderPoller) processOrder(ctx context.Context, order *domain.OrderSnapshot, followUp *domain.PaymentFollowUpSettings) int {
	elapsed := p.now().Sub(order.CreatedAt)
	dispatched := 0

	for slot := 1; slot <= 3; slot++ {
		rule := followUp.Rule(slot)
		if !rule.Enabled {
			continue
		}
		if elapsed < time.Duration(rule.DelayHours)*time.Hour {
			continue
		}

		trigger, err := domain.TriggerForReminderSlot(slot)
		if err != nil {
			continue
		}

		sent, err := p.attemptRepo.HasSuccess(ctx, order.ID, trigger)
		if err != nil {
			p.logger.ErrorContext(ctx, "Failed to check delivery log for reminder", "error", err, "order_id", order.ID, "slot", slot)
			continue
		}
		if sent {
			continue
		}

		if followUp.MaxAttemptsPerSlot > 0 {
			failures, err := p.attemptRepo.CountFailures(ctx, order.ID, trigger)
			if err != nil {
				p.logger.ErrorContext(ctx, "Failed to count reminder failures", "error", err, "order_id", order.ID, "slot", slot)
				continue
			}
			if failures >= followUp.MaxAttemptsPerSlot {
				// Attempt cap reached; stop retrying this slot to avoid a
				// reminder storm against a dead number.
				p.logger.WarnContext(ctx, "Reminder attempt cap reached, suppressing slot",
					"order_id", order.ID, "slot", slot, "failures", failures)
				continue
			}
		}

		p.logger.InfoContext(ctx, "Payment reminder due, dispatching",
			"order_id", order.ID, "order_number", order.OrderNumber, "slot", slot, "elapsed_hours", int(elapsed.Hours()))

		nctx := NotificationContext{
			OrderID:          order.ID,
			CustomerPhone:    order.Customer.Phone,
			CustomerWhatsApp: order.Customer.WhatsAppNumber,
			Values:           BuildContext(order),
		}

		dispatched++
		result, err := p.notifier.Notify(ctx, trigger, domain.RecipientCustomer, nctx)
		if err != nil {
			// The failure attempts are already in the delivery log; the
			// next tick will retry, bounded by the attempt cap.
			remindersDispatchedCounter.WithLabelValues(fmt.Sprintf("%d", slot), "failure").Inc()
			p.logger.WarnContext(ctx, "Payment reminder dispatch failed", "error", err, "order_id", order.ID, "slot", slot)
			continue
		}
		remindersDispatchedCounter.WithLabelValues(fmt.Sprintf("%d", slot), "success").Inc()
		if result.AlreadyDelivered {
			p.logger.InfoContext(ctx, "Reminder already delivered by a concurrent tick", "order_id", order.ID, "slot", slot)
		}
	}

	return dispatched
}
