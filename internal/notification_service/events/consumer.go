// Package events subscribes to the back-office business events and turns
// them into notification dispatches.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Juste-Gnimavo/cechemoi-notifications/internal/notification_service/app"
	"github.com/Juste-Gnimavo/cechemoi-notifications/internal/notification_service/domain"
	"github.com/Juste-Gnimavo/cechemoi-notifications/internal/platform/messagebroker"

	"github.com/nats-io/nats.go"
)

// Subjects published by the order/inventory subsystems.
const (
	SubjectOrderPlaced    = "orders.events.placed"
	SubjectOrderConfirmed = "orders.events.confirmed"
	SubjectOrderShipped   = "orders.events.shipped"
	SubjectOrderDelivered = "orders.events.delivered"
	SubjectOrderCancelled = "orders.events.cancelled"
	SubjectPaymentsPaid   = "orders.events.paid"
	SubjectInvoiceCreated = "invoices.events.created"
	SubjectLowStock       = "inventory.events.low_stock"

	queueGroup = "notification-service"

	// handlerTimeout bounds one event's full failover chain.
	handlerTimeout = 60 * time.Second
)

// OrderEventPayload is the envelope the order subsystem publishes. It
// carries a full snapshot so the consumer needs no read-back.
type OrderEventPayload struct {
	Order domain.OrderSnapshot `json:"order"`
}

// LowStockEventPayload is published by the inventory subsystem.
type LowStockEventPayload struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Stock       int    `json:"stock"`
	Threshold   int    `json:"threshold"`
}

// Consumer wires NATS subjects to dispatcher calls.
type Consumer struct {
	natsClient *messagebroker.NATSClient
	notifier   app.Notifier
	logger     *slog.Logger
	subs       []*nats.Subscription
}

func NewConsumer(natsClient *messagebroker.NATSClient, notifier app.Notifier, logger *slog.Logger) *Consumer {
	return &Consumer{
		natsClient: natsClient,
		notifier:   notifier,
		logger:     logger.With("component", "event_consumer"),
	}
}

// orderTriggers maps a subject to the customer-facing trigger it produces.
// ORDER_PLACED additionally fans out NEW_ORDER_ADMIN.
var orderTriggers = map[string]domain.Trigger{
	SubjectOrderPlaced:    domain.TriggerOrderPlaced,
	SubjectOrderConfirmed: domain.TriggerOrderConfirmed,
	SubjectOrderShipped:   domain.TriggerOrderShipped,
	SubjectOrderDelivered: domain.TriggerOrderDelivered,
	SubjectOrderCancelled: domain.TriggerOrderCancelled,
	SubjectPaymentsPaid:   domain.TriggerPaymentReceived,
	SubjectInvoiceCreated: domain.TriggerInvoiceCreated,
}

// Start subscribes to every business-event subject. Subscriptions share a
// queue group so multiple service instances split the load.
func (c *Consumer) Start(ctx context.Context) error {
	for subject := range orderTriggers {
		subject := subject
		sub, err := c.natsClient.Subscribe(ctx, subject, queueGroup, func(msg *nats.Msg) {
			c.handleOrderEvent(subject, msg)
		})
		if err != nil {
			return fmt.Errorf("failed to subscribe to '%s': %w", subject, err)
		}
		c.subs = append(c.subs, sub)
	}

	sub, err := c.natsClient.Subscribe(ctx, SubjectLowStock, queueGroup, c.handleLowStockEvent)
	if err != nil {
		return fmt.Errorf("failed to subscribe to '%s': %w", SubjectLowStock, err)
	}
	c.subs = append(c.subs, sub)

	return nil
}

func (c *Consumer) handleOrderEvent(subject string, msg *nats.Msg) {
	var payload OrderEventPayload
	if err := json.Unmarshal(msg.Data, &payload); err != nil {
		c.logger.Error("Failed to unmarshal order event", "error", err, "subject", subject)
		return
	}
	order := &payload.Order
	if order.ID == "" {
		c.logger.Error("Order event without order id, dropping", "subject", subject)
		return
	}

	trigger := orderTriggers[subject]
	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	c.logger.InfoContext(ctx, "Processing order event", "subject", subject, "order_id", order.ID, "trigger", trigger)

	nctx := app.NotificationContext{
		OrderID:          order.ID,
		CustomerPhone:    order.Customer.Phone,
		CustomerWhatsApp: order.Customer.WhatsAppNumber,
		Values:           app.BuildContext(order),
	}

	if _, err := c.notifier.Notify(ctx, trigger, domain.RecipientCustomer, nctx); err != nil {
		if !errors.Is(err, domain.ErrAllChannelsExhausted) {
			c.logger.ErrorContext(ctx, "Failed to dispatch customer notification", "error", err, "subject", subject, "order_id", order.ID)
		}
		// ErrAllChannelsExhausted is already logged and recorded by the
		// dispatcher; nothing more to do for a fire-and-forget event.
	}

	if subject == SubjectOrderPlaced {
		if _, err := c.notifier.Notify(ctx, domain.TriggerNewOrderAdmin, domain.RecipientAdmin, nctx); err != nil &&
			!errors.Is(err, domain.ErrAllChannelsExhausted) {
			c.logger.ErrorContext(ctx, "Failed to dispatch admin notification", "error", err, "order_id", order.ID)
		}
	}
}

func (c *Consumer) handleLowStockEvent(msg *nats.Msg) {
	var payload LowStockEventPayload
	if err := json.Unmarshal(msg.Data, &payload); err != nil {
		c.logger.Error("Failed to unmarshal low stock event", "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	nctx := app.NotificationContext{
		// Synthetic reference keeps the dispatch idempotent per product
		// alert without an order id.
		OrderID: "lowstock:" + payload.ProductID,
		Values: map[string]string{
			"product_name":        payload.ProductName,
			"product_stock":       fmt.Sprintf("%d", payload.Stock),
			"low_stock_threshold": fmt.Sprintf("%d", payload.Threshold),
		},
	}

	if _, err := c.notifier.Notify(ctx, domain.TriggerLowStockAdmin, domain.RecipientAdmin, nctx); err != nil &&
		!errors.Is(err, domain.ErrAllChannelsExhausted) {
		c.logger.ErrorContext(ctx, "Failed to dispatch low stock alert", "error", err, "product_id", payload.ProductID)
	}
}

// Stop unsubscribes from every subject.
func (c *Consumer) Stop() {
	for _, sub := range c.subs {
		if sub != nil && sub.IsValid() {
			if err := sub.Unsubscribe(); err != nil {
				c.logger.Error("Failed to unsubscribe", "error", err, "subject", sub.Subject)
			}
		}
	}
	c.subs = nil
}
