package domain

import "fmt"

// Trigger identifies a business event that may produce a notification.
type Trigger string

const (
	TriggerOrderPlaced      Trigger = "ORDER_PLACED"
	TriggerOrderConfirmed   Trigger = "ORDER_CONFIRMED"
	TriggerOrderShipped     Trigger = "ORDER_SHIPPED"
	TriggerOrderDelivered   Trigger = "ORDER_DELIVERED"
	TriggerOrderCancelled   Trigger = "ORDER_CANCELLED"
	TriggerPaymentReceived  Trigger = "PAYMENT_RECEIVED"
	TriggerPaymentReminder1 Trigger = "PAYMENT_REMINDER_1"
	TriggerPaymentReminder2 Trigger = "PAYMENT_REMINDER_2"
	TriggerPaymentReminder3 Trigger = "PAYMENT_REMINDER_3"
	TriggerInvoiceCreated   Trigger = "INVOICE_CREATED"
	TriggerNewOrderAdmin    Trigger = "NEW_ORDER_ADMIN"
	TriggerLowStockAdmin    Trigger = "LOW_STOCK_ADMIN"
	TriggerDailyReportAdmin Trigger = "DAILY_REPORT_ADMIN"
)

// AllTriggers lists every known trigger, used for validation and seeding.
var AllTriggers = []Trigger{
	TriggerOrderPlaced,
	TriggerOrderConfirmed,
	TriggerOrderShipped,
	TriggerOrderDelivered,
	TriggerOrderCancelled,
	TriggerPaymentReceived,
	TriggerPaymentReminder1,
	TriggerPaymentReminder2,
	TriggerPaymentReminder3,
	TriggerInvoiceCreated,
	TriggerNewOrderAdmin,
	TriggerLowStockAdmin,
	TriggerDailyReportAdmin,
}

// Valid reports whether t is a known trigger.
func (t Trigger) Valid() bool {
	for _, known := range AllTriggers {
		if t == known {
			return true
		}
	}
	return false
}

// IsReminder reports whether t is one of the payment reminder triggers.
func (t Trigger) IsReminder() bool {
	_, ok := t.ReminderSlot()
	return ok
}

// ReminderSlot returns the 1-based reminder slot for payment reminder
// triggers, and false for every other trigger.
func (t Trigger) ReminderSlot() (int, bool) {
	switch t {
	case TriggerPaymentReminder1:
		return 1, true
	case TriggerPaymentReminder2:
		return 2, true
	case TriggerPaymentReminder3:
		return 3, true
	default:
		return 0, false
	}
}

// TriggerForReminderSlot maps a reminder slot (1..3) back to its trigger.
func TriggerForReminderSlot(slot int) (Trigger, error) {
	switch slot {
	case 1:
		return TriggerPaymentReminder1, nil
	case 2:
		return TriggerPaymentReminder2, nil
	case 3:
		return TriggerPaymentReminder3, nil
	default:
		return "", fmt.Errorf("invalid reminder slot: %d", slot)
	}
}

// RecipientKind determines which contact field of the notification context
// supplies the destination address.
type RecipientKind string

const (
	RecipientCustomer RecipientKind = "customer"
	RecipientAdmin    RecipientKind = "admin"
)

// Valid reports whether k is a known recipient kind.
func (k RecipientKind) Valid() bool {
	return k == RecipientCustomer || k == RecipientAdmin
}
