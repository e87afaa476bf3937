package domain

import (
	"context"
	"time"
)

// PaymentStatus is the payment state of an order as seen by this subsystem.
type PaymentStatus string

const (
	PaymentStatusUnpaid    PaymentStatus = "unpaid"
	PaymentStatusPaid      PaymentStatus = "paid"
	PaymentStatusCancelled PaymentStatus = "cancelled"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// OrderItem is one line of an order, read-only here.
type OrderItem struct {
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
}

// CustomerSnapshot carries the customer contact fields a notification needs.
type CustomerSnapshot struct {
	Name           string `json:"name"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Phone          string `json:"phone"`
	WhatsAppNumber string `json:"whatsapp_number,omitempty"`
	Email          string `json:"email,omitempty"`
	BillingAddress string `json:"billing_address,omitempty"`
}

// OrderSnapshot is the read-only view of an order/invoice owned by the
// order subsystem. The notification service never mutates it.
type OrderSnapshot struct {
	ID             string           `json:"id"`
	OrderNumber    string           `json:"order_number"`
	CreatedAt      time.Time        `json:"created_at"`
	PaymentStatus  PaymentStatus    `json:"payment_status"`
	PaymentMethod  string           `json:"payment_method,omitempty"`
	Total          string           `json:"total"` // pre-formatted amount
	Currency       string           `json:"currency"`
	Items          []OrderItem      `json:"items,omitempty"`
	TrackingNumber string           `json:"tracking_number,omitempty"`
	InvoiceNumber  string           `json:"invoice_number,omitempty"`
	Customer       CustomerSnapshot `json:"customer"`
}

// Unpaid reports whether the order still qualifies for payment reminders.
func (o *OrderSnapshot) Unpaid() bool {
	return o.PaymentStatus == PaymentStatusUnpaid
}

// OrderRepository is the read model over the order subsystem's tables.
type OrderRepository interface {
	// ListUnpaid returns orders that are currently unpaid and not
	// cancelled, oldest first, up to limit rows. The reminder poller
	// re-derives "due" status from this live set every tick rather than
	// keeping its own schedule.
	ListUnpaid(ctx context.Context, limit int) ([]*OrderSnapshot, error)

	// GetByID returns one order snapshot.
	GetByID(ctx context.Context, id string) (*OrderSnapshot, error)
}
