package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Juste-Gnimavo/cechemoi-notifications/internal/notification_service/domain"
)

func TestBuildContext(t *testing.T) {
	order := &domain.OrderSnapshot{
		ID:            "ord-1001",
		OrderNumber:   "CM-2041",
		CreatedAt:     time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		PaymentStatus: domain.PaymentStatusUnpaid,
		PaymentMethod: "Mobile Money",
		Total:         "45 000",
		Currency:      "FCFA",
		Items: []domain.OrderItem{
			{ProductName: "Robe wax", Quantity: 2},
			{ProductName: "Foulard", Quantity: 1},
		},
		TrackingNumber: "TRK-889",
		Customer: domain.CustomerSnapshot{
			Name:           "Aïcha Soglo",
			FirstName:      "Aïcha",
			LastName:       "Soglo",
			Phone:          "+22997000001",
			BillingAddress: "Cotonou, Akpakpa",
		},
	}

	values := BuildContext(order)

	assert.Equal(t, "Aïcha Soglo", values["customer_name"])
	assert.Equal(t, "Aïcha", values["billing_first_name"])
	assert.Equal(t, "CM-2041", values["order_number"])
	assert.Equal(t, "45 000", values["order_total"])
	assert.Equal(t, "FCFA", values["currency"])
	assert.Equal(t, "14/03/2026", values["order_date"])
	assert.Equal(t, "Robe wax x2, Foulard x1", values["order_product_with_qty"])
	assert.Equal(t, "TRK-889", values["tracking_number"])
	assert.Equal(t, "Mobile Money", values["payment_method"])
}

func TestBuildContext_OmitsEmptyOptionalFields(t *testing.T) {
	order := &domain.OrderSnapshot{
		ID:          "ord-1002",
		OrderNumber: "CM-2042",
		CreatedAt:   time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		Total:       "12 000",
		Currency:    "FCFA",
		Customer:    domain.CustomerSnapshot{Name: "Jean K."},
	}

	values := BuildContext(order)

	_, hasTracking := values["tracking_number"]
	assert.False(t, hasTracking)
	_, hasInvoice := values["invoice_number"]
	assert.False(t, hasInvoice)
	_, hasAddress := values["billing_address"]
	assert.False(t, hasAddress)
}
