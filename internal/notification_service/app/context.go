package app

import (
	"fmt"
	"strings"

	"github.com/Juste-Gnimavo/cechemoi-notifications/internal/notification_service/domain"
)

// BuildContext assembles the placeholder map for an order snapshot. Only
// fields present on the snapshot are mapped; templates referencing anything
// else keep the literal token (and the renderer reports it).
func BuildContext(order *domain.OrderSnapshot) map[string]string {
	values := map[string]string{
		"customer_name":      order.Customer.Name,
		"billing_first_name": order.Customer.FirstName,
		"billing_last_name":  order.Customer.LastName,
		"billing_phone":      order.Customer.Phone,
		"order_number":       order.OrderNumber,
		"order_total":        order.Total,
		"currency":           order.Currency,
		"order_date":         order.CreatedAt.Format("02/01/2006"),
		"payment_status":     string(order.PaymentStatus),
	}

	if order.Customer.BillingAddress != "" {
		values["billing_address"] = order.Customer.BillingAddress
	}
	if order.PaymentMethod != "" {
		values["payment_method"] = order.PaymentMethod
	}
	if order.TrackingNumber != "" {
		values["tracking_number"] = order.TrackingNumber
	}
	if order.InvoiceNumber != "" {
		values["invoice_number"] = order.InvoiceNumber
	}
	if len(order.Items) > 0 {
		values["order_product_with_qty"] = formatItems(order.Items)
	}

	return values
}

func formatItems(items []domain.OrderItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, fmt.Sprintf("%s x%d", item.ProductName, item.Quantity))
	}
	return strings.Join(parts, ", ")
}
