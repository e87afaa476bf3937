package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/Juste-Gnimavo/cechemoi-notifications/internal/notification_service/domain"
)

// PgOrderRepository is a read-only view over the order subsystem's tables.
// The notification service never writes them.
type PgOrderRepository struct {
	db     PgxIface
	logger *slog.Logger
}

func NewPgOrderRepository(db PgxIface, logger *slog.Logger) domain.OrderRepository {
	return &PgOrderRepository{db: db, logger: logger.With("component", "order_repository_pg")}
}

const orderColumns = `
	o.id, o.order_number, o.created_at, o.payment_status, o.payment_method,
	o.total, o.currency, o.tracking_number, o.invoice_number,
	c.name, c.first_name, c.last_name, c.phone, c.whatsapp_number, c.email, c.billing_address`

func scanOrder(row pgx.Row) (*domain.OrderSnapshot, error) {
	var (
		o                             domain.OrderSnapshot
		paymentMethod, trackingNumber sql.NullString
		invoiceNumber, whatsappNumber sql.NullString
		email, billingAddress         sql.NullString
	)
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.CreatedAt, &o.PaymentStatus, &paymentMethod,
		&o.Total, &o.Currency, &trackingNumber, &invoiceNumber,
		&o.Customer.Name, &o.Customer.FirstName, &o.Customer.LastName,
		&o.Customer.Phone, &whatsappNumber, &email, &billingAddress,
	)
	if err != nil {
		return nil, err
	}
	o.PaymentMethod = paymentMethod.String
	o.TrackingNumber = trackingNumber.String
	o.InvoiceNumber = invoiceNumber.String
	o.Customer.WhatsAppNumber = whatsappNumber.String
	o.Customer.Email = email.String
	o.Customer.BillingAddress = billingAddress.String
	return &o, nil
}

// ListUnpaid returns the current unpaid, non-cancelled orders oldest
// first. Filtering on live payment state each tick is what lets the
// reminder poller skip cancellation bookkeeping entirely.
func (r *PgOrderRepository) ListUnpaid(ctx context.Context, limit int) ([]*domain.OrderSnapshot, error) {
	query := `
		SELECT` + orderColumns + `
		FROM orders o
		JOIN customers c ON c.id = o.customer_id
		WHERE o.payment_status = 'unpaid'
		ORDER BY o.created_at ASC
		LIMIT $1
	`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("listing unpaid orders: %w", err)
	}
	defer rows.Close()

	var orders []*domain.OrderSnapshot
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning order row: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating order rows: %w", err)
	}
	return orders, nil
}

func (r *PgOrderRepository) GetByID(ctx context.Context, id string) (*domain.OrderSnapshot, error) {
	query := `
		SELECT` + orderColumns + `
		FROM orders o
		JOIN customers c ON c.id = o.customer_id
		WHERE o.id = $1
	`
	o, err := scanOrder(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("order %s not found", id)
		}
		return nil, fmt.Errorf("loading order %s: %w", id, err)
	}
	return o, nil
}
