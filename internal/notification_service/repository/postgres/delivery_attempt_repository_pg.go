package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Juste-Gnimavo/cechemoi-notifications/internal/notification_service/domain"
)

type PgDeliveryAttemptRepository struct {
	db     PgxIface
	logger *slog.Logger
}

func NewPgDeliveryAttemptRepository(db PgxIface, logger *slog.Logger) domain.DeliveryAttemptRepository {
	return &PgDeliveryAttemptRepository{db: db, logger: logger.With("component", "delivery_attempt_repository_pg")}
}

// RecordSuccess appends a success attempt. The table carries a partial
// unique index on (order_id, trigger) WHERE status = 'success'; the
// conflict clause below turns a lost race into inserted=false instead of
// an error, which is the atomic claim the dispatcher relies on.
func (r *PgDeliveryAttemptRepository) RecordSuccess(ctx context.Context, attempt *domain.DeliveryAttempt) (bool, error) {
	query := `
		INSERT INTO delivery_attempts
			(id, order_id, trigger, channel, recipient, status, failure_kind, provider_message_id, provider_response, sent_at)
		VALUES ($1, $2, $3, $4, $5, 'success', '', $6, $7, $8)
		ON CONFLICT (order_id, trigger) WHERE status = 'success' DO NOTHING
	`
	tag, err := r.db.Exec(ctx, query,
		attempt.ID, attempt.OrderID, attempt.Trigger, attempt.Channel,
		attempt.Recipient, attempt.ProviderMessageID, attempt.ProviderResponse, attempt.SentAt,
	)
	if err != nil {
		return false, fmt.Errorf("recording success attempt for order %s: %w", attempt.OrderID, err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *PgDeliveryAttemptRepository) RecordFailure(ctx context.Context, attempt *domain.DeliveryAttempt) error {
	query := `
		INSERT INTO delivery_attempts
			(id, order_id, trigger, channel, recipient, status, failure_kind, provider_message_id, provider_response, sent_at)
		VALUES ($1, $2, $3, $4, $5, 'failure', $6, $7, $8, $9)
	`
	_, err := r.db.Exec(ctx, query,
		attempt.ID, attempt.OrderID, attempt.Trigger, attempt.Channel,
		attempt.Recipient, attempt.FailureKind, attempt.ProviderMessageID,
		attempt.ProviderResponse, attempt.SentAt,
	)
	if err != nil {
		return fmt.Errorf("recording failure attempt for order %s: %w", attempt.OrderID, err)
	}
	return nil
}

func (r *PgDeliveryAttemptRepository) HasSuccess(ctx context.Context, orderID string, trigger domain.Trigger) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM delivery_attempts WHERE order_id = $1 AND trigger = $2 AND status = 'success')`
	var exists bool
	if err := r.db.QueryRow(ctx, query, orderID, trigger).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking success attempt for order %s: %w", orderID, err)
	}
	return exists, nil
}

func (r *PgDeliveryAttemptRepository) CountFailures(ctx context.Context, orderID string, trigger domain.Trigger) (int, error) {
	query := `SELECT COUNT(*) FROM delivery_attempts WHERE order_id = $1 AND trigger = $2 AND status = 'failure'`
	var count int
	if err := r.db.QueryRow(ctx, query, orderID, trigger).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting failure attempts for order %s: %w", orderID, err)
	}
	return count, nil
}

func (r *PgDeliveryAttemptRepository) ListByOrder(ctx context.Context, orderID string) ([]*domain.DeliveryAttempt, error) {
	query := `
		SELECT id, order_id, trigger, channel, recipient, status, failure_kind, provider_message_id, provider_response, sent_at
		FROM delivery_attempts
		WHERE order_id = $1
		ORDER BY sent_at DESC
	`
	rows, err := r.db.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("listing attempts for order %s: %w", orderID, err)
	}
	defer rows.Close()

	var attempts []*domain.DeliveryAttempt
	for rows.Next() {
		var a domain.DeliveryAttempt
		if err := rows.Scan(
			&a.ID, &a.OrderID, &a.Trigger, &a.Channel, &a.Recipient,
			&a.Status, &a.FailureKind, &a.ProviderMessageID, &a.ProviderResponse, &a.SentAt,
		); err != nil {
			return nil, fmt.Errorf("scanning attempt row: %w", err)
		}
		attempts = append(attempts, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating attempt rows: %w", err)
	}
	return attempts, nil
}
