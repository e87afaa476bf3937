package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// AttemptStatus is the outcome of one delivery attempt.
type AttemptStatus string

const (
	AttemptStatusSuccess AttemptStatus = "success"
	AttemptStatusFailure AttemptStatus = "failure"
)

// FailureKind classifies a failed send. Retryable failures (timeouts,
// provider 5xx, rate limits) may be re-attempted by the reminder poller;
// permanent failures (invalid number, channel disabled at the provider)
// should not be retried indefinitely.
type FailureKind string

const (
	FailureKindNone      FailureKind = ""
	FailureKindRetryable FailureKind = "retryable"
	FailureKindPermanent FailureKind = "permanent"
)

// DeliveryAttempt is the append-only record of one send try. It is never
// mutated after creation and is the sole source of truth for "has this
// (order, trigger) already been notified".
type DeliveryAttempt struct {
	ID                uuid.UUID     `json:"id"`
	OrderID           string        `json:"order_id"`
	Trigger           Trigger       `json:"trigger"`
	Channel           Channel       `json:"channel"`
	Recipient         string        `json:"recipient"`
	Status            AttemptStatus `json:"status"`
	FailureKind       FailureKind   `json:"failure_kind,omitempty"`
	ProviderMessageID *string       `json:"provider_message_id,omitempty"`
	ProviderResponse  *string       `json:"provider_response,omitempty"`
	SentAt            time.Time     `json:"sent_at"`
}

// NewDeliveryAttempt builds an attempt with a fresh ID and SentAt=now.
func NewDeliveryAttempt(orderID string, trigger Trigger, channel Channel, recipient string) *DeliveryAttempt {
	return &DeliveryAttempt{
		ID:        uuid.New(),
		OrderID:   orderID,
		Trigger:   trigger,
		Channel:   channel,
		Recipient: recipient,
		SentAt:    time.Now().UTC(),
	}
}

// DeliveryAttemptRepository is the delivery log. Successes are guarded by a
// partial unique index on (order_id, trigger) WHERE status='success', which
// enforces at-most-one successful attempt per pair under concurrency.
type DeliveryAttemptRepository interface {
	// RecordSuccess appends a success attempt. inserted is false when a
	// success row already exists for (OrderID, Trigger); the caller then
	// lost the claim race and must not treat its own send as the delivery
	// of record.
	RecordSuccess(ctx context.Context, attempt *DeliveryAttempt) (inserted bool, err error)

	// RecordFailure appends a failure attempt.
	RecordFailure(ctx context.Context, attempt *DeliveryAttempt) error

	// HasSuccess reports whether a success attempt exists for the pair.
	HasSuccess(ctx context.Context, orderID string, trigger Trigger) (bool, error)

	// CountFailures returns the number of failure attempts for the pair.
	CountFailures(ctx context.Context, orderID string, trigger Trigger) (int, error)

	// ListByOrder returns all attempts for an order, newest first.
	ListByOrder(ctx context.Context, orderID string) ([]*DeliveryAttempt, error)
}
