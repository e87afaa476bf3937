package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/Juste-Gnimavo/cechemoi-notifications/internal/notification_service/domain"
)

// SendRequestDetails holds the data needed to deliver one rendered message.
type SendRequestDetails struct {
	InternalMessageID string // our delivery attempt ID
	SenderID          string
	Recipient         string
	Content           string
}

// SendResponseDetails holds the outcome of a send attempt from a provider.
type SendResponseDetails struct {
	ProviderMessageID string
	IsSuccess         bool
	ProviderStatus    string // provider status or HTTP status, for the delivery log
	ErrorMessage      string
}

// NotificationSenderProvider is the single capability every channel adapter
// implements. The dispatcher is agnostic to provider-specific request and
// response shapes.
type NotificationSenderProvider interface {
	Send(ctx context.Context, request SendRequestDetails) (*SendResponseDetails, error)
	GetName() string
	Channel() domain.Channel
}

// SendError is a classified provider failure. Both kinds make the
// dispatcher fall through to the next channel; only retryable failures are
// re-attempted by the reminder poller on later ticks.
type SendError struct {
	Kind    domain.FailureKind
	Message string
	Err     error
}

func (e *SendError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *SendError) Unwrap() error { return e.Err }

// NewRetryableError wraps a transient failure (timeout, 5xx, rate limit).
func NewRetryableError(message string, err error) *SendError {
	return &SendError{Kind: domain.FailureKindRetryable, Message: message, Err: err}
}

// NewPermanentError wraps a failure that will not succeed on retry
// (invalid number, auth rejection, channel disabled at the provider).
func NewPermanentError(message string, err error) *SendError {
	return &SendError{Kind: domain.FailureKindPermanent, Message: message, Err: err}
}

// Classify extracts the failure kind from a send error. Unclassified errors
// (transport failures, context deadline) are treated as retryable.
func Classify(err error) domain.FailureKind {
	var sendErr *SendError
	if errors.As(err, &sendErr) {
		return sendErr.Kind
	}
	return domain.FailureKindRetryable
}

// classifyStatusCode maps an HTTP status to a failure kind. Rate limits and
// server-side errors are worth retrying; other client errors are not.
func classifyStatusCode(code int) domain.FailureKind {
	if code == http.StatusRequestTimeout || code == http.StatusTooManyRequests || code >= 500 {
		return domain.FailureKindRetryable
	}
	return domain.FailureKindPermanent
}

// statusError builds a SendError for a non-2xx provider response.
func statusError(code int, message string) *SendError {
	if classifyStatusCode(code) == domain.FailureKindRetryable {
		return NewRetryableError(message, nil)
	}
	return NewPermanentError(message, nil)
}
