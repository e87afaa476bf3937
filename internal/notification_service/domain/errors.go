package domain

import "errors"

var (
	// ErrTemplateNotFound means no template row exists for a (trigger,
	// channel) pair. This is a skip signal, not a delivery failure: the
	// business event simply has no message defined on that channel.
	ErrTemplateNotFound = errors.New("notification template not found")

	// ErrSettingsNotFound means the singleton settings row is missing.
	ErrSettingsNotFound = errors.New("notification settings not found")

	// ErrAllChannelsExhausted means every enabled channel in the failover
	// order was attempted (or skipped) without a successful delivery.
	ErrAllChannelsExhausted = errors.New("all notification channels exhausted")

	// ErrAlreadyDelivered means a success attempt already exists for the
	// (order, trigger) pair; the caller lost the claim race or is retrying
	// an already-notified event.
	ErrAlreadyDelivered = errors.New("notification already delivered for order and trigger")
)
