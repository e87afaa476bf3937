package domain

import (
	"context"
	"time"
)

// Template is the message definition for one (Trigger, Channel) pair.
// The pair is the natural key; exactly one row exists per pair.
type Template struct {
	Trigger       Trigger       `json:"trigger"`
	Channel       Channel       `json:"channel"`
	Name          string        `json:"name"`
	Description   string        `json:"description"`
	RecipientKind RecipientKind `json:"recipient_kind"`
	Body          string        `json:"body"` // contains {placeholder} tokens
	Enabled       bool          `json:"enabled"`
	// Customized is set when an operator edits the body through the admin
	// surface. Seeding never overwrites a customized body.
	Customized bool      `json:"customized"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TemplateRepository manages notification templates.
type TemplateRepository interface {
	// Resolve returns the template for (trigger, channel), or
	// ErrTemplateNotFound. It does not evaluate Enabled; that decision
	// belongs to the dispatcher.
	Resolve(ctx context.Context, trigger Trigger, channel Channel) (*Template, error)

	// Seed upserts a template keyed on (trigger, channel). Re-running it
	// never creates duplicates and never overwrites a customized body.
	Seed(ctx context.Context, tpl *Template) error

	// Update replaces the mutable fields of an existing template and marks
	// it customized when the body changed.
	Update(ctx context.Context, tpl *Template) error

	// List returns every template, ordered by trigger then channel.
	List(ctx context.Context) ([]*Template, error)
}
