package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Juste-Gnimavo/cechemoi-notifications/internal/notification_service/domain"
)

type PgTemplateRepository struct {
	db     PgxIface
	logger *slog.Logger
}

func NewPgTemplateRepository(db PgxIface, logger *slog.Logger) domain.TemplateRepository {
	return &PgTemplateRepository{db: db, logger: logger.With("component", "template_repository_pg")}
}

const templateColumns = `trigger, channel, name, description, recipient_kind, body, enabled, customized, created_at, updated_at`

func scanTemplate(row pgx.Row) (*domain.Template, error) {
	var tpl domain.Template
	err := row.Scan(
		&tpl.Trigger, &tpl.Channel, &tpl.Name, &tpl.Description,
		&tpl.RecipientKind, &tpl.Body, &tpl.Enabled, &tpl.Customized,
		&tpl.CreatedAt, &tpl.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &tpl, nil
}

func (r *PgTemplateRepository) Resolve(ctx context.Context, trigger domain.Trigger, channel domain.Channel) (*domain.Template, error) {
	query := `SELECT ` + templateColumns + ` FROM notification_templates WHERE trigger = $1 AND channel = $2`
	tpl, err := scanTemplate(r.db.QueryRow(ctx, query, trigger, channel))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTemplateNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to resolve template", "error", err, "trigger", trigger, "channel", channel)
		return nil, fmt.Errorf("resolving template (%s, %s): %w", trigger, channel, err)
	}
	return tpl, nil
}

// Seed upserts on the (trigger, channel) natural key. The WHERE clause on
// the conflict action keeps operator-customized rows untouched, so
// re-running the seed never clobbers an edited message.
func (r *PgTemplateRepository) Seed(ctx context.Context, tpl *domain.Template) error {
	now := time.Now().UTC()
	query := `
		INSERT INTO notification_templates (` + templateColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE, $8, $8)
		ON CONFLICT (trigger, channel) DO UPDATE
		SET name = EXCLUDED.name,
		    description = EXCLUDED.description,
		    recipient_kind = EXCLUDED.recipient_kind,
		    body = EXCLUDED.body,
		    updated_at = EXCLUDED.updated_at
		WHERE notification_templates.customized = FALSE
	`
	_, err := r.db.Exec(ctx, query,
		tpl.Trigger, tpl.Channel, tpl.Name, tpl.Description,
		tpl.RecipientKind, tpl.Body, tpl.Enabled, now,
	)
	if err != nil {
		return fmt.Errorf("seeding template (%s, %s): %w", tpl.Trigger, tpl.Channel, err)
	}
	return nil
}

// Update applies an administrative edit and marks the row customized so
// future seeds leave it alone.
func (r *PgTemplateRepository) Update(ctx context.Context, tpl *domain.Template) error {
	query := `
		UPDATE notification_templates
		SET name = $3, description = $4, recipient_kind = $5, body = $6,
		    enabled = $7, customized = TRUE, updated_at = $8
		WHERE trigger = $1 AND channel = $2
	`
	tag, err := r.db.Exec(ctx, query,
		tpl.Trigger, tpl.Channel, tpl.Name, tpl.Description,
		tpl.RecipientKind, tpl.Body, tpl.Enabled, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("updating template (%s, %s): %w", tpl.Trigger, tpl.Channel, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTemplateNotFound
	}
	return nil
}

func (r *PgTemplateRepository) List(ctx context.Context) ([]*domain.Template, error) {
	query := `SELECT ` + templateColumns + ` FROM notification_templates ORDER BY trigger, channel`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing templates: %w", err)
	}
	defer rows.Close()

	var templates []*domain.Template
	for rows.Next() {
		tpl, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning template row: %w", err)
		}
		templates = append(templates, tpl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating template rows: %w", err)
	}
	return templates, nil
}
