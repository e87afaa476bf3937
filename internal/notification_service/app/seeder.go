package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Juste-Gnimavo/cechemoi-notifications/internal/notification_service/domain"
)

// Seeder installs the default template catalogue. Seeding is idempotent:
// it upserts on the (trigger, channel) natural key and never overwrites a
// body an operator has customized through the admin surface.
type Seeder struct {
	templateRepo domain.TemplateRepository
	logger       *slog.Logger
}

func NewSeeder(templateRepo domain.TemplateRepository, logger *slog.Logger) *Seeder {
	return &Seeder{
		templateRepo: templateRepo,
		logger:       logger.With("component", "template_seeder"),
	}
}

// Seed upserts every default template. Errors on individual templates are
// collected so one bad row does not block the rest of the catalogue.
func (s *Seeder) Seed(ctx context.Context) error {
	var failed int
	for i := range defaultTemplates {
		tpl := defaultTemplates[i]
		if err := s.templateRepo.Seed(ctx, &tpl); err != nil {
			failed++
			s.logger.ErrorContext(ctx, "Failed to seed template",
				"error", err, "trigger", tpl.Trigger, "channel", tpl.Channel)
		}
	}
	if failed > 0 {
		return fmt.Errorf("failed to seed %d of %d templates", failed, len(defaultTemplates))
	}
	s.logger.InfoContext(ctx, "Template catalogue seeded", "count", len(defaultTemplates))
	return nil
}
