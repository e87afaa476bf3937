package postgres

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Juste-Gnimavo/cechemoi-notifications/internal/notification_service/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPgTemplateRepository_Resolve_Found(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	repo := NewPgTemplateRepository(mockPool, testLogger())

	now := time.Now().UTC()
	rows := mockPool.NewRows([]string{
		"trigger", "channel", "name", "description", "recipient_kind",
		"body", "enabled", "customized", "created_at", "updated_at",
	}).AddRow(
		domain.TriggerOrderPlaced, domain.ChannelSMS, "Commande reçue (SMS)", "desc",
		domain.RecipientCustomer, "Bonjour {customer_name}", true, false, now, now,
	)

	mockPool.ExpectQuery(`SELECT .+ FROM notification_templates WHERE trigger = \$1 AND channel = \$2`).
		WithArgs(domain.TriggerOrderPlaced, domain.ChannelSMS).
		WillReturnRows(rows)

	tpl, err := repo.Resolve(context.Background(), domain.TriggerOrderPlaced, domain.ChannelSMS)
	require.NoError(t, err)
	assert.Equal(t, domain.TriggerOrderPlaced, tpl.Trigger)
	assert.Equal(t, domain.ChannelSMS, tpl.Channel)
	assert.Equal(t, "Bonjour {customer_name}", tpl.Body)
	assert.True(t, tpl.Enabled)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestPgTemplateRepository_Resolve_NotFoundIsSkipSignal(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	repo := NewPgTemplateRepository(mockPool, testLogger())

	mockPool.ExpectQuery(`SELECT .+ FROM notification_templates WHERE trigger = \$1 AND channel = \$2`).
		WithArgs(domain.TriggerDailyReportAdmin, domain.ChannelSMS).
		WillReturnError(pgx.ErrNoRows)

	_, err = repo.Resolve(context.Background(), domain.TriggerDailyReportAdmin, domain.ChannelSMS)
	assert.ErrorIs(t, err, domain.ErrTemplateNotFound)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestPgTemplateRepository_Seed_UpsertPreservesCustomizedRows(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	repo := NewPgTemplateRepository(mockPool, testLogger())

	tpl := &domain.Template{
		Trigger:       domain.TriggerOrderPlaced,
		Channel:       domain.ChannelSMS,
		Name:          "Commande reçue (SMS)",
		Description:   "desc",
		RecipientKind: domain.RecipientCustomer,
		Body:          "Bonjour {customer_name}",
		Enabled:       true,
	}

	// The upsert's conflict action is guarded by customized = FALSE, so a
	// customized row reports 0 rows affected and the seed is still a
	// success (idempotent, non-destructive).
	mockPool.ExpectExec(`INSERT INTO notification_templates .+ ON CONFLICT \(trigger, channel\) DO UPDATE`).
		WithArgs(tpl.Trigger, tpl.Channel, tpl.Name, tpl.Description, tpl.RecipientKind, tpl.Body, tpl.Enabled, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	require.NoError(t, repo.Seed(context.Background(), tpl))
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestPgTemplateRepository_Update_MarksCustomized(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	repo := NewPgTemplateRepository(mockPool, testLogger())

	tpl := &domain.Template{
		Trigger:       domain.TriggerOrderShipped,
		Channel:       domain.ChannelWhatsApp,
		Name:          "Commande expédiée (WhatsApp)",
		Description:   "desc",
		RecipientKind: domain.RecipientCustomer,
		Body:          "Edité par un opérateur: {order_number}",
		Enabled:       true,
	}

	mockPool.ExpectExec(`UPDATE notification_templates\s+SET .+ customized = TRUE`).
		WithArgs(tpl.Trigger, tpl.Channel, tpl.Name, tpl.Description, tpl.RecipientKind, tpl.Body, tpl.Enabled, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, repo.Update(context.Background(), tpl))
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestPgTemplateRepository_Update_MissingRow(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	repo := NewPgTemplateRepository(mockPool, testLogger())

	tpl := &domain.Template{Trigger: domain.TriggerOrderShipped, Channel: domain.ChannelWhatsAppCloud}

	mockPool.ExpectExec(`UPDATE notification_templates`).
		WithArgs(tpl.Trigger, tpl.Channel, tpl.Name, tpl.Description, tpl.RecipientKind, tpl.Body, tpl.Enabled, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err = repo.Update(context.Background(), tpl)
	assert.ErrorIs(t, err, domain.ErrTemplateNotFound)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}
