package postgres

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Juste-Gnimavo/cechemoi-notifications/internal/notification_service/domain"
)

func successAttempt() *domain.DeliveryAttempt {
	a := domain.NewDeliveryAttempt("ord-1001", domain.TriggerOrderPlaced, domain.ChannelWhatsApp, "+22997000001")
	a.Status = domain.AttemptStatusSuccess
	msgID := "wamid.abc"
	a.ProviderMessageID = &msgID
	return a
}

func TestPgDeliveryAttemptRepository_RecordSuccess_ClaimWon(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	repo := NewPgDeliveryAttemptRepository(mockPool, testLogger())
	a := successAttempt()

	mockPool.ExpectExec(`INSERT INTO delivery_attempts .+ ON CONFLICT \(order_id, trigger\) WHERE status = 'success' DO NOTHING`).
		WithArgs(a.ID, a.OrderID, a.Trigger, a.Channel, a.Recipient, a.ProviderMessageID, a.ProviderResponse, a.SentAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	inserted, err := repo.RecordSuccess(context.Background(), a)
	require.NoError(t, err)
	assert.True(t, inserted)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestPgDeliveryAttemptRepository_RecordSuccess_ClaimLost(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	repo := NewPgDeliveryAttemptRepository(mockPool, testLogger())
	a := successAttempt()

	// A concurrent dispatcher already holds the success row for this
	// (order, trigger): the conditional insert affects 0 rows and the
	// caller learns it lost the claim.
	mockPool.ExpectExec(`INSERT INTO delivery_attempts .+ DO NOTHING`).
		WithArgs(a.ID, a.OrderID, a.Trigger, a.Channel, a.Recipient, a.ProviderMessageID, a.ProviderResponse, a.SentAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	inserted, err := repo.RecordSuccess(context.Background(), a)
	require.NoError(t, err)
	assert.False(t, inserted)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestPgDeliveryAttemptRepository_RecordFailure(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	repo := NewPgDeliveryAttemptRepository(mockPool, testLogger())

	a := domain.NewDeliveryAttempt("ord-1001", domain.TriggerPaymentReminder1, domain.ChannelSMS, "+22997000001")
	a.Status = domain.AttemptStatusFailure
	a.FailureKind = domain.FailureKindRetryable
	resp := "gateway timeout"
	a.ProviderResponse = &resp

	mockPool.ExpectExec(`INSERT INTO delivery_attempts`).
		WithArgs(a.ID, a.OrderID, a.Trigger, a.Channel, a.Recipient, a.FailureKind, a.ProviderMessageID, a.ProviderResponse, a.SentAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.RecordFailure(context.Background(), a))
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestPgDeliveryAttemptRepository_HasSuccess(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	repo := NewPgDeliveryAttemptRepository(mockPool, testLogger())

	mockPool.ExpectQuery(`SELECT EXISTS`).
		WithArgs("ord-1001", domain.TriggerOrderPlaced).
		WillReturnRows(mockPool.NewRows([]string{"exists"}).AddRow(true))

	got, err := repo.HasSuccess(context.Background(), "ord-1001", domain.TriggerOrderPlaced)
	require.NoError(t, err)
	assert.True(t, got)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}

func TestPgDeliveryAttemptRepository_CountFailures(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	repo := NewPgDeliveryAttemptRepository(mockPool, testLogger())

	mockPool.ExpectQuery(`SELECT COUNT\(\*\) FROM delivery_attempts`).
		WithArgs("ord-1001", domain.TriggerPaymentReminder2).
		WillReturnRows(mockPool.NewRows([]string{"count"}).AddRow(3))

	got, err := repo.CountFailures(context.Background(), "ord-1001", domain.TriggerPaymentReminder2)
	require.NoError(t, err)
	assert.Equal(t, 3, got)
	assert.NoError(t, mockPool.ExpectationsWereMet())
}
