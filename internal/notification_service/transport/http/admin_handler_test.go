package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Juste-Gnimavo/cechemoi-notifications/internal/notification_service/app"
	"github.com/Juste-Gnimavo/cechemoi-notifications/internal/notification_service/domain"
)

type MockTemplateRepository struct{ mock.Mock }

func (m *MockTemplateRepository) Resolve(ctx context.Context, trigger domain.Trigger, channel domain.Channel) (*domain.Template, error) {
	args := m.Called(ctx, trigger, channel)
	if tpl, ok := args.Get(0).(*domain.Template); ok {
		return tpl, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTemplateRepository) Seed(ctx context.Context, tpl *domain.Template) error {
	args := m.Called(ctx, tpl)
	return args.Error(0)
}

func (m *MockTemplateRepository) Update(ctx context.Context, tpl *domain.Template) error {
	args := m.Called(ctx, tpl)
	return args.Error(0)
}

func (m *MockTemplateRepository) List(ctx context.Context) ([]*domain.Template, error) {
	args := m.Called(ctx)
	if tpls, ok := args.Get(0).([]*domain.Template); ok {
		return tpls, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockSettingsRepository struct{ mock.Mock }

func (m *MockSettingsRepository) GetNotificationSettings(ctx context.Context) (*domain.NotificationSettings, error) {
	args := m.Called(ctx)
	if s, ok := args.Get(0).(*domain.NotificationSettings); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSettingsRepository) UpdateNotificationSettings(ctx context.Context, s *domain.NotificationSettings) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockSettingsRepository) GetPaymentFollowUpSettings(ctx context.Context) (*domain.PaymentFollowUpSettings, error) {
	args := m.Called(ctx)
	if s, ok := args.Get(0).(*domain.PaymentFollowUpSettings); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSettingsRepository) UpdatePaymentFollowUpSettings(ctx context.Context, s *domain.PaymentFollowUpSettings) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

type MockDeliveryAttemptRepository struct{ mock.Mock }

func (m *MockDeliveryAttemptRepository) RecordSuccess(ctx context.Context, attempt *domain.DeliveryAttempt) (bool, error) {
	args := m.Called(ctx, attempt)
	return args.Bool(0), args.Error(1)
}

func (m *MockDeliveryAttemptRepository) RecordFailure(ctx context.Context, attempt *domain.DeliveryAttempt) error {
	args := m.Called(ctx, attempt)
	return args.Error(0)
}

func (m *MockDeliveryAttemptRepository) HasSuccess(ctx context.Context, orderID string, trigger domain.Trigger) (bool, error) {
	args := m.Called(ctx, orderID, trigger)
	return args.Bool(0), args.Error(1)
}

func (m *MockDeliveryAttemptRepository) CountFailures(ctx context.Context, orderID string, trigger domain.Trigger) (int, error) {
	args := m.Called(ctx, orderID, trigger)
	return args.Int(0), args.Error(1)
}

func (m *MockDeliveryAttemptRepository) ListByOrder(ctx context.Context, orderID string) ([]*domain.DeliveryAttempt, error) {
	args := m.Called(ctx, orderID)
	if attempts, ok := args.Get(0).([]*domain.DeliveryAttempt); ok {
		return attempts, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockNotifier struct{ mock.Mock }

func (m *MockNotifier) Notify(ctx context.Context, trigger domain.Trigger, kind domain.RecipientKind, nctx app.NotificationContext) (*app.DispatchResult, error) {
	args := m.Called(ctx, trigger, kind, nctx)
	if result, ok := args.Get(0).(*app.DispatchResult); ok {
		return result, args.Error(1)
	}
	return nil, args.Error(1)
}

type handlerMocks struct {
	templates *MockTemplateRepository
	settings  *MockSettingsRepository
	attempts  *MockDeliveryAttemptRepository
	notifier  *MockNotifier
}

func newTestRouter(t *testing.T) (*chi.Mux, handlerMocks) {
	t.Helper()
	m := handlerMocks{
		templates: new(MockTemplateRepository),
		settings:  new(MockSettingsRepository),
		attempts:  new(MockDeliveryAttemptRepository),
		notifier:  new(MockNotifier),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewAdminHandler(m.templates, m.settings, m.attempts, m.notifier, logger, validator.New())
	r := chi.NewRouter()
	r.Route("/api/v1/notifications", h.RegisterRoutes)
	return r, m
}

func TestListTemplates(t *testing.T) {
	router, m := newTestRouter(t)

	now := time.Now().UTC()
	m.templates.On("List", mock.Anything).Return([]*domain.Template{
		{
			Trigger: domain.TriggerOrderPlaced, Channel: domain.ChannelSMS,
			Name: "Commande reçue (SMS)", RecipientKind: domain.RecipientCustomer,
			Body: "Bonjour {customer_name}", Enabled: true, CreatedAt: now, UpdatedAt: now,
		},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications/templates/", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp ListTemplatesResponseDTO
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.TotalCount)
	assert.Equal(t, "ORDER_PLACED", resp.Templates[0].Trigger)
	assert.Equal(t, "SMS", resp.Templates[0].Channel)
}

func TestGetTemplate_NotFound(t *testing.T) {
	router, m := newTestRouter(t)

	m.templates.On("Resolve", mock.Anything, domain.TriggerOrderShipped, domain.ChannelWhatsApp).
		Return(nil, domain.ErrTemplateNotFound)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications/templates/ORDER_SHIPPED/WHATSAPP", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestGetTemplate_UnknownTrigger(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications/templates/BOGUS/SMS", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestUpdateTemplate(t *testing.T) {
	router, m := newTestRouter(t)

	body := UpdateTemplateRequestDTO{
		Name:          "Commande expédiée (SMS)",
		RecipientKind: "customer",
		Body:          "Votre commande {order_number} est en route.",
		Enabled:       true,
	}
	payload, _ := json.Marshal(body)

	m.templates.On("Update", mock.Anything, mock.MatchedBy(func(tpl *domain.Template) bool {
		return tpl.Trigger == domain.TriggerOrderShipped &&
			tpl.Channel == domain.ChannelSMS &&
			tpl.Body == body.Body
	})).Return(nil)
	m.templates.On("Resolve", mock.Anything, domain.TriggerOrderShipped, domain.ChannelSMS).
		Return(&domain.Template{
			Trigger: domain.TriggerOrderShipped, Channel: domain.ChannelSMS,
			Name: body.Name, RecipientKind: domain.RecipientCustomer,
			Body: body.Body, Enabled: true, Customized: true,
		}, nil)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/notifications/templates/ORDER_SHIPPED/SMS", bytes.NewReader(payload))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp TemplateDTO
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.Customized)
	m.templates.AssertExpectations(t)
}

func TestUpdateTemplate_ValidationFailure(t *testing.T) {
	router, _ := newTestRouter(t)

	// Missing required body text.
	payload := []byte(`{"name":"x","recipient_kind":"customer","enabled":true}`)
	req := httptest.NewRequest(http.MethodPut, "/api/v1/notifications/templates/ORDER_SHIPPED/SMS", bytes.NewReader(payload))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestUpdateSettings(t *testing.T) {
	router, m := newTestRouter(t)

	body := UpdateNotificationSettingsRequestDTO{
		Channels: map[string]ChannelConfigDTO{
			"SMS":      {Enabled: true, SenderID: "CECHEMOI"},
			"WHATSAPP": {Enabled: true, SenderID: "cechemoi"},
		},
		FailoverOrder:   []string{"WHATSAPP", "SMS"},
		TestMode:        true,
		TestPhoneNumber: "+22990009999",
	}
	payload, _ := json.Marshal(body)

	m.settings.On("UpdateNotificationSettings", mock.Anything, mock.MatchedBy(func(s *domain.NotificationSettings) bool {
		return s.TestMode && s.TestPhoneNumber == "+22990009999" &&
			len(s.FailoverOrder) == 2 && s.FailoverOrder[0] == domain.ChannelWhatsApp
	})).Return(nil)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/notifications/settings/", bytes.NewReader(payload))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	m.settings.AssertExpectations(t)
}

func TestUpdateSettings_BadFailoverChannel(t *testing.T) {
	router, _ := newTestRouter(t)

	payload := []byte(`{"channels":{"SMS":{"enabled":true}},"failover_order":["PIGEON"]}`)
	req := httptest.NewRequest(http.MethodPut, "/api/v1/notifications/settings/", bytes.NewReader(payload))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestUpdatePaymentFollowUp(t *testing.T) {
	router, m := newTestRouter(t)

	body := UpdatePaymentFollowUpRequestDTO{
		Enabled: true,
		Reminders: [3]ReminderRuleDTO{
			{DelayHours: 24, Enabled: true},
			{DelayHours: 72, Enabled: true},
			{DelayHours: 120, Enabled: false},
		},
		MaxAttemptsPerSlot: 5,
	}
	payload, _ := json.Marshal(body)

	m.settings.On("UpdatePaymentFollowUpSettings", mock.Anything, mock.MatchedBy(func(s *domain.PaymentFollowUpSettings) bool {
		return s.Enabled && s.Reminders[0].DelayHours == 24 && !s.Reminders[2].Enabled
	})).Return(nil)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/notifications/payment-followup/", bytes.NewReader(payload))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	m.settings.AssertExpectations(t)
}

func TestListOrderAttempts(t *testing.T) {
	router, m := newTestRouter(t)

	a := domain.NewDeliveryAttempt("ord-1001", domain.TriggerOrderPlaced, domain.ChannelSMS, "+22997000001")
	a.Status = domain.AttemptStatusFailure
	a.FailureKind = domain.FailureKindRetryable
	m.attempts.On("ListByOrder", mock.Anything, "ord-1001").Return([]*domain.DeliveryAttempt{a}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications/orders/ord-1001/attempts", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp ListAttemptsResponseDTO
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.TotalCount)
	assert.Equal(t, "failure", resp.Attempts[0].Status)
	assert.Equal(t, "retryable", resp.Attempts[0].FailureKind)
}

func TestSendTest(t *testing.T) {
	router, m := newTestRouter(t)

	body := SendTestRequestDTO{
		Trigger:       "ORDER_PLACED",
		RecipientKind: "customer",
		OrderID:       "test:manual-1",
		Phone:         "+22997000001",
		Values:        map[string]string{"customer_name": "Test"},
	}
	payload, _ := json.Marshal(body)

	m.notifier.On("Notify", mock.Anything, domain.TriggerOrderPlaced, domain.RecipientCustomer,
		mock.MatchedBy(func(nctx app.NotificationContext) bool {
			return nctx.OrderID == "test:manual-1" && nctx.CustomerPhone == "+22997000001"
		})).Return(&app.DispatchResult{Delivered: true, Channel: domain.ChannelSMS}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/notifications/test-send", bytes.NewReader(payload))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp SendTestResponseDTO
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.Delivered)
	assert.Equal(t, "SMS", resp.Channel)
	m.notifier.AssertExpectations(t)
}

func TestSendTest_AllChannelsExhausted(t *testing.T) {
	router, m := newTestRouter(t)

	body := SendTestRequestDTO{
		Trigger:       "ORDER_PLACED",
		RecipientKind: "customer",
		OrderID:       "test:manual-2",
	}
	payload, _ := json.Marshal(body)

	m.notifier.On("Notify", mock.Anything, domain.TriggerOrderPlaced, domain.RecipientCustomer, mock.Anything).
		Return(&app.DispatchResult{Delivered: false}, domain.ErrAllChannelsExhausted)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/notifications/test-send", bytes.NewReader(payload))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadGateway, rr.Code)
}
