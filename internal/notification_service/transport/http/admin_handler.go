package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/Juste-Gnimavo/cechemoi-notifications/internal/notification_service/app"
	"github.com/Juste-Gnimavo/cechemoi-notifications/internal/notification_service/domain"
)

// AdminHandler exposes the back-office configuration surface: templates,
// delivery settings, payment follow-up rules, the delivery log and a test
// send endpoint.
type AdminHandler struct {
	templateRepo domain.TemplateRepository
	settingsRepo domain.SettingsRepository
	attemptRepo  domain.DeliveryAttemptRepository
	notifier     app.Notifier
	logger       *slog.Logger
	validate     *validator.Validate
}

func NewAdminHandler(
	templateRepo domain.TemplateRepository,
	settingsRepo domain.SettingsRepository,
	attemptRepo domain.DeliveryAttemptRepository,
	notifier app.Notifier,
	logger *slog.Logger,
	validate *validator.Validate,
) *AdminHandler {
	return &AdminHandler{
		templateRepo: templateRepo,
		settingsRepo: settingsRepo,
		attemptRepo:  attemptRepo,
		notifier:     notifier,
		logger:       logger.With("component", "admin_handler"),
		validate:     validate,
	}
}

// RegisterRoutes mounts the admin API under r.
func (h *AdminHandler) RegisterRoutes(r chi.Router) {
	r.Route("/templates", func(tr chi.Router) {
		tr.Get("/", h.ListTemplates)
		tr.Get("/{trigger}/{channel}", h.GetTemplate)
		tr.Put("/{trigger}/{channel}", h.UpdateTemplate)
	})
	r.Route("/settings", func(sr chi.Router) {
		sr.Get("/", h.GetSettings)
		sr.Put("/", h.UpdateSettings)
	})
	r.Route("/payment-followup", func(pr chi.Router) {
		pr.Get("/", h.GetPaymentFollowUp)
		pr.Put("/", h.UpdatePaymentFollowUp)
	})
	r.Get("/orders/{orderID}/attempts", h.ListOrderAttempts)
	r.Post("/test-send", h.SendTest)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// templateKeyFromURL parses and validates the {trigger}/{channel} pair.
func templateKeyFromURL(r *http.Request) (domain.Trigger, domain.Channel, error) {
	trigger := domain.Trigger(chi.URLParam(r, "trigger"))
	if !trigger.Valid() {
		return "", "", fmt.Errorf("unknown trigger: %s", trigger)
	}
	channel := domain.Channel(chi.URLParam(r, "channel"))
	if !channel.Valid() {
		return "", "", fmt.Errorf("unknown channel: %s", channel)
	}
	return trigger, channel, nil
}

func (h *AdminHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	templates, err := h.templateRepo.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to list templates", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	dtos := make([]TemplateDTO, 0, len(templates))
	for _, tpl := range templates {
		dtos = append(dtos, templateToDTO(tpl))
	}
	writeJSON(w, http.StatusOK, ListTemplatesResponseDTO{Templates: dtos, TotalCount: len(dtos)})
}

func (h *AdminHandler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	trigger, channel, err := templateKeyFromURL(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	tpl, err := h.templateRepo.Resolve(ctx, trigger, channel)
	if err != nil {
		if errors.Is(err, domain.ErrTemplateNotFound) {
			http.Error(w, "Template not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(ctx, "Failed to resolve template", "error", err, "trigger", trigger, "channel", channel)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, templateToDTO(tpl))
}

func (h *AdminHandler) UpdateTemplate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	trigger, channel, err := templateKeyFromURL(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var reqDTO UpdateTemplateRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&reqDTO); err != nil {
		h.logger.WarnContext(ctx, "Failed to decode request body for UpdateTemplate", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.StructCtx(ctx, reqDTO); err != nil {
		h.logger.WarnContext(ctx, "Validation failed for UpdateTemplate", "error", err)
		http.Error(w, fmt.Sprintf("Validation error: %s", err.Error()), http.StatusBadRequest)
		return
	}

	tpl := &domain.Template{
		Trigger:       trigger,
		Channel:       channel,
		Name:          reqDTO.Name,
		Description:   reqDTO.Description,
		RecipientKind: domain.RecipientKind(reqDTO.RecipientKind),
		Body:          reqDTO.Body,
		Enabled:       reqDTO.Enabled,
	}
	if err := h.templateRepo.Update(ctx, tpl); err != nil {
		if errors.Is(err, domain.ErrTemplateNotFound) {
			http.Error(w, "Template not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(ctx, "Failed to update template", "error", err, "trigger", trigger, "channel", channel)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "Template updated", "trigger", trigger, "channel", channel)

	updated, err := h.templateRepo.Resolve(ctx, trigger, channel)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to reload template after update", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, templateToDTO(updated))
}

func (h *AdminHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	settings, err := h.settingsRepo.GetNotificationSettings(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrSettingsNotFound) {
			http.Error(w, "Settings not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(ctx, "Failed to load notification settings", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, settingsToDTO(settings))
}

func (h *AdminHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var reqDTO UpdateNotificationSettingsRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&reqDTO); err != nil {
		h.logger.WarnContext(ctx, "Failed to decode request body for UpdateSettings", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.StructCtx(ctx, reqDTO); err != nil {
		h.logger.WarnContext(ctx, "Validation failed for UpdateSettings", "error", err)
		http.Error(w, fmt.Sprintf("Validation error: %s", err.Error()), http.StatusBadRequest)
		return
	}

	channels := make(map[domain.Channel]domain.ChannelConfig, len(reqDTO.Channels))
	for name, cfg := range reqDTO.Channels {
		ch := domain.Channel(name)
		if !ch.Valid() {
			http.Error(w, fmt.Sprintf("Unknown channel: %s", name), http.StatusBadRequest)
			return
		}
		channels[ch] = domain.ChannelConfig{Enabled: cfg.Enabled, SenderID: cfg.SenderID, APIKey: cfg.APIKey}
	}
	order := make([]domain.Channel, 0, len(reqDTO.FailoverOrder))
	for _, name := range reqDTO.FailoverOrder {
		order = append(order, domain.Channel(name))
	}

	settings := &domain.NotificationSettings{
		ID:              domain.DefaultSettingsID,
		Channels:        channels,
		FailoverOrder:   order,
		TestMode:        reqDTO.TestMode,
		TestPhoneNumber: reqDTO.TestPhoneNumber,
		AdminPhone:      reqDTO.AdminPhone,
		AdminWhatsApp:   reqDTO.AdminWhatsApp,
	}
	if err := h.settingsRepo.UpdateNotificationSettings(ctx, settings); err != nil {
		h.logger.ErrorContext(ctx, "Failed to update notification settings", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "Notification settings updated", "test_mode", settings.TestMode, "failover_order", reqDTO.FailoverOrder)
	writeJSON(w, http.StatusOK, settingsToDTO(settings))
}

func (h *AdminHandler) GetPaymentFollowUp(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	followUp, err := h.settingsRepo.GetPaymentFollowUpSettings(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrSettingsNotFound) {
			http.Error(w, "Settings not found", http.StatusNotFound)
			return
		}
		h.logger.ErrorContext(ctx, "Failed to load payment follow-up settings", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, followUpToDTO(followUp))
}

func (h *AdminHandler) UpdatePaymentFollowUp(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var reqDTO UpdatePaymentFollowUpRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&reqDTO); err != nil {
		h.logger.WarnContext(ctx, "Failed to decode request body for UpdatePaymentFollowUp", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.StructCtx(ctx, reqDTO); err != nil {
		h.logger.WarnContext(ctx, "Validation failed for UpdatePaymentFollowUp", "error", err)
		http.Error(w, fmt.Sprintf("Validation error: %s", err.Error()), http.StatusBadRequest)
		return
	}

	var reminders [3]domain.ReminderRule
	for i, rule := range reqDTO.Reminders {
		reminders[i] = domain.ReminderRule{DelayHours: rule.DelayHours, Enabled: rule.Enabled}
	}
	followUp := &domain.PaymentFollowUpSettings{
		ID:                 domain.DefaultSettingsID,
		Enabled:            reqDTO.Enabled,
		Reminders:          reminders,
		MaxAttemptsPerSlot: reqDTO.MaxAttemptsPerSlot,
	}
	if err := h.settingsRepo.UpdatePaymentFollowUpSettings(ctx, followUp); err != nil {
		h.logger.ErrorContext(ctx, "Failed to update payment follow-up settings", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "Payment follow-up settings updated", "enabled", followUp.Enabled)
	writeJSON(w, http.StatusOK, followUpToDTO(followUp))
}

func (h *AdminHandler) ListOrderAttempts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	orderID := chi.URLParam(r, "orderID")
	if orderID == "" {
		http.Error(w, "Order ID is required", http.StatusBadRequest)
		return
	}

	attempts, err := h.attemptRepo.ListByOrder(ctx, orderID)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to list delivery attempts", "error", err, "order_id", orderID)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	dtos := make([]DeliveryAttemptDTO, 0, len(attempts))
	for _, a := range attempts {
		dtos = append(dtos, attemptToDTO(a))
	}
	writeJSON(w, http.StatusOK, ListAttemptsResponseDTO{Attempts: dtos, TotalCount: len(dtos)})
}

// SendTest dispatches one notification immediately through the normal
// failover path. With test mode enabled in settings, the send lands on the
// configured test number whatever the phone fields say.
func (h *AdminHandler) SendTest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var reqDTO SendTestRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&reqDTO); err != nil {
		h.logger.WarnContext(ctx, "Failed to decode request body for SendTest", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.StructCtx(ctx, reqDTO); err != nil {
		h.logger.WarnContext(ctx, "Validation failed for SendTest", "error", err)
		http.Error(w, fmt.Sprintf("Validation error: %s", err.Error()), http.StatusBadRequest)
		return
	}

	trigger := domain.Trigger(reqDTO.Trigger)
	if !trigger.Valid() {
		http.Error(w, fmt.Sprintf("Unknown trigger: %s", reqDTO.Trigger), http.StatusBadRequest)
		return
	}

	nctx := app.NotificationContext{
		OrderID:          reqDTO.OrderID,
		CustomerPhone:    reqDTO.Phone,
		CustomerWhatsApp: reqDTO.Phone,
		Values:           reqDTO.Values,
	}
	result, err := h.notifier.Notify(ctx, trigger, domain.RecipientKind(reqDTO.RecipientKind), nctx)
	if err != nil {
		if errors.Is(err, domain.ErrAllChannelsExhausted) {
			writeJSON(w, http.StatusBadGateway, SendTestResponseDTO{Delivered: false})
			return
		}
		h.logger.ErrorContext(ctx, "Test send failed", "error", err, "trigger", trigger)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, SendTestResponseDTO{
		Delivered:           result.Delivered,
		Channel:             string(result.Channel),
		AlreadyDelivered:    result.AlreadyDelivered,
		MissingPlaceholders: result.MissingPlaceholders,
	})
}
