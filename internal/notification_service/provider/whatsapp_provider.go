package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/Juste-Gnimavo/cechemoi-notifications/internal/notification_service/domain"
)

// WhatsAppProvider sends text messages through a self-hosted WhatsApp
// gateway (session-based, no Meta business verification required).
type WhatsAppProvider struct {
	logger     *slog.Logger
	httpClient *http.Client
	apiURL     string
	apiKey     string
	session    string
}

func NewWhatsAppProvider(logger *slog.Logger, apiURL, apiKey, session string, httpClient *http.Client) *WhatsAppProvider {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &WhatsAppProvider{
		logger:     logger.With("provider", "whatsapp"),
		httpClient: httpClient,
		apiURL:     apiURL,
		apiKey:     apiKey,
		session:    session,
	}
}

type waSendRequestBody struct {
	Session string `json:"session"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

type waSendResponse struct {
	Success   bool   `json:"success"`
	MessageID string `json:"message_id"`
	Error     string `json:"error,omitempty"`
}

func (p *WhatsAppProvider) GetName() string { return "whatsapp" }

func (p *WhatsAppProvider) Channel() domain.Channel { return domain.ChannelWhatsApp }

func (p *WhatsAppProvider) Send(ctx context.Context, details SendRequestDetails) (*SendResponseDetails, error) {
	p.logger.InfoContext(ctx, "WhatsAppProvider: Send called", "recipient", details.Recipient, "internal_message_id", details.InternalMessageID)

	reqBody := waSendRequestBody{
		Session: p.session,
		Phone:   details.Recipient,
		Message: details.Content,
	}
	reqBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal WhatsApp gateway request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL, bytes.NewBuffer(reqBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create WhatsApp gateway HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Api-Key", p.apiKey)

	httpResp, err := p.httpClient.Do(httpReq)
	if err != nil {
		p.logger.ErrorContext(ctx, "Failed to reach WhatsApp gateway", "error", err, "internal_message_id", details.InternalMessageID)
		return nil, NewRetryableError("WhatsApp gateway request failed", err)
	}
	defer httpResp.Body.Close()

	respBodyBytes, readErr := io.ReadAll(httpResp.Body)
	if readErr != nil {
		return &SendResponseDetails{
			IsSuccess:      false,
			ProviderStatus: fmt.Sprintf("FAILED_WA_READ_ERR_%d", httpResp.StatusCode),
			ErrorMessage:   readErr.Error(),
		}, NewRetryableError("failed to read WhatsApp gateway response", readErr)
	}

	var waResp waSendResponse
	parseOK := json.Unmarshal(respBodyBytes, &waResp) == nil

	if httpResp.StatusCode >= 200 && httpResp.StatusCode < 300 && (!parseOK || waResp.Success) {
		p.logger.InfoContext(ctx, "WhatsApp message submitted", "provider_message_id", waResp.MessageID, "internal_message_id", details.InternalMessageID)
		return &SendResponseDetails{
			ProviderMessageID: waResp.MessageID,
			IsSuccess:         true,
			ProviderStatus:    fmt.Sprintf("SENT_WA_%d", httpResp.StatusCode),
		}, nil
	}

	errMsg := fmt.Sprintf("WhatsApp gateway error: status %d", httpResp.StatusCode)
	if parseOK && waResp.Error != "" {
		errMsg = fmt.Sprintf("WhatsApp gateway error: status %d, message: %s", httpResp.StatusCode, waResp.Error)
	}

	p.logger.WarnContext(ctx, "WhatsApp gateway send failed", "status_code", httpResp.StatusCode, "error_message", errMsg, "internal_message_id", details.InternalMessageID)

	// A 2xx wrapper with success=false means the session rejected the
	// number; retrying will not help.
	if httpResp.StatusCode >= 200 && httpResp.StatusCode < 300 {
		return &SendResponseDetails{
			IsSuccess:      false,
			ProviderStatus: fmt.Sprintf("REJECTED_WA_%d", httpResp.StatusCode),
			ErrorMessage:   errMsg,
		}, NewPermanentError(errMsg, nil)
	}

	return &SendResponseDetails{
		IsSuccess:      false,
		ProviderStatus: fmt.Sprintf("FAILED_WA_%d", httpResp.StatusCode),
		ErrorMessage:   errMsg,
	}, statusError(httpResp.StatusCode, errMsg)
}
