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

// WhatsAppCloudProvider sends text messages through the Meta WhatsApp
// Business Cloud API (graph.facebook.com).
type WhatsAppCloudProvider struct {
	logger        *slog.Logger
	httpClient    *http.Client
	baseURL       string // e.g. https://graph.facebook.com/v19.0
	accessToken   string
	phoneNumberID string
}

func NewWhatsAppCloudProvider(logger *slog.Logger, baseURL, accessToken, phoneNumberID string, httpClient *http.Client) *WhatsAppCloudProvider {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &WhatsAppCloudProvider{
		logger:        logger.With("provider", "whatsapp_cloud"),
		httpClient:    httpClient,
		baseURL:       baseURL,
		accessToken:   accessToken,
		phoneNumberID: phoneNumberID,
	}
}

type waCloudSendRequest struct {
	MessagingProduct string          `json:"messaging_product"`
	To               string          `json:"to"`
	Type             string          `json:"type"`
	Text             waCloudTextBody `json:"text"`
}

type waCloudTextBody struct {
	Body string `json:"body"`
}

type waCloudSendResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
	Error *waCloudError `json:"error,omitempty"`
}

type waCloudError struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
}

func (p *WhatsAppCloudProvider) GetName() string { return "whatsapp_cloud" }

func (p *WhatsAppCloudProvider) Channel() domain.Channel { return domain.ChannelWhatsAppCloud }

func (p *WhatsAppCloudProvider) Send(ctx context.Context, details SendRequestDetails) (*SendResponseDetails, error) {
	p.logger.InfoContext(ctx, "WhatsAppCloudProvider: Send called", "recipient", details.Recipient, "internal_message_id", details.InternalMessageID)

	reqBody := waCloudSendRequest{
		MessagingProduct: "whatsapp",
		To:               details.Recipient,
		Type:             "text",
		Text:             waCloudTextBody{Body: details.Content},
	}
	reqBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal WhatsApp Cloud request: %w", err)
	}

	url := fmt.Sprintf("%s/%s/messages", p.baseURL, p.phoneNumberID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(reqBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create WhatsApp Cloud HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.accessToken)

	httpResp, err := p.httpClient.Do(httpReq)
	if err != nil {
		p.logger.ErrorContext(ctx, "Failed to reach WhatsApp Cloud API", "error", err, "internal_message_id", details.InternalMessageID)
		return nil, NewRetryableError("WhatsApp Cloud API request failed", err)
	}
	defer httpResp.Body.Close()

	respBodyBytes, readErr := io.ReadAll(httpResp.Body)
	if readErr != nil {
		return &SendResponseDetails{
			IsSuccess:      false,
			ProviderStatus: fmt.Sprintf("FAILED_WACLOUD_READ_ERR_%d", httpResp.StatusCode),
			ErrorMessage:   readErr.Error(),
		}, NewRetryableError("failed to read WhatsApp Cloud response", readErr)
	}

	var cloudResp waCloudSendResponse
	parseOK := json.Unmarshal(respBodyBytes, &cloudResp) == nil

	if httpResp.StatusCode >= 200 && httpResp.StatusCode < 300 {
		providerMsgID := ""
		if parseOK && len(cloudResp.Messages) > 0 {
			providerMsgID = cloudResp.Messages[0].ID
		}
		p.logger.InfoContext(ctx, "WhatsApp Cloud message submitted", "provider_message_id", providerMsgID, "internal_message_id", details.InternalMessageID)
		return &SendResponseDetails{
			ProviderMessageID: providerMsgID,
			IsSuccess:         true,
			ProviderStatus:    fmt.Sprintf("SENT_WACLOUD_%d", httpResp.StatusCode),
		}, nil
	}

	errMsg := fmt.Sprintf("WhatsApp Cloud API error: status %d", httpResp.StatusCode)
	if parseOK && cloudResp.Error != nil && cloudResp.Error.Message != "" {
		errMsg = fmt.Sprintf("WhatsApp Cloud API error: status %d, code %d, message: %s", httpResp.StatusCode, cloudResp.Error.Code, cloudResp.Error.Message)
	}

	p.logger.WarnContext(ctx, "WhatsApp Cloud send failed", "status_code", httpResp.StatusCode, "error_message", errMsg, "internal_message_id", details.InternalMessageID)
	return &SendResponseDetails{
		IsSuccess:      false,
		ProviderStatus: fmt.Sprintf("FAILED_WACLOUD_%d", httpResp.StatusCode),
		ErrorMessage:   errMsg,
	}, statusError(httpResp.StatusCode, errMsg)
}
