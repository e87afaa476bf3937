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

// SMSGatewayProvider sends SMS through the HTTP JSON API of the configured
// SMS aggregator.
type SMSGatewayProvider struct {
	logger     *slog.Logger
	httpClient *http.Client
	apiURL     string
	apiKey     string
	senderID   string
}

func NewSMSGatewayProvider(logger *slog.Logger, apiURL, apiKey, senderID string, httpClient *http.Client) *SMSGatewayProvider {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &SMSGatewayProvider{
		logger:     logger.With("provider", "sms_gateway"),
		httpClient: httpClient,
		apiURL:     apiURL,
		apiKey:     apiKey,
		senderID:   senderID,
	}
}

// smsSendRequestBody is the aggregator's send payload. The API accepts a
// batch of messages; we submit one per call.
type smsSendRequestBody struct {
	Messages []smsMessage `json:"messages"`
}

type smsMessage struct {
	Sender     string   `json:"sender"`
	Body       string   `json:"body"`
	Recipients []string `json:"recipients"`
}

type smsSendSuccessResponse struct {
	Messages []smsSentMessageDetail `json:"messages"`
	Status   int                    `json:"status"`
	Message  string                 `json:"message"`
}

type smsSentMessageDetail struct {
	ID        int64  `json:"id"`
	Recipient string `json:"recipient"`
	Status    int    `json:"status"`
	Message   string `json:"message"`
}

type smsErrorResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func (p *SMSGatewayProvider) GetName() string { return "sms_gateway" }

func (p *SMSGatewayProvider) Channel() domain.Channel { return domain.ChannelSMS }

func (p *SMSGatewayProvider) Send(ctx context.Context, details SendRequestDetails) (*SendResponseDetails, error) {
	p.logger.InfoContext(ctx, "SMSGatewayProvider: Send called", "recipient", details.Recipient, "internal_message_id", details.InternalMessageID)

	sender := details.SenderID
	if sender == "" {
		sender = p.senderID
	}
	reqBody := smsSendRequestBody{
		Messages: []smsMessage{
			{Sender: sender, Body: details.Content, Recipients: []string{details.Recipient}},
		},
	}

	reqBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal SMS gateway request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiURL, bytes.NewBuffer(reqBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create SMS gateway HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	httpResp, err := p.httpClient.Do(httpReq)
	if err != nil {
		p.logger.ErrorContext(ctx, "Failed to reach SMS gateway", "error", err, "internal_message_id", details.InternalMessageID)
		return nil, NewRetryableError("SMS gateway request failed", err)
	}
	defer httpResp.Body.Close()

	respBodyBytes, readErr := io.ReadAll(httpResp.Body)
	if readErr != nil {
		p.logger.ErrorContext(ctx, "Failed to read SMS gateway response body", "status_code", httpResp.StatusCode, "error", readErr)
		return &SendResponseDetails{
			IsSuccess:      false,
			ProviderStatus: fmt.Sprintf("FAILED_SMS_READ_ERR_%d", httpResp.StatusCode),
			ErrorMessage:   readErr.Error(),
		}, NewRetryableError("failed to read SMS gateway response", readErr)
	}

	if httpResp.StatusCode >= 200 && httpResp.StatusCode < 300 {
		var successResp smsSendSuccessResponse
		providerMsgID := ""
		if err := json.Unmarshal(respBodyBytes, &successResp); err != nil {
			p.logger.WarnContext(ctx, "SMS accepted but response body unparseable", "status_code", httpResp.StatusCode, "error", err)
		} else if len(successResp.Messages) > 0 {
			providerMsgID = fmt.Sprintf("%d", successResp.Messages[0].ID)
		}

		p.logger.InfoContext(ctx, "SMS submitted to gateway", "provider_message_id", providerMsgID, "internal_message_id", details.InternalMessageID)
		return &SendResponseDetails{
			ProviderMessageID: providerMsgID,
			IsSuccess:         true,
			ProviderStatus:    fmt.Sprintf("SENT_SMS_%d", httpResp.StatusCode),
		}, nil
	}

	errMsg := fmt.Sprintf("SMS gateway error: status %d", httpResp.StatusCode)
	var errorResp smsErrorResponse
	if err := json.Unmarshal(respBodyBytes, &errorResp); err == nil && errorResp.Message != "" {
		errMsg = fmt.Sprintf("SMS gateway error: status %d, message: %s", httpResp.StatusCode, errorResp.Message)
	}

	p.logger.WarnContext(ctx, "SMS gateway send failed", "status_code", httpResp.StatusCode, "error_message", errMsg, "internal_message_id", details.InternalMessageID)
	return &SendResponseDetails{
		IsSuccess:      false,
		ProviderStatus: fmt.Sprintf("FAILED_SMS_%d", httpResp.StatusCode),
		ErrorMessage:   errMsg,
	}, statusError(httpResp.StatusCode, errMsg)
}
