package provider

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/Juste-Gnimavo/cechemoi-notifications/internal/notification_service/domain"

	"github.com/google/uuid"
)

// MockProvider is a simulated channel sender for development and testing.
type MockProvider struct {
	logger       *slog.Logger
	name         string
	channel      domain.Channel
	failRate     float64 // chance to simulate failure (0.0 to 1.0)
	minLatencyMs int
	maxLatencyMs int
}

// NewMockProvider creates a new MockProvider for the given channel.
func NewMockProvider(logger *slog.Logger, name string, channel domain.Channel, failRate float64, minLatencyMs, maxLatencyMs int) *MockProvider {
	if name == "" {
		name = "mock-provider"
	}
	return &MockProvider{
		logger:       logger.With("provider", name),
		name:         name,
		channel:      channel,
		failRate:     failRate,
		minLatencyMs: minLatencyMs,
		maxLatencyMs: maxLatencyMs,
	}
}

func (p *MockProvider) GetName() string { return p.name }

func (p *MockProvider) Channel() domain.Channel { return p.channel }

func (p *MockProvider) Send(ctx context.Context, request SendRequestDetails) (*SendResponseDetails, error) {
	if p.maxLatencyMs > p.minLatencyMs {
		latency := p.minLatencyMs + rand.Intn(p.maxLatencyMs-p.minLatencyMs+1)
		time.Sleep(time.Duration(latency) * time.Millisecond)
	}

	p.logger.InfoContext(ctx, "MockProvider: Send called",
		"message_id", request.InternalMessageID,
		"recipient", request.Recipient,
		"content_len", len(request.Content))

	if rand.Float64() < p.failRate {
		errMsg := fmt.Sprintf("MockProvider simulated failure for recipient %s", request.Recipient)
		p.logger.WarnContext(ctx, errMsg, "message_id", request.InternalMessageID)
		return &SendResponseDetails{
			IsSuccess:      false,
			ProviderStatus: "FAILED_MOCK_500",
			ErrorMessage:   errMsg,
		}, NewRetryableError(errMsg, nil)
	}

	providerMsgID := uuid.NewString()
	p.logger.InfoContext(ctx, "MockProvider: message sent (simulated)",
		"message_id", request.InternalMessageID,
		"provider_message_id", providerMsgID)

	return &SendResponseDetails{
		ProviderMessageID: providerMsgID,
		IsSuccess:         true,
		ProviderStatus:    "SENT_MOCK_200",
	}, nil
}
