package provider

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Juste-Gnimavo/cechemoi-notifications/internal/notification_service/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWhatsAppCloudProvider_Send_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/106540123456789/messages", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		bodyBytes, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		var reqBody waCloudSendRequest
		require.NoError(t, json.Unmarshal(bodyBytes, &reqBody))
		assert.Equal(t, "whatsapp", reqBody.MessagingProduct)
		assert.Equal(t, "22997000001", reqBody.To)
		assert.Equal(t, "text", reqBody.Type)
		assert.Equal(t, "Votre commande est prête", reqBody.Text.Body)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"messages": []map[string]string{{"id": "wamid.ABC123"}},
		})
	}))
	defer server.Close()

	p := NewWhatsAppCloudProvider(discardLogger(), server.URL, "test-token", "106540123456789", server.Client())
	assert.Equal(t, domain.ChannelWhatsAppCloud, p.Channel())

	resp, err := p.Send(context.Background(), SendRequestDetails{
		Recipient: "22997000001",
		Content:   "Votre commande est prête",
	})
	require.NoError(t, err)
	assert.True(t, resp.IsSuccess)
	assert.Equal(t, "wamid.ABC123", resp.ProviderMessageID)
}

func TestWhatsAppCloudProvider_Send_InvalidRecipientIsPermanent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "Recipient phone number not in allowed list", "code": 131030},
		})
	}))
	defer server.Close()

	p := NewWhatsAppCloudProvider(discardLogger(), server.URL, "t", "id", server.Client())

	resp, err := p.Send(context.Background(), SendRequestDetails{Recipient: "bad", Content: "x"})
	require.Error(t, err)
	assert.False(t, resp.IsSuccess)
	assert.Equal(t, domain.FailureKindPermanent, Classify(err))
	assert.Contains(t, resp.ErrorMessage, "131030")
}

func TestWhatsAppCloudProvider_Send_ServerErrorIsRetryable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	p := NewWhatsAppCloudProvider(discardLogger(), server.URL, "t", "id", server.Client())

	_, err := p.Send(context.Background(), SendRequestDetails{Recipient: "22997000001", Content: "x"})
	require.Error(t, err)
	assert.Equal(t, domain.FailureKindRetryable, Classify(err))
}

func TestWhatsAppProvider_Send_SessionRejectIsPermanent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(waSendResponse{Success: false, Error: "number not registered on WhatsApp"})
	}))
	defer server.Close()

	p := NewWhatsAppProvider(discardLogger(), server.URL, "k", "main", server.Client())
	assert.Equal(t, domain.ChannelWhatsApp, p.Channel())

	resp, err := p.Send(context.Background(), SendRequestDetails{Recipient: "22997000001", Content: "x"})
	require.Error(t, err)
	assert.False(t, resp.IsSuccess)
	assert.Equal(t, domain.FailureKindPermanent, Classify(err))
}

func TestWhatsAppProvider_Send_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))

		var reqBody waSendRequestBody
		require.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
		assert.Equal(t, "main", reqBody.Session)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(waSendResponse{Success: true, MessageID: "wa-msg-1"})
	}))
	defer server.Close()

	p := NewWhatsAppProvider(discardLogger(), server.URL, "test-key", "main", server.Client())

	resp, err := p.Send(context.Background(), SendRequestDetails{Recipient: "22997000001", Content: "x"})
	require.NoError(t, err)
	assert.True(t, resp.IsSuccess)
	assert.Equal(t, "wa-msg-1", resp.ProviderMessageID)
}
