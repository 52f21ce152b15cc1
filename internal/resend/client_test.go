package resend_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staging-pro-backend/internal/resend"
)

func TestClient_Send(t *testing.T) {
	var got resend.Email
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/emails", r.URL.Path)
		assert.Equal(t, "Bearer re_test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"id":"email_123"}`))
	}))
	defer server.Close()

	client := resend.NewClient(server.URL, "re_test")
	id, err := client.Send(context.Background(), resend.Email{
		From:    "Studio <info@example.com>",
		To:      []string{"client@example.com"},
		Subject: "Order confirmed",
		HTML:    "<p>hi</p>",
	})

	require.NoError(t, err)
	assert.Equal(t, "email_123", id)
	assert.Equal(t, []string{"client@example.com"}, got.To)
	assert.Equal(t, "Order confirmed", got.Subject)
}

func TestClient_Send_NotConfigured(t *testing.T) {
	client := resend.NewClient("", "")
	_, err := client.Send(context.Background(), resend.Email{To: []string{"a@b.c"}})
	assert.ErrorIs(t, err, resend.ErrNotConfigured)
}

func TestClient_Send_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"id":"email_456"}`))
	}))
	defer server.Close()

	client := resend.NewClient(server.URL, "re_test")
	client.SetBackoffs(time.Millisecond, time.Millisecond, time.Millisecond)

	id, err := client.Send(context.Background(), resend.Email{To: []string{"a@example.com"}})
	require.NoError(t, err)
	assert.Equal(t, "email_456", id)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_Send_DoesNotRetryRejection(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"name":"validation_error","message":"invalid from address"}`))
	}))
	defer server.Close()

	client := resend.NewClient(server.URL, "re_test")
	client.SetBackoffs(time.Millisecond)

	_, err := client.Send(context.Background(), resend.Email{To: []string{"a@example.com"}})

	var statusErr *resend.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusUnprocessableEntity, statusErr.StatusCode)
	assert.Equal(t, "invalid from address", statusErr.Message)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_RetryWithBackoff_Exhausted(t *testing.T) {
	client := resend.NewClient("", "re_test")
	client.SetBackoffs(time.Millisecond, time.Millisecond)

	callCount := 0
	err := client.RetryWithBackoff(context.Background(), func() error {
		callCount++
		return assert.AnError
	}, 3)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed after 3 retries")
	assert.Equal(t, 3, callCount)
}
