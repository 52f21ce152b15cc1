package checkout_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76/webhook"

	"staging-pro-backend/internal/checkout"
)

type fakeProvider struct {
	calls    int
	requests []checkout.Request
	err      error
}

func (f *fakeProvider) CreateSession(_ context.Context, req checkout.Request) (checkout.Session, error) {
	f.calls++
	f.requests = append(f.requests, req)
	if f.err != nil {
		return checkout.Session{}, f.err
	}
	return checkout.Session{ID: "cs_test_1", RedirectURL: "https://pay.example/cs_test_1", OrderID: req.OrderID}, nil
}

func (f *fakeProvider) GetSession(_ context.Context, id string) (checkout.Session, error) {
	return checkout.Session{ID: id, OrderID: "ORDER1", Paid: true}, nil
}

func validRequest() checkout.Request {
	return checkout.Request{
		PlanTitle:        "Furniture Removal",
		AmountMinorUnits: 3500,
		OrderID:          "ORDER1",
		PayerEmail:       "client@example.com",
	}
}

func TestCreateSession_RejectsBelowMinimumBeforeProvider(t *testing.T) {
	provider := &fakeProvider{}
	svc := checkout.NewService(provider)

	req := validRequest()
	req.AmountMinorUnits = 49
	_, err := svc.CreateSession(context.Background(), req)

	assert.ErrorIs(t, err, checkout.ErrAmountBelowMinimum)
	assert.Equal(t, 0, provider.calls)
}

func TestCreateSession_NonPositiveAmountIsBelowMinimum(t *testing.T) {
	provider := &fakeProvider{}
	svc := checkout.NewService(provider)

	for _, amount := range []int64{0, -5} {
		req := validRequest()
		req.AmountMinorUnits = amount
		_, err := svc.CreateSession(context.Background(), req)

		assert.ErrorIs(t, err, checkout.ErrAmountBelowMinimum, "amount %d", amount)
		assert.NotErrorIs(t, err, checkout.ErrInvalidRequest, "amount %d", amount)
	}
	assert.Equal(t, 0, provider.calls)
}

func TestCreateSession_AcceptsMinimum(t *testing.T) {
	provider := &fakeProvider{}
	svc := checkout.NewService(provider)

	req := validRequest()
	req.AmountMinorUnits = checkout.MinimumAmount
	session, err := svc.CreateSession(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, "cs_test_1", session.ID)
	assert.Equal(t, "https://pay.example/cs_test_1", session.RedirectURL)
	require.Len(t, provider.requests, 1)
	assert.Equal(t, int64(50), provider.requests[0].AmountMinorUnits)
}

func TestCreateSession_InvalidRequest(t *testing.T) {
	provider := &fakeProvider{}
	svc := checkout.NewService(provider)

	req := validRequest()
	req.PayerEmail = "not-an-email"
	_, err := svc.CreateSession(context.Background(), req)
	assert.ErrorIs(t, err, checkout.ErrInvalidRequest)

	req = validRequest()
	req.OrderID = ""
	_, err = svc.CreateSession(context.Background(), req)
	assert.ErrorIs(t, err, checkout.ErrInvalidRequest)
	assert.Equal(t, 0, provider.calls)
}

func TestCreateSession_ProviderFailure(t *testing.T) {
	boom := errors.New("card network down")
	svc := checkout.NewService(&fakeProvider{err: boom})

	_, err := svc.CreateSession(context.Background(), validRequest())
	assert.ErrorIs(t, err, boom)
}

func TestService_Unconfigured(t *testing.T) {
	svc := checkout.NewService(nil)
	assert.False(t, svc.Enabled())

	_, err := svc.CreateSession(context.Background(), validRequest())
	assert.ErrorIs(t, err, checkout.ErrUnavailable)

	_, err = svc.GetSession(context.Background(), "cs_1")
	assert.ErrorIs(t, err, checkout.ErrUnavailable)
}

func TestStripeProvider_URLs(t *testing.T) {
	p := checkout.NewStripeProvider(checkout.StripeConfig{SecretKey: "sk_test_x", AppURL: "https://studio.example/"})

	assert.Equal(t,
		"https://studio.example/?session_id={CHECKOUT_SESSION_ID}&order_id=AB12CD34E&payment=success",
		p.SuccessURL("AB12CD34E"))
	assert.Equal(t, "https://studio.example/", p.CancelURL())
}

func TestStripeProvider_ParseWebhook(t *testing.T) {
	const secret = "whsec_test"
	p := checkout.NewStripeProvider(checkout.StripeConfig{SecretKey: "sk_test_x", WebhookSecret: secret})

	payload := []byte(`{
		"id": "evt_1",
		"object": "event",
		"type": "checkout.session.completed",
		"data": {"object": {
			"id": "cs_test_9",
			"object": "checkout.session",
			"payment_status": "paid",
			"client_reference_id": "FALLBACK",
			"metadata": {"orderId": "AB12CD34E"}
		}}
	}`)
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: time.Now(),
	})

	event, err := p.ParseWebhook(payload, signed.Header)
	require.NoError(t, err)
	assert.Equal(t, checkout.EventSessionCompleted, event.Type)
	assert.Equal(t, "cs_test_9", event.Session.ID)
	assert.Equal(t, "AB12CD34E", event.Session.OrderID)
	assert.True(t, event.Session.Paid)
}

func TestStripeProvider_ParseWebhookBadSignature(t *testing.T) {
	p := checkout.NewStripeProvider(checkout.StripeConfig{SecretKey: "sk_test_x", WebhookSecret: "whsec_test"})

	_, err := p.ParseWebhook([]byte(`{"id":"evt_1","type":"checkout.session.completed"}`), "t=1,v1=deadbeef")
	assert.Error(t, err)
}
