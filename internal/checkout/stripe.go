package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

const (
	EventSessionCompleted = "checkout.session.completed"
	metadataOrderID       = "orderId"
)

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	Currency      string
	AppURL        string
}

// StripeProvider creates Stripe Checkout sessions in payment mode.
type StripeProvider struct {
	api    *client.API
	config StripeConfig
}

func NewStripeProvider(cfg StripeConfig) *StripeProvider {
	api := &client.API{}
	api.Init(cfg.SecretKey, nil)
	if cfg.Currency == "" {
		cfg.Currency = string(stripe.CurrencyUSD)
	}
	cfg.AppURL = strings.TrimRight(cfg.AppURL, "/")
	return &StripeProvider{api: api, config: cfg}
}

// SuccessURL is where Stripe returns the payer. The client reads the
// session and order ids back from the query to confirm payment.
func (p *StripeProvider) SuccessURL(orderID string) string {
	return fmt.Sprintf("%s/?session_id={CHECKOUT_SESSION_ID}&order_id=%s&payment=success",
		p.config.AppURL, url.QueryEscape(orderID))
}

func (p *StripeProvider) CancelURL() string {
	return p.config.AppURL + "/"
}

func (p *StripeProvider) CreateSession(ctx context.Context, req Request) (Session, error) {
	title := req.PlanTitle
	if title == "" {
		title = "Staging Service"
	}

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		CustomerEmail:      stripe.String(req.PayerEmail),
		ClientReferenceID:  stripe.String(req.OrderID),
		SuccessURL:         stripe.String(p.SuccessURL(req.OrderID)),
		CancelURL:          stripe.String(p.CancelURL()),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(p.config.Currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String("StagingPro: " + title),
					},
					UnitAmount: stripe.Int64(req.AmountMinorUnits),
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.Context = ctx
	params.AddMetadata(metadataOrderID, req.OrderID)

	s, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		return Session{}, err
	}
	if s.URL == "" {
		return Session{}, fmt.Errorf("stripe returned session %s without a redirect url", s.ID)
	}
	return fromStripe(s), nil
}

func (p *StripeProvider) GetSession(ctx context.Context, id string) (Session, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	s, err := p.api.CheckoutSessions.Get(id, params)
	if err != nil {
		return Session{}, err
	}
	return fromStripe(s), nil
}

// WebhookEvent is the part of a Stripe event the studio acts on.
type WebhookEvent struct {
	Type    string
	Session Session
}

// ParseWebhook verifies the Stripe-Signature header and decodes the
// checkout session carried by the event.
func (p *StripeProvider) ParseWebhook(payload []byte, signature string) (WebhookEvent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, p.config.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return WebhookEvent{}, fmt.Errorf("failed to verify webhook: %w", err)
	}

	out := WebhookEvent{Type: string(event.Type)}
	if out.Type != EventSessionCompleted {
		return out, nil
	}
	var s stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &s); err != nil {
		return WebhookEvent{}, fmt.Errorf("failed to decode checkout session: %w", err)
	}
	out.Session = fromStripe(&s)
	return out, nil
}

func fromStripe(s *stripe.CheckoutSession) Session {
	orderID := s.Metadata[metadataOrderID]
	if orderID == "" {
		orderID = s.ClientReferenceID
	}
	return Session{
		ID:          s.ID,
		RedirectURL: s.URL,
		OrderID:     orderID,
		Paid:        s.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid,
	}
}
