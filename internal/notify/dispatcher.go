package notify

import (
	"context"
	"sync"
	"time"

	"staging-pro-backend/internal/logger"
	"staging-pro-backend/internal/models"
	"staging-pro-backend/internal/resend"
)

// Message is one rendered e-mail.
type Message struct {
	Kind    Kind   `json:"kind"`
	OrderID string `json:"order_id"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// Deliverer sends a rendered message synchronously.
type Deliverer interface {
	Deliver(ctx context.Context, msg Message) error
}

// Queue hands a message to a background worker.
type Queue interface {
	Enqueue(ctx context.Context, msg Message) error
}

type PlanLookup interface {
	Get(id models.PlanType) (models.Plan, bool)
}

// Dispatcher renders lifecycle e-mails and sends them without blocking
// the caller. Messages go to the queue when one is configured, otherwise
// to a goroutine. Failures are logged and never returned.
type Dispatcher struct {
	plans     PlanLookup
	deliverer Deliverer
	queue     Queue
	appURL    string
	timeout   time.Duration
	wg        sync.WaitGroup
}

func NewDispatcher(plans PlanLookup, deliverer Deliverer, queue Queue, appURL string) *Dispatcher {
	return &Dispatcher{
		plans:     plans,
		deliverer: deliverer,
		queue:     queue,
		appURL:    appURL,
		timeout:   2 * time.Minute,
	}
}

func (d *Dispatcher) OrderConfirmed(ctx context.Context, sub models.Submission) {
	d.dispatch(ctx, KindOrderConfirmed, sub)
}

func (d *Dispatcher) DeliveryReady(ctx context.Context, sub models.Submission) {
	d.dispatch(ctx, KindDeliveryReady, sub)
}

func (d *Dispatcher) QuoteReady(ctx context.Context, sub models.Submission) {
	d.dispatch(ctx, KindQuoteReady, sub)
}

// Wait blocks until in-process sends have finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) dispatch(ctx context.Context, kind Kind, sub models.Submission) {
	if sub.OwnerEmail == "" {
		logger.Debug(ctx, "skipping email, owner has no address", "kind", kind, "submission_id", sub.ID)
		return
	}

	data := TemplateData{OrderID: sub.ID, PlanName: string(sub.Plan), AppURL: d.appURL}
	if plan, ok := d.plans.Get(sub.Plan); ok {
		data.PlanName = plan.Title
	}
	if sub.QuotedAmount != nil {
		data.Amount = FormatAmount(*sub.QuotedAmount)
	}

	subject, html, err := Render(kind, data)
	if err != nil {
		logger.Warn(ctx, "failed to render email", "kind", kind, "submission_id", sub.ID, "error", err)
		return
	}
	msg := Message{Kind: kind, OrderID: sub.ID, To: sub.OwnerEmail, Subject: subject, HTML: html}

	// Detach from the request so the send outlives it.
	bg := context.WithoutCancel(ctx)

	if d.queue != nil {
		err := d.queue.Enqueue(bg, msg)
		if err == nil {
			logger.Debug(ctx, "email enqueued", "kind", kind, "submission_id", sub.ID)
			return
		}
		logger.Warn(ctx, "failed to enqueue email, sending inline", "kind", kind, "submission_id", sub.ID, "error", err)
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		sendCtx, cancel := context.WithTimeout(bg, d.timeout)
		defer cancel()
		if err := d.deliverer.Deliver(sendCtx, msg); err != nil {
			logger.Warn(sendCtx, "failed to send email", "kind", kind, "submission_id", sub.ID, "error", err)
			return
		}
		logger.Info(sendCtx, "email sent", "kind", kind, "submission_id", sub.ID)
	}()
}

// ResendDeliverer sends messages through the Resend API.
type ResendDeliverer struct {
	client *resend.Client
	from   string
}

func NewResendDeliverer(client *resend.Client, from string) *ResendDeliverer {
	return &ResendDeliverer{client: client, from: from}
}

func (r *ResendDeliverer) Deliver(ctx context.Context, msg Message) error {
	_, err := r.client.Send(ctx, resend.Email{
		From:    r.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		HTML:    msg.HTML,
	})
	return err
}
