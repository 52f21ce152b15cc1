package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"staging-pro-backend/internal/logger"
	"staging-pro-backend/internal/models"
)

type SubmissionStore interface {
	Get(ctx context.Context, id string) (models.Submission, error)
	Create(ctx context.Context, sub models.Submission) error
	Apply(ctx context.Context, id string, patch models.SubmissionPatch) error
	Delete(ctx context.Context, id string) error
}

type EditorLookup interface {
	Get(ctx context.Context, id string) (models.Editor, error)
}

type PlanLookup interface {
	Get(id models.PlanType) (models.Plan, bool)
	IsQuotePlan(id models.PlanType) bool
}

// Notifier receives lifecycle events. Implementations must not block;
// delivery failures stay inside the notifier.
type Notifier interface {
	OrderConfirmed(ctx context.Context, sub models.Submission)
	DeliveryReady(ctx context.Context, sub models.Submission)
	QuoteReady(ctx context.Context, sub models.Submission)
}

type Policy struct {
	// AdminDeliveryCompletes lets an admin's own delivery skip review.
	AdminDeliveryCompletes bool
}

// Intake is a new order as submitted by a client.
type Intake struct {
	ID              string                  `validate:"omitempty,alphanum,max=32"`
	Plan            models.PlanType         `validate:"required"`
	FileName        string                  `validate:"max=255"`
	FileSize        int64                   `validate:"min=0"`
	DataURL         string                  `validate:"required,url"`
	ReferenceImages []models.ReferenceImage `validate:"dive"`
	Instructions    string                  `validate:"max=4000"`
}

type Engine struct {
	submissions SubmissionStore
	editors     EditorLookup
	plans       PlanLookup
	notifier    Notifier
	policy      Policy
	validate    *validator.Validate
	now         func() time.Time
}

func NewEngine(submissions SubmissionStore, editors EditorLookup, plans PlanLookup, notifier Notifier, policy Policy) *Engine {
	return &Engine{
		submissions: submissions,
		editors:     editors,
		plans:       plans,
		notifier:    notifier,
		policy:      policy,
		validate:    validator.New(),
		now:         time.Now,
	}
}

// SetClock replaces the time source used for order timestamps.
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
}

// NewOrderID returns a short upper-case alphanumeric order id.
func NewOrderID() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:9])
}

// Submit creates a submission for a client. Fixed-price plans start
// pending and unpaid; quote plans start as a quote request.
func (e *Engine) Submit(ctx context.Context, actor models.User, in Intake) (models.Submission, error) {
	if actor.Role != models.RoleUser {
		return models.Submission{}, fmt.Errorf("%w: only clients can submit orders", ErrForbidden)
	}
	if actor.ID == "" {
		return models.Submission{}, fmt.Errorf("%w: owner is required", ErrValidation)
	}
	if err := e.validate.Struct(in); err != nil {
		return models.Submission{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if _, ok := e.plans.Get(in.Plan); !ok {
		return models.Submission{}, fmt.Errorf("%w: unknown plan %q", ErrValidation, in.Plan)
	}

	sub := models.Submission{
		ID:              in.ID,
		OwnerID:         actor.ID,
		OwnerEmail:      actor.Email,
		Plan:            in.Plan,
		FileName:        in.FileName,
		FileSize:        in.FileSize,
		DataURL:         in.DataURL,
		ReferenceImages: in.ReferenceImages,
		Instructions:    strings.TrimSpace(in.Instructions),
		Status:          models.StatusPending,
		PaymentStatus:   models.PaymentUnpaid,
		Timestamp:       e.now().UnixMilli(),
	}
	if sub.ID == "" {
		sub.ID = NewOrderID()
	}
	if e.plans.IsQuotePlan(in.Plan) {
		sub.Status = models.StatusQuoteRequest
		sub.PaymentStatus = models.PaymentQuotePending
	}

	if err := e.submissions.Create(ctx, sub); err != nil {
		logger.Error(ctx, "failed to create submission", "submission_id", sub.ID, "error", err)
		return models.Submission{}, err
	}

	logger.Info(ctx, "submission created",
		"submission_id", sub.ID,
		"plan", sub.Plan,
		"status", sub.Status,
	)
	if e.notifier != nil {
		e.notifier.OrderConfirmed(ctx, sub)
	}
	return sub, nil
}

// Execute runs cmd against the stored submission. The patch is written
// first; the returned submission reflects it only when the write
// succeeded. On any error the stored state is the caller's last view.
func (e *Engine) Execute(ctx context.Context, actor models.User, id string, cmd Command) (models.Submission, error) {
	_, next, err := e.execute(ctx, actor, id, cmd)
	return next, err
}

// execute also returns the state the command was applied to.
func (e *Engine) execute(ctx context.Context, actor models.User, id string, cmd Command) (models.Submission, models.Submission, error) {
	if !cmd.Allowed(actor) {
		return models.Submission{}, models.Submission{}, fmt.Errorf("%w: %s cannot %s", ErrForbidden, actor.Role, cmd.Name())
	}

	sub, err := e.submissions.Get(ctx, id)
	if err != nil {
		return models.Submission{}, models.Submission{}, err
	}

	patch, err := cmd.Apply(sub, actor)
	if err != nil {
		return sub, sub, err
	}
	if patch.IsEmpty() {
		return sub, sub, nil
	}

	if err := e.submissions.Apply(ctx, id, patch); err != nil {
		logger.Error(ctx, "failed to apply command",
			"command", cmd.Name(),
			"submission_id", id,
			"error", err,
		)
		return sub, sub, err
	}

	next := patch.ApplyTo(sub)
	if next.Status != sub.Status {
		logger.Info(ctx, "submission transitioned",
			"submission_id", id,
			"command", cmd.Name(),
			"from", sub.Status,
			"to", next.Status,
			"actor_role", actor.Role,
		)
	}
	return sub, next, nil
}

// Assign resolves editorID against the roster before assigning.
func (e *Engine) Assign(ctx context.Context, actor models.User, id, editorID string) (models.Submission, error) {
	cmd := Assign{EditorID: strings.TrimSpace(editorID)}
	if !cmd.Allowed(actor) {
		return models.Submission{}, fmt.Errorf("%w: %s cannot %s", ErrForbidden, actor.Role, cmd.Name())
	}
	if cmd.EditorID != "" {
		editor, err := e.editors.Get(ctx, cmd.EditorID)
		switch {
		case err == nil:
			cmd.Editor = &editor
		case !errors.Is(err, ErrNotFound):
			return models.Submission{}, err
		}
	}
	return e.Execute(ctx, actor, id, cmd)
}

// CheckDeliver reports whether actor may deliver slot for the stored
// submission right now. It writes nothing.
func (e *Engine) CheckDeliver(ctx context.Context, actor models.User, id string, slot Slot) error {
	cmd := Deliver{Slot: slot, AdminCompletes: e.policy.AdminDeliveryCompletes}
	if !cmd.Allowed(actor) {
		return fmt.Errorf("%w: %s cannot %s", ErrForbidden, actor.Role, cmd.Name())
	}
	sub, err := e.submissions.Get(ctx, id)
	if err != nil {
		return err
	}
	return cmd.Check(sub, actor)
}

// Deliver records a deliverable. The owner is notified only when this
// delivery moves the submission into review or completion.
func (e *Engine) Deliver(ctx context.Context, actor models.User, id string, slot Slot, url string) (models.Submission, error) {
	cmd := Deliver{Slot: slot, URL: url, AdminCompletes: e.policy.AdminDeliveryCompletes}
	prev, sub, err := e.execute(ctx, actor, id, cmd)
	if err != nil {
		return sub, err
	}
	if becameDelivered(prev, sub) && e.notifier != nil && sub.OwnerEmail != "" {
		e.notifier.DeliveryReady(ctx, sub)
	}
	return sub, nil
}

func becameDelivered(prev, next models.Submission) bool {
	if prev.Status == next.Status {
		return false
	}
	return next.Status == models.StatusReviewing || next.Status == models.StatusCompleted
}

func (e *Engine) Approve(ctx context.Context, actor models.User, id string) (models.Submission, error) {
	return e.Execute(ctx, actor, id, Approve{})
}

func (e *Engine) Reject(ctx context.Context, actor models.User, id, notes string) (models.Submission, error) {
	return e.Execute(ctx, actor, id, Reject{Notes: notes})
}

func (e *Engine) SetQuote(ctx context.Context, actor models.User, id string, amount int64) (models.Submission, error) {
	sub, err := e.Execute(ctx, actor, id, SetQuote{Amount: amount})
	if err != nil {
		return sub, err
	}
	if e.notifier != nil && sub.OwnerEmail != "" {
		e.notifier.QuoteReady(ctx, sub)
	}
	return sub, nil
}

func (e *Engine) ConfirmPayment(ctx context.Context, actor models.User, id, sessionID string) (models.Submission, error) {
	return e.Execute(ctx, actor, id, ConfirmPayment{SessionID: sessionID})
}

// RecordCheckoutSession stores the provider session on the submission
// so a later webhook or confirmation can be matched to it.
func (e *Engine) RecordCheckoutSession(ctx context.Context, id, sessionID string) error {
	return e.submissions.Apply(ctx, id, models.SubmissionPatch{StripeSessionID: strPtr(sessionID)})
}

// Delete removes a submission outright. Admin only.
func (e *Engine) Delete(ctx context.Context, actor models.User, id string) error {
	if actor.Role != models.RoleAdmin {
		return fmt.Errorf("%w: %s cannot delete", ErrForbidden, actor.Role)
	}
	if _, err := e.submissions.Get(ctx, id); err != nil {
		return err
	}
	if err := e.submissions.Delete(ctx, id); err != nil {
		logger.Error(ctx, "failed to delete submission", "submission_id", id, "error", err)
		return err
	}
	logger.Info(ctx, "submission deleted", "submission_id", id)
	return nil
}

// SystemActor is the identity used for server-side confirmations such as
// payment webhooks.
var SystemActor = models.User{ID: "system", Role: models.RoleAdmin}
