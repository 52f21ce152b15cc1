package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"staging-pro-backend/internal/checkout"
	"staging-pro-backend/internal/lifecycle"
	"staging-pro-backend/internal/logger"
	"staging-pro-backend/internal/models"
	"staging-pro-backend/internal/store"
)

type SubmissionReader interface {
	Get(ctx context.Context, id string) (models.Submission, error)
}

// Upload is one image received from a client or editor.
type Upload struct {
	FileName    string
	ContentType string
	Content     []byte
}

type ReferenceUpload struct {
	Upload
	Description string
}

type IntakeRequest struct {
	ID           string
	Plan         models.PlanType
	Source       Upload
	References   []ReferenceUpload
	Instructions string
}

// IntakeResult carries the created order and, for fixed-price plans, the
// checkout session. A checkout failure leaves the order in place and is
// reported in CheckoutError.
type IntakeResult struct {
	Submission    models.Submission
	Checkout      *checkout.Session
	CheckoutError string
}

// StudioService runs the operations that touch more than one
// collaborator: blob upload followed by a lifecycle transition, and
// checkout sessions tied to an order.
type StudioService struct {
	engine      *lifecycle.Engine
	submissions SubmissionReader
	plans       lifecycle.PlanLookup
	blobs       store.BlobStore
	checkout    *checkout.Service

	trustUnverifiedPayments bool
}

func NewStudioService(
	engine *lifecycle.Engine,
	submissions SubmissionReader,
	plans lifecycle.PlanLookup,
	blobs store.BlobStore,
	checkoutService *checkout.Service,
) *StudioService {
	return &StudioService{
		engine:      engine,
		submissions: submissions,
		plans:       plans,
		blobs:       blobs,
		checkout:    checkoutService,
	}
}

// Intake uploads the source and reference images, creates the order and
// opens a checkout session when the plan has a fixed price. Blobs already
// uploaded are left behind if a later step fails.
func (s *StudioService) Intake(ctx context.Context, actor models.User, req IntakeRequest) (IntakeResult, error) {
	if actor.Role != models.RoleUser {
		return IntakeResult{}, fmt.Errorf("%w: only clients can submit orders", lifecycle.ErrForbidden)
	}
	if _, ok := s.plans.Get(req.Plan); !ok {
		return IntakeResult{}, fmt.Errorf("%w: unknown plan %q", lifecycle.ErrValidation, req.Plan)
	}
	if len(req.Source.Content) == 0 {
		return IntakeResult{}, fmt.Errorf("%w: source image is required", lifecycle.ErrValidation)
	}

	id := req.ID
	if id == "" {
		id = lifecycle.NewOrderID()
	}

	sourceURL, err := s.blobs.UploadBlob(ctx, fmt.Sprintf("%s/%s_source.jpg", actor.ID, id), req.Source.Content, req.Source.ContentType)
	if err != nil {
		return IntakeResult{}, fmt.Errorf("failed to upload source image: %w", err)
	}

	refs := make([]models.ReferenceImage, 0, len(req.References))
	for i, ref := range req.References {
		url, err := s.blobs.UploadBlob(ctx, fmt.Sprintf("%s/%s_ref_%d.jpg", actor.ID, id, i), ref.Content, ref.ContentType)
		if err != nil {
			return IntakeResult{}, fmt.Errorf("failed to upload reference image %d: %w", i, err)
		}
		refs = append(refs, models.ReferenceImage{
			ID:          fmt.Sprintf("ref_%d", i),
			URL:         url,
			FileName:    ref.FileName,
			Description: ref.Description,
		})
	}

	sub, err := s.engine.Submit(ctx, actor, lifecycle.Intake{
		ID:              id,
		Plan:            req.Plan,
		FileName:        req.Source.FileName,
		FileSize:        int64(len(req.Source.Content)),
		DataURL:         sourceURL,
		ReferenceImages: refs,
		Instructions:    req.Instructions,
	})
	if err != nil {
		return IntakeResult{}, err
	}

	result := IntakeResult{Submission: sub}
	if s.plans.IsQuotePlan(sub.Plan) {
		return result, nil
	}

	session, err := s.openSession(ctx, sub, actor.Email)
	if err != nil {
		logger.Warn(ctx, "order created without checkout session", "submission_id", sub.ID, "error", err)
		result.CheckoutError = err.Error()
		return result, nil
	}
	result.Checkout = &session
	return result, nil
}

// StartCheckout opens a checkout session for an unpaid order. Quote
// plans require the admin to have set the quoted amount first.
func (s *StudioService) StartCheckout(ctx context.Context, actor models.User, id string) (checkout.Session, error) {
	sub, err := s.submissions.Get(ctx, id)
	if err != nil {
		return checkout.Session{}, err
	}
	if actor.Role != models.RoleAdmin && sub.OwnerID != actor.ID {
		return checkout.Session{}, fmt.Errorf("%w: not the owner of %s", lifecycle.ErrForbidden, id)
	}
	if sub.PaymentStatus == models.PaymentPaid {
		return checkout.Session{}, fmt.Errorf("%w: %s is already paid", lifecycle.ErrInvalidTransition, id)
	}
	return s.openSession(ctx, sub, actor.Email)
}

func (s *StudioService) openSession(ctx context.Context, sub models.Submission, fallbackEmail string) (checkout.Session, error) {
	plan, ok := s.plans.Get(sub.Plan)
	if !ok {
		return checkout.Session{}, fmt.Errorf("%w: unknown plan %q", lifecycle.ErrValidation, sub.Plan)
	}

	amount := plan.Amount
	if s.plans.IsQuotePlan(sub.Plan) {
		if sub.QuotedAmount == nil {
			return checkout.Session{}, lifecycle.ErrQuoteNotSet
		}
		amount = *sub.QuotedAmount
	}

	email := sub.OwnerEmail
	if email == "" {
		email = fallbackEmail
	}

	session, err := s.checkout.CreateSession(ctx, checkout.Request{
		PlanTitle:        plan.Title,
		AmountMinorUnits: amount,
		OrderID:          sub.ID,
		PayerEmail:       email,
	})
	if err != nil {
		return checkout.Session{}, err
	}

	if err := s.engine.RecordCheckoutSession(ctx, sub.ID, session.ID); err != nil {
		logger.Warn(ctx, "failed to record checkout session", "submission_id", sub.ID, "session_id", session.ID, "error", err)
	}
	return session, nil
}

// ConfirmPayment handles the client's return from checkout. When a
// provider is configured the session must be paid and belong to the order.
// SetTrustUnverifiedPayments lets ConfirmPayment succeed without a
// checkout provider. Only development deployments should set it.
func (s *StudioService) SetTrustUnverifiedPayments(trust bool) {
	s.trustUnverifiedPayments = trust
}

func (s *StudioService) ConfirmPayment(ctx context.Context, actor models.User, id, sessionID string) (models.Submission, error) {
	if !s.checkout.Enabled() {
		if !s.trustUnverifiedPayments {
			return models.Submission{}, checkout.ErrUnavailable
		}
		logger.Warn(ctx, "confirming payment without verification", "submission_id", id)
		return s.engine.ConfirmPayment(ctx, actor, id, sessionID)
	}

	if sessionID == "" {
		return models.Submission{}, fmt.Errorf("%w: session id is required", lifecycle.ErrValidation)
	}
	session, err := s.checkout.GetSession(ctx, sessionID)
	if err != nil {
		return models.Submission{}, err
	}
	if session.OrderID != id || !session.Paid {
		return models.Submission{}, fmt.Errorf("%w: checkout session %s is not a completed payment for %s", lifecycle.ErrValidation, sessionID, id)
	}
	return s.engine.ConfirmPayment(ctx, actor, id, sessionID)
}

// CompleteCheckout confirms payment from a verified provider event.
func (s *StudioService) CompleteCheckout(ctx context.Context, session checkout.Session) error {
	if !session.Paid || session.OrderID == "" {
		logger.Info(ctx, "ignoring unpaid checkout session", "session_id", session.ID)
		return nil
	}
	_, err := s.engine.ConfirmPayment(ctx, lifecycle.SystemActor, session.OrderID, session.ID)
	return err
}

// Deliver uploads a deliverable to results/<id>_<slot>.jpg and records it.
func (s *StudioService) Deliver(ctx context.Context, actor models.User, id string, slot lifecycle.Slot, upload Upload) (models.Submission, error) {
	if !(lifecycle.Deliver{}).Allowed(actor) {
		return models.Submission{}, fmt.Errorf("%w: %s cannot deliver", lifecycle.ErrForbidden, actor.Role)
	}
	switch slot {
	case lifecycle.SlotSingle, lifecycle.SlotRemove, lifecycle.SlotAdd:
	default:
		return models.Submission{}, fmt.Errorf("%w: unknown slot %q", lifecycle.ErrValidation, slot)
	}
	if len(upload.Content) == 0 {
		return models.Submission{}, fmt.Errorf("%w: deliverable image is required", lifecycle.ErrValidation)
	}
	if err := s.engine.CheckDeliver(ctx, actor, id, slot); err != nil {
		return models.Submission{}, err
	}

	name := string(slot)
	if slot == lifecycle.SlotSingle {
		name = "result"
	}
	// Each upload gets its own key so a delivery refused after the check
	// never replaces a file a submission already points at.
	key := fmt.Sprintf("results/%s_%s_%s.jpg", id, name, strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	url, err := s.blobs.UploadBlob(ctx, key, upload.Content, upload.ContentType)
	if err != nil {
		return models.Submission{}, fmt.Errorf("failed to upload deliverable: %w", err)
	}
	return s.engine.Deliver(ctx, actor, id, slot, url)
}
