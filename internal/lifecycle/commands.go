package lifecycle

import (
	"fmt"
	"strings"

	"staging-pro-backend/internal/models"
)

// MinimumAmount is the smallest payable amount in minor units (cents).
const MinimumAmount int64 = 50

// Command is one role-gated transition. Allowed is evaluated before
// Apply, and Apply only decides the state change; it never writes.
type Command interface {
	Name() string
	Allowed(actor models.User) bool
	Apply(sub models.Submission, actor models.User) (models.SubmissionPatch, error)
}

// Slot names one deliverable of a two-part plan.
type Slot string

const (
	SlotSingle Slot = ""
	SlotRemove Slot = "remove"
	SlotAdd    Slot = "add"
)

func statusPtr(s models.Status) *models.Status { return &s }
func paymentPtr(p models.PaymentStatus) *models.PaymentStatus { return &p }
func strPtr(s string) *string { return &s }

func invalid(sub models.Submission, action string) error {
	return fmt.Errorf("%w: cannot %s a %s submission", ErrInvalidTransition, action, sub.Status)
}

// Assign sets or clears the editor on a paid submission. An empty
// EditorID unassigns. Editor is the roster entry for EditorID, resolved by
// the caller; nil means the id is not on the roster.
type Assign struct {
	EditorID string
	Editor   *models.Editor
}

func (Assign) Name() string { return "assign" }

func (Assign) Allowed(actor models.User) bool { return actor.Role == models.RoleAdmin }

func (c Assign) Apply(sub models.Submission, _ models.User) (models.SubmissionPatch, error) {
	if sub.PaymentStatus != models.PaymentPaid {
		return models.SubmissionPatch{}, fmt.Errorf("%w: submission is not paid", ErrInvalidTransition)
	}

	if c.EditorID == "" {
		if sub.Status != models.StatusProcessing {
			return models.SubmissionPatch{}, invalid(sub, "unassign")
		}
		return models.SubmissionPatch{
			Status:          statusPtr(models.StatusPending),
			ClearAssignment: true,
		}, nil
	}

	if c.Editor == nil || c.Editor.ID != c.EditorID {
		return models.SubmissionPatch{}, fmt.Errorf("%w: editor %s is not on the roster", ErrValidation, c.EditorID)
	}
	switch sub.Status {
	case models.StatusPending, models.StatusProcessing:
		return models.SubmissionPatch{
			Status:           statusPtr(models.StatusProcessing),
			AssignedEditorID: strPtr(c.EditorID),
		}, nil
	default:
		return models.SubmissionPatch{}, invalid(sub, "assign")
	}
}

// Deliver records one deliverable. The submission moves to review once
// its plan's deliverable set is complete; an admin's own delivery
// completes it outright when AdminCompletes is set.
type Deliver struct {
	Slot           Slot
	URL            string
	AdminCompletes bool
}

func (Deliver) Name() string { return "deliver" }

func (Deliver) Allowed(actor models.User) bool {
	return actor.Role == models.RoleAdmin || actor.Role == models.RoleEditor
}

// Check runs every Deliver guard that does not depend on the URL, so a
// delivery can be refused before its file is stored.
func (c Deliver) Check(sub models.Submission, actor models.User) error {
	if actor.Role != models.RoleAdmin {
		if actor.EditorRecordID == "" || actor.EditorRecordID != sub.AssignedEditorID {
			return fmt.Errorf("%w: submission is not assigned to you", ErrForbidden)
		}
	}
	if sub.Status != models.StatusProcessing && sub.Status != models.StatusReviewing {
		return invalid(sub, "deliver")
	}
	if sub.Plan == models.PlanFurnitureBoth {
		if c.Slot != SlotRemove && c.Slot != SlotAdd {
			return fmt.Errorf("%w: %s needs slot remove or add", ErrValidation, sub.Plan)
		}
	} else if c.Slot == SlotRemove {
		return fmt.Errorf("%w: %s has a single deliverable", ErrValidation, sub.Plan)
	}
	return nil
}

func (c Deliver) Apply(sub models.Submission, actor models.User) (models.SubmissionPatch, error) {
	if strings.TrimSpace(c.URL) == "" {
		return models.SubmissionPatch{}, fmt.Errorf("%w: deliverable url is required", ErrValidation)
	}
	if err := c.Check(sub, actor); err != nil {
		return models.SubmissionPatch{}, err
	}

	var patch models.SubmissionPatch
	complete := true

	switch {
	case sub.Plan != models.PlanFurnitureBoth:
		patch.ResultURL = strPtr(c.URL)
	case c.Slot == SlotRemove:
		patch.ResultRemoveURL = strPtr(c.URL)
		complete = sub.ResultURL != ""
	default:
		patch.ResultURL = strPtr(c.URL)
		complete = sub.ResultRemoveURL != ""
	}

	if !complete {
		return patch, nil
	}
	if actor.Role == models.RoleAdmin && c.AdminCompletes {
		patch.Status = statusPtr(models.StatusCompleted)
	} else if sub.Status != models.StatusReviewing {
		patch.Status = statusPtr(models.StatusReviewing)
	}
	return patch, nil
}

type Approve struct{}

func (Approve) Name() string { return "approve" }

func (Approve) Allowed(actor models.User) bool { return actor.Role == models.RoleAdmin }

func (Approve) Apply(sub models.Submission, _ models.User) (models.SubmissionPatch, error) {
	if sub.Status != models.StatusReviewing {
		return models.SubmissionPatch{}, invalid(sub, "approve")
	}
	return models.SubmissionPatch{Status: statusPtr(models.StatusCompleted)}, nil
}

// Reject sends a reviewed submission back to its editor. Notes replace
// any earlier revision notes; the assignment is kept.
type Reject struct {
	Notes string
}

func (Reject) Name() string { return "reject" }

func (Reject) Allowed(actor models.User) bool { return actor.Role == models.RoleAdmin }

func (c Reject) Apply(sub models.Submission, _ models.User) (models.SubmissionPatch, error) {
	notes := strings.TrimSpace(c.Notes)
	if notes == "" {
		return models.SubmissionPatch{}, fmt.Errorf("%w: revision notes are required", ErrValidation)
	}
	if sub.Status != models.StatusReviewing {
		return models.SubmissionPatch{}, invalid(sub, "reject")
	}
	return models.SubmissionPatch{
		Status:        statusPtr(models.StatusProcessing),
		RevisionNotes: strPtr(notes),
	}, nil
}

// SetQuote prices a quote-path submission. Payment stays quote_pending
// until checkout completes.
type SetQuote struct {
	Amount int64
}

func (SetQuote) Name() string { return "set_quote" }

func (SetQuote) Allowed(actor models.User) bool { return actor.Role == models.RoleAdmin }

func (c SetQuote) Apply(sub models.Submission, _ models.User) (models.SubmissionPatch, error) {
	if c.Amount < MinimumAmount {
		return models.SubmissionPatch{}, fmt.Errorf("%w: amount must be at least %d minor units", ErrValidation, MinimumAmount)
	}
	if sub.Status != models.StatusQuoteRequest || sub.PaymentStatus != models.PaymentQuotePending {
		return models.SubmissionPatch{}, invalid(sub, "quote")
	}
	amount := c.Amount
	return models.SubmissionPatch{QuotedAmount: &amount}, nil
}

// ConfirmPayment marks a submission paid once the provider confirms the
// checkout. Confirming an already paid submission is a no-op.
type ConfirmPayment struct {
	SessionID string
}

func (ConfirmPayment) Name() string { return "confirm_payment" }

func (ConfirmPayment) Allowed(actor models.User) bool {
	return actor.Role == models.RoleUser || actor.Role == models.RoleAdmin
}

func (c ConfirmPayment) Apply(sub models.Submission, actor models.User) (models.SubmissionPatch, error) {
	if actor.Role != models.RoleAdmin && actor.ID != sub.OwnerID {
		return models.SubmissionPatch{}, fmt.Errorf("%w: not the owner of this submission", ErrForbidden)
	}

	var patch models.SubmissionPatch
	switch sub.PaymentStatus {
	case models.PaymentPaid:
		return patch, nil
	case models.PaymentUnpaid:
		if sub.Status != models.StatusPending {
			return models.SubmissionPatch{}, invalid(sub, "confirm payment for")
		}
	case models.PaymentQuotePending:
		if sub.QuotedAmount == nil {
			return models.SubmissionPatch{}, ErrQuoteNotSet
		}
		if sub.Status != models.StatusQuoteRequest {
			return models.SubmissionPatch{}, invalid(sub, "confirm payment for")
		}
		patch.Status = statusPtr(models.StatusPending)
	default:
		return models.SubmissionPatch{}, fmt.Errorf("%w: unknown payment status %q", ErrInvalidTransition, sub.PaymentStatus)
	}

	patch.PaymentStatus = paymentPtr(models.PaymentPaid)
	if c.SessionID != "" {
		patch.StripeSessionID = strPtr(c.SessionID)
	}
	return patch, nil
}
