package models

type PlanType string

const (
	PlanFurnitureRemove PlanType = "FURNITURE_REMOVE"
	PlanFurnitureAdd    PlanType = "FURNITURE_ADD"
	PlanFurnitureBoth   PlanType = "FURNITURE_BOTH"
	PlanFloorPlanCG     PlanType = "FLOOR_PLAN_CG"
)

type Status string

const (
	StatusPending      Status = "pending"
	StatusProcessing   Status = "processing"
	StatusReviewing    Status = "reviewing"
	StatusCompleted    Status = "completed"
	StatusQuoteRequest Status = "quote_request"
)

// Statuses lists every workflow state in pipeline order.
var Statuses = []Status{StatusQuoteRequest, StatusPending, StatusProcessing, StatusReviewing, StatusCompleted}

type PaymentStatus string

const (
	PaymentUnpaid       PaymentStatus = "unpaid"
	PaymentPaid         PaymentStatus = "paid"
	PaymentQuotePending PaymentStatus = "quote_pending"
)

type ReferenceImage struct {
	ID          string `json:"id"`
	URL         string `json:"url" validate:"required"`
	FileName    string `json:"fileName,omitempty"`
	Description string `json:"description"`
}

// Submission is one client order. ResultURL is the canonical single
// deliverable; the store adapter maps it onto the legacy column pair.
type Submission struct {
	ID               string
	OwnerID          string
	OwnerEmail       string
	Plan             PlanType
	FileName         string
	FileSize         int64
	DataURL          string
	ReferenceImages  []ReferenceImage
	ResultURL        string
	ResultRemoveURL  string
	Instructions     string
	RevisionNotes    string
	Status           Status
	PaymentStatus    PaymentStatus
	AssignedEditorID string
	QuotedAmount     *int64
	StripeSessionID  string
	Timestamp        int64
}

// IsAssigned reports whether an editor reference is present. The
// reference may still dangle; callers resolve it against the roster.
func (s *Submission) IsAssigned() bool {
	return s.AssignedEditorID != ""
}

// SubmissionPatch is a partial update. Nil fields are left untouched.
type SubmissionPatch struct {
	Status           *Status
	PaymentStatus    *PaymentStatus
	AssignedEditorID *string
	ClearAssignment  bool
	ResultURL        *string
	ResultRemoveURL  *string
	RevisionNotes    *string
	QuotedAmount     *int64
	StripeSessionID  *string
}

func (p SubmissionPatch) IsEmpty() bool {
	return p.Status == nil && p.PaymentStatus == nil && p.AssignedEditorID == nil &&
		!p.ClearAssignment && p.ResultURL == nil && p.ResultRemoveURL == nil &&
		p.RevisionNotes == nil && p.QuotedAmount == nil && p.StripeSessionID == nil
}

// ApplyTo returns a copy of s with the patch applied.
func (p SubmissionPatch) ApplyTo(s Submission) Submission {
	if p.Status != nil {
		s.Status = *p.Status
	}
	if p.PaymentStatus != nil {
		s.PaymentStatus = *p.PaymentStatus
	}
	if p.ClearAssignment {
		s.AssignedEditorID = ""
	} else if p.AssignedEditorID != nil {
		s.AssignedEditorID = *p.AssignedEditorID
	}
	if p.ResultURL != nil {
		s.ResultURL = *p.ResultURL
	}
	if p.ResultRemoveURL != nil {
		s.ResultRemoveURL = *p.ResultRemoveURL
	}
	if p.RevisionNotes != nil {
		s.RevisionNotes = *p.RevisionNotes
	}
	if p.QuotedAmount != nil {
		amount := *p.QuotedAmount
		s.QuotedAmount = &amount
	}
	if p.StripeSessionID != nil {
		s.StripeSessionID = *p.StripeSessionID
	}
	return s
}
