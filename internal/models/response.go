package models

import "time"

type SubmissionResponse struct {
	ID                string           `json:"id"`
	OwnerID           string           `json:"owner_id"`
	OwnerEmail        string           `json:"owner_email,omitempty"`
	Plan              PlanType         `json:"plan"`
	FileName          string           `json:"file_name"`
	FileSize          int64            `json:"file_size"`
	DataURL           string           `json:"data_url"`
	ReferenceImages   []ReferenceImage `json:"reference_images"`
	ResultURL         string           `json:"result_url,omitempty"`
	ResultRemoveURL   string           `json:"result_remove_url,omitempty"`
	Instructions      string           `json:"instructions,omitempty"`
	RevisionNotes     string           `json:"revision_notes,omitempty"`
	Status            Status           `json:"status"`
	PaymentStatus     PaymentStatus    `json:"payment_status"`
	AssignedEditorID  string           `json:"assigned_editor_id,omitempty"`
	EditorName        string           `json:"editor_name,omitempty"`
	QuotedAmount      *int64           `json:"quoted_amount,omitempty"`
	StripeSessionID   string           `json:"stripe_session_id,omitempty"`
	Timestamp         int64            `json:"timestamp"`
	EstimatedDelivery time.Time        `json:"estimated_delivery"`
	HasUnread         bool             `json:"has_unread"`
}

func NewSubmissionResponse(sub Submission, estimatedDelivery time.Time, editorName string, hasUnread bool) SubmissionResponse {
	refs := sub.ReferenceImages
	if refs == nil {
		refs = []ReferenceImage{}
	}
	return SubmissionResponse{
		ID:                sub.ID,
		OwnerID:           sub.OwnerID,
		OwnerEmail:        sub.OwnerEmail,
		Plan:              sub.Plan,
		FileName:          sub.FileName,
		FileSize:          sub.FileSize,
		DataURL:           sub.DataURL,
		ReferenceImages:   refs,
		ResultURL:         sub.ResultURL,
		ResultRemoveURL:   sub.ResultRemoveURL,
		Instructions:      sub.Instructions,
		RevisionNotes:     sub.RevisionNotes,
		Status:            sub.Status,
		PaymentStatus:     sub.PaymentStatus,
		AssignedEditorID:  sub.AssignedEditorID,
		EditorName:        editorName,
		QuotedAmount:      sub.QuotedAmount,
		StripeSessionID:   sub.StripeSessionID,
		Timestamp:         sub.Timestamp,
		EstimatedDelivery: estimatedDelivery,
		HasUnread:         hasUnread,
	}
}

type SubmissionListResponse struct {
	Submissions []SubmissionResponse `json:"submissions"`
	Stats       map[Status]int       `json:"stats"`
}

type IntakeResponse struct {
	Submission        SubmissionResponse `json:"submission"`
	CheckoutURL       string             `json:"checkout_url,omitempty"`
	CheckoutSessionID string             `json:"checkout_session_id,omitempty"`
	CheckoutError     string             `json:"checkout_error,omitempty"`
}

type CheckoutResponse struct {
	URL       string `json:"url"`
	SessionID string `json:"session_id"`
}

type PlansResponse struct {
	Plans []Plan `json:"plans"`
}

type MessagesResponse struct {
	Messages []Message `json:"messages"`
}

type EditorsResponse struct {
	Editors []Editor `json:"editors"`
}

type ArchiveResponse struct {
	Projects []ArchiveProject `json:"projects"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
