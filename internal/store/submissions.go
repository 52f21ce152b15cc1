package store

import (
	"context"
	"fmt"
	"sort"

	"staging-pro-backend/internal/models"
)

// Column names of the hosted submissions table. The table predates this
// service and uses camelCase identifiers.
const (
	colID               = "id"
	colOwnerID          = "ownerId"
	colOwnerEmail       = "ownerEmail"
	colPlan             = "plan"
	colFileName         = "fileName"
	colFileSize         = "fileSize"
	colDataURL          = "dataUrl"
	colReferenceImages  = "referenceImages"
	colResultDataURL    = "resultDataUrl"
	colResultAddURL     = "resultAddUrl"
	colResultRemoveURL  = "resultRemoveUrl"
	colInstructions     = "instructions"
	colRevisionNotes    = "revisionNotes"
	colStatus           = "status"
	colPaymentStatus    = "paymentStatus"
	colAssignedEditorID = "assignedEditorId"
	colQuotedAmount     = "quotedAmount"
	colStripeSessionID  = "stripeSessionId"
	colTimestamp        = "timestamp"
)

// SubmissionRepository maps submission records to models.Submission. It
// is the only place that knows the single result is stored twice, under
// resultAddUrl and the legacy resultDataUrl.
type SubmissionRepository struct {
	records RecordStore
}

func NewSubmissionRepository(records RecordStore) *SubmissionRepository {
	return &SubmissionRepository{records: records}
}

// List returns every submission, newest first.
func (r *SubmissionRepository) List(ctx context.Context) ([]models.Submission, error) {
	rows, err := r.records.FetchAll(ctx, Submissions)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", ClassifyError(Submissions, err))
	}
	return decodeSubmissions(rows), nil
}

func (r *SubmissionRepository) ListByOwner(ctx context.Context, ownerID string) ([]models.Submission, error) {
	rows, err := r.records.FetchWhere(ctx, Submissions, colOwnerID, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions by owner: %w", ClassifyError(Submissions, err))
	}
	return decodeSubmissions(rows), nil
}

func (r *SubmissionRepository) ListByAssignee(ctx context.Context, editorID string) ([]models.Submission, error) {
	rows, err := r.records.FetchWhere(ctx, Submissions, colAssignedEditorID, editorID)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions by editor: %w", ClassifyError(Submissions, err))
	}
	return decodeSubmissions(rows), nil
}

func (r *SubmissionRepository) Get(ctx context.Context, id string) (models.Submission, error) {
	rows, err := r.records.FetchWhere(ctx, Submissions, colID, id)
	if err != nil {
		return models.Submission{}, fmt.Errorf("failed to get submission: %w", ClassifyError(Submissions, err))
	}
	if len(rows) == 0 {
		return models.Submission{}, fmt.Errorf("submission %s: %w", id, ErrNotFound)
	}
	return decodeSubmission(rows[0]), nil
}

func (r *SubmissionRepository) Create(ctx context.Context, sub models.Submission) error {
	if err := r.records.Insert(ctx, Submissions, encodeSubmission(sub)); err != nil {
		return fmt.Errorf("failed to create submission: %w", ClassifyError(Submissions, err))
	}
	return nil
}

// Apply writes the patched columns only, so concurrent writers touching
// other columns of the same row are not overwritten.
func (r *SubmissionRepository) Apply(ctx context.Context, id string, patch models.SubmissionPatch) error {
	if patch.IsEmpty() {
		return nil
	}
	if err := r.records.Update(ctx, Submissions, id, encodePatch(patch)); err != nil {
		return fmt.Errorf("failed to update submission: %w", ClassifyError(Submissions, err))
	}
	return nil
}

func (r *SubmissionRepository) Delete(ctx context.Context, id string) error {
	if err := r.records.Delete(ctx, Submissions, id); err != nil {
		return fmt.Errorf("failed to delete submission: %w", ClassifyError(Submissions, err))
	}
	return nil
}

func decodeSubmissions(rows []Record) []models.Submission {
	subs := make([]models.Submission, 0, len(rows))
	for _, row := range rows {
		subs = append(subs, decodeSubmission(row))
	}
	sort.SliceStable(subs, func(i, j int) bool {
		return subs[i].Timestamp > subs[j].Timestamp
	})
	return subs
}

func decodeSubmission(r Record) models.Submission {
	sub := models.Submission{
		ID:               stringField(r, colID),
		OwnerID:          stringField(r, colOwnerID),
		OwnerEmail:       stringField(r, colOwnerEmail),
		Plan:             models.PlanType(stringField(r, colPlan)),
		FileName:         stringField(r, colFileName),
		DataURL:          stringField(r, colDataURL),
		ResultURL:        firstNonEmpty(stringField(r, colResultAddURL), stringField(r, colResultDataURL)),
		ResultRemoveURL:  stringField(r, colResultRemoveURL),
		Instructions:     stringField(r, colInstructions),
		RevisionNotes:    stringField(r, colRevisionNotes),
		Status:           models.Status(stringField(r, colStatus)),
		PaymentStatus:    models.PaymentStatus(stringField(r, colPaymentStatus)),
		AssignedEditorID: stringField(r, colAssignedEditorID),
		StripeSessionID:  stringField(r, colStripeSessionID),
	}
	if size, ok := int64Field(r, colFileSize); ok {
		sub.FileSize = size
	}
	if ts, ok := int64Field(r, colTimestamp); ok {
		sub.Timestamp = ts
	}
	if amount, ok := int64Field(r, colQuotedAmount); ok {
		sub.QuotedAmount = &amount
	}
	// Rows written before payment tracking existed have no payment status.
	if sub.PaymentStatus == "" {
		sub.PaymentStatus = models.PaymentUnpaid
	}
	for _, m := range decodeList(r[colReferenceImages]) {
		ref := Record(m)
		sub.ReferenceImages = append(sub.ReferenceImages, models.ReferenceImage{
			ID:          stringField(ref, "id"),
			URL:         firstNonEmpty(stringField(ref, "url"), stringField(ref, "dataUrl")),
			FileName:    stringField(ref, "fileName"),
			Description: stringField(ref, "description"),
		})
	}
	return sub
}

func encodeSubmission(s models.Submission) Record {
	refs := make([]map[string]any, 0, len(s.ReferenceImages))
	for _, ref := range s.ReferenceImages {
		refs = append(refs, map[string]any{
			"id":          ref.ID,
			"dataUrl":     ref.URL,
			"fileName":    ref.FileName,
			"description": ref.Description,
		})
	}
	rec := Record{
		colID:              s.ID,
		colOwnerID:         s.OwnerID,
		colPlan:            string(s.Plan),
		colFileName:        s.FileName,
		colFileSize:        s.FileSize,
		colDataURL:         s.DataURL,
		colReferenceImages: refs,
		colInstructions:    s.Instructions,
		colStatus:          string(s.Status),
		colPaymentStatus:   string(s.PaymentStatus),
		colTimestamp:       s.Timestamp,
	}
	if s.OwnerEmail != "" {
		rec[colOwnerEmail] = s.OwnerEmail
	}
	if s.ResultURL != "" {
		rec[colResultAddURL] = s.ResultURL
		rec[colResultDataURL] = s.ResultURL
	}
	if s.ResultRemoveURL != "" {
		rec[colResultRemoveURL] = s.ResultRemoveURL
	}
	if s.RevisionNotes != "" {
		rec[colRevisionNotes] = s.RevisionNotes
	}
	if s.AssignedEditorID != "" {
		rec[colAssignedEditorID] = s.AssignedEditorID
	}
	if s.QuotedAmount != nil {
		rec[colQuotedAmount] = *s.QuotedAmount
	}
	if s.StripeSessionID != "" {
		rec[colStripeSessionID] = s.StripeSessionID
	}
	return rec
}

func encodePatch(p models.SubmissionPatch) Record {
	rec := Record{}
	if p.Status != nil {
		rec[colStatus] = string(*p.Status)
	}
	if p.PaymentStatus != nil {
		rec[colPaymentStatus] = string(*p.PaymentStatus)
	}
	if p.ClearAssignment {
		rec[colAssignedEditorID] = nil
	} else if p.AssignedEditorID != nil {
		rec[colAssignedEditorID] = *p.AssignedEditorID
	}
	if p.ResultURL != nil {
		rec[colResultAddURL] = *p.ResultURL
		rec[colResultDataURL] = *p.ResultURL
	}
	if p.ResultRemoveURL != nil {
		rec[colResultRemoveURL] = *p.ResultRemoveURL
	}
	if p.RevisionNotes != nil {
		rec[colRevisionNotes] = *p.RevisionNotes
	}
	if p.QuotedAmount != nil {
		rec[colQuotedAmount] = *p.QuotedAmount
	}
	if p.StripeSessionID != nil {
		rec[colStripeSessionID] = *p.StripeSessionID
	}
	return rec
}
