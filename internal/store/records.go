package store

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"staging-pro-backend/internal/models"
)

// EditorRepository reads and writes the editor roster.
type EditorRepository struct {
	records RecordStore
}

func NewEditorRepository(records RecordStore) *EditorRepository {
	return &EditorRepository{records: records}
}

// List returns the roster ordered by name.
func (r *EditorRepository) List(ctx context.Context) ([]models.Editor, error) {
	rows, err := r.records.FetchAll(ctx, Editors)
	if err != nil {
		return nil, fmt.Errorf("failed to list editors: %w", ClassifyError(Editors, err))
	}
	editors := make([]models.Editor, 0, len(rows))
	for _, row := range rows {
		editors = append(editors, decodeEditor(row))
	}
	sort.SliceStable(editors, func(i, j int) bool {
		return strings.ToLower(editors[i].Name) < strings.ToLower(editors[j].Name)
	})
	return editors, nil
}

func (r *EditorRepository) Get(ctx context.Context, id string) (models.Editor, error) {
	rows, err := r.records.FetchWhere(ctx, Editors, "id", id)
	if err != nil {
		return models.Editor{}, fmt.Errorf("failed to get editor: %w", ClassifyError(Editors, err))
	}
	if len(rows) == 0 {
		return models.Editor{}, fmt.Errorf("editor %s: %w", id, ErrNotFound)
	}
	return decodeEditor(rows[0]), nil
}

func (r *EditorRepository) Create(ctx context.Context, e models.Editor) error {
	rec := Record{
		"id":        e.ID,
		"name":      e.Name,
		"email":     e.Email,
		"specialty": e.Specialty,
	}
	if err := r.records.Insert(ctx, Editors, rec); err != nil {
		return fmt.Errorf("failed to create editor: %w", ClassifyError(Editors, err))
	}
	return nil
}

func (r *EditorRepository) Delete(ctx context.Context, id string) error {
	if err := r.records.Delete(ctx, Editors, id); err != nil {
		return fmt.Errorf("failed to delete editor: %w", ClassifyError(Editors, err))
	}
	return nil
}

func decodeEditor(r Record) models.Editor {
	return models.Editor{
		ID:        stringField(r, "id"),
		Name:      stringField(r, "name"),
		Email:     stringField(r, "email"),
		Specialty: stringField(r, "specialty"),
	}
}

// PlanRepository reads the hosted plans table.
type PlanRepository struct {
	records RecordStore
}

func NewPlanRepository(records RecordStore) *PlanRepository {
	return &PlanRepository{records: records}
}

func (r *PlanRepository) List(ctx context.Context) ([]models.Plan, error) {
	rows, err := r.records.FetchAll(ctx, Plans)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", ClassifyError(Plans, err))
	}
	plans := make([]models.Plan, 0, len(rows))
	for _, row := range rows {
		p := models.Plan{
			ID:          models.PlanType(stringField(row, "id")),
			Title:       stringField(row, "title"),
			Description: stringField(row, "description"),
			Price:       stringField(row, "price"),
			Number:      stringField(row, "number"),
		}
		if amount, ok := int64Field(row, "amount"); ok {
			p.Amount = amount
		}
		if quote, ok := row["quote_based"].(bool); ok {
			p.QuoteBased = quote
		}
		plans = append(plans, p)
	}
	sort.SliceStable(plans, func(i, j int) bool {
		return plans[i].Number < plans[j].Number
	})
	return plans, nil
}

// MessageRepository stores chat messages. Its columns are snake_case.
type MessageRepository struct {
	records RecordStore
}

func NewMessageRepository(records RecordStore) *MessageRepository {
	return &MessageRepository{records: records}
}

// ListBySubmission returns the thread of one submission, oldest first.
func (r *MessageRepository) ListBySubmission(ctx context.Context, submissionID string) ([]models.Message, error) {
	rows, err := r.records.FetchWhere(ctx, Messages, "submission_id", submissionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", ClassifyError(Messages, err))
	}
	return decodeMessages(rows), nil
}

// List returns every message of every submission, oldest first.
func (r *MessageRepository) List(ctx context.Context) ([]models.Message, error) {
	rows, err := r.records.FetchAll(ctx, Messages)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", ClassifyError(Messages, err))
	}
	return decodeMessages(rows), nil
}

func decodeMessages(rows []Record) []models.Message {
	msgs := make([]models.Message, 0, len(rows))
	for _, row := range rows {
		m := models.Message{
			ID:           stringField(row, "id"),
			SubmissionID: stringField(row, "submission_id"),
			SenderID:     stringField(row, "sender_id"),
			SenderName:   stringField(row, "sender_name"),
			SenderRole:   models.Role(stringField(row, "sender_role")),
			Content:      stringField(row, "content"),
		}
		if ts, ok := int64Field(row, "timestamp"); ok {
			m.Timestamp = ts
		}
		msgs = append(msgs, m)
	}
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].Timestamp < msgs[j].Timestamp
	})
	return msgs
}

func (r *MessageRepository) Create(ctx context.Context, m models.Message) error {
	rec := Record{
		"id":            m.ID,
		"submission_id": m.SubmissionID,
		"sender_id":     m.SenderID,
		"sender_name":   m.SenderName,
		"sender_role":   string(m.SenderRole),
		"content":       m.Content,
		"timestamp":     m.Timestamp,
	}
	if err := r.records.Insert(ctx, Messages, rec); err != nil {
		return fmt.Errorf("failed to create message: %w", ClassifyError(Messages, err))
	}
	return nil
}

// ArchiveRepository manages the public before/after showcase.
type ArchiveRepository struct {
	records RecordStore
}

func NewArchiveRepository(records RecordStore) *ArchiveRepository {
	return &ArchiveRepository{records: records}
}

// List returns showcase projects, newest first.
func (r *ArchiveRepository) List(ctx context.Context) ([]models.ArchiveProject, error) {
	rows, err := r.records.FetchAll(ctx, ArchiveProjects)
	if err != nil {
		return nil, fmt.Errorf("failed to list archive: %w", ClassifyError(ArchiveProjects, err))
	}
	projects := make([]models.ArchiveProject, 0, len(rows))
	for _, row := range rows {
		p := models.ArchiveProject{
			ID:          stringField(row, "id"),
			Title:       stringField(row, "title"),
			Category:    stringField(row, "category"),
			BeforeURL:   stringField(row, "before_url"),
			AfterURL:    stringField(row, "after_url"),
			Description: stringField(row, "description"),
		}
		if ts, ok := int64Field(row, "timestamp"); ok {
			p.Timestamp = ts
		}
		projects = append(projects, p)
	}
	sort.SliceStable(projects, func(i, j int) bool {
		return projects[i].Timestamp > projects[j].Timestamp
	})
	return projects, nil
}

func (r *ArchiveRepository) Create(ctx context.Context, p models.ArchiveProject) error {
	rec := Record{
		"id":          p.ID,
		"title":       p.Title,
		"category":    p.Category,
		"before_url":  p.BeforeURL,
		"after_url":   p.AfterURL,
		"description": p.Description,
		"timestamp":   p.Timestamp,
	}
	if err := r.records.Insert(ctx, ArchiveProjects, rec); err != nil {
		return fmt.Errorf("failed to create archive project: %w", ClassifyError(ArchiveProjects, err))
	}
	return nil
}

func (r *ArchiveRepository) Delete(ctx context.Context, id string) error {
	if err := r.records.Delete(ctx, ArchiveProjects, id); err != nil {
		return fmt.Errorf("failed to delete archive project: %w", ClassifyError(ArchiveProjects, err))
	}
	return nil
}
