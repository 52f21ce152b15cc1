package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"staging-pro-backend/internal/lifecycle"
	"staging-pro-backend/internal/logger"
	"staging-pro-backend/internal/models"
)

// MaxContentLength bounds a single message body in bytes.
const MaxContentLength = 4000

type MessageStore interface {
	ListBySubmission(ctx context.Context, submissionID string) ([]models.Message, error)
	List(ctx context.Context) ([]models.Message, error)
	Create(ctx context.Context, m models.Message) error
}

// Service is the per-submission message log. Messages are only ever
// appended.
type Service struct {
	messages MessageStore
	now      func() time.Time
}

func NewService(messages MessageStore) *Service {
	return &Service{messages: messages, now: time.Now}
}

// SetClock replaces the time source used for message timestamps.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Service) Post(ctx context.Context, actor models.User, submissionID, content string) (models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return models.Message{}, fmt.Errorf("%w: message is empty", lifecycle.ErrValidation)
	}
	if len(content) > MaxContentLength {
		return models.Message{}, fmt.Errorf("%w: message exceeds %d bytes", lifecycle.ErrValidation, MaxContentLength)
	}

	msg := models.Message{
		ID:           uuid.NewString(),
		SubmissionID: submissionID,
		SenderID:     actor.ID,
		SenderName:   SenderName(actor.Email),
		SenderRole:   actor.Role,
		Content:      content,
		Timestamp:    s.now().UnixMilli(),
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		logger.Error(ctx, "failed to post message", "submission_id", submissionID, "error", err)
		return models.Message{}, err
	}
	return msg, nil
}

// List returns the thread oldest first.
func (s *Service) List(ctx context.Context, submissionID string) ([]models.Message, error) {
	return s.messages.ListBySubmission(ctx, submissionID)
}

// Latest maps every submission with messages to its newest message.
func (s *Service) Latest(ctx context.Context) (map[string]models.Message, error) {
	msgs, err := s.messages.List(ctx)
	if err != nil {
		return nil, err
	}
	latest := make(map[string]models.Message)
	for _, m := range msgs {
		if cur, ok := latest[m.SubmissionID]; !ok || m.Timestamp >= cur.Timestamp {
			latest[m.SubmissionID] = m
		}
	}
	return latest, nil
}

// HasUnread reports whether the newest message in msgs came from a client.
func HasUnread(msgs []models.Message) bool {
	if len(msgs) == 0 {
		return false
	}
	newest := msgs[0]
	for _, m := range msgs[1:] {
		if m.Timestamp >= newest.Timestamp {
			newest = m
		}
	}
	return newest.SenderRole == models.RoleUser
}

// SenderName is the local part of the sender's e-mail.
func SenderName(email string) string {
	local, _, _ := strings.Cut(email, "@")
	if local == "" {
		return "Unknown"
	}
	return local
}
