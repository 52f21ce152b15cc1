package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"staging-pro-backend/internal/chat"
	"staging-pro-backend/internal/lifecycle"
	"staging-pro-backend/internal/logger"
	"staging-pro-backend/internal/models"
	"staging-pro-backend/internal/store"
	"staging-pro-backend/internal/visibility"
)

type MessageService interface {
	Post(ctx context.Context, actor models.User, submissionID, content string) (models.Message, error)
	List(ctx context.Context, submissionID string) ([]models.Message, error)
	Watch(ctx context.Context, submissionID string, interval time.Duration) <-chan chat.Update
}

type SubmissionGetter interface {
	Get(ctx context.Context, id string) (models.Submission, error)
}

type MessagesHandler struct {
	threads      MessageService
	submissions  SubmissionGetter
	pollInterval time.Duration
}

func NewMessagesHandler(threads MessageService, submissions SubmissionGetter, pollInterval time.Duration) *MessagesHandler {
	if pollInterval <= 0 {
		pollInterval = 3 * time.Second
	}
	return &MessagesHandler{threads: threads, submissions: submissions, pollInterval: pollInterval}
}

// authorize loads the submission and checks the caller may see its thread.
func (h *MessagesHandler) authorize(c *gin.Context) (models.User, string, bool) {
	user, ok := currentUser(c)
	if !ok {
		return models.User{}, "", false
	}
	sub, err := h.submissions.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return models.User{}, "", false
	}
	if !visibility.CanView(sub, user) {
		respondError(c, lifecycle.ErrForbidden)
		return models.User{}, "", false
	}
	return user, sub.ID, true
}

// ListMessages godoc
// @Summary     List messages
// @Description Returns the chat thread of a submission, oldest first.
// @Tags        messages
// @Produce     json
// @Security    Bearer
// @Param       id path string true "Submission ID"
// @Success     200 {object} models.MessagesResponse
// @Failure     403 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /submissions/{id}/messages [get]
func (h *MessagesHandler) ListMessages(c *gin.Context) {
	_, id, ok := h.authorize(c)
	if !ok {
		return
	}
	msgs, err := h.threads.List(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.MessagesResponse{Messages: msgs})
}

// PostMessage godoc
// @Summary     Post message
// @Tags        messages
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       id      path string                     true "Submission ID"
// @Param       request body models.PostMessageRequest  true "Message"
// @Success     201 {object} models.Message
// @Failure     400 {object} models.ErrorResponse
// @Failure     403 {object} models.ErrorResponse
// @Router      /submissions/{id}/messages [post]
func (h *MessagesHandler) PostMessage(c *gin.Context) {
	user, id, ok := h.authorize(c)
	if !ok {
		return
	}
	var req models.PostMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	msg, err := h.threads.Post(c.Request.Context(), user, id, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

// StreamMessages godoc
// @Summary     Stream messages
// @Description Server-sent events. A "messages" event carries the whole thread each time it changes; an "error" event reports a failed poll and the stream keeps going.
// @Tags        messages
// @Produce     text/event-stream
// @Security    Bearer
// @Param       id path string true "Submission ID"
// @Success     200 {object} models.MessagesResponse
// @Failure     403 {object} models.ErrorResponse
// @Router      /submissions/{id}/messages/stream [get]
func (h *MessagesHandler) StreamMessages(c *gin.Context) {
	_, id, ok := h.authorize(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	updates := h.threads.Watch(ctx, id, h.pollInterval)

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Stream(func(w io.Writer) bool {
		u, open := <-updates
		if !open {
			return false
		}
		if u.Err != nil {
			logger.Warn(ctx, "message poll failed", "submission_id", id, "error", u.Err)
			c.SSEvent("error", models.ErrorResponse{Error: pollErrorLabel(u.Err), Message: u.Err.Error()})
			return true
		}
		c.SSEvent("messages", models.MessagesResponse{Messages: u.Messages})
		return true
	})
}

func pollErrorLabel(err error) string {
	var drift *store.SchemaDriftError
	if errors.As(err, &drift) {
		return "schema out of date"
	}
	return "failed to load messages"
}
