package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"staging-pro-backend/internal/lifecycle"
	"staging-pro-backend/internal/logger"
	"staging-pro-backend/internal/models"
	"staging-pro-backend/internal/services"
	"staging-pro-backend/internal/visibility"
)

type SubmissionReader interface {
	List(ctx context.Context) ([]models.Submission, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Submission, error)
	Get(ctx context.Context, id string) (models.Submission, error)
}

type EditorLister interface {
	List(ctx context.Context) ([]models.Editor, error)
}

type ThreadReader interface {
	List(ctx context.Context, submissionID string) ([]models.Message, error)
	Latest(ctx context.Context) (map[string]models.Message, error)
}

type SubmissionsHandler struct {
	engine      *lifecycle.Engine
	studio      *services.StudioService
	submissions SubmissionReader
	editors     EditorLister
	threads     ThreadReader
	filter      *visibility.Filter
}

func NewSubmissionsHandler(
	engine *lifecycle.Engine,
	studio *services.StudioService,
	submissions SubmissionReader,
	editors EditorLister,
	threads ThreadReader,
	filter *visibility.Filter,
) *SubmissionsHandler {
	return &SubmissionsHandler{
		engine:      engine,
		studio:      studio,
		submissions: submissions,
		editors:     editors,
		threads:     threads,
		filter:      filter,
	}
}

// roster is a degraded read: a failure yields an empty roster so every
// assignment shows as unassigned instead of failing the page.
func (h *SubmissionsHandler) roster(ctx context.Context) []models.Editor {
	editors, err := h.editors.List(ctx)
	if err != nil {
		logger.Warn(ctx, "editor roster unavailable", "error", err)
		return nil
	}
	return editors
}

// ListSubmissions godoc
// @Summary     List submissions
// @Description Returns the submissions visible to the caller. Clients see their own paid or quote orders, editors their assignments and admins every paid or quote order.
// @Tags        submissions
// @Produce     json
// @Security    Bearer
// @Param       status query string false "Status filter" Enums(pending, processing, reviewing, completed, quote_request)
// @Param       plan   query string false "Plan filter"
// @Param       mine   query bool   false "Only submissions assigned to the caller's editor record"
// @Param       editor query string false "Admin only: editor id or 'unassigned'"
// @Param       q      query string false "Free-text search"
// @Param       sort   query string false "Sort key" Enums(order_date, delivery_date)
// @Param       order  query string false "Sort direction" Enums(asc, desc)
// @Success     200 {object} models.SubmissionListResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     503 {object} models.ErrorResponse
// @Router      /submissions [get]
func (h *SubmissionsHandler) ListSubmissions(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	var (
		subs []models.Submission
		err  error
	)
	if user.Role == models.RoleUser {
		subs, err = h.submissions.ListByOwner(ctx, user.ID)
	} else {
		subs, err = h.submissions.List(ctx)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	latest, err := h.threads.Latest(ctx)
	if err != nil {
		logger.Warn(ctx, "message log unavailable, unread markers omitted", "error", err)
	}

	mine, _ := strconv.ParseBool(c.Query("mine"))
	query := visibility.Query{
		Status:       models.Status(c.Query("status")),
		Plan:         models.PlanType(c.Query("plan")),
		ShowOnlyMine: mine,
		EditorID:     c.Query("editor"),
		Search:       c.Query("q"),
		SortBy:       visibility.SortKey(c.Query("sort")),
		Ascending:    strings.EqualFold(c.Query("order"), "asc"),
	}

	entries := h.filter.Apply(subs, user, query, h.roster(ctx), latest)
	resp := models.SubmissionListResponse{
		Submissions: make([]models.SubmissionResponse, 0, len(entries)),
		Stats:       visibility.Stats(entries),
	}
	for _, e := range entries {
		resp.Submissions = append(resp.Submissions, toResponse(e))
	}
	c.JSON(http.StatusOK, resp)
}

// GetSubmission godoc
// @Summary     Get submission
// @Description Returns one submission. Owners may open their unpaid orders to finish checkout.
// @Tags        submissions
// @Produce     json
// @Security    Bearer
// @Param       id path string true "Submission ID"
// @Success     200 {object} models.SubmissionResponse
// @Failure     403 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /submissions/{id} [get]
func (h *SubmissionsHandler) GetSubmission(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	sub, err := h.submissions.Get(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if !visibility.CanView(sub, user) {
		respondError(c, fmt.Errorf("%w: cannot view %s", lifecycle.ErrForbidden, sub.ID))
		return
	}

	var latest *models.Message
	thread, err := h.threads.List(ctx, sub.ID)
	if err != nil {
		logger.Warn(ctx, "message log unavailable", "submission_id", sub.ID, "error", err)
	} else if len(thread) > 0 {
		latest = &thread[len(thread)-1]
	}

	c.JSON(http.StatusOK, toResponse(h.filter.Describe(sub, h.roster(ctx), latest)))
}

// CreateSubmission godoc
// @Summary     Submit an order
// @Description Uploads the source image and optional reference images, creates the order and opens a checkout session for fixed-price plans.
// @Description A checkout failure does not undo the order; it is reported in checkout_error.
// @Tags        submissions
// @Accept      multipart/form-data
// @Produce     json
// @Security    Bearer
// @Param       plan                   formData string true  "Plan id"
// @Param       image                  formData file   true  "Source image"
// @Param       references             formData file   false "Reference images (multiple files allowed)"
// @Param       reference_descriptions formData string false "One description per reference image (repeat the field)"
// @Param       instructions           formData string false "Instructions for the editor"
// @Success     201 {object} models.IntakeResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     403 {object} models.ErrorResponse
// @Router      /submissions [post]
func (h *SubmissionsHandler) CreateSubmission(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "failed to parse multipart form",
			Message: err.Error(),
		})
		return
	}

	files := form.File["image"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "no source image uploaded"})
		return
	}
	source, err := readUpload(files[0])
	if err != nil {
		respondError(c, err)
		return
	}

	descriptions := form.Value["reference_descriptions"]
	var refs []services.ReferenceUpload
	for i, fh := range form.File["references"] {
		upload, err := readUpload(fh)
		if err != nil {
			respondError(c, err)
			return
		}
		ref := services.ReferenceUpload{Upload: upload}
		if i < len(descriptions) {
			ref.Description = strings.TrimSpace(descriptions[i])
		}
		refs = append(refs, ref)
	}

	result, err := h.studio.Intake(c.Request.Context(), user, services.IntakeRequest{
		Plan:         models.PlanType(c.PostForm("plan")),
		Source:       source,
		References:   refs,
		Instructions: c.PostForm("instructions"),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	resp := models.IntakeResponse{
		Submission:    toResponse(h.filter.Describe(result.Submission, nil, nil)),
		CheckoutError: result.CheckoutError,
	}
	if result.Checkout != nil {
		resp.CheckoutURL = result.Checkout.RedirectURL
		resp.CheckoutSessionID = result.Checkout.ID
	}
	c.JSON(http.StatusCreated, resp)
}

// DeleteSubmission godoc
// @Summary     Delete submission
// @Description Removes a submission outright. Admin only.
// @Tags        submissions
// @Security    Bearer
// @Param       id path string true "Submission ID"
// @Success     204
// @Failure     403 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /submissions/{id} [delete]
func (h *SubmissionsHandler) DeleteSubmission(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	if err := h.engine.Delete(c.Request.Context(), user, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Assign godoc
// @Summary     Assign editor
// @Description Assigns a paid submission to an editor (pending or processing to processing). An empty editor_id unassigns a processing submission back to pending.
// @Tags        submissions
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       id      path string               true "Submission ID"
// @Param       request body models.AssignRequest true "Editor"
// @Success     200 {object} models.SubmissionResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     403 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /submissions/{id}/assign [post]
func (h *SubmissionsHandler) Assign(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var req models.AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	sub, err := h.engine.Assign(c.Request.Context(), user, c.Param("id"), req.EditorID)
	h.respond(c, sub, err)
}

// Deliver godoc
// @Summary     Upload deliverable
// @Description Uploads a finished image. FURNITURE_BOTH takes a remove and an add slot and moves to review once both are present.
// @Tags        submissions
// @Accept      multipart/form-data
// @Produce     json
// @Security    Bearer
// @Param       id    path     string true  "Submission ID"
// @Param       image formData file   true  "Deliverable image"
// @Param       slot  formData string false "Deliverable slot for two-part plans" Enums(remove, add)
// @Success     200 {object} models.SubmissionResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     403 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /submissions/{id}/deliverables [post]
func (h *SubmissionsHandler) Deliver(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	fh, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "no deliverable uploaded", Message: err.Error()})
		return
	}
	upload, err := readUpload(fh)
	if err != nil {
		respondError(c, err)
		return
	}
	slot := lifecycle.Slot(c.PostForm("slot"))
	sub, err := h.studio.Deliver(c.Request.Context(), user, c.Param("id"), slot, upload)
	h.respond(c, sub, err)
}

// Approve godoc
// @Summary     Approve delivery
// @Tags        submissions
// @Produce     json
// @Security    Bearer
// @Param       id path string true "Submission ID"
// @Success     200 {object} models.SubmissionResponse
// @Failure     403 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /submissions/{id}/approve [post]
func (h *SubmissionsHandler) Approve(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	sub, err := h.engine.Approve(c.Request.Context(), user, c.Param("id"))
	h.respond(c, sub, err)
}

// Reject godoc
// @Summary     Request revision
// @Description Sends a reviewing submission back to processing with revision notes.
// @Tags        submissions
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       id      path string               true "Submission ID"
// @Param       request body models.RejectRequest true "Revision notes"
// @Success     200 {object} models.SubmissionResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /submissions/{id}/reject [post]
func (h *SubmissionsHandler) Reject(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var req models.RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	sub, err := h.engine.Reject(c.Request.Context(), user, c.Param("id"), req.Notes)
	h.respond(c, sub, err)
}

// SetQuote godoc
// @Summary     Set quote
// @Description Prices a quote request. The amount is in minor units and must be at least 50.
// @Tags        submissions
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       id      path string              true "Submission ID"
// @Param       request body models.QuoteRequest true "Quoted amount"
// @Success     200 {object} models.SubmissionResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /submissions/{id}/quote [post]
func (h *SubmissionsHandler) SetQuote(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var req models.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	sub, err := h.engine.SetQuote(c.Request.Context(), user, c.Param("id"), req.Amount)
	h.respond(c, sub, err)
}

// Checkout godoc
// @Summary     Start checkout
// @Description Opens a hosted checkout session for an unpaid order or a priced quote.
// @Tags        payments
// @Produce     json
// @Security    Bearer
// @Param       id path string true "Submission ID"
// @Success     200 {object} models.CheckoutResponse
// @Failure     409 {object} models.ErrorResponse
// @Failure     422 {object} models.ErrorResponse
// @Failure     503 {object} models.ErrorResponse
// @Router      /submissions/{id}/checkout [post]
func (h *SubmissionsHandler) Checkout(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	session, err := h.studio.StartCheckout(c.Request.Context(), user, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.CheckoutResponse{URL: session.RedirectURL, SessionID: session.ID})
}

// ConfirmPayment godoc
// @Summary     Confirm payment
// @Description Called when the client returns from checkout. Unpaid orders become paid; paid quotes move back to pending.
// @Tags        payments
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       id      path string                       true "Submission ID"
// @Param       request body models.ConfirmPaymentRequest true "Checkout session"
// @Success     200 {object} models.SubmissionResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     403 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /submissions/{id}/payment/confirm [post]
func (h *SubmissionsHandler) ConfirmPayment(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var req models.ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	sub, err := h.studio.ConfirmPayment(c.Request.Context(), user, c.Param("id"), req.SessionID)
	h.respond(c, sub, err)
}

func (h *SubmissionsHandler) respond(c *gin.Context, sub models.Submission, err error) {
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResponse(h.filter.Describe(sub, h.roster(c.Request.Context()), nil)))
}

func toResponse(e visibility.Entry) models.SubmissionResponse {
	return models.NewSubmissionResponse(e.Submission, e.EstimatedDelivery, e.EditorName, e.HasUnread)
}
