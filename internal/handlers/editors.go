package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"staging-pro-backend/internal/identity"
	"staging-pro-backend/internal/logger"
	"staging-pro-backend/internal/models"
)

type EditorRepository interface {
	List(ctx context.Context) ([]models.Editor, error)
	Create(ctx context.Context, e models.Editor) error
	Delete(ctx context.Context, id string) error
}

type EditorsHandler struct {
	editors EditorRepository
}

func NewEditorsHandler(editors EditorRepository) *EditorsHandler {
	return &EditorsHandler{editors: editors}
}

// ListEditors godoc
// @Summary     List editors
// @Description Returns the editor roster ordered by name. Staff only.
// @Tags        editors
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.EditorsResponse
// @Failure     403 {object} models.ErrorResponse
// @Router      /editors [get]
func (h *EditorsHandler) ListEditors(c *gin.Context) {
	editors, err := h.editors.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.EditorsResponse{Editors: editors})
}

// CreateEditor godoc
// @Summary     Add editor
// @Description Adds an editor to the roster. The e-mail is what links a signed-in principal to the record. Admin only.
// @Tags        editors
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.CreateEditorRequest true "Editor"
// @Success     201 {object} models.Editor
// @Failure     400 {object} models.ErrorResponse
// @Failure     403 {object} models.ErrorResponse
// @Router      /editors [post]
func (h *EditorsHandler) CreateEditor(c *gin.Context) {
	var req models.CreateEditorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	editor := models.Editor{
		ID:        "ed_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12],
		Name:      strings.TrimSpace(req.Name),
		Email:     identity.NormalizeEmail(req.Email),
		Specialty: strings.TrimSpace(req.Specialty),
	}
	if err := h.editors.Create(c.Request.Context(), editor); err != nil {
		respondError(c, err)
		return
	}
	logger.Info(c.Request.Context(), "editor added", "editor_id", editor.ID)
	c.JSON(http.StatusCreated, editor)
}

// DeleteEditor godoc
// @Summary     Remove editor
// @Description Removes an editor. Submissions still pointing at the record show as unassigned. Admin only.
// @Tags        editors
// @Security    Bearer
// @Param       id path string true "Editor ID"
// @Success     204
// @Failure     403 {object} models.ErrorResponse
// @Router      /editors/{id} [delete]
func (h *EditorsHandler) DeleteEditor(c *gin.Context) {
	if err := h.editors.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
