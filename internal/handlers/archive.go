package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"staging-pro-backend/internal/models"
)

type ArchiveRepository interface {
	List(ctx context.Context) ([]models.ArchiveProject, error)
	Create(ctx context.Context, p models.ArchiveProject) error
	Delete(ctx context.Context, id string) error
}

type ArchiveHandler struct {
	projects ArchiveRepository
	now      func() time.Time
}

func NewArchiveHandler(projects ArchiveRepository) *ArchiveHandler {
	return &ArchiveHandler{projects: projects, now: time.Now}
}

// ListArchive godoc
// @Summary     List showcase projects
// @Description Public before/after gallery, newest first.
// @Tags        archive
// @Produce     json
// @Success     200 {object} models.ArchiveResponse
// @Router      /archive [get]
func (h *ArchiveHandler) ListArchive(c *gin.Context) {
	projects, err := h.projects.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.ArchiveResponse{Projects: projects})
}

// CreateArchive godoc
// @Summary     Add showcase project
// @Tags        archive
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.CreateArchiveRequest true "Project"
// @Success     201 {object} models.ArchiveProject
// @Failure     400 {object} models.ErrorResponse
// @Failure     403 {object} models.ErrorResponse
// @Router      /archive [post]
func (h *ArchiveHandler) CreateArchive(c *gin.Context) {
	var req models.CreateArchiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	project := models.ArchiveProject{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(req.Title),
		Category:    req.Category,
		BeforeURL:   req.BeforeURL,
		AfterURL:    req.AfterURL,
		Description: req.Description,
		Timestamp:   h.now().UnixMilli(),
	}
	if err := h.projects.Create(c.Request.Context(), project); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, project)
}

// DeleteArchive godoc
// @Summary     Remove showcase project
// @Tags        archive
// @Security    Bearer
// @Param       id path string true "Project ID"
// @Success     204
// @Failure     403 {object} models.ErrorResponse
// @Router      /archive/{id} [delete]
func (h *ArchiveHandler) DeleteArchive(c *gin.Context) {
	if err := h.projects.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
