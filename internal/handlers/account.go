package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"staging-pro-backend/internal/models"
)

type PlanLister interface {
	List() []models.Plan
}

// SessionTracker drops a principal's cached identity.
type SessionTracker interface {
	Forget(principalID string)
}

type AccountHandler struct {
	plans    PlanLister
	sessions SessionTracker
}

func NewAccountHandler(plans PlanLister, sessions SessionTracker) *AccountHandler {
	return &AccountHandler{plans: plans, sessions: sessions}
}

// Me godoc
// @Summary     Current user
// @Description Returns the authenticated principal with the role derived from the admin allow-list and the editor roster.
// @Tags        account
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.User
// @Failure     401 {object} models.ErrorResponse
// @Router      /me [get]
func (h *AccountHandler) Me(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, user)
}

// SignOut godoc
// @Summary     Sign out
// @Description Drops the cached role resolution for the caller. The next request resolves the role again.
// @Tags        account
// @Security    Bearer
// @Success     204
// @Failure     401 {object} models.ErrorResponse
// @Router      /signout [post]
func (h *AccountHandler) SignOut(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	h.sessions.Forget(user.ID)
	c.Status(http.StatusNoContent)
}

// Plans godoc
// @Summary     List plans
// @Description Returns the plan catalog ordered by plan number. Quote-based plans have no fixed amount.
// @Tags        account
// @Produce     json
// @Success     200 {object} models.PlansResponse
// @Router      /plans [get]
func (h *AccountHandler) Plans(c *gin.Context) {
	c.JSON(http.StatusOK, models.PlansResponse{Plans: h.plans.List()})
}
