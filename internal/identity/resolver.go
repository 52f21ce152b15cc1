package identity

import (
	"context"

	"staging-pro-backend/internal/logger"
	"staging-pro-backend/internal/models"
)

// Roster lists the editors known to the studio.
type Roster interface {
	List(ctx context.Context) ([]models.Editor, error)
}

// Resolver derives a principal's role from the admin allow-list and the
// editor roster.
type Resolver struct {
	admins AllowList
	roster Roster
}

func NewResolver(admins AllowList, roster Roster) *Resolver {
	return &Resolver{admins: admins, roster: roster}
}

// Resolve never fails. When the roster cannot be read the principal is
// resolved against the allow-list alone.
func (r *Resolver) Resolve(ctx context.Context, principalID, rawEmail string) models.User {
	email := NormalizeEmail(rawEmail)
	user := models.User{ID: principalID, Email: email, Role: models.RoleUser}

	if r.admins.Contains(email) {
		user.Role = models.RoleAdmin
	}
	if email == "" || r.roster == nil {
		return user
	}

	editors, err := r.roster.List(ctx)
	if err != nil {
		logger.Warn(ctx, "editor roster unavailable, resolving without it", "error", err)
		return user
	}

	for _, e := range editors {
		if NormalizeEmail(e.Email) != email {
			continue
		}
		user.EditorRecordID = e.ID
		if user.Role != models.RoleAdmin {
			user.Role = models.RoleEditor
		}
		break
	}
	return user
}
