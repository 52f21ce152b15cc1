package identity_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staging-pro-backend/internal/identity"
	"staging-pro-backend/internal/models"
)

type fakeRoster struct {
	editors []models.Editor
	err     error
}

func (f fakeRoster) List(context.Context) ([]models.Editor, error) {
	return f.editors, f.err
}

func TestNormalizeEmail(t *testing.T) {
	cases := map[string]string{
		"  Boss@Studio.COM ":          "boss@studio.com",
		"bo ss@studio.com":            "boss@studio.com",
		"boss@studio.com\u200b":       "boss@studio.com",
		"\ufeffboss@studio.com":       "boss@studio.com",
		"boss@\tstudio.com\r\n":       "boss@studio.com",
		"BOSS\u0000@STUDIO.COM":       "boss@studio.com",
		"":                            "",
		"\u00c9DITEUR@Studio.com":     "\u00e9diteur@studio.com",
		"mixed\u00a0space@studio.com": "mixedspace@studio.com",
	}
	for in, want := range cases {
		assert.Equal(t, want, identity.NormalizeEmail(in), "input %q", in)
	}
}

func TestNormalizeEmail_Idempotent(t *testing.T) {
	inputs := []string{" A@B.c ", "x\u200d@y.z", "\u00dcser@Example.ORG", "\t\n", "plain@example.com"}
	for _, in := range inputs {
		once := identity.NormalizeEmail(in)
		assert.Equal(t, once, identity.NormalizeEmail(once), "input %q", in)
	}
}

func TestAllowList_NormalizesBothSides(t *testing.T) {
	admins := identity.NewAllowList([]string{" Boss@Studio.com", "", "  "})

	assert.Len(t, admins, 1)
	assert.True(t, admins.Contains("boss@studio.com"))
	assert.True(t, admins.Contains("BOSS@studio.com\u200b"))
	assert.False(t, admins.Contains("other@studio.com"))
	assert.False(t, admins.Contains(""))
}

func TestResolve_AdminOnRosterKeepsAdminRole(t *testing.T) {
	roster := fakeRoster{editors: []models.Editor{{ID: "ed_1", Name: "Boss", Email: " BOSS@studio.com"}}}
	r := identity.NewResolver(identity.NewAllowList([]string{"boss@studio.com"}), roster)

	user := r.Resolve(context.Background(), "uid-1", "Boss@Studio.com ")

	assert.Equal(t, models.RoleAdmin, user.Role)
	assert.Equal(t, "ed_1", user.EditorRecordID)
	assert.Equal(t, "boss@studio.com", user.Email)
	assert.Equal(t, "uid-1", user.ID)
}

func TestResolve_RosterMemberIsEditor(t *testing.T) {
	roster := fakeRoster{editors: []models.Editor{
		{ID: "ed_1", Email: "a@studio.com"},
		{ID: "ed_2", Email: "Editor@Studio.com\u200b"},
	}}
	r := identity.NewResolver(identity.NewAllowList(nil), roster)

	user := r.Resolve(context.Background(), "uid-2", "editor@studio.com")

	assert.Equal(t, models.RoleEditor, user.Role)
	assert.Equal(t, "ed_2", user.EditorRecordID)
}

func TestResolve_UnknownIsUser(t *testing.T) {
	r := identity.NewResolver(identity.NewAllowList([]string{"boss@studio.com"}), fakeRoster{})

	user := r.Resolve(context.Background(), "uid-3", "client@example.com")

	assert.Equal(t, models.RoleUser, user.Role)
	assert.Empty(t, user.EditorRecordID)
}

func TestResolve_RosterFailureDegrades(t *testing.T) {
	roster := fakeRoster{err: errors.New("boom")}
	r := identity.NewResolver(identity.NewAllowList([]string{"boss@studio.com"}), roster)

	admin := r.Resolve(context.Background(), "uid-1", "boss@studio.com")
	assert.Equal(t, models.RoleAdmin, admin.Role)

	editor := r.Resolve(context.Background(), "uid-2", "editor@studio.com")
	assert.Equal(t, models.RoleUser, editor.Role)
}

type gatedResolver struct {
	started chan struct{}
	release chan struct{}
	calls   int
}

func (g *gatedResolver) Resolve(_ context.Context, principalID, rawEmail string) models.User {
	g.calls++
	if g.calls == 1 {
		close(g.started)
		<-g.release
		return models.User{ID: principalID, Email: rawEmail, Role: models.RoleUser}
	}
	return models.User{ID: principalID, Email: rawEmail, Role: models.RoleEditor}
}

func TestTracker_StaleResolutionDiscarded(t *testing.T) {
	g := &gatedResolver{started: make(chan struct{}), release: make(chan struct{})}
	tracker := identity.NewTracker(g)

	type result struct {
		user    models.User
		current bool
	}
	first := make(chan result, 1)
	go func() {
		u, ok := tracker.Refresh(context.Background(), "uid", "old@studio.com")
		first <- result{u, ok}
	}()

	<-g.started
	newer, ok := tracker.Refresh(context.Background(), "uid", "new@studio.com")
	require.True(t, ok)
	assert.Equal(t, models.RoleEditor, newer.Role)

	close(g.release)
	stale := <-first

	assert.False(t, stale.current)
	assert.Equal(t, newer, stale.user)

	committed, ok := tracker.Current("uid")
	require.True(t, ok)
	assert.Equal(t, "new@studio.com", committed.Email)
}

func TestTracker_Forget(t *testing.T) {
	r := identity.NewResolver(identity.NewAllowList([]string{"boss@studio.com"}), fakeRoster{})
	tracker := identity.NewTracker(r)

	_, ok := tracker.Refresh(context.Background(), "uid", "boss@studio.com")
	require.True(t, ok)

	tracker.Forget("uid")

	_, ok = tracker.Current("uid")
	assert.False(t, ok)
}
