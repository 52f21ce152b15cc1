package catalog_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staging-pro-backend/internal/catalog"
	"staging-pro-backend/internal/models"
)

type fakeSource struct {
	plans []models.Plan
	err   error
}

func (f *fakeSource) List(context.Context) ([]models.Plan, error) {
	return f.plans, f.err
}

func newDefaultCatalog(t *testing.T, src catalog.Source) *catalog.Catalog {
	t.Helper()
	defaults, err := catalog.Defaults()
	require.NoError(t, err)
	return catalog.New(src, defaults)
}

func TestDefaults(t *testing.T) {
	c := newDefaultCatalog(t, nil)

	plans := c.List()
	require.Len(t, plans, 4)
	assert.Equal(t, models.PlanFurnitureRemove, plans[0].ID)
	assert.Equal(t, models.PlanFloorPlanCG, plans[3].ID)

	both, ok := c.Get(models.PlanFurnitureBoth)
	require.True(t, ok)
	assert.Equal(t, int64(6000), both.Amount)
	assert.Equal(t, "$60", both.Price)

	assert.True(t, c.IsQuotePlan(models.PlanFloorPlanCG))
	assert.False(t, c.IsQuotePlan(models.PlanFurnitureAdd))
	assert.False(t, c.IsQuotePlan("UNKNOWN"))
}

func TestRefresh_ReadFailureKeepsCurrent(t *testing.T) {
	c := newDefaultCatalog(t, &fakeSource{err: errors.New("PGRST205")})

	assert.Error(t, c.Refresh(context.Background()))
	assert.Len(t, c.List(), 4)
}

func TestRefresh_EmptyTableKeepsCurrent(t *testing.T) {
	c := newDefaultCatalog(t, &fakeSource{})

	assert.NoError(t, c.Refresh(context.Background()))
	assert.Len(t, c.List(), 4)
}

func TestRefresh_RowsReplaceDefaults(t *testing.T) {
	src := &fakeSource{plans: []models.Plan{
		{ID: models.PlanFurnitureAdd, Title: "Addition", Amount: 4000, Number: "01"},
		{ID: models.PlanFloorPlanCG, Title: "Floor Plan", Amount: 9900, Number: "02"},
		{ID: "", Title: "broken row"},
	}}
	c := newDefaultCatalog(t, src)

	require.NoError(t, c.Refresh(context.Background()))

	plans := c.List()
	require.Len(t, plans, 2)
	_, ok := c.Get(models.PlanFurnitureRemove)
	assert.False(t, ok)

	add, ok := c.Get(models.PlanFurnitureAdd)
	require.True(t, ok)
	assert.Equal(t, int64(4000), add.Amount)

	assert.True(t, c.IsQuotePlan(models.PlanFloorPlanCG))
	floor, _ := c.Get(models.PlanFloorPlanCG)
	assert.True(t, floor.QuoteBased)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plans.yaml")
	content := "plans:\n  - id: FURNITURE_ADD\n    title: Addition\n    price: $40\n    amount: 4000\n    number: \"01\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	plans, err := catalog.LoadFile(path)
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, int64(4000), plans[0].Amount)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("plans:\n  - title: no id\n"), 0o600))
	_, err = catalog.LoadFile(bad)
	assert.Error(t, err)

	_, err = catalog.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
