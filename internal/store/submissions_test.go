package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staging-pro-backend/internal/models"
	"staging-pro-backend/internal/store"
)

func newSubmission(id string, ts int64) models.Submission {
	return models.Submission{
		ID:            id,
		OwnerID:       "owner-1",
		OwnerEmail:    "owner@example.com",
		Plan:          models.PlanFurnitureAdd,
		DataURL:       "https://cdn/" + id + "_source.jpg",
		Status:        models.StatusPending,
		PaymentStatus: models.PaymentUnpaid,
		Timestamp:     ts,
		ReferenceImages: []models.ReferenceImage{
			{ID: "r1", URL: "https://cdn/ref1.jpg", Description: "sofa style"},
		},
	}
}

func TestSubmissionRepository_ResultWrittenToBothColumns(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	repo := store.NewSubmissionRepository(mem)

	require.NoError(t, repo.Create(ctx, newSubmission("A1", 1)))

	url := "https://cdn/results/A1_add.jpg"
	require.NoError(t, repo.Apply(ctx, "A1", models.SubmissionPatch{ResultURL: &url}))

	rows, err := mem.FetchWhere(ctx, store.Submissions, "id", "A1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, url, rows[0]["resultAddUrl"])
	assert.Equal(t, url, rows[0]["resultDataUrl"])

	sub, err := repo.Get(ctx, "A1")
	require.NoError(t, err)
	assert.Equal(t, url, sub.ResultURL)
}

func TestSubmissionRepository_ReadsLegacyResultColumn(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	require.NoError(t, mem.Insert(ctx, store.Submissions, store.Record{
		"id":            "OLD",
		"ownerId":       "owner-1",
		"plan":          "FURNITURE_REMOVE",
		"dataUrl":       "https://cdn/old.jpg",
		"status":        "completed",
		"resultDataUrl": "https://cdn/legacy.jpg",
		"timestamp":     float64(1700000000000),
	}))

	sub, err := store.NewSubmissionRepository(mem).Get(ctx, "OLD")
	require.NoError(t, err)

	assert.Equal(t, "https://cdn/legacy.jpg", sub.ResultURL)
	assert.Equal(t, models.PaymentUnpaid, sub.PaymentStatus)
	assert.Equal(t, int64(1700000000000), sub.Timestamp)
}

func TestSubmissionRepository_PrefersAddColumn(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	require.NoError(t, mem.Insert(ctx, store.Submissions, store.Record{
		"id":            "B1",
		"resultDataUrl": "https://cdn/stale.jpg",
		"resultAddUrl":  "https://cdn/fresh.jpg",
	}))

	sub, err := store.NewSubmissionRepository(mem).Get(ctx, "B1")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/fresh.jpg", sub.ResultURL)
}

func TestSubmissionRepository_ReferenceImagesRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := store.NewSubmissionRepository(store.NewMemoryStore())
	require.NoError(t, repo.Create(ctx, newSubmission("R1", 1)))

	sub, err := repo.Get(ctx, "R1")
	require.NoError(t, err)
	require.Len(t, sub.ReferenceImages, 1)
	assert.Equal(t, "https://cdn/ref1.jpg", sub.ReferenceImages[0].URL)
	assert.Equal(t, "sofa style", sub.ReferenceImages[0].Description)
}

func TestSubmissionRepository_ClearAssignment(t *testing.T) {
	ctx := context.Background()
	repo := store.NewSubmissionRepository(store.NewMemoryStore())
	sub := newSubmission("C1", 1)
	sub.AssignedEditorID = "ed_1"
	require.NoError(t, repo.Create(ctx, sub))

	require.NoError(t, repo.Apply(ctx, "C1", models.SubmissionPatch{ClearAssignment: true}))

	got, err := repo.Get(ctx, "C1")
	require.NoError(t, err)
	assert.Empty(t, got.AssignedEditorID)
	assert.False(t, got.IsAssigned())
}

func TestSubmissionRepository_ListNewestFirstAndFilters(t *testing.T) {
	ctx := context.Background()
	repo := store.NewSubmissionRepository(store.NewMemoryStore())
	first := newSubmission("S1", 100)
	second := newSubmission("S2", 300)
	second.AssignedEditorID = "ed_1"
	third := newSubmission("S3", 200)
	third.OwnerID = "owner-2"
	for _, s := range []models.Submission{first, second, third} {
		require.NoError(t, repo.Create(ctx, s))
	}

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"S2", "S3", "S1"}, []string{all[0].ID, all[1].ID, all[2].ID})

	mine, err := repo.ListByOwner(ctx, "owner-1")
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	assigned, err := repo.ListByAssignee(ctx, "ed_1")
	require.NoError(t, err)
	require.Len(t, assigned, 1)
	assert.Equal(t, "S2", assigned[0].ID)
}

func TestSubmissionRepository_GetMissing(t *testing.T) {
	_, err := store.NewSubmissionRepository(store.NewMemoryStore()).Get(context.Background(), "nope")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSubmissionRepository_EmptyPatchIsNoop(t *testing.T) {
	repo := store.NewSubmissionRepository(store.NewMemoryStore())
	assert.NoError(t, repo.Apply(context.Background(), "any", models.SubmissionPatch{}))
}
