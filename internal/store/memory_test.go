package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staging-pro-backend/internal/store"
)

func TestMemoryStore_UpdateMergesFields(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	require.NoError(t, mem.Insert(ctx, store.Submissions, store.Record{"id": "X", "status": "pending", "plan": "FURNITURE_ADD"}))

	require.NoError(t, mem.Update(ctx, store.Submissions, "X", store.Record{"status": "processing"}))
	require.NoError(t, mem.Update(ctx, store.Submissions, "X", store.Record{"assignedEditorId": "ed_1"}))

	rows, err := mem.FetchAll(ctx, store.Submissions)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "processing", rows[0]["status"])
	assert.Equal(t, "ed_1", rows[0]["assignedEditorId"])
	assert.Equal(t, "FURNITURE_ADD", rows[0]["plan"])
}

func TestMemoryStore_InsertRejectsDuplicatesAndMissingID(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	require.NoError(t, mem.Insert(ctx, store.Editors, store.Record{"id": "ed_1"}))

	assert.Error(t, mem.Insert(ctx, store.Editors, store.Record{"id": "ed_1"}))
	assert.Error(t, mem.Insert(ctx, store.Editors, store.Record{"name": "no id"}))
}

func TestMemoryStore_Delete(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	require.NoError(t, mem.Insert(ctx, store.Editors, store.Record{"id": "a"}))
	require.NoError(t, mem.Insert(ctx, store.Editors, store.Record{"id": "b"}))

	require.NoError(t, mem.Delete(ctx, store.Editors, "a"))

	rows, err := mem.FetchAll(ctx, store.Editors)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "b", rows[0]["id"])
}

func TestMemoryBlobStore_Upload(t *testing.T) {
	blobs := store.NewMemoryBlobStore("https://blobs.test")
	url, err := blobs.UploadBlob(context.Background(), "owner/A1_source.jpg", []byte("img"), "image/jpeg")
	require.NoError(t, err)

	assert.Equal(t, "https://blobs.test/owner/A1_source.jpg", url)
	data, ok := blobs.Get("owner/A1_source.jpg")
	assert.True(t, ok)
	assert.Equal(t, []byte("img"), data)

	_, err = blobs.UploadBlob(context.Background(), "results/A1_result.jpg", []byte("out"), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, []string{"results/A1_result.jpg"}, blobs.Paths("results/"))
	assert.Empty(t, blobs.Paths("missing/"))
}
