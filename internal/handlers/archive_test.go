package handlers_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staging-pro-backend/internal/handlers"
	"staging-pro-backend/internal/models"
	"staging-pro-backend/internal/store"
)

func TestArchiveHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := handlers.NewArchiveHandler(store.NewArchiveRepository(store.NewMemoryStore()))

	actor := admin
	r := gin.New()
	r.GET("/archive", h.ListArchive)
	r.POST("/archive", as(&actor), h.CreateArchive)
	r.DELETE("/archive/:id", as(&actor), h.DeleteArchive)
	s := &server{router: r}

	w := s.do(http.MethodPost, "/archive", models.CreateArchiveRequest{
		Title:     "Scandinavian living room",
		Category:  "FURNITURE_ADD",
		BeforeURL: "https://cdn.test/before.jpg",
		AfterURL:  "https://cdn.test/after.jpg",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[models.ArchiveProject](t, w)
	assert.NotEmpty(t, created.ID)
	assert.NotZero(t, created.Timestamp)

	w = s.do(http.MethodPost, "/archive", models.CreateArchiveRequest{Title: "No images", BeforeURL: "not a url", AfterURL: "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	list := decode[models.ArchiveResponse](t, s.do(http.MethodGet, "/archive", nil))
	require.Len(t, list.Projects, 1)
	assert.Equal(t, "Scandinavian living room", list.Projects[0].Title)

	assert.Equal(t, http.StatusNoContent, s.do(http.MethodDelete, "/archive/"+created.ID, nil).Code)
	list = decode[models.ArchiveResponse](t, s.do(http.MethodGet, "/archive", nil))
	assert.Empty(t, list.Projects)
}
