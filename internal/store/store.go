package store

import (
	"context"
	"errors"
)

// Collection names one flat table keyed by id.
type Collection string

const (
	Submissions     Collection = "submissions"
	Editors         Collection = "editors"
	Plans           Collection = "plans"
	Messages        Collection = "messages"
	ArchiveProjects Collection = "archive_projects"
)

// Record is one row as the store sees it. Relations between collections
// are plain string columns resolved by the application.
type Record map[string]any

// ErrNotFound is returned by typed lookups when no row matches.
var ErrNotFound = errors.New("record not found")

// RecordStore is the CRUD contract consumed by the core. Update merges the
// given columns into the row; columns not named keep their stored value.
type RecordStore interface {
	FetchAll(ctx context.Context, c Collection) ([]Record, error)
	FetchWhere(ctx context.Context, c Collection, field, value string) ([]Record, error)
	Insert(ctx context.Context, c Collection, rec Record) error
	Update(ctx context.Context, c Collection, id string, patch Record) error
	Delete(ctx context.Context, c Collection, id string) error
}

// BlobStore persists content under a caller-chosen path and returns a
// public URL for it.
type BlobStore interface {
	UploadBlob(ctx context.Context, path string, content []byte, contentType string) (string, error)
}
