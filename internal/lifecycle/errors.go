package lifecycle

import (
	"errors"

	"staging-pro-backend/internal/store"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrForbidden         = errors.New("action not permitted for this role")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrQuoteNotSet       = errors.New("quoted amount has not been set")
	ErrNotFound          = store.ErrNotFound
)
