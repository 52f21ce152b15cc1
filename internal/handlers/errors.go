package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"staging-pro-backend/internal/checkout"
	"staging-pro-backend/internal/lifecycle"
	"staging-pro-backend/internal/logger"
	"staging-pro-backend/internal/middleware"
	"staging-pro-backend/internal/models"
	"staging-pro-backend/internal/services"
	"staging-pro-backend/internal/store"
)

// maxImageSize bounds a single uploaded image.
const maxImageSize = 20 << 20

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) (int, string) {
	var drift *store.SchemaDriftError
	switch {
	case errors.As(err, &drift):
		return http.StatusServiceUnavailable, "schema out of date"
	case errors.Is(err, lifecycle.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, lifecycle.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, lifecycle.ErrInvalidTransition):
		return http.StatusConflict, "invalid transition"
	case errors.Is(err, lifecycle.ErrQuoteNotSet), errors.Is(err, checkout.ErrAmountBelowMinimum):
		return http.StatusUnprocessableEntity, "cannot start checkout"
	case errors.Is(err, lifecycle.ErrValidation), errors.Is(err, checkout.ErrInvalidRequest):
		return http.StatusBadRequest, "validation failed"
	case errors.Is(err, checkout.ErrUnavailable):
		return http.StatusServiceUnavailable, "checkout unavailable"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func respondError(c *gin.Context, err error) {
	status, label := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error(c.Request.Context(), "request failed", "error", err)
	}
	c.JSON(status, models.ErrorResponse{Error: label, Message: err.Error()})
}

func currentUser(c *gin.Context) (models.User, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "user not resolved"})
		return models.User{}, false
	}
	return user, true
}

func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error:   "invalid request body",
		Message: err.Error(),
	})
}

func readUpload(fh *multipart.FileHeader) (services.Upload, error) {
	if fh.Size > maxImageSize {
		return services.Upload{}, fmt.Errorf("%w: %s exceeds %d bytes", lifecycle.ErrValidation, fh.Filename, maxImageSize)
	}
	src, err := fh.Open()
	if err != nil {
		return services.Upload{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer src.Close()

	content, err := io.ReadAll(io.LimitReader(src, maxImageSize+1))
	if err != nil {
		return services.Upload{}, fmt.Errorf("failed to read file: %w", err)
	}
	if len(content) > maxImageSize {
		return services.Upload{}, fmt.Errorf("%w: %s exceeds %d bytes", lifecycle.ErrValidation, fh.Filename, maxImageSize)
	}

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(content)
	}
	return services.Upload{FileName: fh.Filename, ContentType: contentType, Content: content}, nil
}
