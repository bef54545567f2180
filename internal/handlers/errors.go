package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/auditnote/auditnote-api/internal/models"
	"github.com/auditnote/auditnote-api/internal/repository"
	"github.com/auditnote/auditnote-api/internal/services"
	"github.com/auditnote/auditnote-api/internal/session"
	"github.com/auditnote/auditnote-api/internal/sheets"
	"github.com/auditnote/auditnote-api/pkg/logger"
)

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrDuplicateEmail):
		return http.StatusConflict
	case errors.Is(err, services.ErrPasswordMismatch),
		errors.Is(err, services.ErrMissingFields),
		errors.Is(err, services.ErrUnsupportedFormat),
		errors.Is(err, models.ErrInvalidResult),
		errors.Is(err, session.ErrNoCompany):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrMissingField),
		errors.Is(err, session.ErrOwnerAuditor):
		return http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrNoData),
		errors.Is(err, repository.ErrNotFound),
		errors.Is(err, session.ErrFrameNotFound),
		errors.Is(err, session.ErrPanelNotFound),
		errors.Is(err, session.ErrItemNotFound),
		errors.Is(err, session.ErrPersonIndex):
		return http.StatusNotFound
	case errors.Is(err, services.ErrUploadFailure):
		return http.StatusBadRequest
	case errors.Is(err, sheets.ErrRateLimited),
		errors.Is(err, sheets.ErrTableNotFound):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// respondError writes {"error": ...} with the mapped status. Server-side
// failures are logged and attached to the gin context for sentrygin.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", "path", c.FullPath(), "error", err)
		_ = c.Error(err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
