package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/banking_ledger/internal/apperrors"
	"github.com/SscSPs/banking_ledger/internal/dto"
	"github.com/SscSPs/banking_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// statusForKind maps an error kind to its HTTP status.
func statusForKind(kind apperrors.Kind) int {
	switch kind {
	case apperrors.KindValidation:
		return http.StatusBadRequest
	case apperrors.KindNotFound:
		return http.StatusNotFound
	case apperrors.KindDomainConflict:
		return http.StatusUnprocessableEntity
	case apperrors.KindDuplicateRequest:
		return http.StatusOK
	}
	return http.StatusInternalServerError
}

// respondError writes err as {code, error}. Internal details are logged, not returned.
func respondError(c *gin.Context, err error) {
	logger := middleware.GetLoggerFromContext(c)
	kind := apperrors.KindOf(err)
	status := statusForKind(kind)
	code := apperrors.CodeOf(err)

	msg := err.Error()
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", slog.String("code", code), slog.String("error", msg))
		msg = "internal error"
		if code == "RETRIES_EXHAUSTED" {
			msg = "transaction could not be completed due to concurrent updates, retry later"
		}
	} else {
		logger.Warn("Request rejected", slog.String("code", code), slog.String("error", msg))
	}

	c.AbortWithStatusJSON(status, dto.ErrorResponse{Code: code, Error: msg})
}

// respondBindError reports a malformed request body.
func respondBindError(c *gin.Context, err error) {
	middleware.GetLoggerFromContext(c).Warn("Failed to bind request", slog.String("error", err.Error()))
	c.AbortWithStatusJSON(http.StatusBadRequest, dto.ErrorResponse{Code: "INVALID_REQUEST", Error: "Invalid request format: " + err.Error()})
}
