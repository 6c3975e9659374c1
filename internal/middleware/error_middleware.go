package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/yigit/campusbuddy/internal/app/models/dto"
	"github.com/yigit/campusbuddy/internal/pkg/apperrors"
	"github.com/yigit/campusbuddy/internal/pkg/logger"
	"github.com/yigit/campusbuddy/internal/pkg/validation"
)

// HandleAPIError maps an error onto an HTTP status and the standard error body
func HandleAPIError(c *gin.Context, err error) {
	HandleAPIErrorWithDetails(c, err, nil)
}

// HandleAPIErrorWithDetails is HandleAPIError with extra data in error.details
func HandleAPIErrorWithDetails(c *gin.Context, err error, details interface{}) {
	status, detail := errorDetailFor(err)
	if details != nil {
		detail = detail.WithDetails(details)
	}

	event := logger.Warn()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.Err(err).
		Str("method", c.Request.Method).
		Str("path", c.FullPath()).
		Int("status", status).
		Msg("Request failed")

	c.AbortWithStatusJSON(status, dto.NewErrorResponse(detail))
}

func errorDetailFor(err error) (int, *dto.ErrorDetail) {
	message := err.Error()
	var custom *apperrors.CustomError
	if errors.As(err, &custom) && custom.Message != "" {
		message = custom.Message
	}

	switch {
	case errors.Is(err, apperrors.ErrInvalidInput):
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeValidationFailed, message)
	case errors.Is(err, apperrors.ErrNotAuthorized):
		return http.StatusForbidden, dto.NewErrorDetail(dto.ErrorCodeForbidden, message)
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound, dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, message)
	case errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeConflict, message)
	case errors.Is(err, apperrors.ErrUnavailable):
		return http.StatusServiceUnavailable, dto.NewErrorDetail(dto.ErrorCodeServiceUnavailable, "Service temporarily unavailable").
			WithSeverity(dto.ErrorSeverityCritical)
	default:
		return http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")
	}
}

// HandleBindError reports a malformed request body or query
func HandleBindError(c *gin.Context, err error) {
	detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request data")

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		messages := make([]string, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			messages = append(messages, validation.FormatFieldError(fe))
		}
		detail = detail.WithField(fieldErrs[0].Field()).WithDetails(messages)
	} else {
		detail = detail.WithDetails(err.Error())
	}

	c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(detail))
}
