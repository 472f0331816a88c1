package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/bgrs/internal/app/models/dto"
	"github.com/yigit/bgrs/internal/pkg/apperrors"
)

// HandleAPIError maps an error to the matching ops API response
func HandleAPIError(c *gin.Context, err error) {
	status, detail := errorDetailFor(err)
	c.JSON(status, dto.NewErrorResponse(detail))
}

func errorDetailFor(err error) (int, *dto.ErrorDetail) {
	switch {
	case errors.Is(err, apperrors.ErrCourseNotFound):
		return http.StatusNotFound, dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, "Course not found").
			WithSeverity(dto.ErrorSeverityWarning).
			WithDetails(err.Error())
	case errors.Is(err, apperrors.ErrStudentNotFound):
		return http.StatusNotFound, dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, "Student not found").
			WithSeverity(dto.ErrorSeverityWarning).
			WithDetails(err.Error())
	case errors.Is(err, apperrors.ErrResourceNotFound):
		return http.StatusNotFound, dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, "Resource not found").
			WithSeverity(dto.ErrorSeverityWarning)
	case errors.Is(err, apperrors.ErrCatalogInvalid):
		return http.StatusUnprocessableEntity, dto.NewErrorDetail(dto.ErrorCodeResourceInvalid, "Invalid course catalog").
			WithDetails(err.Error())
	case errors.Is(err, apperrors.ErrCatalogNotLoaded):
		return http.StatusServiceUnavailable, dto.NewErrorDetail(dto.ErrorCodeUnavailable, "Course catalog not loaded").
			WithSeverity(dto.ErrorSeverityCritical)
	case errors.Is(err, apperrors.ErrPermissionDenied):
		return http.StatusForbidden, dto.NewErrorDetail(dto.ErrorCodeForbidden, "Permission denied")
	case errors.Is(err, apperrors.ErrTokenExpired):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeExpiredToken, "Token expired")
	case errors.Is(err, apperrors.ErrTokenInvalid), errors.Is(err, apperrors.ErrInvalidFormat):
		return http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeInvalidToken, "Invalid token")
	case errors.Is(err, apperrors.ErrValidationFailed), errors.Is(err, apperrors.ErrBadRequest):
		return http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Validation failed").
			WithSeverity(dto.ErrorSeverityInfo).
			WithDetails(err.Error())
	default:
		detail := dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")
		if gin.IsDebugging() {
			detail = detail.WithDebugInfo("%v", err)
		}
		return http.StatusInternalServerError, detail
	}
}
