package middleware

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/yigit/bgrs/internal/app/models/dto"
)

// ValidationErrorDetail turns a binding error into an API error detail. Validator
// errors name the first offending field.
func ValidationErrorDetail(err error) *dto.ErrorDetail {
	detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid request")

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return detail.WithDetails(err.Error())
	}

	first := verrs[0]
	field := strings.ToLower(first.Field())
	detail = detail.WithField(field)
	switch first.Tag() {
	case "required":
		return detail.WithDetails(fmt.Sprintf("%s is required", field))
	case "min", "max":
		return detail.WithDetails(fmt.Sprintf("%s must satisfy %s=%s", field, first.Tag(), first.Param()))
	default:
		return detail.WithDetails(fmt.Sprintf("%s is invalid", field))
	}
}
