package apperrors

import "errors"

// Common errors
var (
	// Resource errors
	ErrResourceNotFound = errors.New("resource not found")

	// Authentication errors
	ErrTokenExpired  = errors.New("token expired")
	ErrTokenInvalid  = errors.New("invalid token")
	ErrInvalidFormat = errors.New("invalid token format")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")
)

// Catalog errors
var (
	ErrCatalogInvalid   = errors.New("invalid course catalog")
	ErrCatalogNotLoaded = errors.New("course catalog not loaded")
	ErrCourseNotFound   = errors.New("course not found")
)

// Student errors
var (
	ErrStudentNotFound = errors.New("student not found")
)
