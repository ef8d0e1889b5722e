package utils

import (
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ErrorCodeInvalidURL         ErrorCode = "INVALID_URL"
	ErrorCodeURLBlocked         ErrorCode = "URL_BLOCKED"
	ErrorCodeUpstreamFetch      ErrorCode = "UPSTREAM_FETCH_FAILED"
	ErrorCodeExtractionFailed   ErrorCode = "EXTRACTION_FAILED"
	ErrorCodeInvalidVariant     ErrorCode = "INVALID_VARIANT"
	ErrorCodeVariantUnavailable ErrorCode = "VARIANT_UNAVAILABLE"
	ErrorCodeRateLimitExceeded  ErrorCode = "RATE_LIMIT_EXCEEDED"
	ErrorCodeUnauthorized       ErrorCode = "UNAUTHORIZED"
	ErrorCodeValidationError    ErrorCode = "VALIDATION_ERROR"
	ErrorCodeInternalError      ErrorCode = "INTERNAL_ERROR"
)

type AppError struct {
	Code       ErrorCode              `json:"code"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	StatusCode int                    `json:"-"`
}

func (e *AppError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func NewError(code ErrorCode, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Details:    make(map[string]interface{}),
	}
}

func NewErrorWithDetails(code ErrorCode, message string, statusCode int, details map[string]interface{}) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Details:    details,
	}
}

// Common error constructors
func NewValidationError(message string, details map[string]interface{}) *AppError {
	return NewErrorWithDetails(ErrorCodeValidationError, message, http.StatusBadRequest, details)
}

func NewInvalidURLError(link string) *AppError {
	return NewErrorWithDetails(
		ErrorCodeInvalidURL,
		"The provided link is not a supported video URL",
		http.StatusBadRequest,
		map[string]interface{}{
			"expected_format": "https://www.tiktok.com/@user/video/1234567890",
			"provided":        link,
		},
	)
}

func NewURLBlockedError(link string) *AppError {
	return NewErrorWithDetails(
		ErrorCodeURLBlocked,
		"The provided link resolves to a disallowed network target",
		http.StatusForbidden,
		map[string]interface{}{
			"provided": link,
		},
	)
}

func NewUpstreamFetchError(reason string, details map[string]interface{}) *AppError {
	return NewErrorWithDetails(
		ErrorCodeUpstreamFetch,
		fmt.Sprintf("Failed to fetch the source page: %s", reason),
		http.StatusBadGateway,
		details,
	)
}

func NewExtractionFailedError() *AppError {
	return NewError(
		ErrorCodeExtractionFailed,
		"No extraction strategy produced a usable metadata record",
		http.StatusUnprocessableEntity,
	)
}

func NewInvalidVariantError(tag string) *AppError {
	return NewErrorWithDetails(
		ErrorCodeInvalidVariant,
		"Unknown download type",
		http.StatusBadRequest,
		map[string]interface{}{
			"provided": tag,
			"allowed":  []string{"nowm", "wm", "audio"},
		},
	)
}

func NewVariantUnavailableError(tag string) *AppError {
	return NewErrorWithDetails(
		ErrorCodeVariantUnavailable,
		fmt.Sprintf("The resolved video has no %s media address", tag),
		http.StatusNotFound,
		map[string]interface{}{
			"variant": tag,
		},
	)
}

func NewUnauthorizedError() *AppError {
	return NewError(
		ErrorCodeUnauthorized,
		"Invalid or missing authentication",
		http.StatusUnauthorized,
	)
}

func NewRateLimitError() *AppError {
	return NewError(
		ErrorCodeRateLimitExceeded,
		"Too many requests",
		http.StatusTooManyRequests,
	)
}

func NewInternalError() *AppError {
	return NewError(
		ErrorCodeInternalError,
		"An unexpected error occurred",
		http.StatusInternalServerError,
	)
}
