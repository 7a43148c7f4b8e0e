package application

import (
	"errors"
	"fmt"
	"net/http"
)

// APPLICATION-LEVEL ERRORS (Orchestration)

type ServiceError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

const (
	ErrCodeMissingIdempotencyKey = "MISSING_IDEMPOTENCY_KEY"
	ErrCodeInvalidIdempotencyKey = "INVALID_IDEMPOTENCY_KEY"
	ErrCodeIdempotencyKeyReused  = "IDEMPOTENCY_KEY_REUSED"
	ErrCodeValidation            = "VALIDATION_ERROR"
	ErrCodeInternal              = "INTERNAL_ERROR"
)

func NewMissingIdempotencyKeyError() *ServiceError {
	return &ServiceError{
		Code:       ErrCodeMissingIdempotencyKey,
		Message:    "Idempotency-Key header is required",
		HTTPStatus: http.StatusBadRequest,
	}
}

func NewInvalidIdempotencyKeyError(key string) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeInvalidIdempotencyKey,
		Message:    "Idempotency-Key must be a version 4 UUID",
		HTTPStatus: http.StatusBadRequest,
		Err:        fmt.Errorf("got %q", key),
	}
}

func NewIdempotencyKeyReusedError() *ServiceError {
	return &ServiceError{
		Code:       ErrCodeIdempotencyKeyReused,
		Message:    "Idempotency key reused with different request parameters",
		HTTPStatus: http.StatusConflict,
	}
}

func NewValidationError(err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeValidation,
		Message:    "Invalid request",
		HTTPStatus: http.StatusBadRequest,
		Err:        err,
	}
}

func NewInternalError(err error) *ServiceError {
	return &ServiceError{
		Code:       ErrCodeInternal,
		Message:    "An internal error occurred",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func IsServiceError(err error) (*ServiceError, bool) {
	var svcErr *ServiceError
	ok := errors.As(err, &svcErr)
	return svcErr, ok
}
