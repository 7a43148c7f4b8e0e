package domain

import (
	"fmt"
	"time"
)

// DomainError represents a business logic error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Domain validation errors
const (
	ErrCodeQuoteNotFound     = "QUOTE_NOT_FOUND"
	ErrCodeInvalidCoverage   = "INVALID_COVERAGE_AMOUNT"
	ErrCodePastEffectiveDate = "PAST_EFFECTIVE_DATE"
	ErrCodeInvalidDateRange  = "INVALID_DATE_RANGE"
)

func NewQuoteNotFoundError(id string) *DomainError {
	return &DomainError{
		Code:    ErrCodeQuoteNotFound,
		Message: fmt.Sprintf("quote %s not found", id),
	}
}

func NewInvalidCoverageError(amount float64) *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidCoverage,
		Message: fmt.Sprintf("coverage amount must be positive, got %.2f", amount),
	}
}

func NewPastEffectiveDateError(effective time.Time) *DomainError {
	return &DomainError{
		Code:    ErrCodePastEffectiveDate,
		Message: fmt.Sprintf("effective date %s is in the past", effective.Format("2006-01-02")),
	}
}

func NewInvalidDateRangeError(effective, expiry time.Time) *DomainError {
	return &DomainError{
		Code: ErrCodeInvalidDateRange,
		Message: fmt.Sprintf("expiry date %s must be after effective date %s",
			expiry.Format("2006-01-02"), effective.Format("2006-01-02")),
	}
}
