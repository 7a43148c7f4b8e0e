// Package domain defines the core models for the quote service.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// QuoteStatus represents how the premium on a quote was produced.
type QuoteStatus string

const (
	// StatusApproved means the premium came from the external pricing call.
	StatusApproved QuoteStatus = "APPROVED"
	// StatusPending means the premium came from the degraded fallback path
	// and is awaiting confirmation by the pricing provider.
	StatusPending QuoteStatus = "PENDING"
)

// DocumentType enumerates the policy types the service can price.
type DocumentType string

const (
	DocumentAuto   DocumentType = "AUTO"
	DocumentHome   DocumentType = "HOME"
	DocumentLife   DocumentType = "LIFE"
	DocumentHealth DocumentType = "HEALTH"
	DocumentTravel DocumentType = "TRAVEL"
)

// Quote is a priced insurance quote. Immutable once built.
type Quote struct {
	ID             uuid.UUID
	DocumentNumber string
	DocumentType   DocumentType
	Email          string
	CoverageAmount float64
	Currency       string
	EffectiveDate  time.Time
	ExpiryDate     time.Time

	Premium float64
	Status  QuoteStatus

	IdempotencyKey string
	CreatedAt      time.Time
}

// NewQuote builds an unpriced quote, enforcing the date invariants that
// cannot be expressed as per-field validation tags.
func NewQuote(
	documentNumber string,
	documentType DocumentType,
	email string,
	coverageAmount float64,
	currency string,
	effectiveDate, expiryDate time.Time,
	idempotencyKey string,
	now time.Time,
) (*Quote, error) {
	today := now.Truncate(24 * time.Hour)
	if effectiveDate.Before(today) {
		return nil, NewPastEffectiveDateError(effectiveDate)
	}
	if !expiryDate.After(effectiveDate) {
		return nil, NewInvalidDateRangeError(effectiveDate, expiryDate)
	}
	if coverageAmount <= 0 {
		return nil, NewInvalidCoverageError(coverageAmount)
	}

	return &Quote{
		ID:             uuid.New(),
		DocumentNumber: documentNumber,
		DocumentType:   documentType,
		Email:          email,
		CoverageAmount: coverageAmount,
		Currency:       currency,
		EffectiveDate:  effectiveDate,
		ExpiryDate:     expiryDate,
		IdempotencyKey: idempotencyKey,
		CreatedAt:      now,
	}, nil
}

// Price attaches a computed premium and its approval status.
func (q *Quote) Price(premium float64, status QuoteStatus) {
	q.Premium = premium
	q.Status = status
}
