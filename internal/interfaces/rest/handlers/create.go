package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ficsure/quote-service/internal/application"
	"github.com/ficsure/quote-service/internal/application/services"
	"github.com/ficsure/quote-service/internal/domain"
	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

type CreateQuoteRequest struct {
	DocumentNumber string  `json:"document_number" validate:"required,numeric,min=8,max=14" example:"12345678901"`
	DocumentType   string  `json:"document_type" validate:"required,oneof=AUTO HOME LIFE HEALTH TRAVEL" example:"AUTO"`
	Email          string  `json:"email" validate:"required,email" example:"holder@example.com"`
	CoverageAmount float64 `json:"coverage_amount" validate:"required,gt=0,lte=10000000" example:"50000"`
	Currency       string  `json:"currency" validate:"required,len=3,alpha" example:"USD"`
	EffectiveDate  string  `json:"effective_date" validate:"required" example:"2026-09-01"`
	ExpiryDate     string  `json:"expiry_date" validate:"required" example:"2027-09-01"`
}

type QuoteResponse struct {
	ID             string  `json:"id"`
	DocumentNumber string  `json:"document_number"`
	DocumentType   string  `json:"document_type"`
	Email          string  `json:"email"`
	CoverageAmount float64 `json:"coverage_amount"`
	Currency       string  `json:"currency"`
	EffectiveDate  string  `json:"effective_date"`
	ExpiryDate     string  `json:"expiry_date"`
	Premium        float64 `json:"premium"`
	Status         string  `json:"status"`
	CreatedAt      string  `json:"created_at"`
}

// HandleCreateQuote processes a quote creation request. The Idempotency-Key
// header is required and must be a version 4 UUID; a repeated key within the
// cache TTL replays the original response with a cache marker.
func (h *QuoteHandler) HandleCreateQuote(w http.ResponseWriter, r *http.Request) {
	idemKey := r.Header.Get("Idempotency-Key")
	if err := validateIdempotencyKey(idemKey); err != nil {
		respondWithError(w, err)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		respondWithError(w, application.NewValidationError(err))
		return
	}

	var req CreateQuoteRequest
	if err := json.Unmarshal(body, &req); err != nil {
		respondWithError(w, application.NewValidationError(err))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		respondWithError(w, application.NewValidationError(err))
		return
	}

	effectiveDate, err := time.Parse(dateLayout, req.EffectiveDate)
	if err != nil {
		respondWithError(w, application.NewValidationError(err))
		return
	}
	expiryDate, err := time.Parse(dateLayout, req.ExpiryDate)
	if err != nil {
		respondWithError(w, application.NewValidationError(err))
		return
	}

	cmd := services.CreateQuoteCommand{
		DocumentNumber: req.DocumentNumber,
		DocumentType:   domain.DocumentType(req.DocumentType),
		Email:          req.Email,
		CoverageAmount: req.CoverageAmount,
		Currency:       strings.ToUpper(req.Currency),
		EffectiveDate:  effectiveDate,
		ExpiryDate:     expiryDate,
	}

	result, err := h.quoteService.CreateQuote(r.Context(), cmd, idemKey)
	if err != nil {
		respondWithError(w, err)
		return
	}

	if result.FromCache {
		w.Header().Set("X-Idempotency-Cache", "HIT")
		respondWithJSON(w, http.StatusOK, toQuoteResponse(result.Quote))
		return
	}
	w.Header().Set("X-Idempotency-Cache", "MISS")
	respondWithJSON(w, http.StatusCreated, toQuoteResponse(result.Quote))
}

// validateIdempotencyKey enforces the canonical v4 UUID token shape before
// any business logic runs.
func validateIdempotencyKey(key string) error {
	if key == "" {
		return application.NewMissingIdempotencyKeyError()
	}
	if len(key) != 36 {
		return application.NewInvalidIdempotencyKeyError(key)
	}
	parsed, err := uuid.Parse(key)
	if err != nil || parsed.Version() != 4 || parsed.Variant() != uuid.RFC4122 {
		return application.NewInvalidIdempotencyKeyError(key)
	}
	return nil
}

func toQuoteResponse(q *domain.Quote) QuoteResponse {
	return QuoteResponse{
		ID:             q.ID.String(),
		DocumentNumber: q.DocumentNumber,
		DocumentType:   string(q.DocumentType),
		Email:          q.Email,
		CoverageAmount: q.CoverageAmount,
		Currency:       q.Currency,
		EffectiveDate:  q.EffectiveDate.Format(dateLayout),
		ExpiryDate:     q.ExpiryDate.Format(dateLayout),
		Premium:        q.Premium,
		Status:         string(q.Status),
		CreatedAt:      q.CreatedAt.Format(time.RFC3339),
	}
}
