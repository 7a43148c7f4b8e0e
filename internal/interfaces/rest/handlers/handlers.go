// Package handlers exposes the quote service over HTTP.
package handlers

import (
	"context"
	"net/http"

	"github.com/ficsure/quote-service/internal/application/services"
	"github.com/ficsure/quote-service/internal/domain"
	"github.com/ficsure/quote-service/internal/infrastructure/metrics"
	"github.com/go-playground/validator"
)

type QuoteService interface {
	CreateQuote(ctx context.Context, cmd services.CreateQuoteCommand, idempotencyKey string) (*services.CreateQuoteResult, error)
	GetQuote(ctx context.Context, id string) (*domain.Quote, error)
}

type QuoteHandler struct {
	quoteService QuoteService
	registry     *metrics.Registry
	validate     *validator.Validate
}

func NewQuoteHandler(quoteService QuoteService, registry *metrics.Registry) *QuoteHandler {
	return &QuoteHandler{
		quoteService: quoteService,
		registry:     registry,
		validate:     validator.New(),
	}
}

func (h *QuoteHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /quotes", h.HandleCreateQuote)
	mux.HandleFunc("GET /quotes/{quoteID}", h.HandleGetQuote)
	mux.HandleFunc("GET /healthz", h.HandleHealth)
	mux.HandleFunc("GET /metrics", h.HandleMetrics)
}

func (h *QuoteHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *QuoteHandler) HandleMetrics(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.registry.Snapshot())
}
