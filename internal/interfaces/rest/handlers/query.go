package handlers

import (
	"net/http"

	"github.com/ficsure/quote-service/internal/application"
)

func (h *QuoteHandler) HandleGetQuote(w http.ResponseWriter, r *http.Request) {
	quoteID := r.PathValue("quoteID")
	if quoteID == "" {
		respondWithError(w, application.NewValidationError(nil))
		return
	}

	quote, err := h.quoteService.GetQuote(r.Context(), quoteID)
	if err != nil {
		respondWithError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, toQuoteResponse(quote))
}
