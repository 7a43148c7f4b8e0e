package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/ficsure/quote-service/internal/interfaces/rest/handlers"
)

// Timeout bounds the whole request, cancelling the handler's context and
// answering with the standard error envelope when the deadline passes.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	body, _ := json.Marshal(handlers.APIResponse{
		Error: &handlers.APIError{
			Code:    "TIMEOUT",
			Message: "Request timed out",
		},
	})

	return func(next http.Handler) http.Handler {
		timeoutHandler := http.TimeoutHandler(next, timeout, string(body))

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			timeoutHandler.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
