package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ficsure/quote-service/internal/application"
	"github.com/ficsure/quote-service/internal/domain"
)

type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondWithJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := APIResponse{
		Success: status >= 200 && status < 300,
	}

	if response.Success {
		response.Data = data
	} else {
		if apiErr, ok := data.(*APIError); ok {
			response.Error = apiErr
		}
	}

	_ = json.NewEncoder(w).Encode(response)
}

func respondWithError(w http.ResponseWriter, err error) {
	code := application.ErrCodeInternal
	message := "An internal error occurred"
	status := http.StatusInternalServerError

	var svcErr *application.ServiceError
	var domainErr *domain.DomainError

	switch {
	case errors.As(err, &svcErr):
		code = svcErr.Code
		message = svcErr.Message
		status = svcErr.HTTPStatus

	case errors.As(err, &domainErr):
		code = domainErr.Code
		message = domainErr.Message
		switch domainErr.Code {
		case domain.ErrCodeQuoteNotFound:
			status = http.StatusNotFound
		default:
			status = http.StatusBadRequest
		}
	}

	respondWithJSON(w, status, &APIError{
		Code:    code,
		Message: message,
	})
}
