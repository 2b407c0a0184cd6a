// Package response writes JSON bodies and maps domain errors onto status codes.
package response

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrJamesThe3rd/pennywise/internal/account"
	"github.com/MrJamesThe3rd/pennywise/internal/importer"
	"github.com/MrJamesThe3rd/pennywise/internal/importer/statement"
	"github.com/MrJamesThe3rd/pennywise/internal/transaction"
)

type ErrorBody struct {
	Error string `json:"error"`
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// BadRequest reports malformed input that never reached a service.
func BadRequest(w http.ResponseWriter, msg string) {
	JSON(w, http.StatusBadRequest, ErrorBody{Error: msg})
}

// Records owned by someone else are reported exactly like missing ones.
var notFound = []error{
	transaction.ErrNotFound,
	transaction.ErrForbidden,
	account.ErrNotFound,
	account.ErrForbidden,
}

var unprocessable = []error{
	transaction.ErrInvalidTransfer,
	transaction.ErrInvalidAmount,
	transaction.ErrInvalidType,
	account.ErrNameRequired,
	account.ErrInvalidType,
	account.ErrInvalidCurrency,
	account.ErrNegativeSeed,
	importer.ErrUnknownBank,
	statement.ErrUnknownLayout,
}

// Status picks the HTTP status for an error returned by a service.
func Status(err error) int {
	if isAny(err, notFound) {
		return http.StatusNotFound
	}

	if isAny(err, unprocessable) {
		return http.StatusUnprocessableEntity
	}

	if errors.Is(err, account.ErrInUse) {
		return http.StatusConflict
	}

	return http.StatusInternalServerError
}

// Error writes err with its mapped status. Server errors are logged and their details withheld.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status := Status(err)

	msg := err.Error()

	switch status {
	case http.StatusNotFound:
		msg = "not found"
	case http.StatusInternalServerError:
		slog.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"error", err,
		)

		msg = "internal error"
	}

	JSON(w, status, ErrorBody{Error: msg})
}

func isAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}

	return false
}
