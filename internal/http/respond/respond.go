// Package respond holds the JSON plumbing shared by every handler: request
// decoding, query parsing, and the mapping from apperr kinds to statuses.
package respond

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/invoiceai/internal/apperr"
	"github.com/MrJamesThe3rd/invoiceai/internal/pagination"
)

type errorBody struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields,omitempty"`
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// Error writes err as a JSON error body. Unclassified errors become a bare
// 500 and are logged with the request id.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status, body := classify(err)

	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", "Bearer")
	}

	if status >= http.StatusInternalServerError {
		slog.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"error", err,
		)
	}

	JSON(w, status, body)
}

func classify(err error) (int, errorBody) {
	if ve, ok := apperr.AsValidation(err); ok {
		return http.StatusUnprocessableEntity, errorBody{Detail: "validation failed", Fields: ve.Fields}
	}

	switch {
	case errors.Is(err, apperr.ErrUnavailable):
		return http.StatusServiceUnavailable, errorBody{Detail: apperr.ErrUnavailable.Error()}
	case errors.Is(err, apperr.ErrUnauthenticated):
		return http.StatusUnauthorized, errorBody{Detail: apperr.ErrUnauthenticated.Error()}
	case errors.Is(err, apperr.ErrInactiveAccount):
		return http.StatusBadRequest, errorBody{Detail: apperr.ErrInactiveAccount.Error()}
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound, errorBody{Detail: err.Error()}
	case errors.Is(err, apperr.ErrPermissionDenied):
		return http.StatusForbidden, errorBody{Detail: apperr.ErrPermissionDenied.Error()}
	case errors.Is(err, apperr.ErrConflict):
		return http.StatusConflict, errorBody{Detail: err.Error()}
	}

	return http.StatusInternalServerError, errorBody{Detail: "internal server error"}
}

// Decode reads a JSON body into v. Malformed bodies are validation errors.
func Decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Invalid("body", "field required")
		}

		return apperr.Invalid("body", "invalid JSON: "+err.Error())
	}

	return nil
}

// ID parses the {name} path parameter as a UUID.
func ID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, apperr.Invalid(name, "invalid UUID")
	}

	return id, nil
}

// QueryID parses an optional UUID query parameter.
func QueryID(r *http.Request, name string) (*uuid.UUID, error) {
	s := r.URL.Query().Get(name)
	if s == "" {
		return nil, nil
	}

	id, err := uuid.Parse(s)
	if err != nil {
		return nil, apperr.Invalid(name, "invalid UUID")
	}

	return &id, nil
}

func Page(r *http.Request) (pagination.Page, error) {
	q := r.URL.Query()
	return pagination.Parse(q.Get("skip"), q.Get("limit"))
}
