package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/schoolerp/apiserver/internal/google"
	"github.com/schoolerp/apiserver/internal/records"
	"github.com/schoolerp/apiserver/internal/store"
)

// RecordEngine is the CRUD surface a record kind exposes to the HTTP
// layer. Implemented by records.Engine.
type RecordEngine[T any] interface {
	Create(ctx context.Context, email string, record T) (T, error)
	List(ctx context.Context, email string) ([]T, error)
	Update(ctx context.Context, email, id string, patch map[string]json.RawMessage) (T, error)
	Delete(ctx context.Context, email, id string) error
}

// RecordHandler provides HTTP handlers for one record kind.
type RecordHandler[T any] struct {
	engine RecordEngine[T]
}

// RecordRoutes builds a route group serving CRUD for one record kind.
// Mount it with r.Route("/api/admissions", RecordRoutes(engine)).
func RecordRoutes[T any](engine RecordEngine[T]) func(chi.Router) {
	handler := &RecordHandler[T]{engine: engine}
	return func(r chi.Router) {
		r.Post("/", handler.Create)
		r.Get("/", handler.List)
		r.Put("/{id}", handler.Update)
		r.Delete("/{id}", handler.Delete)
	}
}

func (h *RecordHandler[T]) Create(w http.ResponseWriter, r *http.Request) {
	email, err := emailFromContext(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var record T
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.engine.Create(r.Context(), email, record)
	if err != nil {
		writeRecordError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (h *RecordHandler[T]) List(w http.ResponseWriter, r *http.Request) {
	email, err := emailFromContext(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	items, err := h.engine.List(r.Context(), email)
	if err != nil {
		writeRecordError(w, err)
		return
	}
	if items == nil {
		items = []T{}
	}

	writeJSON(w, http.StatusOK, items)
}

func (h *RecordHandler[T]) Update(w http.ResponseWriter, r *http.Request) {
	email, err := emailFromContext(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing record id")
		return
	}

	var patch map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.engine.Update(r.Context(), email, id, patch)
	if err != nil {
		writeRecordError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (h *RecordHandler[T]) Delete(w http.ResponseWriter, r *http.Request) {
	email, err := emailFromContext(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing record id")
		return
	}

	if err := h.engine.Delete(r.Context(), email, id); err != nil {
		writeRecordError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// writeRecordError maps engine failures onto HTTP statuses.
func writeRecordError(w http.ResponseWriter, err error) {
	var validationErr *records.ValidationError
	switch {
	case errors.As(err, &validationErr):
		writeError(w, http.StatusBadRequest, validationErr.Error())
	case errors.Is(err, records.ErrNotFound):
		writeError(w, http.StatusNotFound, "record not found")
	case errors.Is(err, records.ErrNotProvisioned):
		writeError(w, http.StatusBadRequest, "invalid spreadsheet ID, please re-run /api/setup-sheet to initialize your sheet")
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusUnauthorized, "unknown user, please log in again")
	case errors.Is(err, google.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "google authorization expired, please log in again")
	case errors.Is(err, google.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, "google api rate limit exceeded, try again later")
	default:
		writeServerError(w, "request failed", err)
	}
}
