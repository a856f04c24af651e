package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/schoolerp/apiserver/internal/store"
)

// Provisioner creates and registers a user's spreadsheet.
type Provisioner interface {
	SetupContainer(ctx context.Context, email string) (spreadsheetID string, created bool, err error)
}

// UserHandler serves the authenticated user's profile and spreadsheet
// provisioning endpoints.
type UserHandler struct {
	users       UserDirectory
	provisioner Provisioner
}

// NewUserHandler constructs a UserHandler with the provided dependencies.
func NewUserHandler(users UserDirectory, provisioner Provisioner) *UserHandler {
	return &UserHandler{
		users:       users,
		provisioner: provisioner,
	}
}

// UserRouter registers the profile routes on the given router. The
// caller is expected to have attached session middleware already.
func UserRouter(r chi.Router, handler *UserHandler) {
	r.Get("/", handler.Root)
	r.Get("/api/me", handler.Me)
	r.Post("/api/setup-sheet", handler.SetupSheet)
}

// Root greets the logged-in user.
func (h *UserHandler) Root(w http.ResponseWriter, r *http.Request) {
	email, err := emailFromContext(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "Welcome! You are logged in as " + email})
}

// Me returns the current authenticated user.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	email, err := emailFromContext(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	user, err := h.users.GetByEmail(r.Context(), email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, "unknown user, please log in again")
			return
		}
		writeServerError(w, "failed to load user", err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// SetupSheet provisions the user's spreadsheet. Calling it again after
// a successful run is a no-op that reports the existing spreadsheet.
func (h *UserHandler) SetupSheet(w http.ResponseWriter, r *http.Request) {
	email, err := emailFromContext(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	spreadsheetID, created, err := h.provisioner.SetupContainer(r.Context(), email)
	if err != nil {
		writeRecordError(w, err)
		return
	}

	resp := SetupSheetResponse{
		Message:       "Spreadsheet already set up.",
		SpreadsheetID: spreadsheetID,
	}
	if created {
		resp.Message = "Successfully created and set up ERP spreadsheet!"
		resp.URL = "https://docs.google.com/spreadsheets/d/" + spreadsheetID
	}
	writeJSON(w, http.StatusOK, resp)
}

// MessageResponse is a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// SetupSheetResponse reports the outcome of spreadsheet provisioning.
type SetupSheetResponse struct {
	Message       string `json:"message"`
	SpreadsheetID string `json:"spreadsheet_id"`
	URL           string `json:"url,omitempty"`
}
