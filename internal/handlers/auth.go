package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/schoolerp/apiserver/internal/auth"
	"github.com/schoolerp/apiserver/internal/google"
	"github.com/schoolerp/apiserver/internal/store"
	"github.com/schoolerp/apiserver/types"
	"golang.org/x/oauth2"
)

const (
	sessionCookieName = "access_token"
	sessionTTL        = 24 * time.Hour
)

// UserDirectory is the slice of the user store the HTTP layer needs.
type UserDirectory interface {
	GetByEmail(ctx context.Context, email string) (types.User, error)
	Upsert(ctx context.Context, email, name, encryptedRefreshToken string) error
}

// Identity performs the Google OAuth handshake.
type Identity interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	Userinfo(ctx context.Context, token *oauth2.Token) (google.Profile, error)
}

// Encryptor seals refresh tokens before they reach the database.
type Encryptor interface {
	Encrypt(plaintext string) (string, error)
}

// AuthHandler provides the Google login flow and session endpoints.
type AuthHandler struct {
	users    UserDirectory
	identity Identity
	vault    Encryptor
	states   *auth.StateStore
	secret   []byte
}

// NewAuthHandler constructs an AuthHandler with the provided dependencies.
func NewAuthHandler(users UserDirectory, identity Identity, vault Encryptor, states *auth.StateStore, jwtSecret string) *AuthHandler {
	return &AuthHandler{
		users:    users,
		identity: identity,
		vault:    vault,
		states:   states,
		secret:   []byte(jwtSecret),
	}
}

// AuthRouter registers the login flow routes on the given router.
func AuthRouter(r chi.Router, handler *AuthHandler) {
	r.Get("/login/google", handler.LoginGoogle)
	r.Get("/auth/callback", handler.Callback)
	r.Get("/logout", handler.Logout)
}

// RequireSession validates the session cookie, confirms the user still
// exists in the directory, and injects the email into the context.
func (h *AuthHandler) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookieName)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "not authenticated")
			return
		}

		email, err := auth.ParseToken(cookie.Value, h.secret)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or expired session")
			return
		}

		if _, err := h.users.GetByEmail(r.Context(), email); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeError(w, http.StatusUnauthorized, "unknown user, please log in again")
				return
			}
			writeServerError(w, "failed to load user", err)
			return
		}

		ctx := context.WithValue(r.Context(), contextEmailKey, email)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// LoginGoogle starts the OAuth flow by redirecting to Google's consent
// screen with a single-use state value.
func (h *AuthHandler) LoginGoogle(w http.ResponseWriter, r *http.Request) {
	state, err := h.states.Issue()
	if err != nil {
		writeServerError(w, "failed to start login", err)
		return
	}
	http.Redirect(w, r, h.identity.AuthCodeURL(state), http.StatusFound)
}

// Callback completes the OAuth flow: it verifies the state, exchanges
// the code, stores the encrypted refresh token, and sets the session
// cookie before redirecting to /api/me.
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("state")
	code := r.URL.Query().Get("code")
	if state == "" || code == "" {
		writeError(w, http.StatusBadRequest, "missing state or code")
		return
	}
	if !h.states.Consume(state) {
		writeError(w, http.StatusBadRequest, "invalid or expired state")
		return
	}

	token, err := h.identity.Exchange(r.Context(), code)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to exchange authorization code")
		return
	}

	profile, err := h.identity.Userinfo(r.Context(), token)
	if err != nil {
		writeServerError(w, "failed to fetch user profile", err)
		return
	}

	encrypted := ""
	if token.RefreshToken != "" {
		encrypted, err = h.vault.Encrypt(token.RefreshToken)
		if err != nil {
			writeServerError(w, "failed to store credentials", err)
			return
		}
	} else {
		// Google omits the refresh token on repeat consents. Keep the
		// stored ciphertext if we have one, otherwise the user must
		// revoke access and log in again.
		user, err := h.users.GetByEmail(r.Context(), profile.Email)
		if err != nil || user.EncryptedRefreshToken == "" {
			writeError(w, http.StatusBadRequest, "no refresh token granted, please log in again")
			return
		}
		encrypted = user.EncryptedRefreshToken
	}

	if err := h.users.Upsert(r.Context(), profile.Email, profile.Name, encrypted); err != nil {
		writeServerError(w, "failed to store user", err)
		return
	}

	session, err := auth.IssueToken(profile.Email, h.secret, sessionTTL)
	if err != nil {
		writeServerError(w, "failed to create session", err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    session,
		Path:     "/",
		MaxAge:   int(sessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/api/me", http.StatusFound)
}

// Logout clears the session cookie and sends the client back to login.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/login/google", http.StatusFound)
}
