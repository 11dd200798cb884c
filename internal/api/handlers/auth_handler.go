package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/maxxlamenaace/roomio-be/internal/auth"
	"github.com/maxxlamenaace/roomio-be/internal/services"
)

// AuthHandler handles login, registration and logout.
type AuthHandler struct {
	users  services.UserServiceProvider
	events services.EventServiceProvider
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(users services.UserServiceProvider, events services.EventServiceProvider) *AuthHandler {
	return &AuthHandler{users: users, events: events}
}

// setSessionCookie issues the session token as an HttpOnly cookie.
func setSessionCookie(w http.ResponseWriter, token string) {
	isProd := os.Getenv("APP_ENV") == "production"
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Expires:  time.Now().Add(24 * time.Hour),
		HttpOnly: true,
		Secure:   isProd,
		SameSite: http.SameSiteStrictMode,
		Path:     "/",
	})
}

// LoginForm renders the login view. Already-authenticated requesters are
// sent back to the listing.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if auth.CurrentClaims(r) != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"page": "login"})
}

// Login authenticates a user and establishes a session. A missing user
// records a notice but does not short-circuit: credential verification
// runs regardless, so the response may carry both notices.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if auth.CurrentClaims(r) != nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	username := r.FormValue("username")
	password := r.FormValue("password")

	var notices []string
	if _, err := h.users.GetUserByUsername(username); errors.Is(err, services.ErrNotFound) {
		notices = append(notices, "User does not exist")
	}

	user, err := h.users.AuthenticateUser(username, password)
	if err != nil {
		if !errors.Is(err, services.ErrInvalidCredentials) {
			log.Error().Err(err).Str("username", username).Msg("Failed to authenticate user")
		}
		notices = append(notices, "Invalid credentials")
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{"page": "login", "notices": notices})
		return
	}

	token, err := auth.GenerateJWT(user)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to generate session token")
		http.Error(w, "Failed to establish session", http.StatusInternalServerError)
		return
	}

	setSessionCookie(w, token)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// RegisterForm renders the registration view.
func (h *AuthHandler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"page": "register"})
}

// Register validates the registration form, stores the user with a
// lowercased username and establishes a session.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	username := r.FormValue("username")
	password := r.FormValue("password")
	passwordConfirm := r.FormValue("passwordConfirm")

	user, err := h.users.RegisterUser(username, password, passwordConfirm)
	if err != nil {
		view := map[string]interface{}{
			"page":    "register",
			"notices": []string{"An error occurred during registration"},
		}
		var verr *services.ValidationError
		switch {
		case errors.As(err, &verr):
			view["fieldErrors"] = verr.Fields
		case errors.Is(err, services.ErrUsernameTaken):
			view["fieldErrors"] = map[string]string{"username": "Username already taken"}
		default:
			log.Error().Err(err).Str("username", username).Msg("Failed to register user")
			http.Error(w, "Failed to register user", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(view)
		return
	}

	if err := h.events.CreateEvent("user.register", "info", "User "+user.Username+" registered", nil); err != nil {
		log.Warn().Err(err).Msg("Failed to record registration event")
	}

	token, err := auth.GenerateJWT(user)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to generate session token")
		http.Error(w, "Failed to establish session", http.StatusInternalServerError)
		return
	}

	setSessionCookie(w, token)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout tears down the session unconditionally.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    "",
		MaxAge:   -1,
		HttpOnly: true,
		Path:     "/",
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
