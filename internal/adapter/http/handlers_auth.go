package http

import (
	"net/http"

	"github.com/promptana/promptana/internal/domain/user"
	"github.com/promptana/promptana/internal/middleware"
)

const sessionCookieName = "session"

// Signup handles POST /api/v1/auth/signup
func (h *Handlers) Signup(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[user.SignupRequest](w, r)
	if !ok {
		return
	}

	sess, err := h.Auth.Signup(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	setSessionCookie(w, sess)
	writeJSON(w, http.StatusCreated, sess)
}

// Login handles POST /api/v1/auth/login
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[user.LoginRequest](w, r)
	if !ok {
		return
	}

	sess, err := h.Auth.Login(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	setSessionCookie(w, sess)
	writeJSON(w, http.StatusOK, sess)
}

// Refresh handles POST /api/v1/auth/refresh
func (h *Handlers) Refresh(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[user.RefreshRequest](w, r)
	if !ok {
		return
	}

	sess, err := h.Auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	setSessionCookie(w, sess)
	writeJSON(w, http.StatusOK, sess)
}

// Signout handles POST /api/v1/auth/signout
func (h *Handlers) Signout(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	if err := h.Auth.Signout(r.Context(), userID); err != nil {
		writeServiceError(w, r, err)
		return
	}

	clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /api/v1/me
func (h *Handlers) Me(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	u, err := h.Auth.Me(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// setSessionCookie mirrors the access token into an httpOnly cookie so
// browser clients can skip the Authorization header.
func setSessionCookie(w http.ResponseWriter, sess *user.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sess.AccessToken,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   sess.ExpiresIn,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
		MaxAge:   -1,
	})
}
