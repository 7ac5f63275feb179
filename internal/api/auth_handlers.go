package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/sumamakhan761/vendor-management/internal/app"
	"github.com/sumamakhan761/vendor-management/internal/domain"
	"github.com/sumamakhan761/vendor-management/pkg/middleware"
)

// AuthHandler holds the dependencies for sign-in and session handlers.
type AuthHandler struct {
	service      *app.AuthService
	secureCookie bool
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(service *app.AuthService, secureCookie bool) *AuthHandler {
	return &AuthHandler{service: service, secureCookie: secureCookie}
}

// GoogleSignInRequest is the body posted by the Google sign-in button callback.
type GoogleSignInRequest struct {
	Credential string `json:"credential"`
}

// SessionResponse describes the signed-in user.
type SessionResponse struct {
	User    *domain.Session `json:"user"`
	Expires time.Time       `json:"expires"`
}

// SignInWithGoogle exchanges a Google ID token for a session cookie.
func (h *AuthHandler) SignInWithGoogle(w http.ResponseWriter, r *http.Request) {
	var req GoogleSignInRequest
	if !decodeBody(w, r, &req) {
		return
	}

	token, session, err := h.service.SignInWithGoogle(r.Context(), req.Credential)
	if err != nil {
		if errors.Is(err, app.ErrInvalidLogin) {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Invalid Google credential"})
			return
		}
		writeServiceError(w, err, "Failed to sign in")
		return
	}

	http.SetCookie(w, h.sessionCookie(token, session.ExpiresAt))
	writeJSON(w, http.StatusOK, SessionResponse{User: session, Expires: session.ExpiresAt})
}

// GetSession returns the caller's session or 401.
func (h *AuthHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSessionFromContext(r.Context())
	if session == nil {
		writeServiceError(w, app.ErrUnauthorized, "")
		return
	}
	writeJSON(w, http.StatusOK, SessionResponse{User: session, Expires: session.ExpiresAt})
}

// SignOut revokes the current session and clears the cookie. It always succeeds.
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	h.service.SignOut(r.Context(), middleware.GetSessionFromContext(r.Context()))

	http.SetCookie(w, h.sessionCookie("", time.Unix(0, 0)))
	writeJSON(w, http.StatusOK, messageResponse{Message: "Signed out"})
}

func (h *AuthHandler) sessionCookie(value string, expires time.Time) *http.Cookie {
	cookie := &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	}
	if value == "" {
		cookie.MaxAge = -1
	}
	return cookie
}
