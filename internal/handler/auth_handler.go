package handler

import (
	"net/http"

	"library-api/internal/middleware"
	"library-api/internal/model"
	"library-api/internal/service"
	"library-api/pkg/apierror"
)

type AuthHandler struct {
	service      *service.AuthService
	cookieName   string
	cookieSecure bool
}

func NewAuthHandler(service *service.AuthService, cookieName string, cookieSecure bool) *AuthHandler {
	return &AuthHandler{service: service, cookieName: cookieName, cookieSecure: cookieSecure}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload model.LoginRequest
	if err := decodeBody(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.service.Login(r.Context(), payload.Email, payload.Password, clientIP(r))
	if err != nil {
		writeError(w, err)
		return
	}

	middleware.SetSessionCookie(w, h.cookieName, result.Token, result.ExpiresAt, h.cookieSecure)
	writeSuccess(w, http.StatusOK, result, nil)
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload model.RegisterRequest
	if err := decodeBody(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.service.Register(r.Context(), payload, clientIP(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, user, nil)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token, ok := middleware.SessionTokenFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthorized(model.ErrUnauthenticated, "unauthenticated"))
		return
	}

	caller, err := callerFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.service.Logout(r.Context(), token, caller.UserID, clientIP(r)); err != nil {
		writeError(w, err)
		return
	}

	middleware.ClearSessionCookie(w, h.cookieName, h.cookieSecure)
	writeSuccess(w, http.StatusOK, map[string]any{"logged_out": true}, nil)
}
