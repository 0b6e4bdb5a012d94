package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"library-api/internal/service"
	"library-api/pkg/apierror"
)

type OAuthHandler struct {
	service *service.OAuthService
}

func NewOAuthHandler(service *service.OAuthService) *OAuthHandler {
	return &OAuthHandler{service: service}
}

func (h *OAuthHandler) Start(w http.ResponseWriter, r *http.Request) {
	start, err := h.service.Start(chi.URLParam(r, "provider"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, start, nil)
}

func (h *OAuthHandler) VerifyState(w http.ResponseWriter, r *http.Request) {
	state := strings.TrimSpace(r.URL.Query().Get("state"))
	if state == "" {
		writeError(w, apierror.BadRequest("state is required", "state"))
		return
	}

	verified, err := h.service.VerifyState(chi.URLParam(r, "provider"), state)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, verified, nil)
}
