package handler

import (
	"net/http"
	"strconv"
	"strings"

	"library-api/internal/model"
	"library-api/internal/service"
)

type ActionLogHandler struct {
	service *service.ActionLogService
}

func NewActionLogHandler(service *service.ActionLogService) *ActionLogHandler {
	return &ActionLogHandler{service: service}
}

func (h *ActionLogHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	userID, err := parseID(query.Get("user_id"), "user_id")
	if err != nil {
		writeError(w, err)
		return
	}

	entries, err := h.service.ListForUser(r.Context(), userID, parseIntOrDefault(query.Get("limit"), 50))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, entries, &model.Meta{Total: len(entries)})
}

func parseIntOrDefault(raw string, fallback int) int {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}
	return value
}
