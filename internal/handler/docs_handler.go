package handler

import (
	"net/http"
	"os"
	"strings"
)

type DocsHandler struct {
	specPath string
}

func NewDocsHandler(specPath string) *DocsHandler {
	return &DocsHandler{specPath: strings.TrimSpace(specPath)}
}

// OpenAPI serves the API description file as-is.
func (h *DocsHandler) OpenAPI(w http.ResponseWriter, _ *http.Request) {
	if h == nil || h.specPath == "" {
		writeErrorMessage(w, http.StatusNotFound, "NOT_FOUND", "api description not configured")
		return
	}

	content, err := os.ReadFile(h.specPath)
	if err != nil {
		writeErrorMessage(w, http.StatusNotFound, "NOT_FOUND", "api description not found")
		return
	}

	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(content)
}
