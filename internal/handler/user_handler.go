package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"library-api/internal/middleware"
	"library-api/internal/model"
	"library-api/internal/service"
	"library-api/pkg/apierror"
)

type UserHandler struct {
	service *service.UserService
}

func NewUserHandler(service *service.UserService) *UserHandler {
	return &UserHandler{service: service}
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, err := requestedUser(r)
	if err != nil {
		writeError(w, err)
		return
	}

	user, err := h.service.Get(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, user, nil)
}

func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID, err := requestedUser(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var payload model.UpdateProfileRequest
	if err := decodeBody(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}
	if payload.DisplayName == nil && payload.Password == nil {
		writeError(w, apierror.BadRequest("nothing to update", ""))
		return
	}

	user, err := h.service.UpdateProfile(r.Context(), userID, payload, clientIP(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, user, nil)
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, err := parseID(chi.URLParam(r, "id"), "id")
	if err != nil {
		writeError(w, err)
		return
	}

	user, err := h.service.Get(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, user, nil)
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, err := callerFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	users, err := h.service.List(r.Context(), caller)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, model.UserList{Users: users}, &model.Meta{Total: len(users)})
}

// requestedUser resolves the subject of a /users/me request.
func requestedUser(r *http.Request) (int64, error) {
	if id, ok := middleware.RequestedUserID(r.Header); ok {
		return id, nil
	}
	return 0, apierror.Unauthorized(model.ErrUnauthenticated, "unauthenticated")
}
