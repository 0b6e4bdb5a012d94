package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"library-api/internal/model"
	"library-api/internal/validation"
	"library-api/pkg/apierror"
)

func writeSuccess(w http.ResponseWriter, status int, data any, meta *model.Meta) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Data: data,
		Meta: meta,
	})
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	body := model.ErrorResponse{
		Code:  "INTERNAL_ERROR",
		Error: "internal server error",
	}

	var apiErr *apierror.APIError
	var fieldErr *validation.FieldError
	if errors.As(err, &apiErr) {
		status = apiErr.HTTPStatus
		body.Code = apiErr.Code
		body.Error = apiErr.Message
		body.Details = apiErr.Details
	} else if errors.As(err, &fieldErr) {
		status = http.StatusBadRequest
		body.Code = "VALIDATION_FAILED"
		body.Error = "invalid request body"
		body.Details = fieldErr.Error()
	} else if errors.Is(err, model.ErrUserNotFound) {
		status = http.StatusNotFound
		body.Code = "NOT_FOUND"
		body.Error = "user not found"
	} else if errors.Is(err, model.ErrUserAlreadyExists) {
		status = http.StatusConflict
		body.Code = "ALREADY_EXISTS"
		body.Error = "user already exists"
	} else if errors.Is(err, model.ErrInvalidCredentials) {
		status = http.StatusUnauthorized
		body.Code = "UNAUTHORIZED"
		body.Error = "invalid credentials"
	} else if errors.Is(err, model.ErrUnauthenticated) || errors.Is(err, model.ErrSessionNotFound) || errors.Is(err, model.ErrSessionExpired) {
		status = http.StatusUnauthorized
		body.Code = "UNAUTHORIZED"
		body.Error = "unauthenticated"
	} else if errors.Is(err, model.ErrPermissionDenied) || errors.Is(err, model.ErrSelfAccessViolation) {
		status = http.StatusForbidden
		body.Code = "FORBIDDEN"
		body.Error = "forbidden"
	} else if errors.Is(err, model.ErrInvalidInput) {
		status = http.StatusBadRequest
		body.Code = "BAD_REQUEST"
		body.Error = "invalid input"
	} else {
		slog.Error("unhandled error in writeError", "error", err.Error())
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeErrorMessage(w http.ResponseWriter, status int, code string, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.ErrorResponse{Error: message, Code: code})
}
