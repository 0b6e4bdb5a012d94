package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"library-api/internal/access"
	"library-api/internal/model"
)

// Headers carrying the resolved identity to downstream handlers.
const (
	HeaderUserID          = "X-User-Id"
	HeaderUserRole        = "X-User-Role"
	HeaderUserLibraryID   = "X-User-Library-Id"
	HeaderRequestedUserID = "X-Requested-User-Id"
)

var identityHeaders = []string{HeaderUserID, HeaderUserRole, HeaderUserLibraryID, HeaderRequestedUserID}

type contextKey string

const (
	identityContextKey contextKey = "identity"
	tokenContextKey    contextKey = "session_token"
)

func IdentityFromContext(ctx context.Context) (model.Identity, bool) {
	identity, ok := ctx.Value(identityContextKey).(model.Identity)
	return identity, ok
}

// SessionTokenFromContext returns the token the request authenticated with.
func SessionTokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenContextKey).(string)
	return token, ok
}

// IdentityFromHeaders rebuilds the identity injected by the auth middleware.
func IdentityFromHeaders(h http.Header) (model.Identity, bool) {
	id, err := strconv.ParseInt(h.Get(HeaderUserID), 10, 64)
	if err != nil {
		return model.Identity{}, false
	}

	role, err := access.ParseRole(h.Get(HeaderUserRole))
	if err != nil {
		return model.Identity{}, false
	}

	identity := model.Identity{UserID: id, Role: role}
	if raw := h.Get(HeaderUserLibraryID); raw != "" {
		libraryID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return model.Identity{}, false
		}
		identity.LibraryID = &libraryID
	}

	return identity, true
}

// RequestedUserID is set only for /users/me requests.
func RequestedUserID(h http.Header) (int64, bool) {
	raw := h.Get(HeaderRequestedUserID)
	if raw == "" {
		return 0, false
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	return id, err == nil
}

func stripIdentityHeaders(h http.Header) {
	for _, name := range identityHeaders {
		h.Del(name)
	}
}

func injectIdentityHeaders(h http.Header, identity model.Identity) {
	h.Set(HeaderUserID, strconv.FormatInt(identity.UserID, 10))
	h.Set(HeaderUserRole, identity.Role.String())
	if identity.LibraryID != nil {
		h.Set(HeaderUserLibraryID, strconv.FormatInt(*identity.LibraryID, 10))
	}
}

// SetSessionCookie issues the session cookie with the session's expiry.
func SetSessionCookie(w http.ResponseWriter, name string, token string, expiresAt time.Time, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func ClearSessionCookie(w http.ResponseWriter, name string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
