package handler

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"strings"

	"library-api/internal/middleware"
	"library-api/internal/model"
	"library-api/internal/validation"
	"library-api/pkg/apierror"
)

const maxBodyBytes = 1 << 20

// decodeBody reads a JSON body into dst and validates it.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	defer r.Body.Close()

	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return apierror.BadRequest("invalid JSON body", "")
	}

	return validation.Struct(dst)
}

// callerFromRequest trusts only the headers injected by the auth middleware.
func callerFromRequest(r *http.Request) (model.Identity, error) {
	identity, ok := middleware.IdentityFromHeaders(r.Header)
	if !ok {
		return model.Identity{}, apierror.Unauthorized(model.ErrUnauthenticated, "unauthenticated")
	}
	return identity, nil
}

func parseID(raw string, field string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, apierror.BadRequest(field+" must be a positive integer", field)
	}
	return id, nil
}

func clientIP(r *http.Request) string {
	xff := strings.TrimSpace(r.Header.Get("X-Forwarded-For"))
	if xff != "" {
		parts := strings.Split(xff, ",")
		if len(parts) > 0 {
			ip := strings.TrimSpace(parts[0])
			if ip != "" {
				return ip
			}
		}
	}

	xri := strings.TrimSpace(r.Header.Get("X-Real-IP"))
	if xri != "" {
		return xri
	}

	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil {
		return host
	}

	return strings.TrimSpace(r.RemoteAddr)
}
