package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"library-api/internal/metrics"
	"library-api/internal/model"
)

const requestIDHeader = "X-Request-ID"

func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		w.Header().Set(requestIDHeader, requestID)

		started := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		elapsed := time.Since(started)
		metrics.HTTPRequestDuration.WithLabelValues(r.Method, strconv.Itoa(wrapped.status)).Observe(elapsed.Seconds())

		attrs := []any{
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.status,
			"duration_ms", elapsed.Milliseconds(),
			"client_ip", extractClientIP(r),
		}

		// Identity is only known once the auth middleware ran.
		if identity, ok := identityFromResponse(wrapped); ok {
			attrs = append(attrs, "user_id", identity.UserID, "role", identity.Role)
		}

		if wrapped.status >= 400 && wrapped.body.Len() > 0 {
			var parsed model.ErrorResponse
			if err := json.Unmarshal(wrapped.body.Bytes(), &parsed); err == nil && parsed.Error != "" {
				attrs = append(attrs, "error_message", parsed.Error)
				if parsed.Code != "" {
					attrs = append(attrs, "error_code", parsed.Code)
				}
			}
		}

		switch {
		case wrapped.status >= 500:
			slog.Error("request", attrs...)
		case wrapped.status >= 400:
			slog.Warn("request", attrs...)
		default:
			slog.Info("request", attrs...)
		}
	})
}

type responseWriter struct {
	http.ResponseWriter
	status      int
	body        bytes.Buffer
	wroteHeader bool
	identity    *model.Identity
}

func (rw *responseWriter) WriteHeader(statusCode int) {
	if rw.wroteHeader {
		return
	}
	rw.status = statusCode
	rw.wroteHeader = true
	rw.ResponseWriter.WriteHeader(statusCode)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	// Capture the body only for error responses so we can log error details.
	if rw.status >= 400 {
		rw.body.Write(b)
	}
	return rw.ResponseWriter.Write(b)
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// recordIdentity lets the auth middleware report the caller back to the
// logging middleware, which sits outside it and never sees the forwarded request.
func recordIdentity(w http.ResponseWriter, identity model.Identity) {
	for {
		switch typed := w.(type) {
		case *responseWriter:
			typed.identity = &identity
			return
		case interface{ Unwrap() http.ResponseWriter }:
			w = typed.Unwrap()
		default:
			return
		}
	}
}

func identityFromResponse(rw *responseWriter) (model.Identity, bool) {
	if rw.identity == nil {
		return model.Identity{}, false
	}
	return *rw.identity, true
}
