package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"library-api/internal/access"
	"library-api/internal/config"
	"library-api/internal/metrics"
	"library-api/internal/service"
	"library-api/pkg/apierror"
)

type sessionResolver interface {
	Resolve(ctx context.Context, token string) (service.Resolution, error)
}

type AuthOptions struct {
	PublicRoutes []string
	// SessionRoutes need a valid session but no table grant (logout).
	SessionRoutes []string
	TokenSource   string // config.TokenSourceBearer or config.TokenSourceCookie
	CookieName    string
	CookieSecure  bool
	Table         *access.Table
}

// AuthMiddleware is the single gate in front of /api. It authenticates the
// session, applies the self-access rule and the permission table, and
// forwards the caller's identity as request headers.
type AuthMiddleware struct {
	resolver sessionResolver
	opts     AuthOptions
}

func NewAuthMiddleware(resolver sessionResolver, opts AuthOptions) *AuthMiddleware {
	if opts.Table == nil {
		opts.Table = access.DefaultTable()
	}
	if opts.SessionRoutes == nil {
		opts.SessionRoutes = []string{"/api/auth/logout"}
	}
	if opts.TokenSource == "" {
		opts.TokenSource = config.TokenSourceBearer
	}

	return &AuthMiddleware{resolver: resolver, opts: opts}
}

func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		if m.isPublic(path) {
			metrics.AuthDecisions.WithLabelValues(metrics.OutcomePublic, "").Inc()
			next.ServeHTTP(w, r)
			return
		}

		token, ok := m.extractToken(r)
		if !ok {
			m.reject(w, r, http.StatusUnauthorized, metrics.OutcomeUnauthenticated, "", "unauthenticated")
			return
		}

		resolution, err := m.resolver.Resolve(r.Context(), token)
		if err != nil {
			var apiErr *apierror.APIError
			if errors.As(err, &apiErr) && apiErr.HTTPStatus == http.StatusUnauthorized {
				m.reject(w, r, http.StatusUnauthorized, metrics.OutcomeSessionInvalid, "", "session invalid or expired")
				return
			}

			slog.Error("session resolution failed", "path", path, "error", err)
			m.reject(w, r, http.StatusInternalServerError, metrics.OutcomeStoreFailure, "", "internal server error")
			return
		}

		identity := resolution.Identity
		role := identity.Role.String()
		if resolution.Renewed {
			metrics.SessionRenewals.Inc()
			if m.opts.TokenSource == config.TokenSourceCookie {
				SetSessionCookie(w, m.opts.CookieName, token, resolution.ExpiresAt, m.opts.CookieSecure)
			}
		}

		ctx := context.WithValue(r.Context(), identityContextKey, identity)
		ctx = context.WithValue(ctx, tokenContextKey, token)
		forwarded := r.Clone(ctx)
		stripIdentityHeaders(forwarded.Header)
		injectIdentityHeaders(forwarded.Header, identity)
		recordIdentity(w, identity)

		if m.isSessionOnly(path) {
			metrics.AuthDecisions.WithLabelValues(metrics.OutcomeAllowed, role).Inc()
			next.ServeHTTP(w, forwarded)
			return
		}

		self := access.CheckSelfAccess(path, identity.UserID, identity.Role)
		if !self.Allowed {
			m.reject(w, r, http.StatusForbidden, metrics.OutcomeSelfAccess, role, "forbidden")
			return
		}
		if self.IsMe {
			forwarded.Header.Set(HeaderRequestedUserID, strconv.FormatInt(identity.UserID, 10))
		}

		if !m.opts.Table.IsAllowed(identity.Role, path, r.Method) {
			m.reject(w, r, http.StatusForbidden, metrics.OutcomePermission, role, "forbidden")
			return
		}

		metrics.AuthDecisions.WithLabelValues(metrics.OutcomeAllowed, role).Inc()
		next.ServeHTTP(w, forwarded)
	})
}

func (m *AuthMiddleware) isPublic(path string) bool {
	for _, route := range m.opts.PublicRoutes {
		if strings.HasPrefix(path, route) {
			return true
		}
	}
	return false
}

func (m *AuthMiddleware) isSessionOnly(path string) bool {
	for _, route := range m.opts.SessionRoutes {
		if path == route {
			return true
		}
	}
	return false
}

func (m *AuthMiddleware) extractToken(r *http.Request) (string, bool) {
	if m.opts.TokenSource == config.TokenSourceCookie {
		cookie, err := r.Cookie(m.opts.CookieName)
		if err != nil || strings.TrimSpace(cookie.Value) == "" {
			return "", false
		}
		return strings.TrimSpace(cookie.Value), true
	}

	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return "", false
	}

	token := strings.TrimSpace(header[7:])
	return token, token != ""
}

func (m *AuthMiddleware) reject(w http.ResponseWriter, r *http.Request, status int, outcome string, role string, message string) {
	metrics.AuthDecisions.WithLabelValues(outcome, role).Inc()
	if status < http.StatusInternalServerError {
		slog.Warn("request rejected", "outcome", outcome, "method", r.Method, "path", r.URL.Path, "role", role)
	}

	code := "UNAUTHORIZED"
	switch status {
	case http.StatusForbidden:
		code = "FORBIDDEN"
	case http.StatusInternalServerError:
		code = "INTERNAL_ERROR"
	}
	writeJSONError(w, status, code, message)
}
