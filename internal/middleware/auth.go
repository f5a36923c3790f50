package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/biopeak/analytics/internal/auth"
	"github.com/biopeak/analytics/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
)

// AuthTokenHeader carries the session token issued by the login endpoint.
// Native BioPeak clients set it instead of the Authorization header, and
// thus browsers make a preflight/OPTIONS request:
//
//	https://developer.mozilla.org/en-US/docs/Web/HTTP/CORS#preflighted_requests
const AuthTokenHeader = "X-BIOPEAK-TOKEN"

type sessionChecker interface {
	UserID(ctx context.Context, token string) (string, error)
}

type AuthMiddlewareHandler struct {
	serviceSecret  string
	sessionChecker sessionChecker
	allowedPaths   map[string]bool

	// paths reserved for internal callers holding the service secret
	internalPathsPrefixes []string
}

func NewAuthMiddlewareHandler(
	serviceSecret string,
	sessionChecker sessionChecker,
) *AuthMiddlewareHandler {
	return &AuthMiddlewareHandler{
		serviceSecret:  serviceSecret,
		sessionChecker: sessionChecker,
		allowedPaths: map[string]bool{
			"/":        true,
			"/version": true,

			// login-logout:
			"/auth/login":  true,
			"/auth/logout": true,
		},
		internalPathsPrefixes: []string{
			"/overtraining/batch",
			"/gas/backfill",
		},
	}
}

func (h *AuthMiddlewareHandler) pathIsInternal(path string) bool {
	for _, prefix := range h.internalPathsPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func (h *AuthMiddlewareHandler) AuthCheck() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, span := tracing.GlobalTracer.Start(r.Context(), "middleware.auth")
			defer span.End()

			if r.Method == http.MethodOptions {
				w.Header().Add("Allow", "GET, POST, OPTIONS")
				w.WriteHeader(http.StatusOK)
				span.SetStatus(codes.Ok, "options-ok")
				return
			}

			if h.allowedPaths[r.URL.Path] {
				span.SetStatus(codes.Ok, "ok")
				next.ServeHTTP(w, r)
				return
			}

			authToken := r.Header.Get(AuthTokenHeader)

			// requests coming from the batch scheduler or other internal services
			if h.pathIsInternal(r.URL.Path) {
				if h.serviceSecret != authToken {
					log.Errorf("unauthorized internal request detected for %s", r.URL.Path)
					http.Error(w, "no can do", http.StatusUnauthorized)
					span.SetStatus(codes.Error, "invalid-service-secret")
					return
				}
				span.SetStatus(codes.Ok, "ok")
				next.ServeHTTP(w, r)
				return
			}

			if authToken == "" {
				log.Tracef("[missing token] [auth middleware] unauthorized => %s", r.URL.Path)
				http.Error(w, "no can do", http.StatusUnauthorized)
				span.SetStatus(codes.Error, "missing-auth-token")
				return
			}

			userID, err := h.sessionChecker.UserID(ctx, authToken)
			if errors.Is(err, auth.ErrNotLoggedIn) {
				log.Tracef("[invalid token] [auth middleware] unauthorized => %s", r.URL.Path)
				http.Error(w, "no can do", http.StatusUnauthorized)
				span.SetStatus(codes.Error, "not-logged")
				return
			}
			if err != nil {
				log.Errorf("[failed login check] => %s: %s", r.URL.Path, err)
				http.Error(w, "no can do", http.StatusUnauthorized)
				span.SetStatus(codes.Error, "check-logged-err")
				span.RecordError(err)
				return
			}

			span.SetStatus(codes.Ok, "ok")
			next.ServeHTTP(w, r.WithContext(auth.ContextWithUserID(ctx, userID)))
		})
	}
}
