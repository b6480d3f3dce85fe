package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aylinkaden/HotelReservationGo/internal/domain"
	apperrors "github.com/aylinkaden/HotelReservationGo/pkg/errors"
	"github.com/aylinkaden/HotelReservationGo/pkg/httputil"
	pkglogger "github.com/aylinkaden/HotelReservationGo/pkg/logger"
)

type contextKeyType string

const principalKey contextKeyType = "principal"

// Require returns middleware that authenticates the request's bearer token
// through the gate and enforces the given roles. The resolved principal is
// injected into the request context and the request-scoped logger is tagged
// with its subject.
func Require(gate *Gate, logger *slog.Logger, roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := bearerToken(r)
			if err != nil {
				httputil.WriteError(w, r, err, logger)
				return
			}

			principal, err := gate.Authenticate(r.Context(), token, roles...)
			if err != nil {
				httputil.WriteError(w, r, err, logger)
				return
			}

			ctx := pkglogger.WithUserID(r.Context(), principal.Subject)
			ctx = pkglogger.NewContext(ctx, pkglogger.FromContext(ctx).With(slog.String("user_id", principal.Subject)))
			ctx = context.WithValue(ctx, principalKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// PrincipalFromContext extracts the authenticated principal from the request
// context. The second return is false outside of Require-protected handlers.
func PrincipalFromContext(ctx context.Context) (*domain.Principal, bool) {
	p, ok := ctx.Value(principalKey).(*domain.Principal)
	return p, ok
}

// bearerToken extracts the bearer token from the Authorization header.
func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", apperrors.Unauthorized("missing authorization header")
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", apperrors.Unauthorized("invalid authorization header format")
	}

	return parts[1], nil
}
