package auth

import (
	"context"

	"github.com/aylinkaden/HotelReservationGo/internal/domain"
	apperrors "github.com/aylinkaden/HotelReservationGo/pkg/errors"
)

// Introspector resolves a bearer token to a verdict.
type Introspector interface {
	Introspect(ctx context.Context, token string) (Verdict, error)
}

// Gate turns token verdicts into authorization decisions. It distinguishes
// three failure modes: the caller could not be identified (401), the caller is
// identified but lacks the required role (403), and the auth authority could
// not be reached (503).
type Gate struct {
	introspector Introspector
}

// NewGate creates a gate backed by the given introspector.
func NewGate(introspector Introspector) *Gate {
	return &Gate{introspector: introspector}
}

// Authenticate resolves the token and checks it against the required roles.
// An empty roles list admits any authenticated principal.
func (g *Gate) Authenticate(ctx context.Context, token string, roles ...string) (*domain.Principal, error) {
	verdict, err := g.introspector.Introspect(ctx, token)
	if err != nil {
		return nil, err
	}

	if !verdict.Active {
		return nil, apperrors.Unauthorized("invalid or expired token")
	}

	if len(roles) > 0 {
		allowed := false
		for _, r := range roles {
			if verdict.Role == r {
				allowed = true
				break
			}
		}
		if !allowed {
			return nil, apperrors.Forbidden("insufficient permissions")
		}
	}

	return &domain.Principal{
		Subject: verdict.Subject,
		Role:    verdict.Role,
		Name:    verdict.Username,
		Email:   verdict.Email,
		Phone:   verdict.Phone,
	}, nil
}
