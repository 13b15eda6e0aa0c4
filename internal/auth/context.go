package auth

import (
	"context"

	"github.com/google/uuid"

	"github.com/edunest/admin-ledger/internal/domain"
)

// Principal is the authenticated operator attached to a request.
type Principal struct {
	OperatorID uuid.UUID
	Email      string
	Role       domain.Role
}

type principalKey struct{}

func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}
