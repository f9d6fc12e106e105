package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/threadbazaar/threadbazaar-backend/internal/orders"
	"github.com/threadbazaar/threadbazaar-backend/pkg/enums"
)

type contextKey string

const (
	ctxUserID  contextKey = "user_id"
	ctxOrgID   contextKey = "org_id"
	ctxOrgType contextKey = "org_type"
	ctxRole    contextKey = "actor_role"
)

// WithUserID stores the authenticated user's ID on the context.
func WithUserID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, ctxUserID, id)
}

func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(ctxUserID).(uuid.UUID)
	return id, ok
}

// WithOrgID stores the actor's organization ID on the context.
func WithOrgID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, ctxOrgID, id)
}

func OrgIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(ctxOrgID).(uuid.UUID)
	return id, ok
}

// WithOrgType stores the actor's organization type on the context.
func WithOrgType(ctx context.Context, orgType enums.OrgType) context.Context {
	return context.WithValue(ctx, ctxOrgType, orgType)
}

func OrgTypeFromContext(ctx context.Context) (enums.OrgType, bool) {
	orgType, ok := ctx.Value(ctxOrgType).(enums.OrgType)
	return orgType, ok
}

// WithRole stores the actor's role on the context.
func WithRole(ctx context.Context, role enums.Role) context.Context {
	return context.WithValue(ctx, ctxRole, role)
}

func RoleFromContext(ctx context.Context) (enums.Role, bool) {
	role, ok := ctx.Value(ctxRole).(enums.Role)
	return role, ok
}

// ActorFromContext assembles the order-domain actor from the identity
// the auth middleware placed on the context.
func ActorFromContext(ctx context.Context) (orders.Actor, bool) {
	userID, ok := UserIDFromContext(ctx)
	if !ok {
		return orders.Actor{}, false
	}
	orgID, ok := OrgIDFromContext(ctx)
	if !ok {
		return orders.Actor{}, false
	}
	orgType, ok := OrgTypeFromContext(ctx)
	if !ok {
		return orders.Actor{}, false
	}
	role, ok := RoleFromContext(ctx)
	if !ok {
		return orders.Actor{}, false
	}
	return orders.Actor{UserID: userID, OrgID: orgID, OrgType: orgType, Role: role}, true
}
