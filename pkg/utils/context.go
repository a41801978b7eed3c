package utils

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	ActorIDKey   contextKey = "actor_id"
	ActorRoleKey contextKey = "actor_role"
	RequestIDKey contextKey = "request_id"
)

const (
	RoleTraveler = "traveler"
	RoleOperator = "operator"
	RoleAdmin    = "admin"
)

// Actor is the caller identity forwarded by the gateway. It is trusted as is.
type Actor struct {
	ID   uuid.UUID
	Role string
}

func SetActorContext(ctx context.Context, actor Actor) context.Context {
	ctx = context.WithValue(ctx, ActorIDKey, actor.ID)
	ctx = context.WithValue(ctx, ActorRoleKey, actor.Role)
	return ctx
}

func GetActorFromContext(ctx context.Context) (Actor, bool) {
	id, ok := ctx.Value(ActorIDKey).(uuid.UUID)
	if !ok || id == uuid.Nil {
		return Actor{}, false
	}
	role, _ := ctx.Value(ActorRoleKey).(string)
	return Actor{ID: id, Role: role}, true
}

func SetRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}
