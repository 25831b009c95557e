package auth

import (
	"context"
	"strings"
)

// Actor identifies who is performing an operation. Services receive it as an
// explicit parameter; there is no ambient session state below the handlers.
type Actor struct {
	ID        string
	FullName  string
	Role      string
	Superuser bool
}

// IsSupervisor reports whether the actor may authorize or reject service
// orders. By convention any role whose name contains "supervisor"
// (case-insensitive) qualifies, as does a superuser. This is a deliberately
// loose substring match, not a closed role enum.
func (a Actor) IsSupervisor() bool {
	if a.Superuser {
		return true
	}
	return strings.Contains(strings.ToLower(a.Role), "supervisor")
}

type contextKey string

const actorKey contextKey = "actor"

// ActorToContext returns a child context carrying the actor.
func ActorToContext(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey, a)
}

// ActorFromContext retrieves the request actor. The zero Actor is returned
// when none is set; it holds no privileges.
func ActorFromContext(ctx context.Context) Actor {
	a, _ := ctx.Value(actorKey).(Actor)
	return a
}
