package middleware

import (
	"context"
	"net/http"

	"github.com/ShewonGun/Aeroholder/internal/domain"
)

// ActorHeader carries the authenticated user name, set by the upstream
// authenticating proxy.
const ActorHeader = "X-Actor"

type actorKey struct{}

// WithActor stores the domain.Actor derived from ActorHeader in the request
// context. A missing or blank header yields an unauthorized actor; rejecting
// it is left to the operations that mutate state.
func WithActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor := domain.NewActor(r.Header.Get(ActorHeader))
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), actorKey{}, actor)))
	})
}

// ActorFrom returns the actor stored by WithActor, or an unauthorized zero
// Actor if there is none.
func ActorFrom(ctx context.Context) domain.Actor {
	actor, _ := ctx.Value(actorKey{}).(domain.Actor)
	return actor
}
