package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/keyfold/keyfold-server/internal/logger"
	"github.com/keyfold/keyfold-server/internal/model"
)

type actorKey struct{}

// ActorFromContext extracts the authenticated actor placed by Authenticate.
func ActorFromContext(ctx context.Context) (model.Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(model.Actor)
	return actor, ok
}

// ContextWithActor returns a child context carrying the actor. Exposed for
// handler tests.
func ContextWithActor(ctx context.Context, actor model.Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// Authenticate validates the Bearer token and stores the resulting actor in
// the request context. Requests without a valid token get 401.
func Authenticate(tokenManager model.TokenManager, l *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
			if !found || tokenString == "" {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}

			actor, err := tokenManager.ParseAccessToken(tokenString)
			if err != nil {
				l.Debug("rejected access token", "error", err)
				http.Error(w, "invalid access token", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithActor(r.Context(), actor)))
		})
	}
}
