package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// actorKey is the context key for the authenticated user's ID.
// Unexported struct type so no other package can collide with it.
type actorKey struct{}

// headerUserID is set by the upstream auth gateway after validating the
// caller's credentials. Authentication itself is out of scope here; this
// middleware only translates the gateway's verdict into a typed context value.
const headerUserID = "X-User-ID"

// RequireActor returns a middleware that extracts the authenticated user's
// UUID from the X-User-ID header and stores it in the request context.
// Requests without a well-formed ID are rejected with 401.
func RequireActor() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := uuid.Parse(r.Header.Get(headerUserID))
			if err != nil {
				http.Error(w, "missing or malformed "+headerUserID+" header", http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), actorKey{}, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ActorID returns the authenticated user's ID stored by RequireActor.
// The second return is false when the middleware did not run for this request.
func ActorID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(actorKey{}).(uuid.UUID)
	return id, ok
}
