package http

import (
	"context"
	"net/http"

	"github.com/go-chi/render"
	"github.com/vberezkin/linkcut/pkg/response"
)

// ownerIDHeader carries the opaque authenticated-user identifier injected by
// the auth layer in front of the service. Credentials are never inspected here.
const ownerIDHeader = "X-User-ID"

type ctxKey int

const ownerIDKey ctxKey = iota

// requireOwner rejects requests lacking an owner identifier and stores the
// identifier in the request context for handlers.
func requireOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ownerID := r.Header.Get(ownerIDHeader)
		if ownerID == "" {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, response.UnauthorizedResponse)
			return
		}

		ctx := context.WithValue(r.Context(), ownerIDKey, ownerID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func ownerIDFromContext(ctx context.Context) string {
	ownerID, _ := ctx.Value(ownerIDKey).(string)
	return ownerID
}
