package middleware

import (
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/iho/glcore/internal/domain"
)

// ActorHeader names the user on whose behalf a request is made.
const ActorHeader = "X-Actor-ID"

// Actor stores the requesting user and request id in the context so audit
// rows can attribute every transition.
func Actor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor := domain.Actor{
			ID:        r.Header.Get(ActorHeader),
			RequestID: chimiddleware.GetReqID(r.Context()),
		}
		next.ServeHTTP(w, r.WithContext(domain.ContextWithActor(r.Context(), actor)))
	})
}
