package middleware

import (
	"net/http"

	"github.com/brokerops/commissions/internal/usecase"
)

// OperatorHeader names the operator performing the request; the value
// lands in audit logs as the actor.
const OperatorHeader = "X-Operator"

// Actor lifts the operator header into the request context.
func Actor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if operator := r.Header.Get(OperatorHeader); operator != "" {
			r = r.WithContext(usecase.WithActor(r.Context(), operator))
		}
		next.ServeHTTP(w, r)
	})
}
