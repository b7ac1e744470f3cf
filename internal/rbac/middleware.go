package rbac

import (
	"log/slog"
	"net/http"

	"github.com/carhive/carhive/internal/platform/httpx"
)

// Middleware wires permission gates for HTTP handlers.
type Middleware struct {
	Logger *slog.Logger
}

// Require ensures the current principal holds the named permission before the
// wrapped handler runs. Ownership-scoped checks cannot happen here; those run
// in the services once the resource's recorded owner is known.
func (m Middleware) Require(permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFromContext(r.Context())
			if !ok {
				httpx.RespondError(w, httpx.ErrUnauthorized)
				return
			}
			if err := Require(principal, permission); err != nil {
				if m.Logger != nil {
					m.Logger.Warn("permission denied",
						slog.Int64("principal_id", principal.ID),
						slog.String("permission", permission),
						slog.Any("reason", err))
				}
				httpx.RespondError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
