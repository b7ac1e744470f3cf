package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/carhive/carhive/internal/platform/httpx"
	"github.com/carhive/carhive/internal/rbac"
)

// PrincipalLoader resolves a user id to a principal with its role graph.
type PrincipalLoader interface {
	LoadPrincipal(ctx context.Context, userID int64) (rbac.Principal, error)
}

// Authenticator verifies bearer tokens and attaches the principal to the
// request context.
type Authenticator struct {
	Tokens *TokenManager
	Store  PrincipalLoader
	Logger *slog.Logger
}

// Middleware rejects requests without a valid bearer token or with an
// inactive account.
func (a Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := bearerToken(r)
		if !ok {
			httpx.RespondError(w, fmt.Errorf("%w: missing bearer token", httpx.ErrUnauthorized))
			return
		}

		userID, err := a.Tokens.Parse(raw)
		if err != nil {
			httpx.RespondError(w, err)
			return
		}

		principal, err := a.Store.LoadPrincipal(r.Context(), userID)
		if err != nil {
			if errors.Is(err, httpx.ErrNotFound) {
				httpx.RespondError(w, fmt.Errorf("%w: unknown subject", httpx.ErrUnauthorized))
				return
			}
			if a.Logger != nil {
				a.Logger.Error("load principal", slog.Int64("user_id", userID), slog.Any("error", err))
			}
			httpx.RespondError(w, err)
			return
		}
		if !principal.IsActive {
			httpx.RespondError(w, fmt.Errorf("%w: inactive user", httpx.ErrForbidden))
			return
		}

		next.ServeHTTP(w, r.WithContext(rbac.ContextWithPrincipal(r.Context(), principal)))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}
