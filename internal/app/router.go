package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/carhive/carhive/internal/auth"
	"github.com/carhive/carhive/internal/catalog"
	"github.com/carhive/carhive/internal/garage"
	"github.com/carhive/carhive/internal/platform/httpx"
	"github.com/carhive/carhive/internal/rbac"
	"github.com/carhive/carhive/internal/roles"
	"github.com/carhive/carhive/internal/users"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	Authenticator  auth.Authenticator
	AuthHandler    *auth.Handler
	CatalogHandler *catalog.Handler
	GarageHandler  *garage.Handler
	UsersHandler   *users.Handler
	RolesHandler   *roles.Handler
}

// NewRouter assembles the HTTP surface: public auth endpoints, the
// authenticated API and the permission-gated administration group.
func NewRouter(p RouterParams) chi.Router {
	r := chi.NewRouter()
	for _, mw := range MiddlewareStack(MiddlewareConfig{Logger: p.Logger, Config: p.Config}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", p.AuthHandler.Register)
		r.Post("/login", p.AuthHandler.Login)
	})

	perms := rbac.Middleware{Logger: p.Logger}

	r.Group(func(r chi.Router) {
		r.Use(p.Authenticator.Middleware)

		r.Get("/me", p.UsersHandler.Me)
		p.CatalogHandler.Routes(r)
		p.GarageHandler.Routes(r)

		r.Group(func(r chi.Router) {
			r.Use(perms.Require(rbac.PermUsersCrud))
			r.Route("/users", p.UsersHandler.AdminRoutes)
			p.RolesHandler.Routes(r)
		})
	})

	return r
}
