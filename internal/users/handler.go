package users

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carhive/carhive/internal/platform/httpx"
	"github.com/carhive/carhive/internal/query"
	"github.com/carhive/carhive/internal/rbac"
)

// Handler exposes the user endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// AdminRoutes mounts the administration endpoints. The caller wraps them with
// the user management permission middleware.
func (h *Handler) AdminRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Route("/{userID}", func(r chi.Router) {
		r.Get("/", h.get)
		r.Patch("/", h.update)
		r.Delete("/", h.delete)
	})
}

// Me handles GET /me for the authenticated principal.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	principal, ok := rbac.PrincipalFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	user, err := h.service.Get(r.Context(), principal.ID)
	if err != nil {
		h.respondError(w, "me", err)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	if !httpx.ClientCaused(err) && h.logger != nil {
		h.logger.Error("users "+op, slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}

func userParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid userID", httpx.ErrValidation)
	}
	return id, nil
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page, err := h.service.List(r.Context(), query.ParamsFromRequest(r))
	if err != nil {
		h.respondError(w, "list", err)
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := userParam(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	user, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, "get", err)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := userParam(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var patch Patch
	if err := httpx.DecodeJSON(r, &patch); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: invalid body", httpx.ErrValidation))
		return
	}
	if err := h.validate.Struct(patch); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %v", httpx.ErrValidation, err))
		return
	}
	principal, _ := rbac.PrincipalFromContext(r.Context())
	user, err := h.service.Update(r.Context(), principal.ID, id, patch)
	if err != nil {
		h.respondError(w, "update", err)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := userParam(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	principal, _ := rbac.PrincipalFromContext(r.Context())
	if err := h.service.Delete(r.Context(), principal.ID, id); err != nil {
		h.respondError(w, "delete", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
